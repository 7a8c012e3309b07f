// Package supabase exposes PostgREST-style table access on a Supabase
// project. Authentication uses the operator's service-role key, not OAuth.
package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

const (
	providerName = "supabase"
	displayName  = "Supabase"
)

// Provider implements registry.Provider for Supabase.
type Provider struct {
	// projectURL is the project base, e.g. https://xyz.supabase.co.
	projectURL string
}

// New creates a Provider for the given project URL.
func New(projectURL string) *Provider {
	return &Provider{projectURL: strings.TrimRight(projectURL, "/")}
}

// Name returns the provider tag.
func (*Provider) Name() string { return providerName }

type handlerFunc func(
	ctx context.Context, p *Provider, args map[string]any, key string, cc *registry.CallContext,
) (*mcp.CallToolResult, error)

var handlers = map[string]handlerFunc{
	"query":       query,
	"insert":      insert,
	"update":      update,
	"delete":      deleteRows,
	"list_tables": listTables,
}

// Call dispatches a tool invocation. The resolver short-circuits to the
// configured service key for this provider.
func (p *Provider) Call(
	ctx context.Context, name string, args map[string]any, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	handler, ok := handlers[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown Supabase tool: %s", name)), nil
	}
	if p.projectURL == "" {
		return mcp.NewToolResultError("Supabase is not configured: SUPABASE_URL is unset"), nil
	}

	key, err := cc.Resolver.Resolve(ctx, cc.UserID, providerName)
	if err != nil {
		return upstream.AuthFailureResult(displayName, err), nil
	}

	return handler(ctx, p, args, key, cc)
}

// restHeaders are the PostgREST auth headers: the service key doubles as
// both the apikey and the bearer token.
func restHeaders(key string) map[string]string {
	h := upstream.BearerHeaders(key)
	h["apikey"] = key
	return h
}

// writeHeaders adds the representation request so writes echo affected rows.
func writeHeaders(key string) map[string]string {
	h := restHeaders(key)
	h["Prefer"] = "return=representation"
	return h
}
