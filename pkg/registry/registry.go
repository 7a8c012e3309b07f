// Package registry composes per-provider tool catalogs behind a single
// namespaced catalog with a fast lookup from tool name to handler.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/resolver"
)

// ErrUnknownTool is returned by Call for tool names not in the catalog.
var ErrUnknownTool = errors.New("unknown tool")

// CallContext carries the per-request bindings a tool handler needs:
// the auth resolver, the deployment's user id and the outbound HTTP client.
type CallContext struct {
	// UserID selects the token store partition for this deployment.
	UserID string

	// Resolver produces valid access tokens; handlers never see refresh
	// tokens.
	Resolver resolver.Resolver

	// HTTP is the client for upstream REST calls (30s deadline).
	HTTP *http.Client
}

// Provider is one upstream service's tool catalog. Tool names returned by
// Tools and accepted by Call are the provider-local (unprefixed) names.
type Provider interface {
	// Name is the provider tag, used as the tool name prefix.
	Name() string

	// Tools returns the tool descriptors in stable order.
	Tools() []mcp.Tool

	// Call dispatches one tool invocation. Argument and upstream problems
	// are reported as error results, not Go errors; a non-nil error means
	// an internal failure.
	Call(ctx context.Context, name string, args map[string]any, cc *CallContext) (*mcp.CallToolResult, error)
}

type entry struct {
	provider Provider
	inner    string
}

// Registry maps fully qualified tool names (`<provider>_<tool>`) to their
// providers. It is immutable after New.
type Registry struct {
	providers []Provider
	byName    map[string]entry
}

// New composes providers into one registry. Tool-name collisions across
// providers are a startup error.
func New(providers ...Provider) (*Registry, error) {
	sorted := make([]Provider, len(providers))
	copy(sorted, providers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	byName := make(map[string]entry)
	for _, p := range sorted {
		for _, tool := range p.Tools() {
			full := p.Name() + "_" + tool.Name
			if prior, exists := byName[full]; exists {
				return nil, fmt.Errorf("tool name collision: %q declared by both %s and %s",
					full, prior.provider.Name(), p.Name())
			}
			byName[full] = entry{provider: p, inner: tool.Name}
		}
	}

	return &Registry{providers: sorted, byName: byName}, nil
}

// ListTools returns the union of every provider's catalog with prefixed
// names, ordered deterministically by (provider, tool name).
func (r *Registry) ListTools() []mcp.Tool {
	var tools []mcp.Tool
	for _, p := range r.providers {
		catalog := p.Tools()
		sort.Slice(catalog, func(i, j int) bool { return catalog[i].Name < catalog[j].Name })
		for _, tool := range catalog {
			tool.Name = p.Name() + "_" + tool.Name
			tools = append(tools, tool)
		}
	}
	return tools
}

// Call dispatches a fully qualified tool name to its provider.
func (r *Registry) Call(
	ctx context.Context, name string, args map[string]any, cc *CallContext,
) (*mcp.CallToolResult, error) {
	e, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return e.provider.Call(ctx, e.inner, args, cc)
}
