// Package calendar wraps the Google Calendar v3 API behind MCP tool
// handlers.
package calendar

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

const (
	defaultBaseURL = "https://www.googleapis.com/calendar/v3"

	providerName = "calendar"
	displayName  = "Google Calendar"

	// The broker stores one Google token covering Gmail, Calendar and
	// Drive scopes.
	oauthProvider = "google"
)

// Provider implements registry.Provider for Google Calendar.
type Provider struct {
	baseURL string
}

// New creates a Provider against www.googleapis.com.
func New() *Provider {
	return &Provider{baseURL: defaultBaseURL}
}

// NewWithBaseURL creates a Provider against a different API base (tests).
func NewWithBaseURL(baseURL string) *Provider {
	return &Provider{baseURL: baseURL}
}

// Name returns the provider tag.
func (*Provider) Name() string { return providerName }

type handlerFunc func(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error)

var handlers = map[string]handlerFunc{
	"list_calendars":   listCalendars,
	"list_events":      listEvents,
	"get_event":        getEvent,
	"create_event":     createEvent,
	"update_event":     updateEvent,
	"delete_event":     deleteEvent,
	"search_events":    searchEvents,
	"respond_to_event": respondToEvent,
	"get_freebusy":     getFreeBusy,
	"get_current_time": getCurrentTime,
	"list_colors":      listColors,
	"manage_accounts":  manageAccounts,
}

// Call dispatches a tool invocation.
func (p *Provider) Call(
	ctx context.Context, name string, args map[string]any, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	handler, ok := handlers[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown Calendar tool: %s", name)), nil
	}

	// get_current_time is a local clock read; no token needed.
	var token string
	if name != "get_current_time" {
		var err error
		token, err = cc.Resolver.Resolve(ctx, cc.UserID, oauthProvider)
		if err != nil {
			return upstream.AuthFailureResult(displayName, err), nil
		}
	}

	return handler(ctx, p, args, token, cc)
}
