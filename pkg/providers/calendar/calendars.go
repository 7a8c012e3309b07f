package calendar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

func listCalendars(
	ctx context.Context, p *Provider, _ map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     p.baseURL + "/users/me/calendarList",
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var sb strings.Builder
	for _, cal := range resp.JSON().Get("items").Array() {
		fmt.Fprintf(&sb, "%s (%s)", cal.Get("summary").Str, cal.Get("id").Str)
		if cal.Get("primary").Bool() {
			sb.WriteString(" [primary]")
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func getFreeBusy(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	timeMin, err := registry.RequiredString(args, "time_min")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := registry.RequiredString(args, "time_max")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := registry.StringSlice(args, "calendar_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		ids = []string{"primary"}
	}

	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]any{"id": id})
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     p.baseURL + "/freeBusy",
		Headers: upstream.BearerHeaders(token),
		Body: map[string]any{
			"timeMin": timeMin,
			"timeMax": timeMax,
			"items":   items,
		},
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var sb strings.Builder
	calendars := resp.JSON().Get("calendars").Map()
	for _, id := range ids {
		cal, ok := calendars[id]
		if !ok {
			continue
		}
		busy := cal.Get("busy").Array()
		if len(busy) == 0 {
			fmt.Fprintf(&sb, "%s: free\n", id)
			continue
		}
		fmt.Fprintf(&sb, "%s busy:\n", id)
		for _, slot := range busy {
			fmt.Fprintf(&sb, "  %s to %s\n", slot.Get("start").Str, slot.Get("end").Str)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func getCurrentTime(
	_ context.Context, _ *Provider, args map[string]any, _ string, _ *registry.CallContext,
) (*mcp.CallToolResult, error) {
	loc := time.UTC
	if tz := registry.OptionalString(args, "timezone", ""); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("unknown timezone %q", tz)), nil
		}
		loc = parsed
	}
	now := time.Now().In(loc)
	return mcp.NewToolResultText(fmt.Sprintf("%s (%s, %s)",
		now.Format(time.RFC3339), now.Weekday(), loc)), nil
}

func listColors(
	ctx context.Context, p *Provider, _ map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     p.baseURL + "/colors",
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var sb strings.Builder
	sb.WriteString("Event colors:\n")
	for id, c := range resp.JSON().Get("event").Map() {
		fmt.Fprintf(&sb, "  %s: %s\n", id, c.Get("background").Str)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// manageAccounts reports the deployment's connected Google account by
// probing calendar access. Adding or removing accounts happens through
// the broker's auth pages, not through a tool call.
func manageAccounts(
	ctx context.Context, p *Provider, _ map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     p.baseURL + "/users/me/calendarList",
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	items := resp.JSON().Get("items").Array()
	primary := ""
	for _, cal := range items {
		if cal.Get("primary").Bool() {
			primary = cal.Get("id").Str
			break
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Account %s is connected: %d calendars visible, primary %s.\n"+
			"To reconnect or change scopes, open the broker's /auth/google page.",
		cc.UserID, len(items), primary)), nil
}
