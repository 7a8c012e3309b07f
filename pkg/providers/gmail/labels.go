package gmail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

func listLabels(
	ctx context.Context, p *Provider, _ map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     p.baseURL + "/labels",
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var sb strings.Builder
	for _, label := range resp.JSON().Get("labels").Array() {
		fmt.Fprintf(&sb, "%s (%s, %s)\n",
			label.Get("name").Str, label.Get("id").Str, label.Get("type").Str)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func createLabel(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	name, err := registry.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     p.baseURL + "/labels",
		Headers: upstream.BearerHeaders(token),
		Body: map[string]any{
			"name":                  name,
			"labelListVisibility":   "labelShow",
			"messageListVisibility": "show",
		},
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	created := resp.JSON()
	return mcp.NewToolResultText(fmt.Sprintf("Created label %q (%s)",
		created.Get("name").Str, created.Get("id").Str)), nil
}

func updateLabel(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	labelID, err := registry.RequiredString(args, "label_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := registry.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPatch,
		URL:     p.baseURL + "/labels/" + url.PathEscape(labelID),
		Headers: upstream.BearerHeaders(token),
		Body:    map[string]any{"name": name},
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Renamed label %s to %q", labelID, name)), nil
}

func deleteLabel(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	labelID, err := registry.RequiredString(args, "label_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodDelete,
		URL:     p.baseURL + "/labels/" + url.PathEscape(labelID),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted label %s", labelID)), nil
}

// getOrCreateLabel looks for an exact name match before creating, so
// repeated calls are idempotent.
func getOrCreateLabel(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	name, err := registry.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     p.baseURL + "/labels",
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	for _, label := range resp.JSON().Get("labels").Array() {
		if label.Get("name").Str == name {
			return mcp.NewToolResultText(fmt.Sprintf("Label %q exists (%s)",
				name, label.Get("id").Str)), nil
		}
	}

	return createLabel(ctx, p, args, token, cc)
}
