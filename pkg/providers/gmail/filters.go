package gmail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

func filtersURL(base string) string {
	return base + "/settings/filters"
}

func formatFilter(f gjson.Result) string {
	var parts []string
	criteria := f.Get("criteria")
	for _, key := range []string{"from", "to", "subject", "query"} {
		if v := criteria.Get(key).Str; v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", key, v))
		}
	}
	action := f.Get("action")
	if add := action.Get("addLabelIds").Array(); len(add) > 0 {
		var ids []string
		for _, id := range add {
			ids = append(ids, id.Str)
		}
		parts = append(parts, "add="+strings.Join(ids, ","))
	}
	if remove := action.Get("removeLabelIds").Array(); len(remove) > 0 {
		var ids []string
		for _, id := range remove {
			ids = append(ids, id.Str)
		}
		parts = append(parts, "remove="+strings.Join(ids, ","))
	}
	return fmt.Sprintf("%s: %s", f.Get("id").Str, strings.Join(parts, " "))
}

func listFilters(
	ctx context.Context, p *Provider, _ map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     filtersURL(p.baseURL),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	filters := resp.JSON().Get("filter").Array()
	if len(filters) == 0 {
		return mcp.NewToolResultText("No filters configured."), nil
	}
	var sb strings.Builder
	for _, f := range filters {
		sb.WriteString(formatFilter(f))
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func postFilter(
	ctx context.Context, p *Provider, token string, cc *registry.CallContext,
	criteria, action map[string]any,
) (*mcp.CallToolResult, error) {
	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     filtersURL(p.baseURL),
		Headers: upstream.BearerHeaders(token),
		Body:    map[string]any{"criteria": criteria, "action": action},
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created filter %s", resp.JSON().Get("id").Str)), nil
}

func createFilter(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	criteria := map[string]any{}
	for argName, apiName := range map[string]string{
		"from": "from", "to": "to", "subject": "subject", "query": "query",
	} {
		if v := registry.OptionalString(args, argName, ""); v != "" {
			criteria[apiName] = v
		}
	}
	if len(criteria) == 0 {
		return mcp.NewToolResultError(
			"at least one of from, to, subject or query is required"), nil
	}

	action := map[string]any{}
	if add, err := registry.StringSlice(args, "add_label_ids"); err == nil && len(add) > 0 {
		action["addLabelIds"] = add
	}
	if remove, err := registry.StringSlice(args, "remove_label_ids"); err == nil && len(remove) > 0 {
		action["removeLabelIds"] = remove
	}
	if len(action) == 0 {
		return mcp.NewToolResultError(
			"at least one of add_label_ids or remove_label_ids is required"), nil
	}

	return postFilter(ctx, p, token, cc, criteria, action)
}

func getFilter(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	filterID, err := registry.RequiredString(args, "filter_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     filtersURL(p.baseURL) + "/" + url.PathEscape(filterID),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(formatFilter(resp.JSON())), nil
}

func deleteFilter(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	filterID, err := registry.RequiredString(args, "filter_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodDelete,
		URL:     filtersURL(p.baseURL) + "/" + url.PathEscape(filterID),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted filter %s", filterID)), nil
}

// createFilterFromTemplate expands a named template into criteria and
// actions, so common filters don't require knowing Gmail's system label
// ids.
func createFilterFromTemplate(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	template, err := registry.RequiredString(args, "template")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := registry.RequiredString(args, "from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	criteria := map[string]any{"from": from}
	var action map[string]any
	switch template {
	case "archive_from":
		action = map[string]any{"removeLabelIds": []string{"INBOX"}}
	case "label_from":
		labelID, err := registry.RequiredString(args, "label_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		action = map[string]any{"addLabelIds": []string{labelID}}
	case "mark_read_from":
		action = map[string]any{"removeLabelIds": []string{"UNREAD"}}
	case "trash_from":
		action = map[string]any{"addLabelIds": []string{"TRASH"}}
	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"unknown template %q: expected archive_from, label_from, mark_read_from or trash_from",
			template)), nil
	}

	return postFilter(ctx, p, token, cc, criteria, action)
}
