package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

func tableURL(projectURL, table string) string {
	return projectURL + "/rest/v1/" + url.PathEscape(table)
}

// filterQuery renders equality filters as PostgREST query parameters
// (col=eq.value), in sorted column order so URLs are deterministic.
func filterQuery(filters map[string]any) url.Values {
	q := url.Values{}
	cols := make([]string, 0, len(filters))
	for col := range filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		q.Set(col, fmt.Sprintf("eq.%v", filters[col]))
	}
	return q
}

func query(
	ctx context.Context, p *Provider, args map[string]any, key string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	table, err := registry.RequiredString(args, "table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filters, err := registry.OptionalMap(args, "filters")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q := filterQuery(filters)
	q.Set("select", registry.OptionalString(args, "select", "*"))
	q.Set("limit", fmt.Sprint(registry.OptionalInt(args, "limit", 100)))
	if order := registry.OptionalString(args, "order", ""); order != "" {
		q.Set("order", order)
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     tableURL(p.projectURL, table) + "?" + q.Encode(),
		Headers: restHeaders(key),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	rows := resp.JSON().Array()
	if len(rows) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No rows in %s match.", table)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d rows:\n%s", len(rows), resp.Body)), nil
}

func insert(
	ctx context.Context, p *Provider, args map[string]any, key string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	table, err := registry.RequiredString(args, "table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, ok := args["rows"].([]any)
	if !ok || len(rows) == 0 {
		return mcp.NewToolResultError("argument rows is required"), nil
	}
	for i, row := range rows {
		if _, ok := row.(map[string]any); !ok {
			return mcp.NewToolResultError(fmt.Sprintf("row %d must be an object", i)), nil
		}
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     tableURL(p.projectURL, table),
		Headers: writeHeaders(key),
		Body:    rows,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Inserted %d rows into %s:\n%s",
		len(resp.JSON().Array()), table, resp.Body)), nil
}

func update(
	ctx context.Context, p *Provider, args map[string]any, key string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	table, err := registry.RequiredString(args, "table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := registry.OptionalMap(args, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) == 0 {
		return mcp.NewToolResultError("argument data is required"), nil
	}
	filters, err := registry.OptionalMap(args, "filters")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Refuse a whole-table update; PostgREST would happily do it.
	if len(filters) == 0 {
		return mcp.NewToolResultError("argument filters is required"), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPatch,
		URL:     tableURL(p.projectURL, table) + "?" + filterQuery(filters).Encode(),
		Headers: writeHeaders(key),
		Body:    data,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Updated %d rows in %s:\n%s",
		len(resp.JSON().Array()), table, resp.Body)), nil
}

func deleteRows(
	ctx context.Context, p *Provider, args map[string]any, key string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	table, err := registry.RequiredString(args, "table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filters, err := registry.OptionalMap(args, "filters")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Same guard as update: no unfiltered deletes.
	if len(filters) == 0 {
		return mcp.NewToolResultError("argument filters is required"), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodDelete,
		URL:     tableURL(p.projectURL, table) + "?" + filterQuery(filters).Encode(),
		Headers: writeHeaders(key),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted %d rows from %s",
		len(resp.JSON().Array()), table)), nil
}

// listTables calls the list_tables database function. PostgREST does not
// expose schema introspection, so the project carries this helper:
//
//	create function list_tables() returns setof text language sql as
//	$$ select tablename from pg_tables where schemaname = 'public' $$;
func listTables(
	ctx context.Context, p *Provider, _ map[string]any, key string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     p.projectURL + "/rest/v1/rpc/list_tables",
		Headers: restHeaders(key),
		Body:    map[string]any{},
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var names []string
	for _, row := range resp.JSON().Array() {
		if name := row.Get("tablename").Str; name != "" {
			names = append(names, name)
			continue
		}
		if row.Str != "" {
			names = append(names, row.Str)
		}
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("No tables in the public schema."), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}
