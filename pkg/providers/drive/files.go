package drive

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

// readFile loads the file's metadata to learn its type, then either
// exports it (Google-native documents) or downloads the raw content.
func readFile(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	// fileId matches the Drive API's own field name; file_id is accepted
	// as an alias for callers following the snake_case convention.
	fileID := registry.OptionalString(args, "fileId", "")
	if fileID == "" {
		fileID = registry.OptionalString(args, "file_id", "")
	}
	if fileID == "" {
		return mcp.NewToolResultError("argument fileId is required"), nil
	}

	fileURL := p.baseURL + "/files/" + url.PathEscape(fileID)
	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fileURL + "?fields=id,name,mimeType",
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	meta := resp.JSON()
	name := meta.Get("name").Str
	mimeType := meta.Get("mimeType").Str

	contentURL := fileURL + "?alt=media"
	if export, ok := exportFormats[mimeType]; ok {
		contentURL = fileURL + "/export?mimeType=" + url.QueryEscape(export)
	}

	resp, err = upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     contentURL,
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s (%s):\n%s", name, mimeType, resp.Body)), nil
}

// writeFile uploads metadata and content in one multipart/related request.
func writeFile(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	name, err := registry.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := registry.RequiredString(args, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mimeType := registry.OptionalString(args, "mime_type", "text/plain")

	metadata := fmt.Sprintf("{%q: %q", "name", name)
	if folder := registry.OptionalString(args, "folder_id", ""); folder != "" {
		metadata += fmt.Sprintf(", %q: [%q]", "parents", folder)
	}
	metadata += "}"

	boundary := uuid.NewString()
	var body strings.Builder
	fmt.Fprintf(&body, "--%s\r\nContent-Type: application/json; charset=UTF-8\r\n\r\n%s\r\n",
		boundary, metadata)
	fmt.Fprintf(&body, "--%s\r\nContent-Type: %s\r\n\r\n%s\r\n", boundary, mimeType, content)
	fmt.Fprintf(&body, "--%s--", boundary)

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:      http.MethodPost,
		URL:         p.uploadURL + "/files?uploadType=multipart",
		Headers:     upstream.BearerHeaders(token),
		RawBody:     []byte(body.String()),
		ContentType: fmt.Sprintf("multipart/related; boundary=%s", boundary),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	created := resp.JSON()
	return mcp.NewToolResultText(fmt.Sprintf("Created %q (%s)",
		created.Get("name").Str, created.Get("id").Str)), nil
}

func formatFileList(items []string) string {
	if len(items) == 0 {
		return "No files found."
	}
	return strings.Join(items, "\n")
}

func listFiles(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	folder := registry.OptionalString(args, "folder_id", "root")

	q := url.Values{}
	q.Set("q", fmt.Sprintf("'%s' in parents and trashed=false", escapeQueryTerm(folder)))
	q.Set("pageSize", fmt.Sprint(registry.OptionalInt(args, "page_size", 50)))
	q.Set("fields", "files(id,name,mimeType,modifiedTime)")

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     p.baseURL + "/files?" + q.Encode(),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var items []string
	for _, f := range resp.JSON().Get("files").Array() {
		kind := "file"
		if f.Get("mimeType").Str == folderMimeType {
			kind = "folder"
		}
		items = append(items, fmt.Sprintf("%s\t%s (%s)", kind, f.Get("name").Str, f.Get("id").Str))
	}
	return mcp.NewToolResultText(formatFileList(items)), nil
}

func search(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	query, err := registry.RequiredString(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("fullText contains '%s' and trashed=false", escapeQueryTerm(query)))
	q.Set("pageSize", fmt.Sprint(registry.OptionalInt(args, "page_size", 25)))
	q.Set("fields", "files(id,name,mimeType)")

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     p.baseURL + "/files?" + q.Encode(),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var items []string
	for _, f := range resp.JSON().Get("files").Array() {
		items = append(items, fmt.Sprintf("%s (%s, %s)",
			f.Get("name").Str, f.Get("id").Str, f.Get("mimeType").Str))
	}
	return mcp.NewToolResultText(formatFileList(items)), nil
}

func createFolder(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	name, err := registry.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{"name": name, "mimeType": folderMimeType}
	if parent := registry.OptionalString(args, "parent_id", ""); parent != "" {
		body["parents"] = []string{parent}
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     p.baseURL + "/files",
		Headers: upstream.BearerHeaders(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	created := resp.JSON()
	return mcp.NewToolResultText(fmt.Sprintf("Created folder %q (%s)",
		created.Get("name").Str, created.Get("id").Str)), nil
}

// moveItem reads the item's current parents, then patches with
// addParents/removeParents so the item moves instead of gaining a parent.
func moveItem(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	itemID, err := registry.RequiredString(args, "item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	destID, err := registry.RequiredString(args, "destination_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	itemURL := p.baseURL + "/files/" + url.PathEscape(itemID)
	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     itemURL + "?fields=parents",
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var parents []string
	for _, parent := range resp.JSON().Get("parents").Array() {
		parents = append(parents, parent.Str)
	}

	q := url.Values{}
	q.Set("addParents", destID)
	if len(parents) > 0 {
		q.Set("removeParents", strings.Join(parents, ","))
	}

	resp, err = upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPatch,
		URL:     itemURL + "?" + q.Encode(),
		Headers: upstream.BearerHeaders(token),
		Body:    map[string]any{},
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Moved %s into %s", itemID, destID)), nil
}

func renameItem(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	itemID, err := registry.RequiredString(args, "item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := registry.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPatch,
		URL:     p.baseURL + "/files/" + url.PathEscape(itemID),
		Headers: upstream.BearerHeaders(token),
		Body:    map[string]any{"name": name},
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Renamed %s to %q", itemID, name)), nil
}

// escapeQueryTerm escapes single quotes and backslashes for the Drive
// query language.
func escapeQueryTerm(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
