package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

func getFileContents(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := registry.RequiredString(args, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	u := fmt.Sprintf("%s/repos/%s/contents/%s", p.baseURL, repo, path)
	if ref := registry.OptionalString(args, "ref", ""); ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     u,
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	file := resp.JSON()
	if file.IsArray() {
		return mcp.NewToolResultError(fmt.Sprintf(
			"%s is a directory; use list_directory", path)), nil
	}

	// The contents API returns file bodies base64-encoded with newlines.
	encoded := strings.ReplaceAll(file.Get("content").Str, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(string(decoded)), nil
}

func listDirectory(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := registry.OptionalString(args, "path", "")

	u := fmt.Sprintf("%s/repos/%s/contents/%s", p.baseURL, repo, path)
	if ref := registry.OptionalString(args, "ref", ""); ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     u,
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	entries := resp.JSON()
	if !entries.IsArray() {
		return mcp.NewToolResultError(fmt.Sprintf(
			"%s is a file; use get_file_contents", path)), nil
	}

	var sb strings.Builder
	for _, entry := range entries.Array() {
		fmt.Fprintf(&sb, "%s\t%s\n", entry.Get("type").Str, entry.Get("path").Str)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func createOrUpdateFile(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := registry.RequiredString(args, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := registry.RequiredString(args, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := registry.RequiredString(args, "message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
	}
	if sha := registry.OptionalString(args, "sha", ""); sha != "" {
		body["sha"] = sha
	}
	if branch := registry.OptionalString(args, "branch", ""); branch != "" {
		body["branch"] = branch
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPut,
		URL:     fmt.Sprintf("%s/repos/%s/contents/%s", p.baseURL, repo, path),
		Headers: headers(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	commit := resp.JSON()
	return mcp.NewToolResultText(fmt.Sprintf("Committed %s: %s",
		path, commit.Get("commit.sha").Str)), nil
}

func deleteFile(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := registry.RequiredString(args, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := registry.RequiredString(args, "message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sha, err := registry.RequiredString(args, "sha")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{"message": message, "sha": sha}
	if branch := registry.OptionalString(args, "branch", ""); branch != "" {
		body["branch"] = branch
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodDelete,
		URL:     fmt.Sprintf("%s/repos/%s/contents/%s", p.baseURL, repo, path),
		Headers: headers(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted %s: %s",
		path, resp.JSON().Get("commit.sha").Str)), nil
}

func getFileTree(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ref := registry.OptionalString(args, "ref", "HEAD")

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/repos/%s/git/trees/%s?recursive=1", p.baseURL, repo, url.PathEscape(ref)),
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var sb strings.Builder
	tree := resp.JSON()
	for _, entry := range tree.Get("tree").Array() {
		fmt.Fprintf(&sb, "%s\t%s\n", entry.Get("type").Str, entry.Get("path").Str)
	}
	if tree.Get("truncated").Bool() {
		sb.WriteString("(tree truncated by GitHub)\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func getRawFileURL(
	_ context.Context, p *Provider, args map[string]any, _ string, _ *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := registry.RequiredString(args, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ref := registry.OptionalString(args, "ref", "main")

	return mcp.NewToolResultText(fmt.Sprintf("%s/%s/%s/%s", p.rawURL, repo, ref, path)), nil
}
