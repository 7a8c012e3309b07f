package github

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

func listCommits(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	perPage := registry.OptionalInt(args, "per_page", 30)

	u := fmt.Sprintf("%s/repos/%s/commits?per_page=%d", p.baseURL, repo, perPage)
	if sha := registry.OptionalString(args, "sha", ""); sha != "" {
		u += "&sha=" + url.QueryEscape(sha)
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

	var sb strings.Builder
	for _, commit := range resp.JSON().Array() {
		subject, _, _ := strings.Cut(commit.Get("commit.message").Str, "\n")
		fmt.Fprintf(&sb, "%.8s %s (%s)\n",
			commit.Get("sha").Str, subject, commit.Get("commit.author.name").Str)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func getCommit(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sha, err := registry.RequiredString(args, "sha")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/repos/%s/commits/%s", p.baseURL, repo, url.PathEscape(sha)),
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	commit := resp.JSON()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\nAuthor: %s\n\n%s\n\nFiles:\n",
		commit.Get("sha").Str, commit.Get("commit.author.name").Str,
		commit.Get("commit.message").Str)
	for _, file := range commit.Get("files").Array() {
		fmt.Fprintf(&sb, "%s\t%s (+%d -%d)\n",
			file.Get("status").Str, file.Get("filename").Str,
			file.Get("additions").Int(), file.Get("deletions").Int())
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func compareCommits(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	base, err := registry.RequiredString(args, "base")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	head, err := registry.RequiredString(args, "head")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method: http.MethodGet,
		URL: fmt.Sprintf("%s/repos/%s/compare/%s...%s",
			p.baseURL, repo, url.PathEscape(base), url.PathEscape(head)),
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	cmp := resp.JSON()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s...%s: %s, %d commits, %d files changed\n",
		base, head, cmp.Get("status").Str, cmp.Get("total_commits").Int(),
		cmp.Get("files.#").Int())
	for _, commit := range cmp.Get("commits").Array() {
		subject, _, _ := strings.Cut(commit.Get("commit.message").Str, "\n")
		fmt.Fprintf(&sb, "%.8s %s\n", commit.Get("sha").Str, subject)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func getCommitDiff(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sha, err := registry.RequiredString(args, "sha")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/repos/%s/commits/%s", p.baseURL, repo, url.PathEscape(sha)),
		Headers: diffHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(string(resp.Body)), nil
}

func searchCode(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	query, err := registry.RequiredString(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	perPage := registry.OptionalInt(args, "per_page", 30)

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method: http.MethodGet,
		URL: fmt.Sprintf("%s/search/code?q=%s&per_page=%d",
			p.baseURL, url.QueryEscape(query), perPage),
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	results := resp.JSON()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d results:\n", results.Get("total_count").Int())
	for _, item := range results.Get("items").Array() {
		fmt.Fprintf(&sb, "%s: %s\n",
			item.Get("repository.full_name").Str, item.Get("path").Str)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
