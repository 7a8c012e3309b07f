package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

func createPR(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{}
	for _, key := range []string{"title", "head", "base"} {
		v, err := registry.RequiredString(args, key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		body[key] = v
	}
	if v := registry.OptionalString(args, "body", ""); v != "" {
		body["body"] = v
	}
	if registry.OptionalBool(args, "draft", false) {
		body["draft"] = true
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/repos/%s/pulls", p.baseURL, repo),
		Headers: headers(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	pr := resp.JSON()
	return mcp.NewToolResultText(fmt.Sprintf("Created PR #%d: %s\n%s",
		pr.Get("number").Int(), pr.Get("title").Str, pr.Get("html_url").Str)), nil
}

func listPullRequests(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state := registry.OptionalString(args, "state", "open")

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/repos/%s/pulls?state=%s", p.baseURL, repo, state),
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var sb strings.Builder
	prs := resp.JSON().Array()
	fmt.Fprintf(&sb, "%d pull requests (%s) in %s:\n", len(prs), state, repo)
	for _, pr := range prs {
		fmt.Fprintf(&sb, "#%d [%s] %s (%s -> %s)\n",
			pr.Get("number").Int(), pr.Get("state").Str, pr.Get("title").Str,
			pr.Get("head.ref").Str, pr.Get("base.ref").Str)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func getPullRequest(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	number, err := registry.RequiredInt(args, "pull_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/repos/%s/pulls/%d", p.baseURL, repo, number),
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	pr := resp.JSON()
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d: %s\nState: %s, Mergeable: %s\n%s -> %s\nURL: %s\n",
		pr.Get("number").Int(), pr.Get("title").Str, pr.Get("state").Str,
		pr.Get("mergeable_state").Str, pr.Get("head.ref").Str, pr.Get("base.ref").Str,
		pr.Get("html_url").Str)
	if body := pr.Get("body").Str; body != "" {
		fmt.Fprintf(&sb, "\n%s\n", body)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func mergePullRequest(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	number, err := registry.RequiredInt(args, "pull_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{
		"merge_method": registry.OptionalString(args, "merge_method", "merge"),
	}
	if title := registry.OptionalString(args, "commit_title", ""); title != "" {
		body["commit_title"] = title
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPut,
		URL:     fmt.Sprintf("%s/repos/%s/pulls/%d/merge", p.baseURL, repo, number),
		Headers: headers(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Merged PR #%d: %s",
		number, resp.JSON().Get("sha").Str)), nil
}

func getPullRequestDiff(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	number, err := registry.RequiredInt(args, "pull_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/repos/%s/pulls/%d", p.baseURL, repo, number),
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
