package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

func createIssue(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := registry.RequiredString(args, "title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{"title": title}
	if v := registry.OptionalString(args, "body", ""); v != "" {
		body["body"] = v
	}
	if labels, err := registry.StringSlice(args, "labels"); err == nil && len(labels) > 0 {
		body["labels"] = labels
	}
	if assignees, err := registry.StringSlice(args, "assignees"); err == nil && len(assignees) > 0 {
		body["assignees"] = assignees
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/repos/%s/issues", p.baseURL, repo),
		Headers: headers(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	issue := resp.JSON()
	return mcp.NewToolResultText(fmt.Sprintf("Created issue #%d: %s\n%s",
		issue.Get("number").Int(), issue.Get("title").Str, issue.Get("html_url").Str)), nil
}

func listIssues(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state := registry.OptionalString(args, "state", "open")
	perPage := registry.OptionalInt(args, "per_page", 30)

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/repos/%s/issues?state=%s&per_page=%d", p.baseURL, repo, state, perPage),
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var sb strings.Builder
	issues := resp.JSON().Array()
	fmt.Fprintf(&sb, "%d issues (%s) in %s:\n", len(issues), state, repo)
	for _, issue := range issues {
		fmt.Fprintf(&sb, "#%d [%s] %s\n",
			issue.Get("number").Int(), issue.Get("state").Str, issue.Get("title").Str)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func getIssue(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	number, err := registry.RequiredInt(args, "issue_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/repos/%s/issues/%d", p.baseURL, repo, number),
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(formatIssue(resp.JSON())), nil
}

func formatIssue(issue gjson.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d: %s\nState: %s\nAuthor: %s\nURL: %s\n",
		issue.Get("number").Int(), issue.Get("title").Str, issue.Get("state").Str,
		issue.Get("user.login").Str, issue.Get("html_url").Str)
	if body := issue.Get("body").Str; body != "" {
		fmt.Fprintf(&sb, "\n%s\n", body)
	}
	return sb.String()
}

func updateIssue(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	number, err := registry.RequiredInt(args, "issue_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{}
	for _, key := range []string{"title", "body", "state"} {
		if v := registry.OptionalString(args, key, ""); v != "" {
			body[key] = v
		}
	}
	if len(body) == 0 {
		return mcp.NewToolResultError("at least one of title, body or state is required"), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPatch,
		URL:     fmt.Sprintf("%s/repos/%s/issues/%d", p.baseURL, repo, number),
		Headers: headers(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	issue := resp.JSON()
	return mcp.NewToolResultText(fmt.Sprintf("Updated issue #%d (%s)",
		issue.Get("number").Int(), issue.Get("state").Str)), nil
}

func addIssueComment(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	number, err := registry.RequiredInt(args, "issue_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := registry.RequiredString(args, "body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/repos/%s/issues/%d/comments", p.baseURL, repo, number),
		Headers: headers(token),
		Body:    map[string]any{"body": body},
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Comment added: %s", resp.JSON().Get("html_url").Str)), nil
}

func listRepos(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	perPage := registry.OptionalInt(args, "per_page", 30)

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/user/repos?sort=updated&per_page=%d", p.baseURL, perPage),
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var sb strings.Builder
	for _, repo := range resp.JSON().Array() {
		visibility := "public"
		if repo.Get("private").Bool() {
			visibility = "private"
		}
		fmt.Fprintf(&sb, "%s (%s)\n", repo.Get("full_name").Str, visibility)
	}
	if sb.Len() == 0 {
		return mcp.NewToolResultText("No repositories found"), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func getRepo(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/repos/%s", p.baseURL, repo),
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	r := resp.JSON()
	return mcp.NewToolResultText(fmt.Sprintf(
		"%s\n%s\nDefault branch: %s\nStars: %d, Forks: %d, Open issues: %d\n%s",
		r.Get("full_name").Str, r.Get("description").Str, r.Get("default_branch").Str,
		r.Get("stargazers_count").Int(), r.Get("forks_count").Int(),
		r.Get("open_issues_count").Int(), r.Get("html_url").Str)), nil
}
