// Package github wraps the GitHub REST API behind MCP tool handlers:
// issues, pull requests, repository contents, commits, search and the
// consolidated Actions tools.
package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultRawURL  = "https://raw.githubusercontent.com"

	acceptJSON = "application/vnd.github+json"
	acceptDiff = "application/vnd.github.diff"

	providerName = "github"
	displayName  = "GitHub"
)

// Provider implements registry.Provider for GitHub.
type Provider struct {
	baseURL string
	rawURL  string
}

// New creates a Provider against api.github.com.
func New() *Provider {
	return &Provider{baseURL: defaultBaseURL, rawURL: defaultRawURL}
}

// NewWithBaseURL creates a Provider against a different API base (tests).
func NewWithBaseURL(baseURL string) *Provider {
	return &Provider{baseURL: baseURL, rawURL: defaultRawURL}
}

// Name returns the provider tag.
func (*Provider) Name() string { return providerName }

type handlerFunc func(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error)

var handlers = map[string]handlerFunc{
	"create_issue":          createIssue,
	"list_issues":           listIssues,
	"get_issue":             getIssue,
	"update_issue":          updateIssue,
	"add_issue_comment":     addIssueComment,
	"list_repos":            listRepos,
	"get_repo":              getRepo,
	"create_pr":             createPR,
	"list_pull_requests":    listPullRequests,
	"get_pull_request":      getPullRequest,
	"merge_pull_request":    mergePullRequest,
	"actions_list":          actionsList,
	"actions_get":           actionsGet,
	"actions_run_trigger":   actionsRunTrigger,
	"get_job_logs":          getJobLogs,
	"get_file_contents":     getFileContents,
	"list_directory":        listDirectory,
	"create_or_update_file": createOrUpdateFile,
	"delete_file":           deleteFile,
	"list_commits":          listCommits,
	"get_commit":            getCommit,
	"compare_commits":       compareCommits,
	"get_commit_diff":       getCommitDiff,
	"get_pull_request_diff": getPullRequestDiff,
	"search_code":           searchCode,
	"get_file_tree":         getFileTree,
	"get_raw_file_url":      getRawFileURL,
}

// Call dispatches a tool invocation.
func (p *Provider) Call(
	ctx context.Context, name string, args map[string]any, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	handler, ok := handlers[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown GitHub tool: %s", name)), nil
	}

	// get_raw_file_url is a pure URL construction; no token needed.
	var token string
	if name != "get_raw_file_url" {
		var err error
		token, err = cc.Resolver.Resolve(ctx, cc.UserID, providerName)
		if err != nil {
			return upstream.AuthFailureResult(displayName, err), nil
		}
	}

	return handler(ctx, p, args, token, cc)
}

// headers returns the standard GitHub request headers.
func headers(token string) map[string]string {
	h := upstream.BearerHeaders(token)
	h["Accept"] = acceptJSON
	return h
}

// diffHeaders requests the raw diff media type.
func diffHeaders(token string) map[string]string {
	h := upstream.BearerHeaders(token)
	h["Accept"] = acceptDiff
	return h
}

// splitRepo validates the "owner/repo" shape.
func splitRepo(repo string) (string, error) {
	if !strings.Contains(repo, "/") || strings.Count(repo, "/") != 1 {
		return "", fmt.Errorf("argument repo must be in owner/repo form, got %q", repo)
	}
	return repo, nil
}

// repoArg extracts and validates the repo argument.
func repoArg(args map[string]any) (string, error) {
	repo, err := registry.RequiredString(args, "repo")
	if err != nil {
		return "", err
	}
	return splitRepo(repo)
}
