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

// The four Actions tools are consolidated: each multiplexes related
// sub-operations behind a method discriminator. Dispatch on method is a
// flat switch; unknown methods are tool-level errors.

func actionsList(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	method, err := registry.RequiredString(args, "method")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	perPage := registry.OptionalInt(args, "per_page", 30)

	var url string
	switch method {
	case "workflows":
		url = fmt.Sprintf("%s/repos/%s/actions/workflows?per_page=%d", p.baseURL, repo, perPage)
	case "runs":
		if wf := registry.OptionalString(args, "workflow_id", ""); wf != "" {
			url = fmt.Sprintf("%s/repos/%s/actions/workflows/%s/runs?per_page=%d", p.baseURL, repo, wf, perPage)
		} else {
			url = fmt.Sprintf("%s/repos/%s/actions/runs?per_page=%d", p.baseURL, repo, perPage)
		}
	case "artifacts":
		url = fmt.Sprintf("%s/repos/%s/actions/artifacts?per_page=%d", p.baseURL, repo, perPage)
	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"unknown method %q: expected workflows, runs or artifacts", method)), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     url,
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	var sb strings.Builder
	switch method {
	case "workflows":
		for _, wf := range resp.JSON().Get("workflows").Array() {
			fmt.Fprintf(&sb, "%d: %s (%s, %s)\n",
				wf.Get("id").Int(), wf.Get("name").Str, wf.Get("path").Str, wf.Get("state").Str)
		}
	case "runs":
		for _, run := range resp.JSON().Get("workflow_runs").Array() {
			fmt.Fprintf(&sb, "%d: %s [%s/%s] %s\n",
				run.Get("id").Int(), run.Get("name").Str, run.Get("status").Str,
				run.Get("conclusion").Str, run.Get("head_branch").Str)
		}
	case "artifacts":
		for _, a := range resp.JSON().Get("artifacts").Array() {
			fmt.Fprintf(&sb, "%d: %s (%d bytes)\n",
				a.Get("id").Int(), a.Get("name").Str, a.Get("size_in_bytes").Int())
		}
	}
	if sb.Len() == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No %s found in %s", method, repo)), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func actionsGet(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	method, err := registry.RequiredString(args, "method")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := registry.RequiredString(args, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var url string
	switch method {
	case "workflow":
		url = fmt.Sprintf("%s/repos/%s/actions/workflows/%s", p.baseURL, repo, id)
	case "run":
		url = fmt.Sprintf("%s/repos/%s/actions/runs/%s", p.baseURL, repo, id)
	case "artifact":
		url = fmt.Sprintf("%s/repos/%s/actions/artifacts/%s", p.baseURL, repo, id)
	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"unknown method %q: expected workflow, run or artifact", method)), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     url,
		Headers: headers(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	entity := resp.JSON()
	return mcp.NewToolResultText(fmt.Sprintf("%s %d: %s\nStatus: %s %s\nURL: %s",
		method, entity.Get("id").Int(), entity.Get("name").Str,
		entity.Get("status").Str, entity.Get("conclusion").Str,
		entity.Get("html_url").Str)), nil
}

func actionsRunTrigger(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	method, err := registry.RequiredString(args, "method")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := registry.RequiredString(args, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var url string
	var body any
	switch method {
	case "dispatch":
		url = fmt.Sprintf("%s/repos/%s/actions/workflows/%s/dispatches", p.baseURL, repo, id)
		dispatch := map[string]any{"ref": registry.OptionalString(args, "ref", "main")}
		if inputs, err := registry.OptionalMap(args, "inputs"); err == nil && len(inputs) > 0 {
			dispatch["inputs"] = inputs
		}
		body = dispatch
	case "rerun":
		url = fmt.Sprintf("%s/repos/%s/actions/runs/%s/rerun", p.baseURL, repo, id)
	case "cancel":
		url = fmt.Sprintf("%s/repos/%s/actions/runs/%s/cancel", p.baseURL, repo, id)
	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"unknown method %q: expected dispatch, rerun or cancel", method)), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     url,
		Headers: headers(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s accepted for %s in %s", method, id, repo)), nil
}

func getJobLogs(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	method, err := registry.RequiredString(args, "method")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repo, err := repoArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := registry.RequiredString(args, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch method {
	case "job_logs":
		resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
			Method:  http.MethodGet,
			URL:     fmt.Sprintf("%s/repos/%s/actions/jobs/%s/logs", p.baseURL, repo, id),
			Headers: headers(token),
		})
		if err != nil {
			return upstream.FailureResult(displayName, err), nil
		}
		if !resp.OK() {
			return upstream.ErrorResult(displayName, resp), nil
		}
		return mcp.NewToolResultText(string(resp.Body)), nil

	case "run_jobs":
		resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
			Method:  http.MethodGet,
			URL:     fmt.Sprintf("%s/repos/%s/actions/runs/%s/jobs", p.baseURL, repo, id),
			Headers: headers(token),
		})
		if err != nil {
			return upstream.FailureResult(displayName, err), nil
		}
		if !resp.OK() {
			return upstream.ErrorResult(displayName, resp), nil
		}
		var sb strings.Builder
		for _, job := range resp.JSON().Get("jobs").Array() {
			fmt.Fprintf(&sb, "%d: %s [%s/%s]\n",
				job.Get("id").Int(), job.Get("name").Str,
				job.Get("status").Str, job.Get("conclusion").Str)
		}
		return mcp.NewToolResultText(sb.String()), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"unknown method %q: expected job_logs or run_jobs", method)), nil
	}
}
