package github

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tools returns the GitHub tool catalog.
func (*Provider) Tools() []mcp.Tool {
	stringItems := map[string]any{"type": "string"}

	return []mcp.Tool{
		mcp.NewTool("create_issue",
			mcp.WithDescription("Create an issue in a repository"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Issue title")),
			mcp.WithString("body", mcp.Description("Issue body (Markdown)")),
			mcp.WithArray("labels", mcp.Description("Label names"), mcp.Items(stringItems)),
			mcp.WithArray("assignees", mcp.Description("Logins to assign"), mcp.Items(stringItems)),
		),
		mcp.NewTool("list_issues",
			mcp.WithDescription("List issues in a repository"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("state", mcp.Description("open, closed or all (default open)")),
			mcp.WithNumber("per_page", mcp.Description("Page size (default 30)")),
		),
		mcp.NewTool("get_issue",
			mcp.WithDescription("Get one issue"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithNumber("issue_number", mcp.Required(), mcp.Description("Issue number")),
		),
		mcp.NewTool("update_issue",
			mcp.WithDescription("Update an issue's title, body or state"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithNumber("issue_number", mcp.Required(), mcp.Description("Issue number")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("body", mcp.Description("New body")),
			mcp.WithString("state", mcp.Description("open or closed")),
		),
		mcp.NewTool("add_issue_comment",
			mcp.WithDescription("Comment on an issue or pull request"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithNumber("issue_number", mcp.Required(), mcp.Description("Issue or PR number")),
			mcp.WithString("body", mcp.Required(), mcp.Description("Comment body")),
		),
		mcp.NewTool("list_repos",
			mcp.WithDescription("List repositories for the authenticated user"),
			mcp.WithNumber("per_page", mcp.Description("Page size (default 30)")),
		),
		mcp.NewTool("get_repo",
			mcp.WithDescription("Get repository metadata"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
		),
		mcp.NewTool("create_pr",
			mcp.WithDescription("Open a pull request"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("title", mcp.Required(), mcp.Description("PR title")),
			mcp.WithString("head", mcp.Required(), mcp.Description("Branch with the changes")),
			mcp.WithString("base", mcp.Required(), mcp.Description("Branch to merge into")),
			mcp.WithString("body", mcp.Description("PR description")),
			mcp.WithBoolean("draft", mcp.Description("Open as draft")),
		),
		mcp.NewTool("list_pull_requests",
			mcp.WithDescription("List pull requests in a repository"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("state", mcp.Description("open, closed or all (default open)")),
		),
		mcp.NewTool("get_pull_request",
			mcp.WithDescription("Get one pull request"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithNumber("pull_number", mcp.Required(), mcp.Description("PR number")),
		),
		mcp.NewTool("merge_pull_request",
			mcp.WithDescription("Merge a pull request"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithNumber("pull_number", mcp.Required(), mcp.Description("PR number")),
			mcp.WithString("merge_method", mcp.Description("merge, squash or rebase (default merge)")),
			mcp.WithString("commit_title", mcp.Description("Custom merge commit title")),
		),
		mcp.NewTool("actions_list",
			mcp.WithDescription("List GitHub Actions entities. method selects the listing: "+
				"workflows, runs or artifacts"),
			mcp.WithString("method", mcp.Required(), mcp.Description("workflows, runs or artifacts")),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("workflow_id", mcp.Description("Restrict runs to one workflow (file name or id)")),
			mcp.WithNumber("per_page", mcp.Description("Page size (default 30)")),
		),
		mcp.NewTool("actions_get",
			mcp.WithDescription("Get one GitHub Actions entity. method selects: workflow, run or artifact"),
			mcp.WithString("method", mcp.Required(), mcp.Description("workflow, run or artifact")),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("id", mcp.Required(), mcp.Description("Workflow file name/id, run id or artifact id")),
		),
		mcp.NewTool("actions_run_trigger",
			mcp.WithDescription("Trigger GitHub Actions activity. method selects: dispatch, rerun or cancel"),
			mcp.WithString("method", mcp.Required(), mcp.Description("dispatch, rerun or cancel")),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("id", mcp.Required(), mcp.Description("Workflow file name/id (dispatch) or run id")),
			mcp.WithString("ref", mcp.Description("Git ref for dispatch (default main)")),
			mcp.WithObject("inputs", mcp.Description("Workflow dispatch inputs")),
		),
		mcp.NewTool("get_job_logs",
			mcp.WithDescription("Fetch GitHub Actions logs. method selects: job_logs for one job, "+
				"run_jobs to list a run's jobs with their status"),
			mcp.WithString("method", mcp.Required(), mcp.Description("job_logs or run_jobs")),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("id", mcp.Required(), mcp.Description("Job id (job_logs) or run id (run_jobs)")),
		),
		mcp.NewTool("get_file_contents",
			mcp.WithDescription("Read a file from a repository"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("path", mcp.Required(), mcp.Description("File path")),
			mcp.WithString("ref", mcp.Description("Branch, tag or commit (default default branch)")),
		),
		mcp.NewTool("list_directory",
			mcp.WithDescription("List a directory in a repository"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("path", mcp.Description("Directory path (default repository root)")),
			mcp.WithString("ref", mcp.Description("Branch, tag or commit")),
		),
		mcp.NewTool("create_or_update_file",
			mcp.WithDescription("Create or update a file via the contents API"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("path", mcp.Required(), mcp.Description("File path")),
			mcp.WithString("content", mcp.Required(), mcp.Description("New file content (plain text)")),
			mcp.WithString("message", mcp.Required(), mcp.Description("Commit message")),
			mcp.WithString("sha", mcp.Description("Blob SHA of the file being replaced (required for updates)")),
			mcp.WithString("branch", mcp.Description("Target branch")),
		),
		mcp.NewTool("delete_file",
			mcp.WithDescription("Delete a file via the contents API"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("path", mcp.Required(), mcp.Description("File path")),
			mcp.WithString("message", mcp.Required(), mcp.Description("Commit message")),
			mcp.WithString("sha", mcp.Required(), mcp.Description("Blob SHA of the file")),
			mcp.WithString("branch", mcp.Description("Target branch")),
		),
		mcp.NewTool("list_commits",
			mcp.WithDescription("List commits in a repository"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("sha", mcp.Description("Branch or commit to start from")),
			mcp.WithNumber("per_page", mcp.Description("Page size (default 30)")),
		),
		mcp.NewTool("get_commit",
			mcp.WithDescription("Get one commit with its file changes"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("sha", mcp.Required(), mcp.Description("Commit SHA")),
		),
		mcp.NewTool("compare_commits",
			mcp.WithDescription("Compare two commits or branches"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("base", mcp.Required(), mcp.Description("Base ref")),
			mcp.WithString("head", mcp.Required(), mcp.Description("Head ref")),
		),
		mcp.NewTool("get_commit_diff",
			mcp.WithDescription("Get the raw diff of a commit"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("sha", mcp.Required(), mcp.Description("Commit SHA")),
		),
		mcp.NewTool("get_pull_request_diff",
			mcp.WithDescription("Get the raw diff of a pull request"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithNumber("pull_number", mcp.Required(), mcp.Description("PR number")),
		),
		mcp.NewTool("search_code",
			mcp.WithDescription("Search code across GitHub"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query (GitHub code search syntax)")),
			mcp.WithNumber("per_page", mcp.Description("Page size (default 30)")),
		),
		mcp.NewTool("get_file_tree",
			mcp.WithDescription("Get the full file tree of a ref"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("ref", mcp.Description("Branch, tag or commit (default HEAD)")),
		),
		mcp.NewTool("get_raw_file_url",
			mcp.WithDescription("Build the raw.githubusercontent.com URL for a file"),
			mcp.WithString("repo", mcp.Required(), mcp.Description("Repository in owner/repo form")),
			mcp.WithString("path", mcp.Required(), mcp.Description("File path")),
			mcp.WithString("ref", mcp.Description("Branch, tag or commit (default main)")),
		),
	}
}
