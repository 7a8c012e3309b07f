package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonp/mcp-gateway/pkg/registry"
)

type staticResolver struct {
	token string
}

func (s staticResolver) Resolve(_ context.Context, _, _ string) (string, error) {
	return s.token, nil
}

func testCallContext(token string) *registry.CallContext {
	return &registry.CallContext{
		UserID:   "jason",
		Resolver: staticResolver{token: token},
		HTTP:     &http.Client{Timeout: 5 * time.Second},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestCreateIssue(t *testing.T) {
	t.Parallel()

	var gotAuth, gotAccept string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/repos/jasonp/notes/issues", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number": 42, "title": "Fix the build",
			"html_url": "https://github.com/jasonp/notes/issues/42"}`))
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL)
	res, err := p.Call(context.Background(), "create_issue", map[string]any{
		"repo":   "jasonp/notes",
		"title":  "Fix the build",
		"labels": []any{"bug"},
	}, testCallContext("gho_secret"))
	require.NoError(t, err)

	assert.False(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, "Created issue #42: Fix the build")
	assert.Contains(t, text, "https://github.com/jasonp/notes/issues/42")

	assert.Equal(t, "Bearer gho_secret", gotAuth)
	assert.Equal(t, "application/vnd.github+json", gotAccept)
	assert.Equal(t, "Fix the build", gotBody["title"])
	assert.Equal(t, []any{"bug"}, gotBody["labels"])
}

func TestCreateIssueMissingArgs(t *testing.T) {
	t.Parallel()

	p := New()
	cc := testCallContext("tok")

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "missing repo",
			args: map[string]any{"title": "x"},
			want: "argument repo is required",
		},
		{
			name: "missing title",
			args: map[string]any{"repo": "jasonp/notes"},
			want: "argument title is required",
		},
		{
			name: "bad repo shape",
			args: map[string]any{"repo": "notes", "title": "x"},
			want: "owner/repo",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Call(context.Background(), "create_issue", tt.args, cc)
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestUpstreamErrorSurfacedAsToolError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL)
	res, err := p.Call(context.Background(), "get_issue", map[string]any{
		"repo":         "jasonp/gone",
		"issue_number": float64(1),
	}, testCallContext("tok"))
	require.NoError(t, err)

	assert.True(t, res.IsError)
	assert.Equal(t, "GitHub API error: 404 Not Found", resultText(t, res))
}

func TestGetPullRequestDiffUsesDiffMediaType(t *testing.T) {
	t.Parallel()

	const diff = "diff --git a/main.go b/main.go\n+hello\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/vnd.github.diff", r.Header.Get("Accept"))
		require.Equal(t, "/repos/jasonp/notes/pulls/7", r.URL.Path)
		_, _ = w.Write([]byte(diff))
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL)
	res, err := p.Call(context.Background(), "get_pull_request_diff", map[string]any{
		"repo":        "jasonp/notes",
		"pull_number": float64(7),
	}, testCallContext("tok"))
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Equal(t, diff, resultText(t, res))
}

func TestListCommits(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/jasonp/notes/commits", r.URL.Path)
		require.Equal(t, "main", r.URL.Query().Get("sha"))
		require.Equal(t, "5", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[
			{"sha": "abc123def456", "commit": {"message": "first line\n\nbody", "author": {"name": "Jason"}}},
			{"sha": "def456abc789", "commit": {"message": "second", "author": {"name": "Jason"}}}
		]`))
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL)
	res, err := p.Call(context.Background(), "list_commits", map[string]any{
		"repo":     "jasonp/notes",
		"sha":      "main",
		"per_page": float64(5),
	}, testCallContext("tok"))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "abc123de first line (Jason)")
	assert.Contains(t, text, "def456ab second (Jason)")
	assert.NotContains(t, text, "body")
}

func TestActionsUnknownMethod(t *testing.T) {
	t.Parallel()

	p := New()
	cc := testCallContext("tok")

	res, err := p.Call(context.Background(), "actions_list", map[string]any{
		"repo":   "jasonp/notes",
		"method": "pipelines",
	}, cc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), `unknown method "pipelines": expected workflows, runs or artifacts`)
}

func TestGetRawFileURLSkipsAuth(t *testing.T) {
	t.Parallel()

	// A resolver that fails proves no token is requested.
	p := New()
	cc := &registry.CallContext{
		UserID:   "jason",
		Resolver: failingResolver{},
		HTTP:     http.DefaultClient,
	}

	res, err := p.Call(context.Background(), "get_raw_file_url", map[string]any{
		"repo": "jasonp/notes",
		"path": "docs/readme.md",
		"ref":  "main",
	}, cc)
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Equal(t, "https://raw.githubusercontent.com/jasonp/notes/main/docs/readme.md",
		resultText(t, res))
}

type failingResolver struct{}

func (failingResolver) Resolve(_ context.Context, _, _ string) (string, error) {
	return "", context.Canceled
}

func TestUnknownTool(t *testing.T) {
	t.Parallel()

	p := New()
	res, err := p.Call(context.Background(), "delete_repo", nil, testCallContext("tok"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "unknown GitHub tool: delete_repo")
}

func TestCatalogMatchesHandlers(t *testing.T) {
	t.Parallel()

	tools := (&Provider{}).Tools()
	require.Len(t, tools, len(handlers))
	for _, tool := range tools {
		_, ok := handlers[tool.Name]
		assert.True(t, ok, "tool %s has no handler", tool.Name)
	}
}
