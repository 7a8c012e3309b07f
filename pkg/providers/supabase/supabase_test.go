package supabase

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

func testCallContext(key string) *registry.CallContext {
	return &registry.CallContext{
		UserID:   "jason",
		Resolver: staticResolver{token: key},
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

func TestQuerySendsBothAuthHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/tasks", r.URL.Path)
		require.Equal(t, "service-key", r.Header.Get("apikey"))
		require.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		require.Equal(t, "eq.open", r.URL.Query().Get("status"))
		require.Equal(t, "*", r.URL.Query().Get("select"))
		_, _ = w.Write([]byte(`[{"id": 1, "status": "open"}]`))
	}))
	defer srv.Close()

	p := New(srv.URL)
	res, err := p.Call(context.Background(), "query", map[string]any{
		"table":   "tasks",
		"filters": map[string]any{"status": "open"},
	}, testCallContext("service-key"))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "1 rows:")
}

func TestInsertRequestsRepresentation(t *testing.T) {
	t.Parallel()

	var gotPrefer string
	var gotRows []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotPrefer = r.Header.Get("Prefer")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRows))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id": 7, "title": "new"}]`))
	}))
	defer srv.Close()

	p := New(srv.URL)
	res, err := p.Call(context.Background(), "insert", map[string]any{
		"table": "tasks",
		"rows":  []any{map[string]any{"title": "new"}},
	}, testCallContext("k"))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	assert.Equal(t, "return=representation", gotPrefer)
	require.Len(t, gotRows, 1)
	assert.Equal(t, "new", gotRows[0]["title"])
	assert.Contains(t, resultText(t, res), "Inserted 1 rows into tasks")
}

func TestUpdateRefusesMissingFilters(t *testing.T) {
	t.Parallel()

	p := New("https://example.supabase.co")
	res, err := p.Call(context.Background(), "update", map[string]any{
		"table": "tasks",
		"data":  map[string]any{"status": "done"},
	}, testCallContext("k"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "argument filters is required", resultText(t, res))
}

func TestDeleteAppliesFilters(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "eq.42", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`[{"id": 42}]`))
	}))
	defer srv.Close()

	p := New(srv.URL)
	res, err := p.Call(context.Background(), "delete", map[string]any{
		"table":   "tasks",
		"filters": map[string]any{"id": float64(42)},
	}, testCallContext("k"))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Deleted 1 rows from tasks")
}

func TestListTablesAcceptsBothRPCShapes(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"setof text":   `["tasks", "notes"]`,
		"setof record": `[{"tablename": "tasks"}, {"tablename": "notes"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/rest/v1/rpc/list_tables", r.URL.Path)
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			p := New(srv.URL)
			res, err := p.Call(context.Background(), "list_tables", nil, testCallContext("k"))
			require.NoError(t, err)
			assert.Equal(t, "tasks\nnotes", resultText(t, res))
		})
	}
}

func TestUpstreamErrorSurfaced(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "column tasks.bogus does not exist"}`))
	}))
	defer srv.Close()

	p := New(srv.URL)
	res, err := p.Call(context.Background(), "query", map[string]any{
		"table":   "tasks",
		"filters": map[string]any{"bogus": "x"},
	}, testCallContext("k"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Supabase API error: 400 column tasks.bogus does not exist", resultText(t, res))
}

func TestUnconfiguredProject(t *testing.T) {
	t.Parallel()

	p := New("")
	res, err := p.Call(context.Background(), "query", map[string]any{
		"table": "tasks",
	}, testCallContext("k"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "SUPABASE_URL is unset")
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
