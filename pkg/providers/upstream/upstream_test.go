package upstream

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
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestDoSendsJSONBodyAndHeaders(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number": 7}`))
	}))
	defer srv.Close()

	resp, err := Do(context.Background(), srv.Client(), Request{
		Method:  http.MethodPost,
		URL:     srv.URL,
		Headers: BearerHeaders("full-token-value"),
		Body:    map[string]string{"title": "Test"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer full-token-value", gotAuth, "full token, never truncated")
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Test", gotBody["title"])
	assert.True(t, resp.OK())
	assert.Equal(t, int64(7), resp.JSON().Get("number").Int())
}

func TestDoRawBody(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		gotBody = buf[:n]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := Do(context.Background(), srv.Client(), Request{
		Method:      http.MethodPut,
		URL:         srv.URL,
		RawBody:     []byte("raw-payload"),
		ContentType: "text/plain",
	})
	require.NoError(t, err)
	assert.Equal(t, "raw-payload", string(gotBody))
	assert.Equal(t, "text/plain", gotContentType)
}

func TestErrorResultExtractsProviderMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"github style", `{"message":"Bad credentials"}`, "GitHub API error: 401 Bad credentials"},
		{"google style", `{"error":{"code":401,"message":"Invalid credentials"}}`, "GitHub API error: 401 Invalid credentials"},
		{"plain text", `nope`, "GitHub API error: 401 nope"},
		{"empty body", ``, "GitHub API error: 401 Unauthorized"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := ErrorResult("GitHub", &Response{Status: 401, Body: []byte(tc.body)})
			assert.True(t, result.IsError)
			assert.Equal(t, tc.want, resultText(t, result))
		})
	}
}

func TestFailureResultTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Do(ctx, srv.Client(), Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)

	result := FailureResult("Gmail", err)
	assert.True(t, result.IsError)
	assert.Equal(t, "Gmail timed out", resultText(t, result))
}
