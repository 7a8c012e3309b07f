package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"
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

func b64url(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestSearchEmailsFetchesMetadata(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer ya29.tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/messages":
			require.Equal(t, "from:boss", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"messages": [{"id": "m1"}, {"id": "m2"}]}`))
		case "/messages/m1", "/messages/m2":
			require.Equal(t, "metadata", r.URL.Query().Get("format"))
			_, _ = w.Write([]byte(`{"payload": {"headers": [
				{"name": "From", "value": "boss@example.com"},
				{"name": "Subject", "value": "deadline"},
				{"name": "Date", "value": "Mon, 1 Jun 2026 09:00:00 +0000"}
			]}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p := New("", WithBaseURL(srv.URL))
	res, err := p.Call(context.Background(), "search_emails", map[string]any{
		"query": "from:boss",
	}, testCallContext("ya29.tok"))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "m1")
	assert.Contains(t, text, "from: boss@example.com")
	assert.Contains(t, text, "subject: deadline")
}

func TestReadEmailPrefersPlainText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/m1", r.URL.Path)
		require.Equal(t, "full", r.URL.Query().Get("format"))
		body := map[string]any{
			"payload": map[string]any{
				"mimeType": "multipart/alternative",
				"headers": []map[string]string{
					{"name": "From", "value": "a@example.com"},
					{"name": "Subject", "value": "hello"},
				},
				"parts": []map[string]any{
					{"mimeType": "text/plain", "body": map[string]any{"data": b64url("plain body")}},
					{"mimeType": "text/html", "body": map[string]any{"data": b64url("<b>html</b>")}},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	p := New("", WithBaseURL(srv.URL))
	res, err := p.Call(context.Background(), "read_email", map[string]any{
		"message_id": "m1",
	}, testCallContext("tok"))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "plain body")
	assert.NotContains(t, text, "<b>html</b>")
}

func TestReadEmailHTMLOnlyGetsNote(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{
			"payload": map[string]any{
				"mimeType": "text/html",
				"headers":  []map[string]string{{"name": "Subject", "value": "promo"}},
				"body":     map[string]any{"data": b64url("<p>sale</p>")},
			},
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	p := New("", WithBaseURL(srv.URL))
	res, err := p.Call(context.Background(), "read_email", map[string]any{
		"message_id": "m1",
	}, testCallContext("tok"))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "[HTML message; raw markup follows]")
	assert.Contains(t, text, "<p>sale</p>")
}

func TestSendEmailSubmitsRawWithThread(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"id": "sent1"}`))
	}))
	defer srv.Close()

	p := New("", WithBaseURL(srv.URL))
	res, err := p.Call(context.Background(), "send_email", map[string]any{
		"to":        []any{"a@example.com"},
		"subject":   "hi",
		"body":      "hello there",
		"thread_id": "t9",
	}, testCallContext("tok"))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Sent message sent1")

	assert.Equal(t, "t9", gotBody["threadId"])

	raw, ok := gotBody["raw"].(string)
	require.True(t, ok)
	assert.NotContains(t, raw, "=", "raw must be unpadded")
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "To: a@example.com\r\n")
	assert.Contains(t, string(decoded), "hello there")
}

func TestDraftEmailWrapsMessage(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/drafts", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"id": "d1"}`))
	}))
	defer srv.Close()

	p := New("", WithBaseURL(srv.URL))
	res, err := p.Call(context.Background(), "draft_email", map[string]any{
		"to":      []any{"a@example.com"},
		"subject": "later",
		"body":    "draft text",
	}, testCallContext("tok"))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Created draft d1")

	message, ok := gotBody["message"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, message, "raw")
}

func TestModifyEmailRequiresLabels(t *testing.T) {
	t.Parallel()

	p := New("")
	res, err := p.Call(context.Background(), "modify_email", map[string]any{
		"message_id": "m1",
	}, testCallContext("tok"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "add_label_ids or remove_label_ids")
}

func TestGetOrCreateLabelFindsExisting(t *testing.T) {
	t.Parallel()

	created := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/labels", r.URL.Path)
		if r.Method == http.MethodPost {
			created = true
		}
		_, _ = w.Write([]byte(`{"labels": [{"id": "L9", "name": "Receipts", "type": "user"}]}`))
	}))
	defer srv.Close()

	p := New("", WithBaseURL(srv.URL))
	res, err := p.Call(context.Background(), "get_or_create_label", map[string]any{
		"name": "Receipts",
	}, testCallContext("tok"))
	require.NoError(t, err)

	assert.Contains(t, resultText(t, res), `Label "Receipts" exists (L9)`)
	assert.False(t, created, "must not create when the label exists")
}

func TestGetOrCreateLabelCreatesWhenMissing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"id": "L10", "name": "Travel"}`))
			return
		}
		_, _ = w.Write([]byte(`{"labels": []}`))
	}))
	defer srv.Close()

	p := New("", WithBaseURL(srv.URL))
	res, err := p.Call(context.Background(), "get_or_create_label", map[string]any{
		"name": "Travel",
	}, testCallContext("tok"))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `Created label "Travel" (L10)`)
}

func TestCreateFilterFromTemplate(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/settings/filters", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"id": "flt1"}`))
	}))
	defer srv.Close()

	p := New("", WithBaseURL(srv.URL))
	res, err := p.Call(context.Background(), "create_filter_from_template", map[string]any{
		"template": "archive_from",
		"from":     "newsletter@example.com",
	}, testCallContext("tok"))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Created filter flt1")

	criteria := gotBody["criteria"].(map[string]any)
	assert.Equal(t, "newsletter@example.com", criteria["from"])
	action := gotBody["action"].(map[string]any)
	assert.Equal(t, []any{"INBOX"}, action["removeLabelIds"])
}

func TestCreateFilterFromTemplateUnknown(t *testing.T) {
	t.Parallel()

	p := New("")
	res, err := p.Call(context.Background(), "create_filter_from_template", map[string]any{
		"template": "forward_all",
		"from":     "x@example.com",
	}, testCallContext("tok"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), `unknown template "forward_all"`)
}

func TestUpstreamErrorSurfaced(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "insufficient scope"}}`))
	}))
	defer srv.Close()

	p := New("", WithBaseURL(srv.URL))
	res, err := p.Call(context.Background(), "list_labels", nil, testCallContext("tok"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Gmail API error: 403 insufficient scope", resultText(t, res))
}

func TestFlattenPayloadNestedMultipart(t *testing.T) {
	t.Parallel()

	payload := `{
		"mimeType": "multipart/mixed",
		"parts": [
			{"mimeType": "multipart/alternative", "parts": [
				{"mimeType": "text/plain", "body": {"data": "` + b64url("inner text") + `"}},
				{"mimeType": "text/html", "body": {"data": "` + b64url("<i>x</i>") + `"}}
			]},
			{"mimeType": "application/pdf", "filename": "invite.pdf",
			 "body": {"attachmentId": "att1"}}
		]
	}`

	content := flattenPayload(parseJSON(t, payload))
	assert.Equal(t, "inner text", content.PlainText)
	assert.Equal(t, "<i>x</i>", content.HTML)
	require.Len(t, content.Attachments, 1)
	assert.Equal(t, "att1", content.Attachments[0].AttachmentID)
	assert.Equal(t, "invite.pdf", content.Attachments[0].Filename)
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

func parseJSON(t *testing.T, s string) gjson.Result {
	t.Helper()
	require.True(t, gjson.Valid(s), "invalid test JSON")
	return gjson.Parse(s)
}
