package calendar

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

func TestCreateEventAllDayVersusTimed(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/calendars/primary/events", r.URL.Path)
		require.Equal(t, "Bearer ya29.tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"id": "ev1", "summary": "Dentist",
			"htmlLink": "https://calendar.google.com/event?eid=ev1"}`))
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL)
	cc := testCallContext("ya29.tok")

	res, err := p.Call(context.Background(), "create_event", map[string]any{
		"summary": "Dentist",
		"start":   "2026-09-01",
		"end":     "2026-09-02",
	}, cc)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `Created event "Dentist" (ev1)`)
	assert.Equal(t, map[string]any{"date": "2026-09-01"}, gotBody["start"])

	_, err = p.Call(context.Background(), "create_event", map[string]any{
		"summary": "Standup",
		"start":   "2026-09-01T09:00:00Z",
		"end":     "2026-09-01T09:15:00Z",
	}, cc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"dateTime": "2026-09-01T09:00:00Z"}, gotBody["start"])
}

func TestCreateEventMissingArgs(t *testing.T) {
	t.Parallel()

	p := New()
	res, err := p.Call(context.Background(), "create_event", map[string]any{
		"summary": "No times",
	}, testCallContext("tok"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "argument start is required", resultText(t, res))
}

func TestListEventsFormatsItems(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calendars/work/events", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		require.Equal(t, "startTime", r.URL.Query().Get("orderBy"))
		require.NotEmpty(t, r.URL.Query().Get("timeMin"))
		_, _ = w.Write([]byte(`{"items": [
			{"id": "a", "summary": "Standup",
			 "start": {"dateTime": "2026-09-01T09:00:00Z"},
			 "end": {"dateTime": "2026-09-01T09:15:00Z"}},
			{"id": "b", "summary": "Offsite", "location": "Lisbon",
			 "start": {"date": "2026-09-03"}, "end": {"date": "2026-09-05"}}
		]}`))
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL)
	res, err := p.Call(context.Background(), "list_events", map[string]any{
		"calendar_id": "work",
	}, testCallContext("tok"))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "Standup")
	assert.Contains(t, text, "2026-09-01T09:00:00Z to 2026-09-01T09:15:00Z")
	assert.Contains(t, text, "location: Lisbon")
	assert.Contains(t, text, "2026-09-03 to 2026-09-05")
}

func TestRespondToEventPatchesSelfAttendee(t *testing.T) {
	t.Parallel()

	var patched map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calendars/primary/events/ev9", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"id": "ev9", "attendees": [
				{"email": "boss@example.com", "responseStatus": "accepted"},
				{"email": "jason@example.com", "responseStatus": "needsAction", "self": true}
			]}`))
		case http.MethodPatch:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
			_, _ = w.Write([]byte(`{"id": "ev9"}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL)
	res, err := p.Call(context.Background(), "respond_to_event", map[string]any{
		"event_id": "ev9",
		"response": "declined",
	}, testCallContext("tok"))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Marked event ev9 as declined")

	attendees := patched["attendees"].([]any)
	require.Len(t, attendees, 2)
	self := attendees[1].(map[string]any)
	assert.Equal(t, "jason@example.com", self["email"])
	assert.Equal(t, "declined", self["responseStatus"])
	other := attendees[0].(map[string]any)
	assert.Equal(t, "accepted", other["responseStatus"])
}

func TestRespondToEventRejectsUnknownResponse(t *testing.T) {
	t.Parallel()

	p := New()
	res, err := p.Call(context.Background(), "respond_to_event", map[string]any{
		"event_id": "ev9",
		"response": "maybe",
	}, testCallContext("tok"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), `unknown response "maybe"`)
}

func TestGetFreeBusy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/freeBusy", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "2026-09-01T00:00:00Z", body["timeMin"])
		_, _ = w.Write([]byte(`{"calendars": {"primary": {"busy": [
			{"start": "2026-09-01T09:00:00Z", "end": "2026-09-01T10:00:00Z"}
		]}}}`))
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL)
	res, err := p.Call(context.Background(), "get_freebusy", map[string]any{
		"time_min": "2026-09-01T00:00:00Z",
		"time_max": "2026-09-02T00:00:00Z",
	}, testCallContext("tok"))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "primary busy:")
	assert.Contains(t, text, "2026-09-01T09:00:00Z to 2026-09-01T10:00:00Z")
}

func TestGetCurrentTimeSkipsAuth(t *testing.T) {
	t.Parallel()

	p := New()
	cc := &registry.CallContext{
		UserID:   "jason",
		Resolver: failingResolver{},
		HTTP:     http.DefaultClient,
	}

	res, err := p.Call(context.Background(), "get_current_time", map[string]any{
		"timezone": "UTC",
	}, cc)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "UTC")

	res, err = p.Call(context.Background(), "get_current_time", map[string]any{
		"timezone": "Mars/Olympus",
	}, cc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

type failingResolver struct{}

func (failingResolver) Resolve(_ context.Context, _, _ string) (string, error) {
	return "", context.Canceled
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
