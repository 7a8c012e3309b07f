package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

// eventTime maps a user-supplied time string onto the API's start/end
// shape: bare YYYY-MM-DD means an all-day event.
func eventTime(value string) map[string]any {
	if len(value) == len("2006-01-02") && !strings.Contains(value, "T") {
		return map[string]any{"date": value}
	}
	return map[string]any{"dateTime": value}
}

// eventWhen renders a start or end object back to one string.
func eventWhen(t gjson.Result) string {
	if v := t.Get("dateTime"); v.Exists() {
		return v.Str
	}
	return t.Get("date").Str
}

func formatEvent(event gjson.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n  id: %s\n  when: %s to %s\n",
		event.Get("summary").Str, event.Get("id").Str,
		eventWhen(event.Get("start")), eventWhen(event.Get("end")))
	if loc := event.Get("location").Str; loc != "" {
		fmt.Fprintf(&sb, "  location: %s\n", loc)
	}
	if desc := event.Get("description").Str; desc != "" {
		fmt.Fprintf(&sb, "  description: %s\n", desc)
	}
	if attendees := event.Get("attendees").Array(); len(attendees) > 0 {
		sb.WriteString("  attendees:")
		for _, a := range attendees {
			fmt.Fprintf(&sb, " %s (%s)", a.Get("email").Str, a.Get("responseStatus").Str)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func calendarID(args map[string]any) string {
	return registry.OptionalString(args, "calendar_id", "primary")
}

func eventsURL(base, calendar string) string {
	return fmt.Sprintf("%s/calendars/%s/events", base, url.PathEscape(calendar))
}

func listEvents(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	q := url.Values{}
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	q.Set("maxResults", fmt.Sprint(registry.OptionalInt(args, "max_results", 25)))
	if min := registry.OptionalString(args, "time_min", ""); min != "" {
		q.Set("timeMin", min)
	} else {
		q.Set("timeMin", time.Now().UTC().Format(time.RFC3339))
	}
	if max := registry.OptionalString(args, "time_max", ""); max != "" {
		q.Set("timeMax", max)
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     eventsURL(p.baseURL, calendarID(args)) + "?" + q.Encode(),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	items := resp.JSON().Get("items").Array()
	if len(items) == 0 {
		return mcp.NewToolResultText("No events found."), nil
	}
	var sb strings.Builder
	for _, event := range items {
		sb.WriteString(formatEvent(event))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func getEvent(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	eventID, err := registry.RequiredString(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     eventsURL(p.baseURL, calendarID(args)) + "/" + url.PathEscape(eventID),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(formatEvent(resp.JSON())), nil
}

func createEvent(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	summary, err := registry.RequiredString(args, "summary")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := registry.RequiredString(args, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := registry.RequiredString(args, "end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{
		"summary": summary,
		"start":   eventTime(start),
		"end":     eventTime(end),
	}
	if v := registry.OptionalString(args, "description", ""); v != "" {
		body["description"] = v
	}
	if v := registry.OptionalString(args, "location", ""); v != "" {
		body["location"] = v
	}
	if v := registry.OptionalString(args, "color_id", ""); v != "" {
		body["colorId"] = v
	}
	if emails, err := registry.StringSlice(args, "attendees"); err == nil && len(emails) > 0 {
		attendees := make([]map[string]any, 0, len(emails))
		for _, email := range emails {
			attendees = append(attendees, map[string]any{"email": email})
		}
		body["attendees"] = attendees
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     eventsURL(p.baseURL, calendarID(args)),
		Headers: upstream.BearerHeaders(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	event := resp.JSON()
	return mcp.NewToolResultText(fmt.Sprintf("Created event %q (%s)\n%s",
		event.Get("summary").Str, event.Get("id").Str, event.Get("htmlLink").Str)), nil
}

func updateEvent(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	eventID, err := registry.RequiredString(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{}
	if v := registry.OptionalString(args, "summary", ""); v != "" {
		body["summary"] = v
	}
	if v := registry.OptionalString(args, "start", ""); v != "" {
		body["start"] = eventTime(v)
	}
	if v := registry.OptionalString(args, "end", ""); v != "" {
		body["end"] = eventTime(v)
	}
	if v := registry.OptionalString(args, "description", ""); v != "" {
		body["description"] = v
	}
	if v := registry.OptionalString(args, "location", ""); v != "" {
		body["location"] = v
	}
	if v := registry.OptionalString(args, "color_id", ""); v != "" {
		body["colorId"] = v
	}
	if len(body) == 0 {
		return mcp.NewToolResultError(
			"at least one of summary, start, end, description, location or color_id is required"), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPatch,
		URL:     eventsURL(p.baseURL, calendarID(args)) + "/" + url.PathEscape(eventID),
		Headers: upstream.BearerHeaders(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Updated event %s", eventID)), nil
}

func deleteEvent(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	eventID, err := registry.RequiredString(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodDelete,
		URL:     eventsURL(p.baseURL, calendarID(args)) + "/" + url.PathEscape(eventID),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted event %s", eventID)), nil
}

func searchEvents(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	query, err := registry.RequiredString(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("singleEvents", "true")
	q.Set("maxResults", fmt.Sprint(registry.OptionalInt(args, "max_results", 25)))
	if min := registry.OptionalString(args, "time_min", ""); min != "" {
		q.Set("timeMin", min)
	}
	if max := registry.OptionalString(args, "time_max", ""); max != "" {
		q.Set("timeMax", max)
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     eventsURL(p.baseURL, calendarID(args)) + "?" + q.Encode(),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	items := resp.JSON().Get("items").Array()
	if len(items) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No events matching %q.", query)), nil
	}
	var sb strings.Builder
	for _, event := range items {
		sb.WriteString(formatEvent(event))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// respondToEvent reads the event, flips the self attendee's responseStatus
// and patches the attendee list back. The API has no dedicated RSVP
// endpoint.
func respondToEvent(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	eventID, err := registry.RequiredString(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	response, err := registry.RequiredString(args, "response")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch response {
	case "accepted", "declined", "tentative":
	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"unknown response %q: expected accepted, declined or tentative", response)), nil
	}

	eventURL := eventsURL(p.baseURL, calendarID(args)) + "/" + url.PathEscape(eventID)
	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     eventURL,
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	attendees := resp.JSON().Get("attendees").Array()
	updated := make([]map[string]any, 0, len(attendees))
	found := false
	for _, a := range attendees {
		entry := map[string]any{
			"email":          a.Get("email").Str,
			"responseStatus": a.Get("responseStatus").Str,
		}
		if a.Get("self").Bool() {
			entry["responseStatus"] = response
			found = true
		}
		updated = append(updated, entry)
	}
	if !found {
		return mcp.NewToolResultError("you are not an attendee of this event"), nil
	}

	resp, err = upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPatch,
		URL:     eventURL,
		Headers: upstream.BearerHeaders(token),
		Body:    map[string]any{"attendees": updated},
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Marked event %s as %s", eventID, response)), nil
}
