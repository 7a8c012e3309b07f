package calendar

import "github.com/mark3labs/mcp-go/mcp"

// Tools returns the Calendar tool catalog.
func (*Provider) Tools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("list_calendars",
			mcp.WithDescription("List the calendars on the account"),
		),
		mcp.NewTool("list_events",
			mcp.WithDescription("List upcoming events on a calendar"),
			mcp.WithString("calendar_id", mcp.Description("Calendar id (default primary)")),
			mcp.WithString("time_min", mcp.Description("RFC3339 lower bound (default now)")),
			mcp.WithString("time_max", mcp.Description("RFC3339 upper bound")),
			mcp.WithNumber("max_results", mcp.Description("Maximum events to return (default 25)")),
		),
		mcp.NewTool("get_event",
			mcp.WithDescription("Get one event's full details"),
			mcp.WithString("event_id", mcp.Required(), mcp.Description("Event id")),
			mcp.WithString("calendar_id", mcp.Description("Calendar id (default primary)")),
		),
		mcp.NewTool("create_event",
			mcp.WithDescription("Create a calendar event"),
			mcp.WithString("summary", mcp.Required(), mcp.Description("Event title")),
			mcp.WithString("start", mcp.Required(),
				mcp.Description("Start: RFC3339 date-time, or YYYY-MM-DD for all-day")),
			mcp.WithString("end", mcp.Required(),
				mcp.Description("End: RFC3339 date-time, or YYYY-MM-DD for all-day")),
			mcp.WithString("description", mcp.Description("Event description")),
			mcp.WithString("location", mcp.Description("Event location")),
			mcp.WithArray("attendees", mcp.Description("Attendee email addresses"),
				mcp.Items(map[string]any{"type": "string"})),
			mcp.WithString("color_id", mcp.Description("Calendar color id (see list_colors)")),
			mcp.WithString("calendar_id", mcp.Description("Calendar id (default primary)")),
		),
		mcp.NewTool("update_event",
			mcp.WithDescription("Update fields of an existing event"),
			mcp.WithString("event_id", mcp.Required(), mcp.Description("Event id")),
			mcp.WithString("summary", mcp.Description("New title")),
			mcp.WithString("start", mcp.Description("New start (RFC3339 or YYYY-MM-DD)")),
			mcp.WithString("end", mcp.Description("New end (RFC3339 or YYYY-MM-DD)")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("location", mcp.Description("New location")),
			mcp.WithString("color_id", mcp.Description("New color id")),
			mcp.WithString("calendar_id", mcp.Description("Calendar id (default primary)")),
		),
		mcp.NewTool("delete_event",
			mcp.WithDescription("Delete an event"),
			mcp.WithString("event_id", mcp.Required(), mcp.Description("Event id")),
			mcp.WithString("calendar_id", mcp.Description("Calendar id (default primary)")),
		),
		mcp.NewTool("search_events",
			mcp.WithDescription("Full-text search over a calendar's events"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
			mcp.WithString("calendar_id", mcp.Description("Calendar id (default primary)")),
			mcp.WithString("time_min", mcp.Description("RFC3339 lower bound")),
			mcp.WithString("time_max", mcp.Description("RFC3339 upper bound")),
			mcp.WithNumber("max_results", mcp.Description("Maximum events to return (default 25)")),
		),
		mcp.NewTool("respond_to_event",
			mcp.WithDescription("Accept, decline or tentatively accept an invitation"),
			mcp.WithString("event_id", mcp.Required(), mcp.Description("Event id")),
			mcp.WithString("response", mcp.Required(),
				mcp.Description("One of accepted, declined, tentative")),
			mcp.WithString("calendar_id", mcp.Description("Calendar id (default primary)")),
		),
		mcp.NewTool("get_freebusy",
			mcp.WithDescription("Query free/busy intervals across calendars"),
			mcp.WithString("time_min", mcp.Required(), mcp.Description("RFC3339 lower bound")),
			mcp.WithString("time_max", mcp.Required(), mcp.Description("RFC3339 upper bound")),
			mcp.WithArray("calendar_ids", mcp.Description("Calendar ids (default primary)"),
				mcp.Items(map[string]any{"type": "string"})),
		),
		mcp.NewTool("get_current_time",
			mcp.WithDescription("Get the current date and time"),
			mcp.WithString("timezone", mcp.Description("IANA timezone name (default UTC)")),
		),
		mcp.NewTool("list_colors",
			mcp.WithDescription("List the available event and calendar colors"),
		),
		mcp.NewTool("manage_accounts",
			mcp.WithDescription("Show the connected Google account and its calendar access"),
		),
	}
}
