package supabase

import "github.com/mark3labs/mcp-go/mcp"

// Tools returns the Supabase tool catalog.
func (*Provider) Tools() []mcp.Tool {
	filtersProp := mcp.WithObject("filters",
		mcp.Description("Column equality filters, e.g. {\"status\": \"open\"}"))

	return []mcp.Tool{
		mcp.NewTool("query",
			mcp.WithDescription("Select rows from a table"),
			mcp.WithString("table", mcp.Required(), mcp.Description("Table name")),
			mcp.WithString("select", mcp.Description("Comma-separated columns (default *)")),
			filtersProp,
			mcp.WithNumber("limit", mcp.Description("Maximum rows (default 100)")),
			mcp.WithString("order", mcp.Description("Order clause, e.g. created_at.desc")),
		),
		mcp.NewTool("insert",
			mcp.WithDescription("Insert one or more rows"),
			mcp.WithString("table", mcp.Required(), mcp.Description("Table name")),
			mcp.WithArray("rows", mcp.Required(), mcp.Description("Rows to insert"),
				mcp.Items(map[string]any{"type": "object"})),
		),
		mcp.NewTool("update",
			mcp.WithDescription("Update rows matching the filters"),
			mcp.WithString("table", mcp.Required(), mcp.Description("Table name")),
			mcp.WithObject("data", mcp.Required(), mcp.Description("Column values to set")),
			filtersProp,
		),
		mcp.NewTool("delete",
			mcp.WithDescription("Delete rows matching the filters"),
			mcp.WithString("table", mcp.Required(), mcp.Description("Table name")),
			filtersProp,
		),
		mcp.NewTool("list_tables",
			mcp.WithDescription("List the tables in the public schema"),
		),
	}
}
