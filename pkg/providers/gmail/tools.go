package gmail

import "github.com/mark3labs/mcp-go/mcp"

// Tools returns the Gmail tool catalog.
func (*Provider) Tools() []mcp.Tool {
	stringItems := map[string]any{"type": "string"}
	attachmentItems := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"filename":  map[string]any{"type": "string"},
			"mime_type": map[string]any{"type": "string"},
			"data":      map[string]any{"type": "string", "description": "Standard base64 content"},
		},
		"required": []string{"filename", "data"},
	}

	return []mcp.Tool{
		mcp.NewTool("search_emails",
			mcp.WithDescription("Search messages with Gmail query syntax"),
			mcp.WithString("query", mcp.Required(),
				mcp.Description("Gmail search query, e.g. from:boss is:unread")),
			mcp.WithNumber("max_results", mcp.Description("Maximum messages to return (default 10)")),
		),
		mcp.NewTool("read_email",
			mcp.WithDescription("Read one message's headers and body"),
			mcp.WithString("message_id", mcp.Required(), mcp.Description("Message id")),
		),
		mcp.NewTool("send_email",
			mcp.WithDescription("Send an email, optionally with attachments or as a thread reply"),
			mcp.WithArray("to", mcp.Required(), mcp.Description("Recipient addresses"),
				mcp.Items(stringItems)),
			mcp.WithString("subject", mcp.Required(), mcp.Description("Subject line")),
			mcp.WithString("body", mcp.Required(), mcp.Description("Plain-text body")),
			mcp.WithString("html_body", mcp.Description("HTML alternative body")),
			mcp.WithArray("cc", mcp.Description("Cc addresses"), mcp.Items(stringItems)),
			mcp.WithArray("bcc", mcp.Description("Bcc addresses"), mcp.Items(stringItems)),
			mcp.WithArray("attachments", mcp.Description("Attachments"), mcp.Items(attachmentItems)),
			mcp.WithString("thread_id", mcp.Description("Thread to reply within")),
			mcp.WithString("in_reply_to", mcp.Description("Message-ID header being replied to")),
		),
		mcp.NewTool("draft_email",
			mcp.WithDescription("Create a draft instead of sending"),
			mcp.WithArray("to", mcp.Required(), mcp.Description("Recipient addresses"),
				mcp.Items(stringItems)),
			mcp.WithString("subject", mcp.Required(), mcp.Description("Subject line")),
			mcp.WithString("body", mcp.Required(), mcp.Description("Plain-text body")),
			mcp.WithString("html_body", mcp.Description("HTML alternative body")),
			mcp.WithArray("cc", mcp.Description("Cc addresses"), mcp.Items(stringItems)),
			mcp.WithArray("bcc", mcp.Description("Bcc addresses"), mcp.Items(stringItems)),
			mcp.WithArray("attachments", mcp.Description("Attachments"), mcp.Items(attachmentItems)),
			mcp.WithString("thread_id", mcp.Description("Thread to attach the draft to")),
		),
		mcp.NewTool("modify_email",
			mcp.WithDescription("Add or remove labels on a message (archive, mark read, trash)"),
			mcp.WithString("message_id", mcp.Required(), mcp.Description("Message id")),
			mcp.WithArray("add_label_ids", mcp.Description("Label ids to add"), mcp.Items(stringItems)),
			mcp.WithArray("remove_label_ids", mcp.Description("Label ids to remove"),
				mcp.Items(stringItems)),
		),
		mcp.NewTool("list_labels",
			mcp.WithDescription("List all labels on the account"),
		),
		mcp.NewTool("create_label",
			mcp.WithDescription("Create a label"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Label name")),
		),
		mcp.NewTool("update_label",
			mcp.WithDescription("Rename a label"),
			mcp.WithString("label_id", mcp.Required(), mcp.Description("Label id")),
			mcp.WithString("name", mcp.Required(), mcp.Description("New name")),
		),
		mcp.NewTool("delete_label",
			mcp.WithDescription("Delete a label"),
			mcp.WithString("label_id", mcp.Required(), mcp.Description("Label id")),
		),
		mcp.NewTool("get_or_create_label",
			mcp.WithDescription("Find a label by name, creating it when absent"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Label name")),
		),
		mcp.NewTool("list_filters",
			mcp.WithDescription("List the account's filters"),
		),
		mcp.NewTool("create_filter",
			mcp.WithDescription("Create a filter from explicit criteria and actions"),
			mcp.WithString("from", mcp.Description("Criteria: sender address")),
			mcp.WithString("to", mcp.Description("Criteria: recipient address")),
			mcp.WithString("subject", mcp.Description("Criteria: subject contains")),
			mcp.WithString("query", mcp.Description("Criteria: Gmail query")),
			mcp.WithArray("add_label_ids", mcp.Description("Action: labels to add"),
				mcp.Items(stringItems)),
			mcp.WithArray("remove_label_ids", mcp.Description("Action: labels to remove"),
				mcp.Items(stringItems)),
		),
		mcp.NewTool("get_filter",
			mcp.WithDescription("Get one filter"),
			mcp.WithString("filter_id", mcp.Required(), mcp.Description("Filter id")),
		),
		mcp.NewTool("delete_filter",
			mcp.WithDescription("Delete a filter"),
			mcp.WithString("filter_id", mcp.Required(), mcp.Description("Filter id")),
		),
		mcp.NewTool("create_filter_from_template",
			mcp.WithDescription("Create a filter from a named template"),
			mcp.WithString("template", mcp.Required(),
				mcp.Description("One of archive_from, label_from, mark_read_from, trash_from")),
			mcp.WithString("from", mcp.Required(), mcp.Description("Sender address the template applies to")),
			mcp.WithString("label_id", mcp.Description("Label id (label_from template only)")),
		),
		mcp.NewTool("extract_dates_from_email",
			mcp.WithDescription("Extract events, deadlines and date ranges from a message, "+
				"its PDF attachments and images"),
			mcp.WithString("message_id", mcp.Required(), mcp.Description("Message id")),
		),
	}
}
