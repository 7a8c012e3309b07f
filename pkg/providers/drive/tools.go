package drive

import "github.com/mark3labs/mcp-go/mcp"

// Tools returns the Drive tool catalog.
func (*Provider) Tools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("read_file",
			mcp.WithDescription("Read a file's content. Google Docs are exported as "+
				"Markdown, Sheets as CSV, Slides as plain text."),
			mcp.WithString("fileId", mcp.Required(), mcp.Description("Drive file id (file_id is accepted as an alias)")),
		),
		mcp.NewTool("write_file",
			mcp.WithDescription("Create a file with the given content"),
			mcp.WithString("name", mcp.Required(), mcp.Description("File name")),
			mcp.WithString("content", mcp.Required(), mcp.Description("File content")),
			mcp.WithString("folder_id", mcp.Description("Parent folder id (default root)")),
			mcp.WithString("mime_type", mcp.Description("Content MIME type (default text/plain)")),
		),
		mcp.NewTool("list_files",
			mcp.WithDescription("List files in a folder"),
			mcp.WithString("folder_id", mcp.Description("Folder id (default root)")),
			mcp.WithNumber("page_size", mcp.Description("Maximum files to return (default 50)")),
		),
		mcp.NewTool("search",
			mcp.WithDescription("Full-text search across Drive"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
			mcp.WithNumber("page_size", mcp.Description("Maximum files to return (default 25)")),
		),
		mcp.NewTool("createFolder",
			mcp.WithDescription("Create a folder"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Folder name")),
			mcp.WithString("parent_id", mcp.Description("Parent folder id (default root)")),
		),
		mcp.NewTool("moveItem",
			mcp.WithDescription("Move a file or folder into another folder"),
			mcp.WithString("item_id", mcp.Required(), mcp.Description("File or folder id")),
			mcp.WithString("destination_id", mcp.Required(), mcp.Description("Destination folder id")),
		),
		mcp.NewTool("renameItem",
			mcp.WithDescription("Rename a file or folder"),
			mcp.WithString("item_id", mcp.Required(), mcp.Description("File or folder id")),
			mcp.WithString("name", mcp.Required(), mcp.Description("New name")),
		),
	}
}
