// Package drive wraps the Google Drive v3 API behind MCP tool handlers,
// including export of native Google Docs formats to text.
package drive

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

const (
	defaultBaseURL   = "https://www.googleapis.com/drive/v3"
	defaultUploadURL = "https://www.googleapis.com/upload/drive/v3"

	providerName = "drive"
	displayName  = "Google Drive"

	oauthProvider = "google"

	folderMimeType = "application/vnd.google-apps.folder"
)

// exportFormats maps Google-native document types to the text format
// read_file exports them as.
var exportFormats = map[string]string{
	"application/vnd.google-apps.document":     "text/markdown",
	"application/vnd.google-apps.spreadsheet":  "text/csv",
	"application/vnd.google-apps.presentation": "text/plain",
}

// Provider implements registry.Provider for Google Drive.
type Provider struct {
	baseURL   string
	uploadURL string
}

// New creates a Provider against www.googleapis.com.
func New() *Provider {
	return &Provider{baseURL: defaultBaseURL, uploadURL: defaultUploadURL}
}

// NewWithBaseURL creates a Provider against a different API base (tests).
// Uploads go to <baseURL>/upload.
func NewWithBaseURL(baseURL string) *Provider {
	return &Provider{baseURL: baseURL, uploadURL: baseURL + "/upload"}
}

// Name returns the provider tag.
func (*Provider) Name() string { return providerName }

type handlerFunc func(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error)

var handlers = map[string]handlerFunc{
	"read_file":    readFile,
	"write_file":   writeFile,
	"list_files":   listFiles,
	"search":       search,
	"createFolder": createFolder,
	"moveItem":     moveItem,
	"renameItem":   renameItem,
}

// Call dispatches a tool invocation.
func (p *Provider) Call(
	ctx context.Context, name string, args map[string]any, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	handler, ok := handlers[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown Drive tool: %s", name)), nil
	}

	token, err := cc.Resolver.Resolve(ctx, cc.UserID, oauthProvider)
	if err != nil {
		return upstream.AuthFailureResult(displayName, err), nil
	}

	return handler(ctx, p, args, token, cc)
}
