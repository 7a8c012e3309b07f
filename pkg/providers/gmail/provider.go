// Package gmail wraps the Gmail v1 API behind MCP tool handlers: search,
// read, send with full RFC 822 construction, label and filter management,
// and AI-assisted date extraction from message bodies and attachments.
package gmail

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/networking"
	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

const (
	defaultBaseURL = "https://www.googleapis.com/gmail/v1/users/me"

	providerName = "gmail"
	displayName  = "Gmail"

	oauthProvider = "google"

	// extractionModel is the model used by extract_dates_from_email.
	extractionModel = anthropic.Model("claude-3-5-haiku-latest")
)

// TextExtractor pulls readable text out of a binary attachment. The PDF
// implementation is pluggable; without one, PDF attachments are skipped
// during date extraction.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// Provider implements registry.Provider for Gmail.
type Provider struct {
	baseURL string
	llm     *anthropic.Client
	pdf     TextExtractor
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL points the provider at a different API base (tests).
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) { p.baseURL = baseURL }
}

// WithAnthropicOptions appends request options to the extraction client
// (tests use this to redirect the API base).
func WithAnthropicOptions(opts ...option.RequestOption) Option {
	return func(p *Provider) {
		if p.llm == nil {
			return
		}
		c := anthropic.NewClient(append(p.llm.Options, opts...)...)
		p.llm = &c
	}
}

// WithTextExtractor installs a PDF text extractor.
func WithTextExtractor(te TextExtractor) Option {
	return func(p *Provider) { p.pdf = te }
}

// New creates a Provider. An empty anthropicKey disables the AI path of
// extract_dates_from_email; the regex fallback still works.
func New(anthropicKey string, opts ...Option) *Provider {
	p := &Provider{baseURL: defaultBaseURL}
	if anthropicKey != "" {
		hc, err := networking.NewHttpClientBuilder().
			WithTimeout(networking.AnthropicTimeout).
			Build()
		if err == nil {
			c := anthropic.NewClient(
				option.WithAPIKey(anthropicKey),
				option.WithHTTPClient(hc),
			)
			p.llm = &c
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider tag.
func (*Provider) Name() string { return providerName }

type handlerFunc func(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error)

var handlers = map[string]handlerFunc{
	"search_emails":               searchEmails,
	"read_email":                  readEmail,
	"send_email":                  sendEmail,
	"draft_email":                 draftEmail,
	"modify_email":                modifyEmail,
	"list_labels":                 listLabels,
	"create_label":                createLabel,
	"update_label":                updateLabel,
	"delete_label":                deleteLabel,
	"get_or_create_label":         getOrCreateLabel,
	"list_filters":                listFilters,
	"create_filter":               createFilter,
	"get_filter":                  getFilter,
	"delete_filter":               deleteFilter,
	"create_filter_from_template": createFilterFromTemplate,
	"extract_dates_from_email":    extractDatesFromEmail,
}

// Call dispatches a tool invocation.
func (p *Provider) Call(
	ctx context.Context, name string, args map[string]any, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	handler, ok := handlers[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown Gmail tool: %s", name)), nil
	}

	token, err := cc.Resolver.Resolve(ctx, cc.UserID, oauthProvider)
	if err != nil {
		return upstream.AuthFailureResult(displayName, err), nil
	}

	return handler(ctx, p, args, token, cc)
}
