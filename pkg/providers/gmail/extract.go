package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/logger"
	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

const (
	// maxPromptChars caps how much accumulated body text goes to the model.
	maxPromptChars = 20000

	// minBodyForAI is the shortest body worth a model call; anything
	// shorter goes straight to the regex fallback.
	minBodyForAI = 50
)

// extractionPrompt instructs the model to emit machine-readable JSON. The
// email's year is injected so bare dates like "Dec 15" resolve against the
// message, not against today.
const extractionPrompt = `Extract every date, event, deadline and date range from this email.
The email was sent in %d; resolve dates without an explicit year to that year.
Respond with JSON only, no prose, in this shape:
{"summary": "...", "events": [{"title": "...", "date": "YYYY-MM-DD", "time": "HH:MM"?}], "important_dates": [{"description": "...", "date": "YYYY-MM-DD"}], "date_ranges": [{"description": "...", "start": "YYYY-MM-DD", "end": "YYYY-MM-DD"}]}`

// extractDatesFromEmail fetches the full message, flattens its MIME tree,
// pulls text out of PDF attachments, and asks the model to structure the
// dates. When no model is configured or the call fails, a regex scan of
// the accumulated text stands in.
func extractDatesFromEmail(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	messageID, err := registry.RequiredString(args, "message_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/messages/%s?format=full", p.baseURL, url.PathEscape(messageID)),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	msg := resp.JSON()
	payload := msg.Get("payload")
	content := flattenPayload(payload)
	year := emailYear(header(payload, "Date"))

	body := content.PlainText
	var firstImage *attachmentRef
	for i, a := range content.Attachments {
		switch {
		case a.MimeType == "application/pdf" && p.pdf != nil:
			data, err := p.fetchAttachment(ctx, cc, token, messageID, a.AttachmentID)
			if err != nil {
				logger.Warnf("skipping PDF attachment %s: %v", a.Filename, err)
				continue
			}
			text, err := p.pdf.ExtractText(data)
			if err != nil {
				logger.Warnf("text extraction failed for %s: %v", a.Filename, err)
				continue
			}
			body += "\n" + text
		case strings.HasPrefix(a.MimeType, "image/") && firstImage == nil:
			firstImage = &content.Attachments[i]
		}
	}

	if p.llm != nil && (firstImage != nil || len(body) >= minBodyForAI) {
		result, err := p.extractWithModel(ctx, cc, token, messageID, body, firstImage, year)
		if err == nil {
			return mcp.NewToolResultText(result), nil
		}
		logger.Warnf("model date extraction failed, falling back to regex: %v", err)
	}

	return mcp.NewToolResultText(regexExtraction(body)), nil
}

// fetchAttachment downloads and decodes one attachment body.
func (p *Provider) fetchAttachment(
	ctx context.Context, cc *registry.CallContext, token, messageID, attachmentID string,
) ([]byte, error) {
	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method: http.MethodGet,
		URL: fmt.Sprintf("%s/messages/%s/attachments/%s",
			p.baseURL, url.PathEscape(messageID), url.PathEscape(attachmentID)),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("attachment fetch returned %d", resp.Status)
	}
	return decodeBodyData(resp.JSON().Get("data").Str)
}

// extractWithModel posts either the first image or the body text to the
// model and returns the structured JSON with extraction_method set.
func (p *Provider) extractWithModel(
	ctx context.Context, cc *registry.CallContext, token, messageID string,
	body string, image *attachmentRef, year int,
) (string, error) {
	prompt := fmt.Sprintf(extractionPrompt, year)
	method := "claude_api"

	var blocks []anthropic.ContentBlockParamUnion
	if image != nil {
		data, err := p.fetchAttachment(ctx, cc, token, messageID, image.AttachmentID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch image attachment: %w", err)
		}
		// Attachment bytes arrive base64url; the model wants standard
		// base64 with padding.
		encoded := base64.StdEncoding.EncodeToString(data)
		blocks = append(blocks,
			anthropic.NewImageBlockBase64(image.MimeType, encoded),
			anthropic.NewTextBlock(prompt),
		)
		method = "claude_vision_api"
	} else {
		if len(body) > maxPromptChars {
			body = body[:maxPromptChars]
		}
		blocks = append(blocks, anthropic.NewTextBlock(prompt+"\n\nEmail body:\n"+body))
	}

	reply, err := p.llm.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     extractionModel,
		MaxTokens: 2048,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	})
	if err != nil {
		return "", err
	}

	var text string
	for _, block := range reply.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return "", fmt.Errorf("model returned no text content")
	}

	parsed := map[string]any{}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil {
		return "", fmt.Errorf("model output is not valid JSON: %w", err)
	}
	parsed["extraction_method"] = method

	out, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// stripCodeFence removes Markdown code-fence framing the model sometimes
// wraps JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// regexExtraction is the no-model path: scan the body for date-looking
// strings and report them verbatim.
func regexExtraction(body string) string {
	found := scanDates(body)
	out, _ := json.MarshalIndent(map[string]any{
		"dates_found":       found,
		"extraction_method": "regex",
		"fallback_used":     true,
	}, "", "  ")
	return string(out)
}

// emailYear parses the Date header, falling back to the current year.
func emailYear(dateHeader string) int {
	if dateHeader != "" {
		if t, err := mail.ParseDate(dateHeader); err == nil {
			return t.Year()
		}
	}
	return time.Now().Year()
}
