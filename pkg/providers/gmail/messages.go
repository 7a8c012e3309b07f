package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasonp/mcp-gateway/pkg/providers/upstream"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

// searchEmails runs the query, then loads sender/subject/date metadata for
// each hit so the result is readable without a follow-up call per message.
func searchEmails(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	query, err := registry.RequiredString(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxResults := registry.OptionalInt(args, "max_results", 10)

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method: http.MethodGet,
		URL: fmt.Sprintf("%s/messages?q=%s&maxResults=%d",
			p.baseURL, url.QueryEscape(query), maxResults),
		Headers: upstream.BearerHeaders(token),
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	messages := resp.JSON().Get("messages").Array()
	if len(messages) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No messages matching %q.", query)), nil
	}

	var sb strings.Builder
	for _, m := range messages {
		id := m.Get("id").Str
		meta, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
			Method: http.MethodGet,
			URL: fmt.Sprintf(
				"%s/messages/%s?format=metadata&metadataHeaders=From&metadataHeaders=Subject&metadataHeaders=Date",
				p.baseURL, url.PathEscape(id)),
			Headers: upstream.BearerHeaders(token),
		})
		if err != nil {
			return upstream.FailureResult(displayName, err), nil
		}
		if !meta.OK() {
			return upstream.ErrorResult(displayName, meta), nil
		}
		payload := meta.JSON().Get("payload")
		fmt.Fprintf(&sb, "%s\n  from: %s\n  date: %s\n  subject: %s\n",
			id, header(payload, "From"), header(payload, "Date"), header(payload, "Subject"))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// readEmail prefers the plain-text body; when only HTML exists it is
// returned with a note rather than silently.
func readEmail(
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

	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\nTo: %s\nDate: %s\nSubject: %s\n\n",
		header(payload, "From"), header(payload, "To"),
		header(payload, "Date"), header(payload, "Subject"))

	switch {
	case content.PlainText != "":
		sb.WriteString(content.PlainText)
	case content.HTML != "":
		sb.WriteString("[HTML message; raw markup follows]\n")
		sb.WriteString(content.HTML)
	default:
		sb.WriteString("[no readable body]")
	}

	if len(content.Attachments) > 0 {
		sb.WriteString("\n\nAttachments:\n")
		for _, a := range content.Attachments {
			fmt.Fprintf(&sb, "  %s (%s)\n", a.Filename, a.MimeType)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// outgoingFromArgs builds the RFC 822 input from tool arguments, decoding
// attachment data from standard base64.
func outgoingFromArgs(args map[string]any) (outgoingMessage, error) {
	to, err := registry.RequiredStringSlice(args, "to")
	if err != nil {
		return outgoingMessage{}, err
	}
	subject, err := registry.RequiredString(args, "subject")
	if err != nil {
		return outgoingMessage{}, err
	}
	body, err := registry.RequiredString(args, "body")
	if err != nil {
		return outgoingMessage{}, err
	}

	m := outgoingMessage{
		To:        to,
		Subject:   subject,
		TextBody:  body,
		HTMLBody:  registry.OptionalString(args, "html_body", ""),
		InReplyTo: registry.OptionalString(args, "in_reply_to", ""),
	}
	if cc, err := registry.StringSlice(args, "cc"); err == nil {
		m.Cc = cc
	}
	if bcc, err := registry.StringSlice(args, "bcc"); err == nil {
		m.Bcc = bcc
	}

	raw, ok := args["attachments"].([]any)
	if !ok {
		return m, nil
	}
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return outgoingMessage{}, fmt.Errorf("attachment %d must be an object", i)
		}
		filename, _ := obj["filename"].(string)
		if filename == "" {
			return outgoingMessage{}, fmt.Errorf("attachment %d is missing filename", i)
		}
		data, _ := obj["data"].(string)
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return outgoingMessage{}, fmt.Errorf("attachment %q data is not valid base64", filename)
		}
		mimeType, _ := obj["mime_type"].(string)
		m.Attachments = append(m.Attachments, attachment{
			Filename: filename,
			MimeType: mimeType,
			Data:     decoded,
		})
	}
	return m, nil
}

func sendEmail(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	m, err := outgoingFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{"raw": encodeRaw(buildRFC822(m))}
	if threadID := registry.OptionalString(args, "thread_id", ""); threadID != "" {
		body["threadId"] = threadID
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     p.baseURL + "/messages/send",
		Headers: upstream.BearerHeaders(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Sent message %s to %s",
		resp.JSON().Get("id").Str, strings.Join(m.To, ", "))), nil
}

func draftEmail(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	m, err := outgoingFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	message := map[string]any{"raw": encodeRaw(buildRFC822(m))}
	if threadID := registry.OptionalString(args, "thread_id", ""); threadID != "" {
		message["threadId"] = threadID
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     p.baseURL + "/drafts",
		Headers: upstream.BearerHeaders(token),
		Body:    map[string]any{"message": message},
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created draft %s", resp.JSON().Get("id").Str)), nil
}

func modifyEmail(
	ctx context.Context, p *Provider, args map[string]any, token string, cc *registry.CallContext,
) (*mcp.CallToolResult, error) {
	messageID, err := registry.RequiredString(args, "message_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	add, err := registry.StringSlice(args, "add_label_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	remove, err := registry.StringSlice(args, "remove_label_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(add) == 0 && len(remove) == 0 {
		return mcp.NewToolResultError(
			"at least one of add_label_ids or remove_label_ids is required"), nil
	}

	body := map[string]any{}
	if len(add) > 0 {
		body["addLabelIds"] = add
	}
	if len(remove) > 0 {
		body["removeLabelIds"] = remove
	}

	resp, err := upstream.Do(ctx, cc.HTTP, upstream.Request{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/messages/%s/modify", p.baseURL, url.PathEscape(messageID)),
		Headers: upstream.BearerHeaders(token),
		Body:    body,
	})
	if err != nil {
		return upstream.FailureResult(displayName, err), nil
	}
	if !resp.OK() {
		return upstream.ErrorResult(displayName, resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Modified message %s", messageID)), nil
}
