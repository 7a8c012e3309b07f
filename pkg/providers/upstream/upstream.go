// Package upstream contains the single-hop REST call shared by every tool
// handler: build request, send, classify the status, surface errors as
// tool-level results the AI client can read and retry.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"
)

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 8 << 20

// Request describes one upstream REST call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string

	// Body is JSON-encoded when set. RawBody wins when both are set and is
	// sent as-is with ContentType.
	Body        any
	RawBody     []byte
	ContentType string
}

// Response is the upstream reply.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// JSON parses the body for field extraction.
func (r *Response) JSON() gjson.Result {
	return gjson.ParseBytes(r.Body)
}

// Do performs the call. Transport-level failures (including deadline
// expiry) come back as errors; HTTP statuses of any kind come back as a
// Response for the caller to classify.
func Do(ctx context.Context, hc *http.Client, req Request) (*Response, error) {
	var body io.Reader
	contentType := req.ContentType

	switch {
	case req.RawBody != nil:
		body = bytes.NewReader(req.RawBody)
	case req.Body != nil:
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
		if contentType == "" {
			contentType = "application/json"
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

// BearerHeaders returns the standard Authorization header for a token.
// The full token is always sent; truncating it is a breaking bug.
func BearerHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// ErrorResult formats a non-2xx upstream reply as a tool-level error.
func ErrorResult(provider string, resp *Response) *mcp.CallToolResult {
	msg := upstreamMessage(resp.Body)
	if msg == "" {
		msg = http.StatusText(resp.Status)
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s API error: %d %s", provider, resp.Status, msg))
}

// FailureResult formats a transport failure (timeout included) as a
// tool-level error.
func FailureResult(provider string, err error) *mcp.CallToolResult {
	if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
		return mcp.NewToolResultError(fmt.Sprintf("%s timed out", provider))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s request failed: %v", provider, err))
}

// AuthFailureResult formats a credential resolution failure with a
// remediation hint.
func AuthFailureResult(provider string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s authentication failed: %v", provider, err))
}

func isClientTimeout(err error) bool {
	// net/http wraps deadline expiry in a *url.Error with a timeout flag.
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}

// upstreamMessage pulls the human-readable error out of the common provider
// error envelopes.
func upstreamMessage(body []byte) string {
	parsed := gjson.ParseBytes(body)
	for _, path := range []string{"message", "error.message", "error_description", "msg", "error"} {
		if v := parsed.Get(path); v.Exists() && v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 300 {
		trimmed = trimmed[:300]
	}
	return trimmed
}
