// Package jsonrpc implements the JSON-RPC 2.0 wire frame used by the MCP
// endpoint.
//
// The request ID is kept as raw JSON so that responses echo it byte for
// byte. Presence is distinct from value: an ID of 0, false or "" must be
// echoed unchanged, while an absent ID maps to null in the response.
package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Version is the only supported JSON-RPC protocol version.
const Version = "2.0"

// Standard JSON-RPC 2.0 error codes.
const (
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeParseError     = -32700
)

// Message represents a JSON-RPC message
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error represents a JSON-RPC error
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Response is the wire shape of a JSON-RPC response. Unlike Message, the ID
// field is always serialized: an absent request ID becomes an explicit null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// echoID returns the response ID for a request ID. A nil (absent) request ID
// maps to the JSON null literal; anything else is echoed verbatim.
func echoID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

// NewResultResponse creates a success response echoing the request ID.
func NewResultResponse(id json.RawMessage, result any) (*Response, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &Response{
		JSONRPC: Version,
		ID:      echoID(id),
		Result:  resultJSON,
	}, nil
}

// NewErrorResponse creates an error response echoing the request ID.
func NewErrorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      echoID(id),
		Error: &Error{
			Code:    code,
			Message: message,
		},
	}
}

// IsRequest returns true if the message is a request
func (m *Message) IsRequest() bool {
	return m.Method != "" && len(m.ID) > 0
}

// IsNotification returns true if the message is a notification
func (m *Message) IsNotification() bool {
	return m.Method != "" && len(m.ID) == 0
}

// Validate checks the protocol version and the overall message shape.
func (m *Message) Validate() error {
	if m.JSONRPC != Version {
		return fmt.Errorf("invalid JSON-RPC version: %q", m.JSONRPC)
	}

	if m.Method == "" {
		return fmt.Errorf("invalid JSON-RPC message: missing method")
	}

	return nil
}
