// Package gateway serves the MCP endpoint: a JSON-RPC 2.0 surface that
// lists the composed tool catalog and dispatches tool calls to providers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"

	"github.com/jasonp/mcp-gateway/pkg/jsonrpc"
	"github.com/jasonp/mcp-gateway/pkg/logger"
	"github.com/jasonp/mcp-gateway/pkg/registry"
	"github.com/jasonp/mcp-gateway/pkg/resolver"
	"github.com/jasonp/mcp-gateway/pkg/telemetry"
)

const (
	// serverName identifies this endpoint in the initialize handshake.
	serverName = "mcp-gateway"

	// serverVersion is reported in serverInfo.
	serverVersion = "0.1.0"

	// defaultProtocolVersion is used when the client's initialize carries
	// no protocolVersion.
	defaultProtocolVersion = `"2024-11-05"`

	// maxRequestBytes bounds the inbound body.
	maxRequestBytes = 4 << 20
)

// Config assembles a Gateway.
type Config struct {
	// UserID is the deployment's token store partition.
	UserID string

	// Resolver produces access tokens and API keys for tool handlers.
	Resolver resolver.Resolver

	// Registry is the composed tool catalog.
	Registry *registry.Registry

	// HTTPClient makes the upstream REST calls.
	HTTPClient *http.Client

	// Metrics is optional; nil disables instrumentation.
	Metrics *telemetry.Metrics
}

// Gateway is the MCP JSON-RPC endpoint.
type Gateway struct {
	cfg Config
}

// New creates a Gateway.
func New(cfg Config) *Gateway {
	return &Gateway{cfg: cfg}
}

// Router returns the HTTP surface:
//
//	POST /      JSON-RPC endpoint
//	POST /mcp   same endpoint under the conventional path
//	GET  /health
//	GET  /metrics (when metrics are configured)
func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()

	for _, path := range []string{"/", "/mcp"} {
		r.Post(path, g.handleRPC)
		r.Options(path, handleCORSPreflight)
	}
	// Non-POST access to the RPC paths is an invalid request, reported
	// both at the HTTP and the JSON-RPC layer.
	r.MethodNotAllowed(handleWrongMethod)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if g.cfg.Metrics != nil {
		r.Get("/metrics", g.cfg.Metrics.Handler().ServeHTTP)
	}
	return r
}

// Server wraps the router with production timeouts. The write timeout
// leaves room for the 60s Anthropic-backed extraction call.
func (g *Gateway) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           g.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Mcp-Protocol-Version")
}

func handleCORSPreflight(w http.ResponseWriter, _ *http.Request) {
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleWrongMethod reports non-POST access as an invalid request at both
// layers: HTTP 405 carrying a JSON-RPC -32600 body.
func handleWrongMethod(w http.ResponseWriter, _ *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	resp := jsonrpc.NewErrorResponse(nil, jsonrpc.CodeInvalidRequest, "POST is required")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleRPC decodes one message or a batch, dispatches, and writes the
// response(s). Notifications produce no response entry; an all-notification
// request returns 202 with no body. Bodies that never yield a JSON-RPC
// message (empty, unreadable, unparseable) are HTTP 400; anything parseable
// is answered in-band with HTTP 200.
func (g *Gateway) handleRPC(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest,
			jsonrpc.NewErrorResponse(nil, jsonrpc.CodeInvalidRequest, "failed to read request body"))
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		writeJSON(w, http.StatusBadRequest,
			jsonrpc.NewErrorResponse(nil, jsonrpc.CodeInvalidRequest, "empty request body"))
		return
	}

	if trimmed[0] == '[' {
		g.handleBatch(r.Context(), w, trimmed)
		return
	}

	var msg jsonrpc.Message
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		writeJSON(w, http.StatusBadRequest,
			jsonrpc.NewErrorResponse(nil, jsonrpc.CodeInvalidRequest, "malformed JSON"))
		return
	}

	resp := g.dispatch(r.Context(), &msg)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleBatch(ctx context.Context, w http.ResponseWriter, body []byte) {
	var msgs []jsonrpc.Message
	if err := json.Unmarshal(body, &msgs); err != nil {
		writeJSON(w, http.StatusBadRequest,
			jsonrpc.NewErrorResponse(nil, jsonrpc.CodeInvalidRequest, "malformed JSON batch"))
		return
	}
	if len(msgs) == 0 {
		writeJSON(w, http.StatusBadRequest,
			jsonrpc.NewErrorResponse(nil, jsonrpc.CodeInvalidRequest, "empty batch"))
		return
	}

	responses := make([]*jsonrpc.Response, 0, len(msgs))
	for i := range msgs {
		if resp := g.dispatch(ctx, &msgs[i]); resp != nil {
			responses = append(responses, resp)
		}
	}
	if len(responses) == 0 {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, responses)
}

// dispatch routes one message to its method handler. It returns nil for
// notifications. A handler panic is contained to this message and reported
// as an internal error.
func (g *Gateway) dispatch(ctx context.Context, msg *jsonrpc.Message) (resp *jsonrpc.Response) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic handling %s: %v", msg.Method, r)
			resp = jsonrpc.NewErrorResponse(msg.ID, jsonrpc.CodeInternalError, "internal error")
		}
		if g.cfg.Metrics != nil {
			code := 0
			if resp != nil && resp.Error != nil {
				code = resp.Error.Code
			}
			g.cfg.Metrics.ObserveRPC(msg.Method, code, time.Since(started))
		}
	}()

	if err := msg.Validate(); err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.CodeInvalidRequest, err.Error())
	}
	if msg.IsNotification() {
		logger.Debugf("notification: %s", msg.Method)
		return nil
	}

	switch msg.Method {
	case "initialize":
		return g.handleInitialize(msg)
	case "tools/list":
		return g.handleToolsList(msg)
	case "tools/call":
		return g.handleToolsCall(ctx, msg)
	case "resources/list":
		return mustResult(msg.ID, map[string]any{"resources": []any{}})
	case "ping":
		return mustResult(msg.ID, map[string]any{})
	default:
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.CodeMethodNotFound,
			fmt.Sprintf("method not found: %s", msg.Method))
	}
}

// handleInitialize echoes the client's protocolVersion scalar verbatim,
// defaulting when absent, and advertises the tool and resource surfaces.
func (g *Gateway) handleInitialize(msg *jsonrpc.Message) *jsonrpc.Response {
	protocolVersion := json.RawMessage(defaultProtocolVersion)
	if v := gjson.GetBytes(msg.Params, "protocolVersion"); v.Exists() {
		protocolVersion = json.RawMessage(v.Raw)
	}

	result := map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools":     map[string]any{"listChanged": true},
			"resources": map[string]any{"listChanged": true},
		},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": serverVersion,
		},
	}
	return mustResult(msg.ID, result)
}

func (g *Gateway) handleToolsList(msg *jsonrpc.Message) *jsonrpc.Response {
	return mustResult(msg.ID, map[string]any{"tools": g.cfg.Registry.ListTools()})
}

func (g *Gateway) handleToolsCall(ctx context.Context, msg *jsonrpc.Message) *jsonrpc.Response {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil || params.Name == "" {
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.CodeInvalidParams,
			"params must carry a tool name")
	}

	cc := &registry.CallContext{
		UserID:   g.cfg.UserID,
		Resolver: g.cfg.Resolver,
		HTTP:     g.cfg.HTTPClient,
	}

	result, err := g.cfg.Registry.Call(ctx, params.Name, params.Arguments, cc)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownTool) {
			return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.CodeInvalidParams,
				fmt.Sprintf("unknown tool: %s", params.Name))
		}
		logger.Errorf("tool %s failed: %v", params.Name, err)
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.CodeInternalError, "internal error")
	}

	if g.cfg.Metrics != nil {
		g.cfg.Metrics.ObserveToolCall(params.Name, result.IsError)
	}
	return mustResult(msg.ID, result)
}

// mustResult wraps NewResultResponse for values that always marshal.
func mustResult(id json.RawMessage, result any) *jsonrpc.Response {
	resp, err := jsonrpc.NewResultResponse(id, result)
	if err != nil {
		logger.Errorf("failed to encode result: %v", err)
		return jsonrpc.NewErrorResponse(id, jsonrpc.CodeInternalError, "internal error")
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("failed to write response: %v", err)
	}
}
