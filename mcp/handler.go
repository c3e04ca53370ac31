// Copyright 2025 Ansvar Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ansvar-systems/automcp/tools"
)

// ServerName identifies this server to MCP clients.
const ServerName = "automotive-cybersecurity-mcp"

// ToolRegistry lists and runs tools.
type ToolRegistry interface {
	List() []tools.Tool
	Call(ctx context.Context, name string, args json.RawMessage) *tools.Result
}

// RequestObserver is notified of every handled JSON-RPC method.
type RequestObserver interface {
	ObserveRequest(method string)
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets a custom logger.
// Default is slog.Default().
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
	}
}

// WithRequestObserver reports handled methods to observer.
func WithRequestObserver(observer RequestObserver) HandlerOption {
	return func(h *Handler) {
		h.observer = observer
	}
}

// Handler routes JSON-RPC messages to the tool registry. It holds no
// per-connection state and is safe for concurrent use.
type Handler struct {
	registry   ToolRegistry
	serverInfo ImplementationInfo
	observer   RequestObserver
	logger     *slog.Logger
}

// NewHandler creates a Handler reporting version as the server version.
func NewHandler(registry ToolRegistry, version string, opts ...HandlerOption) *Handler {
	h := &Handler{
		registry:   registry,
		serverInfo: ImplementationInfo{Name: ServerName, Version: version},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleMessage decodes one raw message and returns the encoded response,
// or nil when the message was a notification.
func (h *Handler) HandleMessage(ctx context.Context, raw []byte) []byte {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return encode(h.errorResponse(nil, &RPCError{Code: ParseError, Message: "Invalid JSON"}))
	}
	resp := h.Handle(ctx, &req)
	if resp == nil {
		return nil
	}
	return encode(resp)
}

// Handle processes a decoded request. It returns nil for notifications.
func (h *Handler) Handle(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != JSONRPCVersion {
		return h.errorResponse(req.ID, &RPCError{Code: InvalidRequest, Message: "Invalid JSON-RPC version"})
	}
	if h.observer != nil {
		h.observer.ObserveRequest(req.Method)
	}

	result, err := h.handleMethod(ctx, req)
	if req.IsNotification() {
		if err != nil {
			h.logger.Debug("notification failed", "method", req.Method, "err", err)
		}
		return nil
	}
	if err != nil {
		rpcErr, ok := err.(*RPCError)
		if !ok {
			rpcErr = &RPCError{Code: InternalError, Message: err.Error()}
		}
		return h.errorResponse(req.ID, rpcErr)
	}
	return &Response{JSONRPC: JSONRPCVersion, ID: req.ID, Result: result}
}

func (h *Handler) handleMethod(ctx context.Context, req *Request) (any, error) {
	switch req.Method {
	case MethodInitialize:
		return h.handleInitialize(req.Params)
	case MethodInitialized, "initialized":
		return nil, nil
	case MethodPing:
		return struct{}{}, nil
	case MethodToolsList:
		return ListToolsResult{Tools: h.registry.List()}, nil
	case MethodToolsCall:
		return h.handleToolsCall(ctx, req.Params)
	default:
		return nil, &RPCError{Code: MethodNotFound, Message: fmt.Sprintf("Method not found: %s", req.Method)}
	}
}

func (h *Handler) handleInitialize(params json.RawMessage) (any, error) {
	var p InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &RPCError{Code: InvalidParams, Message: "Invalid initialize params"}
		}
	}
	h.logger.Info("MCP client connecting", "client", p.ClientInfo.Name, "client_version", p.ClientInfo.Version,
		"protocol", p.ProtocolVersion)

	return InitializeResult{
		ProtocolVersion: negotiateVersion(p.ProtocolVersion),
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      h.serverInfo,
	}, nil
}

// negotiateVersion echoes a supported requested revision and otherwise
// offers the newest one.
func negotiateVersion(requested string) string {
	if slices.Contains(SupportedProtocolVersions, requested) {
		return requested
	}
	return SupportedProtocolVersions[0]
}

func (h *Handler) handleToolsCall(ctx context.Context, params json.RawMessage) (any, error) {
	var p CallToolParams
	if len(params) == 0 {
		return nil, &RPCError{Code: InvalidParams, Message: "Invalid parameters"}
	}
	if err := json.Unmarshal(params, &p); err != nil || p.Name == "" {
		return nil, &RPCError{Code: InvalidParams, Message: "Invalid parameters"}
	}
	return h.registry.Call(ctx, p.Name, p.Arguments), nil
}

func (h *Handler) errorResponse(id json.RawMessage, err *RPCError) *Response {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Error: err}
}

func encode(resp *Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(&Response{
			JSONRPC: JSONRPCVersion,
			ID:      resp.ID,
			Error:   &RPCError{Code: InternalError, Message: "failed to encode response"},
		})
	}
	return data
}
