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

// Package tools defines the query tools exposed over MCP and dispatches
// calls to the services that implement them.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ansvar-systems/automcp/catalog"
	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/matrix"
	"github.com/ansvar-systems/automcp/requirements"
	"github.com/ansvar-systems/automcp/search"
	"github.com/ansvar-systems/automcp/workproducts"
)

// Tool is the listing entry for one tool.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	Annotations Annotations    `json:"annotations"`
}

// Annotations are behavioural hints clients may show or act on.
type Annotations struct {
	Title           string `json:"title"`
	ReadOnlyHint    bool   `json:"readOnlyHint"`
	DestructiveHint bool   `json:"destructiveHint"`
}

// Content is one block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the outcome of a tool call. Failures are results with IsError
// set, not protocol errors.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Services implement the individual tools.
type Services struct {
	Catalog      SourceCatalog
	Requirements RequirementGetter
	Search       RequirementSearcher
	WorkProducts WorkProductLister
	Matrix       MatrixExporter
}

type SourceCatalog interface {
	ListSources(ctx context.Context, sourceType string) ([]catalog.SourceInfo, error)
	About(ctx context.Context) *catalog.About
}

type RequirementGetter interface {
	Get(ctx context.Context, in requirements.GetInput) (*core.UnifiedRequirement, error)
}

type RequirementSearcher interface {
	Search(ctx context.Context, in search.SearchInput) ([]*core.SearchHit, error)
}

type WorkProductLister interface {
	List(ctx context.Context, in workproducts.ListInput) (*workproducts.Result, error)
}

type MatrixExporter interface {
	Export(ctx context.Context, in matrix.ExportInput) (*core.MatrixResult, error)
}

// CallObserver is notified after every dispatched call.
type CallObserver interface {
	ObserveCall(tool string, elapsed time.Duration, failed bool)
}

type handler func(ctx context.Context, args json.RawMessage) (any, error)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// WithObserver reports call outcomes to observer.
func WithObserver(observer CallObserver) Option {
	return func(r *Registry) {
		r.observer = observer
	}
}

// Registry holds tool definitions and their handlers.
type Registry struct {
	tools    []Tool
	handlers map[string]handler
	observer CallObserver
	logger   *slog.Logger
}

// NewRegistry builds the registry of all six tools over svc.
func NewRegistry(svc Services, opts ...Option) *Registry {
	r := &Registry{
		handlers: make(map[string]handler),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.register(listSourcesTool, func(ctx context.Context, args json.RawMessage) (any, error) {
		var in struct {
			SourceType string `json:"source_type"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return svc.Catalog.ListSources(ctx, in.SourceType)
	})
	r.register(getRequirementTool, func(ctx context.Context, args json.RawMessage) (any, error) {
		var in requirements.GetInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return svc.Requirements.Get(ctx, in)
	})
	r.register(searchRequirementsTool, func(ctx context.Context, args json.RawMessage) (any, error) {
		var in search.SearchInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		hits, err := svc.Search.Search(ctx, in)
		if err != nil {
			return nil, err
		}
		if hits == nil {
			hits = []*core.SearchHit{}
		}
		return hits, nil
	})
	r.register(listWorkProductsTool, func(ctx context.Context, args json.RawMessage) (any, error) {
		var in workproducts.ListInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return svc.WorkProducts.List(ctx, in)
	})
	r.register(exportMatrixTool, func(ctx context.Context, args json.RawMessage) (any, error) {
		var in matrix.ExportInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return svc.Matrix.Export(ctx, in)
	})
	r.register(aboutTool, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return svc.Catalog.About(ctx), nil
	})

	return r
}

func (r *Registry) register(t Tool, h handler) {
	t.Annotations = Annotations{
		Title:           TitleFromName(t.Name),
		ReadOnlyHint:    true,
		DestructiveHint: false,
	}
	r.tools = append(r.tools, t)
	r.handlers[t.Name] = h
}

// List returns the tool definitions in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Call runs the named tool. The successful payload is rendered as indented
// JSON text.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) *Result {
	h, ok := r.handlers[name]
	if !ok {
		r.logger.Warn("unknown tool", "tool", name)
		return errorResult("Unknown tool: " + name)
	}

	start := time.Now()
	payload, err := h(ctx, args)
	var text string
	if err == nil {
		text, err = render(payload)
	}
	elapsed := time.Since(start)
	if r.observer != nil {
		r.observer.ObserveCall(name, elapsed, err != nil)
	}

	if err != nil {
		r.logger.Warn("tool call failed", "tool", name, "duration", elapsed, "err", err)
		return errorResult(fmt.Sprintf("Error executing %s: %s", name, err.Error()))
	}
	r.logger.Debug("tool call", "tool", name, "duration", elapsed)
	return &Result{Content: []Content{{Type: "text", Text: text}}}
}

func errorResult(text string) *Result {
	return &Result{
		Content: []Content{{Type: "text", Text: text}},
		IsError: true,
	}
}

// decodeArgs decodes tool arguments. Absent or null arguments leave v zeroed.
func decodeArgs(args json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return core.NewValidationError("arguments", "Invalid arguments: "+err.Error())
	}
	return nil
}

func render(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}
