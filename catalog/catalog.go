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

// Package catalog answers the discovery questions a client asks before
// querying: which sources exist and what the loaded dataset contains.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ansvar-systems/automcp/core"
)

// Source type filters accepted by ListSources.
const (
	SourceTypeRegulation = "regulation"
	SourceTypeStandard   = "standard"
	SourceTypeAll        = "all"
)

// Dataset is the read surface the catalog needs.
type Dataset interface {
	ListRegulations(ctx context.Context) ([]*core.SourceSummary, error)
	ListStandards(ctx context.Context) ([]*core.SourceSummary, error)
	CountRows(ctx context.Context, table string) (int, error)
	Metadata(ctx context.Context) (map[string]string, error)
}

// SourceInfo is one entry of the source listing.
type SourceInfo struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Version           *string `json:"version"`
	Type              string  `json:"type"`
	ItemCount         int     `json:"item_count"`
	FullTextAvailable bool    `json:"full_text_available"`
}

// Option configures a Catalog.
type Option func(*Catalog) error

// WithLogger sets the logger. A nil logger selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithServerInfo sets the version and dataset identity reported by About.
func WithServerInfo(info ServerInfo) Option {
	return func(c *Catalog) error {
		c.info = info
		return nil
	}
}

// Catalog lists sources and describes the dataset.
type Catalog struct {
	dataset Dataset
	info    ServerInfo
	logger  *slog.Logger
}

// NewCatalog creates a Catalog over dataset.
func NewCatalog(dataset Dataset, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		dataset: dataset,
		info:    ServerInfo{Version: "dev", Fingerprint: "unknown"},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "catalog")
	return c, nil
}

// ListSources returns regulations then standards, each ordered by id.
// An empty sourceType lists both families.
func (c *Catalog) ListSources(ctx context.Context, sourceType string) ([]SourceInfo, error) {
	if sourceType == "" {
		sourceType = SourceTypeAll
	}
	var wantRegs, wantStds bool
	switch sourceType {
	case SourceTypeAll:
		wantRegs, wantStds = true, true
	case SourceTypeRegulation:
		wantRegs = true
	case SourceTypeStandard:
		wantStds = true
	default:
		return nil, core.NewValidationError("source_type",
			fmt.Sprintf("Invalid source_type: %s. Use one of: regulation, standard, all", sourceType))
	}

	sources := []SourceInfo{}
	if wantRegs {
		regs, err := c.dataset.ListRegulations(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list regulations: %w", err)
		}
		for _, r := range regs {
			sources = append(sources, toSourceInfo(r, SourceTypeRegulation, true))
		}
	}
	if wantStds {
		stds, err := c.dataset.ListStandards(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list standards: %w", err)
		}
		for _, s := range stds {
			sources = append(sources, toSourceInfo(s, SourceTypeStandard, false))
		}
	}
	return sources, nil
}

func toSourceInfo(s *core.SourceSummary, typ string, fullText bool) SourceInfo {
	return SourceInfo{
		ID:                s.ID,
		Name:              s.FullName,
		Version:           s.Version,
		Type:              typ,
		ItemCount:         s.ItemCount,
		FullTextAvailable: fullText,
	}
}
