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

package requirements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/mapping"
	"github.com/ansvar-systems/automcp/storage"
)

// GetInput holds the parameters of a get_requirement call.
type GetInput struct {
	Source          string `json:"source"`
	Reference       string `json:"reference"`
	IncludeMappings bool   `json:"include_mappings,omitempty"`
}

// Fetcher retrieves one requirement by source and exact reference.
type Fetcher struct {
	dataset   storage.Dataset
	resolver  *Resolver
	traverser *mapping.Traverser
	logger    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
	}
}

func NewFetcher(dataset storage.Dataset, opts ...Option) *Fetcher {
	f := &Fetcher{
		dataset:  dataset,
		resolver: NewResolver(dataset),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.traverser = mapping.NewTraverser(dataset, f.logger)
	return f
}

// Get returns the unified requirement for in.
//
// Regulations carry their text and an empty guidance. Standards carry
// guidance and a nil text, plus work products when the clause lists any.
// With IncludeMappings, maps_to and satisfied_by are set only when edges exist.
func (f *Fetcher) Get(ctx context.Context, in GetInput) (*core.UnifiedRequirement, error) {
	if in.Source == "" {
		return nil, core.NewValidationError("source",
			"Missing required parameter: source. Use list_sources to see available source IDs.")
	}
	if in.Reference == "" {
		return nil, core.NewValidationError("reference",
			"Missing required parameter: reference. Use list_sources or search_requirements to find valid references.")
	}

	source := strings.ToLower(in.Source)
	family, err := f.resolver.Resolve(ctx, source)
	if err != nil {
		return nil, err
	}

	var result *core.UnifiedRequirement
	switch family {
	case core.FamilyRegulation:
		result, err = f.getRegulation(ctx, source, in.Reference)
	case core.FamilyStandard:
		result, err = f.getStandard(ctx, source, in.Reference)
	default:
		return nil, core.NewNotFoundError("Source not found: " + source)
	}
	if err != nil {
		return nil, err
	}

	if in.IncludeMappings {
		if err := f.attachMappings(ctx, result, family); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (f *Fetcher) getRegulation(ctx context.Context, source, reference string) (*core.UnifiedRequirement, error) {
	item, err := f.dataset.GetRegulationContent(ctx, source, reference)
	if err != nil {
		return nil, f.lookupError(err, source, reference)
	}
	text := item.Text
	return &core.UnifiedRequirement{
		Source:    item.Regulation,
		Reference: item.Reference,
		Title:     item.Title,
		Text:      &text,
		Guidance:  "",
	}, nil
}

func (f *Fetcher) getStandard(ctx context.Context, source, reference string) (*core.UnifiedRequirement, error) {
	clause, err := f.dataset.GetStandardClause(ctx, source, reference)
	if err != nil {
		return nil, f.lookupError(err, source, reference)
	}
	title := clause.Title
	result := &core.UnifiedRequirement{
		Source:    clause.Standard,
		Reference: clause.ClauseID,
		Title:     &title,
		Text:      nil,
		Guidance:  clause.Guidance,
	}
	if clause.WorkProducts.State == core.ListPresent {
		result.WorkProducts = clause.WorkProducts.Items
	}
	return result, nil
}

func (f *Fetcher) lookupError(err error, source, reference string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return core.NewNotFoundError(fmt.Sprintf("Reference not found: %s in source %s", reference, source))
	}
	f.logger.Error("requirement lookup failed", "source", source, "reference", reference, "err", err)
	return err
}

func (f *Fetcher) attachMappings(ctx context.Context, result *core.UnifiedRequirement, family core.Family) error {
	entity := core.Endpoint{Type: family.String(), ID: result.Source, Ref: result.Reference}

	forward, err := f.traverser.Forward(ctx, entity)
	if err != nil {
		return err
	}
	if len(forward) > 0 {
		result.MapsTo = forward
	}

	reverse, err := f.traverser.Reverse(ctx, entity)
	if err != nil {
		return err
	}
	if len(reverse) > 0 {
		result.SatisfiedBy = reverse
	}
	return nil
}
