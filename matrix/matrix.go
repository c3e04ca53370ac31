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

// Package matrix generates regulation-to-standard compliance matrices.
//
// Each article of a regulation becomes one row. Standard clauses mapped to
// the article or to any of its sub-references are rolled up into the row,
// together with the union of their work products and, optionally, a one-line
// guidance summary. Rows are rendered as Markdown or CSV and summarized with
// coverage statistics.
package matrix

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/mapping"
	"github.com/ansvar-systems/automcp/storage"
)

const (
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"

	DefaultRegulation = "r155"
)

// ExportInput holds the parameters of an export_compliance_matrix call.
type ExportInput struct {
	Regulation      string `json:"regulation,omitempty"`
	Format          string `json:"format,omitempty"`
	IncludeGuidance bool   `json:"include_guidance,omitempty"`
}

// Source is the read access the generator needs.
type Source interface {
	RegulationExists(ctx context.Context, id string) (bool, error)
	ListArticles(ctx context.Context, regulation string) ([]*core.RegulationContent, error)
	ClauseMappingsTo(ctx context.Context, regulation string) ([]*core.ClauseMapping, error)
}

// Generator builds compliance matrices.
type Generator struct {
	source      Source
	cache       storage.MatrixCache
	fingerprint string
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithCache stores rendered matrices in cache, keyed by the dataset fingerprint.
func WithCache(cache storage.MatrixCache, fingerprint string) Option {
	return func(g *Generator) {
		g.cache = cache
		g.fingerprint = fingerprint
	}
}

// WithClock overrides the source of the generation date.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
	}
}

func NewGenerator(source Source, opts ...Option) *Generator {
	g := &Generator{
		source: source,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// row is one article with everything rolled up under it.
type row struct {
	ref          string
	title        string
	clauseIDs    []string
	clauseLabels []string
	workProducts []string
	guidance     string
}

func (r *row) mapped() bool {
	return len(r.clauseLabels) > 0
}

// Export generates the matrix for in.
func (g *Generator) Export(ctx context.Context, in ExportInput) (*core.MatrixResult, error) {
	regulation := strings.ToLower(cmp.Or(in.Regulation, DefaultRegulation))
	format := cmp.Or(in.Format, FormatMarkdown)
	if format != FormatMarkdown && format != FormatCSV {
		return nil, core.NewValidationError("format",
			fmt.Sprintf("Invalid format: %s. Use one of: %s, %s", format, FormatMarkdown, FormatCSV))
	}

	exists, err := g.source.RegulationExists(ctx, regulation)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.NewNotFoundError("Regulation not found: " + regulation)
	}

	date := g.now().UTC().Format(time.DateOnly)
	key := core.IDFromContent(strings.Join([]string{
		regulation, format, strconv.FormatBool(in.IncludeGuidance), g.fingerprint, date,
	}, "|"))
	if cached := g.cached(ctx, key); cached != nil {
		return cached, nil
	}

	rows, err := g.buildRows(ctx, regulation, in.IncludeGuidance)
	if err != nil {
		return nil, err
	}

	var content string
	switch format {
	case FormatCSV:
		content = renderCSV(rows, in.IncludeGuidance)
	default:
		content = renderMarkdown(rows, regulation, date, in.IncludeGuidance)
	}

	result := &core.MatrixResult{
		Format:     format,
		Content:    content,
		Statistics: statistics(rows),
	}
	g.store(ctx, key, result)
	return result, nil
}

func (g *Generator) cached(ctx context.Context, key core.ID) *core.MatrixResult {
	if g.cache == nil {
		return nil
	}
	result, err := g.cache.GetMatrix(ctx, key)
	if err != nil {
		g.logger.Warn("matrix cache read failed", "key", key, "err", err)
		return nil
	}
	if result != nil {
		g.logger.Debug("matrix cache hit", "key", key)
	}
	return result
}

func (g *Generator) store(ctx context.Context, key core.ID, result *core.MatrixResult) {
	if g.cache == nil {
		return
	}
	if err := g.cache.PutMatrix(ctx, key, result); err != nil {
		g.logger.Warn("matrix cache write failed", "key", key, "err", err)
	}
}

func (g *Generator) buildRows(ctx context.Context, regulation string, includeGuidance bool) ([]*row, error) {
	articles, err := g.source.ListArticles(ctx, regulation)
	if err != nil {
		return nil, err
	}
	SortArticles(articles)

	mappings, err := g.source.ClauseMappingsTo(ctx, regulation)
	if err != nil {
		return nil, err
	}

	label := strings.ToUpper(regulation)
	rows := make([]*row, 0, len(articles))
	for _, article := range articles {
		r := &row{ref: label + " " + article.Reference}
		if article.Title != nil {
			r.title = *article.Title
		}

		seen := make(map[[2]string]bool)
		wpSeen := make(map[string]bool)
		for _, m := range mappings {
			if !mapping.CoversArticle(m.TargetRef, article.Reference) {
				continue
			}
			clause := m.Clause
			key := [2]string{clause.Standard, clause.ClauseID}
			if seen[key] {
				continue
			}
			seen[key] = true

			r.clauseIDs = append(r.clauseIDs, clause.ClauseID)
			r.clauseLabels = append(r.clauseLabels, clause.ClauseID+": "+clause.Title)
			if clause.WorkProducts.State == core.ListPresent {
				for _, wp := range clause.WorkProducts.Items {
					if !wpSeen[wp] {
						wpSeen[wp] = true
						r.workProducts = append(r.workProducts, wp)
					}
				}
			}
			if includeGuidance && r.guidance == "" {
				r.guidance = FirstSentence(clause.Guidance)
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// SortArticles orders integer references numerically ahead of all other
// references, which follow in lexical order.
func SortArticles(articles []*core.RegulationContent) {
	slices.SortStableFunc(articles, func(a, b *core.RegulationContent) int {
		an, aErr := strconv.Atoi(a.Reference)
		bn, bErr := strconv.Atoi(b.Reference)
		switch {
		case aErr == nil && bErr == nil:
			return cmp.Compare(an, bn)
		case aErr == nil:
			return -1
		case bErr == nil:
			return 1
		}
		return strings.Compare(a.Reference, b.Reference)
	})
}

// FirstSentence returns guidance up to its first period, with the period.
// Returns "" when guidance is empty or starts with a period.
func FirstSentence(guidance string) string {
	first, _, _ := strings.Cut(guidance, ".")
	if first == "" {
		return ""
	}
	return first + "."
}

func statistics(rows []*row) core.MatrixStatistics {
	mapped := 0
	unique := make(map[string]bool)
	for _, r := range rows {
		if r.mapped() {
			mapped++
		}
		for _, wp := range r.workProducts {
			unique[wp] = true
		}
	}
	return core.MatrixStatistics{
		TotalRequirements:    len(rows),
		MappedRequirements:   mapped,
		UnmappedRequirements: len(rows) - mapped,
		CoveragePercent:      coveragePercent(mapped, len(rows)),
		UniqueWorkProducts:   len(unique),
	}
}

func coveragePercent(mapped, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(mapped) / float64(total) * 100))
}
