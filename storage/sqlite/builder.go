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

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/seed"
)

// BuildStats counts what Build inserted.
type BuildStats struct {
	Regulations     int
	Content         int
	Standards       int
	Clauses         int
	Mappings        int
	SkippedMappings int
	WorkProducts    int
}

// Build creates a fresh dataset at path from s, replacing any existing file.
// Everything is loaded in one transaction; on failure the partial file is removed.
func Build(ctx context.Context, path string, s *seed.Seed, opts ...Option) (stats *BuildStats, err error) {
	cfg := newConfig(opts)
	logger := cfg.logger

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove existing dataset: %w", err)
	}
	logger.Info("building dataset", "path", path)

	db, err := sql.Open("sqlite", fileDSN(path, "_pragma=foreign_keys(1)"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			logger.Warn("removing partial dataset", "path", path, "err", err)
			if rerr := os.Remove(path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
				logger.Error("could not remove partial dataset", "path", path, "err", rerr)
			}
		}
	}()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b := &builder{tx: tx, cfg: cfg, stats: &BuildStats{}}
	steps := []func(context.Context, *seed.Seed) error{
		b.loadRegulations,
		b.loadStandards,
		b.loadWorkProducts,
		b.writeMetadata,
	}
	for _, step := range steps {
		if err := step(ctx, s); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.Info("dataset built",
		"regulations", b.stats.Regulations,
		"content", b.stats.Content,
		"standards", b.stats.Standards,
		"clauses", b.stats.Clauses,
		"mappings", b.stats.Mappings,
		"skipped_mappings", b.stats.SkippedMappings,
		"work_products", b.stats.WorkProducts)
	return b.stats, nil
}

type builder struct {
	tx    *sql.Tx
	cfg   *config
	stats *BuildStats
}

func (b *builder) loadRegulations(ctx context.Context, s *seed.Seed) error {
	for _, r := range s.Regulations {
		reg := r.RegulationModel()
		if err := core.ValidateRegulation(reg); err != nil {
			return fmt.Errorf("regulation %q: %w", r.ID, err)
		}
		var appliesTo any
		if reg.AppliesTo != nil {
			data, err := json.Marshal(reg.AppliesTo)
			if err != nil {
				return err
			}
			appliesTo = string(data)
		}
		_, err := b.tx.ExecContext(ctx, `
			INSERT INTO regulations (id, full_name, title, version, effective_date, source_url, applies_to, regulation_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			reg.ID, reg.FullName, reg.Title, nullIfEmpty(reg.Version), nullIfEmpty(reg.EffectiveDate),
			nullIfEmpty(reg.SourceURL), appliesTo, string(reg.Type))
		if err != nil {
			return fmt.Errorf("insert regulation %q: %w", reg.ID, err)
		}
		b.stats.Regulations++
	}

	for _, c := range s.Content {
		item := c.ContentModel()
		if err := core.ValidateRegulationContent(item); err != nil {
			return fmt.Errorf("content %s %q: %w", c.Regulation, c.Reference, err)
		}
		_, err := b.tx.ExecContext(ctx, `
			INSERT INTO regulation_content (regulation, content_type, reference, title, text, parent_reference)
			VALUES (?, ?, ?, ?, ?, ?)`,
			item.Regulation, string(item.ContentType), item.Reference, item.Title, item.Text, item.ParentReference)
		if err != nil {
			return fmt.Errorf("insert content %s %q: %w", item.Regulation, item.Reference, err)
		}
		b.stats.Content++
	}
	return nil
}

func (b *builder) loadStandards(ctx context.Context, s *seed.Seed) error {
	for _, st := range s.Standards {
		std := st.StandardModel()
		if err := core.ValidateStandard(std); err != nil {
			return fmt.Errorf("standard %q: %w", st.ID, err)
		}
		_, err := b.tx.ExecContext(ctx, `
			INSERT INTO standards (id, full_name, title, version, note)
			VALUES (?, ?, ?, ?, ?)`,
			std.ID, std.FullName, std.Title, nullIfEmpty(std.Version), nullIfEmpty(std.Note))
		if err != nil {
			return fmt.Errorf("insert standard %q: %w", std.ID, err)
		}
		b.stats.Standards++
	}

	for _, c := range s.Clauses {
		clause := c.ClauseModel()
		if err := core.ValidateStandardClause(clause); err != nil {
			return fmt.Errorf("clause %s %q: %w", c.Standard, c.ClauseID, err)
		}
		var workProducts any
		if clause.WorkProducts.State != core.ListAbsent {
			data, err := json.Marshal(clause.WorkProducts.Items)
			if err != nil {
				return err
			}
			workProducts = string(data)
		}
		cal := 0
		if clause.CALRelevant {
			cal = 1
		}
		_, err := b.tx.ExecContext(ctx, `
			INSERT INTO standard_clauses (standard, clause_id, title, guidance, work_products, cal_relevant)
			VALUES (?, ?, ?, ?, ?, ?)`,
			clause.Standard, clause.ClauseID, clause.Title, clause.Guidance, workProducts, cal)
		if err != nil {
			return fmt.Errorf("insert clause %s %q: %w", clause.Standard, clause.ClauseID, err)
		}
		b.stats.Clauses++

		for _, m := range c.MappingModels() {
			if err := b.insertMapping(ctx, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) insertMapping(ctx context.Context, m *core.FrameworkMapping) error {
	if err := core.ValidateMapping(m); err != nil {
		b.cfg.logger.Debug("skipping invalid mapping",
			"source", m.SourceID, "source_ref", m.SourceRef, "target", m.TargetID, "err", err)
		b.stats.SkippedMappings++
		return nil
	}
	res, err := b.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO framework_mappings (source_type, source_id, source_ref, target_type, target_id, target_ref, relationship, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SourceType, m.SourceID, m.SourceRef, m.TargetType, m.TargetID, m.TargetRef,
		string(m.Relationship), nullIfEmpty(m.Notes))
	if err != nil {
		return fmt.Errorf("insert mapping %s:%s -> %s:%s: %w", m.SourceID, m.SourceRef, m.TargetID, m.TargetRef, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	b.stats.Mappings += int(n)
	return nil
}

func (b *builder) loadWorkProducts(ctx context.Context, s *seed.Seed) error {
	for _, wp := range s.WorkProducts {
		contents, err := json.Marshal(wp.Contents)
		if err != nil {
			return err
		}
		template := 0
		if wp.TemplateAvailable {
			template = 1
		}
		_, err = b.tx.ExecContext(ctx, `
			INSERT INTO work_products (id, name, phase, iso_clause, description, contents, template_available)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			wp.ID, wp.Name, wp.Phase, wp.ISOClause, wp.Description, string(contents), template)
		if err != nil {
			return fmt.Errorf("insert work product %q: %w", wp.ID, err)
		}
		b.stats.WorkProducts++
	}
	return nil
}

func (b *builder) writeMetadata(ctx context.Context, _ *seed.Seed) error {
	meta := [][2]string{
		{"schema_version", schemaVersion},
		{"built_at", b.cfg.now().UTC().Format(time.RFC3339)},
		{"built_by", "automcp build-db v" + b.cfg.serverVersion},
		{"server_version", b.cfg.serverVersion},
	}
	for _, kv := range meta {
		if _, err := b.tx.ExecContext(ctx, "INSERT INTO db_metadata (key, value) VALUES (?, ?)", kv[0], kv[1]); err != nil {
			return fmt.Errorf("insert metadata %q: %w", kv[0], err)
		}
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
