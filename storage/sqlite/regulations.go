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
	"errors"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage"
)

func (s *Store) RegulationExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM regulations WHERE id = ?", id)
}

func (s *Store) ListRegulations(ctx context.Context) ([]*core.SourceSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.full_name, r.title, r.version, COUNT(rc.rowid) AS item_count
		FROM regulations r
		LEFT JOIN regulation_content rc ON r.id = rc.regulation
		GROUP BY r.id
		ORDER BY r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.SourceSummary
	for rows.Next() {
		var (
			sum     core.SourceSummary
			version sql.NullString
		)
		if err := rows.Scan(&sum.ID, &sum.FullName, &sum.Title, &version, &sum.ItemCount); err != nil {
			return nil, err
		}
		sum.Version = nullableString(version)
		sum.Family = core.FamilyRegulation
		out = append(out, &sum)
	}
	return out, rows.Err()
}

func (s *Store) GetRegulationContent(ctx context.Context, regulation, reference string) (*core.RegulationContent, error) {
	var (
		item        core.RegulationContent
		contentType string
		title       sql.NullString
		parent      sql.NullString
	)
	// A reference may exist under several content types; the lowest rowid wins.
	err := s.db.QueryRowContext(ctx, `
		SELECT regulation, content_type, reference, title, text, parent_reference
		FROM regulation_content
		WHERE regulation = ? AND reference = ?
		ORDER BY rowid
		LIMIT 1`, regulation, reference).
		Scan(&item.Regulation, &contentType, &item.Reference, &title, &item.Text, &parent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item.ContentType = core.ContentType(contentType)
	item.Title = nullableString(title)
	item.ParentReference = nullableString(parent)
	return &item, nil
}

func (s *Store) ListArticles(ctx context.Context, regulation string) ([]*core.RegulationContent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reference, title, text, parent_reference
		FROM regulation_content
		WHERE regulation = ? AND content_type = 'article'
		ORDER BY rowid`, regulation)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.RegulationContent
	for rows.Next() {
		var (
			title  sql.NullString
			parent sql.NullString
		)
		item := &core.RegulationContent{Regulation: regulation, ContentType: core.ContentTypeArticle}
		if err := rows.Scan(&item.Reference, &title, &item.Text, &parent); err != nil {
			return nil, err
		}
		item.Title = nullableString(title)
		item.ParentReference = nullableString(parent)
		out = append(out, item)
	}
	return out, rows.Err()
}
