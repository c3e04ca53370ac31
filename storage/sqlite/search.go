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
	"fmt"
	"strings"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage"
)

const (
	regulationSearchSQL = `
		SELECT regulation, reference, title,
		       snippet(regulation_content_fts, -1, '**', '**', '...', 32),
		       bm25(regulation_content_fts) AS rank
		FROM regulation_content_fts
		WHERE regulation_content_fts MATCH ?
		%s
		ORDER BY rank
		LIMIT ?`

	standardSearchSQL = `
		SELECT standard, clause_id, title,
		       snippet(standard_clauses_fts, -1, '**', '**', '...', 32),
		       bm25(standard_clauses_fts) AS rank
		FROM standard_clauses_fts
		WHERE standard_clauses_fts MATCH ?
		%s
		ORDER BY rank
		LIMIT ?`
)

func (s *Store) SearchRegulations(ctx context.Context, match string, sources []string, limit int) ([]*core.SearchHit, error) {
	return s.search(ctx, regulationSearchSQL, "regulation", match, sources, limit)
}

func (s *Store) SearchStandards(ctx context.Context, match string, sources []string, limit int) ([]*core.SearchHit, error) {
	return s.search(ctx, standardSearchSQL, "standard", match, sources, limit)
}

func (s *Store) search(ctx context.Context, tmpl, sourceColumn, match string, sources []string, limit int) ([]*core.SearchHit, error) {
	filter := ""
	args := []any{match}
	if len(sources) > 0 {
		filter = fmt.Sprintf("AND %s IN (%s)", sourceColumn, placeholders(len(sources)))
		for _, src := range sources {
			args = append(args, src)
		}
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(tmpl, filter), args...)
	if err != nil {
		return nil, classifySearchError(err)
	}
	defer rows.Close()

	var hits []*core.SearchHit
	for rows.Next() {
		var (
			hit   core.SearchHit
			title sql.NullString
		)
		if err := rows.Scan(&hit.Source, &hit.Reference, &title, &hit.Snippet, &hit.Relevance); err != nil {
			return nil, err
		}
		hit.Title = nullableString(title)
		hits = append(hits, &hit)
	}
	if err := rows.Err(); err != nil {
		return nil, classifySearchError(err)
	}
	return hits, nil
}

// classifySearchError maps engine query-syntax failures to storage.ErrInvalidQuery.
func classifySearchError(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"fts5", "syntax error", "unterminated string"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
		}
	}
	return err
}
