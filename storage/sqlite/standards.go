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
	"slices"
	"strings"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage"
)

func (s *Store) StandardExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM standards WHERE id = ?", id)
}

func (s *Store) ListStandards(ctx context.Context) ([]*core.SourceSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.full_name, s.title, s.version, COUNT(sc.id) AS item_count
		FROM standards s
		LEFT JOIN standard_clauses sc ON s.id = sc.standard
		GROUP BY s.id
		ORDER BY s.id`)
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
		sum.Family = core.FamilyStandard
		out = append(out, &sum)
	}
	return out, rows.Err()
}

func (s *Store) GetStandardClause(ctx context.Context, standard, clauseID string) (*core.StandardClause, error) {
	var (
		clause       core.StandardClause
		workProducts sql.NullString
		calRelevant  sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT standard, clause_id, title, guidance, work_products, cal_relevant
		FROM standard_clauses
		WHERE standard = ? AND clause_id = ?`, standard, clauseID).
		Scan(&clause.Standard, &clause.ClauseID, &clause.Title, &clause.Guidance, &workProducts, &calRelevant)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	clause.WorkProducts = s.decodeList("standard_clauses.work_products", workProducts)
	clause.CALRelevant = calRelevant.Int64 != 0
	return &clause, nil
}

func (s *Store) ListWorkProductClauses(ctx context.Context, standard string, clauseIDs []string, regulation string) ([]*core.WorkProductClause, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT sc.clause_id, sc.title, sc.work_products, sc.cal_relevant, fm.target_ref
		FROM standard_clauses sc
		LEFT JOIN framework_mappings fm
		  ON fm.source_type = 'standard'
		  AND fm.source_id = sc.standard
		  AND fm.source_ref = sc.clause_id
		  AND fm.target_id = ?
		WHERE sc.standard = ?
		  AND sc.work_products IS NOT NULL
		  AND sc.work_products != '[]'`)
	args := []any{regulation, standard}
	if len(clauseIDs) > 0 {
		b.WriteString(" AND sc.clause_id IN (" + placeholders(len(clauseIDs)) + ")")
		for _, id := range clauseIDs {
			args = append(args, id)
		}
	}
	b.WriteString(" ORDER BY sc.clause_id, fm.id")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out     []*core.WorkProductClause
		current *core.WorkProductClause
	)
	for rows.Next() {
		var (
			clauseID     string
			title        string
			workProducts sql.NullString
			calRelevant  sql.NullInt64
			targetRef    sql.NullString
		)
		if err := rows.Scan(&clauseID, &title, &workProducts, &calRelevant, &targetRef); err != nil {
			return nil, err
		}
		if current == nil || current.ClauseID != clauseID {
			current = &core.WorkProductClause{
				ClauseID:       clauseID,
				ClauseTitle:    title,
				WorkProducts:   s.decodeList("standard_clauses.work_products", workProducts),
				CALRelevant:    calRelevant.Int64 != 0,
				RegulationRefs: []string{},
			}
			out = append(out, current)
		}
		if targetRef.Valid && !slices.Contains(current.RegulationRefs, targetRef.String) {
			current.RegulationRefs = append(current.RegulationRefs, targetRef.String)
		}
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
