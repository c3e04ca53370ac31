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

	"github.com/ansvar-systems/automcp/core"
)

func (s *Store) ForwardMappings(ctx context.Context, source core.Endpoint) ([]core.MappingReference, error) {
	return s.queryMappings(ctx, `
		SELECT target_type, target_id, target_ref, relationship
		FROM framework_mappings
		WHERE source_type = ? AND source_id = ? AND source_ref = ?
		ORDER BY id`, source)
}

func (s *Store) ReverseMappings(ctx context.Context, target core.Endpoint) ([]core.MappingReference, error) {
	return s.queryMappings(ctx, `
		SELECT source_type, source_id, source_ref, relationship
		FROM framework_mappings
		WHERE target_type = ? AND target_id = ? AND target_ref = ?
		ORDER BY id`, target)
}

func (s *Store) queryMappings(ctx context.Context, query string, ep core.Endpoint) ([]core.MappingReference, error) {
	rows, err := s.db.QueryContext(ctx, query, ep.Type, ep.ID, ep.Ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.MappingReference
	for rows.Next() {
		var ref core.MappingReference
		if err := rows.Scan(&ref.TargetType, &ref.TargetID, &ref.TargetRef, &ref.Relationship); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *Store) ClauseMappingsTo(ctx context.Context, regulation string) ([]*core.ClauseMapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fm.target_ref, sc.standard, sc.clause_id, sc.title, sc.guidance, sc.work_products, sc.cal_relevant
		FROM framework_mappings fm
		JOIN standard_clauses sc
		  ON sc.standard = fm.source_id
		  AND sc.clause_id = fm.source_ref
		WHERE fm.source_type = 'standard'
		  AND fm.target_type = 'regulation'
		  AND fm.target_id = ?
		ORDER BY fm.id`, regulation)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.ClauseMapping
	for rows.Next() {
		var (
			m            core.ClauseMapping
			workProducts sql.NullString
			calRelevant  sql.NullInt64
		)
		c := &m.Clause
		if err := rows.Scan(&m.TargetRef, &c.Standard, &c.ClauseID, &c.Title, &c.Guidance, &workProducts, &calRelevant); err != nil {
			return nil, err
		}
		c.WorkProducts = s.decodeList("standard_clauses.work_products", workProducts)
		c.CALRelevant = calRelevant.Int64 != 0
		out = append(out, &m)
	}
	return out, rows.Err()
}
