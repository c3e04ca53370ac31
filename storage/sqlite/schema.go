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

const schemaVersion = "1.0.0"

// schema is applied by Build. FTS5 tables use external content and are kept in
// sync by triggers, so the query layer never writes to them directly.
const schema = `
CREATE TABLE IF NOT EXISTS regulations (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  title TEXT NOT NULL,
  version TEXT,
  effective_date TEXT,
  source_url TEXT,
  applies_to TEXT,
  regulation_type TEXT
);

CREATE TABLE IF NOT EXISTS regulation_content (
  rowid INTEGER PRIMARY KEY,
  regulation TEXT NOT NULL REFERENCES regulations(id),
  content_type TEXT NOT NULL CHECK(content_type IN ('article', 'annex', 'paragraph')),
  reference TEXT NOT NULL,
  title TEXT,
  text TEXT NOT NULL,
  parent_reference TEXT,
  UNIQUE(regulation, content_type, reference)
);

CREATE VIRTUAL TABLE IF NOT EXISTS regulation_content_fts USING fts5(
  regulation,
  reference,
  title,
  text,
  content='regulation_content',
  content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS regulation_content_ai AFTER INSERT ON regulation_content BEGIN
  INSERT INTO regulation_content_fts(rowid, regulation, reference, title, text)
  VALUES (new.rowid, new.regulation, new.reference, new.title, new.text);
END;

CREATE TRIGGER IF NOT EXISTS regulation_content_ad AFTER DELETE ON regulation_content BEGIN
  INSERT INTO regulation_content_fts(regulation_content_fts, rowid, regulation, reference, title, text)
  VALUES('delete', old.rowid, old.regulation, old.reference, old.title, old.text);
END;

CREATE TRIGGER IF NOT EXISTS regulation_content_au AFTER UPDATE ON regulation_content BEGIN
  INSERT INTO regulation_content_fts(regulation_content_fts, rowid, regulation, reference, title, text)
  VALUES('delete', old.rowid, old.regulation, old.reference, old.title, old.text);
  INSERT INTO regulation_content_fts(rowid, regulation, reference, title, text)
  VALUES (new.rowid, new.regulation, new.reference, new.title, new.text);
END;

CREATE TABLE IF NOT EXISTS standards (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  title TEXT NOT NULL,
  version TEXT,
  note TEXT
);

CREATE TABLE IF NOT EXISTS standard_clauses (
  id INTEGER PRIMARY KEY,
  standard TEXT NOT NULL REFERENCES standards(id),
  clause_id TEXT NOT NULL,
  title TEXT NOT NULL,
  guidance TEXT NOT NULL,
  work_products TEXT,
  cal_relevant INTEGER DEFAULT 0,
  UNIQUE(standard, clause_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS standard_clauses_fts USING fts5(
  standard,
  clause_id,
  title,
  guidance,
  content='standard_clauses',
  content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS standard_clauses_ai AFTER INSERT ON standard_clauses BEGIN
  INSERT INTO standard_clauses_fts(rowid, standard, clause_id, title, guidance)
  VALUES (new.id, new.standard, new.clause_id, new.title, new.guidance);
END;

CREATE TRIGGER IF NOT EXISTS standard_clauses_ad AFTER DELETE ON standard_clauses BEGIN
  INSERT INTO standard_clauses_fts(standard_clauses_fts, rowid, standard, clause_id, title, guidance)
  VALUES('delete', old.id, old.standard, old.clause_id, old.title, old.guidance);
END;

CREATE TRIGGER IF NOT EXISTS standard_clauses_au AFTER UPDATE ON standard_clauses BEGIN
  INSERT INTO standard_clauses_fts(standard_clauses_fts, rowid, standard, clause_id, title, guidance)
  VALUES('delete', old.id, old.standard, old.clause_id, old.title, old.guidance);
  INSERT INTO standard_clauses_fts(rowid, standard, clause_id, title, guidance)
  VALUES (new.id, new.standard, new.clause_id, new.title, new.guidance);
END;

CREATE TABLE IF NOT EXISTS work_products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phase TEXT NOT NULL,
  iso_clause TEXT NOT NULL,
  description TEXT NOT NULL,
  contents TEXT NOT NULL,
  template_available INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS framework_mappings (
  id INTEGER PRIMARY KEY,
  source_type TEXT NOT NULL,
  source_id TEXT NOT NULL,
  source_ref TEXT NOT NULL,
  target_type TEXT NOT NULL,
  target_id TEXT NOT NULL,
  target_ref TEXT NOT NULL,
  relationship TEXT NOT NULL CHECK(relationship IN ('satisfies', 'partial', 'related')),
  notes TEXT,
  UNIQUE(source_type, source_id, source_ref, target_type, target_id, target_ref)
);

CREATE INDEX IF NOT EXISTS idx_mappings_source ON framework_mappings(source_type, source_id, source_ref);
CREATE INDEX IF NOT EXISTS idx_mappings_target ON framework_mappings(target_type, target_id, target_ref);

CREATE TABLE IF NOT EXISTS db_metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`

// countableTables are the only table names CountRows interpolates into SQL.
var countableTables = map[string]bool{
	"regulations":        true,
	"regulation_content": true,
	"standards":          true,
	"standard_clauses":   true,
	"work_products":      true,
	"framework_mappings": true,
	"db_metadata":        true,
}
