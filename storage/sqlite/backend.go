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
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage"
	_ "modernc.org/sqlite"
)

// Store is a read-only view of a built compliance dataset.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ storage.Dataset = (*Store)(nil)

type config struct {
	logger        *slog.Logger
	serverVersion string
	now           func() time.Time
}

// Option configures Open and Build.
type Option func(*config)

// WithLogger sets the logger. Falls back to slog.Default() when nil.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithServerVersion records the server version in db_metadata on Build.
func WithServerVersion(version string) Option {
	return func(c *config) {
		c.serverVersion = version
	}
}

// WithClock overrides the build timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		logger:        slog.Default(),
		serverVersion: "dev",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open opens the dataset at path in read-only mode.
// The file must already exist; it is never created.
func Open(path string, opts ...Option) (storage.Dataset, error) {
	return OpenStore(path, opts...)
}

// OpenStore is Open returning the concrete type.
func OpenStore(path string, opts ...Option) (*Store, error) {
	cfg := newConfig(opts)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("dataset %s is a directory", path)
	}

	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	cfg.logger.Debug("opened dataset", "path", path)
	return &Store{db: db, path: path, logger: cfg.logger}, nil
}

func readOnlyDSN(path string) string {
	return fileDSN(path, "mode=ro")
}

// fileDSN builds a SQLite URI for path, escaping characters such as '?' and
// '#' that would otherwise end the file name.
func fileDSN(path, query string) string {
	u := url.URL{Scheme: "file", Path: path, OmitHost: true, RawQuery: query}
	return u.String()
}

// Path returns the dataset file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CountRows returns the row count of a known table.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	if !countableTables[table] {
		return 0, fmt.Errorf("%w: %s", storage.ErrUnknownTable, table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Metadata returns the db_metadata key/value pairs.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM db_metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (s *Store) exists(ctx context.Context, query, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// decodeList decodes a JSON list column, logging malformed values.
func (s *Store) decodeList(column string, raw sql.NullString) core.StringList {
	if !raw.Valid {
		return core.StringList{State: core.ListAbsent}
	}
	list := core.DecodeStringList(raw.String)
	if list.State == core.ListMalformed {
		s.logger.Debug("ignoring malformed list column", "column", column)
	}
	return list
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
