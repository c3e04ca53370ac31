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

package automcp

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-crypt/x/blake2b"

	"github.com/ansvar-systems/automcp/catalog"
	"github.com/ansvar-systems/automcp/config"
	"github.com/ansvar-systems/automcp/matrix"
	"github.com/ansvar-systems/automcp/mcp"
	"github.com/ansvar-systems/automcp/requirements"
	"github.com/ansvar-systems/automcp/search"
	"github.com/ansvar-systems/automcp/storage"
	"github.com/ansvar-systems/automcp/storage/badger"
	"github.com/ansvar-systems/automcp/storage/sqlite"
	"github.com/ansvar-systems/automcp/tools"
	"github.com/ansvar-systems/automcp/workproducts"
)

// Version is the server release reported to clients and recorded in built datasets.
const Version = "1.0.0"

// fingerprintLength is the number of hex digits of the dataset hash reported.
const fingerprintLength = 12

// Database owns the opened dataset, the optional matrix cache and every
// service built on them.
type Database struct {
	store    *sqlite.Store
	cache    storage.MatrixCache
	searcher *search.Searcher
	catalog  *catalog.Catalog
	fetcher  *requirements.Fetcher
	products *workproducts.Aggregator
	matrix   *matrix.Generator
	registry *tools.Registry
	info     catalog.ServerInfo
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger   *slog.Logger
	observer tools.CallObserver
	monitor  search.SearchMonitor
	cache    storage.MatrixCache
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// WithCallObserver reports every tool call to observer.
func WithCallObserver(observer tools.CallObserver) DatabaseOption {
	return func(o *databaseOptions) {
		o.observer = observer
	}
}

// WithSearchMonitor reports every search to monitor.
func WithSearchMonitor(monitor search.SearchMonitor) DatabaseOption {
	return func(o *databaseOptions) {
		o.monitor = monitor
	}
}

// WithMatrixCache uses cache instead of opening one from the configuration.
// The Database does not close a cache supplied this way.
func WithMatrixCache(cache storage.MatrixCache) DatabaseOption {
	return func(o *databaseOptions) {
		o.cache = cache
	}
}

// NewDatabase opens the dataset named by cfg and wires the query services.
func NewDatabase(cfg *config.Config, opts ...DatabaseOption) (*Database, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := &databaseOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger

	store, err := sqlite.OpenStore(cfg.DBPath, sqlite.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", cfg.DBPath, err)
	}

	info := DescribeDataset(store.Path(), logger)

	db := &Database{store: store, info: info, logger: logger}

	cache := options.cache
	if cache == nil && cfg.CachePath != "" {
		owned, err := badger.OpenMatrixCache(cfg.CachePath, cfg.CacheTTL)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to open matrix cache: %w", err)
		}
		db.cache = owned
		cache = owned
	}

	searchOpts := []search.Option{search.WithPoolSize(cfg.PoolSize), search.WithLogger(logger)}
	if options.monitor != nil {
		searchOpts = append(searchOpts, search.WithMonitor(options.monitor))
	}
	searcher, err := search.NewSearcher(store, searchOpts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	db.searcher = searcher

	cat, err := catalog.NewCatalog(store, catalog.WithLogger(logger), catalog.WithServerInfo(info))
	if err != nil {
		db.Close()
		return nil, err
	}
	db.catalog = cat
	db.fetcher = requirements.NewFetcher(store, requirements.WithLogger(logger))
	db.products = workproducts.NewAggregator(store, logger)

	matrixOpts := []matrix.Option{matrix.WithLogger(logger)}
	if cache != nil {
		matrixOpts = append(matrixOpts, matrix.WithCache(cache, info.Fingerprint))
	}
	db.matrix = matrix.NewGenerator(store, matrixOpts...)

	registryOpts := []tools.Option{tools.WithLogger(logger)}
	if options.observer != nil {
		registryOpts = append(registryOpts, tools.WithObserver(options.observer))
	}
	db.registry = tools.NewRegistry(tools.Services{
		Catalog:      db.catalog,
		Requirements: db.fetcher,
		Search:       db.searcher,
		WorkProducts: db.products,
		Matrix:       db.matrix,
	}, registryOpts...)

	logger.Debug("database ready", "path", store.Path(), "fingerprint", info.Fingerprint, "cache", cache != nil)
	return db, nil
}

// Close releases the worker pool, the owned cache and the dataset.
func (db *Database) Close() error {
	if db.searcher != nil {
		db.searcher.Release()
	}
	var errs []error
	if db.cache != nil {
		if err := db.cache.Close(); err != nil {
			db.logger.Error("error closing matrix cache", "err", err)
			errs = append(errs, err)
		}
	}
	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing dataset", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) Dataset() storage.Dataset {
	return db.store
}

func (db *Database) Catalog() *catalog.Catalog {
	return db.catalog
}

func (db *Database) Fetcher() *requirements.Fetcher {
	return db.fetcher
}

func (db *Database) Searcher() *search.Searcher {
	return db.searcher
}

func (db *Database) WorkProducts() *workproducts.Aggregator {
	return db.products
}

func (db *Database) Matrix() *matrix.Generator {
	return db.matrix
}

func (db *Database) Tools() *tools.Registry {
	return db.registry
}

// Info returns the server version and dataset identity.
func (db *Database) Info() catalog.ServerInfo {
	return db.info
}

// NewHandler returns an MCP handler serving this database's tools.
func (db *Database) NewHandler(opts ...mcp.HandlerOption) *mcp.Handler {
	opts = append([]mcp.HandlerOption{mcp.WithHandlerLogger(db.logger)}, opts...)
	return mcp.NewHandler(db.registry, Version, opts...)
}

// DescribeDataset fingerprints the dataset file and reads its modification
// time. Failures are logged and reported as "unknown" and the current time.
func DescribeDataset(path string, logger *slog.Logger) catalog.ServerInfo {
	info := catalog.ServerInfo{
		Version:     Version,
		Fingerprint: "unknown",
		Built:       time.Now().UTC().Format(time.RFC3339),
	}
	if fp, err := Fingerprint(path); err == nil {
		info.Fingerprint = fp
	} else {
		logger.Warn("failed to fingerprint dataset", "path", path, "err", err)
	}
	if st, err := os.Stat(path); err == nil {
		info.Built = st.ModTime().UTC().Format(time.RFC3339)
	}
	return info
}

// Fingerprint returns the first 12 hex digits of the BLAKE2b-256 hash of the
// file at path.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New(32, nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil))[:fingerprintLength], nil
}
