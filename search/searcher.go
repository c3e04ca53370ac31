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

package search

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage"
	"github.com/panjf2000/ants/v2"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// SearchInput holds the parameters of a search_requirements call.
type SearchInput struct {
	Query   string   `json:"query"`
	Sources []string `json:"sources,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// Searcher merges ranked hits from the regulation and standard indices.
type Searcher struct {
	index   storage.SearchIndex
	pool    *ants.Pool
	monitor SearchMonitor
	logger  *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithPoolSize sets the worker pool size shared by all searches.
// Default is runtime.NumCPU(), with a minimum of 2.
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size < 2 {
			size = 2
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMonitor reports every Search call to monitor. The monitor is shared
// by concurrent searches.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		s.monitor = monitor
		return nil
	}
}

// NewSearcher creates a Searcher over index.
func NewSearcher(index storage.SearchIndex, opts ...Option) (*Searcher, error) {
	if index == nil {
		return nil, ErrSearchIndexRequired
	}

	poolSize := max(runtime.NumCPU(), 2)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		index:  index,
		pool:   pool,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}
	return s, nil
}

// Release releases the worker pool.
// The searcher should not be used after calling Release.
func (s *Searcher) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Search runs in against both indices, reporting to the monitor set with
// WithMonitor.
func (s *Searcher) Search(ctx context.Context, in SearchInput) ([]*core.SearchHit, error) {
	return s.SearchWithMonitor(ctx, in, s.monitor)
}

// SearchWithMonitor is Search reporting each stage to monitor.
//
// An empty query yields an empty result. A query the engine rejects as
// invalid syntax also yields an empty result; any other failure is returned
// as a *core.SearchError.
func (s *Searcher) SearchWithMonitor(ctx context.Context, in SearchInput, monitor SearchMonitor) ([]*core.SearchHit, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	results := []*core.SearchHit{}
	if strings.TrimSpace(in.Query) == "" {
		return results, nil
	}

	limit := ClampLimit(in.Limit)
	match := Sanitize(in.Query)
	monitor.Start(in.Query, match)

	var (
		wg       sync.WaitGroup
		regHits  []*core.SearchHit
		stdHits  []*core.SearchHit
		regErr   error
		stdErr   error
		families = []func(){
			func() { regHits, regErr = s.index.SearchRegulations(ctx, match, in.Sources, limit) },
			func() { stdHits, stdErr = s.index.SearchStandards(ctx, match, in.Sources, limit) },
		}
	)
	for _, task := range families {
		wg.Add(1)
		run := func() {
			defer wg.Done()
			task()
		}
		if err := s.pool.Submit(run); err != nil {
			s.logger.Debug("search pool unavailable, running inline", "err", err)
			run()
		}
	}
	wg.Wait()

	for _, err := range []error{regErr, stdErr} {
		if err == nil {
			continue
		}
		if errors.Is(err, storage.ErrInvalidQuery) {
			s.logger.Debug("query rejected by search engine", "match", match, "err", err)
			monitor.InvalidQuery(match, err)
			monitor.Finish(results)
			return results, nil
		}
		s.logger.Error("search failed", "match", match, "err", err)
		return nil, &core.SearchError{Cause: err}
	}
	monitor.AfterRegulationSearch(regHits)
	monitor.AfterStandardSearch(stdHits)

	results = append(results, regHits...)
	results = append(results, stdHits...)
	slices.SortStableFunc(results, compareHits)
	if len(results) > limit {
		results = results[:limit]
	}

	monitor.Finish(results)
	return results, nil
}

// compareHits orders by relevance ascending, then source, then reference.
func compareHits(a, b *core.SearchHit) int {
	return cmp.Or(
		cmp.Compare(a.Relevance, b.Relevance),
		strings.Compare(a.Source, b.Source),
		strings.Compare(a.Reference, b.Reference),
	)
}

// ClampLimit applies the default to a zero limit and bounds it to [1, MaxLimit].
func ClampLimit(limit int) int {
	if limit == 0 {
		return DefaultLimit
	}
	return min(max(limit, 1), MaxLimit)
}
