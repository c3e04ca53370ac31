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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	automcp "github.com/ansvar-systems/automcp"
	"github.com/ansvar-systems/automcp/config"
	"github.com/ansvar-systems/automcp/matrix"
	"github.com/ansvar-systems/automcp/mcp"
	"github.com/ansvar-systems/automcp/requirements"
	"github.com/ansvar-systems/automcp/search"
	"github.com/ansvar-systems/automcp/seed"
	"github.com/ansvar-systems/automcp/storage/badger"
	"github.com/ansvar-systems/automcp/storage/sqlite"
	"github.com/ansvar-systems/automcp/tools"
)

// loadConfig layers defaults, the --config file, the environment and the
// flags set on the command line. Empty string flags are ignored.
func loadConfig(c *cli.Context) (*config.Config, error) {
	opts := []config.ConfigOption{config.WithLogLevel(c.String("log-level"))}
	if v := c.String("db"); c.IsSet("db") && v != "" {
		opts = append(opts, config.WithDBPath(v))
	}
	if v := c.String("seed-dir"); c.IsSet("seed-dir") && v != "" {
		opts = append(opts, config.WithSeedDir(v))
	}
	if v := c.String("cache"); c.IsSet("cache") && v != "" {
		opts = append(opts, config.WithCachePath(v))
	}
	if c.IsSet("cache-ttl") {
		opts = append(opts, config.WithCacheTTL(c.Duration("cache-ttl")))
	}
	if c.IsSet("session-ttl") {
		opts = append(opts, config.WithSessionTTL(c.Duration("session-ttl")))
	}
	if c.IsSet("pool-size") {
		opts = append(opts, config.WithPoolSize(c.Int("pool-size")))
	}
	if v := c.String("addr"); c.IsSet("addr") && v != "" {
		opts = append(opts, config.WithHTTPAddr(v))
	}
	if port := c.Int("port"); c.IsSet("port") && port > 0 {
		opts = append(opts, config.WithHTTPAddr(":"+strconv.Itoa(port)))
	}

	cfg, err := config.Load(c.String("config"), opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openDatabase(c *cli.Context, opts ...automcp.DatabaseOption) (*automcp.Database, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return automcp.NewDatabase(cfg, opts...)
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func serveCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signalContext(c)
	defer stop()

	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	err = db.NewHandler().ServeStdio(ctx, in, c.App.Writer)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serveHTTPCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	metrics := mcp.NewMetrics()
	db, err := automcp.NewDatabase(cfg,
		automcp.WithCallObserver(metrics),
		automcp.WithSearchMonitor(metrics))
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signalContext(c)
	defer stop()

	handler := db.NewHandler(mcp.WithRequestObserver(metrics))
	srv := mcp.NewHTTPServer(handler, automcp.Version,
		mcp.WithMetrics(metrics),
		mcp.WithSessionTTL(cfg.SessionTTL),
		mcp.WithHTTPLogger(slog.Default()))

	slog.Info("serving dataset", "db", cfg.DBPath, "fingerprint", db.Info().Fingerprint, "addr", cfg.HTTPAddr)
	return srv.ListenAndServe(ctx, cfg.HTTPAddr)
}

func buildDBCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	s, err := seed.Load(cfg.SeedDir)
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	stats, err := sqlite.Build(c.Context, cfg.DBPath, s,
		sqlite.WithServerVersion(automcp.Version),
		sqlite.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	w := c.App.ErrWriter
	fmt.Fprintf(w, "Database: %s\n", cfg.DBPath)
	fmt.Fprintf(w, "Regulations: %d (%d content items)\n", stats.Regulations, stats.Content)
	fmt.Fprintf(w, "Standards: %d (%d clauses)\n", stats.Standards, stats.Clauses)
	fmt.Fprintf(w, "Mappings: %d (%d skipped)\n", stats.Mappings, stats.SkippedMappings)
	fmt.Fprintf(w, "Work products: %d\n", stats.WorkProducts)

	if cfg.CachePath != "" {
		purgeMatrixCache(c, cfg)
	}
	return nil
}

// purgeMatrixCache drops matrices rendered from the previous dataset. A
// cache held by a running server is left alone: its keys carry the old
// fingerprint and are never read again.
func purgeMatrixCache(c *cli.Context, cfg *config.Config) {
	cache, err := badger.OpenMatrixCache(cfg.CachePath, cfg.CacheTTL)
	if err != nil {
		slog.Warn("matrix cache not purged", "path", cfg.CachePath, "err", err)
		return
	}
	defer cache.Close()

	purged, err := cache.Purge(c.Context)
	if err != nil {
		slog.Warn("matrix cache not purged", "path", cfg.CachePath, "err", err)
		return
	}
	fmt.Fprintf(c.App.ErrWriter, "Matrix cache: %d entries purged\n", purged)
}

func checkSourcesCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	s, err := seed.Load(cfg.SeedDir)
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}
	report := seed.Review(s, time.Now())

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if out := c.String("output"); out != "" {
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(c.App.ErrWriter, "Source update report written to %s (%d pending review)\n",
			out, report.Summary.PendingReviewsCount)
		return nil
	}
	_, err = c.App.Writer.Write(data)
	return err
}

// runTool calls a tool and prints its text result. A failed call becomes the
// command error.
func runTool(c *cli.Context, name string, args any) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	res := db.Tools().Call(c.Context, name, raw)
	text := ""
	if len(res.Content) > 0 {
		text = res.Content[0].Text
	}
	if res.IsError {
		return errors.New(text)
	}
	fmt.Fprintln(c.App.Writer, text)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("search query is required")
	}
	return runTool(c, tools.SearchRequirements, search.SearchInput{
		Query:   query,
		Sources: c.StringSlice("source"),
		Limit:   c.Int("limit"),
	})
}

func getCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: automcp get SOURCE REFERENCE")
	}
	return runTool(c, tools.GetRequirement, requirements.GetInput{
		Source:          c.Args().Get(0),
		Reference:       c.Args().Get(1),
		IncludeMappings: c.Bool("mappings"),
	})
}

func aboutCommand(c *cli.Context) error {
	return runTool(c, tools.About, nil)
}

func exportCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := db.Matrix().Export(c.Context, matrix.ExportInput{
		Regulation:      c.String("regulation"),
		Format:          c.String("format"),
		IncludeGuidance: c.Bool("guidance"),
	})
	if err != nil {
		return err
	}

	st := result.Statistics
	if out := c.String("output"); out != "" {
		if err := os.WriteFile(out, []byte(result.Content), 0644); err != nil {
			return fmt.Errorf("failed to write matrix: %w", err)
		}
	} else {
		fmt.Fprintln(c.App.Writer, result.Content)
	}
	fmt.Fprintf(c.App.ErrWriter, "Requirements: %d, mapped: %d, unmapped: %d, coverage: %d%%, work products: %d\n",
		st.TotalRequirements, st.MappedRequirements, st.UnmappedRequirements, st.CoveragePercent, st.UniqueWorkProducts)
	return nil
}
