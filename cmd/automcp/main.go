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
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	automcp "github.com/ansvar-systems/automcp"
	"github.com/ansvar-systems/automcp/config"
	"github.com/ansvar-systems/automcp/matrix"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to the SQLite dataset",
		EnvVars: []string{config.EnvDBPath},
	}
}

func poolSizeFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "pool-size",
		Usage: "Search worker pool size (0 = number of CPUs)",
	}
}

func cacheFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "cache",
			Usage:   "BadgerDB directory for rendered compliance matrices (empty disables caching)",
			EnvVars: []string{config.EnvCachePath},
		},
		&cli.DurationFlag{
			Name:  "cache-ttl",
			Usage: "How long a cached matrix is kept",
		},
	}
}

func seedDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "seed-dir",
		Aliases: []string{"s"},
		Usage:   "Directory holding regulations.json, standards.json and work_products.json",
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "automcp",
		Usage:   "Automotive cybersecurity compliance reference server",
		Version: automcp.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Optional YAML configuration file",
				EnvVars: []string{"AUTOMCP_CONFIG"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve MCP over stdio",
				Action: serveCommand,
				Flags:  append([]cli.Flag{dbFlag(), poolSizeFlag()}, cacheFlags()...),
			},
			{
				Name:   "serve-http",
				Usage:  "Serve MCP over HTTP with health and metrics endpoints",
				Action: serveHTTPCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					poolSizeFlag(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
					},
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Listen port on all interfaces (overrides --addr)",
						EnvVars: []string{config.EnvPort},
					},
					&cli.DurationFlag{
						Name:  "session-ttl",
						Usage: "Drop HTTP sessions idle for longer than this (0 keeps them)",
					},
				}, cacheFlags()...),
			},
			{
				Name:   "build-db",
				Usage:  "Build the dataset from seed JSON files",
				Action: buildDBCommand,
				Flags:  append([]cli.Flag{dbFlag(), seedDirFlag()}, cacheFlags()...),
			},
			{
				Name:   "check-sources",
				Usage:  "Report standards whose recorded version needs manual review",
				Action: checkSourcesCommand,
				Flags: []cli.Flag{
					seedDirFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the JSON report to this file instead of stdout",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Full-text search across regulations and standards",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringSliceFlag{
						Name:  "source",
						Usage: "Restrict to a source id (repeatable)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results (1-100)",
						Value: 10,
					},
				},
			},
			{
				Name:      "get",
				Usage:     "Retrieve one regulation article or standard clause",
				ArgsUsage: "SOURCE REFERENCE",
				Action:    getCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.BoolFlag{
						Name:  "mappings",
						Usage: "Include cross-framework mappings",
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Export a compliance traceability matrix",
				Action: exportCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "regulation",
						Usage: "Regulation id",
						Value: matrix.DefaultRegulation,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (markdown, csv)",
						Value:   matrix.FormatMarkdown,
					},
					&cli.BoolFlag{
						Name:  "guidance",
						Usage: "Include guidance summaries",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the matrix to this file instead of stdout",
					},
				}, cacheFlags()...),
			},
			{
				Name:   "about",
				Usage:  "Show server and dataset metadata",
				Action: aboutCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// stdout carries the stdio protocol, so logs always go to stderr
	var out io.Writer = os.Stderr
	if c.App.ErrWriter != nil {
		out = c.App.ErrWriter
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
