package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ansvar-systems/automcp/config"
	"github.com/ansvar-systems/automcp/seed"
	"github.com/ansvar-systems/automcp/storage/sqlite"
)

type testApp struct {
	stdin  io.Reader
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp() *testApp {
	return &testApp{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
}

// run executes args on a fresh app so flag state never leaks between runs.
func (ta *testApp) run(args ...string) error {
	ta.stdout.Reset()
	ta.stderr.Reset()
	app := newApp()
	app.Reader = ta.stdin
	app.Writer = ta.stdout
	app.ErrWriter = ta.stderr
	return app.Run(append([]string{"automcp"}, args...))
}

func writeSeedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	fixture := sqlite.FixtureSeed()

	regs, err := json.Marshal(struct {
		Regulations []seed.Regulation `json:"regulations"`
		Content     []seed.Content    `json:"content"`
	}{fixture.Regulations, fixture.Content})
	require.NoError(t, err)
	stds, err := json.Marshal(struct {
		Standards []seed.Standard `json:"standards"`
		Clauses   []seed.Clause   `json:"clauses"`
	}{fixture.Standards, fixture.Clauses})
	require.NoError(t, err)
	wps, err := json.Marshal(struct {
		WorkProducts []seed.WorkProduct `json:"work_products"`
	}{fixture.WorkProducts})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, seed.RegulationsFile), regs, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, seed.StandardsFile), stds, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, seed.WorkProductsFile), wps, 0644))
	return dir
}

func buildTestDB(t *testing.T, ta *testApp) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "automotive.db")
	require.NoError(t, ta.run("build-db", "--seed-dir", writeSeedDir(t), "--db", dbPath))
	return dbPath
}

func TestSetupLogger(t *testing.T) {
	ta := newTestApp()

	err := ta.run("--log-level", "verbose", "about")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "verbose"`)

	for _, level := range []string{"debug", "INFO", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			err := ta.run("--log-level", level, "check-sources", "--seed-dir", writeSeedDir(t))
			assert.NoError(t, err)
		})
	}
}

func TestCommandFlags(t *testing.T) {
	app := newApp()
	names := make([]string, len(app.Commands))
	for i, cmd := range app.Commands {
		names[i] = cmd.Name
	}
	assert.Equal(t, []string{
		"serve", "serve-http", "build-db", "check-sources", "search", "get", "export", "about",
	}, names)

	t.Run("db flag reads the environment", func(t *testing.T) {
		var dbFlag *cli.StringFlag
		for _, flag := range app.Commands[0].Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "db" {
				dbFlag = f
				break
			}
		}
		require.NotNil(t, dbFlag)
		assert.Equal(t, []string{"AUTOMOTIVE_CYBERSEC_DB_PATH"}, dbFlag.EnvVars)
	})

	t.Run("export defaults", func(t *testing.T) {
		cmd := app.Commands[6]
		values := map[string]string{}
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok {
				values[f.Name] = f.Value
			}
		}
		assert.Equal(t, "r155", values["regulation"])
		assert.Equal(t, "markdown", values["format"])
	})
}

func TestBuildAndQuery(t *testing.T) {
	ta := newTestApp()
	dbPath := buildTestDB(t, ta)
	assert.Contains(t, ta.stderr.String(), "Regulations: 2 (8 content items)")
	assert.Contains(t, ta.stderr.String(), "Mappings: 7 (1 skipped)")

	t.Run("get", func(t *testing.T) {
		require.NoError(t, ta.run("get", "--db", dbPath, "r155", "7.2.2.2"))
		var got map[string]any
		require.NoError(t, json.Unmarshal(ta.stdout.Bytes(), &got))
		assert.Equal(t, "7.2.2.2", got["reference"])
		assert.NotEmpty(t, got["text"])
	})

	t.Run("get unknown source", func(t *testing.T) {
		err := ta.run("get", "--db", dbPath, "nonexistent", "1.0")
		require.Error(t, err)
		assert.Equal(t, "Error executing get_requirement: Source not found: nonexistent", err.Error())
	})

	t.Run("get usage", func(t *testing.T) {
		err := ta.run("get", "--db", dbPath, "r155")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage")
	})

	t.Run("search", func(t *testing.T) {
		require.NoError(t, ta.run("search", "--db", dbPath, "--source", "r155", "--limit", "3", "manufacturer"))
		var hits []map[string]any
		require.NoError(t, json.Unmarshal(ta.stdout.Bytes(), &hits))
		require.NotEmpty(t, hits)
		assert.LessOrEqual(t, len(hits), 3)
		for _, h := range hits {
			assert.Equal(t, "r155", h["source"])
		}
	})

	t.Run("search requires a query", func(t *testing.T) {
		assert.Error(t, ta.run("search", "--db", dbPath))
	})

	t.Run("export to stdout", func(t *testing.T) {
		require.NoError(t, ta.run("export", "--db", dbPath, "--format", "csv"))
		assert.True(t, strings.HasPrefix(ta.stdout.String(), "Requirement,Title,"))
		assert.Contains(t, ta.stderr.String(), "Requirements: 5, mapped: 2")
	})

	t.Run("export to file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "matrix.md")
		require.NoError(t, ta.run("export", "--db", dbPath, "--guidance", "--output", out))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "R155")
		assert.Empty(t, ta.stdout.String())
	})

	t.Run("export with cache", func(t *testing.T) {
		cacheDir := filepath.Join(t.TempDir(), "cache")
		require.NoError(t, ta.run("export", "--db", dbPath, "--cache", cacheDir))
		first := ta.stdout.String()
		require.NoError(t, ta.run("export", "--db", dbPath, "--cache", cacheDir))
		assert.Equal(t, first, ta.stdout.String())
	})

	t.Run("export unknown regulation", func(t *testing.T) {
		err := ta.run("export", "--db", dbPath, "--regulation", "r999")
		require.Error(t, err)
		assert.Equal(t, "Regulation not found: r999", err.Error())
	})

	t.Run("about", func(t *testing.T) {
		require.NoError(t, ta.run("about", "--db", dbPath))
		var about map[string]any
		require.NoError(t, json.Unmarshal(ta.stdout.Bytes(), &about))
		counts := about["dataset"].(map[string]any)["counts"].(map[string]any)
		assert.Equal(t, float64(8), counts["regulation_articles"])
	})
}

func TestServeStdio(t *testing.T) {
	ta := newTestApp()
	dbPath := buildTestDB(t, ta)

	ta.stdin = strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18"}}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")
	require.NoError(t, ta.run("serve", "--db", dbPath))

	lines := strings.Split(strings.TrimSpace(ta.stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"serverInfo"`)
	assert.Contains(t, lines[1], `"export_compliance_matrix"`)
}

func TestCheckSources(t *testing.T) {
	ta := newTestApp()
	seedDir := writeSeedDir(t)

	require.NoError(t, ta.run("check-sources", "--seed-dir", seedDir))
	var report seed.Report
	require.NoError(t, json.Unmarshal(ta.stdout.Bytes(), &report))
	assert.Equal(t, 2, report.Summary.PendingReviewsCount)
	assert.Equal(t, 3, report.Summary.Standards)

	out := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, ta.run("check-sources", "--seed-dir", seedDir, "--output", out))
	assert.FileExists(t, out)
	assert.Contains(t, ta.stderr.String(), "2 pending review")
}

func TestMissingDatabase(t *testing.T) {
	ta := newTestApp()
	err := ta.run("about", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database at")
}

func TestLoadConfig_SessionTTL(t *testing.T) {
	var got *config.Config
	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info"},
			&cli.DurationFlag{Name: "session-ttl"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			got = cfg
			return err
		},
	}

	require.NoError(t, app.Run([]string{"automcp", "--session-ttl", "5m"}))
	assert.Equal(t, 5*time.Minute, got.SessionTTL)

	require.NoError(t, app.Run([]string{"automcp"}))
	assert.Equal(t, 30*time.Minute, got.SessionTTL)

	err := app.Run([]string{"automcp", "--session-ttl", "-1m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SessionTTL cannot be negative")
}

func TestBuildDBPurgesMatrixCache(t *testing.T) {
	ta := newTestApp()
	seedDir := writeSeedDir(t)
	dbPath := filepath.Join(t.TempDir(), "automotive.db")
	cacheDir := filepath.Join(t.TempDir(), "cache")

	require.NoError(t, ta.run("build-db", "--seed-dir", seedDir, "--db", dbPath, "--cache", cacheDir))
	assert.Contains(t, ta.stderr.String(), "Matrix cache: 0 entries purged")

	require.NoError(t, ta.run("export", "--db", dbPath, "--cache", cacheDir))
	require.NoError(t, ta.run("export", "--db", dbPath, "--cache", cacheDir, "--format", "csv"))

	require.NoError(t, ta.run("build-db", "--seed-dir", seedDir, "--db", dbPath, "--cache", cacheDir))
	assert.Contains(t, ta.stderr.String(), "Matrix cache: 2 entries purged")

	require.NoError(t, ta.run("build-db", "--seed-dir", seedDir, "--db", dbPath))
	assert.NotContains(t, ta.stderr.String(), "Matrix cache")
}
