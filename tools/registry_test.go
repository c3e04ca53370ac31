package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansvar-systems/automcp/catalog"
	"github.com/ansvar-systems/automcp/matrix"
	"github.com/ansvar-systems/automcp/requirements"
	"github.com/ansvar-systems/automcp/search"
	"github.com/ansvar-systems/automcp/storage/sqlite"
	"github.com/ansvar-systems/automcp/workproducts"
)

type recordingObserver struct {
	calls  []string
	failed []bool
}

func (o *recordingObserver) ObserveCall(tool string, _ time.Duration, failed bool) {
	o.calls = append(o.calls, tool)
	o.failed = append(o.failed, failed)
}

func newFixtureRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	store, err := sqlite.NewTestStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	searcher, err := search.NewSearcher(store)
	require.NoError(t, err)
	t.Cleanup(searcher.Release)

	cat, err := catalog.NewCatalog(store)
	require.NoError(t, err)

	return NewRegistry(Services{
		Catalog:      cat,
		Requirements: requirements.NewFetcher(store),
		Search:       searcher,
		WorkProducts: workproducts.NewAggregator(store, nil),
		Matrix: matrix.NewGenerator(store, matrix.WithClock(func() time.Time {
			return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		})),
	}, opts...)
}

func call(t *testing.T, r *Registry, name, args string) *Result {
	t.Helper()
	res := r.Call(context.Background(), name, json.RawMessage(args))
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	return res
}

func TestTitleFromName(t *testing.T) {
	assert.Equal(t, "List Sources", TitleFromName("list_sources"))
	assert.Equal(t, "Export Compliance Matrix", TitleFromName("export_compliance_matrix"))
	assert.Equal(t, "About", TitleFromName("about"))
}

func TestRegistry_List(t *testing.T) {
	r := newFixtureRegistry(t)
	tools := r.List()

	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
		assert.True(t, tool.Annotations.ReadOnlyHint, tool.Name)
		assert.False(t, tool.Annotations.DestructiveHint, tool.Name)
		assert.Equal(t, TitleFromName(tool.Name), tool.Annotations.Title)
		assert.Equal(t, "object", tool.InputSchema["type"])
		assert.NotEmpty(t, tool.Description)
	}
	assert.Equal(t, []string{
		ListSources, GetRequirement, SearchRequirements, ListWorkProducts, ExportMatrix, About,
	}, names)

	assert.Equal(t, []string{"source", "reference"}, tools[1].InputSchema["required"])
	assert.Equal(t, []string{"query"}, tools[2].InputSchema["required"])
	_, hasRequired := tools[0].InputSchema["required"]
	assert.False(t, hasRequired)
}

func TestRegistry_UnknownTool(t *testing.T) {
	r := newFixtureRegistry(t)
	res := call(t, r, "delete_everything", `{}`)
	assert.True(t, res.IsError)
	assert.Equal(t, "Unknown tool: delete_everything", res.Content[0].Text)
}

func TestRegistry_GetRequirement(t *testing.T) {
	r := newFixtureRegistry(t)

	t.Run("regulation article", func(t *testing.T) {
		res := call(t, r, GetRequirement, `{"source":"r155","reference":"7.2.2.2"}`)
		require.False(t, res.IsError, res.Content[0].Text)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
		assert.Equal(t, "r155", got["source"])
		assert.Equal(t, "7.2.2.2", got["reference"])
		assert.NotEmpty(t, got["text"])
		assert.Equal(t, "", got["guidance"])
		assert.NotContains(t, got, "maps_to")
		assert.NotContains(t, got, "satisfied_by")
		assert.True(t, strings.HasPrefix(res.Content[0].Text, "{\n  \""))
	})

	t.Run("standard clause", func(t *testing.T) {
		res := call(t, r, GetRequirement, `{"source":"iso_21434","reference":"15","include_mappings":true}`)
		require.False(t, res.IsError, res.Content[0].Text)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
		assert.Nil(t, got["text"])
		assert.NotEmpty(t, got["guidance"])
		assert.Contains(t, got, "maps_to")
		assert.Contains(t, got, "work_products")
	})

	t.Run("unknown source", func(t *testing.T) {
		res := call(t, r, GetRequirement, `{"source":"nonexistent","reference":"1.0"}`)
		assert.True(t, res.IsError)
		assert.Equal(t, "Error executing get_requirement: Source not found: nonexistent", res.Content[0].Text)
	})

	t.Run("missing source", func(t *testing.T) {
		res := call(t, r, GetRequirement, `{"reference":"1"}`)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].Text, "Missing required parameter: source")
	})

	t.Run("malformed arguments", func(t *testing.T) {
		res := call(t, r, GetRequirement, `{"source":42}`)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].Text, "Error executing get_requirement: Invalid arguments")
	})
}

func TestRegistry_Search(t *testing.T) {
	r := newFixtureRegistry(t)

	t.Run("empty query", func(t *testing.T) {
		res := call(t, r, SearchRequirements, `{"query":"   "}`)
		require.False(t, res.IsError)
		assert.Equal(t, "[]", res.Content[0].Text)
	})

	t.Run("hits", func(t *testing.T) {
		res := call(t, r, SearchRequirements, `{"query":"manufacturer","sources":["r155"],"limit":5}`)
		require.False(t, res.IsError, res.Content[0].Text)

		var hits []map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &hits))
		require.NotEmpty(t, hits)
		for _, h := range hits {
			assert.Equal(t, "r155", h["source"])
		}
	})

	t.Run("operator characters", func(t *testing.T) {
		res := call(t, r, SearchRequirements, `{"query":"risk-assessment (threats"}`)
		assert.False(t, res.IsError, res.Content[0].Text)
	})
}

func TestRegistry_ListSourcesAndAbout(t *testing.T) {
	obs := &recordingObserver{}
	r := newFixtureRegistry(t, WithObserver(obs))

	res := call(t, r, ListSources, ``)
	require.False(t, res.IsError)
	var sources []catalog.SourceInfo
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &sources))
	assert.Len(t, sources, 5)

	res = call(t, r, ListSources, `{"source_type":"bogus"}`)
	assert.True(t, res.IsError)

	res = call(t, r, About, `null`)
	require.False(t, res.IsError)
	var about catalog.About
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &about))
	assert.Equal(t, 2, about.Dataset.Counts["regulations"])

	assert.Equal(t, []string{ListSources, ListSources, About}, obs.calls)
	assert.Equal(t, []bool{false, true, false}, obs.failed)
}

func TestRegistry_WorkProductsAndMatrix(t *testing.T) {
	r := newFixtureRegistry(t)

	res := call(t, r, ListWorkProducts, `{"phase":"tara"}`)
	require.False(t, res.IsError, res.Content[0].Text)
	var wp workproducts.Result
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &wp))
	require.NotEmpty(t, wp.WorkProducts)
	for _, item := range wp.WorkProducts {
		assert.True(t, strings.HasPrefix(item.ClauseID, "15"), item.ClauseID)
	}

	res = call(t, r, ExportMatrix, `{"format":"csv"}`)
	require.False(t, res.IsError, res.Content[0].Text)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &out))
	assert.Equal(t, "csv", out["format"])

	res = call(t, r, ExportMatrix, `{"format":"pdf"}`)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "Invalid format: pdf")
}
