package workproducts

import (
	"context"
	"strings"
	"testing"

	"github.com/ansvar-systems/automcp/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	store, err := sqlite.NewTestStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewAggregator(store, nil)
}

func TestList_All(t *testing.T) {
	a := newTestAggregator(t)

	result, err := a.List(context.Background(), ListInput{})
	require.NoError(t, err)

	assert.Equal(t, 10, result.Summary.TotalWorkProducts)
	assert.Equal(t, 5, result.Summary.ClausesCovered)
	assert.Equal(t, 7, result.Summary.CALRelevantCount)
	assert.Equal(t, PhaseNames(), result.Phases)
	assert.Equal(t, "organizational", result.Phases[0])
	assert.Equal(t, "tara", result.Phases[len(result.Phases)-1])

	for _, item := range result.WorkProducts {
		assert.NotEqual(t, "9", item.ClauseID, "clauses with empty lists are excluded")
	}
}

func TestList_Phase(t *testing.T) {
	a := newTestAggregator(t)

	result, err := a.List(context.Background(), ListInput{Phase: "tara"})
	require.NoError(t, err)
	require.NotEmpty(t, result.WorkProducts)
	for _, item := range result.WorkProducts {
		assert.True(t, strings.HasPrefix(item.ClauseID, "15"), item.ClauseID)
	}
	assert.Equal(t, 6, result.Summary.TotalWorkProducts)
	assert.Equal(t, 2, result.Summary.ClausesCovered)
}

func TestList_ClauseIDTakesPrecedence(t *testing.T) {
	a := newTestAggregator(t)

	result, err := a.List(context.Background(), ListInput{ClauseID: "9.3", Phase: "tara"})
	require.NoError(t, err)
	require.Len(t, result.WorkProducts, 1)

	item := result.WorkProducts[0]
	require.NotNil(t, item.ID)
	assert.Equal(t, "WP-09-01", *item.ID)
	assert.Equal(t, "Item definition", item.Name)
	assert.Equal(t, "Item definition", item.ClauseTitle)
	assert.False(t, item.CALRelevant)
	assert.Equal(t, []string{"7.2.2.2(a)"}, item.R155Refs)
}

func TestList_UnknownPhaseIsIgnored(t *testing.T) {
	a := newTestAggregator(t)

	all, err := a.List(context.Background(), ListInput{})
	require.NoError(t, err)
	unknown, err := a.List(context.Background(), ListInput{Phase: "maintenance"})
	require.NoError(t, err)

	assert.Equal(t, all, unknown)
}

func TestList_UnlabeledWorkProduct(t *testing.T) {
	a := newTestAggregator(t)

	result, err := a.List(context.Background(), ListInput{ClauseID: "15.3"})
	require.NoError(t, err)
	require.Len(t, result.WorkProducts, 2)

	assert.Nil(t, result.WorkProducts[1].ID)
	assert.Equal(t, "Asset list", result.WorkProducts[1].Name)
	assert.Equal(t, []string{"7.2.2.2"}, result.WorkProducts[1].R155Refs)
}

func TestList_EmptyResult(t *testing.T) {
	a := newTestAggregator(t)

	result, err := a.List(context.Background(), ListInput{Phase: "decommissioning"})
	require.NoError(t, err)
	assert.NotNil(t, result.WorkProducts)
	assert.Empty(t, result.WorkProducts)
	assert.Equal(t, Summary{}, result.Summary)
}

func TestPhaseClauses(t *testing.T) {
	ids, ok := PhaseClauses("project")
	assert.True(t, ok)
	assert.Equal(t, []string{"6", "7"}, ids)

	_, ok = PhaseClauses("PROJECT")
	assert.False(t, ok)
}
