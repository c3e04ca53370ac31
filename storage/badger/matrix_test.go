package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage"
)

func sampleMatrix() *core.MatrixResult {
	return &core.MatrixResult{
		Format:  "markdown",
		Content: "# R155 Compliance Matrix\n\n| Article | Title |",
		Statistics: core.MatrixStatistics{
			TotalRequirements:    5,
			MappedRequirements:   2,
			UnmappedRequirements: 3,
			CoveragePercent:      40,
			UniqueWorkProducts:   8,
		},
	}
}

func TestMatrixCache_Miss(t *testing.T) {
	cache, backend, err := NewMemoryMatrixCache(0)
	require.NoError(t, err)
	defer backend.Close()

	got, err := cache.GetMatrix(context.Background(), core.IDFromContent("absent"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMatrixCache_PutGet(t *testing.T) {
	cache, backend, err := NewMemoryMatrixCache(time.Hour)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	key := core.IDFromContent("r155|markdown|true|abc|2026-01-15")
	want := sampleMatrix()

	require.NoError(t, cache.PutMatrix(ctx, key, want))

	got, err := cache.GetMatrix(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, got)

	other, err := cache.GetMatrix(ctx, core.IDFromContent("r155|csv|true|abc|2026-01-15"))
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestMatrixCache_Overwrite(t *testing.T) {
	cache, backend, err := NewMemoryMatrixCache(0)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	key := core.IDFromContent("k")
	first := sampleMatrix()
	second := sampleMatrix()
	second.Format = "csv"
	second.Content = `"Article","Title"`

	require.NoError(t, cache.PutMatrix(ctx, key, first))
	require.NoError(t, cache.PutMatrix(ctx, key, second))

	got, err := cache.GetMatrix(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestMatrixCache_Purge(t *testing.T) {
	cache, backend, err := NewMemoryMatrixCache(0)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	keys := []core.ID{core.IDFromContent("k1"), core.IDFromContent("k2"), core.IDFromContent("k3")}
	for _, key := range keys {
		require.NoError(t, cache.PutMatrix(ctx, key, sampleMatrix()))
	}

	purged, err := cache.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(keys), purged)

	for _, key := range keys {
		got, err := cache.GetMatrix(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	purged, err = cache.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestMatrixCache_PurgeKeepsOtherKeys(t *testing.T) {
	cache, backend, err := NewMemoryMatrixCache(0)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, cache.PutMatrix(ctx, core.IDFromContent("k"), sampleMatrix()))
	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte("other:1"), []byte("v")); err != nil {
			return err
		}
		return tx.Commit()
	}, true))

	purged, err := cache.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte("other:1"))
		return err
	}, false))
}

func TestMatrixCache_Closed(t *testing.T) {
	cache, backend, err := NewMemoryMatrixCache(0)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = cache.GetMatrix(context.Background(), core.IDFromContent("k"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = cache.PutMatrix(context.Background(), core.IDFromContent("k"), sampleMatrix())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = cache.Purge(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestOpenMatrixCache_Persists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "matrix-cache")
	ctx := context.Background()
	key := core.IDFromContent("persisted")

	cache, err := OpenMatrixCache(dir, 0)
	require.NoError(t, err)
	require.NoError(t, cache.PutMatrix(ctx, key, sampleMatrix()))
	require.NoError(t, cache.Close())

	reopened, err := OpenMatrixCache(dir, 0)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetMatrix(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, sampleMatrix(), got)
}

func TestMatrixKey(t *testing.T) {
	assert.Equal(t, []byte("mtx:\x00"), makeMatrixKey(0))
	assert.Equal(t, []byte("mtx:\x96\x01"), makeMatrixKey(150))

	for _, id := range []core.ID{0, 1, 150, core.IDFromContent("r155|markdown|false")} {
		got, err := parseMatrixKey(makeMatrixKey(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	_, err := parseMatrixKey([]byte("chat:\x01"))
	assert.Error(t, err)
	_, err = parseMatrixKey([]byte(matrixPrefix))
	assert.Error(t, err)
}
