package requirements

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	store, err := sqlite.NewTestStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewFetcher(store)
}

type stubProber struct {
	regulations map[string]bool
	standards   map[string]bool
	err         error
	probed      []string
}

func (s *stubProber) RegulationExists(_ context.Context, id string) (bool, error) {
	s.probed = append(s.probed, id)
	return s.regulations[id], s.err
}

func (s *stubProber) StandardExists(_ context.Context, id string) (bool, error) {
	return s.standards[id], s.err
}

func TestResolve(t *testing.T) {
	prober := &stubProber{
		regulations: map[string]bool{"r155": true, "shared": true},
		standards:   map[string]bool{"iso_21434": true, "shared": true},
	}
	r := NewResolver(prober)
	ctx := context.Background()

	tests := []struct {
		id   string
		want core.Family
	}{
		{"r155", core.FamilyRegulation},
		{"R155", core.FamilyRegulation},
		{"ISO_21434", core.FamilyStandard},
		{"shared", core.FamilyRegulation},
		{"unknown", core.FamilyNone},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Contains(t, prober.probed, "r155")
	assert.NotContains(t, prober.probed, "R155")
}

func TestResolve_Error(t *testing.T) {
	cause := errors.New("disk I/O error")
	r := NewResolver(&stubProber{err: cause})

	family, err := r.Resolve(context.Background(), "r155")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, core.FamilyNone, family)
}

func TestGet_Validation(t *testing.T) {
	f := newTestFetcher(t)
	ctx := context.Background()

	_, err := f.Get(ctx, GetInput{Reference: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, "Missing required parameter: source. Use list_sources to see available source IDs.", err.Error())

	_, err = f.Get(ctx, GetInput{Source: "r155"})
	require.Error(t, err)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "reference", verr.Field)
	assert.Contains(t, err.Error(), "search_requirements")
}

func TestGet_NotFound(t *testing.T) {
	f := newTestFetcher(t)
	ctx := context.Background()

	_, err := f.Get(ctx, GetInput{Source: "nonexistent", Reference: "1.0"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Contains(t, err.Error(), "Source not found: nonexistent")

	_, err = f.Get(ctx, GetInput{Source: "R155", Reference: "99"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, "Reference not found: 99 in source r155", err.Error())

	_, err = f.Get(ctx, GetInput{Source: "iso_21434", Reference: "15.9"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGet_Regulation(t *testing.T) {
	f := newTestFetcher(t)

	req, err := f.Get(context.Background(), GetInput{Source: "r155", Reference: "7.2.2.2"})
	require.NoError(t, err)
	assert.Equal(t, "r155", req.Source)
	assert.Equal(t, "7.2.2.2", req.Reference)
	require.NotNil(t, req.Text)
	assert.NotEmpty(t, *req.Text)
	assert.Equal(t, "", req.Guidance)
	assert.Nil(t, req.MapsTo)
	assert.Nil(t, req.SatisfiedBy)
	assert.Nil(t, req.WorkProducts)
}

func TestGet_ReferencesAreNotCaseFolded(t *testing.T) {
	f := newTestFetcher(t)

	_, err := f.Get(context.Background(), GetInput{Source: "r155", Reference: "annex 5"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	req, err := f.Get(context.Background(), GetInput{Source: "r155", Reference: "Annex 5"})
	require.NoError(t, err)
	assert.Equal(t, "Annex 5", req.Reference)
}

func TestGet_Standard(t *testing.T) {
	f := newTestFetcher(t)
	ctx := context.Background()

	req, err := f.Get(ctx, GetInput{Source: "ISO_21434", Reference: "15"})
	require.NoError(t, err)
	assert.Equal(t, "iso_21434", req.Source)
	assert.Nil(t, req.Text)
	assert.NotEmpty(t, req.Guidance)
	assert.Len(t, req.WorkProducts, 4)

	empty, err := f.Get(ctx, GetInput{Source: "iso_21434", Reference: "9"})
	require.NoError(t, err)
	assert.Nil(t, empty.WorkProducts, "empty work product lists are omitted")

	absent, err := f.Get(ctx, GetInput{Source: "iso_24089", Reference: "7"})
	require.NoError(t, err)
	assert.Nil(t, absent.WorkProducts)
}

func TestGet_Mappings(t *testing.T) {
	f := newTestFetcher(t)
	ctx := context.Background()

	t.Run("regulation with reverse edges", func(t *testing.T) {
		req, err := f.Get(ctx, GetInput{Source: "r156", Reference: "7.1", IncludeMappings: true})
		require.NoError(t, err)
		assert.Nil(t, req.MapsTo)
		require.Len(t, req.SatisfiedBy, 2)
		assert.Equal(t, core.MappingReference{
			TargetType: "standard", TargetID: "iso_24089", TargetRef: "7", Relationship: "satisfies",
		}, req.SatisfiedBy[1])
	})

	t.Run("standard with forward edges", func(t *testing.T) {
		req, err := f.Get(ctx, GetInput{Source: "iso_21434", Reference: "9.3", IncludeMappings: true})
		require.NoError(t, err)
		require.Len(t, req.MapsTo, 1)
		assert.Equal(t, "7.2.2.2(a)", req.MapsTo[0].TargetRef)
		assert.Nil(t, req.SatisfiedBy)
	})

	t.Run("no edges omits both keys", func(t *testing.T) {
		req, err := f.Get(ctx, GetInput{Source: "r155", Reference: "1", IncludeMappings: true})
		require.NoError(t, err)

		data, err := json.Marshal(req)
		require.NoError(t, err)
		var shape map[string]any
		require.NoError(t, json.Unmarshal(data, &shape))
		assert.NotContains(t, shape, "maps_to")
		assert.NotContains(t, shape, "satisfied_by")
		assert.Contains(t, shape, "text")
		assert.Equal(t, "", shape["guidance"])
	})

	t.Run("mappings not requested", func(t *testing.T) {
		req, err := f.Get(ctx, GetInput{Source: "r156", Reference: "7.1"})
		require.NoError(t, err)
		assert.Nil(t, req.SatisfiedBy)
	})
}
