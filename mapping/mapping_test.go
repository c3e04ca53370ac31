package mapping

import (
	"context"
	"testing"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoversArticle(t *testing.T) {
	tests := []struct {
		target  string
		article string
		want    bool
	}{
		{"7", "7", true},
		{"7.2.2.2", "7", true},
		{"7.2.2.2(a)", "7", true},
		{"7(a)", "7", true},
		{"7.2.2.2(a)", "7.2.2.2", true},
		{"7.2.2.2", "7.2.2.2", true},
		{"70", "7", false},
		{"17.1", "7", false},
		{"7", "7.2", false},
		{"7.2.2.20", "7.2.2.2", false},
		{"Annex 5", "Annex", false},
		{"", "7", false},
	}

	for _, tt := range tests {
		t.Run(tt.target+"_under_"+tt.article, func(t *testing.T) {
			assert.Equal(t, tt.want, CoversArticle(tt.target, tt.article))
		})
	}
}

func TestTraverser(t *testing.T) {
	store, err := sqlite.NewTestStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	tr := NewTraverser(store, nil)
	ctx := context.Background()

	forward, err := tr.Forward(ctx, core.Endpoint{Type: "standard", ID: "iso_21434", Ref: "15"})
	require.NoError(t, err)
	require.Len(t, forward, 2)
	assert.Equal(t, "7.2.2.2", forward[0].TargetRef)
	assert.Equal(t, "7.2.2.2(b)", forward[1].TargetRef)

	reverse, err := tr.Reverse(ctx, core.Endpoint{Type: "regulation", ID: "r155", Ref: "7.2.2.2"})
	require.NoError(t, err)
	require.Len(t, reverse, 2)
	for _, r := range reverse {
		assert.Equal(t, "standard", r.TargetType)
		assert.Equal(t, "iso_21434", r.TargetID)
		assert.Equal(t, "satisfies", r.Relationship)
	}
	assert.Equal(t, []string{"15", "15.3"}, []string{reverse[0].TargetRef, reverse[1].TargetRef})

	none, err := tr.Forward(ctx, core.Endpoint{Type: "regulation", ID: "r155", Ref: "1"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
