package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

func sampleContents() *domain.DocumentContents {
	return &domain.DocumentContents{Pages: []domain.Page{{
		PageNumber: 1,
		Tags: []domain.Tag{{
			ID:         "intro",
			Kind:       domain.TagKindBulletList,
			Variations: []domain.Variation{{ID: 0, Text: domain.NewListVariation("a", "b")}},
		}},
	}}}
}

func TestContentsStore_SaveAndGet(t *testing.T) {
	store := NewContentsStore()
	ctx := context.Background()

	require.NoError(t, store.SaveContents(ctx, "k", sampleContents()))

	doc, fetchedAt, err := store.GetContents(ctx, "k")
	require.NoError(t, err)
	assert.False(t, fetchedAt.IsZero())
	assert.Equal(t, domain.TagKindBulletList, doc.Pages[0].Tags[0].Kind)
	assert.Equal(t, []string{"a", "b"}, doc.Pages[0].Tags[0].Variations[0].Text.Lines())

	_, _, err = store.GetContents(ctx, "other")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.SaveContents(ctx, "", sampleContents()), domain.ErrInvalidInput)
}

func TestContentsStore_DeleteBefore(t *testing.T) {
	store := NewContentsStore()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	require.NoError(t, store.SaveContents(ctx, "old", sampleContents()))
	store.now = func() time.Time { return base.Add(48 * time.Hour) }
	require.NoError(t, store.SaveContents(ctx, "new", sampleContents()))

	removed, err := store.DeleteContentsBefore(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, _, err = store.GetContents(ctx, "new")
	assert.NoError(t, err)
}

func TestArtifactStore_Lifecycle(t *testing.T) {
	store := NewArtifactStore()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"g1", "g2", "g3"} {
		require.NoError(t, store.SaveGeneration(ctx, &domain.Generation{ID: id, StartedAt: base.Add(time.Duration(i) * time.Minute)}))
		require.NoError(t, store.SaveArtifact(ctx, &domain.Artifact{Key: "page1_", GenerationID: id, DOCX: []byte(id)}))
	}

	assert.ErrorIs(t, store.SaveArtifact(ctx, &domain.Artifact{Key: "k", GenerationID: "nope"}), domain.ErrNotFound)

	gens, err := store.ListGenerations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, gens, 2)
	assert.Equal(t, "g3", gens[0].ID)

	removed, err := store.PruneGenerations(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = store.GetArtifact(ctx, "g1", "page1_")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	a, err := store.GetArtifact(ctx, "g3", "page1_")
	require.NoError(t, err)
	assert.Equal(t, []byte("g3"), a.DOCX)
}

func TestTemplateStore(t *testing.T) {
	store := NewTemplateStore(map[string][]byte{"page_1.docx": []byte("tmpl")})
	ctx := context.Background()

	data, err := store.Template(ctx, "page_1.docx")
	require.NoError(t, err)
	data[0] = 'X'

	again, err := store.Template(ctx, "page_1.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("tmpl"), again)
	assert.Equal(t, 2, store.Fetches("page_1.docx"))

	_, err = store.Template(ctx, "page_9.docx")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	store.Put("page_9.docx", []byte("new"))
	_, err = store.Template(ctx, "page_9.docx")
	assert.NoError(t, err)
}
