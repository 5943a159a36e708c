package badger

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nix-ml-journey/vector-store-project/core"
	"github.com/Nix-ml-journey/vector-store-project/storage"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestCosineDistance(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		d := cosineDistance([]float32{1, 0, 0}, []float32{1, 0, 0})
		assert.InDelta(t, 0.0, d, 1e-6)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		d := cosineDistance([]float32{1, 0, 0}, []float32{0, 1, 0})
		assert.InDelta(t, 1.0, d, 1e-6)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		d := cosineDistance([]float32{1, 0}, []float32{-1, 0})
		assert.InDelta(t, 2.0, d, 1e-6)
	})

	t.Run("zero vector yields max distance", func(t *testing.T) {
		d := cosineDistance([]float32{0, 0, 0}, []float32{1, 0, 0})
		assert.InDelta(t, 1.0, d, 1e-6)
	})

	t.Run("magnitude does not matter", func(t *testing.T) {
		d1 := cosineDistance([]float32{1, 2, 3}, []float32{2, 4, 6})
		assert.InDelta(t, 0.0, d1, 1e-6)
	})
}

func TestFindNearest_Ordering(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	docs := []*core.Document{
		{Id: "doc_far", Vector: []float32{0, 1, 0}, Text: "far"},
		{Id: "doc_near", Vector: []float32{0.9, 0.1, 0}, Text: "near"},
		{Id: "doc_exact", Vector: []float32{1, 0, 0}, Text: "exact"},
	}
	for _, doc := range docs {
		require.NoError(t, repo.Upsert(ctx, doc))
	}

	hits, err := backend.FindNearest(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "doc_exact", hits[0].Document.Id)
	assert.Equal(t, "doc_near", hits[1].Document.Id)
	assert.Equal(t, "doc_far", hits[2].Document.Id)

	// Distances ascend
	require.NotNil(t, hits[0].Distance)
	assert.LessOrEqual(t, *hits[0].Distance, *hits[1].Distance)
	assert.LessOrEqual(t, *hits[1].Distance, *hits[2].Distance)
}

func TestFindNearest_SkipsVectorlessDocuments(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &core.Document{Id: "doc_novec", Text: "no vector"}))
	require.NoError(t, repo.Upsert(ctx, &core.Document{Id: "doc_vec", Vector: []float32{1, 0}, Text: "has vector"}))

	hits, err := backend.FindNearest(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc_vec", hits[0].Document.Id)
}

func TestFindNearest_EmptyCollection(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()

	hits, err := backend.FindNearest(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFindNearest_QueryDimensionMismatch(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &core.Document{Id: "doc_1", Vector: []float32{1, 0, 0}, Text: "three dims"}))

	_, err = backend.FindNearest(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestWithTx_AfterClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
