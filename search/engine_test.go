package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nix-ml-journey/vector-store-project/ai/mock"
	"github.com/Nix-ml-journey/vector-store-project/core"
	"github.com/Nix-ml-journey/vector-store-project/storage"
	"github.com/Nix-ml-journey/vector-store-project/storage/badger"
)

func newTestEngine(t *testing.T) (*Engine, storage.BookRepository, *mock.MockEmbedder) {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	engine, err := NewEngine(repo, embedder, WithCollectionInfo("books_story", "./badger_db"))
	require.NoError(t, err)

	return engine, repo, embedder
}

// fixedQueryVector makes every query embed to the same vector, so the
// ranking is controlled entirely by the stored document vectors.
func fixedQueryVector(embedder *mock.MockEmbedder, vector []float32) {
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
}

func seedBook(t *testing.T, repo storage.BookRepository, id, title, author, language, bookno, text string, vector []float32) {
	t.Helper()
	require.NoError(t, repo.Upsert(context.Background(), &core.Document{
		Id:     id,
		Vector: vector,
		Text:   text,
		Metadata: map[string]string{
			core.MetaBookNumber: bookno,
			core.MetaTitle:      title,
			core.MetaAuthor:     author,
			core.MetaLanguage:   language,
		},
	}))
}

func TestNewEngine(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()
	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		engine, err := NewEngine(repo, embedder)
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})

	t.Run("with custom logger", func(t *testing.T) {
		engine, err := NewEngine(repo, embedder, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		engine, err := NewEngine(repo, embedder, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewEngine(nil, embedder)
		assert.Equal(t, ErrRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewEngine(repo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestSearchByText_EmptyCollection(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	results := engine.SearchByText(context.Background(), "anything", 5)
	assert.Empty(t, results)
}

func TestSearchByText_RanksByDistance(t *testing.T) {
	engine, repo, embedder := newTestEngine(t)
	fixedQueryVector(embedder, []float32{1, 0, 0})

	seedBook(t, repo, "doc_far", "Far Book", "A", "English", "1", "far away", []float32{0, 1, 0})
	seedBook(t, repo, "doc_near", "Near Book", "B", "English", "2", "close by", []float32{0.9, 0.1, 0})
	seedBook(t, repo, "doc_exact", "Exact Book", "C", "English", "3", "spot on", []float32{1, 0, 0})

	results := engine.SearchByText(context.Background(), "query", 10)
	require.Len(t, results, 3)
	assert.Equal(t, "doc_exact", results[0].ID)
	assert.Equal(t, "doc_near", results[1].ID)
	assert.Equal(t, "doc_far", results[2].ID)

	for _, r := range results {
		require.NotNil(t, r.Score)
	}
	assert.LessOrEqual(t, *results[0].Score, *results[1].Score)
}

func TestSearchByText_LimitBound(t *testing.T) {
	engine, repo, embedder := newTestEngine(t)
	fixedQueryVector(embedder, []float32{1, 0, 0})

	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		seedBook(t, repo, "doc_"+id, "Book "+id, "Author", "English", id, "text "+id, []float32{1, float32(i) * 0.1, 0})
	}

	for _, k := range []int{1, 2, 3, 50} {
		results := engine.SearchByText(context.Background(), "query", k)
		assert.LessOrEqual(t, len(results), k, "k=%d", k)
	}
}

func TestSearchByText_LimitClamping(t *testing.T) {
	engine, repo, embedder := newTestEngine(t)
	fixedQueryVector(embedder, []float32{1, 0})

	seedBook(t, repo, "doc_a", "A", "X", "English", "1", "a", []float32{1, 0})
	seedBook(t, repo, "doc_b", "B", "Y", "English", "2", "b", []float32{0.9, 0.1})

	t.Run("zero clamps to one", func(t *testing.T) {
		results := engine.SearchByText(context.Background(), "query", 0)
		assert.Len(t, results, 1)
	})

	t.Run("negative clamps to one", func(t *testing.T) {
		results := engine.SearchByText(context.Background(), "query", -3)
		assert.Len(t, results, 1)
	})

	t.Run("huge limit clamps to max", func(t *testing.T) {
		results := engine.SearchByText(context.Background(), "query", 10000)
		assert.LessOrEqual(t, len(results), MaxResults)
	})
}

func TestSearchByText_EmbeddingFailureYieldsEmpty(t *testing.T) {
	engine, repo, embedder := newTestEngine(t)
	seedBook(t, repo, "doc_a", "A", "X", "English", "1", "a", []float32{1, 0})

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	results := engine.SearchByText(context.Background(), "query", 5)
	assert.Empty(t, results)
}

func TestSearchByText_WrongQueryDimensionYieldsEmpty(t *testing.T) {
	engine, repo, embedder := newTestEngine(t)
	seedBook(t, repo, "doc_a", "A", "X", "English", "1", "a", []float32{1, 0})

	// Embedder produces a different dimension than the stored vectors,
	// as after a model change without reembedding. The mismatch must not
	// surface as plausible-looking rankings.
	fixedQueryVector(embedder, []float32{1, 0, 0})

	results := engine.SearchByText(context.Background(), "query", 5)
	assert.Empty(t, results)
}

func TestSearchByAuthor(t *testing.T) {
	engine, repo, _ := newTestEngine(t)

	seedBook(t, repo, "doc_1", "Tom Sawyer", "Mark Twain", "English", "74", "a boy and a river", nil)
	seedBook(t, repo, "doc_2", "Faust", "Goethe", "German", "2229", "eine tragödie", nil)

	t.Run("exact match", func(t *testing.T) {
		results := engine.SearchByAuthor(context.Background(), "Mark Twain", 5)
		require.Len(t, results, 1)
		assert.Equal(t, "Tom Sawyer", results[0].Title)
		assert.Nil(t, results[0].Score)
	})

	t.Run("case mismatch fails empty", func(t *testing.T) {
		results := engine.SearchByAuthor(context.Background(), "mark twain", 5)
		assert.Empty(t, results)
	})

	t.Run("substring does not match", func(t *testing.T) {
		results := engine.SearchByAuthor(context.Background(), "Twain", 5)
		assert.Empty(t, results)
	})
}

func TestSearchByLanguage(t *testing.T) {
	engine, repo, _ := newTestEngine(t)

	seedBook(t, repo, "doc_1", "Tom Sawyer", "Mark Twain", "English", "74", "a boy and a river", nil)
	seedBook(t, repo, "doc_2", "Huckleberry Finn", "Mark Twain", "English", "76", "down the mississippi", nil)
	seedBook(t, repo, "doc_3", "Faust", "Goethe", "German", "2229", "eine tragödie", nil)

	results := engine.SearchByLanguage(context.Background(), "English", 5)
	assert.Len(t, results, 2)

	results = engine.SearchByLanguage(context.Background(), "French", 5)
	assert.Empty(t, results)
}

func TestAdvancedSearch_SubsetOfUnfilteredTopK(t *testing.T) {
	engine, repo, embedder := newTestEngine(t)
	fixedQueryVector(embedder, []float32{1, 0, 0})

	seedBook(t, repo, "doc_1", "Tom Sawyer", "Mark Twain", "English", "74", "a boy and a river", []float32{1, 0, 0})
	seedBook(t, repo, "doc_2", "Faust", "Goethe", "German", "2229", "eine tragödie", []float32{0.9, 0.1, 0})
	seedBook(t, repo, "doc_3", "Huckleberry Finn", "Mark Twain", "English", "76", "down the mississippi", []float32{0.5, 0.5, 0})

	ctx := context.Background()
	k := 3

	unfiltered := engine.SearchByText(ctx, "query", k)
	unfilteredIDs := make(map[string]bool)
	for _, r := range unfiltered {
		unfilteredIDs[r.ID] = true
	}

	filtered := engine.AdvancedSearch(ctx, "query", "twain", "", k)
	require.Len(t, filtered, 2)
	for _, r := range filtered {
		assert.True(t, unfilteredIDs[r.ID], "advanced result %s must come from the unfiltered top-k", r.ID)
		assert.Contains(t, r.Author, "Twain")
	}
}

// Pins the filter-after-limit behavior: the similarity search is truncated
// to k before the filters run, so qualifying books ranked below the top k
// are unreachable. A caller combining a query with filters can get zero
// results even when matching books exist in the collection.
func TestAdvancedSearch_FilterAfterLimit(t *testing.T) {
	engine, repo, embedder := newTestEngine(t)
	fixedQueryVector(embedder, []float32{1, 0, 0})

	// Two non-Twain books sit closest to the query; the Twain book ranks third.
	seedBook(t, repo, "doc_1", "Nearest", "Jules Verne", "French", "1", "nearest", []float32{1, 0, 0})
	seedBook(t, repo, "doc_2", "Second", "Goethe", "German", "2", "second", []float32{0.95, 0.05, 0})
	seedBook(t, repo, "doc_3", "Tom Sawyer", "Mark Twain", "English", "74", "third", []float32{0.5, 0.5, 0})

	results := engine.AdvancedSearch(context.Background(), "query", "Twain", "", 2)
	assert.Empty(t, results)
}

func TestAdvancedSearch_CombinedFilters(t *testing.T) {
	engine, repo, embedder := newTestEngine(t)
	fixedQueryVector(embedder, []float32{1, 0})

	seedBook(t, repo, "doc_1", "Tom Sawyer", "Mark Twain", "English", "74", "a", []float32{1, 0})
	seedBook(t, repo, "doc_2", "Twain in German", "Mark Twain", "German", "75", "b", []float32{0.9, 0.1})

	results := engine.AdvancedSearch(context.Background(), "query", "twain", "english", 5)
	require.Len(t, results, 1)
	assert.Equal(t, "doc_1", results[0].ID)
}

func TestAdvancedSearch_NoFiltersEqualsTextSearch(t *testing.T) {
	engine, repo, embedder := newTestEngine(t)
	fixedQueryVector(embedder, []float32{1, 0})

	seedBook(t, repo, "doc_1", "A", "X", "English", "1", "a", []float32{1, 0})
	seedBook(t, repo, "doc_2", "B", "Y", "English", "2", "b", []float32{0.9, 0.1})

	ctx := context.Background()
	plain := engine.SearchByText(ctx, "query", 5)
	advanced := engine.AdvancedSearch(ctx, "query", "", "", 5)
	assert.Equal(t, plain, advanced)
}

func TestGetBookByID(t *testing.T) {
	engine, repo, _ := newTestEngine(t)

	seedBook(t, repo, "doc_1", "Tom Sawyer", "Mark Twain", "English", "74", "a boy and a river", nil)

	t.Run("existing book", func(t *testing.T) {
		result := engine.GetBookByID(context.Background(), "doc_1")
		require.NotNil(t, result)
		assert.Equal(t, "Tom Sawyer", result.Title)
		assert.Equal(t, "74", result.BookNumber)
		assert.Equal(t, "a boy and a river", result.Preview)
		assert.Nil(t, result.Score)
	})

	t.Run("missing book returns nil, not an error", func(t *testing.T) {
		result := engine.GetBookByID(context.Background(), "doc_missing")
		assert.Nil(t, result)
	})
}

func TestStats(t *testing.T) {
	engine, repo, _ := newTestEngine(t)

	t.Run("empty collection", func(t *testing.T) {
		stats := engine.Stats(context.Background())
		assert.Equal(t, 0, stats.TotalBooks)
		assert.Equal(t, "books_story", stats.CollectionName)
		assert.Equal(t, "./badger_db", stats.DatabasePath)
	})

	t.Run("after inserts", func(t *testing.T) {
		seedBook(t, repo, "doc_1", "A", "X", "English", "1", "a", nil)
		seedBook(t, repo, "doc_2", "B", "Y", "English", "2", "b", nil)

		stats := engine.Stats(context.Background())
		assert.Equal(t, 2, stats.TotalBooks)
	})
}

func TestSearchByAuthor_RoundTrip(t *testing.T) {
	engine, repo, _ := newTestEngine(t)

	seedBook(t, repo, core.IDFromContent("74", "Tom Sawyer"), "Tom Sawyer", "Mark Twain", "English", "74", "a boy and a river", nil)

	results := engine.SearchByAuthor(context.Background(), "Mark Twain", 5)
	require.Len(t, results, 1)
	assert.Equal(t, "Tom Sawyer", results[0].Title)
	assert.Nil(t, results[0].Score)
}

type recordingMonitor struct {
	started      bool
	embedded     bool
	vectorHits   int
	metadataHits int
	filtered     int
	filterCalled bool
	finished     bool
	resultCount  int
}

func (m *recordingMonitor) Start(_ string)             { m.started = true }
func (m *recordingMonitor) AfterEmbedding(_ []float32) { m.embedded = true }
func (m *recordingMonitor) AfterVectorSearch(hits []*core.RawHit) {
	m.vectorHits = len(hits)
}
func (m *recordingMonitor) AfterMetadataSearch(hits []*core.RawHit) {
	m.metadataHits = len(hits)
}
func (m *recordingMonitor) AfterFilter(results []Result) {
	m.filterCalled = true
	m.filtered = len(results)
}
func (m *recordingMonitor) Finish(results []Result) {
	m.finished = true
	m.resultCount = len(results)
}

func TestSearchByTextWithMonitor(t *testing.T) {
	engine, repo, embedder := newTestEngine(t)
	fixedQueryVector(embedder, []float32{1, 0})

	seedBook(t, repo, "doc_1", "A", "X", "English", "1", "a", []float32{1, 0})

	monitor := &recordingMonitor{}
	results := engine.SearchByTextWithMonitor(context.Background(), "query", 5, monitor)

	require.Len(t, results, 1)
	assert.True(t, monitor.started)
	assert.True(t, monitor.embedded)
	assert.Equal(t, 1, monitor.vectorHits)
	assert.True(t, monitor.finished)
	assert.Equal(t, 1, monitor.resultCount)
}

func TestSearchByAuthorWithMonitor(t *testing.T) {
	engine, repo, _ := newTestEngine(t)

	seedBook(t, repo, "doc_1", "A", "Mark Twain", "English", "1", "a", []float32{1, 0})
	seedBook(t, repo, "doc_2", "B", "Mark Twain", "English", "2", "b", []float32{0, 1})

	monitor := &recordingMonitor{}
	results := engine.SearchByAuthorWithMonitor(context.Background(), "Mark Twain", 5, monitor)

	require.Len(t, results, 2)
	assert.True(t, monitor.started)
	assert.Equal(t, 2, monitor.metadataHits)
	assert.False(t, monitor.embedded)
	assert.True(t, monitor.finished)
	assert.Equal(t, 2, monitor.resultCount)
}

func TestAdvancedSearchWithMonitor(t *testing.T) {
	engine, repo, embedder := newTestEngine(t)
	fixedQueryVector(embedder, []float32{1, 0})

	seedBook(t, repo, "doc_1", "A", "Mark Twain", "English", "1", "a", []float32{1, 0})
	seedBook(t, repo, "doc_2", "B", "Goethe", "German", "2", "b", []float32{0.9, 0.1})

	monitor := &recordingMonitor{}
	results := engine.AdvancedSearchWithMonitor(context.Background(), "query", "twain", "", 5, monitor)

	require.Len(t, results, 1)
	assert.True(t, monitor.started)
	assert.True(t, monitor.embedded)
	assert.Equal(t, 2, monitor.vectorHits)
	assert.True(t, monitor.filterCalled)
	assert.Equal(t, 1, monitor.filtered)
	assert.True(t, monitor.finished)
	assert.Equal(t, 1, monitor.resultCount)
}
