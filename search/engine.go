package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Nix-ml-journey/vector-store-project/ai"
	"github.com/Nix-ml-journey/vector-store-project/core"
	"github.com/Nix-ml-journey/vector-store-project/storage"
)

// Result count bounds. Requested limits are clamped into [MinResults, MaxResults].
const (
	MinResults = 1
	MaxResults = 50
)

// Engine translates high-level query intents into repository calls and
// normalizes heterogeneous hits into one Result schema.
//
// Read operations never return errors: internal failures are logged and
// surfaced as empty results, so callers cannot distinguish "no matches"
// from "internal failure" through the return value alone. The write path
// (repository mutations) stays fail-explicit.
type Engine struct {
	repository     storage.BookRepository
	embedder       ai.Embedder
	collectionName string
	databasePath   string
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithCollectionInfo sets the collection name and database path reported
// by Stats.
func WithCollectionInfo(name, path string) Option {
	return func(e *Engine) error {
		e.collectionName = name
		e.databasePath = path
		return nil
	}
}

// NewEngine creates a new search engine.
func NewEngine(repository storage.BookRepository, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		repository: repository,
		embedder:   embedder,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// SearchByText embeds the query and returns the nearest books by vector
// distance, up to limit results.
func (e *Engine) SearchByText(ctx context.Context, query string, limit int) []Result {
	return e.SearchByTextWithMonitor(ctx, query, limit, nil)
}

// SearchByTextWithMonitor is SearchByText with monitoring callbacks at
// each stage of the search.
func (e *Engine) SearchByTextWithMonitor(ctx context.Context, query string, limit int, monitor SearchMonitor) []Result {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	limit = clampLimit(limit)

	monitor.Start(query)
	results := e.textSearch(ctx, query, limit, monitor)
	monitor.Finish(results)
	return results
}

// textSearch runs the embed-and-rank stages shared by text and advanced
// search. Start and Finish are the caller's responsibility.
func (e *Engine) textSearch(ctx context.Context, query string, limit int, monitor SearchMonitor) []Result {
	e.logger.Info("searching for books", "query", query, "limit", limit)

	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil || len(vector) == 0 {
		e.logger.Error("error generating embedding for query", "query", query, "err", err)
		return []Result{}
	}
	monitor.AfterEmbedding(vector)

	hits, err := e.repository.QueryByVector(ctx, vector, limit)
	if err != nil {
		e.logger.Error("error querying by vector", "err", err)
		return []Result{}
	}
	monitor.AfterVectorSearch(hits)

	results := normalizeHits(hits)
	e.logger.Info("found books", "count", len(results))
	return results
}

// SearchByAuthor returns books whose author field exactly equals author.
// Matching follows the metadata index's collation, which is exact-string:
// no substring matching, casing must agree.
func (e *Engine) SearchByAuthor(ctx context.Context, author string, limit int) []Result {
	return e.SearchByAuthorWithMonitor(ctx, author, limit, nil)
}

// SearchByAuthorWithMonitor is SearchByAuthor with monitoring callbacks.
func (e *Engine) SearchByAuthorWithMonitor(ctx context.Context, author string, limit int, monitor SearchMonitor) []Result {
	e.logger.Info("searching for books by author", "author", author)
	return e.searchByField(ctx, core.MetaAuthor, author, limit, monitor)
}

// SearchByLanguage returns books whose language field exactly equals language.
func (e *Engine) SearchByLanguage(ctx context.Context, language string, limit int) []Result {
	return e.SearchByLanguageWithMonitor(ctx, language, limit, nil)
}

// SearchByLanguageWithMonitor is SearchByLanguage with monitoring callbacks.
func (e *Engine) SearchByLanguageWithMonitor(ctx context.Context, language string, limit int, monitor SearchMonitor) []Result {
	e.logger.Info("searching for books by language", "language", language)
	return e.searchByField(ctx, core.MetaLanguage, language, limit, monitor)
}

func (e *Engine) searchByField(ctx context.Context, field, value string, limit int, monitor SearchMonitor) []Result {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	limit = clampLimit(limit)
	monitor.Start(value)

	hits, err := e.repository.QueryByMetadata(ctx, map[string]string{field: value}, limit)
	if err != nil {
		e.logger.Error("error querying by metadata", "field", field, "err", err)
		return []Result{}
	}
	monitor.AfterMetadataSearch(hits)

	results := normalizeHits(hits)
	monitor.Finish(results)
	return results
}

// AdvancedSearch combines a text query with optional author/language
// post-filters. The similarity search runs first, limited to limit; the
// filters then narrow that already-limited set by case-insensitive
// substring match. Qualifying books outside the unfiltered top results
// are therefore never returned, so combining a query with filters can
// yield fewer than limit hits, or none, even when matches exist deeper
// in the collection.
func (e *Engine) AdvancedSearch(ctx context.Context, query, author, language string, limit int) []Result {
	return e.AdvancedSearchWithMonitor(ctx, query, author, language, limit, nil)
}

// AdvancedSearchWithMonitor is AdvancedSearch with monitoring callbacks,
// including AfterFilter with the post-filter result set.
func (e *Engine) AdvancedSearchWithMonitor(ctx context.Context, query, author, language string, limit int, monitor SearchMonitor) []Result {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	limit = clampLimit(limit)
	e.logger.Info("advanced search", "query", query, "author", author, "language", language)

	monitor.Start(query)
	results := e.textSearch(ctx, query, limit, monitor)

	if author != "" {
		results = filterSubstring(results, author, func(r Result) string { return r.Author })
	}
	if language != "" {
		results = filterSubstring(results, language, func(r Result) string { return r.Language })
	}
	monitor.AfterFilter(results)

	if len(results) > limit {
		results = results[:limit]
	}
	monitor.Finish(results)
	return results
}

// filterSubstring keeps results whose field contains needle, case-insensitively.
func filterSubstring(results []Result, needle string, field func(Result) string) []Result {
	needle = strings.ToLower(needle)
	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		if strings.Contains(strings.ToLower(field(r)), needle) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// GetBookByID looks up a single book. Returns nil when the book is absent
// or the lookup fails; absence is never an error.
func (e *Engine) GetBookByID(ctx context.Context, id string) *Result {
	e.logger.Info("getting book by id", "id", id)

	doc, err := e.repository.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			e.logger.Debug("book not found", "id", id)
		} else {
			e.logger.Error("error getting book by id", "id", id, "err", err)
		}
		return nil
	}

	result := newResult(&core.RawHit{Document: doc})
	return &result
}

// Stats reports collection-level statistics. Zero-valued on failure.
func (e *Engine) Stats(ctx context.Context) Stats {
	count, err := e.repository.Count(ctx)
	if err != nil {
		e.logger.Error("error getting collection stats", "err", err)
		return Stats{}
	}

	return Stats{
		TotalBooks:     count,
		CollectionName: e.collectionName,
		DatabasePath:   e.databasePath,
	}
}

// clampLimit bounds a requested result count into [MinResults, MaxResults].
func clampLimit(limit int) int {
	if limit < MinResults {
		return MinResults
	}
	if limit > MaxResults {
		return MaxResults
	}
	return limit
}
