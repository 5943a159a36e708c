package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/Nix-ml-journey/vector-store-project/ai"
	"github.com/Nix-ml-journey/vector-store-project/core"
	"github.com/Nix-ml-journey/vector-store-project/storage"
)

const defaultBatchSize = 32

// Pipeline orchestrates corpus ingestion: joining catalog and story rows,
// embedding book texts in batches on a worker pool, and upserting the
// resulting documents. Embedding is the dominant latency cost, so batches
// run concurrently; a slow embedding call never stalls the CSV stream.
//
// Batch ingestion is not all-or-nothing: a failed batch is logged and
// skipped while the rest of the corpus continues.
type Pipeline struct {
	repository storage.BookRepository
	embedder   ai.Embedder
	loader     *Loader
	pool       *ants.Pool
	batchSize  int
	logger     *slog.Logger

	wg       sync.WaitGroup
	ingested atomic.Int64
	failed   atomic.Int64
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many books are embedded per batch.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(repository storage.BookRepository, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository: repository,
		embedder:   embedder,
		loader:     NewLoader(),
		pool:       pool,
		batchSize:  defaultBatchSize,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.loader = NewLoader(WithLoaderLogger(p.logger))

	return p, nil
}

// Run ingests a corpus from a catalog CSV and a stories CSV, joining them
// on the book number. Returns the number of rows submitted for ingestion.
// Rows without a catalog entry are skipped. Call Wait afterwards to drain
// outstanding embedding work.
func (p *Pipeline) Run(ctx context.Context, catalogPath, storiesPath string) (int, error) {
	entries, err := p.loader.LoadCatalog(catalogPath)
	if err != nil {
		return 0, err
	}

	catalog := make(map[string]CatalogEntry, len(entries))
	for _, entry := range entries {
		catalog[entry.BookNumber] = entry
	}

	submitted := 0
	batch := make([]BookRow, 0, p.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		rows := make([]BookRow, len(batch))
		copy(rows, batch)
		batch = batch[:0]
		return p.submitBatch(ctx, rows)
	}

	err = p.loader.StreamStories(storiesPath, func(bookNumber, content string) error {
		entry, ok := catalog[bookNumber]
		if !ok {
			return nil
		}

		batch = append(batch, BookRow{
			BookNumber: entry.BookNumber,
			Title:      entry.Title,
			Author:     entry.Author,
			Language:   entry.Language,
			Content:    content,
		})
		submitted++

		if len(batch) >= p.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return submitted, err
	}

	if err := flush(); err != nil {
		return submitted, err
	}

	return submitted, nil
}

// submitBatch hands a batch to the worker pool.
func (p *Pipeline) submitBatch(ctx context.Context, rows []BookRow) error {
	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		if err := p.IngestBooks(ctx, rows); err != nil {
			p.logger.Error("batch ingestion failed", "books", len(rows), "err", err)
		}
	})
	if err != nil {
		p.wg.Done()
		return fmt.Errorf("submitting batch: %w", err)
	}
	return nil
}

// IngestBooks synchronously embeds and upserts a batch of rows.
// Metadata fields missing from a row are defaulted to sentinel values
// here, at write time, so stored documents always carry all four keys.
// Per-book upsert failures are logged and counted; the batch continues.
func (p *Pipeline) IngestBooks(ctx context.Context, rows []BookRow) error {
	if len(rows) == 0 {
		return nil
	}

	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Content
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.failed.Add(int64(len(rows)))
		return fmt.Errorf("embedding batch: %w", err)
	}
	if len(vectors) != len(rows) {
		p.failed.Add(int64(len(rows)))
		return fmt.Errorf("embedding result mismatch: expected %d, received %d", len(rows), len(vectors))
	}

	for i, row := range rows {
		doc := &core.Document{
			Id:     core.IDFromContent(row.BookNumber, row.Title),
			Vector: vectors[i],
			Text:   row.Content,
			Metadata: map[string]string{
				core.MetaBookNumber: defaultMeta(row.BookNumber, core.UnknownBookNumber),
				core.MetaTitle:      defaultMeta(row.Title, core.UnknownTitle),
				core.MetaAuthor:     defaultMeta(row.Author, core.UnknownAuthor),
				core.MetaLanguage:   defaultMeta(row.Language, core.UnknownLanguage),
			},
		}

		if err := core.ValidateDocument(doc); err != nil {
			p.logger.Warn("skipping invalid document", "book", row.BookNumber, "err", err)
			p.failed.Add(1)
			continue
		}

		if err := p.repository.Upsert(ctx, doc); err != nil {
			p.logger.Error("error upserting document", "id", doc.Id, "err", err)
			p.failed.Add(1)
			continue
		}
		p.ingested.Add(1)
	}

	return nil
}

// Wait blocks until all submitted batches have been processed.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Ingested returns the number of documents successfully stored so far.
func (p *Pipeline) Ingested() int64 {
	return p.ingested.Load()
}

// Failed returns the number of rows that could not be stored.
func (p *Pipeline) Failed() int64 {
	return p.failed.Load()
}

// Release shuts down the worker pool. Call after Wait.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func defaultMeta(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
