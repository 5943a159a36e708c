package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/Nix-ml-journey/vector-store-project/ai"
	"github.com/Nix-ml-journey/vector-store-project/core"
	"github.com/Nix-ml-journey/vector-store-project/storage"
)

// BatchProcessor re-embeds one batch of books and writes the new
// vectors back.
type BatchProcessor struct {
	repo       storage.BookRepository
	embedder   ai.Embedder
	maxRetries int
	retryDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(repo storage.BookRepository, embedder ai.Embedder, maxRetries int, retryDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:       repo,
		embedder:   embedder,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Process embeds the texts of all books in the batch and upserts each
// book with its new vector. The embedding call is retried with backoff;
// a batch that still fails after all retries fails the whole run so the
// collection is never left half-migrated silently.
func (b *BatchProcessor) Process(ctx context.Context, docs []*core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = b.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, b.maxRetries, b.retryDelay)
	if err != nil {
		return fmt.Errorf("failed to embed batch of %d books: %w", len(docs), err)
	}

	if len(vectors) != len(docs) {
		return fmt.Errorf("%w: got %d for %d texts", ErrEmbeddingCountMismatch, len(vectors), len(docs))
	}

	for i, doc := range docs {
		doc.Vector = vectors[i]
		if err := b.repo.Upsert(ctx, doc); err != nil {
			return fmt.Errorf("failed to write new vector for %s: %w", doc.Id, err)
		}
	}

	return nil
}
