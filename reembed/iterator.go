package reembed

import (
	"context"

	"github.com/Nix-ml-journey/vector-store-project/core"
	"github.com/Nix-ml-journey/vector-store-project/storage"
)

// DefaultBatchSize is the default number of books processed per batch.
const DefaultBatchSize = 100

// BookIterator walks all books in the repository in id order, handing
// them out in batches.
type BookIterator struct {
	repo      storage.BookRepository
	batchSize int
}

// NewBookIterator creates a new book iterator.
// batchSize: number of books per batch (defaulted when <= 0)
func NewBookIterator(repo storage.BookRepository, batchSize int) *BookIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &BookIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach streams all books in batches, calling fn for each batch.
// The walk stops on the first error from fn. The final batch may be
// smaller than the configured batch size.
func (it *BookIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	batch := make([]*core.Document, 0, it.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := fn(batch)
		batch = batch[:0]
		return err
	}

	err := it.repo.Scan(ctx, func(doc *core.Document) error {
		batch = append(batch, doc)
		if len(batch) >= it.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}

	return flush()
}
