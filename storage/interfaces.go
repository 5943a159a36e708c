package storage

import (
	"context"

	"github.com/Nix-ml-journey/vector-store-project/core"
)

// BookRepository provides persistence and low-level querying for book
// documents. It hides whether a lookup is similarity-based, filter-based,
// or both. Implementations must be thread-safe; mutations on the same id
// are serialized (last-writer-wins by acquisition order), mutations on
// disjoint ids and all reads are independent.
type BookRepository interface {
	// Upsert inserts or overwrites a document atomically, keyed by its id.
	// All mutations are durable before Upsert returns.
	// Returns ErrDimensionMismatch if the vector length disagrees with the
	// collection's established dimension; the write is rejected and the
	// collection is left untouched.
	Upsert(ctx context.Context, doc *core.Document) error

	// QueryByVector finds the documents nearest to the given vector.
	// Returns up to limit hits ordered by ascending distance.
	// An empty collection yields an empty slice, not an error.
	// Returns ErrDimensionMismatch if the vector length disagrees with
	// the collection's established dimension.
	QueryByVector(ctx context.Context, vector []float32, limit int) ([]*core.RawHit, error)

	// QueryByMetadata finds documents whose metadata exactly matches every
	// predicate in filter (conjunction). Hits carry a nil Distance.
	// An unmatched filter yields an empty slice, not an error.
	QueryByMetadata(ctx context.Context, filter map[string]string, limit int) ([]*core.RawHit, error)

	// Get retrieves a single document by id.
	// Returns ErrNotFound if the document doesn't exist.
	Get(ctx context.Context, id string) (*core.Document, error)

	// Delete removes a document and its index entries by id.
	// Returns ErrNotFound if the document doesn't exist.
	Delete(ctx context.Context, id string) error

	// Update partially updates a document: a nil text leaves the text
	// unchanged, a nil metadata map leaves the metadata unchanged.
	// The vector is never touched; re-embedding requires a new Upsert.
	// Returns ErrNotFound if the document doesn't exist.
	Update(ctx context.Context, id string, text *string, metadata map[string]string) error

	// Scan walks every stored document in ascending id order, calling fn
	// once per document. Iteration stops on the first error from fn and
	// that error is returned.
	Scan(ctx context.Context, fn func(doc *core.Document) error) error

	// Count returns the total number of stored documents.
	Count(ctx context.Context) (int, error)

	// Dimension returns the collection's established vector dimension,
	// or 0 if no vectored document has been written yet.
	Dimension(ctx context.Context) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}
