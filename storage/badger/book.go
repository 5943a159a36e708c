package badger

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Nix-ml-journey/vector-store-project/core"
	"github.com/Nix-ml-journey/vector-store-project/storage"
)

// indexedFields are the metadata fields maintained in the exact-match
// field index. Filters on other fields fall back to a full scan.
var indexedFields = []string{core.MetaAuthor, core.MetaLanguage, core.MetaBookNumber}

// BookRepository implements storage.BookRepository for BadgerDB.
type BookRepository struct {
	backend *Backend

	// mu serializes mutations so that concurrent writes to the same id
	// resolve last-writer-wins by acquisition order. Reads don't take it.
	mu sync.Mutex
}

var _ storage.BookRepository = (*BookRepository)(nil)

// NewBookRepository creates a new BookRepository.
func NewBookRepository(backend *Backend) (*BookRepository, error) {
	return &BookRepository{
		backend: backend,
	}, nil
}

// Close releases resources. BookRepository has no resources to release.
func (r *BookRepository) Close() error {
	return nil
}

// Upsert inserts or overwrites a document atomically, keyed by its id.
func (r *BookRepository) Upsert(ctx context.Context, doc *core.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Enforce the collection-wide vector dimension before touching
		// anything, so a rejected write leaves the collection unchanged.
		if len(doc.Vector) > 0 {
			dim, err := readDimension(tx)
			if err != nil {
				return err
			}
			if dim == 0 {
				if err := writeDimension(tx, len(doc.Vector)); err != nil {
					return err
				}
			} else if dim != len(doc.Vector) {
				return storage.ErrDimensionMismatch
			}
		}

		key := makeBookRecordKey(doc.Id)

		// Read the old record to clean up stale index entries and to
		// preserve the original insertion timestamp on overwrite.
		old, err := readBookRecord(tx, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if old != nil {
			doc.InsertedAt = old.InsertedAt
		} else {
			doc.InsertedAt = now
		}
		doc.UpdatedAt = now

		value, err := storage.MarshalDocument(doc)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}

		if old != nil {
			if err := deleteFieldIndex(tx, old); err != nil {
				return err
			}
		}
		if err := updateFieldIndex(tx, doc); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// QueryByVector delegates to the backend's nearest-neighbor scan.
func (r *BookRepository) QueryByVector(ctx context.Context, vector []float32, limit int) ([]*core.RawHit, error) {
	return r.backend.FindNearest(ctx, vector, limit)
}

// QueryByMetadata finds documents matching every predicate in filter.
// When one of the filter keys is indexed, the index narrows the scan;
// remaining predicates are checked against the loaded record.
func (r *BookRepository) QueryByMetadata(ctx context.Context, filter map[string]string, limit int) ([]*core.RawHit, error) {
	if len(filter) == 0 {
		return nil, storage.ErrInvalidQuery
	}

	var indexField string
	for _, field := range indexedFields {
		if _, ok := filter[field]; ok {
			indexField = field
			break
		}
	}

	var hits []*core.RawHit
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if indexField != "" {
			return scanFieldIndex(tx, indexField, filter, limit, &hits)
		}
		return scanAllRecords(tx, filter, limit, &hits)
	}, false)
	if err != nil {
		return nil, err
	}

	return hits, nil
}

// Get retrieves a single document by id.
func (r *BookRepository) Get(ctx context.Context, id string) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readBookRecord(tx, makeBookRecordKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// Delete removes a document and its index entries by id.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeBookRecordKey(id)

		doc, err := readBookRecord(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if err := deleteFieldIndex(tx, doc); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// Update partially updates a document's text and/or metadata.
// The vector and insertion timestamp are preserved.
func (r *BookRepository) Update(ctx context.Context, id string, text *string, metadata map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeBookRecordKey(id)

		doc, err := readBookRecord(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		metadataChanged := false
		if text != nil {
			doc.Text = *text
		}
		if metadata != nil {
			if err := deleteFieldIndex(tx, doc); err != nil {
				return err
			}
			doc.Metadata = metadata
			metadataChanged = true
		}
		doc.UpdatedAt = time.Now().UTC()

		value, err := storage.MarshalDocument(doc)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}

		if metadataChanged {
			if err := updateFieldIndex(tx, doc); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
}

// Scan walks every stored document in ascending id order. Badger iterates
// keys in byte order, and record keys embed the id, so no sort is needed.
func (r *BookRepository) Scan(ctx context.Context, fn func(doc *core.Document) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var doc *core.Document
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			}); err != nil {
				return err
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Count returns the total number of stored documents.
func (r *BookRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Dimension returns the collection's established vector dimension,
// or 0 if no vectored document has been written yet.
func (r *BookRepository) Dimension(ctx context.Context) (int, error) {
	var dim int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		dim, err = readDimension(tx)
		return err
	}, false)
	if err != nil {
		return 0, err
	}
	return dim, nil
}

// readBookRecord reads and unmarshals a document, returning nil if the key
// doesn't exist.
func readBookRecord(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// readDimension reads the collection's vector dimension, 0 when unset.
func readDimension(tx *badger.Txn) (int, error) {
	item, err := tx.Get([]byte(dimensionKey))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var dim int
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return storage.ErrSerializationFailed
		}
		dim = int(binary.BigEndian.Uint64(val))
		return nil
	})
	return dim, err
}

// writeDimension establishes the collection's vector dimension.
func writeDimension(tx *badger.Txn, dim int) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(dim))
	return tx.Set([]byte(dimensionKey), buf)
}

// updateFieldIndex writes field index entries for the document's indexed
// metadata fields. Empty values are not indexed.
func updateFieldIndex(tx *badger.Txn, doc *core.Document) error {
	for _, field := range indexedFields {
		value := doc.Meta(field)
		if value == "" {
			continue
		}
		if err := tx.Set(makeFieldKey(field, value, doc.Id), []byte(doc.Id)); err != nil {
			return err
		}
	}
	return nil
}

// deleteFieldIndex removes the document's field index entries.
func deleteFieldIndex(tx *badger.Txn, doc *core.Document) error {
	for _, field := range indexedFields {
		value := doc.Meta(field)
		if value == "" {
			continue
		}
		if err := tx.Delete(makeFieldKey(field, value, doc.Id)); err != nil {
			return err
		}
	}
	return nil
}

// matchesFilter reports whether the document satisfies every predicate.
func matchesFilter(doc *core.Document, filter map[string]string) bool {
	for key, want := range filter {
		if doc.Meta(key) != want {
			return false
		}
	}
	return true
}

// scanFieldIndex walks the exact-match index for one filter field and
// checks the remaining predicates against each loaded record.
func scanFieldIndex(tx *badger.Txn, field string, filter map[string]string, limit int, hits *[]*core.RawHit) error {
	prefix := makePartialFieldKey(field, filter[field])

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid() && len(*hits) < limit; iter.Next() {
		var id string
		if err := iter.Item().Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		doc, err := readBookRecord(tx, makeBookRecordKey(id))
		if err != nil {
			return err
		}
		if doc == nil || !matchesFilter(doc, filter) {
			continue
		}

		*hits = append(*hits, &core.RawHit{Document: doc})
	}
	return nil
}

// scanAllRecords is the fallback for filters with no indexed field.
func scanAllRecords(tx *badger.Txn, filter map[string]string, limit int, hits *[]*core.RawHit) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(bookRecordPrefix)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid() && len(*hits) < limit; iter.Next() {
		var doc *core.Document
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			doc, err = storage.UnmarshalDocument(val)
			return err
		}); err != nil {
			return err
		}
		if doc == nil || !matchesFilter(doc, filter) {
			continue
		}

		*hits = append(*hits, &core.RawHit{Document: doc})
	}
	return nil
}
