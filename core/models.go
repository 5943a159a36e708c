package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Metadata field keys. Every stored document carries all four;
// ingestion substitutes sentinel values for missing fields at write time.
const (
	MetaBookNumber = "book_number"
	MetaTitle      = "title"
	MetaAuthor     = "author"
	MetaLanguage   = "language"
)

// MetadataKeys lists the required metadata fields of a stored document.
var MetadataKeys = []string{MetaBookNumber, MetaTitle, MetaAuthor, MetaLanguage}

// Sentinel values substituted for missing metadata fields. Ingestion
// applies them at write time; the presentation layer applies them when
// rendering documents that bypassed ingestion. They are never applied
// on the read path itself.
const (
	UnknownTitle      = "Unknown Title"
	UnknownAuthor     = "Unknown Author"
	UnknownLanguage   = "Unknown Language"
	UnknownBookNumber = "Unknown ID"
)

// IDFromContent generates a deterministic document ID from the book number
// and title using BLAKE2b hashing. Re-ingesting the same book produces the
// same ID, so ingestion is an overwrite rather than a duplicate insert.
func IDFromContent(bookNumber, title string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(bookNumber))
	h.Write([]byte{0})
	h.Write([]byte(title))
	sum := h.Sum(nil)
	return fmt.Sprintf("doc_%016x", binary.LittleEndian.Uint64(sum))
}

// Document is the atomic indexed unit: one book with its embedding vector
// and exact-match metadata.
type Document struct {
	Id         string
	Vector     []float32         // Embedding vector for semantic search
	Text       string            // Full cleaned book content
	Metadata   map[string]string // book_number, title, author, language
	InsertedAt time.Time         // When the document was first stored
	UpdatedAt  time.Time         // When the document was last overwritten
}

// Meta returns the metadata value for key, or "" when absent.
func (d *Document) Meta(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

// RawHit is a raw store hit: a document plus its distance to the query
// vector. Distance is nil for pure metadata-filter queries. Distance units
// are metric-dependent; lower always means more similar.
type RawHit struct {
	Document *Document
	Distance *float32
}
