package search

import (
	"strings"

	"github.com/Nix-ml-journey/vector-store-project/core"
)

// Sentinel strings substituted by the Display helpers for absent fields.
// These belong to the presentation boundary; the Result fields themselves
// stay empty when metadata is absent, so "field absent" and "field is
// literally the word Unknown" remain distinguishable.
const (
	UnknownTitle      = core.UnknownTitle
	UnknownAuthor     = core.UnknownAuthor
	UnknownLanguage   = core.UnknownLanguage
	UnknownBookNumber = core.UnknownBookNumber
)

// Result is a normalized search hit.
type Result struct {
	ID         string
	Title      string
	Author     string
	Language   string
	BookNumber string

	// Score is the raw distance from the similarity index, unmodified:
	// an opaque, metric-dependent scalar where lower means more similar.
	// Nil when the query was a pure metadata filter with no text component.
	Score *float32

	// Preview carries the full cleaned text.
	Preview string
}

// Stats describes a collection.
type Stats struct {
	TotalBooks     int
	CollectionName string
	DatabasePath   string
}

// newResult normalizes a raw hit into a Result. Absent metadata fields
// stay empty; the distance passes through untouched.
func newResult(hit *core.RawHit) Result {
	doc := hit.Document
	return Result{
		ID:         doc.Id,
		Title:      doc.Meta(core.MetaTitle),
		Author:     doc.Meta(core.MetaAuthor),
		Language:   doc.Meta(core.MetaLanguage),
		BookNumber: doc.Meta(core.MetaBookNumber),
		Score:      hit.Distance,
		Preview:    strings.TrimSpace(doc.Text),
	}
}

func normalizeHits(hits []*core.RawHit) []Result {
	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		if hit == nil || hit.Document == nil {
			continue
		}
		results = append(results, newResult(hit))
	}
	return results
}

// DisplayTitle returns the title, or a sentinel when absent.
func (r Result) DisplayTitle() string {
	if r.Title == "" {
		return UnknownTitle
	}
	return r.Title
}

// DisplayAuthor returns the author, or a sentinel when absent.
func (r Result) DisplayAuthor() string {
	if r.Author == "" {
		return UnknownAuthor
	}
	return r.Author
}

// DisplayLanguage returns the language, or a sentinel when absent.
func (r Result) DisplayLanguage() string {
	if r.Language == "" {
		return UnknownLanguage
	}
	return r.Language
}

// DisplayBookNumber returns the book number, or a sentinel when absent.
func (r Result) DisplayBookNumber() string {
	if r.BookNumber == "" {
		return UnknownBookNumber
	}
	return r.BookNumber
}
