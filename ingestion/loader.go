package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// CatalogEntry is one row of the book catalog CSV.
type CatalogEntry struct {
	BookNumber string
	Title      string
	Author     string
	Language   string
}

// BookRow is a fully joined, cleaned corpus record ready for embedding.
type BookRow struct {
	BookNumber string
	Title      string
	Author     string
	Language   string
	Content    string
}

// Loader reads and cleans the corpus CSV files.
type Loader struct {
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets a custom logger.
// Default is slog.Default().
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// NewLoader creates a corpus loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadCatalog reads the catalog CSV (columns bookno, Title, Author,
// Language; header names are matched case-insensitively). Fields are
// trimmed, rows missing a title, author, or language are dropped, and
// duplicates by (bookno, Title) keep the first occurrence.
func (l *Loader) LoadCatalog(path string) ([]CatalogEntry, error) {
	l.logger.Info("loading catalog", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading catalog header: %w", err)
	}
	cols, err := catalogColumns(header)
	if err != nil {
		return nil, err
	}

	var entries []CatalogEntry
	seen := make(map[string]bool)
	dropped := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading catalog row: %w", err)
		}

		entry := CatalogEntry{
			BookNumber: strings.TrimSpace(field(row, cols.bookno)),
			Title:      strings.TrimSpace(field(row, cols.title)),
			Author:     strings.TrimSpace(field(row, cols.author)),
			Language:   strings.TrimSpace(field(row, cols.language)),
		}
		if entry.Title == "" || entry.Author == "" || entry.Language == "" {
			dropped++
			continue
		}

		key := entry.BookNumber + "\x00" + entry.Title
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		entries = append(entries, entry)
	}

	l.logger.Info("loaded catalog", "rows", len(entries), "dropped", dropped)
	return entries, nil
}

// StreamStories reads the stories CSV (columns bookno, content) one row
// at a time, cleaning each content field, and hands every non-empty row
// to fn. The file is streamed so arbitrarily large corpora don't need to
// fit in memory. fn returning an error stops the stream.
func (l *Loader) StreamStories(path string, fn func(bookNumber, content string) error) error {
	l.logger.Info("streaming stories", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening stories: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading stories header: %w", err)
	}
	booknoIdx, contentIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "bookno":
			booknoIdx = i
		case "content":
			contentIdx = i
		}
	}
	if booknoIdx < 0 || contentIdx < 0 {
		return fmt.Errorf("stories file %s: missing bookno/content columns", path)
	}

	rows := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading stories row: %w", err)
		}

		bookNumber := strings.TrimSpace(field(row, booknoIdx))
		content := CleanContent(field(row, contentIdx))
		if bookNumber == "" || content == "" {
			continue
		}

		if err := fn(bookNumber, content); err != nil {
			return err
		}

		rows++
		if rows%1000 == 0 {
			l.logger.Info("streaming stories", "rows", rows)
		}
	}

	l.logger.Info("streamed stories", "rows", rows)
	return nil
}

type catalogCols struct {
	bookno, title, author, language int
}

func catalogColumns(header []string) (catalogCols, error) {
	cols := catalogCols{bookno: -1, title: -1, author: -1, language: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "bookno":
			cols.bookno = i
		case "title":
			cols.title = i
		case "author":
			cols.author = i
		case "language":
			cols.language = i
		}
	}
	if cols.bookno < 0 || cols.title < 0 || cols.author < 0 || cols.language < 0 {
		return cols, fmt.Errorf("catalog header missing required columns (bookno, Title, Author, Language)")
	}
	return cols, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
