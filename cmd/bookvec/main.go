// Copyright 2025 Nix ML Journey
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	vectorstore "github.com/Nix-ml-journey/vector-store-project"
	"github.com/Nix-ml-journey/vector-store-project/ai"
	"github.com/Nix-ml-journey/vector-store-project/ingestion"
	"github.com/Nix-ml-journey/vector-store-project/reembed"
	"github.com/Nix-ml-journey/vector-store-project/search"
)

const previewLength = 160

func main() {
	storeFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the store directory",
			Value:   "./books_db",
		},
		&cli.StringFlag{
			Name:  "collection",
			Usage: "Collection name",
			Value: vectorstore.DefaultCollectionName,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "all-minilm",
		},
	}
	limitFlag := &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"k"},
		Usage:   "Maximum number of results",
		Value:   5,
	}

	app := &cli.App{
		Name:  "bookvec",
		Usage: "Semantic search over a book corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a book corpus from catalog and stories CSV files",
				ArgsUsage: "CATALOG_CSV STORIES_CSV",
				Action:    ingestCommand,
				Flags: append(storeFlags,
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of books to embed per batch",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent embedding workers",
						Value: 4,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search books by semantic similarity to a query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags:     append(storeFlags, limitFlag),
			},
			{
				Name:      "author",
				Usage:     "List books by exact author name",
				ArgsUsage: "AUTHOR",
				Action:    authorCommand,
				Flags:     append(storeFlags, limitFlag),
			},
			{
				Name:      "language",
				Usage:     "List books by exact language",
				ArgsUsage: "LANGUAGE",
				Action:    languageCommand,
				Flags:     append(storeFlags, limitFlag),
			},
			{
				Name:      "advanced",
				Usage:     "Semantic search narrowed by author and/or language substrings",
				ArgsUsage: "QUERY...",
				Action:    advancedCommand,
				Flags: append(storeFlags,
					limitFlag,
					&cli.StringFlag{
						Name:  "author",
						Usage: "Author substring filter (case-insensitive)",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Language substring filter (case-insensitive)",
					},
				),
			},
			{
				Name:      "get",
				Usage:     "Show a single book by id",
				ArgsUsage: "ID",
				Action:    getCommand,
				Flags:     storeFlags,
			},
			{
				Name:   "stats",
				Usage:  "Show collection statistics",
				Action: statsCommand,
				Flags:  storeFlags,
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate all vectors with the configured embedding model",
				Action: reembedCommand,
				Flags: append(storeFlags,
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of books to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N books",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openStore opens the store described by the shared flags.
func openStore(c *cli.Context) (*vectorstore.Store, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedder configuration: %w", err)
	}

	store, err := vectorstore.Open(c.String("db"),
		vectorstore.WithCollectionName(c.String("collection")),
		vectorstore.WithEmbedderConfig(aiConfig),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected CATALOG_CSV and STORIES_CSV arguments")
	}
	catalogPath := c.Args().Get(0)
	storiesPath := c.Args().Get(1)

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline, err := store.NewIngestionPipeline(
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithPoolSize(c.Int("workers")),
	)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	start := time.Now()
	submitted, err := pipeline.Run(context.Background(), catalogPath, storiesPath)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	pipeline.Wait()

	elapsed := time.Since(start).Round(time.Millisecond)
	fmt.Printf("Submitted %d books: %d ingested, %d failed in %v\n",
		submitted, pipeline.Ingested(), pipeline.Failed(), elapsed)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("expected a search query")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := store.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	results := engine.SearchByText(context.Background(), query, c.Int("limit"))
	printResults(results)
	return nil
}

func authorCommand(c *cli.Context) error {
	author := strings.Join(c.Args().Slice(), " ")
	if author == "" {
		return fmt.Errorf("expected an author name")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := store.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	results := engine.SearchByAuthor(context.Background(), author, c.Int("limit"))
	printResults(results)
	return nil
}

func languageCommand(c *cli.Context) error {
	language := strings.Join(c.Args().Slice(), " ")
	if language == "" {
		return fmt.Errorf("expected a language")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := store.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	results := engine.SearchByLanguage(context.Background(), language, c.Int("limit"))
	printResults(results)
	return nil
}

func advancedCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("expected a search query")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := store.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	results := engine.AdvancedSearch(context.Background(), query,
		c.String("author"), c.String("language"), c.Int("limit"))
	printResults(results)
	return nil
}

func getCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("expected a book id")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := store.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	result := engine.GetBookByID(context.Background(), id)
	if result == nil {
		fmt.Printf("No book found with id %s\n", id)
		return nil
	}
	printResults([]search.Result{*result})
	return nil
}

func statsCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := store.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	stats := engine.Stats(context.Background())
	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("%s %s\n", bold("Collection:"), stats.CollectionName)
	fmt.Printf("%s %s\n", bold("Path:"), stats.DatabasePath)
	fmt.Printf("%s %d\n", bold("Books:"), stats.TotalBooks)
	return nil
}

func reembedCommand(c *cli.Context) error {
	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Fprintf(os.Stderr, "Store: %s (collection %s)\n", c.String("db"), store.CollectionName())
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	reembedder := store.NewReembedder(config, os.Stderr)
	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

// printResults renders search results with the title highlighted and the
// preview clipped for terminal display.
func printResults(results []search.Result) {
	if len(results) == 0 {
		fmt.Println("No results found")
		return
	}

	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Printf("Found %d result(s)\n\n", len(results))
	for i, r := range results {
		score := ""
		if r.Score != nil {
			score = fmt.Sprintf(" [%.4f]", *r.Score)
		}
		fmt.Printf("%d. %s by %s (%s, #%s)%s\n",
			i+1, boldCyan(r.DisplayTitle()), r.DisplayAuthor(),
			r.DisplayLanguage(), r.DisplayBookNumber(), score)
		fmt.Printf("   %s\n", dim(r.ID))

		preview := clipPreview(r.Preview, previewLength)
		if preview != "" {
			fmt.Printf("   %s\n", preview)
		}
		fmt.Println()
	}
}

// clipPreview shortens s to at most max bytes, backing up to a rune
// boundary so multi-byte characters are never split.
func clipPreview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
