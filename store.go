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


package vectorstore

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/Nix-ml-journey/vector-store-project/ai"
	"github.com/Nix-ml-journey/vector-store-project/ai/openai"
	"github.com/Nix-ml-journey/vector-store-project/ingestion"
	"github.com/Nix-ml-journey/vector-store-project/reembed"
	"github.com/Nix-ml-journey/vector-store-project/search"
	"github.com/Nix-ml-journey/vector-store-project/storage"
	"github.com/Nix-ml-journey/vector-store-project/storage/badger"
)

// DefaultCollectionName is the collection opened when none is configured.
const DefaultCollectionName = "books_story"

// Store bundles a book collection with its repository and embedder. It is
// the entry point for everything else: search engines, ingestion pipelines,
// and reembedders are created from an open Store.
type Store struct {
	backend        *badger.Backend
	repo           storage.BookRepository
	embedder       ai.Embedder
	path           string
	collectionName string
	logger         *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	collectionName string
	aiConfig       *ai.Config
	logger         *slog.Logger
}

// WithCollectionName sets the collection to open. Each collection lives in
// its own subdirectory of the store path.
func WithCollectionName(name string) StoreOption {
	return func(o *storeOptions) {
		o.collectionName = name
	}
}

// WithEmbedderConfig sets the embedding service configuration.
func WithEmbedderConfig(config *ai.Config) StoreOption {
	return func(o *storeOptions) {
		o.aiConfig = config
	}
}

// WithLogger sets the logger used by the store and its components.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// Open opens the collection under path, creating it if it doesn't exist.
// Opening the same path twice yields the same data. An inaccessible path
// returns an error wrapping storage.ErrStoreUnavailable.
func Open(path string, opts ...StoreOption) (*Store, error) {
	options := &storeOptions{
		collectionName: DefaultCollectionName,
		aiConfig:       ai.DefaultConfig(),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filepath.Join(path, options.collectionName), false)
	if err != nil {
		return nil, err
	}

	repo, err := badger.NewBookRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, err
	}

	return &Store{
		backend:        backend,
		repo:           repo,
		embedder:       embedder,
		path:           path,
		collectionName: options.collectionName,
		logger:         options.logger,
	}, nil
}

// Close closes the repository and the underlying backend.
func (s *Store) Close() error {
	if err := s.repo.Close(); err != nil {
		s.logger.Error("error closing book repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Repository returns the store's book repository.
func (s *Store) Repository() storage.BookRepository {
	return s.repo
}

// Embedder returns the store's configured embedder.
func (s *Store) Embedder() ai.Embedder {
	return s.embedder
}

// CollectionName returns the name of the open collection.
func (s *Store) CollectionName() string {
	return s.collectionName
}

// NewSearchEngine creates a search engine over this store's collection.
func (s *Store) NewSearchEngine(opts ...search.Option) (*search.Engine, error) {
	merged := append([]search.Option{
		search.WithCollectionInfo(s.collectionName, s.path),
		search.WithLogger(s.logger),
	}, opts...)
	return search.NewEngine(s.repo, s.embedder, merged...)
}

// NewIngestionPipeline creates an ingestion pipeline writing into this
// store's collection.
func (s *Store) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	merged := append([]ingestion.Option{
		ingestion.WithLogger(s.logger),
	}, opts...)
	return ingestion.NewPipeline(s.repo, s.embedder, merged...)
}

// NewReembedder creates a reembedder that regenerates every vector in this
// store's collection with the store's embedder.
func (s *Store) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(s.repo, s.embedder, config, progress)
}
