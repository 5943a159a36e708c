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


// Package storage provides the storage abstraction layer for the book store.
//
// This package defines the repository interface that decouples storage
// implementation from search logic. It allows different storage backends
// (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.BookRepository interface to
// enforce abstraction and enable multiple backend implementations:
//
//	repo, err := badger.NewBookRepository(backend)  // returns storage.BookRepository
//
// Internal package constructors may return concrete types since they're
// only used within the implementation package.
//
// # Consistency
//
// A repository keeps the similarity index and the metadata index in sync:
// every document reachable through a vector query is reachable through a
// metadata query with the same id, and vice versa. Index maintenance
// happens inside the same transaction as the primary record write.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines. Writes are serialized;
// reads run concurrently.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support. Pass context.Background() for operations without
// specific timeout requirements.
package storage
