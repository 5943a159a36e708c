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


// Package search implements the query layer of the book store.
//
// The Engine type turns free-text queries and structured metadata
// filters into repository calls:
//
//   - Text search embeds the query and ranks books by vector distance
//   - Author and language search use exact-match metadata filters
//   - Advanced search applies substring post-filters to a text search
//
// Hits from either path are normalized into one Result schema. Read
// operations swallow internal failures into empty results; see the
// Engine documentation.
package search
