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


// Package reembed regenerates the vectors of an existing collection.
//
// Switching embedding models invalidates every stored vector, since
// vectors from different models are not comparable. The Reembedder walks
// all books in id order, re-embeds their text in batches with the new
// embedder, and writes the vectors back. Embedding calls are retried
// with exponential backoff and progress is reported as the walk runs.
package reembed
