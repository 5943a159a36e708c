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


// Package ai defines the embedding abstraction used for semantic search.
//
// The Embedder interface turns text into fixed-length vectors. The
// production implementation in ai/openai talks to any OpenAI-compatible
// embedding API; ai/mock provides a deterministic in-process embedder
// for tests.
//
// The embedding call is the dominant latency cost of a search. Callers
// that ingest in bulk should use EmbedTexts and run batches on a worker
// pool rather than embedding one text at a time.
package ai
