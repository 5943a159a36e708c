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


// Package ingestion loads, cleans, and embeds the book corpus.
//
// The corpus arrives as two CSV files: a catalog (book number, title,
// author, language) and a stories file (book number, full text). The
// Loader streams the stories file row by row so large corpora don't need
// to fit in memory, strips Project Gutenberg boilerplate, and normalizes
// whitespace. The Pipeline joins both files on the book number, embeds
// the texts in batches on a worker pool, and upserts the documents.
package ingestion
