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


// Package mock provides a deterministic test double for ai.Embedder.
//
// The mock derives vectors from an FNV hash of the input text, so the
// same text always yields the same vector without any network calls.
// Function fields allow tests to inject failures or fixed vectors.
package mock
