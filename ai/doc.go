// Copyright 2025 Poiesic Systems
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


// Package ai provides abstractions for the model services used by expertfind.
//
// Two services are consumed as black boxes:
//
//   - Embedder: maps text to a fixed-dimension vector
//   - CriteriaExtractor: maps a free-text query to core.SearchCriteria via a language model
//
// AIProvider aggregates both for initialization and lifecycle management.
//
// # Fail-open extraction
//
// Extraction failures never block a query. ExtractOrEmpty wraps any
// CriteriaExtractor and returns an Extraction value: either criteria parsed
// from the model, or empty criteria together with the logged cause.
//
//	x := ai.ExtractOrEmpty(ctx, provider.CriteriaExtractor(), query, 20*time.Second, logger)
//	if !x.Parsed() {
//	    // x.Criteria is empty, x.Cause says why
//	}
//
// # Implementation Packages
//
//   - ai/openai: langchaingo clients for OpenAI-compatible APIs (Ollama, Groq, OpenAI)
//   - ai/mock: deterministic test doubles
//
// Public constructors in ai/openai return interface types. Mock constructors
// return concrete types so tests can inject behavior and inspect call counts.
package ai
