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


// Package search answers free-text expert queries.
//
// A query runs two independent lines of work. The criteria extractor turns
// the text into structured filters, failing open to empty criteria. In
// parallel the text is embedded and the vector index returns the k nearest
// chunks. Each hit's text is then embedded again so its cosine similarity to
// the query can be reported independently of the index's own metric.
//
// The hits become RetrievedResults, are classified by the match package into
// exact and recommended buckets, and each bucket is summarized by the stats
// package.
//
// The similarity_score reported on results is either the constant baseline
// (ModeBaseline, the default) or derived from the index distance
// (ModeDistance).
package search
