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


// Package indexer runs the build phase: profiles are read from the store,
// rendered as documents, chunked, embedded in parallel batches and assembled
// into a vector index that is saved for later runs.
//
// The usual entry point is Builder.LoadOrBuild, which reuses a persisted
// index when it is present, intact and built with the configured embedding
// model and chunking, and rebuilds it from the store otherwise.
//
// Embedding batches run on an ants worker pool. Each batch is retried with
// exponential backoff before the whole build is abandoned. Progress is
// written to an io.Writer, typically os.Stderr.
package indexer
