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


// Package storage provides the persistence abstraction for the vector index.
//
// The index is stored as one manifest record plus one record per entry.
// Records are encoded with mus-go in a compact binary form; see ManifestMUS
// and EntryMUS. Entries are keyed by their build position so that a loaded
// index returns entries, and therefore ties in search, in the same order as
// the index that was saved.
//
// # Constructor Return Type Pattern
//
// Public constructors return the IndexRepository interface:
//
//	repo, err := badger.NewIndexRepository(path)  // returns storage.IndexRepository
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Lifecycle
//
// The index is replaced wholesale. Save drops every previous record before
// writing the new ones, and Load either returns a complete, validated index or
// an error wrapping core.ErrIndexNotFound or core.ErrCorruptIndex. Callers
// treat both as a signal to rebuild from the profile store.
//
// # Thread Safety
//
// Repository implementations must be safe for concurrent use.
package storage
