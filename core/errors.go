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


package core

import "errors"

// Failure taxonomy shared across the build and query paths.
var (
	// ErrStoreUnavailable indicates the profile store could not be reached.
	// Fatal to an index build.
	ErrStoreUnavailable = errors.New("profile store unavailable")

	// ErrStoreQuery indicates the profile query returned rows of an unexpected shape.
	// The build proceeds with nothing to index.
	ErrStoreQuery = errors.New("profile store query failed")

	// ErrCorruptIndex indicates persisted index data could not be restored.
	// Callers rebuild from the store.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrIndexNotFound indicates no persisted index exists at the location.
	ErrIndexNotFound = errors.New("index not found")

	// ErrEmptyInput indicates an index build was attempted with zero chunks.
	ErrEmptyInput = errors.New("empty input")

	// ErrExtractionFailure indicates criteria extraction failed.
	// Recovered by falling back to empty criteria.
	ErrExtractionFailure = errors.New("criteria extraction failed")

	// ErrEmbeddingUnavailable indicates the embedding provider failed for a query.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
)

// Validation errors
var (
	// ErrInvalidProfile indicates a ProfileRecord failed validation.
	ErrInvalidProfile = errors.New("invalid profile record")

	// ErrInvalidEntry indicates an IndexEntry failed validation.
	ErrInvalidEntry = errors.New("invalid index entry")

	// ErrEmptyContent indicates chunk text is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyVector indicates an entry has no embedding.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrDimensionMismatch indicates vectors of different lengths were mixed.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrMissingName indicates a profile has neither first nor last name.
	ErrMissingName = errors.New("profile has no name")
)
