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

import (
	"fmt"
	"strings"
)

// ValidateProfile validates a ProfileRecord.
//
// Validation rules:
//   - At least one of FirstName, LastName must be non-blank
//
// NOT validated:
//   - Attribute fields (any may be empty; empty attributes make criteria inapplicable)
//   - YearsOfExperience format (non-numeric values simply never satisfy a minimum)
func ValidateProfile(record *ProfileRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidProfile)
	}
	if strings.TrimSpace(record.FirstName) == "" && strings.TrimSpace(record.LastName) == "" {
		return fmt.Errorf("%w: %w (id %d)", ErrInvalidProfile, ErrMissingName, record.ID)
	}
	return nil
}

// ValidateEntry validates an IndexEntry against the expected dimension.
// A dimension of 0 accepts any non-empty vector.
func ValidateEntry(entry *IndexEntry, dimension int) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}
	if entry.Chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyContent)
	}
	if len(entry.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyVector)
	}
	if dimension > 0 && len(entry.Vector) != dimension {
		return fmt.Errorf("%w: %w: got %d, want %d", ErrInvalidEntry, ErrDimensionMismatch, len(entry.Vector), dimension)
	}
	return nil
}
