package core

import (
	"errors"
	"testing"
)

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name    string
		record  *ProfileRecord
		wantErr error
	}{
		{
			name:    "valid record",
			record:  &ProfileRecord{ID: 1, FirstName: "Grace", LastName: "Hopper", Expertise: "Compilers"},
			wantErr: nil,
		},
		{
			name:    "valid record with only last name",
			record:  &ProfileRecord{ID: 2, LastName: "Hopper"},
			wantErr: nil,
		},
		{
			name:    "valid record with empty attributes",
			record:  &ProfileRecord{ID: 3, FirstName: "Grace"},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "blank names",
			record:  &ProfileRecord{ID: 4, FirstName: "  ", LastName: ""},
			wantErr: ErrMissingName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfile(tt.record)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateProfile() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateProfile() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateProfile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEntry(t *testing.T) {
	chunk := DocumentChunk{Text: "Expertise: Go"}

	tests := []struct {
		name      string
		entry     *IndexEntry
		dimension int
		wantErr   error
	}{
		{
			name:      "valid entry",
			entry:     &IndexEntry{Chunk: chunk, Vector: []float32{1, 2, 3}},
			dimension: 3,
		},
		{
			name:      "any dimension accepted when unset",
			entry:     &IndexEntry{Chunk: chunk, Vector: []float32{1}},
			dimension: 0,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "empty text",
			entry:   &IndexEntry{Vector: []float32{1}},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "empty vector",
			entry:   &IndexEntry{Chunk: chunk},
			wantErr: ErrEmptyVector,
		},
		{
			name:      "wrong dimension",
			entry:     &IndexEntry{Chunk: chunk, Vector: []float32{1, 2}},
			dimension: 3,
			wantErr:   ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry, tt.dimension)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntry() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntry() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("ValidateEntry() error = %v, want wrapped %v", err, ErrInvalidEntry)
			}
		})
	}
}
