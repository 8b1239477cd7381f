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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/expertfind/core"
	"github.com/poiesic/expertfind/index"
	"github.com/poiesic/expertfind/storage"
)

// IndexRepository implements storage.IndexRepository for BadgerDB.
type IndexRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// maxPrealloc bounds the entry slice capacity taken from an untrusted manifest.
const maxPrealloc = 1 << 16

// NewIndexRepository opens (creating if needed) an index directory at path.
func NewIndexRepository(path string) (storage.IndexRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening index at %s: %w", path, err)
	}
	return newIndexRepository(backend), nil
}

// NewMemoryIndexRepository creates an in-memory index repository for testing.
func NewMemoryIndexRepository() (storage.IndexRepository, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return newIndexRepository(backend), nil
}

func newIndexRepository(backend *Backend) *IndexRepository {
	return &IndexRepository{
		backend: backend,
		logger:  backend.logger.With("repository", "index"),
	}
}

// Close closes the underlying backend.
func (r *IndexRepository) Close() error {
	if r.backend.IsClosed() {
		return nil
	}
	return r.backend.Close()
}

// Save replaces the stored index with ix.
// Entries are written first and the manifest last, so an interrupted save
// leaves no manifest and loads as not found.
func (r *IndexRepository) Save(ctx context.Context, ix *index.Index, manifest storage.Manifest) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if ix == nil || ix.Len() == 0 {
		return core.ErrEmptyInput
	}

	manifest.Version = storage.FormatVersion
	manifest.Metric = ix.Metric()
	manifest.Dimension = ix.Dimension()
	manifest.Count = ix.Len()

	if err := r.backend.DropPrefix([]byte(indexPrefix)); err != nil {
		return fmt.Errorf("dropping previous index: %w", err)
	}

	wb := r.backend.NewWriteBatch()
	defer wb.Cancel()

	for i := 0; i < ix.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := ix.Entry(i)
		if err := wb.Set(makeEntryKey(i), storage.MarshalEntry(&entry)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flushing entries: %w", err)
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(indexManifestKey), storage.MarshalManifest(&manifest)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	r.logger.Info("index saved", "entries", manifest.Count, "dimension", manifest.Dimension, "metric", manifest.Metric)
	return nil
}

// Manifest returns the stored manifest.
func (r *IndexRepository) Manifest(ctx context.Context) (storage.Manifest, error) {
	var manifest storage.Manifest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		m, err := readManifest(tx)
		if err != nil {
			return err
		}
		manifest = *m
		return nil
	}, false)
	return manifest, err
}

// Load restores the stored index and validates it against its manifest.
func (r *IndexRepository) Load(ctx context.Context) (*index.Index, storage.Manifest, error) {
	if r.backend.IsClosed() {
		return nil, storage.Manifest{}, storage.ErrStorageClosed
	}

	var (
		manifest storage.Manifest
		entries  []core.IndexEntry
	)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		m, err := readManifest(tx)
		if err != nil {
			return err
		}
		manifest = *m

		if manifest.Count <= 0 {
			return fmt.Errorf("%w: manifest lists %d entries", core.ErrCorruptIndex, manifest.Count)
		}
		entries = make([]core.IndexEntry, 0, min(manifest.Count, maxPrealloc))

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()

			pos, err := parseEntryKey(item.Key())
			if err != nil {
				return fmt.Errorf("%w: %w", core.ErrCorruptIndex, err)
			}
			if pos != len(entries) {
				return fmt.Errorf("%w: expected entry %d, found %d", core.ErrCorruptIndex, len(entries), pos)
			}

			var entry *core.IndexEntry
			err = item.Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("%w: entry %d: %w", core.ErrCorruptIndex, pos, err)
			}
			entries = append(entries, *entry)
		}
		return nil
	}, false)
	if err != nil {
		return nil, storage.Manifest{}, err
	}

	if len(entries) != manifest.Count {
		return nil, storage.Manifest{}, fmt.Errorf("%w: manifest lists %d entries, found %d",
			core.ErrCorruptIndex, manifest.Count, len(entries))
	}

	ix, err := index.FromEntries(entries, manifest.Metric)
	if err != nil {
		return nil, storage.Manifest{}, fmt.Errorf("%w: %w", core.ErrCorruptIndex, err)
	}
	if ix.Dimension() != manifest.Dimension {
		return nil, storage.Manifest{}, fmt.Errorf("%w: manifest dimension %d, entries have %d",
			core.ErrCorruptIndex, manifest.Dimension, ix.Dimension())
	}

	r.logger.Debug("index loaded", "entries", ix.Len(), "model", manifest.EmbeddingModel)
	return ix, manifest, nil
}

func readManifest(tx *badger.Txn) (*storage.Manifest, error) {
	item, err := tx.Get([]byte(indexManifestKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, core.ErrIndexNotFound
	}
	if err != nil {
		return nil, err
	}

	var manifest *storage.Manifest
	err = item.Value(func(val []byte) error {
		var err error
		manifest, err = storage.UnmarshalManifest(val)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", core.ErrCorruptIndex, err)
	}
	if manifest.Version != storage.FormatVersion {
		return nil, fmt.Errorf("%w: %w: %d", core.ErrCorruptIndex, storage.ErrUnsupportedVersion, manifest.Version)
	}
	if !manifest.Metric.Valid() {
		return nil, fmt.Errorf("%w: unknown metric %q", core.ErrCorruptIndex, manifest.Metric)
	}
	return manifest, nil
}
