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


package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/expertfind/core"
	"github.com/poiesic/expertfind/index"
)

var (
	// ManifestMUS encodes a Manifest.
	ManifestMUS = manifestMUS{}

	// EntryMUS encodes a core.IndexEntry including its chunk metadata.
	EntryMUS = entryMUS{}
)

// MarshalManifest serializes a Manifest to bytes.
func MarshalManifest(m *Manifest) []byte {
	buf := make([]byte, ManifestMUS.Size(*m))
	ManifestMUS.Marshal(*m, buf)
	return buf
}

// UnmarshalManifest deserializes a Manifest from bytes.
func UnmarshalManifest(data []byte) (*Manifest, error) {
	m, _, err := ManifestMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarshalEntry serializes an IndexEntry to bytes.
func MarshalEntry(entry *core.IndexEntry) []byte {
	buf := make([]byte, EntryMUS.Size(*entry))
	EntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalEntry deserializes an IndexEntry from bytes.
func UnmarshalEntry(data []byte) (*core.IndexEntry, error) {
	entry, _, err := EntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type manifestMUS struct{}

func (manifestMUS) Size(m Manifest) int {
	return varint.Int.Size(m.Version) +
		ord.String.Size(string(m.Metric)) +
		varint.Int.Size(m.Dimension) +
		varint.Int.Size(m.Count) +
		ord.String.Size(m.EmbeddingModel) +
		varint.Int.Size(m.ChunkSize) +
		varint.Int.Size(m.ChunkOverlap) +
		varint.Int64.Size(m.BuiltAt.UnixMicro()) +
		ord.String.Size(m.Splitter)
}

func (manifestMUS) Marshal(m Manifest, bs []byte) (n int) {
	n = varint.Int.Marshal(m.Version, bs)
	n += ord.String.Marshal(string(m.Metric), bs[n:])
	n += varint.Int.Marshal(m.Dimension, bs[n:])
	n += varint.Int.Marshal(m.Count, bs[n:])
	n += ord.String.Marshal(m.EmbeddingModel, bs[n:])
	n += varint.Int.Marshal(m.ChunkSize, bs[n:])
	n += varint.Int.Marshal(m.ChunkOverlap, bs[n:])
	n += varint.Int64.Marshal(m.BuiltAt.UnixMicro(), bs[n:])
	n += ord.String.Marshal(m.Splitter, bs[n:])
	return n
}

func (manifestMUS) Unmarshal(bs []byte) (m Manifest, n int, err error) {
	r := reader{bs: bs}
	m.Version = r.int()
	m.Metric = index.Metric(r.string())
	m.Dimension = r.int()
	m.Count = r.int()
	m.EmbeddingModel = r.string()
	m.ChunkSize = r.int()
	m.ChunkOverlap = r.int()
	m.BuiltAt = time.UnixMicro(r.int64()).UTC()
	m.Splitter = r.string()
	return m, r.n, r.err
}

type entryMUS struct{}

func (entryMUS) Size(e core.IndexEntry) int {
	size := varint.Uint64.Size(uint64(e.Chunk.Id)) +
		varint.Int.Size(e.Chunk.Ordinal) +
		ord.String.Size(e.Chunk.Text) +
		varint.Int.Size(len(e.Chunk.Metadata))
	for k, v := range e.Chunk.Metadata {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	size += varint.Int.Size(len(e.Vector))
	for _, f := range e.Vector {
		size += raw.Float32.Size(f)
	}
	return size
}

func (entryMUS) Marshal(e core.IndexEntry, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(e.Chunk.Id), bs)
	n += varint.Int.Marshal(e.Chunk.Ordinal, bs[n:])
	n += ord.String.Marshal(e.Chunk.Text, bs[n:])

	// sorted so equal entries encode to equal bytes
	keys := make([]string, 0, len(e.Chunk.Metadata))
	for k := range e.Chunk.Metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	n += varint.Int.Marshal(len(keys), bs[n:])
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(e.Chunk.Metadata[k], bs[n:])
	}

	n += varint.Int.Marshal(len(e.Vector), bs[n:])
	for _, f := range e.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (entryMUS) Unmarshal(bs []byte) (e core.IndexEntry, n int, err error) {
	r := reader{bs: bs}
	e.Chunk.Id = core.ID(r.uint64())
	e.Chunk.Ordinal = r.int()
	e.Chunk.Text = r.string()

	count := r.length(2)
	if count > 0 {
		e.Chunk.Metadata = make(map[string]string, count)
	}
	for i := 0; i < count && r.err == nil; i++ {
		k := r.string()
		e.Chunk.Metadata[k] = r.string()
	}

	dim := r.length(4)
	if dim > 0 {
		e.Vector = make([]float32, dim)
	}
	for i := 0; i < dim && r.err == nil; i++ {
		e.Vector[i] = r.float32()
	}
	return e, r.n, r.err
}

// reader walks a buffer field by field and keeps the first error.
type reader struct {
	bs  []byte
	n   int
	err error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: offset %d: %w", ErrSerializationFailed, r.n, err)
	}
}

func (r *reader) int() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.bs[r.n:])
	r.n += n
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) int64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) uint64() uint64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(r.bs[r.n:])
	r.n += n
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) string() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) float32() float32 {
	if r.err != nil {
		return 0
	}
	v, n, err := raw.Float32.Unmarshal(r.bs[r.n:])
	r.n += n
	if err != nil {
		r.fail(err)
	}
	return v
}

// length reads a collection length and rejects values that cannot fit in
// the remaining bytes given a minimum encoded size per element.
func (r *reader) length(minElem int) int {
	l := r.int()
	if r.err != nil {
		return 0
	}
	if l < 0 || l > (len(r.bs)-r.n)/minElem {
		r.fail(fmt.Errorf("%w: length %d", ErrTruncatedData, l))
		return 0
	}
	return l
}
