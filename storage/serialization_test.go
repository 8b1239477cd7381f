package storage

import (
	"testing"
	"time"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/expertfind/core"
	"github.com/poiesic/expertfind/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestEncoding(t *testing.T) {
	m := Manifest{
		Version:        FormatVersion,
		Metric:         index.MetricCosine,
		Dimension:      384,
		Count:          1200,
		EmbeddingModel: "all-minilm",
		ChunkSize:      1000,
		ChunkOverlap:   200,
		Splitter:       "recursive",
		BuiltAt:        time.Date(2025, 3, 4, 5, 6, 7, 8000, time.UTC),
	}

	got, err := UnmarshalManifest(MarshalManifest(&m))
	require.NoError(t, err)
	assert.Equal(t, m, *got)
}

func TestEntryEncoding(t *testing.T) {
	entry := core.IndexEntry{
		Chunk: core.DocumentChunk{
			Id:      core.IDFromContent("Expertise: Go"),
			Ordinal: 2,
			Text:    "Expertise: Go",
			Metadata: map[string]string{
				core.MetaUserID:    "7",
				core.MetaFirstName: "Ada",
				core.MetaLastName:  "",
			},
		},
		Vector: []float32{0.25, -1.5, 3.75e-7},
	}

	data := MarshalEntry(&entry)
	got, err := UnmarshalEntry(data)
	require.NoError(t, err)
	assert.Equal(t, entry, *got)

	// metadata iteration order does not affect the encoding
	for i := 0; i < 10; i++ {
		assert.Equal(t, data, MarshalEntry(&entry))
	}
}

func TestEntryEncoding_EmptyCollections(t *testing.T) {
	entry := core.IndexEntry{Chunk: core.DocumentChunk{Text: "x"}}

	got, err := UnmarshalEntry(MarshalEntry(&entry))
	require.NoError(t, err)
	assert.Nil(t, got.Chunk.Metadata)
	assert.Nil(t, got.Vector)
}

func TestUnmarshal_Truncated(t *testing.T) {
	entry := core.IndexEntry{
		Chunk:  core.DocumentChunk{Id: 99, Text: "some profile text", Metadata: map[string]string{"a": "b"}},
		Vector: []float32{1, 2, 3, 4},
	}
	data := MarshalEntry(&entry)

	for _, cut := range []int{0, 1, len(data) / 2, len(data) - 1} {
		_, err := UnmarshalEntry(data[:cut])
		assert.ErrorIs(t, err, ErrSerializationFailed, "cut at %d", cut)
	}

	m := Manifest{Version: 1, Metric: index.MetricL2, EmbeddingModel: "m"}
	mdata := MarshalManifest(&m)
	_, err := UnmarshalManifest(mdata[:len(mdata)-1])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestUnmarshal_OversizedLength(t *testing.T) {
	// the trailing byte of an entry without metadata or vector is the vector length
	data := MarshalEntry(&core.IndexEntry{Chunk: core.DocumentChunk{Id: 1, Text: "x"}})
	for _, l := range []int{1 << 62, 1 << 40, -1} {
		bad := data[:len(data)-1]
		buf := make([]byte, varint.Int.Size(l))
		varint.Int.Marshal(l, buf)
		bad = append(bad, buf...)

		_, err := UnmarshalEntry(bad)
		assert.ErrorIs(t, err, ErrTruncatedData, "length %d", l)
	}
}

func TestNewManifest(t *testing.T) {
	ix, err := index.Build(
		[]core.DocumentChunk{{Text: "a"}, {Text: "b"}},
		[][]float32{{1, 0, 0}, {0, 1, 0}},
		index.MetricL2,
	)
	require.NoError(t, err)

	m := NewManifest(ix, "all-minilm", 1000, 200)
	assert.Equal(t, FormatVersion, m.Version)
	assert.Equal(t, index.MetricL2, m.Metric)
	assert.Equal(t, 3, m.Dimension)
	assert.Equal(t, 2, m.Count)
	assert.Equal(t, "all-minilm", m.EmbeddingModel)
	assert.WithinDuration(t, time.Now(), m.BuiltAt, time.Minute)
}
