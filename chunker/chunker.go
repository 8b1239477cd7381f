// Package chunker splits document bodies into bounded, overlapping windows.
//
// Two splitters are provided. Window is the default: it prefers paragraph,
// then sentence, then word boundaries, and guarantees that consecutive chunks
// overlap by exactly the configured number of characters so the body can be
// reassembled. Recursive delegates to langchaingo's recursive character
// splitter and matches how earlier indexes were produced.
package chunker

import (
	"errors"
	"fmt"
	"maps"
	"strconv"

	"github.com/poiesic/expertfind/core"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Splitter kinds accepted by New.
const (
	KindWindow    = "window"
	KindRecursive = "recursive"
)

var (
	// ErrInvalidChunkSize is returned when chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be greater than 0")

	// ErrInvalidOverlap is returned when overlap is negative or not smaller than chunk size.
	ErrInvalidOverlap = errors.New("chunk overlap must be in [0, chunk size)")
)

// Splitter turns one document into ordered chunks.
// Every chunk carries a copy of the document's full metadata.
type Splitter interface {
	Split(doc core.SemanticDocument) ([]core.DocumentChunk, error)
}

func validate(size, overlap int) error {
	if size <= 0 {
		return ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap %d, size %d", ErrInvalidOverlap, overlap, size)
	}
	return nil
}

// New returns the splitter registered under kind. An empty kind is KindWindow.
func New(kind string, size, overlap int) (Splitter, error) {
	switch kind {
	case "", KindWindow:
		return NewWindow(size, overlap)
	case KindRecursive:
		return NewRecursive(size, overlap)
	default:
		return nil, fmt.Errorf("unknown splitter %q", kind)
	}
}

// SplitAll splits documents in order and concatenates the chunks.
func SplitAll(s Splitter, docs []core.SemanticDocument) ([]core.DocumentChunk, error) {
	var chunks []core.DocumentChunk
	for _, doc := range docs {
		split, err := s.Split(doc)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, split...)
	}
	return chunks, nil
}

// makeChunks tags texts with ids and metadata copies.
func makeChunks(doc core.SemanticDocument, texts []string) []core.DocumentChunk {
	chunks := make([]core.DocumentChunk, 0, len(texts))
	owner := doc.Metadata[core.MetaUserID]
	for _, text := range texts {
		if text == "" {
			continue
		}
		ordinal := len(chunks)
		chunks = append(chunks, core.DocumentChunk{
			Id:       core.IDFromContent(owner + ":" + strconv.Itoa(ordinal) + ":" + text),
			Ordinal:  ordinal,
			Text:     text,
			Metadata: maps.Clone(doc.Metadata),
		})
	}
	return chunks
}
