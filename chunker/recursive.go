package chunker

import (
	"github.com/poiesic/expertfind/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// Recursive wraps langchaingo's recursive character splitter.
// Its chunks respect size and separator preference but are trimmed and
// re-joined, so the exact-overlap guarantee of Window does not hold.
type Recursive struct {
	splitter textsplitter.RecursiveCharacter
}

// NewRecursive creates a recursive splitter with paragraph, line, word and
// character separators.
func NewRecursive(size, overlap int) (*Recursive, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	return &Recursive{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		),
	}, nil
}

// Split implements Splitter.
func (r *Recursive) Split(doc core.SemanticDocument) ([]core.DocumentChunk, error) {
	if doc.Body == "" {
		return nil, nil
	}
	texts, err := r.splitter.SplitText(doc.Body)
	if err != nil {
		return nil, err
	}
	return makeChunks(doc, texts), nil
}
