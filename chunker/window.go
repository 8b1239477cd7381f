package chunker

import (
	"strings"

	"github.com/poiesic/expertfind/core"
)

// Window splits on the best available boundary inside each window.
type Window struct {
	size    int
	overlap int
}

// NewWindow creates a window splitter.
func NewWindow(size, overlap int) (*Window, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	return &Window{size: size, overlap: overlap}, nil
}

// Split implements Splitter.
// Chunks are measured in characters (runes). Chunk i+1 begins with the last
// overlap characters of chunk i.
func (w *Window) Split(doc core.SemanticDocument) ([]core.DocumentChunk, error) {
	return makeChunks(doc, w.splitText(doc.Body)), nil
}

func (w *Window) splitText(body string) []string {
	text := []rune(body)
	if len(text) == 0 {
		return nil
	}

	var out []string
	start := 0
	for {
		if len(text)-start <= w.size {
			out = append(out, string(text[start:]))
			return out
		}
		end := w.breakPoint(text, start)
		out = append(out, string(text[start:end]))
		start = end - w.overlap
	}
}

// breakPoint picks the end of the window starting at start.
// The result is always > start+overlap so the next window makes progress.
func (w *Window) breakPoint(text []rune, start int) int {
	limit := start + w.size
	floor := start + w.overlap + 1
	window := string(text[floor:limit])

	for _, sep := range [][]string{
		{"\n\n"},
		{". ", "! ", "? ", ".\n", "!\n", "?\n"},
		{"\n", " ", "\t"},
	} {
		best := -1
		for _, s := range sep {
			if i := strings.LastIndex(window, s); i >= 0 {
				// cut after the separator
				if e := i + len(s); e > best {
					best = e
				}
			}
		}
		if best > 0 {
			return floor + len([]rune(window[:best]))
		}
	}
	return limit
}
