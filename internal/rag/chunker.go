package rag

import (
	"strings"
	"unicode"
)

const (
	DefaultChunkSize    = 600
	DefaultChunkOverlap = 128
)

// Chunker splits text into overlapping windows measured in runes. Windows
// advance by a fixed stride of Size-Overlap; when a window would cut a
// sentence in half, the cut is pulled back to the last sentence end inside
// the window, as long as the dropped tail is still covered by the next
// window.
type Chunker struct {
	Size    int
	Overlap int
}

func NewChunker(size, overlap int) Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = 0
	}
	return Chunker{Size: size, Overlap: overlap}
}

func (c Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.Size {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	step := c.Size - c.Overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.Size
		if end >= len(runes) {
			if trimmed := strings.TrimSpace(string(runes[start:])); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
			break
		}

		cut := sentenceCut(runes, start+step, end)
		if trimmed := strings.TrimSpace(string(runes[start:cut])); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
	}
	return chunks
}

// sentenceCut finds the position after the last sentence terminator in
// [min, end). Terminators count only when followed by whitespace or the end
// of the text. Returns end when the window holds no usable boundary.
func sentenceCut(runes []rune, min, end int) int {
	for i := end - 1; i >= min; i-- {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
			return i + 1
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
