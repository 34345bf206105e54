package pipeline

import (
	"fmt"
	"strings"
)

// minChunkLength filters out fragments that carry no retrievable content,
// such as lone page headers.
const minChunkLength = 50

// chunk separators tried in order, coarsest first
var separators = []string{"\n\n", "\n", "。", ". ", " "}

// DefaultChunker creates a recursive character splitter: text is split on the
// coarsest separator that yields pieces within chunkSize runes, then pieces
// are merged greedily with the given rune overlap between adjacent chunks.
func DefaultChunker(chunkSize int, overlap int) ChunkFunc {
	return func(text string) ([]Draft, error) {
		if chunkSize <= 0 {
			return nil, fmt.Errorf("chunk size must be positive")
		}
		if overlap < 0 || overlap >= chunkSize {
			return nil, fmt.Errorf("overlap must be in [0, chunk size)")
		}
		if strings.TrimSpace(text) == "" {
			return []Draft{}, nil
		}

		pieces := splitRecursive(text, separators, chunkSize)
		merged := mergePieces(pieces, chunkSize, overlap)

		drafts := make([]Draft, 0, len(merged))
		for _, content := range merged {
			content = strings.TrimSpace(content)
			if len([]rune(content)) < minChunkLength {
				continue
			}
			drafts = append(drafts, Draft{
				Content:    content,
				ChunkIndex: len(drafts),
			})
		}

		return drafts, nil
	}
}

// ParagraphChunker creates a chunker that splits on blank lines
func ParagraphChunker() ChunkFunc {
	return func(text string) ([]Draft, error) {
		paragraphs := strings.Split(text, "\n\n")

		drafts := make([]Draft, 0, len(paragraphs))
		for _, para := range paragraphs {
			para = strings.TrimSpace(para)
			if len([]rune(para)) < minChunkLength {
				continue
			}
			drafts = append(drafts, Draft{
				Content:    para,
				ChunkIndex: len(drafts),
			})
		}

		return drafts, nil
	}
}

// splitRecursive breaks text into pieces no longer than size runes, trying
// separators in order and falling back to a hard rune split.
func splitRecursive(text string, seps []string, size int) []string {
	if len([]rune(text)) <= size {
		return []string{text}
	}

	if len(seps) == 0 {
		return splitRunes(text, size)
	}

	var pieces []string
	parts := strings.Split(text, seps[0])
	for i, part := range parts {
		// Splitting drops the separator, keep sentence enders attached
		if seps[0] == "。" && i < len(parts)-1 {
			part += "。"
		}
		if part == "" {
			continue
		}
		pieces = append(pieces, splitRecursive(part, seps[1:], size)...)
	}

	return pieces
}

func splitRunes(text string, size int) []string {
	runes := []rune(text)
	var pieces []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}

// mergePieces joins pieces greedily up to size runes, carrying overlap runes
// from the end of each chunk into the next.
func mergePieces(pieces []string, size int, overlap int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0
	seedOnly := true // current holds nothing beyond the carried overlap

	flush := func() {
		chunk := current.String()
		chunks = append(chunks, chunk)
		current.Reset()
		currentLen = 0
		seedOnly = true

		if overlap > 0 {
			runes := []rune(chunk)
			if len(runes) > overlap {
				runes = runes[len(runes)-overlap:]
			}
			current.WriteString(string(runes))
			currentLen = len(runes)
		}
	}

	for _, piece := range pieces {
		pieceLen := len([]rune(piece))
		if !seedOnly && currentLen+pieceLen > size {
			flush()
		}
		current.WriteString(piece)
		currentLen += pieceLen
		seedOnly = false
	}
	if !seedOnly {
		chunks = append(chunks, current.String())
	}

	return chunks
}
