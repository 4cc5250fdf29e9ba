package collector

import "strings"

const (
	defaultChunkWords   = 800
	defaultOverlapWords = 100
)

// Chunker splits text into overlapping word windows sized for one model
// call each.
type Chunker struct {
	ChunkWords   int
	OverlapWords int
}

// NewChunker returns a Chunker with the given sizes; non-positive values
// fall back to the defaults.
func NewChunker(chunkWords, overlapWords int) Chunker {
	if chunkWords <= 0 {
		chunkWords = defaultChunkWords
	}
	if overlapWords <= 0 {
		overlapWords = defaultOverlapWords
	}
	return Chunker{ChunkWords: chunkWords, OverlapWords: overlapWords}
}

// Chunk splits text on whitespace into windows of at most ChunkWords words,
// each overlapping the previous by OverlapWords. Text at or under the window
// size comes back as a single chunk containing the original text verbatim.
func (c Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) <= c.ChunkWords {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := start + c.ChunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		start += c.ChunkWords - c.OverlapWords
	}

	return chunks
}
