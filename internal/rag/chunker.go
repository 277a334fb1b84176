// internal/rag/chunker.go
package rag

import "strings"

// ChunkText splits text into overlapping chunks using word counts as a proxy
// for tokens. The last overlap words of chunk i are repeated at the start of
// chunk i+1 so retrieval does not lose context at chunk boundaries. A
// document shorter than chunkSize yields exactly one chunk; empty input
// yields nil.
func ChunkText(text string, chunkSize, overlap int) []Chunk {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []Chunk
	position := 0
	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{
			Position: position,
			Text:     strings.Join(words[i:end], " "),
			Tokens:   end - i,
		})
		position++
		if end == len(words) {
			break
		}
	}
	return chunks
}
