package ingestion_engine

import "fmt"

// Chunk is one bounded window of extracted text.
//
// Text:   window content; the last window may be shorter than size.
// Offset: rune offset of the window start inside the source text.
type Chunk struct {
	Text   string
	Offset int
}

// ChunkText splits text into fixed-size windows that overlap by overlap
// runes. Windows are taken left to right, advancing by size-overlap each
// step, so consecutive chunks share their boundary context. Empty input
// yields no chunks. Runes, not bytes: slicing bytes could cut a UTF-8
// sequence in half.
//
// overlap must satisfy 0 <= overlap < size; otherwise the window would
// never advance, so the combination is rejected instead of looping.
func ChunkText(text string, size, overlap int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must satisfy 0 <= overlap < size, got overlap=%d size=%d", overlap, size)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := size - overlap
	chunks := make([]Chunk, 0, (len(runes)+step-1)/step)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{Text: string(runes[start:end]), Offset: start})
	}
	return chunks, nil
}
