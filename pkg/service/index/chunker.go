package index

import (
	"strings"

	"github.com/sauraha-lab/parkguide/pkg/domain/model"
)

// Default chunking constants. A 1000-rune window with a 200-rune overlap
// keeps each chunk small enough for the embedding model while preserving
// continuity across window edges.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// splitDocument cuts a document's content into fixed-size overlapping
// windows. Every produced chunk inherits the document's metadata
// unchanged. Windows are measured in runes so multi-byte text never
// splits mid-character.
func splitDocument(doc model.Document, size, overlap int) []model.Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}

	content := strings.TrimSpace(doc.Content)
	if content == "" {
		return nil
	}

	runes := []rune(content)
	step := size - overlap

	var chunks []model.Chunk
	for start, seq := 0, 0; start < len(runes); start, seq = start+step, seq+1 {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, model.Chunk{
			DocumentID: doc.ID,
			Seq:        seq,
			Content:    string(runes[start:end]),
			Metadata:   model.CloneMetadata(doc.Metadata),
		})

		if end == len(runes) {
			break
		}
	}
	return chunks
}

// splitAll chunks a batch of documents in order
func splitAll(docs []model.Document, size, overlap int) []model.Chunk {
	var chunks []model.Chunk
	for _, doc := range docs {
		chunks = append(chunks, splitDocument(doc, size, overlap)...)
	}
	return chunks
}
