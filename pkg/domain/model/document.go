package model

import (
	"github.com/google/uuid"
)

// EmbeddingDimension is the dimension of the embedding vector.
// Gemini text-embedding-004 uses 768 dimensions.
const EmbeddingDimension = 768

// DocumentID identifies one content unit produced during ingestion
type DocumentID string

// NewDocumentID generates a new UUID v4 DocumentID
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New().String())
}

// Metadata keys shared by ingestion and retrieval
const (
	MetaSource   = "source"
	MetaCategory = "category"
	MetaIndex    = "index"
	MetaID       = "id"
	MetaName     = "name"
)

// Document is an immutable content unit: normalized text plus metadata.
// Metadata always carries MetaSource and MetaCategory; wildlife records
// additionally carry MetaID and MetaName when the source provides them.
type Document struct {
	ID       DocumentID
	Content  string
	Metadata map[string]string
}

// Chunk is a fixed-size, overlapping window over a Document's content.
// It is the atomic embedded and retrieved unit. Metadata is inherited
// from the parent Document unchanged.
type Chunk struct {
	DocumentID DocumentID
	Seq        int
	Content    string
	Metadata   map[string]string
}

// CloneMetadata returns a copy of m, or an empty map when m is nil
func CloneMetadata(m map[string]string) map[string]string {
	copied := make(map[string]string, len(m))
	for k, v := range m {
		copied[k] = v
	}
	return copied
}
