package interfaces

import (
	"context"

	"github.com/sauraha-lab/parkguide/pkg/domain/model"
)

// VectorIndex defines the retrieval operations needed by the orchestrator
type VectorIndex interface {
	// Build chunks, embeds and indexes the given documents, replacing any
	// existing state, then persists the index
	Build(ctx context.Context, docs []model.Document) error

	// Load reconstructs index state from durable storage
	Load(ctx context.Context) error

	// Add appends newly chunked and embedded entries to the existing index
	// and re-persists it
	Add(ctx context.Context, docs []model.Document) error

	// Search returns the k nearest chunks to the query by embedding
	// similarity. Fewer than k are returned when the index is smaller.
	Search(ctx context.Context, query string, k int) ([]model.Chunk, error)

	// Stats reports the number of indexed vectors and their dimension
	Stats() (count int, dimension int)
}
