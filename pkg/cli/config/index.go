package config

import (
	"log/slog"

	"github.com/m-mizutani/gollem"
	"github.com/sauraha-lab/parkguide/pkg/service/index"
	"github.com/urfave/cli/v3"
)

// Index holds configuration for the vector index
type Index struct {
	dir          string
	chunkSize    int
	chunkOverlap int
	searchK      int
}

// Flags returns CLI flags for index configuration
func (x *Index) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "index-dir",
			Usage:       "Directory for the persisted vector index",
			Value:       "./data/index",
			Sources:     cli.EnvVars("PARKGUIDE_INDEX_DIR"),
			Destination: &x.dir,
		},
		&cli.IntFlag{
			Name:        "chunk-size",
			Usage:       "Chunk window size in runes",
			Value:       index.DefaultChunkSize,
			Sources:     cli.EnvVars("PARKGUIDE_CHUNK_SIZE"),
			Destination: &x.chunkSize,
		},
		&cli.IntFlag{
			Name:        "chunk-overlap",
			Usage:       "Chunk overlap in runes",
			Value:       index.DefaultChunkOverlap,
			Sources:     cli.EnvVars("PARKGUIDE_CHUNK_OVERLAP"),
			Destination: &x.chunkOverlap,
		},
		&cli.IntFlag{
			Name:        "search-k",
			Usage:       "Number of chunks retrieved per query",
			Value:       4,
			Sources:     cli.EnvVars("PARKGUIDE_SEARCH_K"),
			Destination: &x.searchK,
		},
	}
}

// LogAttrs returns log attributes for the index configuration
func (x *Index) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("dir", x.dir),
		slog.Int("chunk_size", x.chunkSize),
		slog.Int("chunk_overlap", x.chunkOverlap),
		slog.Int("search_k", x.searchK),
	}
}

// Configure builds the vector index service on the given LLM client
func (x *Index) Configure(llm gollem.LLMClient) *index.Service {
	return index.New(llm, x.dir,
		index.WithChunkSize(x.chunkSize),
		index.WithChunkOverlap(x.chunkOverlap),
	)
}

// SearchK returns the configured retrieval depth
func (x *Index) SearchK() int {
	return x.searchK
}
