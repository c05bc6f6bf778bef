package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for the retrieval core
var (
	// ErrEmptyCorpus is returned when an index build finds no documents
	ErrEmptyCorpus = goerr.New("no documents available to index")

	// ErrIndexCorrupt is returned when a persisted index cannot be read back.
	// The caller is expected to fall back to a full rebuild.
	ErrIndexCorrupt = goerr.New("persisted index is unreadable")

	// ErrNotInitialized is returned by index operations before Build or Load
	ErrNotInitialized = goerr.New("vector index is not initialized")

	// ErrEmptyMemory is returned by ReplaceLast on an empty conversation log
	ErrEmptyMemory = goerr.New("conversation memory is empty")

	// ErrGeneration is returned when the language generation service fails
	ErrGeneration = goerr.New("generation service failed")

	// ErrEmbedding is returned when the embedding service fails
	ErrEmbedding = goerr.New("embedding service failed")
)

// Context keys for error values
const (
	CorpusDirKey = "corpus_dir"
	IndexDirKey  = "index_dir"
	SourceKey    = "source"
	QueryKey     = "query"
	DimensionKey = "dimension"
)
