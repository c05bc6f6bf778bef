package index

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"golang.org/x/sync/errgroup"

	"github.com/sauraha-lab/parkguide/pkg/domain/interfaces"
	"github.com/sauraha-lab/parkguide/pkg/domain/model"
	"github.com/sauraha-lab/parkguide/pkg/domain/types"
	"github.com/sauraha-lab/parkguide/pkg/utils/logging"
)

const (
	embedBatchSize    = 16
	embedParallelism  = 4
	defaultCallBudget = 30 * time.Second
)

// Service is a brute-force cosine-similarity vector index over chunked
// content units. Embeddings come from the configured LLM client; state
// persists to a directory and can be rehydrated with Load. Reads may run
// concurrently; Build and Add take the exclusive lock.
type Service struct {
	llm          gollem.LLMClient
	dir          string
	chunkSize    int
	chunkOverlap int
	embedTimeout time.Duration

	mu        sync.RWMutex
	ready     bool
	dimension int
	entries   []entry
}

// entry pairs one embedded chunk with its vector
type entry struct {
	DocumentID string            `json:"document_id"`
	Seq        int               `json:"seq"`
	Vector     []float64         `json:"vector"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
}

var _ interfaces.VectorIndex = &Service{}

// Option is a functional option for Service configuration
type Option func(*Service)

// WithChunkSize overrides the chunk window size in runes
func WithChunkSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithChunkOverlap overrides the chunk overlap in runes
func WithChunkOverlap(overlap int) Option {
	return func(s *Service) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// WithEmbedTimeout bounds each embedding service call
func WithEmbedTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.embedTimeout = d
		}
	}
}

// New creates a vector index persisting to dir and embedding through llm
func New(llm gollem.LLMClient, dir string, opts ...Option) *Service {
	s := &Service{
		llm:          llm,
		dir:          dir,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		embedTimeout: defaultCallBudget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build chunks, embeds and indexes the given documents, replacing any
// existing state, then persists the index to its directory
func (s *Service) Build(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return goerr.Wrap(types.ErrEmptyCorpus, "nothing to build")
	}

	chunks := splitAll(docs, s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return goerr.Wrap(types.ErrEmptyCorpus, "documents produced no chunks")
	}

	logging.From(ctx).Info("building vector index",
		"documents", len(docs),
		"chunks", len(chunks),
	)

	entries, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = entries
	s.dimension = len(entries[0].Vector)
	s.ready = true

	return s.saveLocked(ctx)
}

// Add appends newly chunked, newly embedded entries to the existing
// index without rebuilding prior entries, then re-persists the full
// index. Exclusive with Search and other Adds.
func (s *Service) Add(ctx context.Context, docs []model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return goerr.Wrap(types.ErrNotInitialized, "cannot add documents")
	}

	chunks := splitAll(docs, s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	entries, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if len(e.Vector) != s.dimension {
			return goerr.Wrap(types.ErrEmbedding, "embedding dimension changed",
				goerr.V(types.DimensionKey, s.dimension),
				goerr.V("got", len(e.Vector)),
			)
		}
	}

	s.entries = append(s.entries, entries...)
	return s.saveLocked(ctx)
}

// Search embeds the query with the build-time embedding function and
// returns the k nearest chunks by cosine similarity, most similar first.
// Fewer than k chunks are returned when the index holds fewer entries.
func (s *Service) Search(ctx context.Context, query string, k int) ([]model.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready {
		return nil, goerr.Wrap(types.ErrNotInitialized, "cannot search")
	}
	if k <= 0 {
		return nil, nil
	}

	vector, err := s.embedOne(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query", goerr.V(types.QueryKey, query))
	}

	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, len(s.entries))
	for i := range s.entries {
		candidates[i] = scored{idx: i, score: cosineSimilarity(vector, s.entries[i].Vector)}
	}

	// Stable sort keeps insertion order on ties, so results are
	// deterministic for a fixed index state and query.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	results := make([]model.Chunk, k)
	for i := 0; i < k; i++ {
		e := s.entries[candidates[i].idx]
		results[i] = model.Chunk{
			DocumentID: model.DocumentID(e.DocumentID),
			Seq:        e.Seq,
			Content:    e.Content,
			Metadata:   model.CloneMetadata(e.Metadata),
		}
	}
	return results, nil
}

// Stats reports the number of indexed vectors and their dimension
func (s *Service) Stats() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready {
		return 0, 0
	}
	return len(s.entries), s.dimension
}

// embedChunks embeds chunk contents in bounded-parallel batches
func (s *Service) embedChunks(ctx context.Context, chunks []model.Chunk) ([]entry, error) {
	entries := make([]entry, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedParallelism)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		offset := start

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Content
			}

			callCtx, cancel := context.WithTimeout(gctx, s.embedTimeout)
			defer cancel()

			vectors, err := s.llm.GenerateEmbedding(callCtx, model.EmbeddingDimension, texts)
			if err != nil {
				return goerr.Wrap(types.ErrEmbedding, err.Error())
			}
			if len(vectors) != len(batch) {
				return goerr.Wrap(types.ErrEmbedding, "embedding count mismatch",
					goerr.V("want", len(batch)),
					goerr.V("got", len(vectors)),
				)
			}

			for i, c := range batch {
				entries[offset+i] = entry{
					DocumentID: string(c.DocumentID),
					Seq:        c.Seq,
					Vector:     vectors[i],
					Content:    c.Content,
					Metadata:   c.Metadata,
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// embedOne embeds a single text with the same function used at build time
func (s *Service) embedOne(ctx context.Context, text string) ([]float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	vectors, err := s.llm.GenerateEmbedding(callCtx, model.EmbeddingDimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(types.ErrEmbedding, err.Error())
	}
	if len(vectors) == 0 {
		return nil, goerr.Wrap(types.ErrEmbedding, "no embedding returned")
	}
	return vectors[0], nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
