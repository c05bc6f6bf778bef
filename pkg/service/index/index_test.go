package index_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/sauraha-lab/parkguide/pkg/domain/model"
	"github.com/sauraha-lab/parkguide/pkg/domain/types"
	"github.com/sauraha-lab/parkguide/pkg/service/index"
)

// mockLLMClient is a mock gollem LLMClient with a deterministic
// keyword-bucket embedder
type mockLLMClient struct {
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return nil, errors.New("not implemented")
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if c.generateEmbeddingFn != nil {
		return c.generateEmbeddingFn(ctx, dimension, input)
	}
	vectors := make([][]float64, len(input))
	for i, text := range input {
		vectors[i] = stubEmbed(text)
	}
	return vectors, nil
}

func stubEmbed(text string) []float64 {
	v := []float64{0, 0, 0, 0.1}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "rhino") {
		v[0] = 1
	}
	if strings.Contains(lower, "tiger") {
		v[1] = 1
	}
	if strings.Contains(lower, "safari") {
		v[2] = 1
	}
	return v
}

func wildlifeDocs() []model.Document {
	return []model.Document{
		{
			ID:      model.NewDocumentID(),
			Content: "The One-horned Rhinoceros, or rhino, is classified as Vulnerable. Around 600 rhinos live in the park.",
			Metadata: map[string]string{
				model.MetaSource:   "wildlife/mammals.json",
				model.MetaCategory: "mammals",
				model.MetaName:     "One-horned Rhinoceros",
			},
		},
		{
			ID:      model.NewDocumentID(),
			Content: "The Bengal Tiger is an endangered solitary hunter. Around 120 tigers roam the dense forests.",
			Metadata: map[string]string{
				model.MetaSource:   "wildlife/mammals.json",
				model.MetaCategory: "mammals",
				model.MetaName:     "Bengal Tiger",
			},
		},
		{
			ID:      model.NewDocumentID(),
			Content: "A jeep safari takes visitors deep into the park. The safari starts early in the morning.",
			Metadata: map[string]string{
				model.MetaSource:   "activities/activities.json",
				model.MetaCategory: "activities",
				model.MetaName:     "Jeep Safari",
			},
		},
	}
}

func TestBuildAndSearch(t *testing.T) {
	ctx := context.Background()
	svc := index.New(&mockLLMClient{}, t.TempDir())

	gt.NoError(t, svc.Build(ctx, wildlifeDocs())).Required()

	count, dim := svc.Stats()
	gt.Value(t, count).Equal(3)
	gt.Value(t, dim).Equal(4)

	results, err := svc.Search(ctx, "tell me about rhinos", 2)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(2).Required()
	gt.Value(t, results[0].Metadata[model.MetaName]).Equal("One-horned Rhinoceros")
}

func TestBuildEmptyCorpus(t *testing.T) {
	svc := index.New(&mockLLMClient{}, t.TempDir())

	err := svc.Build(context.Background(), nil)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrEmptyCorpus)).True()
}

func TestSearchBeforeBuild(t *testing.T) {
	svc := index.New(&mockLLMClient{}, t.TempDir())

	_, err := svc.Search(context.Background(), "rhino", 3)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrNotInitialized)).True()
}

func TestAddBeforeBuild(t *testing.T) {
	svc := index.New(&mockLLMClient{}, t.TempDir())

	err := svc.Add(context.Background(), wildlifeDocs())
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrNotInitialized)).True()
}

func TestSearchReturnsFewerThanK(t *testing.T) {
	ctx := context.Background()
	svc := index.New(&mockLLMClient{}, t.TempDir())
	gt.NoError(t, svc.Build(ctx, wildlifeDocs())).Required()

	results, err := svc.Search(ctx, "safari", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(3)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	built := index.New(&mockLLMClient{}, dir)
	gt.NoError(t, built.Build(ctx, wildlifeDocs())).Required()

	probe := "which safari should I take"
	want, err := built.Search(ctx, probe, 3)
	gt.NoError(t, err).Required()

	loaded := index.New(&mockLLMClient{}, dir)
	gt.NoError(t, loaded.Load(ctx)).Required()

	count, dim := loaded.Stats()
	gt.Value(t, count).Equal(3)
	gt.Value(t, dim).Equal(4)

	got, err := loaded.Search(ctx, probe, 3)
	gt.NoError(t, err).Required()
	gt.Array(t, got).Length(len(want)).Required()
	for i := range want {
		gt.Value(t, got[i].Content).Equal(want[i].Content)
		gt.Value(t, got[i].Metadata).Equal(want[i].Metadata)
	}
}

func TestLoadMissingIndex(t *testing.T) {
	svc := index.New(&mockLLMClient{}, filepath.Join(t.TempDir(), "nope"))

	err := svc.Load(context.Background())
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, fs.ErrNotExist)).True()
}

func TestLoadCorruptIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	built := index.New(&mockLLMClient{}, dir)
	gt.NoError(t, built.Build(ctx, wildlifeDocs())).Required()

	gt.NoError(t, os.WriteFile(filepath.Join(dir, "entries.json"), []byte("{broken"), 0o644))

	loaded := index.New(&mockLLMClient{}, dir)
	err := loaded.Load(ctx)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrIndexCorrupt)).True()
}

func TestAddAppendsAndRepersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	svc := index.New(&mockLLMClient{}, dir)
	gt.NoError(t, svc.Build(ctx, wildlifeDocs()[:2])).Required()

	gt.NoError(t, svc.Add(ctx, wildlifeDocs()[2:])).Required()

	count, _ := svc.Stats()
	gt.Value(t, count).Equal(3)

	// The appended entry must survive a reload
	reloaded := index.New(&mockLLMClient{}, dir)
	gt.NoError(t, reloaded.Load(ctx)).Required()
	count, _ = reloaded.Stats()
	gt.Value(t, count).Equal(3)

	results, err := reloaded.Search(ctx, "jeep safari", 1)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(1).Required()
	gt.Value(t, results[0].Metadata[model.MetaName]).Equal("Jeep Safari")
}

func TestEmbeddingFailure(t *testing.T) {
	svc := index.New(&mockLLMClient{
		generateEmbeddingFn: func(_ context.Context, _ int, _ []string) ([][]float64, error) {
			return nil, errors.New("quota exceeded")
		},
	}, t.TempDir())

	err := svc.Build(context.Background(), wildlifeDocs())
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrEmbedding)).True()
}
