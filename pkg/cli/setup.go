package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/sauraha-lab/parkguide/pkg/cli/config"
	"github.com/sauraha-lab/parkguide/pkg/domain/types"
	"github.com/sauraha-lab/parkguide/pkg/repository/memory"
	"github.com/sauraha-lab/parkguide/pkg/service/answer"
	"github.com/sauraha-lab/parkguide/pkg/service/format"
	"github.com/sauraha-lab/parkguide/pkg/service/index"
	"github.com/sauraha-lab/parkguide/pkg/service/suggest"
	"github.com/sauraha-lab/parkguide/pkg/usecase"
	"github.com/sauraha-lab/parkguide/pkg/utils/logging"
)

// loadOrBuildIndex brings the vector index up. A persisted index is
// loaded when present; a missing or corrupt one is rebuilt from the
// corpus directory.
func loadOrBuildIndex(ctx context.Context, idx *index.Service, corpusCfg *config.Corpus) error {
	err := idx.Load(ctx)
	if err == nil {
		count, dim := idx.Stats()
		logging.Default().Info("Loaded persisted index", "vectors", count, "dimension", dim)
		return nil
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		logging.Default().Info("No persisted index found, building from corpus")
	case errors.Is(err, types.ErrIndexCorrupt):
		logging.Default().Warn("Persisted index is corrupt, rebuilding from corpus", "error", err.Error())
	default:
		return goerr.Wrap(err, "failed to load index")
	}

	return rebuildIndex(ctx, idx, corpusCfg)
}

// rebuildIndex loads the corpus and builds the index from scratch.
func rebuildIndex(ctx context.Context, idx *index.Service, corpusCfg *config.Corpus) error {
	docs, err := corpusCfg.Configure().Load(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load corpus")
	}

	if err := idx.Build(ctx, docs); err != nil {
		return goerr.Wrap(err, "failed to build index")
	}

	count, dim := idx.Stats()
	logging.Default().Info("Built index", "documents", len(docs), "vectors", count, "dimension", dim)
	return nil
}

// newChatUseCase wires the full query pipeline. suggestRules optionally
// points at a TOML file replacing the built-in suggestion table.
func newChatUseCase(llm gollem.LLMClient, idx *index.Service, indexCfg *config.Index, suggestRules string) (*usecase.ChatUseCase, error) {
	gen, err := answer.New(llm)
	if err != nil {
		return nil, err
	}

	var suggestOpts []suggest.Option
	if suggestRules != "" {
		data, err := os.ReadFile(suggestRules)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read suggestion rules", goerr.V("path", suggestRules))
		}
		suggestOpts = append(suggestOpts, suggest.WithRules(data))
	}
	suggester, err := suggest.New(suggestOpts...)
	if err != nil {
		return nil, err
	}

	formatter, err := format.New()
	if err != nil {
		return nil, err
	}

	return usecase.New(idx, memory.NewConversation(), gen, suggester, formatter,
		usecase.WithSearchK(indexCfg.SearchK()),
	), nil
}
