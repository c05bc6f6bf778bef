package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sauraha-lab/parkguide/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var geminiCfg config.Gemini
	var indexCfg config.Index
	var corpusCfg config.Corpus

	var flags []cli.Flag
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, indexCfg.Flags()...)
	flags = append(flags, corpusCfg.Flags()...)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Rebuild the vector index from the corpus directory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}

			// Always rebuilds, even when a persisted index exists
			return rebuildIndex(ctx, indexCfg.Configure(llm), &corpusCfg)
		},
	}
}
