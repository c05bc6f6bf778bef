package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sauraha-lab/parkguide/pkg/cli/config"
	"github.com/sauraha-lab/parkguide/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdAsk() *cli.Command {
	var noSuggestions bool
	var noEmojis bool
	var suggestRules string
	var geminiCfg config.Gemini
	var indexCfg config.Index
	var corpusCfg config.Corpus

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-suggestions",
			Usage:       "Skip the follow-up question block",
			Destination: &noSuggestions,
		},
		&cli.BoolFlag{
			Name:        "no-emojis",
			Usage:       "Skip emoji decoration",
			Destination: &noEmojis,
		},
		&cli.StringFlag{
			Name:        "suggest-rules",
			Usage:       "TOML file overriding the built-in suggestion rules",
			Sources:     cli.EnvVars("PARKGUIDE_SUGGEST_RULES"),
			Destination: &suggestRules,
		},
	}

	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, indexCfg.Flags()...)
	flags = append(flags, corpusCfg.Flags()...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask the park guide a single question",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			question := c.Args().First()
			if question == "" {
				return goerr.New("question is required, e.g. parkguide ask \"How many rhinos live in Chitwan?\"")
			}

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}

			idx := indexCfg.Configure(llm)
			if err := loadOrBuildIndex(ctx, idx, &corpusCfg); err != nil {
				return err
			}

			chatUC, err := newChatUseCase(llm, idx, &indexCfg, suggestRules)
			if err != nil {
				return goerr.Wrap(err, "failed to build chat pipeline")
			}

			result := chatUC.Query(ctx, question,
				usecase.WithSuggestions(!noSuggestions),
				usecase.WithEmojis(!noEmojis),
			)

			color.New(color.FgCyan, color.Bold).Fprintf(os.Stdout, "Q: %s\n\n", question)
			fmt.Fprintln(os.Stdout, result.Answer)

			if len(result.Sources) > 0 {
				fmt.Fprintln(os.Stdout)
				color.New(color.FgYellow).Fprint(os.Stdout, "Sources: ")
				for i, src := range result.Sources {
					if i > 0 {
						fmt.Fprint(os.Stdout, ", ")
					}
					fmt.Fprint(os.Stdout, src)
				}
				fmt.Fprintln(os.Stdout)
			}

			return nil
		},
	}
}
