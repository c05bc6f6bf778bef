package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sauraha-lab/parkguide/pkg/cli/config"
	httpctrl "github.com/sauraha-lab/parkguide/pkg/controller/http"
	"github.com/sauraha-lab/parkguide/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var suggestRules string
	var geminiCfg config.Gemini
	var indexCfg config.Index
	var corpusCfg config.Corpus

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("PARKGUIDE_ADDR"),
			Destination: &addr,
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
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
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

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(chatUC),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
