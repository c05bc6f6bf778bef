package config

import (
	"log/slog"

	"github.com/sauraha-lab/parkguide/pkg/service/corpus"
	"github.com/urfave/cli/v3"
)

// Corpus holds configuration for the park record corpus
type Corpus struct {
	dir string
}

// Flags returns CLI flags for corpus configuration
func (c *Corpus) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "corpus-dir",
			Usage:       "Directory containing park record files (.json, .txt)",
			Value:       "./data/corpus",
			Sources:     cli.EnvVars("PARKGUIDE_CORPUS_DIR"),
			Destination: &c.dir,
		},
	}
}

// LogAttrs returns log attributes for the corpus configuration
func (c *Corpus) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("dir", c.dir),
	}
}

// Configure builds the corpus loader
func (c *Corpus) Configure() *corpus.Loader {
	return corpus.New(c.dir)
}
