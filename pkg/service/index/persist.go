package index

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/sauraha-lab/parkguide/pkg/domain/types"
	"github.com/sauraha-lab/parkguide/pkg/utils/logging"
	"github.com/sauraha-lab/parkguide/pkg/utils/safe"
)

// Durable directory layout. The metadata file records the embedding
// dimension and entry count so a load can verify the entry file against
// them before serving queries.
const (
	metaFile    = "meta.toml"
	entriesFile = "entries.json"

	metricCosine = "cosine"
)

type indexMeta struct {
	Dimension int       `toml:"dimension"`
	Metric    string    `toml:"metric"`
	Entries   int       `toml:"entries"`
	BuiltAt   time.Time `toml:"built_at"`
}

// saveLocked writes the full index state to the durable directory. The
// caller must hold the exclusive lock.
func (s *Service) saveLocked(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create index directory", goerr.V(types.IndexDirKey, s.dir))
	}

	meta := indexMeta{
		Dimension: s.dimension,
		Metric:    metricCosine,
		Entries:   len(s.entries),
		BuiltAt:   time.Now().UTC(),
	}
	rawMeta, err := toml.Marshal(meta)
	if err != nil {
		return goerr.Wrap(err, "failed to encode index metadata")
	}
	if err := os.WriteFile(filepath.Join(s.dir, metaFile), rawMeta, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write index metadata", goerr.V(types.IndexDirKey, s.dir))
	}

	f, err := os.Create(filepath.Join(s.dir, entriesFile))
	if err != nil {
		return goerr.Wrap(err, "failed to create entries file", goerr.V(types.IndexDirKey, s.dir))
	}
	defer safe.Close(ctx, f)

	if err := json.NewEncoder(f).Encode(s.entries); err != nil {
		return goerr.Wrap(err, "failed to encode index entries")
	}

	logging.From(ctx).Info("persisted vector index",
		"dir", s.dir,
		"entries", len(s.entries),
		"dimension", s.dimension,
	)
	return nil
}

// Load reconstructs index state from the durable directory. A missing
// index surfaces fs.ErrNotExist; an unreadable or inconsistent one
// surfaces types.ErrIndexCorrupt so the caller can fall back to a full
// rebuild.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rawMeta, err := os.ReadFile(filepath.Join(s.dir, metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return goerr.Wrap(fs.ErrNotExist, "no persisted index", goerr.V(types.IndexDirKey, s.dir))
		}
		return goerr.Wrap(types.ErrIndexCorrupt, err.Error(), goerr.V(types.IndexDirKey, s.dir))
	}

	var meta indexMeta
	if err := toml.Unmarshal(rawMeta, &meta); err != nil {
		return goerr.Wrap(types.ErrIndexCorrupt, "metadata is not valid TOML", goerr.V(types.IndexDirKey, s.dir))
	}

	rawEntries, err := os.ReadFile(filepath.Join(s.dir, entriesFile))
	if err != nil {
		return goerr.Wrap(types.ErrIndexCorrupt, "entries file unreadable", goerr.V(types.IndexDirKey, s.dir))
	}

	var entries []entry
	if err := json.Unmarshal(rawEntries, &entries); err != nil {
		return goerr.Wrap(types.ErrIndexCorrupt, "entries file is not valid JSON", goerr.V(types.IndexDirKey, s.dir))
	}

	if len(entries) != meta.Entries {
		return goerr.Wrap(types.ErrIndexCorrupt, "entry count does not match metadata",
			goerr.V("want", meta.Entries),
			goerr.V("got", len(entries)),
		)
	}
	for _, e := range entries {
		if len(e.Vector) != meta.Dimension {
			return goerr.Wrap(types.ErrIndexCorrupt, "vector dimension does not match metadata",
				goerr.V(types.DimensionKey, meta.Dimension),
				goerr.V("got", len(e.Vector)),
			)
		}
	}

	s.entries = entries
	s.dimension = meta.Dimension
	s.ready = true

	logging.From(ctx).Info("loaded vector index",
		"dir", s.dir,
		"entries", len(entries),
		"dimension", meta.Dimension,
	)
	return nil
}
