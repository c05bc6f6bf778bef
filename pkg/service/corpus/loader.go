package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sauraha-lab/parkguide/pkg/domain/model"
	"github.com/sauraha-lab/parkguide/pkg/domain/types"
	"github.com/sauraha-lab/parkguide/pkg/utils/logging"
)

// Loader reads a corpus directory and normalizes its files into content
// units. Structured JSON records (wildlife species, activity tables) and
// free-text documents are both supported. Malformed files are skipped
// with a warning; they never fail the batch.
type Loader struct {
	dir string
}

// New creates a Loader for the given corpus directory
func New(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load walks the corpus directory and returns one Document per text file
// and one Document per record of each JSON file
func (l *Loader) Load(ctx context.Context) ([]model.Document, error) {
	logger := logging.From(ctx)

	var docs []model.Document
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			loaded, err := loadJSONFile(path)
			if err != nil {
				logger.Warn("skipping malformed corpus file", "path", path, "error", err.Error())
				return nil
			}
			logger.Info("loaded corpus file", "path", path, "records", len(loaded))
			docs = append(docs, loaded...)

		case ".txt":
			doc, err := loadTextFile(path)
			if err != nil {
				logger.Warn("skipping unreadable corpus file", "path", path, "error", err.Error())
				return nil
			}
			logger.Info("loaded corpus file", "path", path, "records", 1)
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to walk corpus directory", goerr.V(types.CorpusDirKey, l.dir))
	}

	return docs, nil
}

// loadJSONFile parses a JSON file holding either a single record or an
// array of records, producing one Document per record
func loadJSONFile(path string) ([]model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file")
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		var single map[string]any
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, goerr.Wrap(err, "not a JSON object or array of objects")
		}
		records = []map[string]any{single}
	}

	category := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	docs := make([]model.Document, 0, len(records))
	for idx, record := range records {
		metadata := map[string]string{
			model.MetaSource:   path,
			model.MetaCategory: category,
			model.MetaIndex:    strconv.Itoa(idx),
		}
		if id, ok := record["id"]; ok {
			metadata[model.MetaID] = renderScalar(id)
		}
		if name, ok := record["name"]; ok {
			metadata[model.MetaName] = renderScalar(name)
		}

		docs = append(docs, model.Document{
			ID:       model.NewDocumentID(),
			Content:  renderRecord(record),
			Metadata: metadata,
		})
	}
	return docs, nil
}

// loadTextFile turns one free-text file into a single Document
func loadTextFile(path string) (model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, goerr.Wrap(err, "failed to read file")
	}

	return model.Document{
		ID:      model.NewDocumentID(),
		Content: string(raw),
		Metadata: map[string]string{
			model.MetaSource:   path,
			model.MetaCategory: "text",
		},
	}, nil
}

// renderRecord flattens one structured record into readable text: each
// field becomes a "Field Name: value" line, nested values are rendered
// as indented JSON. Keys are emitted in sorted order so the rendering is
// deterministic.
func renderRecord(record map[string]any) string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		value := record[key]
		var rendered string
		switch value.(type) {
		case map[string]any, []any:
			nested, err := json.MarshalIndent(value, "", "  ")
			if err != nil {
				continue
			}
			rendered = string(nested)
		default:
			rendered = renderScalar(value)
		}
		lines = append(lines, titleKey(key)+": "+rendered)
	}
	return strings.Join(lines, "\n")
}

// renderScalar formats a JSON scalar without a float suffix for whole
// numbers
func renderScalar(value any) string {
	if f, ok := value.(float64); ok && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprintf("%v", value)
}

// titleKey turns "scientific_name" into "Scientific Name"
func titleKey(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
