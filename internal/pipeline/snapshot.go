package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/grazbites/scraper/internal/model"
)

// WriteSnapshot writes v as indented JSON to path, creating parent
// directories. Non-ASCII text and HTML characters are written unescaped.
func WriteSnapshot(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: create output dir for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "pipeline: create %s", path)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "pipeline: encode %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "pipeline: close %s", path)
	}
	return nil
}

// ReadCleanSnapshot loads a clean snapshot written by Run.
func ReadCleanSnapshot(path string) (*model.Snapshot[model.Restaurant], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read %s", path)
	}
	var snap model.Snapshot[model.Restaurant]
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, eris.Wrapf(err, "pipeline: decode %s", path)
	}
	return &snap, nil
}
