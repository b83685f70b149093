package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/job-harvester/internal/domain"
	"go.uber.org/zap"
)

// JSONWriter saves a harvest's listings as a single JSON array.
type JSONWriter struct {
	path   string
	logger *zap.Logger
}

func NewJSONWriter(path string, logger *zap.Logger) *JSONWriter {
	return &JSONWriter{path: path, logger: logger}
}

func (w *JSONWriter) Path() string {
	return w.path
}

// Write stores listings at the writer's path and reports whether a file was
// written. An empty slice leaves any existing file untouched.
func (w *JSONWriter) Write(listings []domain.Listing) (bool, error) {
	if len(listings) == 0 {
		w.logger.Warn("No jobs found! JSON file will not be created.")
		return false, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(listings); err != nil {
		w.logger.Error("could not encode jobs", zap.Error(err))
		return false, fmt.Errorf("encode jobs: %w", err)
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.logger.Error("could not create output dir", zap.String("path", w.path), zap.Error(err))
			return false, fmt.Errorf("could not create output dir: %w", err)
		}
	}
	if err := os.WriteFile(w.path, buf.Bytes(), 0o644); err != nil {
		w.logger.Error(fmt.Sprintf("Error writing to %s", w.path), zap.Error(err))
		return false, fmt.Errorf("write %s: %w", w.path, err)
	}

	w.logger.Info(fmt.Sprintf("Saved %d jobs to %s", len(listings), w.path))
	return true, nil
}
