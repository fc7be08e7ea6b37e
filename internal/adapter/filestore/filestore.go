// Package filestore persists the coordinate cache and the yearly result file
// as indented UTF-8 JSON.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/snj-koetutka/internal/domain"
)

// ErrCorruptCache is returned when the cache file exists but does not hold a
// valid coordinate cache.
var ErrCorruptCache = errors.New("corrupt coordinate cache")

// CacheFile stores a domain.CoordinateCache in a single JSON file.
type CacheFile struct {
	path   string
	logger *slog.Logger
}

// NewCacheFile returns a cache store backed by path.
func NewCacheFile(path string, logger *slog.Logger) *CacheFile {
	return &CacheFile{path: path, logger: logger}
}

// LoadCache reads the cache. A missing file yields an empty cache; an
// unreadable or malformed file is an error wrapping ErrCorruptCache.
func (f *CacheFile) LoadCache() (*domain.CoordinateCache, error) {
	cache := domain.NewCoordinateCache()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.Info("no coordinate cache, starting empty", "path", f.path)
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read coordinate cache %s: %w", f.path, err)
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptCache, f.path, err)
	}
	f.logger.Info("coordinate cache loaded", "path", f.path, "entries", cache.Len())
	return cache, nil
}

// SaveCache overwrites the cache file with the full cache contents.
func (f *CacheFile) SaveCache(cache *domain.CoordinateCache) error {
	if err := writeJSONFile(f.path, cache); err != nil {
		return fmt.Errorf("save coordinate cache: %w", err)
	}
	f.logger.Info("coordinate cache saved", "path", f.path, "entries", cache.Len())
	return nil
}

// ResultWriter writes the normalized events of one year to
// koetutka_{year}.json in its directory.
type ResultWriter struct {
	dir    string
	logger *slog.Logger
}

// NewResultWriter returns a result writer for dir.
func NewResultWriter(dir string, logger *slog.Logger) *ResultWriter {
	return &ResultWriter{dir: dir, logger: logger}
}

// Path returns the result file path for year.
func (w *ResultWriter) Path(year int) string {
	return filepath.Join(w.dir, fmt.Sprintf("koetutka_%d.json", year))
}

// LoadResults writes events, in order, as the year's result file.
func (w *ResultWriter) LoadResults(_ context.Context, year int, events []domain.NormalizedEvent) error {
	if events == nil {
		events = []domain.NormalizedEvent{}
	}
	path := w.Path(year)
	if err := writeJSONFile(path, events); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	w.logger.Info("results saved", "path", path, "events", len(events))
	return nil
}

// writeJSONFile encodes v with two-space indentation and literal non-ASCII
// characters, writes it to a temporary file next to path and renames it into
// place so readers never observe a partial file.
func writeJSONFile(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
