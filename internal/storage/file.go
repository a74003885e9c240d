// Package storage provides persistence for processes, recipes, and
// the flour inventory: JSON files on disk plus in-memory stores for
// tests.
//
// Two record shapes exist on disk. Legacy files hold a bare JSON list;
// current files wrap the list in a document with a schema version and
// an update timestamp. The reader accepts both and normalizes to an
// ordered list of raw entries; the writer always emits the wrapped
// document and passes unrecognized top-level keys through unchanged.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/AisKreme/brot-backer/internal/domain"
	"github.com/AisKreme/brot-backer/internal/logger"
)

const defaultSchemaVersion = 1

// FileStore reads and writes one JSON document holding a list of
// records. Safe for concurrent use.
type FileStore[T any] struct {
	mu    sync.Mutex
	path  string
	clock domain.Clock
	log   *logger.Logger
}

// NewFileStore creates a store backed by the given file path. The file
// is created lazily on first save.
func NewFileStore[T any](path string, clk domain.Clock, log *logger.Logger) *FileStore[T] {
	return &FileStore[T]{path: path, clock: clk, log: log}
}

// Load decodes all records. A missing or empty file yields an empty
// list.
func (s *FileStore[T]) Load() ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, _, err := s.readRaw()
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(entries))
	for i, raw := range entries {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decoding %s item %d: %w", filepath.Base(s.path), i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// Save writes all records as a wrapped document, preserving the
// schema version and any unrecognized top-level keys of the existing
// file.
func (s *FileStore[T]) Save(items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, doc, err := s.readRaw()
	if err != nil {
		return err
	}

	encoded := make([]json.RawMessage, 0, len(items))
	for i, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encoding %s item %d: %w", filepath.Base(s.path), i, err)
		}
		encoded = append(encoded, raw)
	}

	if _, ok := doc["schema_version"]; !ok {
		version, _ := json.Marshal(defaultSchemaVersion)
		doc["schema_version"] = version
	}
	updated, _ := json.Marshal(s.clock.Now().Format(time.RFC3339))
	doc["updated_at"] = updated
	itemsRaw, err := json.Marshal(encoded)
	if err != nil {
		return err
	}
	doc["items"] = itemsRaw

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}

	s.log.Debug("saved %d items to %s", len(items), s.path)
	return nil
}

// readRaw loads the file and normalizes both supported shapes to the
// entry list plus the wrapped document's top-level keys (items
// excluded). Unreadable content is treated as empty, matching the
// recoverable-by-default policy for stored data.
func (s *FileStore[T]) readRaw() ([]json.RawMessage, map[string]json.RawMessage, error) {
	doc := map[string]json.RawMessage{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, doc, nil
		}
		return nil, nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, doc, nil
	}

	// Legacy shape: a bare list of entries.
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("unreadable JSON in %s, treating as empty", s.path)
		return nil, map[string]json.RawMessage{}, nil
	}

	if itemsRaw, ok := doc["items"]; ok {
		if err := json.Unmarshal(itemsRaw, &entries); err != nil {
			s.log.Warn("items in %s is not a list, treating as empty", s.path)
			entries = nil
		}
	}
	delete(doc, "items")
	return entries, doc, nil
}
