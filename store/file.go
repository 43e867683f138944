package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hymods/content"
)

// FileStore keeps one JSON array file per category under a data directory.
// Records keep their insertion order.
type FileStore struct {
	dir string

	// Serializes read-modify-write cycles within this process. A separate
	// writer process racing with us can still produce a torn read; the
	// temp-file-plus-rename write below is what keeps that window closed
	// for writes going through this store.
	mu sync.Mutex
}

// ResolveDataDir picks the data directory for the flat-file store.
// An explicit directory is created if missing; otherwise the candidates are
// tried in order and the first existing directory wins. If none exists the
// error names every checked path so the user can see what was tried.
func ResolveDataDir(explicit string, candidates []string) (string, error) {
	if explicit != "" {
		if err := os.MkdirAll(explicit, 0755); err != nil {
			return "", fmt.Errorf("failed to create data directory %q: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, dir := range candidates {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("no data directory found, checked: %s", strings.Join(candidates, ", "))
}

// NewFileStore opens a flat-file store rooted at dir, creating any missing
// category files as empty arrays.
func NewFileStore(dir string) (*FileStore, error) {
	s := &FileStore{dir: dir}
	for _, cat := range content.Categories() {
		path := s.categoryPath(cat)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if writeErr := writeAtomic(path, []byte("[]\n")); writeErr != nil {
				return nil, fmt.Errorf("failed to create %s: %w", path, writeErr)
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", path, err)
		}
	}
	return s, nil
}

// Dir returns the resolved data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) categoryPath(cat content.Category) string {
	return filepath.Join(s.dir, string(cat)+".json")
}

func (s *FileStore) ListAll(_ context.Context, cat content.Category) ([]content.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readCategory(cat)
}

func (s *FileStore) Create(_ context.Context, cat content.Category, rec content.Record) (content.Record, error) {
	if err := rec.Validate(); err != nil {
		return content.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readCategory(cat)
	if err != nil {
		return content.Record{}, err
	}

	rec.ID = uuid.NewString()
	rec.UploadedAt = time.Now().UTC().Format(time.RFC3339Nano)
	rec.Downloads = 0

	records = append(records, rec)
	if err := s.writeCategory(cat, records); err != nil {
		return content.Record{}, err
	}
	return rec, nil
}

func (s *FileStore) Update(_ context.Context, cat content.Category, id string, fields Fields) (content.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readCategory(cat)
	if err != nil {
		return content.Record{}, err
	}

	for i := range records {
		if records[i].ID != id {
			continue
		}
		fields.apply(&records[i])
		if err := records[i].Validate(); err != nil {
			return content.Record{}, err
		}
		if err := s.writeCategory(cat, records); err != nil {
			return content.Record{}, err
		}
		return records[i], nil
	}
	return content.Record{}, content.ErrNotFound
}

func (s *FileStore) Delete(_ context.Context, cat content.Category, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readCategory(cat)
	if err != nil {
		return false, err
	}

	kept := records[:0:0]
	for _, rec := range records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	if err := s.writeCategory(cat, kept); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) IncrementDownloads(_ context.Context, cat content.Category, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readCategory(cat)
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].ID == id {
			records[i].Downloads++
			return s.writeCategory(cat, records)
		}
	}
	// Absent ids are tolerated: the caller's catalog may be stale.
	return nil
}

func (s *FileStore) readCategory(cat content.Category) ([]content.Record, error) {
	path := s.categoryPath(cat)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []content.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []content.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid record in %s: %w", path, err)
		}
	}
	return records, nil
}

func (s *FileStore) writeCategory(cat content.Category, records []content.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s records: %w", cat, err)
	}
	return writeAtomic(s.categoryPath(cat), append(data, '\n'))
}

// writeAtomic writes to a temp file in the target directory and renames it
// into place, so a concurrent reader sees either the old or the new file,
// never a partial one.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
