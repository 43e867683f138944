package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"hymods/content"
	"hymods/store"
)

// memStore collects created records for import tests.
type memStore struct {
	created map[content.Category][]content.Record
}

func (m *memStore) ListAll(_ context.Context, cat content.Category) ([]content.Record, error) {
	return m.created[cat], nil
}

func (m *memStore) Create(_ context.Context, cat content.Category, rec content.Record) (content.Record, error) {
	if err := rec.Validate(); err != nil {
		return content.Record{}, err
	}
	rec.ID = "assigned"
	m.created[cat] = append(m.created[cat], rec)
	return rec, nil
}

func (m *memStore) Update(_ context.Context, _ content.Category, _ string, _ store.Fields) (content.Record, error) {
	return content.Record{}, content.ErrNotFound
}

func (m *memStore) Delete(_ context.Context, _ content.Category, _ string) (bool, error) {
	return false, nil
}

func (m *memStore) IncrementDownloads(_ context.Context, _ content.Category, _ string) error {
	return nil
}

func TestImportContentFiles(t *testing.T) {
	dir := t.TempDir()
	modsJSON := `[
		{"id": "old-id", "name": "Speed Mod", "author": "Alice", "downloads": 5},
		{"name": "", "author": "Nobody"},
		{"name": "Night Vision", "author": "Bob"}
	]`
	if err := os.WriteFile(filepath.Join(dir, "mods.json"), []byte(modsJSON), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "maps.json"), []byte(`[{"name": "Arena"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	st := &memStore{created: map[content.Category][]content.Record{}}
	imported, err := importContentFiles(st, dir, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("importContentFiles: %v", err)
	}

	// The blank-named record is skipped, everything else lands.
	if imported != 3 {
		t.Errorf("imported = %d, want 3", imported)
	}
	if len(st.created[content.CategoryMods]) != 2 {
		t.Errorf("mods created = %d, want 2", len(st.created[content.CategoryMods]))
	}
	if len(st.created[content.CategoryMaps]) != 1 {
		t.Errorf("maps created = %d, want 1", len(st.created[content.CategoryMaps]))
	}
}

func TestImportContentFilesMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "prefabs.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	st := &memStore{created: map[content.Category][]content.Record{}}
	if _, err := importContentFiles(st, dir, zap.NewNop().Sugar()); err == nil {
		t.Error("expected error for malformed category file")
	}
}

func TestImportContentFilesEmptyDir(t *testing.T) {
	st := &memStore{created: map[content.Category][]content.Record{}}
	imported, err := importContentFiles(st, t.TempDir(), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("importContentFiles: %v", err)
	}
	if imported != 0 {
		t.Errorf("imported = %d, want 0", imported)
	}
}
