package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hymods/content"
)

// fakeSource serves canned records per category and can be told to fail or
// block specific categories.
type fakeSource struct {
	mu         sync.Mutex
	records    map[content.Category][]content.Record
	failing    map[content.Category]error
	release    chan struct{} // when set, ListAll blocks until closed
	increments []string
}

func (f *fakeSource) ListAll(_ context.Context, cat content.Category) ([]content.Record, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[cat]; err != nil {
		return nil, err
	}
	return f.records[cat], nil
}

func (f *fakeSource) IncrementDownloads(_ context.Context, cat content.Category, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments = append(f.increments, fmt.Sprintf("%s/%s", cat, id))
	return nil
}

func TestLoadCatalogReplacesSnapshot(t *testing.T) {
	source := &fakeSource{records: map[content.Category][]content.Record{
		content.CategoryMods: {{ID: "1", Name: "Speed Mod"}},
		content.CategoryMaps: {{ID: "2", Name: "Arena"}},
	}}
	svc := New(source, nil)

	if svc.Catalog() != nil {
		t.Fatal("catalog should be nil before first load")
	}

	catalog, err := svc.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if catalog.Total() != 2 {
		t.Errorf("Total() = %d, want 2", catalog.Total())
	}
	for _, cat := range content.Categories() {
		if _, ok := catalog[cat]; !ok {
			t.Errorf("category %s missing from loaded catalog", cat)
		}
	}
	if svc.Catalog().Total() != 2 {
		t.Error("snapshot was not published")
	}
}

func TestLoadCatalogAllOrNothing(t *testing.T) {
	source := &fakeSource{records: map[content.Category][]content.Record{
		content.CategoryMods: {{ID: "1", Name: "Speed Mod"}},
	}}
	svc := New(source, nil)

	if _, err := svc.LoadCatalog(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	previous := svc.Catalog()

	source.mu.Lock()
	source.records[content.CategoryMods] = []content.Record{{ID: "1"}, {ID: "9"}}
	source.failing = map[content.Category]error{
		content.CategoryMaps: errors.New("connection refused"),
	}
	source.mu.Unlock()

	_, err := svc.LoadCatalog(context.Background())
	if err == nil {
		t.Fatal("expected LoadFailure when one category fails")
	}

	var failure *content.LoadFailure
	if !errors.As(err, &failure) {
		t.Fatalf("err = %T, want *content.LoadFailure", err)
	}
	cats := failure.FailedCategories()
	if len(cats) != 1 || cats[0] != content.CategoryMaps {
		t.Errorf("failed categories = %v, want [maps]", cats)
	}

	// The previous snapshot must be fully intact: no category was replaced.
	if got := svc.Catalog(); got.Total() != previous.Total() {
		t.Errorf("snapshot changed after failed load: %d records, want %d", got.Total(), previous.Total())
	}
	if len(svc.Catalog().Records(content.CategoryMods)) != 1 {
		t.Error("partial results leaked into the snapshot")
	}
}

func TestLoadCatalogSingleFlight(t *testing.T) {
	source := &fakeSource{
		records: map[content.Category][]content.Record{},
		release: make(chan struct{}),
	}
	svc := New(source, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.LoadCatalog(context.Background())
		done <- err
	}()

	// Wait for the first load to take the flight slot.
	deadline := time.After(2 * time.Second)
	for {
		svc.mu.Lock()
		loading := svc.loading
		svc.mu.Unlock()
		if loading {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first load never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := svc.LoadCatalog(context.Background()); err != ErrLoadInFlight {
		t.Errorf("second load err = %v, want ErrLoadInFlight", err)
	}

	close(source.release)
	if err := <-done; err != nil {
		t.Fatalf("first load failed: %v", err)
	}

	// The slot frees up once the load settles.
	source.release = nil
	if _, err := svc.LoadCatalog(context.Background()); err != nil {
		t.Errorf("load after completion failed: %v", err)
	}
}

func TestRecordDownloadDelegates(t *testing.T) {
	source := &fakeSource{records: map[content.Category][]content.Record{}}
	svc := New(source, nil)

	if err := svc.RecordDownload(context.Background(), content.CategoryMods, "42"); err != nil {
		t.Fatalf("RecordDownload: %v", err)
	}
	if len(source.increments) != 1 || source.increments[0] != "mods/42" {
		t.Errorf("increments = %v, want [mods/42]", source.increments)
	}

	// The cached snapshot is never touched by RecordDownload.
	if svc.Catalog() != nil {
		t.Error("RecordDownload mutated the snapshot")
	}
}
