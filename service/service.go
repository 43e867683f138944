// Package service loads and caches the content catalog. It sits between a
// content source (flat-file store, SQLite store or the HTTP client) and the
// presentation layer, which only ever sees complete snapshots.
package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"hymods/content"
)

// ErrLoadInFlight is returned when LoadCatalog is called while a previous
// load is still running. Loads are single-flight to keep two concurrent
// loads from racing on the snapshot replace.
var ErrLoadInFlight = errors.New("catalog load already in progress")

// Source is the capability the service needs from a backend: bulk reads and
// the download counter. Both stores and the HTTP client satisfy it.
type Source interface {
	ListAll(ctx context.Context, cat content.Category) ([]content.Record, error)
	IncrementDownloads(ctx context.Context, cat content.Category, id string) error
}

// Service owns the last successfully loaded catalog snapshot.
type Service struct {
	source Source
	log    *zap.SugaredLogger

	mu      sync.Mutex
	catalog content.Catalog
	loading bool
}

// New creates a service over the given content source.
func New(source Source, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{source: source, log: log}
}

// LoadCatalog fetches all categories and replaces the cached snapshot in one
// assignment, but only if every category succeeded. On any failure the
// previous snapshot stays untouched and the aggregated LoadFailure names
// each failed category — stale-but-valid data beats a half-updated catalog.
func (s *Service) LoadCatalog(ctx context.Context) (content.Catalog, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, ErrLoadInFlight
	}
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	categories := content.Categories()
	results := make([]([]content.Record), len(categories))
	errs := make([]error, len(categories))

	var wg sync.WaitGroup
	for i, cat := range categories {
		wg.Add(1)
		go func(i int, cat content.Category) {
			defer wg.Done()
			records, err := s.source.ListAll(ctx, cat)
			if err != nil {
				s.log.Errorw("Failed to fetch category", zap.String("category", string(cat)), zap.Error(err))
				errs[i] = err
				return
			}
			results[i] = records
		}(i, cat)
	}
	wg.Wait()

	failure := &content.LoadFailure{Causes: map[content.Category]error{}}
	for i, err := range errs {
		if err != nil {
			failure.Causes[categories[i]] = err
		}
	}
	if len(failure.Causes) > 0 {
		return nil, failure
	}

	catalog := make(content.Catalog, len(categories))
	for i, cat := range categories {
		catalog[cat] = results[i]
	}

	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()

	s.log.Infow("Catalog loaded", zap.Int("records", catalog.Total()))
	return catalog, nil
}

// Catalog returns the last successfully loaded snapshot, or nil if no load
// has succeeded yet. Snapshots are never mutated after publication.
func (s *Service) Catalog() content.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// RecordDownload bumps a record's counter through the source. The cached
// snapshot is not touched; the caller patches its own copy by one or
// reloads, whichever keeps its view consistent.
func (s *Service) RecordDownload(ctx context.Context, cat content.Category, id string) error {
	return s.source.IncrementDownloads(ctx, cat, id)
}
