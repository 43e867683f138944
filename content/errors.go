package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a record id does not exist in its category.
var ErrNotFound = errors.New("content not found")

// ErrLinkUnavailable is reported when a download is requested for a record
// that carries no download URL.
var ErrLinkUnavailable = errors.New("download link unavailable")

// LoadFailure aggregates the per-category errors of a catalog load.
// A load either replaces the whole catalog or fails with one of these.
type LoadFailure struct {
	Causes map[Category]error
}

func (e *LoadFailure) Error() string {
	parts := make([]string, 0, len(e.Causes))
	for _, cat := range e.FailedCategories() {
		parts = append(parts, fmt.Sprintf("%s: %v", cat, e.Causes[cat]))
	}
	return "failed to load catalog: " + strings.Join(parts, "; ")
}

// FailedCategories lists the categories that failed, in a stable order.
func (e *LoadFailure) FailedCategories() []Category {
	cats := make([]Category, 0, len(e.Causes))
	for cat := range e.Causes {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// Unwrap exposes the underlying causes to errors.Is / errors.As.
func (e *LoadFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Causes))
	for _, cat := range e.FailedCategories() {
		errs = append(errs, e.Causes[cat])
	}
	return errs
}
