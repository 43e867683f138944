// Package view derives the rendered record sequence from a catalog snapshot
// and the current tab, filter and search state. Derivation is a pure
// function and is recomputed in full on every state change; catalogs are
// small enough that incremental diffing would buy nothing.
package view

import (
	"sort"
	"strings"

	"hymods/content"
)

// Filter selects the ordering applied after the text search.
type Filter string

const (
	FilterAll     Filter = "all"     // catalog order as returned by the store
	FilterPopular Filter = "popular" // most downloads first
	FilterRecent  Filter = "recent"  // newest uploads first
)

// State is the transient view state owned by the browser. The filter and
// search query deliberately persist across tab switches.
type State struct {
	Category content.Category
	Filter   Filter
	Query    string
}

// Apply derives the exact ordered sequence of records to render.
// Unknown categories yield an empty result, never an error.
func (s State) Apply(catalog content.Catalog) []content.Record {
	records := catalog.Records(s.Category)

	result := make([]content.Record, 0, len(records))
	query := strings.ToLower(strings.TrimSpace(s.Query))
	for _, rec := range records {
		if query == "" || matches(rec, query) {
			result = append(result, rec)
		}
	}

	switch s.Filter {
	case FilterPopular:
		// Stable keeps ties in their prior relative order.
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Downloads > result[j].Downloads
		})
	case FilterRecent:
		// Unparseable timestamps parse to the zero time and sort last.
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].UploadedTime().After(result[j].UploadedTime())
		})
	}

	return result
}

// matches reports whether the record contains the lowercased query in its
// name, description or author.
func matches(rec content.Record, query string) bool {
	return strings.Contains(strings.ToLower(rec.Name), query) ||
		strings.Contains(strings.ToLower(rec.Description), query) ||
		strings.Contains(strings.ToLower(rec.Author), query)
}
