package view

import (
	"strings"
	"testing"

	"hymods/content"
)

func sampleCatalog() content.Catalog {
	return content.Catalog{
		content.CategoryMods: {
			{ID: "1", Name: "Speed Mod", Author: "Alice", Downloads: 5, UploadedAt: "2025-03-01T00:00:00Z"},
			{ID: "2", Name: "Map Pack", Author: "Bob", Downloads: 12, UploadedAt: "2025-01-01T00:00:00Z"},
		},
		content.CategoryMaps: {
			{ID: "10", Name: "Desert Arena", Author: "Cara", Description: "PvP arena", Downloads: 3},
		},
	}
}

func ids(records []content.Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.ID
	}
	return out
}

func equalIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyPopularFilter(t *testing.T) {
	state := State{Category: content.CategoryMods, Filter: FilterPopular}
	result := state.Apply(sampleCatalog())

	if !equalIDs(ids(result), "2", "1") {
		t.Errorf("popular order = %v, want [2 1]", ids(result))
	}

	for i := 1; i < len(result); i++ {
		if result[i-1].Downloads < result[i].Downloads {
			t.Errorf("result not sorted descending by downloads at %d", i)
		}
	}

	// Applying the same derivation again yields the same order.
	again := state.Apply(content.Catalog{content.CategoryMods: result})
	if !equalIDs(ids(again), ids(result)...) {
		t.Errorf("popular filter not idempotent: %v then %v", ids(result), ids(again))
	}
}

func TestApplyPopularStableTies(t *testing.T) {
	catalog := content.Catalog{
		content.CategoryMods: {
			{ID: "a", Name: "A", Downloads: 7},
			{ID: "b", Name: "B", Downloads: 7},
			{ID: "c", Name: "C", Downloads: 7},
		},
	}
	state := State{Category: content.CategoryMods, Filter: FilterPopular}
	result := state.Apply(catalog)
	if !equalIDs(ids(result), "a", "b", "c") {
		t.Errorf("tied records changed order: %v", ids(result))
	}
}

func TestApplyRecentFilter(t *testing.T) {
	catalog := content.Catalog{
		content.CategoryMods: {
			{ID: "old", Name: "Old", UploadedAt: "2024-01-01T00:00:00Z"},
			{ID: "broken", Name: "Broken", UploadedAt: "yesterday-ish"},
			{ID: "new", Name: "New", UploadedAt: "2025-08-01T00:00:00Z"},
			{ID: "missing", Name: "Missing"},
		},
	}
	state := State{Category: content.CategoryMods, Filter: FilterRecent}
	result := state.Apply(catalog)

	if !equalIDs(ids(result), "new", "old", "broken", "missing") {
		t.Errorf("recent order = %v, want [new old broken missing]", ids(result))
	}
}

func TestApplySearch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"matches name", "speed", []string{"1"}},
		{"case insensitive", "SPEED", []string{"1"}},
		{"matches author", "bob", []string{"2"}},
		{"no match", "xyzzy", []string{}},
		{"empty query keeps everything", "", []string{"1", "2"}},
		{"whitespace only keeps everything", "   ", []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := State{Category: content.CategoryMods, Filter: FilterAll, Query: tt.query}
			result := state.Apply(sampleCatalog())
			if !equalIDs(ids(result), tt.want...) {
				t.Errorf("Apply() = %v, want %v", ids(result), tt.want)
			}
		})
	}
}

func TestApplySearchContainment(t *testing.T) {
	// Every record in the result contains the query somewhere; every record
	// left out does not.
	catalog := sampleCatalog()
	state := State{Category: content.CategoryMods, Query: "a"}
	result := state.Apply(catalog)

	inResult := map[string]bool{}
	for _, rec := range result {
		inResult[rec.ID] = true
		if !containsQuery(rec, "a") {
			t.Errorf("record %s in result but does not contain query", rec.ID)
		}
	}
	for _, rec := range catalog.Records(content.CategoryMods) {
		if !inResult[rec.ID] && containsQuery(rec, "a") {
			t.Errorf("record %s contains query but was excluded", rec.ID)
		}
	}
}

func containsQuery(rec content.Record, query string) bool {
	return strings.Contains(strings.ToLower(rec.Name), query) ||
		strings.Contains(strings.ToLower(rec.Description), query) ||
		strings.Contains(strings.ToLower(rec.Author), query)
}

func TestApplySearchMatchesDescription(t *testing.T) {
	state := State{Category: content.CategoryMaps, Query: "pvp"}
	result := state.Apply(sampleCatalog())
	if !equalIDs(ids(result), "10") {
		t.Errorf("Apply() = %v, want [10]", ids(result))
	}
}

func TestApplyUnknownCategory(t *testing.T) {
	state := State{Category: content.Category("textures")}
	result := state.Apply(sampleCatalog())
	if len(result) != 0 {
		t.Errorf("unknown category returned %d records, want 0", len(result))
	}
}

func TestApplyDoesNotMutateCatalog(t *testing.T) {
	catalog := sampleCatalog()
	state := State{Category: content.CategoryMods, Filter: FilterPopular}
	state.Apply(catalog)

	if !equalIDs(ids(catalog.Records(content.CategoryMods)), "1", "2") {
		t.Errorf("catalog order changed by derivation: %v", ids(catalog.Records(content.CategoryMods)))
	}
}
