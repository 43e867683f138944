package content

import (
	"fmt"
	"strings"
	"time"
)

// Category identifies one of the fixed content kinds.
type Category string

const (
	CategoryMods     Category = "mods"
	CategoryMaps     Category = "maps"
	CategoryPrefabs  Category = "prefabs"
	CategoryModpacks Category = "modpacks"
)

// Categories returns all known categories in display order.
func Categories() []Category {
	return []Category{CategoryMods, CategoryMaps, CategoryPrefabs, CategoryModpacks}
}

// ParseCategory validates a category name coming from user input or a URL.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid content type %q", s)
}

// Record represents one item of community content (a mod, map, prefab or modpack).
type Record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Version     string `json:"version"`
	ImageURL    string `json:"imageUrl,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Downloads   int64  `json:"downloads"`
	UploadedAt  string `json:"uploadedAt"` // RFC3339 timestamp, assigned by the store
}

// UploadedTime parses the upload timestamp. Records with a missing or
// malformed timestamp get the zero time so they sort as oldest.
func (r Record) UploadedTime() time.Time {
	if r.UploadedAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, r.UploadedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Validate checks the invariants enforced at the store boundary.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("record name must not be empty")
	}
	if r.Downloads < 0 {
		return fmt.Errorf("record %q has negative download count %d", r.Name, r.Downloads)
	}
	return nil
}

// Catalog is the full in-memory snapshot of every category's records.
// It is replaced wholesale on reload, never merged per category.
type Catalog map[Category][]Record

// Records returns the sequence for a category, or nil for an unknown one.
func (c Catalog) Records(cat Category) []Record {
	return c[cat]
}

// Total returns the number of records across all categories.
func (c Catalog) Total() int {
	n := 0
	for _, records := range c {
		n += len(records)
	}
	return n
}
