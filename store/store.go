// Package store provides the persistence layer for content records.
// Two interchangeable backends exist: a flat-file JSON store for local
// installs and a SQLite store for the server. Callers must not rely on the
// listing order, which differs between the two.
package store

import (
	"context"

	"hymods/content"
)

// Fields carries a partial update. Nil pointers leave the field untouched.
// The download counter is deliberately absent: it only moves through
// IncrementDownloads, never through a general update.
type Fields struct {
	Name        *string
	Description *string
	Author      *string
	Version     *string
	ImageURL    *string
	DownloadURL *string
}

// Store is the full CRUD contract both backends satisfy identically.
type Store interface {
	// ListAll returns every record in a category. File-backed stores return
	// insertion order, the SQLite store returns newest first.
	ListAll(ctx context.Context, cat content.Category) ([]content.Record, error)

	// Create persists a new record. The store assigns the id and upload
	// timestamp and initializes the download counter to zero.
	Create(ctx context.Context, cat content.Category, rec content.Record) (content.Record, error)

	// Update applies a partial update and returns the updated record.
	// Returns content.ErrNotFound if the id does not exist.
	Update(ctx context.Context, cat content.Category, id string, fields Fields) (content.Record, error)

	// Delete removes a record, reporting whether anything was removed.
	Delete(ctx context.Context, cat content.Category, id string) (bool, error)

	// IncrementDownloads bumps the download counter by exactly one.
	// A missing id is a no-op, not an error.
	IncrementDownloads(ctx context.Context, cat content.Category, id string) error
}

func (f Fields) apply(rec *content.Record) {
	if f.Name != nil {
		rec.Name = *f.Name
	}
	if f.Description != nil {
		rec.Description = *f.Description
	}
	if f.Author != nil {
		rec.Author = *f.Author
	}
	if f.Version != nil {
		rec.Version = *f.Version
	}
	if f.ImageURL != nil {
		rec.ImageURL = *f.ImageURL
	}
	if f.DownloadURL != nil {
		rec.DownloadURL = *f.DownloadURL
	}
}
