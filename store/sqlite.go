package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hymods/content"
)

// contentRow is the database shape of a content record. The id is only
// unique within its category, so the primary key spans both columns.
type contentRow struct {
	ID          string `gorm:"primaryKey"`
	Category    string `gorm:"primaryKey"`
	Name        string
	Description string
	Author      string
	Version     string
	ImageURL    string
	DownloadURL string
	Downloads   int64
	UploadedAt  time.Time `gorm:"index"`
}

func (contentRow) TableName() string {
	return "contents"
}

// SQLiteStore is the relational backend used by the server deployment.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens the SQLite database and migrates the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(gormlite.Open(dbPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&contentRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ListAll(ctx context.Context, cat content.Category) ([]content.Record, error) {
	var rows []contentRow
	result := s.db.WithContext(ctx).
		Where("category = ?", string(cat)).
		Order("uploaded_at DESC").
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list %s: %w", cat, result.Error)
	}

	records := make([]content.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

func (s *SQLiteStore) Create(ctx context.Context, cat content.Category, rec content.Record) (content.Record, error) {
	if err := rec.Validate(); err != nil {
		return content.Record{}, err
	}

	row := contentRow{
		ID:          uuid.NewString(),
		Category:    string(cat),
		Name:        rec.Name,
		Description: rec.Description,
		Author:      rec.Author,
		Version:     rec.Version,
		ImageURL:    rec.ImageURL,
		DownloadURL: rec.DownloadURL,
		Downloads:   0,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return content.Record{}, fmt.Errorf("failed to create %s record: %w", cat, err)
	}
	return row.toRecord(), nil
}

func (s *SQLiteStore) Update(ctx context.Context, cat content.Category, id string, fields Fields) (content.Record, error) {
	var row contentRow
	result := s.db.WithContext(ctx).
		Where("category = ? AND id = ?", string(cat), id).
		First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return content.Record{}, content.ErrNotFound
		}
		return content.Record{}, fmt.Errorf("failed to query %s record: %w", cat, result.Error)
	}

	rec := row.toRecord()
	fields.apply(&rec)
	if err := rec.Validate(); err != nil {
		return content.Record{}, err
	}

	row.Name = rec.Name
	row.Description = rec.Description
	row.Author = rec.Author
	row.Version = rec.Version
	row.ImageURL = rec.ImageURL
	row.DownloadURL = rec.DownloadURL
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return content.Record{}, fmt.Errorf("failed to update %s record: %w", cat, err)
	}
	return row.toRecord(), nil
}

func (s *SQLiteStore) Delete(ctx context.Context, cat content.Category, id string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("category = ? AND id = ?", string(cat), id).
		Delete(&contentRow{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete %s record: %w", cat, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *SQLiteStore) IncrementDownloads(ctx context.Context, cat content.Category, id string) error {
	// Single UPDATE so concurrent increments never lose a count.
	// A missing id simply affects zero rows.
	result := s.db.WithContext(ctx).
		Model(&contentRow{}).
		Where("category = ? AND id = ?", string(cat), id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment downloads for %s/%s: %w", cat, id, result.Error)
	}
	return nil
}

func (row contentRow) toRecord() content.Record {
	return content.Record{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Author:      row.Author,
		Version:     row.Version,
		ImageURL:    row.ImageURL,
		DownloadURL: row.DownloadURL,
		Downloads:   row.Downloads,
		UploadedAt:  row.UploadedAt.Format(time.RFC3339Nano),
	}
}
