package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hymods/config"
	"hymods/content"
	"hymods/logger"
	"hymods/store"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import category JSON files into the server database",
	Long: `Import content from flat JSON files into the SQLite store.
Example: hymods import ./data

The directory is scanned for mods.json, maps.json, prefabs.json and
modpacks.json; every record found is created in the database with a fresh
id and upload timestamp.`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
		}
		st := openSQLiteStore(cfg)

		imported, err := importContentFiles(st, args[0], logger.Log)
		if err != nil {
			logger.Log.Fatalw("Import failed", zap.Error(err))
		}
		fmt.Printf("Imported %d records from %s\n", imported, args[0])
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// importContentFiles reads each category's JSON file from dir, if present,
// and creates the records in the store. Missing files are skipped, a
// malformed file aborts the import.
func importContentFiles(st store.Store, dir string, log *zap.SugaredLogger) (int, error) {
	log.Infow("Scanning for content files...", zap.String("dir", dir))

	imported := 0
	for _, cat := range content.Categories() {
		path := filepath.Join(dir, string(cat)+".json")
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return imported, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var records []content.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return imported, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for _, rec := range records {
			created, err := st.Create(context.Background(), cat, rec)
			if err != nil {
				log.Warnw("Skipping invalid record",
					zap.String("category", string(cat)),
					zap.String("name", rec.Name),
					zap.Error(err),
				)
				continue
			}
			log.Infow("Imported record",
				zap.String("category", string(cat)),
				zap.String("name", created.Name),
				zap.String("id", created.ID),
			)
			imported++
		}
	}
	return imported, nil
}
