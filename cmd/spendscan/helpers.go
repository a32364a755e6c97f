package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/leafmint/spendscan/internal/storage"
)

// openStorage opens the configured SQLite database.
func openStorage() (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "spendscan", "spendscan.db")
	}

	return storage.NewSQLiteStorage(dbPath)
}

// contentTypeFor maps an image file extension to its MIME type.
func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	default:
		return "image/jpeg"
	}
}
