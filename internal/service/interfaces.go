// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/leafmint/spendscan/internal/model"
)

// CategoryStore provides read access to the category catalog.
//
// GetCategories must return categories in a stable order across calls
// (id ascending); the scoring engine's tie-break depends on it.
type CategoryStore interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	CategoryStore

	// Category operations
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int, name, description string) error
	DeleteCategory(ctx context.Context, id int) error

	// Scan history
	SaveScan(ctx context.Context, scan *model.ScanRecord) error
	GetRecentScans(ctx context.Context, limit int) ([]model.ScanRecord, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// OCRResult carries the recognized text of one invoice image plus
// diagnostics about which ladder attempt produced it.
type OCRResult struct {
	ErrorMessage string
	UsedLanguage string
	UsedEngine   string
	Regions      []string
	ElapsedMS    int64
	AutoDetected bool
	Errored      bool
}

// Text joins all recognized regions into one string.
func (r OCRResult) Text() string {
	out := ""
	for _, region := range r.Regions {
		out += region
	}
	return out
}

// Recognizer converts invoice image bytes into text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, fileName, contentType string) (OCRResult, error)
}
