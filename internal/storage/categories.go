package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leafmint/spendscan/internal/common"
	"github.com/leafmint/spendscan/internal/model"
)

// GetCategories returns all active categories ordered by id.
//
// The order is part of the contract: the profile snapshot inherits it,
// and scoring tie-breaks depend on it being stable across calls.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	query := `
		SELECT id, name, description, type, is_active, created_at
		FROM categories
		WHERE is_active = 1
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.Type, &cat.IsActive, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns an active category by its name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name cannot be empty")
	}

	query := `
		SELECT id, name, description, type, is_active, created_at
		FROM categories
		WHERE name = ? AND is_active = 1`

	var cat model.Category
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&cat.ID, &cat.Name, &cat.Description, &cat.Type, &cat.IsActive, &cat.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// GetCategoryByID returns a category by id.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	query := `
		SELECT id, name, description, type, is_active, created_at
		FROM categories
		WHERE id = ?`

	var cat model.Category
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&cat.ID, &cat.Name, &cat.Description, &cat.Type, &cat.IsActive, &cat.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// CreateCategory creates a new category, reactivating a soft-deleted
// one with the same name if it exists.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name cannot be empty")
	}
	if categoryType == "" {
		categoryType = model.CategoryTypeExpense
	}

	var existing model.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, type, is_active, created_at
		FROM categories WHERE name = ?`, name).Scan(
		&existing.ID, &existing.Name, &existing.Description, &existing.Type, &existing.IsActive, &existing.CreatedAt,
	)
	if err == nil {
		if existing.IsActive {
			return nil, fmt.Errorf("%w: category %q", common.ErrDuplicateEntry, name)
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE categories SET is_active = 1 WHERE id = ?`, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to reactivate category: %w", err)
		}
		existing.IsActive = true
		slog.Info("reactivated existing category", "name", name)
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, description, type)
		VALUES (?, ?, ?)`, name, description, string(categoryType))
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	slog.Info("created category", "name", name, "type", categoryType)
	return s.GetCategoryByID(ctx, int(id))
}

// UpdateCategory updates a category's name and description.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int, name, description string) error {
	if name == "" {
		return fmt.Errorf("category name cannot be empty")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, description = ?
		WHERE id = ? AND is_active = 1`, name, description, id)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	return nil
}

// DeleteCategory soft-deletes a category so historical scans keep their
// category reference.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET is_active = 0
		WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	return nil
}
