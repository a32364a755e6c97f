package storage

import (
	"context"
	"fmt"

	"github.com/leafmint/spendscan/internal/model"
)

// SaveScan records the outcome of one invoice scan.
func (s *SQLiteStorage) SaveScan(ctx context.Context, scan *model.ScanRecord) error {
	if scan == nil {
		return fmt.Errorf("scan cannot be nil")
	}
	if scan.FileName == "" {
		return fmt.Errorf("scan file name cannot be empty")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO scans (file_name, parsed_text, category_id, category_name, confidence, elapsed_ms, used_language, used_engine)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.FileName, scan.ParsedText, scan.CategoryID, scan.CategoryName,
		scan.Confidence, scan.ElapsedMS, scan.UsedLanguage, scan.UsedEngine,
	)
	if err != nil {
		return fmt.Errorf("failed to save scan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get scan id: %w", err)
	}
	scan.ID = id
	return nil
}

// GetRecentScans returns the most recent scans, newest first.
func (s *SQLiteStorage) GetRecentScans(ctx context.Context, limit int) ([]model.ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, parsed_text, category_id, category_name, confidence, elapsed_ms, used_language, used_engine, created_at
		FROM scans
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var scans []model.ScanRecord
	for rows.Next() {
		var scan model.ScanRecord
		if err := rows.Scan(
			&scan.ID, &scan.FileName, &scan.ParsedText, &scan.CategoryID, &scan.CategoryName,
			&scan.Confidence, &scan.ElapsedMS, &scan.UsedLanguage, &scan.UsedEngine, &scan.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scans: %w", err)
	}

	return scans, nil
}
