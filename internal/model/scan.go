package model

import "time"

// ScanRecord is the stored outcome of one invoice scan, kept for
// auditing and display. Prediction fields are nil when no category
// cleared the acceptance threshold.
type ScanRecord struct {
	CreatedAt    time.Time
	FileName     string
	ParsedText   string
	CategoryName *string
	Confidence   *float64
	CategoryID   *int
	ElapsedMS    int64
	ID           int64
	UsedEngine   string
	UsedLanguage string
}
