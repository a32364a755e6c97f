// Package model defines the core domain models used throughout the application.
package model

// Prediction is the classifier's best guess for an invoice's category.
//
// Confidence is a bounded score in [0, 0.99], not a calibrated
// probability. A nil *Prediction means no profile cleared the
// acceptance threshold; callers never see a low-confidence guess.
type Prediction struct {
	CategoryName string
	CategoryID   int
	Confidence   float64
}
