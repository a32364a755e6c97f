// Package engine implements invoice classification: OCR text in,
// category prediction out.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leafmint/spendscan/internal/common"
	"github.com/leafmint/spendscan/internal/model"
	"github.com/leafmint/spendscan/internal/normalize"
	"github.com/leafmint/spendscan/internal/profile"
	"github.com/leafmint/spendscan/internal/service"
)

// ScanOutcome is the full result of classifying one invoice image: the
// raw OCR result (kept for display and auditing even when no category
// was predicted) plus the optional prediction.
type ScanOutcome struct {
	Prediction *model.Prediction
	OCR        service.OCRResult
}

// Engine orchestrates OCR recognition and keyword scoring.
type Engine struct {
	recognizer service.Recognizer
	profiles   *profile.Cache
	config     Config
}

// New creates a classification engine with the default scoring config.
func New(recognizer service.Recognizer, profiles *profile.Cache) *Engine {
	return NewWithConfig(recognizer, profiles, DefaultConfig())
}

// NewWithConfig creates a classification engine with custom scoring constants.
func NewWithConfig(recognizer service.Recognizer, profiles *profile.Cache, config Config) *Engine {
	if config.Divisor <= 0 {
		config.Divisor = DefaultConfig().Divisor
	}
	if config.Threshold <= 0 {
		config.Threshold = DefaultConfig().Threshold
	}
	return &Engine{
		recognizer: recognizer,
		profiles:   profiles,
		config:     config,
	}
}

// ClassifyInvoice runs the full pipeline on raw image bytes: OCR,
// normalization, scoring against the current profile snapshot.
//
// OCR failures (timeouts, provider errors) propagate as errors rather
// than being nullified into an absent prediction; the returned outcome
// still carries the raw OCR result for display. An empty but
// successful recognition is not an error and yields a nil prediction.
func (e *Engine) ClassifyInvoice(ctx context.Context, image []byte, fileName, contentType string) (ScanOutcome, error) {
	result, err := e.recognizer.Recognize(ctx, image, fileName, contentType)
	if err != nil {
		return ScanOutcome{OCR: result}, fmt.Errorf("recognition failed: %w", err)
	}

	outcome := ScanOutcome{OCR: result}

	if result.Errored {
		return outcome, common.NewUserError("the OCR provider could not process this image", fmt.Errorf("%s", result.ErrorMessage))
	}

	snapshot, err := e.profiles.Snapshot(ctx)
	if err != nil {
		return outcome, fmt.Errorf("failed to load keyword profiles: %w", err)
	}

	text := normalize.Normalize(result.Text())
	outcome.Prediction = Score(text, snapshot, e.config)

	if outcome.Prediction != nil {
		slog.Info("Classified invoice",
			"file", fileName,
			"category", outcome.Prediction.CategoryName,
			"confidence", outcome.Prediction.Confidence,
			"ocr_elapsed_ms", result.ElapsedMS)
	} else {
		slog.Info("No confident category for invoice",
			"file", fileName,
			"text_length", len(text),
			"ocr_elapsed_ms", result.ElapsedMS)
	}

	return outcome, nil
}
