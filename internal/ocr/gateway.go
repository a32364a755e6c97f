package ocr

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leafmint/spendscan/internal/service"
)

// attempter is the seam between the ladder and a concrete provider
// client; one call is one recognition attempt.
type attempter interface {
	parse(ctx context.Context, image []byte, fileName, contentType, language, engine string) (service.OCRResult, error)
}

// Gateway executes the three-step fallback ladder against the
// recognition provider:
//
//  1. language eng, engine 2
//  2. language auto, engine 2
//  3. language auto, engine 1 (terminal, returned even when empty)
//
// Only a silent no-text result escalates to the next step. An explicit
// provider error is a substantive outcome and is returned as-is; a
// timeout aborts the ladder with an error. These are fixed design
// decisions, not tunables.
type Gateway struct {
	client attempter
}

// NewGateway wraps a provider client with the fallback ladder.
func NewGateway(client attempter) *Gateway {
	return &Gateway{client: client}
}

// Recognize runs the ladder and returns the first non-empty attempt's
// result, or the terminal attempt's result unconditionally.
func (g *Gateway) Recognize(ctx context.Context, image []byte, fileName, contentType string) (service.OCRResult, error) {
	if fileName == "" {
		fileName = DefaultFileName
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	steps := []struct {
		language string
		engine   string
		terminal bool
	}{
		{language: languageEnglish, engine: engineSecondary},
		{language: languageAuto, engine: engineSecondary},
		{language: languageAuto, engine: enginePrimary, terminal: true},
	}

	var result service.OCRResult
	for i, step := range steps {
		var err error
		result, err = g.client.parse(ctx, image, fileName, contentType, step.language, step.engine)
		if err != nil {
			return result, err
		}
		result.AutoDetected = step.language == languageAuto

		if result.Errored {
			slog.Warn("OCR attempt returned provider error",
				"attempt", i+1,
				"engine", step.engine,
				"message", result.ErrorMessage)
			return result, nil
		}
		if !isEmpty(result) || step.terminal {
			if i > 0 {
				slog.Debug("OCR fallback attempt used",
					"attempt", i+1,
					"engine", step.engine,
					"auto_language", result.AutoDetected)
			}
			return result, nil
		}
	}

	return result, nil
}

// isEmpty reports whether a non-errored result carries no text at all:
// every region blank after trimming.
func isEmpty(result service.OCRResult) bool {
	for _, region := range result.Regions {
		if strings.TrimSpace(region) != "" {
			return false
		}
	}
	return true
}
