package engine

import (
	"strings"

	"github.com/leafmint/spendscan/internal/model"
)

// maxConfidence caps predictions; a confidence of 1.0 is never claimed.
const maxConfidence = 0.99

// Config holds the tunable scoring constants. Divisor and Threshold are
// configuration values calibrated against the default keyword weights,
// not derived quantities.
type Config struct {
	// Divisor converts a raw keyword score into a confidence.
	Divisor float64
	// Threshold is the minimum confidence worth reporting; anything
	// below it becomes "no prediction".
	Threshold float64
}

// DefaultConfig returns the default scoring configuration.
func DefaultConfig() Config {
	return Config{
		Divisor:   8.0,
		Threshold: 0.2,
	}
}

// Score matches normalized invoice text against every profile in the
// snapshot and returns the winning category's prediction, or nil when
// no profile clears the threshold.
//
// Each keyword contributes its weight at most once regardless of how
// often its token occurs. Ties keep the first profile in snapshot
// order, which follows category id; the outcome is deterministic for a
// given snapshot.
func Score(normalizedText string, snapshot *model.ProfileSnapshot, cfg Config) *model.Prediction {
	if snapshot == nil || normalizedText == "" {
		return nil
	}

	var best *model.KeywordProfile
	bestScore := 0.0

	for i := range snapshot.Profiles {
		p := &snapshot.Profiles[i]
		raw := 0.0
		for _, kw := range p.Keywords {
			if kw.Token != "" && strings.Contains(normalizedText, kw.Token) {
				raw += kw.Weight
			}
		}
		if raw > bestScore {
			bestScore = raw
			best = p
		}
	}

	if best == nil {
		return nil
	}

	confidence := bestScore / cfg.Divisor
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	if confidence < cfg.Threshold {
		return nil
	}

	return &model.Prediction{
		CategoryID:   best.Category.ID,
		CategoryName: best.Category.Name,
		Confidence:   confidence,
	}
}
