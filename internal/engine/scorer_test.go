package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafmint/spendscan/internal/model"
)

func snapshotOf(profiles ...model.KeywordProfile) *model.ProfileSnapshot {
	return &model.ProfileSnapshot{
		BuiltAt:  time.Now(),
		Profiles: profiles,
	}
}

func TestScoreNoMatchReturnsNil(t *testing.T) {
	snap := snapshotOf(model.KeywordProfile{
		Category: model.Category{ID: 1, Name: "Ăn uống"},
		Keywords: []model.WeightedKeyword{{Token: "pho", Weight: 2.0}},
	})

	assert.Nil(t, Score("thanh toan the tin dung", snap, DefaultConfig()),
		"zero total score must be absent, never a confidence-0 prediction")
	assert.Nil(t, Score("", snap, DefaultConfig()))
	assert.Nil(t, Score("pho bo", nil, DefaultConfig()))
}

func TestScoreConfidenceClamp(t *testing.T) {
	keywords := make([]model.WeightedKeyword, 0, 100)
	for i := 0; i < 100; i++ {
		keywords = append(keywords, model.WeightedKeyword{Token: "hoa don", Weight: 10.0})
	}
	snap := snapshotOf(model.KeywordProfile{
		Category: model.Category{ID: 1, Name: "Điện nước"},
		Keywords: keywords,
	})

	pred := Score("hoa don", snap, DefaultConfig())
	require.NotNil(t, pred)
	assert.Equal(t, 0.99, pred.Confidence, "confidence is clamped to 0.99 exactly")
}

func TestScoreBelowThresholdIsAbsent(t *testing.T) {
	snap := snapshotOf(model.KeywordProfile{
		Category: model.Category{ID: 1, Name: "Ăn uống"},
		Keywords: []model.WeightedKeyword{{Token: "quan", Weight: 1.0}},
	})

	// raw 1.0 / 8.0 = 0.125 < 0.2
	assert.Nil(t, Score("quan com", snap, DefaultConfig()))
}

func TestScoreKeywordCountsOnce(t *testing.T) {
	snap := snapshotOf(model.KeywordProfile{
		Category: model.Category{ID: 1, Name: "Điện nước"},
		Keywords: []model.WeightedKeyword{{Token: "dien", Weight: 2.0}},
	})

	pred := Score("dien dien dien dien", snap, DefaultConfig())
	require.NotNil(t, pred)
	assert.InDelta(t, 0.25, pred.Confidence, 1e-9, "repeated occurrences do not stack weight")
}

func TestScoreUtilitiesScenario(t *testing.T) {
	snap := snapshotOf(
		model.KeywordProfile{
			Category: model.Category{ID: 1, Name: "Ăn uống"},
			Keywords: []model.WeightedKeyword{{Token: "pho", Weight: 1.8}},
		},
		model.KeywordProfile{
			Category: model.Category{ID: 2, Name: "Điện nước"},
			Keywords: []model.WeightedKeyword{
				{Token: "dien", Weight: 2.0},
				{Token: "nuoc", Weight: 2.0},
			},
		},
	)

	pred := Score("hoa don dien nuoc", snap, DefaultConfig())
	require.NotNil(t, pred)
	assert.Equal(t, 2, pred.CategoryID)
	assert.Equal(t, "Điện nước", pred.CategoryName)
	assert.InDelta(t, 0.5, pred.Confidence, 1e-9, "(2.0+2.0)/8.0")
}

func TestScoreTieKeepsFirstProfile(t *testing.T) {
	shared := []model.WeightedKeyword{{Token: "hoa don", Weight: 2.0}}
	snap := snapshotOf(
		model.KeywordProfile{Category: model.Category{ID: 1, Name: "First"}, Keywords: shared},
		model.KeywordProfile{Category: model.Category{ID: 2, Name: "Second"}, Keywords: shared},
	)

	for i := 0; i < 10; i++ {
		pred := Score("hoa don thang 3", snap, DefaultConfig())
		require.NotNil(t, pred)
		assert.Equal(t, 1, pred.CategoryID, "ties keep the first-seen profile on every run")
	}
}

func TestScoreCustomConfig(t *testing.T) {
	snap := snapshotOf(model.KeywordProfile{
		Category: model.Category{ID: 1, Name: "Ăn uống"},
		Keywords: []model.WeightedKeyword{{Token: "pho", Weight: 1.0}},
	})

	// With a divisor of 2 the same raw score clears the default threshold.
	pred := Score("pho ga", snap, Config{Divisor: 2.0, Threshold: 0.2})
	require.NotNil(t, pred)
	assert.InDelta(t, 0.5, pred.Confidence, 1e-9)
}
