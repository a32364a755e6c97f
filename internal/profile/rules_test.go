package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafmint/spendscan/internal/model"
)

func TestParseRules(t *testing.T) {
	data := []byte(`
- name: food
  markers: ["ăn uống"]
  keywords:
    - token: "bánh mì"
      weight: 2.0
    - token: com
      weight: 1.5
- name: salary
  match_income: true
  keywords:
    - token: luong
      weight: 2.2
`)

	table, err := ParseRules(data)
	require.NoError(t, err)

	rules := table.Rules()
	require.Len(t, rules, 2)

	// Markers and tokens come out normalized.
	assert.Equal(t, []string{"an uong"}, rules[0].Markers)
	assert.Equal(t, "banh mi", rules[0].Keywords[0].Token)
	assert.True(t, rules[1].MatchIncome)
}

func TestParseRulesRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty document", data: ""},
		{name: "not yaml", data: "{{{"},
		{
			name: "zero weight",
			data: "- name: bad\n  keywords:\n    - token: x\n      weight: 0\n",
		},
		{
			name: "empty token",
			data: "- name: bad\n  keywords:\n    - token: \"\"\n      weight: 1.0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestKeywordsForFirstMatchWins(t *testing.T) {
	table := NewRuleTable([]Rule{
		{Name: "first", Markers: []string{"an"}, Keywords: []model.WeightedKeyword{{Token: "a", Weight: 1}}},
		{Name: "second", Markers: []string{"an uong"}, Keywords: []model.WeightedKeyword{{Token: "b", Weight: 1}}},
	})

	keywords := table.keywordsFor(model.Category{Name: "Ăn uống"})
	require.Len(t, keywords, 1)
	assert.Equal(t, "a", keywords[0].Token)
}
