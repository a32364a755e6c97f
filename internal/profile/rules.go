// Package profile builds and caches weighted-keyword profiles for
// spending categories.
package profile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leafmint/spendscan/internal/model"
	"github.com/leafmint/spendscan/internal/normalize"
)

// Rule associates category-name markers with a hand-curated keyword set.
// A rule applies when any marker is a substring of the normalized
// category name, or when MatchIncome is set and the category's type is
// income.
type Rule struct {
	Name        string                  `yaml:"name"`
	Markers     []string                `yaml:"markers"`
	Keywords    []model.WeightedKeyword `yaml:"keywords"`
	MatchIncome bool                    `yaml:"match_income"`
}

// RuleTable is an immutable set of keyword rules. Runtime keyword
// changes produce a whole new table (see Cache.SetRules), never an
// in-place edit.
type RuleTable struct {
	rules []Rule
}

// NewRuleTable builds a table from the given rules, normalizing all
// markers and keyword tokens.
func NewRuleTable(rules []Rule) *RuleTable {
	normalized := make([]Rule, len(rules))
	for i, rule := range rules {
		nr := Rule{
			Name:        rule.Name,
			MatchIncome: rule.MatchIncome,
			Markers:     make([]string, len(rule.Markers)),
			Keywords:    make([]model.WeightedKeyword, len(rule.Keywords)),
		}
		for j, m := range rule.Markers {
			nr.Markers[j] = normalize.Normalize(m)
		}
		for j, kw := range rule.Keywords {
			nr.Keywords[j] = model.WeightedKeyword{
				Token:  normalize.Normalize(kw.Token),
				Weight: kw.Weight,
			}
		}
		normalized[i] = nr
	}
	return &RuleTable{rules: normalized}
}

// ParseRules loads a rule table from YAML, for administrative reloads.
func ParseRules(data []byte) (*RuleTable, error) {
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse keyword rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("keyword rule file contains no rules")
	}
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if kw.Token == "" || kw.Weight <= 0 {
				return nil, fmt.Errorf("rule %q has invalid keyword %q (weight %v)", rule.Name, kw.Token, kw.Weight)
			}
		}
	}
	return NewRuleTable(rules), nil
}

// Rules returns a copy of the table's rules for display.
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// DefaultRules returns the built-in keyword rule table. Weights are
// hand-tuned per category family; see the classifier config for the
// score divisor they are calibrated against.
func DefaultRules() *RuleTable {
	return NewRuleTable([]Rule{
		{
			Name:    "food",
			Markers: []string{"an uong", "food", "do an"},
			Keywords: []model.WeightedKeyword{
				{Token: "an uong", Weight: 2.2},
				{Token: "nha hang", Weight: 2.0},
				{Token: "tra sua", Weight: 2.0},
				{Token: "ca phe", Weight: 1.8},
				{Token: "pho", Weight: 1.8},
				{Token: "restaurant", Weight: 1.8},
				{Token: "com", Weight: 1.5},
				{Token: "bun", Weight: 1.5},
				{Token: "cafe", Weight: 1.5},
				{Token: "food", Weight: 1.5},
				{Token: "quan", Weight: 1.2},
				{Token: "menu", Weight: 1.0},
			},
		},
		{
			Name:    "transport",
			Markers: []string{"di chuyen", "transport", "xe"},
			Keywords: []model.WeightedKeyword{
				{Token: "di chuyen", Weight: 2.2},
				{Token: "grab", Weight: 2.0},
				{Token: "taxi", Weight: 2.0},
				{Token: "xang", Weight: 2.0},
				{Token: "gui xe", Weight: 1.8},
				{Token: "ve xe", Weight: 1.8},
				{Token: "bus", Weight: 1.5},
				{Token: "tau", Weight: 1.2},
			},
		},
		{
			Name:    "utilities",
			Markers: []string{"dien nuoc", "hoa don", "utilit"},
			Keywords: []model.WeightedKeyword{
				{Token: "tien dien", Weight: 2.2},
				{Token: "tien nuoc", Weight: 2.2},
				{Token: "evn", Weight: 2.2},
				{Token: "dien", Weight: 2.0},
				{Token: "nuoc", Weight: 2.0},
				{Token: "internet", Weight: 1.8},
				{Token: "wifi", Weight: 1.5},
				{Token: "hoa don", Weight: 1.5},
			},
		},
		{
			Name:    "education",
			Markers: []string{"hoc", "giao duc", "education"},
			Keywords: []model.WeightedKeyword{
				{Token: "hoc phi", Weight: 2.2},
				{Token: "khoa hoc", Weight: 1.8},
				{Token: "truong", Weight: 1.5},
				{Token: "lop", Weight: 1.2},
				{Token: "sach", Weight: 1.2},
				{Token: "hoc", Weight: 1.0},
			},
		},
		{
			Name:        "salary",
			Markers:     []string{"luong", "salary", "thu nhap"},
			MatchIncome: true,
			Keywords: []model.WeightedKeyword{
				{Token: "chuyen khoan luong", Weight: 2.5},
				{Token: "luong", Weight: 2.2},
				{Token: "salary", Weight: 2.0},
				{Token: "thu nhap", Weight: 1.8},
				{Token: "thuong", Weight: 1.5},
			},
		},
		{
			Name:    "shopping",
			Markers: []string{"mua sam", "shopping"},
			Keywords: []model.WeightedKeyword{
				{Token: "shopee", Weight: 2.2},
				{Token: "lazada", Weight: 2.2},
				{Token: "tiki", Weight: 2.0},
				{Token: "sieu thi", Weight: 2.0},
				{Token: "cua hang", Weight: 1.5},
				{Token: "market", Weight: 1.2},
				{Token: "mua", Weight: 1.0},
			},
		},
		{
			Name:    "health",
			Markers: []string{"suc khoe", "y te", "health"},
			Keywords: []model.WeightedKeyword{
				{Token: "benh vien", Weight: 2.2},
				{Token: "nha thuoc", Weight: 2.2},
				{Token: "thuoc", Weight: 2.0},
				{Token: "kham", Weight: 1.8},
				{Token: "pharmacy", Weight: 1.8},
			},
		},
		{
			Name:    "entertainment",
			Markers: []string{"giai tri", "entertainment"},
			Keywords: []model.WeightedKeyword{
				{Token: "cgv", Weight: 2.2},
				{Token: "karaoke", Weight: 2.0},
				{Token: "phim", Weight: 2.0},
				{Token: "game", Weight: 1.5},
			},
		},
		{
			Name:    "housing",
			Markers: []string{"thue nha", "nha o", "housing"},
			Keywords: []model.WeightedKeyword{
				{Token: "thue nha", Weight: 2.5},
				{Token: "tien nha", Weight: 2.2},
				{Token: "phong tro", Weight: 2.0},
			},
		},
	})
}

// keywordsFor returns the first matching rule's keyword set for a
// category, or nil when no rule applies.
func (t *RuleTable) keywordsFor(cat model.Category) []model.WeightedKeyword {
	name := normalize.Normalize(cat.Name)
	for _, rule := range t.rules {
		if rule.applies(name, cat.Type) {
			return rule.Keywords
		}
	}
	return nil
}

func (r Rule) applies(normalizedName string, catType model.CategoryType) bool {
	for _, marker := range r.Markers {
		if marker != "" && strings.Contains(normalizedName, marker) {
			return true
		}
	}
	return r.MatchIncome && catType == model.CategoryTypeIncome
}
