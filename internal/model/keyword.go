package model

import "time"

// WeightedKeyword pairs a normalized token with its discriminative weight.
// Tokens are matched as substrings of normalized invoice text.
type WeightedKeyword struct {
	Token  string
	Weight float64
}

// KeywordProfile is the weighted-keyword signature for one category.
// It is built once per cache refresh and never mutated afterward.
type KeywordProfile struct {
	Category Category
	Keywords []WeightedKeyword
}

// ProfileSnapshot is an immutable point-in-time view of all keyword
// profiles. Profiles preserves the category store's order (id ascending)
// so score tie-breaks are deterministic across runs.
type ProfileSnapshot struct {
	BuiltAt  time.Time
	Profiles []KeywordProfile
}
