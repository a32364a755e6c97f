// Package normalize folds invoice text into a canonical form for
// keyword matching: lower-case, no diacritics.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// đ/Đ do not decompose under NFD, so they need an explicit fold.
var replacer = strings.NewReplacer("đ", "d", "Đ", "d")

// Normalize lower-cases text and strips diacritical marks, leaving
// punctuation, digits, and whitespace untouched. It is idempotent and
// total: any input (including empty) yields a valid result.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Transform failures only occur on invalid UTF-8; fall back to
		// the raw input rather than dropping the text.
		folded = text
	}

	return strings.ToLower(replacer.Replace(folded))
}
