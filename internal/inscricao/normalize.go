// Package inscricao holds the string rules for municipal property
// registration identifiers ("inscrição imobiliária"): the canonical form
// used for matching and the zero-padding correction of the last segment.
package inscricao

import "strings"

// punctuation maps en and em dashes to an ASCII hyphen and drops periods
// and spaces. None of the replacements can produce a new match, so a
// single pass is equivalent to applying the rules one after another.
var punctuation = strings.NewReplacer(
	"–", "-",
	"—", "-",
	".", "",
	" ", "",
)

// Normalize returns the canonical form of a raw identifier for equality
// comparison. A missing identifier ("") normalizes to "". Normalize is
// total and idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(punctuation.Replace(raw))
}
