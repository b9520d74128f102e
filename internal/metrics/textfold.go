package metrics

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold uppercases a value and strips diacritics so that markers like
// "LIGAÇÃO CLANDESTINA" also match the unaccented spellings that appear in
// older exports.
func fold(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(folded)
}
