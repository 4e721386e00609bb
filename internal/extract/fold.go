package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lowercases s and strips diacritics ("transferência" -> "transferencia").
// Keyword and canonical-term matching runs over folded text so that ASCII
// word-boundary patterns behave the same for accented and unaccented spelling.
// A fresh transform chain is built per call; chained transformers carry state
// and must not be shared across goroutines.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}
