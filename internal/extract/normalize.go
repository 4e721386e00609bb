package extract

import (
	"regexp"
	"strings"
)

// typoFixes maps frequent misspellings of the anchor verbs (and a few common
// words around them) to their canonical spelling. Tuned against observed user
// input, not derived from any general speller.
var typoFixes = map[string]string{
	"gnahei":    "ganhei",
	"gnhei":     "ganhei",
	"gnh":       "ganhei",
	"gnahe":     "ganhei",
	"ganhe":     "ganhei",
	"vnedi":     "vendi",
	"gostei":    "gastei",
	"gaste":     "gastei",
	"gastai":    "gastei",
	"gasti":     "gastei",
	"gaxtei":    "gastei",
	"pagei":     "paguei",
	"pague":     "paguei",
	"conprei":   "comprei",
	"comprie":   "comprei",
	"recbi":     "recebi",
	"receby":    "recebi",
	"vendy":     "vendi",
	"tyambém":   "também",
	"tambem":    "também",
	"apo":       "após",
	"apó":       "após",
	"apos":      "após",
	"semanl":    "semanal",
	"ocm":       "com",
	"aqilo":     "aquilo",
	"auqilo":    "aquilo",
	"compranod": "comprando",
	"comprndo":  "comprando",
	"comrpando": "comprando",
}

// fillerWords are discourse and temporal fillers dropped before matching.
var fillerWords = map[string]struct{}{
	"depois": {}, "após": {}, "apos": {}, "apo": {}, "apó": {},
	"mais": {}, "também": {}, "tambem": {}, "tyambém": {},
	"hoje": {}, "amanha": {}, "amanhã": {}, "ontem": {},
	"disso": {}, "isso": {}, "eh": {}, "é": {}, "ai": {}, "aí": {},
	"tipo": {}, "né": {},
}

var repeatedCurrencyRx = regexp.MustCompile(`(?:R\$\s*){2,}`)

// NormalizeText cleans raw user text: it drops filler tokens, fixes known
// typos and collapses repeated currency markers. Unknown tokens pass through
// unchanged; the function never fails.
func NormalizeText(text string) string {
	parts := strings.Fields(text)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		k := strings.ToLower(p)
		if _, skip := fillerWords[k]; skip {
			continue
		}
		if fixed, ok := typoFixes[k]; ok {
			out = append(out, fixed)
			continue
		}
		out = append(out, p)
	}
	return repeatedCurrencyRx.ReplaceAllString(strings.Join(out, " "), "R$ ")
}

var (
	leadingTemporalRx = regexp.MustCompile(`(?i)^(?:hoje|amanha|amanhã|ontem)\s+`)
	leadingPrepRx     = regexp.MustCompile(`(?i)^(?:em|no|na|de|do|da|para|pra|por|me)\s+`)
	leadingFlowRx     = regexp.MustCompile(`(?i)^(?:ganhos?|gastos?|receitas?|receita)\s+(?:com|de|do|da)\s+`)
	currencyMarkRx    = regexp.MustCompile(`(?i)\bR\$\s*`)
	currencyWordRx    = regexp.MustCompile(`(?i)\b(?:reais?|rs)\b`)
)

// CleanDescription strips leading temporal/prepositional tokens and currency
// noise from a raw description fragment. Shared by the extractor, the
// canonicalizer and the document scanner.
func CleanDescription(s string) string {
	t := strings.TrimSpace(s)
	t = leadingTemporalRx.ReplaceAllString(t, "")
	t = leadingPrepRx.ReplaceAllString(t, "")
	t = leadingFlowRx.ReplaceAllString(t, "")
	t = currencyMarkRx.ReplaceAllString(t, "")
	t = currencyWordRx.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}
