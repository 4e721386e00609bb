package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Anchor verbs and noun anchors that can open a clause. Only the true verbs
// terminate the previous clause: "recebi 1000 de salário" is one clause, the
// noun anchor must not cut it short.
var (
	clauseAnchorRx   = regexp.MustCompile(`(?i)\b(gastei|paguei|comprei|custou|recebi|ganhei|vendi|sal[áa]rio|freela|transferi)\b`)
	clauseBoundaryRx = regexp.MustCompile(`(?i)\b(?:gastei|paguei|comprei|custou|recebi|ganhei|vendi|transferi)\b`)
)

// Amount immediately following the anchor verb. Grouped thousands first so
// "1.200" is not split into "1" and "200".
const amountCore = `(\d{1,3}(?:[.\s]\d{3})+(?:,\d{2})?|\d+[.,]\d{2}|\d+)`

type verbFamily struct {
	dir        Direction
	verbRx     *regexp.Regexp
	amountRx   *regexp.Regexp
	leadPrepRx *regexp.Regexp
	// transfers carry no useful noun next to the amount, classify on the
	// whole clause instead of the stripped tail
	classifyClause bool
}

var families = []verbFamily{
	{
		dir:        Expense,
		verbRx:     regexp.MustCompile(`(?i)\b(gastei|paguei|comprei|custou)\b`),
		amountRx:   regexp.MustCompile(`^\s*(?:R\$\s*)?` + amountCore),
		leadPrepRx: regexp.MustCompile(`(?i)^\s*(?:em|no|na|de|com)\s+`),
	},
	{
		dir:        Income,
		verbRx:     regexp.MustCompile(`(?i)\b(recebi|ganhei|vendi|sal[áa]rio|freela)\b`),
		amountRx:   regexp.MustCompile(`^\s*(?:R\$\s*)?` + amountCore),
		leadPrepRx: regexp.MustCompile(`(?i)^\s*(?:de|do|da)\s+`),
	},
	{
		dir:            Expense,
		verbRx:         regexp.MustCompile(`(?i)\b(transferi|fiz(?:\s+uma)?\s+transfer[êe]ncia(?:\s+de)?)\b`),
		amountRx:       regexp.MustCompile(`^\s*(?:(?:de|do|da)\s+)?(?:R\$\s*)?` + amountCore),
		leadPrepRx:     regexp.MustCompile(`(?i)^\s*(?:para|pra)\s+`),
		classifyClause: true,
	},
}

var (
	clausePunctRx   = regexp.MustCompile(`[,;.\n]`)
	punctOnlyRx     = regexp.MustCompile(`[;.\n]`)
	currencyTailRx  = regexp.MustCompile(`(?i)^\s*(?:reais?|rs)\b`)
	danglingJoinRx  = regexp.MustCompile(`(?i)\s+e\s*$`)
	fallbackIncomes = map[string]struct{}{
		"recebi": {}, "ganhei": {}, "vendi": {}, "salario": {}, "freela": {},
	}
)

// ParseText runs the rule-based extractor over one informal statement and
// returns every transaction candidate it can anchor to a verb. Clauses are
// processed independently, so mixed statements ("gastei 50 no mercado e
// recebi 1000 de salário") yield one candidate per clause.
func ParseText(text string) []Candidate {
	t := NormalizeText(text)
	if strings.TrimSpace(t) == "" {
		return nil
	}
	bounds := wholeWordMatches(t, clauseBoundaryRx.FindAllStringIndex(t, -1))

	var out []Candidate
	matched := false
	for _, fam := range families {
		for _, vm := range wholeWordMatches(t, fam.verbRx.FindAllStringSubmatchIndex(t, -1)) {
			verb := t[vm[2]:vm[3]]
			rest := t[vm[1]:]
			am := fam.amountRx.FindStringSubmatchIndex(rest)
			if am == nil {
				continue
			}
			matched = true
			numEnd := vm[1] + am[3]
			val, ok := ParseAmount(t[vm[1]+am[2] : vm[1]+am[3]])
			if !ok {
				continue
			}

			clauseEnd := clauseEndAfter(t, numEnd, bounds)
			inner := t[numEnd:clauseEnd]
			val = applyMagnitude(val, inner)
			if val <= 0 {
				continue
			}

			tail := currencyTailRx.ReplaceAllString(inner, "")
			tail = fam.leadPrepRx.ReplaceAllString(tail, "")
			tail = strings.TrimSpace(danglingJoinRx.ReplaceAllString(tail, ""))
			descClean := CleanDescription(tail)

			context := strings.TrimSpace(danglingJoinRx.ReplaceAllString(t[vm[0]:clauseEnd], ""))
			classifyText := descClean
			if fam.classifyClause || classifyText == "" {
				classifyText = context
			}
			cat, conf := DetectCategory(classifyText, verb)
			desc := Naturalize(fam.dir, cat, context)
			out = append(out, newCandidate(fam.dir, val, cat, desc, conf))

			// Stray amounts between this clause and the next anchor
			// ("gastei 50, 30 e 20 no mercado") inherit the clause's
			// classification.
			outerEnd := nextAnchorStart(bounds, numEnd, len(t))
			for _, extra := range scanAmounts(t[clauseEnd:outerEnd]) {
				if extra <= 0 || extra == val {
					continue
				}
				out = append(out, newCandidate(fam.dir, extra, cat, desc, conf))
			}
		}
	}
	if matched {
		return out
	}
	return parseVerbOnly(t, wholeWordMatches(t, clauseAnchorRx.FindAllStringIndex(t, -1)))
}

// wholeWordMatches drops matches whose next rune is a letter. \b is
// ASCII-only and treats accented letters as boundaries, so "transferi" would
// otherwise match inside "transferência".
func wholeWordMatches(t string, ms [][]int) [][]int {
	out := ms[:0]
	for _, m := range ms {
		if r, _ := utf8.DecodeRuneInString(t[m[1]:]); unicode.IsLetter(r) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// parseVerbOnly handles statements where the amount does not follow the verb
// directly ("vendi uma calça por 50"): each anchored segment is scanned for
// any amount it contains.
func parseVerbOnly(t string, anchors [][]int) []Candidate {
	var out []Candidate
	for i, a := range anchors {
		verb := t[a[0]:a[1]]
		end := len(t)
		if i+1 < len(anchors) {
			end = anchors[i+1][0]
		}
		if p := punctOnlyRx.FindStringIndex(t[a[1]:end]); p != nil {
			end = a[1] + p[0]
		}
		vals := scanAmounts(t[a[1]:end])
		if len(vals) == 0 {
			continue
		}

		dir := Expense
		if _, ok := fallbackIncomes[fold(verb)]; ok {
			dir = Income
		}
		context := strings.TrimSpace(danglingJoinRx.ReplaceAllString(t[a[0]:end], ""))
		cat, conf := DetectCategory(context, verb)
		desc := Naturalize(dir, cat, context)
		for _, v := range vals {
			if v <= 0 {
				continue
			}
			out = append(out, newCandidate(dir, v, cat, desc, conf))
		}
	}
	return out
}

func clauseEndAfter(t string, pos int, anchors [][]int) int {
	end := len(t)
	if p := clausePunctRx.FindStringIndex(t[pos:]); p != nil {
		end = pos + p[0]
	}
	if na := nextAnchorStart(anchors, pos, len(t)); na < end {
		end = na
	}
	return end
}

func nextAnchorStart(anchors [][]int, pos, fallback int) int {
	for _, a := range anchors {
		if a[0] >= pos {
			return a[0]
		}
	}
	return fallback
}
