package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseAmount converts a locale-formatted numeric literal into a value.
// Brazilian convention wins when ambiguous: a comma is the decimal separator
// and dots group thousands ("1.234,56"). Without a comma, dot-separated
// digit groups are read as thousands separators unless the final group has
// exactly two digits ("1.500" -> 1500, "1.50" -> 1.5).
// The boolean is false for unparseable input; that is not an error, it means
// "no amount here".
func ParseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if parts := strings.Split(s, "."); len(parts) > 1 {
		if allDigits(parts) && len(parts[len(parts)-1]) != 2 {
			s = strings.Join(parts, "")
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func allDigits(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

var hundredWords = map[string]float64{
	"cem": 100, "duzentos": 200, "trezentos": 300, "quatrocentos": 400,
	"quinhentos": 500, "seiscentos": 600, "setecentos": 700,
	"oitocentos": 800, "novecentos": 900,
}

var tenWords = map[string]float64{
	"dez": 10, "vinte": 20, "trinta": 30, "quarenta": 40, "cinquenta": 50,
	"sessenta": 60, "setenta": 70, "oitenta": 80, "noventa": 90,
}

var unitWords = map[string]float64{
	"um": 1, "uma": 1, "dois": 2, "duas": 2, "três": 3, "tres": 3,
	"quatro": 4, "cinco": 5, "seis": 6, "sete": 7, "oito": 8, "nove": 9,
}

func wordNumber(w string) (float64, bool) {
	wl := strings.ToLower(strings.TrimSpace(w))
	if v, ok := hundredWords[wl]; ok {
		return v, true
	}
	if v, ok := tenWords[wl]; ok {
		return v, true
	}
	if v, ok := unitWords[wl]; ok {
		return v, true
	}
	return 0, false
}

// remainderPat matches the "e <amount>" part after a magnitude word: a
// formatted number or a number-word.
const remainderPat = `\d{1,3}(?:[.\s]\d{3})*(?:,\d{2})|\d+[.,]\d{2}|\d+|[\p{L}]+`

var (
	millionTailRx  = regexp.MustCompile(`(?i)^\s*milh(?:[õo]es|[ãa]o(?:es)?|ao(?:es)?)\b(?:\s*e\s*(` + remainderPat + `))?`)
	thousandTailRx = regexp.MustCompile(`(?i)^\s*mil\b(?:\s*e\s*(` + remainderPat + `))?`)
)

// applyMagnitude multiplies base by a magnitude word ("mil", "milhões")
// standing at the start of tail, adding a trailing "e <amount>" remainder
// when present ("2" + " mil e 300" -> 2300).
func applyMagnitude(base float64, tail string) float64 {
	if m := millionTailRx.FindStringSubmatch(tail); m != nil {
		return base*1e6 + remainderValue(m[1])
	}
	if m := thousandTailRx.FindStringSubmatch(tail); m != nil {
		return base*1e3 + remainderValue(m[1])
	}
	return base
}

func remainderValue(raw string) float64 {
	if raw == "" {
		return 0
	}
	if v, ok := ParseAmount(raw); ok {
		return v
	}
	if v, ok := wordNumber(raw); ok {
		return v
	}
	return 0
}

var (
	magnitudeRx = regexp.MustCompile(`(?i)\b(\d+|[\p{L}]+)\s*(mil|milh[õo]es|milh[ãa]o(?:es)?)\b(?:\s*e\s*(` + remainderPat + `))?`)
	scanNumRx   = regexp.MustCompile(`(?i)(?:R?\$?\s*)?(\d{1,3}(?:[.\s]\d{3})*(?:,\d{2})|\d+[.,]\d{2}|\d+)\b`)
)

// scanAmounts extracts every monetary amount in the fragment, in order:
// first "<base> mil/milhões [e <remainder>]" patterns (digit or number-word
// base), then plain numerals. Numerals already consumed by a magnitude match
// are not counted again, and equal values are reported once.
func scanAmounts(tail string) []float64 {
	t := strings.TrimSpace(tail)
	if t == "" {
		return nil
	}
	var out []float64
	seen := make(map[string]struct{})
	type span struct{ lo, hi int }
	var consumed []span

	add := func(v float64) {
		key := fmt.Sprintf("%.6f", v)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}

	for _, m := range magnitudeRx.FindAllStringSubmatchIndex(t, -1) {
		baseRaw := t[m[2]:m[3]]
		base, ok := ParseAmount(baseRaw)
		if !ok {
			base, ok = wordNumber(baseRaw)
		}
		if !ok {
			continue
		}
		mult := 1e3
		if strings.HasPrefix(fold(t[m[4]:m[5]]), "milh") {
			mult = 1e6
		}
		var rem float64
		if m[6] >= 0 {
			rem = remainderValue(t[m[6]:m[7]])
		}
		add(base*mult + rem)
		consumed = append(consumed, span{m[0], m[1]})
	}

	for _, m := range scanNumRx.FindAllStringSubmatchIndex(t, -1) {
		inConsumed := false
		for _, s := range consumed {
			if m[2] >= s.lo && m[3] <= s.hi {
				inConsumed = true
				break
			}
		}
		if inConsumed {
			continue
		}
		v, ok := ParseAmount(t[m[2]:m[3]])
		if !ok {
			continue
		}
		add(applyMagnitude(v, t[m[3]:]))
	}
	return out
}

// ParsePhrase reads the first monetary amount from free text, including
// number-word magnitudes ("dois mil e quinhentos" -> 2500, "três milhões"
// -> 3000000). The boolean is false when the text holds no amount.
func ParsePhrase(text string) (float64, bool) {
	vals := scanAmounts(text)
	if len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}
