package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Price/number tokens left over inside a description after extraction.
var priceTokenRx = regexp.MustCompile(`(?i)\b(?:por\s+)?(?:R\$\s*)?\d+(?:[.,]\d+)*\s*(?:reais?|rs)?\b`)

// Possessive pronouns add nothing to a ledger entry.
var possessiveRx = regexp.MustCompile(`(?i)\b(?:meu|minha|meus|minhas|seu|sua|seus|suas)\b`)

// "de da prima" and similar doubled prepositions appear once the amount
// between them is removed.
var doubledPrepRx = regexp.MustCompile(`(?i)\bde\s+(d[ao]s?|para|pra)(\s|$)`)

var (
	trailingPrepRx = regexp.MustCompile(`(?i)\s+(?:de|da|do|das|dos|para|pra|em|no|na|com|e)$`)
	leadingJoinRx  = regexp.MustCompile(`(?i)^(?:de|da|do|das|dos|para|pra|em|no|na|com)\s+`)
	locativePrepRx = regexp.MustCompile(`(?i)^(?:em|no|na)\s+`)
	spacesRx       = regexp.MustCompile(`\s+`)
)

// Stem matchers run against the original (accented) text so that tail slices
// keep their spelling.
var (
	saleWordRx     = regexp.MustCompile(`(?i)\bvend\p{L}*`)
	transferWordRx = regexp.MustCompile(`(?i)\btransfer\p{L}*`)
	expenseRootRx  = regexp.MustCompile(`(?i)\b(?:gast|pag|compr|cust)\p{L}*`)
)

// canonExpense maps a folded keyword to the display title it canonicalizes
// to. Ordered: more specific entries first (supermercado before mercado).
var canonExpense = []struct {
	rx      *regexp.Regexp
	display string
}{
	{regexp.MustCompile(`\bsupermercado\b`), "Supermercado"},
	{regexp.MustCompile(`\bmercado\b`), "Mercado"},
	{regexp.MustCompile(`\blanches?\b`), "Lanche"},
	{regexp.MustCompile(`\bpizza\b`), "Pizza"},
	{regexp.MustCompile(`\bfarmacia\b`), "Farmácia"},
	{regexp.MustCompile(`\brestaurante\b`), "Restaurante"},
	{regexp.MustCompile(`\bpadaria\b`), "Padaria"},
	{regexp.MustCompile(`\buber\b`), "Uber"},
	{regexp.MustCompile(`\bgasolina\b`), "Gasolina"},
	{regexp.MustCompile(`\bnetflix\b`), "Netflix"},
	{regexp.MustCompile(`\bspotify\b`), "Spotify"},
	{regexp.MustCompile(`\bassinatura\b`), "Assinatura"},
	{regexp.MustCompile(`\binternet\b`), "Internet"},
	{regexp.MustCompile(`\btelefonia\b`), "Telefonia"},
	{regexp.MustCompile(`\baluguel\b`), "Aluguel"},
	{regexp.MustCompile(`\bcondominio\b`), "Condomínio"},
	{regexp.MustCompile(`\benergia\b`), "Energia"},
	{regexp.MustCompile(`\bagua\b`), "Água"},
	{regexp.MustCompile(`\bluz\b`), "Luz"},
	{regexp.MustCompile(`\bestacionamento\b`), "Estacionamento"},
	{regexp.MustCompile(`\bonibus\b`), "Ônibus"},
	{regexp.MustCompile(`\bmetro\b`), "Metrô"},
	{regexp.MustCompile(`\btaxi\b`), "Táxi"},
	{regexp.MustCompile(`\bpedagio\b`), "Pedágio"},
}

var naturalShapeRxs = []*regexp.Regexp{
	regexp.MustCompile(`(?:ganhos?|gastos?)\s+com`),
	regexp.MustCompile(`receitas?\s+(?:de|do|da)`),
}

// NaturalScore rates how ledger-ready a description already reads. 2 means
// the text follows one of the canonical shapes and should win dedup
// tie-breaks; everything else scores 1.
func NaturalScore(s string) int {
	t := fold(strings.TrimSpace(s))
	switch t {
	case "despesa", "receita", "salario":
		return 2
	}
	for _, rx := range naturalShapeRxs {
		if rx.MatchString(t) {
			return 2
		}
	}
	return 1
}

// Naturalize rewrites a raw clause fragment into a short human-readable
// ledger description ("Mercado", "Venda de calça", "Transferência da prima").
// It never returns an empty string.
func Naturalize(dir Direction, category, desc string) string {
	d := CleanDescription(NormalizeText(desc))
	d = priceTokenRx.ReplaceAllString(d, " ")
	d = possessiveRx.ReplaceAllString(d, " ")
	d = tidyPhrase(d)

	if isDegenerate(d) {
		if dir == Income {
			if category == CategorySalary {
				return "Salário"
			}
			return "Receita"
		}
		return "Despesa"
	}

	dl := fold(d)
	if dir == Income {
		return naturalizeIncome(category, d, dl)
	}
	return naturalizeExpense(d, dl)
}

func naturalizeIncome(category, d, dl string) string {
	if loc := saleWordRx.FindStringIndex(d); loc != nil {
		tail := tidyPhrase(stripArticles(d[loc[1]:]))
		tail = tidyPhrase(leadingJoinRx.ReplaceAllString(tail, ""))
		if tail != "" {
			return "Venda de " + strings.ToLower(tail)
		}
		return "Vendas"
	}
	if loc := transferWordRx.FindStringIndex(d); loc != nil {
		// Keep the source preposition ("da prima") but drop locative ones.
		tail := tidyPhrase(d[loc[1]:])
		tail = tidyPhrase(locativePrepRx.ReplaceAllString(tail, ""))
		if tail != "" {
			return "Transferência " + strings.ToLower(tail)
		}
		return "Transferência"
	}
	if strings.Contains(dl, "pix") {
		return "Pix recebido"
	}
	if strings.Contains(dl, "deposito") {
		return "Depósito"
	}
	if strings.Contains(dl, "freela") {
		return "Freela"
	}
	if category == CategorySalary || salaryTermRx.MatchString(dl) {
		switch {
		case strings.Contains(dl, "semanal") || strings.Contains(dl, "semana"):
			return "Salário semanal"
		case strings.Contains(dl, "mensal") || strings.Contains(dl, "mensais"):
			return "Salário mensal"
		}
		return "Salário"
	}
	if strings.Contains(dl, "aposta") {
		return "Ganhos com apostas"
	}
	if category == CategorySales {
		return "Vendas"
	}
	if t := shortTitle(d); t != "" {
		return t
	}
	return "Receita"
}

func naturalizeExpense(d, dl string) string {
	for _, entry := range canonExpense {
		if entry.rx.MatchString(dl) {
			return entry.display
		}
	}
	if loc := transferWordRx.FindStringIndex(d); loc != nil {
		tail := tidyPhrase(d[loc[1]:])
		tail = tidyPhrase(leadingJoinRx.ReplaceAllString(tail, ""))
		if tail != "" {
			return "Transferência para " + strings.ToLower(tail)
		}
		return "Transferência"
	}
	if strings.Contains(dl, "pix") {
		return "Pix"
	}
	if loc := expenseRootRx.FindStringIndex(d); loc != nil {
		tail := tidyPhrase(leadingJoinRx.ReplaceAllString(tidyPhrase(d[loc[1]:]), ""))
		if tail != "" {
			return "Gastos com " + strings.ToLower(tail)
		}
	}
	if strings.HasPrefix(dl, "com ") {
		return "Gastos " + strings.ToLower(d)
	}
	if t := shortTitle(d); t != "" {
		return t
	}
	return "Despesa"
}

// stripArticles drops article tokens whole. Regexp word boundaries are
// ASCII-only, so `\ba\b` would also match the final "a" of "calça".
func stripArticles(s string) string {
	var out []string
	for _, w := range strings.Fields(s) {
		switch fold(w) {
		case "um", "uma", "uns", "umas", "o", "a", "os", "as":
		default:
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

// tidyPhrase collapses whitespace, fixes doubled prepositions left by amount
// removal and trims dangling connectives from both ends.
func tidyPhrase(s string) string {
	s = doubledPrepRx.ReplaceAllString(s, "$1$2")
	s = strings.TrimSpace(spacesRx.ReplaceAllString(s, " "))
	for {
		next := trailingPrepRx.ReplaceAllString(s, "")
		if next == s {
			return s
		}
		s = next
	}
}

func isDegenerate(s string) bool {
	if s == "" {
		return true
	}
	for _, w := range strings.Fields(fold(s)) {
		switch w {
		case "de", "da", "do", "das", "dos", "para", "pra", "em", "no", "na",
			"com", "e", "um", "uma", "o", "a", "os", "as":
		default:
			return false
		}
	}
	return true
}

var numberTokenRx = regexp.MustCompile(`^\d+(?:[.,]\d+)*$`)

// shortTitle picks the first three distinct content words and title-cases
// them.
func shortTitle(s string) string {
	caser := cases.Title(language.BrazilianPortuguese)
	seen := map[string]struct{}{}
	var out []string
	for _, w := range strings.Fields(s) {
		fw := fold(w)
		if fw == "por" || fw == "r$" || fw == "reais" || fw == "rs" || numberTokenRx.MatchString(fw) {
			continue
		}
		if _, ok := seen[fw]; ok {
			continue
		}
		seen[fw] = struct{}{}
		out = append(out, caser.String(w))
		if len(out) == 3 {
			break
		}
	}
	return strings.Join(out, " ")
}
