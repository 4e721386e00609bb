// Package docscan extracts transaction candidates from the text of bank
// statements and receipts. The input is plain text (one line per statement
// row, as produced by OCR or PDF text extraction); the heuristics are line
// oriented rather than grammatical.
package docscan

import (
	"regexp"
	"strings"

	"github.com/rbarros/finassist/internal/extract"
)

// Statement amounts always carry cents; that is what separates them from
// dates, document numbers and line indexes.
var amountRx = regexp.MustCompile(`-?\s*(?:R\$\s*)?(\d{1,3}(?:\.\d{3})*,\d{2})\b`)

var (
	skipLineRx = regexp.MustCompile(`(?i)^\s*(?:extrato|p[áa]gina|per[íi]odo|emiss[ãa]o|cpf|cnpj|ag[êe]ncia|conta\s|saldo\s+(?:anterior|final|do\s+dia)|data\s+(?:descri|hist[óo]r)|www\.|http)`)
	dateRx     = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)

	incomeHintRx  = regexp.MustCompile(`(?i)\b(?:recebid[oa]s?|recebimento|cr[ée]dito|dep[óo]sito|pix\s+recebido|ted\s+recebida|sal[áa]rio|rendimento|estorno|resgate)\b`)
	expenseHintRx = regexp.MustCompile(`(?i)\b(?:pagamento|pag[oa]s?|d[ée]bito|compra|pix\s+enviado|ted\s+enviada|tarifa|taxa|saque|cobran[çc]a|boleto|parcela)\b`)
)

// ScanText walks the document line by line and emits one candidate per
// amount found on a transaction line. A line without its own wording
// inherits the description of the previous transaction line (statements
// often wrap long descriptions onto a second line holding only the value).
func ScanText(text string) extract.SourceBatch {
	var batch extract.SourceBatch
	var lastDesc string

	lines := strings.Split(cleanText(text), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || skipLineRx.MatchString(line) {
			continue
		}

		ams := amountRx.FindAllStringSubmatch(line, -1)
		desc := lineDescription(line)
		if len(ams) == 0 {
			// A wording-only line opens a description that following
			// value-only lines inherit.
			if desc != "" {
				lastDesc = desc
			}
			continue
		}
		if desc == "" {
			desc = lastDesc
		} else {
			lastDesc = desc
		}
		if desc == "" {
			continue
		}

		dir := lineDirection(line, neighbor(lines, i-1), neighbor(lines, i+1))
		cat, _ := extract.DetectCategory(desc, "")

		for _, m := range ams {
			val, ok := extract.ParseAmount(m[1])
			if !ok || val <= 0 {
				continue
			}
			batch = append(batch, extract.Candidate{
				Direction:         dir,
				Amount:            val,
				Category:          cat,
				Description:       extract.Naturalize(dir, cat, desc),
				Currency:          extract.DefaultCurrency,
				Confidence:        0.7,
				NeedsConfirmation: true,
			})
		}
	}
	return extract.Dedup(batch)
}

// lineDirection decides the money flow from hints on the line itself, then
// its neighbors. An explicit minus sign on the amount wins; without any hint
// the candidate defaults to expense, the common case on card statements.
func lineDirection(line, prev, next string) extract.Direction {
	if m := amountRx.FindString(line); strings.HasPrefix(strings.TrimSpace(m), "-") {
		return extract.Expense
	}
	for _, l := range []string{line, prev, next} {
		if incomeHintRx.MatchString(l) {
			return extract.Income
		}
		if expenseHintRx.MatchString(l) {
			return extract.Expense
		}
	}
	return extract.Expense
}

func lineDescription(line string) string {
	s := amountRx.ReplaceAllString(line, " ")
	s = dateRx.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	return extract.CleanDescription(s)
}

func neighbor(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

// cleanText normalizes line endings and strips form-feed page breaks.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.ReplaceAll(text, "\f", "\n")
}
