package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rbarros/finassist/internal/extract"
)

const maxModelDescriptionWords = 6

// decodeRecords parses the model's JSON array into candidates. Malformed
// records are skipped, not fatal: one bad element must not discard the rest
// of an otherwise usable response.
func decodeRecords(clean string) (extract.SourceBatch, error) {
	var raw []map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal model JSON: %w", err)
	}

	batch := make(extract.SourceBatch, 0, len(raw))
	for _, rec := range raw {
		c, ok := candidateFromRecord(rec)
		if !ok {
			continue
		}
		batch = append(batch, c)
	}
	return extract.Dedup(batch), nil
}

func candidateFromRecord(rec map[string]interface{}) (extract.Candidate, bool) {
	dir, err := extract.ParseDirectionCode(getStringField(rec, "tipo"))
	if err != nil {
		return extract.Candidate{}, false
	}

	amount, ok := getAmountField(rec, "valor")
	if !ok || amount <= 0 {
		return extract.Candidate{}, false
	}

	category := strings.ToLower(strings.TrimSpace(getStringField(rec, "categoria")))
	if !extract.IsKnownCategory(category) {
		category = extract.CategoryUncertain
	}

	confidence := 0.9
	if category == extract.CategoryUncertain || category == extract.CategoryOther {
		confidence = 0.6
	}

	desc := strings.TrimSpace(getStringField(rec, "descricao"))
	if extract.NaturalScore(desc) < 2 {
		desc = extract.Naturalize(dir, category, desc)
	}
	desc = capWords(desc, maxModelDescriptionWords)

	return extract.Candidate{
		Direction:         dir,
		Amount:            amount,
		Category:          category,
		Description:       desc,
		Currency:          extract.DefaultCurrency,
		Confidence:        confidence,
		NeedsConfirmation: category == extract.CategoryOther || category == extract.CategoryUncertain || confidence < 0.9,
	}, true
}

// getStringField reads a string field from a generic JSON object, returning
// "" when missing or of another type.
func getStringField(rec map[string]interface{}, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

// getAmountField reads a numeric field, tolerating models that quote numbers
// or use the Brazilian format ("477,17").
func getAmountField(rec map[string]interface{}, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case string:
		return extract.ParseAmount(v)
	}
	return 0, false
}

func capWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ")
}

// cleanModelJSON strips Markdown fences and surrounding chatter when the
// model ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only the outermost array if junk remains around it.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
