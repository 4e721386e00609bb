package extract

import (
	"math"
	"strings"
)

const maxDescriptionWords = 8

type dedupKey struct {
	dir      Direction
	cents    int64
	category string
}

// Dedup collapses candidates that describe the same transaction: same
// direction, same amount to the cent, same category. Within a group the most
// natural-sounding description wins, then the shorter one, then the earliest.
// Output order follows first appearance, and the function is idempotent.
func Dedup(cands []Candidate) []Candidate {
	var order []dedupKey
	best := make(map[dedupKey]Candidate)

	for _, c := range cands {
		if c.Amount <= 0 {
			continue
		}
		c = sanitize(c)
		key := dedupKey{c.Direction, int64(math.Round(c.Amount * 100)), c.Category}
		cur, ok := best[key]
		if !ok {
			best[key] = c
			order = append(order, key)
			continue
		}
		if betterDescription(c, cur) {
			best[key] = c
		}
	}

	out := make([]Candidate, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// Reconcile merges candidate batches coming from different extraction
// sources. Batch order fixes precedence: earlier batches win ties.
func Reconcile(batches ...SourceBatch) []Candidate {
	var all []Candidate
	for _, b := range batches {
		all = append(all, b...)
	}
	return Dedup(all)
}

// sanitize normalizes a candidate before grouping. Category re-derivation
// happens here, before the merge key is built, so that running Dedup twice
// can never regroup anything.
func sanitize(c Candidate) Candidate {
	c.Description = capWords(strings.Join(strings.Fields(c.Description), " "), maxDescriptionWords)
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Category == "" || c.Category == CategoryOther {
		if cat, conf := DetectCategory(CleanDescription(c.Description), ""); cat != CategoryOther {
			c.Category = cat
			c.Confidence = conf
		} else if c.Category == "" {
			c.Category = CategoryOther
			if c.Confidence == 0 {
				c.Confidence = 0.2
			}
		}
	}
	c.Amount = round2(c.Amount)
	c.NeedsConfirmation = needsConfirmation(c.Category, c.Confidence)
	return c
}

func betterDescription(challenger, incumbent Candidate) bool {
	cs, is := NaturalScore(challenger.Description), NaturalScore(incumbent.Description)
	if cs != is {
		return cs > is
	}
	return len(challenger.Description) < len(incumbent.Description)
}

func capWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ")
}
