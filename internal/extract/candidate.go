// Package extract converts informal Portuguese financial statements into
// structured transaction candidates. It is pure text processing: no I/O, no
// mutable package state after init, safe for concurrent use.
package extract

import (
	"fmt"
	"math"
)

// DefaultCurrency is the currency code assigned to every candidate.
const DefaultCurrency = "BRL"

// Direction tells whether money left (expense) or entered (income).
// On the wire it is encoded as "0" / "1", the same contract the LLM
// extractor is prompted with.
type Direction int

const (
	Expense Direction = iota
	Income
)

// Code returns the wire encoding of the direction.
func (d Direction) Code() string {
	if d == Income {
		return "1"
	}
	return "0"
}

func (d Direction) String() string {
	if d == Income {
		return "income"
	}
	return "expense"
}

// ParseDirectionCode parses the "0"/"1" wire encoding.
func ParseDirectionCode(code string) (Direction, error) {
	switch code {
	case "0":
		return Expense, nil
	case "1":
		return Income, nil
	}
	return Expense, fmt.Errorf("invalid direction code %q", code)
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Code() + `"`), nil
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	dir, err := ParseDirectionCode(s)
	if err != nil {
		return err
	}
	*d = dir
	return nil
}

// Candidate is a single extracted, not-yet-persisted transaction.
type Candidate struct {
	Direction         Direction `json:"direction"`
	Amount            float64   `json:"amount"`
	Category          string    `json:"category"`
	Description       string    `json:"description"`
	Currency          string    `json:"currency"`
	Confidence        float64   `json:"confidence"`
	NeedsConfirmation bool      `json:"needs_confirmation"`
}

// SourceBatch is the candidate list produced by one extraction source
// (rule-based, LLM, document heuristics) from one input.
type SourceBatch []Candidate

// newCandidate builds a candidate with the confirmation flag derived from
// category and confidence: anything below 0.9, or landing in the catch-all
// categories, goes back to the user for confirmation.
func newCandidate(dir Direction, amount float64, category, description string, confidence float64) Candidate {
	return Candidate{
		Direction:         dir,
		Amount:            round2(amount),
		Category:          category,
		Description:       description,
		Currency:          DefaultCurrency,
		Confidence:        confidence,
		NeedsConfirmation: needsConfirmation(category, confidence),
	}
}

func needsConfirmation(category string, confidence float64) bool {
	return category == CategoryOther || category == CategoryUncertain || confidence < 0.9
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
