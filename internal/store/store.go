// Package store defines the persisted transaction record and the storage
// contract shared by the in-memory and BigQuery implementations.
package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/rbarros/finassist/internal/extract"
)

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("store: record not found")

// Record sources.
const (
	SourceMessage  = "message"
	SourceDocument = "document"
)

// Record is one confirmed or pending transaction owned by a user.
type Record struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Direction   extract.Direction `json:"direction"`
	Amount      float64           `json:"amount"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Currency    string            `json:"currency"`
	Confidence  float64           `json:"confidence"`
	Pending     bool              `json:"pending"`
	Source      string            `json:"source"`
	OccurredOn  civil.Date        `json:"occurred_on"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewRecord materializes an extraction candidate as a record for userID.
func NewRecord(userID, source string, c extract.Candidate, occurredOn civil.Date) Record {
	return Record{
		ID:          uuid.NewString(),
		UserID:      userID,
		Direction:   c.Direction,
		Amount:      c.Amount,
		Category:    c.Category,
		Description: c.Description,
		Currency:    c.Currency,
		Confidence:  c.Confidence,
		Pending:     c.NeedsConfirmation,
		Source:      source,
		OccurredOn:  occurredOn,
		CreatedAt:   time.Now().UTC(),
	}
}

// Filter narrows ListRecords results. Zero values mean "no constraint".
type Filter struct {
	UserID    string
	Category  string
	Direction *extract.Direction
	From      civil.Date
	To        civil.Date
	Limit     int
}

// PeriodTotal is an aggregate bucket keyed by day ("2025-03-05") or month
// ("2025-03").
type PeriodTotal struct {
	Period   string  `json:"period"`
	Expenses float64 `json:"expenses"`
	Income   float64 `json:"income"`
}

// Summary aggregates a user's records over a date range.
type Summary struct {
	TotalExpenses float64            `json:"total_expenses"`
	TotalIncome   float64            `json:"total_income"`
	Balance       float64            `json:"balance"`
	ByCategory    map[string]float64 `json:"by_category"`
	Daily         []PeriodTotal      `json:"daily"`
	Monthly       []PeriodTotal      `json:"monthly"`
}

// Store is the persistence contract for transaction records.
type Store interface {
	// SaveRecords persists a batch atomically from the caller's point of
	// view: either all candidates of one extraction land or none.
	SaveRecords(ctx context.Context, recs []Record) error

	// ListRecords returns records matching the filter, newest first.
	ListRecords(ctx context.Context, f Filter) ([]Record, error)

	// UpdateCategory reclassifies a record and clears its pending flag.
	UpdateCategory(ctx context.Context, userID, recordID, category string) error

	// DeleteRecord removes a record.
	DeleteRecord(ctx context.Context, userID, recordID string) error

	// Summarize aggregates the user's records between from and to inclusive.
	Summarize(ctx context.Context, userID string, from, to civil.Date) (*Summary, error)
}
