// Package inmemory provides a map-backed store implementation. It is used by
// the CLI, by tests and by deployments without a BigQuery project.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"cloud.google.com/go/civil"

	"github.com/rbarros/finassist/internal/extract"
	"github.com/rbarros/finassist/internal/store"
)

// Store keeps records in memory, safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	recs map[string]store.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{recs: make(map[string]store.Record)}
}

// SaveRecords implements store.Store.
func (s *Store) SaveRecords(ctx context.Context, recs []store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		s.recs[r.ID] = r
	}
	return nil
}

// ListRecords implements store.Store.
func (s *Store) ListRecords(ctx context.Context, f store.Filter) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Record
	for _, r := range s.recs {
		if !matches(r, f) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// UpdateCategory implements store.Store.
func (s *Store) UpdateCategory(ctx context.Context, userID, recordID, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recs[recordID]
	if !ok || r.UserID != userID {
		return store.ErrNotFound
	}
	r.Category = category
	r.Pending = false
	s.recs[recordID] = r
	return nil
}

// DeleteRecord implements store.Store.
func (s *Store) DeleteRecord(ctx context.Context, userID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recs[recordID]
	if !ok || r.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.recs, recordID)
	return nil
}

// Summarize implements store.Store.
func (s *Store) Summarize(ctx context.Context, userID string, from, to civil.Date) (*store.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := &store.Summary{ByCategory: make(map[string]float64)}
	daily := make(map[string]*store.PeriodTotal)
	monthly := make(map[string]*store.PeriodTotal)

	for _, r := range s.recs {
		if r.UserID != userID || !inRange(r.OccurredOn, from, to) {
			continue
		}
		day := r.OccurredOn.String()
		month := day[:7]
		if r.Direction == extract.Income {
			sum.TotalIncome += r.Amount
			bucket(daily, day).Income += r.Amount
			bucket(monthly, month).Income += r.Amount
		} else {
			sum.TotalExpenses += r.Amount
			sum.ByCategory[r.Category] += r.Amount
			bucket(daily, day).Expenses += r.Amount
			bucket(monthly, month).Expenses += r.Amount
		}
	}
	sum.Balance = sum.TotalIncome - sum.TotalExpenses
	sum.Daily = sortedTotals(daily)
	sum.Monthly = sortedTotals(monthly)
	return sum, nil
}

func matches(r store.Record, f store.Filter) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Direction != nil && r.Direction != *f.Direction {
		return false
	}
	return inRange(r.OccurredOn, f.From, f.To)
}

func inRange(d, from, to civil.Date) bool {
	if from.IsValid() && d.Before(from) {
		return false
	}
	if to.IsValid() && d.After(to) {
		return false
	}
	return true
}

func bucket(m map[string]*store.PeriodTotal, period string) *store.PeriodTotal {
	if b, ok := m[period]; ok {
		return b
	}
	b := &store.PeriodTotal{Period: period}
	m[period] = b
	return b
}

func sortedTotals(m map[string]*store.PeriodTotal) []store.PeriodTotal {
	out := make([]store.PeriodTotal, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

var _ store.Store = (*Store)(nil)
