// Package bigquery implements the record store on BigQuery. Amounts are
// stored as NUMERIC and dates as DATE, matching the warehouse schema used by
// the reporting dashboards.
package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/rbarros/finassist/internal/extract"
	"github.com/rbarros/finassist/internal/store"
)

const recordsTable = "transactions"

// Store is a BigQuery-backed record store sharing one client across calls.
type Store struct {
	client  *bigquery.Client
	project string
	dataset string
}

// New creates a store writing to projectID.dataset.transactions.
func New(ctx context.Context, projectID, dataset string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery store: creating client: %w", err)
	}
	return &Store{client: client, project: projectID, dataset: dataset}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// recordRow mirrors the transactions table schema.
type recordRow struct {
	RecordID    string     `bigquery:"record_id"`
	UserID      string     `bigquery:"user_id"`
	Direction   string     `bigquery:"direction"`
	Amount      *big.Rat   `bigquery:"amount"`
	Category    string     `bigquery:"category"`
	Description string     `bigquery:"description"`
	Currency    string     `bigquery:"currency"`
	Confidence  float64    `bigquery:"confidence"`
	Pending     bool       `bigquery:"pending"`
	Source      string     `bigquery:"source"`
	OccurredOn  civil.Date `bigquery:"occurred_on"`
	CreatedTS   time.Time  `bigquery:"created_ts"`
}

func rowFromRecord(r store.Record) *recordRow {
	return &recordRow{
		RecordID:    r.ID,
		UserID:      r.UserID,
		Direction:   r.Direction.Code(),
		Amount:      new(big.Rat).SetFloat64(r.Amount),
		Category:    r.Category,
		Description: r.Description,
		Currency:    r.Currency,
		Confidence:  r.Confidence,
		Pending:     r.Pending,
		Source:      r.Source,
		OccurredOn:  r.OccurredOn,
		CreatedTS:   r.CreatedAt,
	}
}

func (row *recordRow) toRecord() (store.Record, error) {
	dir, err := extract.ParseDirectionCode(row.Direction)
	if err != nil {
		return store.Record{}, fmt.Errorf("record %s: %w", row.RecordID, err)
	}
	amount := 0.0
	if row.Amount != nil {
		amount, _ = row.Amount.Float64()
	}
	return store.Record{
		ID:          row.RecordID,
		UserID:      row.UserID,
		Direction:   dir,
		Amount:      amount,
		Category:    row.Category,
		Description: row.Description,
		Currency:    row.Currency,
		Confidence:  row.Confidence,
		Pending:     row.Pending,
		Source:      row.Source,
		OccurredOn:  row.OccurredOn,
		CreatedAt:   row.CreatedTS,
	}, nil
}

func (s *Store) table() string {
	return fmt.Sprintf("`%s.%s.%s`", s.project, s.dataset, recordsTable)
}

// SaveRecords implements store.Store via the streaming inserter.
func (s *Store) SaveRecords(ctx context.Context, recs []store.Record) error {
	if len(recs) == 0 {
		return nil
	}
	rows := make([]*recordRow, len(recs))
	for i, r := range recs {
		rows[i] = rowFromRecord(r)
	}
	inserter := s.client.DatasetInProject(s.project, s.dataset).Table(recordsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("SaveRecords: inserting rows: %w", err)
	}
	return nil
}

// ListRecords implements store.Store.
func (s *Store) ListRecords(ctx context.Context, f store.Filter) ([]store.Record, error) {
	query := `
		SELECT record_id, user_id, direction, amount, category, description,
		       currency, confidence, pending, source, occurred_on, created_ts
		FROM ` + s.table() + `
		WHERE user_id = @user_id`
	params := []bigquery.QueryParameter{{Name: "user_id", Value: f.UserID}}

	if f.Category != "" {
		query += " AND category = @category"
		params = append(params, bigquery.QueryParameter{Name: "category", Value: f.Category})
	}
	if f.Direction != nil {
		query += " AND direction = @direction"
		params = append(params, bigquery.QueryParameter{Name: "direction", Value: f.Direction.Code()})
	}
	if f.From.IsValid() {
		query += " AND occurred_on >= @from_date"
		params = append(params, bigquery.QueryParameter{Name: "from_date", Value: f.From})
	}
	if f.To.IsValid() {
		query += " AND occurred_on <= @to_date"
		params = append(params, bigquery.QueryParameter{Name: "to_date", Value: f.To})
	}
	query += " ORDER BY created_ts DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	q := s.client.Query(query)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecords: query read: %w", err)
	}
	var out []store.Record
	for {
		var row recordRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecords: iter next: %w", err)
		}
		rec, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("ListRecords: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// UpdateCategory implements store.Store with a parameterized DML update.
func (s *Store) UpdateCategory(ctx context.Context, userID, recordID, category string) error {
	q := s.client.Query(`
		UPDATE ` + s.table() + `
		SET category = @category, pending = FALSE
		WHERE record_id = @record_id AND user_id = @user_id`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "category", Value: category},
		{Name: "record_id", Value: recordID},
		{Name: "user_id", Value: userID},
	}
	return s.runDML(ctx, q, "UpdateCategory")
}

// DeleteRecord implements store.Store.
func (s *Store) DeleteRecord(ctx context.Context, userID, recordID string) error {
	q := s.client.Query(`
		DELETE FROM ` + s.table() + `
		WHERE record_id = @record_id AND user_id = @user_id`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "record_id", Value: recordID},
		{Name: "user_id", Value: userID},
	}
	return s.runDML(ctx, q, "DeleteRecord")
}

func (s *Store) runDML(ctx context.Context, q *bigquery.Query, op string) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("%s: running query: %w", op, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("%s: waiting for job: %w", op, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("%s: job error: %w", op, err)
	}
	if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		if stats.NumDMLAffectedRows == 0 {
			return store.ErrNotFound
		}
	}
	return nil
}

// Summarize implements store.Store. One aggregate query groups by day,
// direction and category; the monthly rollup is folded from the daily
// buckets client side.
func (s *Store) Summarize(ctx context.Context, userID string, from, to civil.Date) (*store.Summary, error) {
	q := s.client.Query(`
		SELECT FORMAT_DATE('%Y-%m-%d', occurred_on) AS day,
		       direction,
		       category,
		       SUM(amount) AS total
		FROM ` + s.table() + `
		WHERE user_id = @user_id
		  AND occurred_on >= @from_date
		  AND occurred_on <= @to_date
		GROUP BY day, direction, category
		ORDER BY day`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "from_date", Value: from},
		{Name: "to_date", Value: to},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Summarize: query read: %w", err)
	}

	sum := &store.Summary{ByCategory: make(map[string]float64)}
	daily := make(map[string]*store.PeriodTotal)
	monthly := make(map[string]*store.PeriodTotal)
	var dayOrder []string

	for {
		var row struct {
			Day       string   `bigquery:"day"`
			Direction string   `bigquery:"direction"`
			Category  string   `bigquery:"category"`
			Total     *big.Rat `bigquery:"total"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Summarize: iter next: %w", err)
		}

		total := 0.0
		if row.Total != nil {
			total, _ = row.Total.Float64()
		}
		if _, ok := daily[row.Day]; !ok {
			dayOrder = append(dayOrder, row.Day)
			daily[row.Day] = &store.PeriodTotal{Period: row.Day}
		}
		month := row.Day[:7]
		if _, ok := monthly[month]; !ok {
			monthly[month] = &store.PeriodTotal{Period: month}
		}

		if row.Direction == extract.Income.Code() {
			sum.TotalIncome += total
			daily[row.Day].Income += total
			monthly[month].Income += total
		} else {
			sum.TotalExpenses += total
			sum.ByCategory[row.Category] += total
			daily[row.Day].Expenses += total
			monthly[month].Expenses += total
		}
	}

	sum.Balance = sum.TotalIncome - sum.TotalExpenses
	for _, day := range dayOrder {
		sum.Daily = append(sum.Daily, *daily[day])
	}
	var monthOrder []string
	for m := range monthly {
		monthOrder = append(monthOrder, m)
	}
	sort.Strings(monthOrder)
	for _, m := range monthOrder {
		sum.Monthly = append(sum.Monthly, *monthly[m])
	}
	return sum, nil
}

var _ store.Store = (*Store)(nil)
