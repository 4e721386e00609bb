package pipeline

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/rbarros/finassist/internal/extract"
	"github.com/rbarros/finassist/internal/llm"
	"github.com/rbarros/finassist/internal/store"
	"github.com/rbarros/finassist/internal/store/inmemory"
)

type fakeModel struct {
	cands     extract.SourceBatch
	err       error
	available bool
	calls     int
}

func (f *fakeModel) Extract(ctx context.Context, text string) (extract.SourceBatch, error) {
	f.calls++
	return f.cands, f.err
}

func (f *fakeModel) Available() bool { return f.available }

type fakeFetcher struct {
	text string
	err  error
}

func (f *fakeFetcher) FetchText(ctx context.Context, gcsURI string) (string, error) {
	return f.text, f.err
}

func TestExtractMessageRulesFirst(t *testing.T) {
	model := &fakeModel{available: true}
	e := New(inmemory.New(), model, nil)

	cands, err := e.ExtractMessage(context.Background(), "gastei 50 reais no mercado")
	if err != nil {
		t.Fatalf("ExtractMessage() error: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	if cands[0].Category != extract.CategoryFood {
		t.Errorf("Category = %q, want %q", cands[0].Category, extract.CategoryFood)
	}
	if model.calls != 0 {
		t.Errorf("model called %d times for a rule-parseable message, want 0", model.calls)
	}
}

func TestExtractMessageModelFallback(t *testing.T) {
	model := &fakeModel{
		available: true,
		cands: []extract.Candidate{{
			Direction: extract.Expense, Amount: 80, Category: extract.CategoryLeisure,
			Description: "Show", Currency: extract.DefaultCurrency, Confidence: 0.9,
		}},
	}
	e := New(inmemory.New(), model, nil)

	// No verb anchor, so the rules find nothing.
	cands, err := e.ExtractMessage(context.Background(), "aquele show de ontem saiu caro demais")
	if err != nil {
		t.Fatalf("ExtractMessage() error: %v", err)
	}
	if model.calls != 1 {
		t.Fatalf("model called %d times, want 1", model.calls)
	}
	if len(cands) != 1 || cands[0].Amount != 80 {
		t.Errorf("candidates = %+v, want the model's single candidate", cands)
	}
}

func TestExtractMessageModelUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		model Extractor
	}{
		{"nil model", nil},
		{"cooling down", &fakeModel{available: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(inmemory.New(), tt.model, nil)
			cands, err := e.ExtractMessage(context.Background(), "aquele show de ontem saiu caro")
			if err != nil {
				t.Fatalf("ExtractMessage() error: %v", err)
			}
			if len(cands) != 0 {
				t.Errorf("got %d candidates, want 0", len(cands))
			}
		})
	}
}

func TestExtractMessageCooldownMidFlight(t *testing.T) {
	model := &fakeModel{available: true, err: llm.ErrCoolingDown}
	e := New(inmemory.New(), model, nil)

	cands, err := e.ExtractMessage(context.Background(), "aquele show de ontem saiu caro")
	if err != nil {
		t.Fatalf("cooldown should not surface as an error, got: %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("got %d candidates, want 0", len(cands))
	}
}

func TestExtractMessageModelError(t *testing.T) {
	model := &fakeModel{available: true, err: errors.New("boom")}
	e := New(inmemory.New(), model, nil)

	if _, err := e.ExtractMessage(context.Background(), "aquele show de ontem saiu caro"); err == nil {
		t.Error("expected model error to propagate")
	}
}

func TestSaveMessagePersistsRecords(t *testing.T) {
	st := inmemory.New()
	e := New(st, nil, nil)
	day := civil.Date{Year: 2025, Month: 3, Day: 5}

	recs, err := e.SaveMessage(context.Background(), "ana", "gastei 50 no mercado e recebi 1000 de salário", day)
	if err != nil {
		t.Fatalf("SaveMessage() error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	stored, err := st.ListRecords(context.Background(), store.Filter{UserID: "ana"})
	if err != nil {
		t.Fatalf("ListRecords() error: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("store holds %d records, want 2", len(stored))
	}
	for _, r := range stored {
		if r.Source != store.SourceMessage {
			t.Errorf("Source = %q, want %q", r.Source, store.SourceMessage)
		}
		if r.OccurredOn != day {
			t.Errorf("OccurredOn = %v, want %v", r.OccurredOn, day)
		}
	}
}

func TestScanDocument(t *testing.T) {
	st := inmemory.New()
	fetcher := &fakeFetcher{text: "05/03 COMPRA SUPERMERCADO PAGUE MENOS 152,30\n06/03 PAGAMENTO CONTA DE LUZ 89,90\n"}
	e := New(st, nil, fetcher)
	day := civil.Date{Year: 2025, Month: 3, Day: 10}

	n, err := e.ScanDocument(context.Background(), "ana", "gs://docs/extrato.txt", day)
	if err != nil {
		t.Fatalf("ScanDocument() error: %v", err)
	}
	if n != 2 {
		t.Fatalf("ScanDocument() stored %d records, want 2", n)
	}

	stored, _ := st.ListRecords(context.Background(), store.Filter{UserID: "ana"})
	if len(stored) != 2 {
		t.Fatalf("store holds %d records, want 2", len(stored))
	}
	for _, r := range stored {
		if r.Source != store.SourceDocument {
			t.Errorf("Source = %q, want %q", r.Source, store.SourceDocument)
		}
		if !r.Pending {
			t.Errorf("document record %q not pending review", r.Description)
		}
	}
}

func TestScanDocumentErrors(t *testing.T) {
	e := New(inmemory.New(), nil, nil)
	if _, err := e.ScanDocument(context.Background(), "ana", "gs://docs/x.txt", civil.Date{}); err == nil {
		t.Error("expected error when no fetcher is configured")
	}

	e = New(inmemory.New(), nil, &fakeFetcher{err: errors.New("object not found")})
	if _, err := e.ScanDocument(context.Background(), "ana", "gs://docs/x.txt", civil.Date{}); err == nil {
		t.Error("expected fetch error to propagate")
	}
}
