// Package pipeline wires the extraction stages together: message parsing
// with model fallback, document scanning, and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/rbarros/finassist/internal/docscan"
	"github.com/rbarros/finassist/internal/extract"
	"github.com/rbarros/finassist/internal/jobs"
	"github.com/rbarros/finassist/internal/llm"
	"github.com/rbarros/finassist/internal/logger"
	"github.com/rbarros/finassist/internal/store"
)

// Extractor produces candidates from free text using a language model.
// *llm.Client satisfies it; tests supply fakes.
type Extractor interface {
	Extract(ctx context.Context, text string) (extract.SourceBatch, error)
	Available() bool
}

// TextFetcher resolves a gs:// URI to document text.
type TextFetcher interface {
	FetchText(ctx context.Context, gcsURI string) (string, error)
}

// Engine orchestrates extraction and persistence. The model client and
// fetcher are optional; a nil model disables fallback and a nil fetcher
// disables document scanning.
type Engine struct {
	model   Extractor
	fetcher TextFetcher
	records store.Store
}

// New creates an Engine. records must be non-nil; model and fetcher may be nil.
func New(records store.Store, model Extractor, fetcher TextFetcher) *Engine {
	return &Engine{
		model:   model,
		fetcher: fetcher,
		records: records,
	}
}

// ExtractMessage parses a user message into transaction candidates.
// Rule-based extraction runs first; the model is consulted only when the
// rules find nothing, so quota is spent on the hard cases alone.
func (e *Engine) ExtractMessage(ctx context.Context, text string) ([]extract.Candidate, error) {
	log := logger.FromContext(ctx)

	cands := extract.ParseText(text)
	if len(cands) > 0 {
		log.Debug().Int("candidates", len(cands)).Msg("rule-based extraction succeeded")
		return cands, nil
	}

	if e.model == nil || !e.model.Available() {
		log.Debug().Msg("no candidates and model unavailable")
		return nil, nil
	}

	cands, err := e.model.Extract(ctx, text)
	if err != nil {
		if errors.Is(err, llm.ErrCoolingDown) {
			log.Warn().Msg("model cooling down, returning no candidates")
			return nil, nil
		}
		return nil, fmt.Errorf("model extraction: %w", err)
	}
	log.Debug().Int("candidates", len(cands)).Msg("model fallback produced candidates")
	return extract.Dedup(cands), nil
}

// SaveMessage extracts candidates from text and persists them as records
// dated occurredOn. It returns the stored records.
func (e *Engine) SaveMessage(ctx context.Context, userID, text string, occurredOn civil.Date) ([]store.Record, error) {
	cands, err := e.ExtractMessage(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}

	recs := make([]store.Record, 0, len(cands))
	for _, c := range cands {
		recs = append(recs, store.NewRecord(userID, store.SourceMessage, c, occurredOn))
	}
	if err := e.records.SaveRecords(ctx, recs); err != nil {
		return nil, fmt.Errorf("save records: %w", err)
	}
	return recs, nil
}

// ScanDocument fetches a document's text, extracts its transactions and
// persists them for the user. It returns the number of records stored.
func (e *Engine) ScanDocument(ctx context.Context, userID, gcsURI string, occurredOn civil.Date) (int, error) {
	log := logger.FromContext(ctx)

	if e.fetcher == nil {
		return 0, fmt.Errorf("document scanning is not configured")
	}

	text, err := e.fetcher.FetchText(ctx, gcsURI)
	if err != nil {
		return 0, fmt.Errorf("fetch document: %w", err)
	}

	cands := docscan.ScanText(text)
	if len(cands) == 0 {
		log.Info().Str("uri", gcsURI).Msg("document produced no transactions")
		return 0, nil
	}

	recs := make([]store.Record, 0, len(cands))
	for _, c := range cands {
		recs = append(recs, store.NewRecord(userID, store.SourceDocument, c, occurredOn))
	}
	if err := e.records.SaveRecords(ctx, recs); err != nil {
		return 0, fmt.Errorf("save records: %w", err)
	}

	log.Info().Str("uri", gcsURI).Int("records", len(recs)).Msg("document scanned")
	return len(recs), nil
}

// JobHandler adapts the engine to the job queue. Scan results are written
// back onto the job so pollers can see the record count.
func (e *Engine) JobHandler() jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		scan, ok := job.(*jobs.ScanDocumentJob)
		if !ok {
			return fmt.Errorf("unexpected job type %s", job.GetType())
		}
		n, err := e.ScanDocument(ctx, scan.UserID, scan.GCSURI, civil.DateOf(scan.CreatedAt))
		if err != nil {
			return err
		}
		scan.RecordCount = n
		return nil
	}
}
