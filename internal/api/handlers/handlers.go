// Package handlers implements the HTTP API: message extraction, transaction
// management, summaries, document scans and job polling.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/rbarros/finassist/internal/api/middleware"
	"github.com/rbarros/finassist/internal/extract"
	"github.com/rbarros/finassist/internal/jobs"
	"github.com/rbarros/finassist/internal/store"
)

// Engine is the slice of the extraction pipeline the handlers need.
// *pipeline.Engine satisfies it.
type Engine interface {
	ExtractMessage(ctx context.Context, text string) ([]extract.Candidate, error)
	SaveMessage(ctx context.Context, userID, text string, occurredOn civil.Date) ([]store.Record, error)
}

// candidateView decorates a candidate with a locale-formatted amount.
type candidateView struct {
	extract.Candidate
	AmountFormatted string `json:"amount_formatted"`
}

func viewCandidates(cands []extract.Candidate) []candidateView {
	views := make([]candidateView, 0, len(cands))
	for _, c := range cands {
		views = append(views, candidateView{Candidate: c, AmountFormatted: FormatBRL(c.Amount)})
	}
	return views
}

// ExtractHandler turns free text into transaction candidates without
// persisting anything.
type ExtractHandler struct {
	engine Engine
	log    zerolog.Logger
}

// NewExtractHandler creates an extraction handler.
func NewExtractHandler(engine Engine, log zerolog.Logger) *ExtractHandler {
	return &ExtractHandler{engine: engine, log: log}
}

// Extract handles POST /api/extract
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text is required")
		return
	}

	cands, err := h.engine.ExtractMessage(r.Context(), req.Text)
	if err != nil {
		h.log.Error().Err(err).Msg("Extraction failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Extraction failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": viewCandidates(cands),
		"count":      len(cands),
	})
}

// TransactionsHandler manages persisted transaction records.
type TransactionsHandler struct {
	engine  Engine
	records store.Store
	log     zerolog.Logger
}

// NewTransactionsHandler creates a transactions handler.
func NewTransactionsHandler(engine Engine, records store.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{engine: engine, records: records, log: log}
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text is required")
		return
	}

	occurredOn := civil.DateOf(time.Now())
	if req.Date != "" {
		d, err := civil.ParseDate(req.Date)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD")
			return
		}
		occurredOn = d
	}

	userID := middleware.UserIDFromContext(r.Context())
	recs, err := h.engine.SaveMessage(r.Context(), userID, req.Text, occurredOn)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to save transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save transactions")
		return
	}

	status := http.StatusCreated
	if len(recs) == 0 {
		status = http.StatusOK
	}
	if recs == nil {
		recs = []store.Record{}
	}
	middleware.WriteJSON(w, status, map[string]interface{}{
		"records": recs,
		"count":   len(recs),
	})
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.Filter{
		UserID:   middleware.UserIDFromContext(r.Context()),
		Category: query.Get("category"),
	}

	if dirStr := query.Get("direction"); dirStr != "" {
		dir, err := parseDirectionParam(dirStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid direction, use expense or income")
			return
		}
		filter.Direction = &dir
	}

	var err error
	if filter.From, err = parseDateParam(query.Get("from")); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid from date, use YYYY-MM-DD")
		return
	}
	if filter.To, err = parseDateParam(query.Get("to")); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid to date, use YYYY-MM-DD")
		return
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	recs, err := h.records.ListRecords(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	// Array body keeps clients simple
	if recs == nil {
		recs = []store.Record{}
	}
	middleware.WriteJSON(w, http.StatusOK, recs)
}

// UpdateCategory handles PATCH /api/transactions/{id}
func (h *TransactionsHandler) UpdateCategory(w http.ResponseWriter, r *http.Request, recordID string) {
	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !extract.IsKnownCategory(req.Category) {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	if err := h.records.UpdateCategory(r.Context(), userID, recordID, req.Category); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("record_id", recordID).Msg("Failed to update category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"id":       recordID,
		"category": req.Category,
		"status":   "updated",
	})
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, recordID string) {
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.records.DeleteRecord(r.Context(), userID, recordID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("record_id", recordID).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/summary
func (h *TransactionsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := parseDateParam(query.Get("from"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid from date, use YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(query.Get("to"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid to date, use YYYY-MM-DD")
		return
	}
	if !to.IsValid() {
		to = civil.DateOf(time.Now())
	}
	if !from.IsValid() {
		from = to.AddDays(-365)
	}

	userID := middleware.UserIDFromContext(r.Context())
	sum, err := h.records.Summarize(r.Context(), userID, from, to)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build summary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"from":                     from.String(),
		"to":                       to.String(),
		"total_expenses":           sum.TotalExpenses,
		"total_expenses_formatted": FormatBRL(sum.TotalExpenses),
		"total_income":             sum.TotalIncome,
		"total_income_formatted":   FormatBRL(sum.TotalIncome),
		"balance":                  sum.Balance,
		"balance_formatted":        FormatBRL(sum.Balance),
		"by_category":              sum.ByCategory,
		"daily":                    sum.Daily,
		"monthly":                  sum.Monthly,
	})
}

// DocumentsHandler enqueues document scans.
type DocumentsHandler struct {
	publisher jobs.Publisher
	bucket    string
	log       zerolog.Logger
}

// NewDocumentsHandler creates a documents handler. bucket is the default
// bucket used when requests pass a bare object name.
func NewDocumentsHandler(publisher jobs.Publisher, bucket string, log zerolog.Logger) *DocumentsHandler {
	return &DocumentsHandler{publisher: publisher, bucket: bucket, log: log}
}

// EnqueueScan handles POST /api/documents/scan
func (h *DocumentsHandler) EnqueueScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GCSURI string `json:"gcs_uri"`
		Object string `json:"object"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	uri := req.GCSURI
	if uri == "" && req.Object != "" && h.bucket != "" {
		uri = "gs://" + h.bucket + "/" + req.Object
	}
	if uri == "" {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri or object is required")
		return
	}

	job := &jobs.ScanDocumentJob{
		UserID: middleware.UserIDFromContext(r.Context()),
		GCSURI: uri,
	}
	if err := h.publisher.PublishScanDocument(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("gcs_uri", uri).Msg("Failed to enqueue scan job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue scan job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("gcs_uri", uri).Msg("Scan job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": uri,
		"status":  string(job.Status),
	})
}

// JobsHandler exposes job state for polling.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: middleware.UserIDFromContext(r.Context()),
		Status: jobs.JobStatus(query.Get("status")),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	if jobsList == nil {
		jobsList = []*jobs.ScanDocumentJob{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// CategoriesHandler serves the category taxonomy.
type CategoriesHandler struct{}

// NewCategoriesHandler creates a categories handler.
func NewCategoriesHandler() *CategoriesHandler {
	return &CategoriesHandler{}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": extract.CategoryList,
		"count":      len(extract.CategoryList),
	})
}

func parseDateParam(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	return civil.ParseDate(s)
}

func parseDirectionParam(s string) (extract.Direction, error) {
	switch s {
	case "expense":
		return extract.Expense, nil
	case "income":
		return extract.Income, nil
	}
	return extract.ParseDirectionCode(s)
}
