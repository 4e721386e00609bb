package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rbarros/finassist/internal/jobs"
	jobsmem "github.com/rbarros/finassist/internal/jobs/inmemory"
	"github.com/rbarros/finassist/internal/pipeline"
	"github.com/rbarros/finassist/internal/store"
	"github.com/rbarros/finassist/internal/store/inmemory"
)

func newTestRouter(t *testing.T) (http.Handler, *inmemory.Store, *jobsmem.Store) {
	t.Helper()
	records := inmemory.New()
	jobStore := jobsmem.NewStore()
	queue := jobsmem.NewQueue(10, jobStore)
	t.Cleanup(func() { _ = queue.Close() })

	engine := pipeline.New(records, nil, nil)
	router := NewRouter(RouterConfig{
		Engine:    engine,
		Records:   records,
		Publisher: queue,
		JobStore:  jobStore,
		Bucket:    "docs",
		Log:       zerolog.Nop(),
	})
	return router, records, jobStore
}

func doJSON(t *testing.T, router http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestExtractEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/extract", "ana",
		`{"text":"gastei 50 reais no mercado"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["count"].(float64) != 1 {
		t.Fatalf("count = %v, want 1", body["count"])
	}
	cand := body["candidates"].([]interface{})[0].(map[string]interface{})
	if cand["category"] != "alimentacao" {
		t.Errorf("category = %v, want alimentacao", cand["category"])
	}
	if cand["amount_formatted"] != "R$ 50,00" {
		t.Errorf("amount_formatted = %v, want R$ 50,00", cand["amount_formatted"])
	}
}

func TestExtractEndpointValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	if rec := doJSON(t, router, http.MethodPost, "/api/extract", "ana", `{"text":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty text: status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/extract", "ana", `{bad`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON: status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/extract", "ana", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status = %d, want 405", rec.Code)
	}
}

func TestTransactionsLifecycle(t *testing.T) {
	router, _, _ := newTestRouter(t)

	// Create from a message
	rec := doJSON(t, router, http.MethodPost, "/api/transactions", "ana",
		`{"text":"gastei 50 no mercado e recebi 1000 de salário","date":"2025-03-05"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["count"].(float64) != 2 {
		t.Fatalf("created count = %v, want 2", body["count"])
	}

	// List them back
	rec = doJSON(t, router, http.MethodGet, "/api/transactions", "ana", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var recs []store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &recs); err != nil {
		t.Fatalf("list body: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("listed %d records, want 2", len(recs))
	}

	// Another user sees nothing
	rec = doJSON(t, router, http.MethodGet, "/api/transactions", "bruno", "")
	var other []store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &other); err != nil {
		t.Fatalf("list body: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("bruno sees %d of ana's records, want 0", len(other))
	}

	// Recategorize one
	id := recs[0].ID
	rec = doJSON(t, router, http.MethodPatch, "/api/transactions/"+id, "ana", `{"category":"lazer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	// Reject unknown taxonomy tokens
	rec = doJSON(t, router, http.MethodPatch, "/api/transactions/"+id, "ana", `{"category":"cripto"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown category: status = %d, want 400", rec.Code)
	}

	// Delete it
	rec = doJSON(t, router, http.MethodDelete, "/api/transactions/"+id, "ana", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/transactions/"+id, "ana", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestTransactionsFilters(t *testing.T) {
	router, _, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/transactions", "ana",
		`{"text":"gastei 50 no mercado e recebi 1000 de salário","date":"2025-03-05"}`)

	rec := doJSON(t, router, http.MethodGet, "/api/transactions?direction=income", "ana", "")
	var recs []store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &recs); err != nil {
		t.Fatalf("list body: %v", err)
	}
	if len(recs) != 1 || recs[0].Category != "salario" {
		t.Errorf("income filter returned %+v, want the salary record", recs)
	}

	if rec := doJSON(t, router, http.MethodGet, "/api/transactions?direction=sideways", "ana", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad direction: status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/transactions?from=05-03-2025", "ana", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: status = %d, want 400", rec.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/transactions", "ana",
		`{"text":"gastei 50 no mercado e recebi 1000 de salário","date":"2025-03-05"}`)

	rec := doJSON(t, router, http.MethodGet, "/api/summary?from=2025-03-01&to=2025-03-31", "ana", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["total_expenses"].(float64) != 50 {
		t.Errorf("total_expenses = %v, want 50", body["total_expenses"])
	}
	if body["total_income"].(float64) != 1000 {
		t.Errorf("total_income = %v, want 1000", body["total_income"])
	}
	if body["balance_formatted"] != "R$ 950,00" {
		t.Errorf("balance_formatted = %v, want R$ 950,00", body["balance_formatted"])
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/categories", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["count"].(float64) != 11 {
		t.Errorf("count = %v, want 11", body["count"])
	}
}

func TestDocumentScanEndpoint(t *testing.T) {
	router, _, jobStore := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/documents/scan", "ana",
		`{"gcs_uri":"gs://docs/extrato.txt"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body: %s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	jobID, _ := body["job_id"].(string)
	if jobID == "" {
		t.Fatal("response has no job_id")
	}

	// Bare object names resolve against the configured bucket.
	rec = doJSON(t, router, http.MethodPost, "/api/documents/scan", "ana", `{"object":"extrato2.txt"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("object scan status = %d, want 202", rec.Code)
	}
	if got := decodeBody(t, rec)["gcs_uri"]; got != "gs://docs/extrato2.txt" {
		t.Errorf("gcs_uri = %v, want gs://docs/extrato2.txt", got)
	}

	if rec := doJSON(t, router, http.MethodPost, "/api/documents/scan", "ana", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing uri: status = %d, want 400", rec.Code)
	}

	// Poll the job
	rec = doJSON(t, router, http.MethodGet, "/api/jobs/"+jobID, "ana", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get job status = %d, want 200", rec.Code)
	}
	var job jobs.ScanDocumentJob
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("job body: %v", err)
	}
	if job.UserID != "ana" || job.GCSURI != "gs://docs/extrato.txt" {
		t.Errorf("job = %+v", job)
	}

	// jobStore is shared with the router, so the listing matches too.
	saved, err := jobStore.ListJobs(context.Background(), jobs.JobFilter{UserID: "ana"})
	if err != nil || len(saved) != 2 {
		t.Errorf("ListJobs = %d jobs (err %v), want 2", len(saved), err)
	}

	if rec := doJSON(t, router, http.MethodGet, "/api/jobs/missing", "ana", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing job: status = %d, want 404", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "healthy" {
		t.Errorf("body = %s", rec.Body.String())
	}
}
