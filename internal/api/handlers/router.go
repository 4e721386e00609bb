package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rbarros/finassist/internal/api/middleware"
	"github.com/rbarros/finassist/internal/jobs"
	"github.com/rbarros/finassist/internal/store"
)

// RouterConfig carries the dependencies the API routes need. Publisher and
// JobStore may be nil, which disables the document-scan endpoints.
type RouterConfig struct {
	Engine    Engine
	Records   store.Store
	Publisher jobs.Publisher
	JobStore  jobs.JobStore
	Bucket    string
	Log       zerolog.Logger
}

// NewRouter builds the full API handler with middleware applied.
func NewRouter(cfg RouterConfig) http.Handler {
	extractHandler := NewExtractHandler(cfg.Engine, cfg.Log)
	txHandler := NewTransactionsHandler(cfg.Engine, cfg.Records, cfg.Log)
	categoriesHandler := NewCategoriesHandler()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/extract", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			extractHandler.Extract(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			txHandler.Create(w, r)
		case http.MethodGet:
			txHandler.List(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		recordID := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if recordID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodPatch:
			txHandler.UpdateCategory(w, r, recordID)
		case http.MethodDelete:
			txHandler.Delete(w, r, recordID)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			txHandler.Summary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			categoriesHandler.ListCategories(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	if cfg.Publisher != nil {
		docsHandler := NewDocumentsHandler(cfg.Publisher, cfg.Bucket, cfg.Log)
		mux.HandleFunc("/api/documents/scan", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				docsHandler.EnqueueScan(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
	}

	if cfg.JobStore != nil {
		jobsHandler := NewJobsHandler(cfg.JobStore, cfg.Log)
		mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				jobsHandler.ListJobs(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
		mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		})
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return middleware.Recovery(cfg.Log)(
		middleware.RequestID(
			middleware.Logger(cfg.Log)(
				middleware.CORS(
					middleware.UserID(mux),
				),
			),
		),
	)
}
