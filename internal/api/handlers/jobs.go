// Package handlers implements the HTTP endpoints for submitting statements
// and reading back analysis results.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/finlens/statement-analyzer/internal/api/middleware"
	"github.com/finlens/statement-analyzer/internal/jobs"
	"github.com/finlens/statement-analyzer/internal/warehouse"
)

// maxUploadBytes bounds one multipart upload (all files together).
const maxUploadBytes = 64 << 20

// TotalsReader reads aggregated warehouse figures for a job. Nil when no
// warehouse is configured.
type TotalsReader interface {
	MonthlyTotals(ctx context.Context, jobID string) ([]*warehouse.MonthlyTotalRow, error)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store     jobs.Store
	publisher jobs.Publisher
	totals    TotalsReader
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler. totals may be nil.
func NewJobsHandler(store jobs.Store, publisher jobs.Publisher, totals TotalsReader, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store:     store,
		publisher: publisher,
		totals:    totals,
		log:       log,
	}
}

// CreateJob handles POST /api/jobs.
// It accepts a multipart form with one or more "file" parts; a "password"
// field applies to every file, "password_<filename>" to one. Remote inputs
// are passed as "gcs_uri" fields instead of parts. The response is the
// pending job; results arrive asynchronously.
func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	sharedPassword := r.FormValue("password")
	owner := r.FormValue("owner")

	var inputs []jobs.FileInput

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["file"] {
			f, err := header.Open()
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, "Unreadable file part: "+header.Filename)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, "Unreadable file part: "+header.Filename)
				return
			}

			password := r.FormValue("password_" + header.Filename)
			if password == "" {
				password = sharedPassword
			}

			inputs = append(inputs, jobs.FileInput{
				Name:      header.Filename,
				MediaType: header.Header.Get("Content-Type"),
				Password:  password,
				Data:      data,
			})
		}

		for _, uri := range r.MultipartForm.Value["gcs_uri"] {
			if uri == "" {
				continue
			}
			inputs = append(inputs, jobs.FileInput{
				GCSURI:   uri,
				Password: sharedPassword,
			})
		}
	}

	if len(inputs) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "At least one file or gcs_uri is required")
		return
	}

	job := &jobs.AnalyzeStatementsJob{
		Owner:     owner,
		Inputs:    inputs,
		Status:    jobs.JobStatusPending,
		CreatedAt: time.Now(),
	}

	if err := h.publisher.PublishAnalyzeStatements(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue analysis job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Int("files", len(inputs)).
		Msg("Analysis job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":     job.JobID,
		"status":     job.Status,
		"file_count": len(inputs),
	})
}

// GetJob handles GET /api/jobs/:jobID.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
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

// WarehouseTotals handles GET /api/jobs/:jobID/warehouse-totals. It serves
// the monthly credit/debit aggregates the warehouse holds for one job.
func (h *JobsHandler) WarehouseTotals(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	if h.totals == nil {
		middleware.WriteError(w, http.StatusNotImplemented, "Warehouse is not configured")
		return
	}

	if _, err := h.store.GetJob(ctx, jobID); err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	totals, err := h.totals.MonthlyTotals(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to query warehouse totals")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to query warehouse")
		return
	}
	if totals == nil {
		totals = []*warehouse.MonthlyTotalRow{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"job_id": jobID,
		"months": totals,
	})
}

// ListJobs handles GET /api/jobs.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := jobs.JobFilter{
		Owner:  r.URL.Query().Get("owner"),
		Status: jobs.JobStatus(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Offset = n
		}
	}

	list, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}
