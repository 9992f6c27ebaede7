package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/finlens/statement-analyzer/internal/jobs"
	"github.com/finlens/statement-analyzer/internal/jobs/inmemory"
	"github.com/finlens/statement-analyzer/internal/warehouse"
)

type stubPublisher struct {
	published *jobs.AnalyzeStatementsJob
	err       error
}

func (p *stubPublisher) PublishAnalyzeStatements(_ context.Context, job *jobs.AnalyzeStatementsJob) error {
	if p.err != nil {
		return p.err
	}
	job.JobID = "published-job"
	p.published = job
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func multipartUpload(t *testing.T, files map[string][]byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := w.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("writing part: %v", err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestCreateJob(t *testing.T) {
	pub := &stubPublisher{}
	h := NewJobsHandler(inmemory.NewStore(), pub, nil, zerolog.Nop())

	body, contentType := multipartUpload(t,
		map[string][]byte{"jan.csv": []byte("Date,Narration\n")},
		map[string]string{
			"owner":            "alice",
			"password_jan.csv": "pw-jan",
			"password":         "shared",
			"gcs_uri":          "gs://bucket/feb.csv",
		})

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.CreateJob(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID     string `json:"job_id"`
		Status    string `json:"status"`
		FileCount int    `json:"file_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.JobID != "published-job" || resp.Status != string(jobs.JobStatusPending) {
		t.Errorf("response = %+v", resp)
	}
	if resp.FileCount != 2 {
		t.Errorf("file_count = %d, want upload plus remote input", resp.FileCount)
	}

	if pub.published == nil {
		t.Fatal("no job published")
	}
	if pub.published.Owner != "alice" {
		t.Errorf("owner = %q", pub.published.Owner)
	}
	if got := pub.published.Inputs[0].Password; got != "pw-jan" {
		t.Errorf("per-file password = %q, want the file-specific one", got)
	}
	if got := pub.published.Inputs[1].Password; got != "shared" {
		t.Errorf("remote input password = %q, want the shared one", got)
	}
	if pub.published.Inputs[1].GCSURI != "gs://bucket/feb.csv" {
		t.Errorf("gcs uri = %q", pub.published.Inputs[1].GCSURI)
	}
}

func TestCreateJobRequiresInput(t *testing.T) {
	h := NewJobsHandler(inmemory.NewStore(), &stubPublisher{}, nil, zerolog.Nop())

	body, contentType := multipartUpload(t, nil, map[string]string{"owner": "alice"})
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.CreateJob(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateJobPublishFailure(t *testing.T) {
	h := NewJobsHandler(inmemory.NewStore(), &stubPublisher{err: errors.New("queue closed")}, nil, zerolog.Nop())

	body, contentType := multipartUpload(t, map[string][]byte{"jan.csv": []byte("x")}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.CreateJob(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetJob(t *testing.T) {
	store := inmemory.NewStore()
	store.SaveJob(context.Background(), &jobs.AnalyzeStatementsJob{
		JobID:     "j1",
		Status:    jobs.JobStatusCompleted,
		CreatedAt: time.Now(),
	})
	h := NewJobsHandler(store, &stubPublisher{}, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/j1", nil), "j1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var job jobs.AnalyzeStatementsJob
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if job.JobID != "j1" || job.Status != jobs.JobStatusCompleted {
		t.Errorf("job = %+v", job)
	}

	rec = httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil), "nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing job status = %d, want 404", rec.Code)
	}
}

type stubTotals struct {
	rows []*warehouse.MonthlyTotalRow
	err  error
}

func (s *stubTotals) MonthlyTotals(context.Context, string) ([]*warehouse.MonthlyTotalRow, error) {
	return s.rows, s.err
}

func TestWarehouseTotals(t *testing.T) {
	store := inmemory.NewStore()
	store.SaveJob(context.Background(), &jobs.AnalyzeStatementsJob{
		JobID:     "j1",
		Status:    jobs.JobStatusCompleted,
		CreatedAt: time.Now(),
	})
	totals := &stubTotals{rows: []*warehouse.MonthlyTotalRow{
		{Month: "2024-01", Credits: 50000, Debits: 15450},
	}}
	h := NewJobsHandler(store, &stubPublisher{}, totals, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.WarehouseTotals(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/j1/warehouse-totals", nil), "j1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID  string                      `json:"job_id"`
		Months []warehouse.MonthlyTotalRow `json:"months"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.JobID != "j1" || len(resp.Months) != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Months[0].Month != "2024-01" || resp.Months[0].Credits != 50000 {
		t.Errorf("months[0] = %+v", resp.Months[0])
	}

	rec = httptest.NewRecorder()
	h.WarehouseTotals(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/nope/warehouse-totals", nil), "nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing job status = %d, want 404", rec.Code)
	}
}

func TestWarehouseTotalsUnconfigured(t *testing.T) {
	store := inmemory.NewStore()
	store.SaveJob(context.Background(), &jobs.AnalyzeStatementsJob{
		JobID:     "j1",
		Status:    jobs.JobStatusCompleted,
		CreatedAt: time.Now(),
	})
	h := NewJobsHandler(store, &stubPublisher{}, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.WarehouseTotals(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/j1/warehouse-totals", nil), "j1")
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}

func TestWarehouseTotalsQueryFailure(t *testing.T) {
	store := inmemory.NewStore()
	store.SaveJob(context.Background(), &jobs.AnalyzeStatementsJob{
		JobID:     "j1",
		Status:    jobs.JobStatusCompleted,
		CreatedAt: time.Now(),
	})
	h := NewJobsHandler(store, &stubPublisher{}, &stubTotals{err: errors.New("dataset gone")}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.WarehouseTotals(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/j1/warehouse-totals", nil), "j1")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestListJobs(t *testing.T) {
	store := inmemory.NewStore()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store.SaveJob(context.Background(), &jobs.AnalyzeStatementsJob{JobID: "a", Owner: "alice", Status: jobs.JobStatusCompleted, CreatedAt: base})
	store.SaveJob(context.Background(), &jobs.AnalyzeStatementsJob{JobID: "b", Owner: "bob", Status: jobs.JobStatusPending, CreatedAt: base.Add(time.Hour)})
	h := NewJobsHandler(store, &stubPublisher{}, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ListJobs(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?owner=alice", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Jobs  []jobs.AnalyzeStatementsJob `json:"jobs"`
		Count int                         `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Count != 1 || resp.Jobs[0].JobID != "a" {
		t.Errorf("filtered response = %+v", resp)
	}
}
