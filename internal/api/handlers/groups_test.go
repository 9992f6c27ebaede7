package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/finlens/statement-analyzer/internal/analyze"
	"github.com/finlens/statement-analyzer/internal/consolidate"
	"github.com/finlens/statement-analyzer/internal/domain"
	"github.com/finlens/statement-analyzer/internal/jobs"
	"github.com/finlens/statement-analyzer/internal/jobs/inmemory"
)

func newGroupsHandler(t *testing.T) (*GroupsHandler, jobs.Store) {
	t.Helper()
	store := inmemory.NewStore()
	svc := consolidate.NewService(consolidate.NewMemGroupStore(), store)
	return NewGroupsHandler(svc, zerolog.Nop()), store
}

func seedCompletedJob(t *testing.T, store jobs.Store, id string) {
	t.Helper()
	amount := 50000.0
	txs := []*domain.Transaction{
		{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Description: "SALARY", Credit: &amount},
	}
	now := time.Now()
	err := store.SaveJob(context.Background(), &jobs.AnalyzeStatementsJob{
		JobID:       id,
		Status:      jobs.JobStatusCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
		Result: &jobs.Result{
			Report:       analyze.Run(context.Background(), txs),
			Transactions: txs,
		},
	})
	if err != nil {
		t.Fatalf("SaveJob: %v", err)
	}
}

func createGroup(t *testing.T, h *GroupsHandler, name, groupType string) string {
	t.Helper()
	body := strings.NewReader(`{"owner":"alice","name":"` + name + `","type":"` + groupType + `"}`)
	rec := httptest.NewRecorder()
	h.CreateGroup(rec, httptest.NewRequest(http.MethodPost, "/api/groups", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("CreateGroup status = %d: %s", rec.Code, rec.Body.String())
	}
	var group consolidate.StatementGroup
	if err := json.Unmarshal(rec.Body.Bytes(), &group); err != nil {
		t.Fatalf("decoding group: %v", err)
	}
	return group.GroupID
}

func TestCreateGroupValidation(t *testing.T) {
	h, _ := newGroupsHandler(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"owner":"o","name":"G","type":"single_account"}`, http.StatusCreated},
		{"missing name", `{"owner":"o","type":"single_account"}`, http.StatusBadRequest},
		{"unknown type", `{"owner":"o","name":"G","type":"portfolio"}`, http.StatusBadRequest},
		{"malformed body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.CreateGroup(rec, httptest.NewRequest(http.MethodPost, "/api/groups", strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestCreateGroupCarriesReferenceID(t *testing.T) {
	h, _ := newGroupsHandler(t)

	body := strings.NewReader(`{"owner":"o","name":"Loan Review","type":"loan_application","reference_id":"LN-2024-7"}`)
	rec := httptest.NewRecorder()
	h.CreateGroup(rec, httptest.NewRequest(http.MethodPost, "/api/groups", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var group consolidate.StatementGroup
	if err := json.Unmarshal(rec.Body.Bytes(), &group); err != nil {
		t.Fatalf("decoding group: %v", err)
	}
	if group.ReferenceID != "LN-2024-7" {
		t.Errorf("reference id = %q, want LN-2024-7", group.ReferenceID)
	}
}

func TestAddMemberResponses(t *testing.T) {
	h, store := newGroupsHandler(t)
	seedCompletedJob(t, store, "done")
	store.SaveJob(context.Background(), &jobs.AnalyzeStatementsJob{
		JobID: "pending", Status: jobs.JobStatusPending, CreatedAt: time.Now(),
	})
	groupID := createGroup(t, h, "G", "multi_account")

	addMember := func(gID, jobID string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/groups/"+gID+"/jobs",
			strings.NewReader(`{"job_id":"`+jobID+`"}`))
		h.AddMember(rec, req, gID)
		return rec.Code
	}

	if got := addMember(groupID, "done"); got != http.StatusOK {
		t.Errorf("add completed job = %d, want 200", got)
	}
	if got := addMember(groupID, "done"); got != http.StatusConflict {
		t.Errorf("duplicate add = %d, want 409", got)
	}
	if got := addMember(groupID, "pending"); got != http.StatusConflict {
		t.Errorf("pending job add = %d, want 409", got)
	}
	if got := addMember(groupID, "ghost"); got != http.StatusNotFound {
		t.Errorf("missing job add = %d, want 404", got)
	}
	if got := addMember("no-such-group", "done"); got != http.StatusNotFound {
		t.Errorf("missing group add = %d, want 404", got)
	}
}

func TestConsolidateEndpoint(t *testing.T) {
	h, store := newGroupsHandler(t)
	seedCompletedJob(t, store, "j1")
	groupID := createGroup(t, h, "G", "single_account")

	rec := httptest.NewRecorder()
	h.AddMember(rec, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"job_id":"j1"}`)), groupID)
	if rec.Code != http.StatusOK {
		t.Fatalf("AddMember: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Consolidate(rec, httptest.NewRequest(http.MethodGet, "/x", nil), groupID)
	if rec.Code != http.StatusOK {
		t.Fatalf("Consolidate status = %d: %s", rec.Code, rec.Body.String())
	}

	var view consolidate.Consolidated
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding view: %v", err)
	}
	if view.TransactionCount != 1 {
		t.Errorf("transaction count = %d, want 1", view.TransactionCount)
	}
	if view.Summary == nil || view.Summary.TotalCredits != 50000 {
		t.Errorf("summary = %+v", view.Summary)
	}

	// A member job disappearing from the store is a conflict, not a 500.
	rec = httptest.NewRecorder()
	h.Consolidate(rec, httptest.NewRequest(http.MethodGet, "/x", nil), "no-such-group")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing group consolidate = %d, want 404", rec.Code)
	}
}

func TestDeleteGroup(t *testing.T) {
	h, _ := newGroupsHandler(t)
	groupID := createGroup(t, h, "G", "single_account")

	rec := httptest.NewRecorder()
	h.DeleteGroup(rec, httptest.NewRequest(http.MethodDelete, "/x", nil), groupID)
	if rec.Code != http.StatusOK {
		t.Fatalf("DeleteGroup status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.GetGroup(rec, httptest.NewRequest(http.MethodGet, "/x", nil), groupID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GetGroup after delete = %d, want 404", rec.Code)
	}
}
