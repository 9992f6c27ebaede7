package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/finlens/statement-analyzer/internal/api/middleware"
	"github.com/finlens/statement-analyzer/internal/consolidate"
	"github.com/finlens/statement-analyzer/internal/jobs"
)

// GroupsHandler handles statement-group endpoints.
type GroupsHandler struct {
	svc *consolidate.Service
	log zerolog.Logger
}

// NewGroupsHandler creates a new groups handler.
func NewGroupsHandler(svc *consolidate.Service, log zerolog.Logger) *GroupsHandler {
	return &GroupsHandler{svc: svc, log: log}
}

// CreateGroup handles POST /api/groups.
func (h *GroupsHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Owner       string `json:"owner"`
		Name        string `json:"name"`
		Type        string `json:"type"`
		ReferenceID string `json:"reference_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	group, err := h.svc.CreateGroup(ctx, req.Owner, req.Name, consolidate.GroupType(req.Type), req.ReferenceID)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, group)
}

// ListGroups handles GET /api/groups.
func (h *GroupsHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groups, err := h.svc.ListGroups(ctx, r.URL.Query().Get("owner"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list groups")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list groups")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"groups": groups,
		"count":  len(groups),
	})
}

// GetGroup handles GET /api/groups/:groupID.
func (h *GroupsHandler) GetGroup(w http.ResponseWriter, r *http.Request, groupID string) {
	ctx := r.Context()

	group, err := h.svc.GetGroup(ctx, groupID)
	if err != nil {
		h.writeGroupError(w, err, groupID)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, group)
}

// DeleteGroup handles DELETE /api/groups/:groupID.
func (h *GroupsHandler) DeleteGroup(w http.ResponseWriter, r *http.Request, groupID string) {
	ctx := r.Context()

	if err := h.svc.DeleteGroup(ctx, groupID); err != nil {
		h.writeGroupError(w, err, groupID)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"deleted": groupID})
}

// AddMember handles POST /api/groups/:groupID/jobs.
func (h *GroupsHandler) AddMember(w http.ResponseWriter, r *http.Request, groupID string) {
	ctx := r.Context()

	var req struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	group, err := h.svc.AddMember(ctx, groupID, req.JobID)
	if err != nil {
		switch {
		case errors.Is(err, consolidate.ErrDuplicateMember):
			middleware.WriteError(w, http.StatusConflict, "Job already in group")
		case errors.Is(err, consolidate.ErrJobNotReady):
			middleware.WriteError(w, http.StatusConflict, "Job is not completed")
		case errors.Is(err, jobs.ErrJobNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
		case errors.Is(err, consolidate.ErrGroupNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Group not found")
		default:
			h.log.Error().Err(err).Str("group_id", groupID).Msg("Failed to add group member")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to add group member")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, group)
}

// RemoveMember handles DELETE /api/groups/:groupID/jobs/:jobID.
func (h *GroupsHandler) RemoveMember(w http.ResponseWriter, r *http.Request, groupID, jobID string) {
	ctx := r.Context()

	group, err := h.svc.RemoveMember(ctx, groupID, jobID)
	if err != nil {
		h.writeGroupError(w, err, groupID)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, group)
}

// Consolidate handles GET /api/groups/:groupID/analysis.
// The combined view is recomputed on every call.
func (h *GroupsHandler) Consolidate(w http.ResponseWriter, r *http.Request, groupID string) {
	ctx := r.Context()

	view, err := h.svc.Consolidate(ctx, groupID)
	if err != nil {
		switch {
		case errors.Is(err, consolidate.ErrGroupNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Group not found")
		case errors.Is(err, consolidate.ErrJobNotReady):
			middleware.WriteError(w, http.StatusConflict, "A member job is not completed")
		case errors.Is(err, jobs.ErrJobNotFound):
			middleware.WriteError(w, http.StatusConflict, "A member job no longer exists")
		default:
			h.log.Error().Err(err).Str("group_id", groupID).Msg("Failed to consolidate group")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to consolidate group")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, view)
}

func (h *GroupsHandler) writeGroupError(w http.ResponseWriter, err error, groupID string) {
	if errors.Is(err, consolidate.ErrGroupNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Group not found")
		return
	}
	h.log.Error().Err(err).Str("group_id", groupID).Msg("Group operation failed")
	middleware.WriteError(w, http.StatusInternalServerError, "Group operation failed")
}
