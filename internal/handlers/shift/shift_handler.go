package shift

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shiftsync/shiftsync_backend/internal/middleware"
	"github.com/shiftsync/shiftsync_backend/internal/models"
	"github.com/shiftsync/shiftsync_backend/internal/pkg/response"
	shiftService "github.com/shiftsync/shiftsync_backend/internal/services/shift"
	"github.com/shiftsync/shiftsync_backend/internal/store"
)

type ShiftHandler struct {
	workflow *shiftService.Workflow
}

func NewShiftHandler(workflow *shiftService.Workflow) *ShiftHandler {
	return &ShiftHandler{workflow: workflow}
}

func (h *ShiftHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ShiftCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	created, err := h.workflow.Create(r.Context(), req)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *ShiftHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.workflow.List(r.Context())
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to list shifts")
		return
	}
	response.RespondWithJSON(w, http.StatusOK, shifts)
}

func (h *ShiftHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ShiftUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	updated, err := h.workflow.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *ShiftHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	err := h.workflow.Delete(r.Context(), chi.URLParam(r, "id"), middleware.Username(r))
	if err != nil {
		respondWorkflowError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Shift deleted successfully",
	})
}

func (h *ShiftHandler) RequestClaimHandler(w http.ResponseWriter, r *http.Request) {
	updated, err := h.workflow.RequestClaim(r.Context(), chi.URLParam(r, "id"), middleware.Username(r))
	if err != nil {
		respondWorkflowError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *ShiftHandler) ReviewClaimHandler(w http.ResponseWriter, r *http.Request) {
	action, ok := decodeApproval(w, r)
	if !ok {
		return
	}
	updated, err := h.workflow.ReviewClaim(r.Context(), chi.URLParam(r, "id"), middleware.Username(r), action)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *ShiftHandler) DropHandler(w http.ResponseWriter, r *http.Request) {
	updated, err := h.workflow.Drop(r.Context(), chi.URLParam(r, "id"), middleware.Username(r))
	if err != nil {
		respondWorkflowError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *ShiftHandler) RequestDropHandler(w http.ResponseWriter, r *http.Request) {
	updated, err := h.workflow.RequestDrop(r.Context(), chi.URLParam(r, "id"), middleware.Username(r))
	if err != nil {
		respondWorkflowError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *ShiftHandler) ReviewDropHandler(w http.ResponseWriter, r *http.Request) {
	action, ok := decodeApproval(w, r)
	if !ok {
		return
	}
	updated, err := h.workflow.ReviewDrop(r.Context(), chi.URLParam(r, "id"), middleware.Username(r), action)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, updated)
}

func decodeApproval(w http.ResponseWriter, r *http.Request) (models.ApprovalAction, bool) {
	var action models.ApprovalAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return action, false
	}
	if action.EmployeeName == "" {
		response.RespondWithError(w, http.StatusBadRequest, "employee_name is required")
		return action, false
	}
	if action.Action != shiftService.ActionApprove && action.Action != shiftService.ActionDeny {
		response.RespondWithError(w, http.StatusBadRequest, "action must be approve or deny")
		return action, false
	}
	return action, true
}

func respondWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.RespondWithError(w, http.StatusNotFound, "Shift not found")
	case errors.Is(err, shiftService.ErrConflict):
		response.RespondWithError(w, http.StatusConflict, "Schedule conflict! You are already working during this time.")
	case errors.Is(err, shiftService.ErrValidation):
		response.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		response.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
