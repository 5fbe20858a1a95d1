/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the request service.

ENDPOINTS:
  Absences:
    GET    /api/absences                 List all absences (owner views)
    POST   /api/absences                 Submit an absence request
    POST   /api/absences/validate        Dry-run submission checks
    GET    /api/absences/{id}            Get one absence
    PUT    /api/absences/{id}            Edit a pending absence
    DELETE /api/absences/{id}            Delete a pending absence
    POST   /api/absences/{id}/approve    Approve
    POST   /api/absences/{id}/reject     Reject
    POST   /api/absences/{id}/reopen     Revert a decision to pending

  Users:
    GET    /api/users                    List profiles
    PUT    /api/users/{id}               Upsert a profile
    GET    /api/users/{id}/absences      One user's absences
    GET    /api/users/{id}/balances      Per-bucket stats (?year=&month=)
    GET    /api/users/{id}/vacation      Vacation balance
    GET    /api/users/{id}/history       Export rows

  Policies:
    GET    /api/policies                 The policy catalog

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, quota shortage
  - 404: Record or profile not found
  - 409: Overlap conflicts, forbidden status transitions
  - 500: Internal errors

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/policy"
	"github.com/lllhub/leave-engine/requests"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *requests.Service
	Profiles leave.ProfileStore
	Catalog  *policy.Catalog
	Log      *logrus.Logger

	validate *validator.Validate
}

// NewHandler creates a handler around the request service.
func NewHandler(svc *requests.Service, profiles leave.ProfileStore, catalog *policy.Catalog, log *logrus.Logger) *Handler {
	return &Handler{
		Service:  svc,
		Profiles: profiles,
		Catalog:  catalog,
		Log:      log,
		validate: validator.New(),
	}
}

// =============================================================================
// ABSENCE HANDLERS
// =============================================================================

// ListAbsences returns every absence, newest first.
func (h *Handler) ListAbsences(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Service.Store.ListAll(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceDTOs(recs))
}

// GetAbsence returns one absence by id.
func (h *Handler) GetAbsence(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceDTO(rec))
}

// SubmitAbsence validates and stores a new request.
func (h *Handler) SubmitAbsence(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decodeAbsence(w, r)
	if !ok {
		return
	}
	created, err := h.Service.Submit(r.Context(), rec)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAbsenceDTO(created))
}

// ValidateAbsence runs the submission checks without persisting.
func (h *Handler) ValidateAbsence(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decodeAbsence(w, r)
	if !ok {
		return
	}
	if err := h.Service.Validate(r.Context(), rec); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// UpdateAbsence edits a pending request.
func (h *Handler) UpdateAbsence(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decodeAbsence(w, r)
	if !ok {
		return
	}
	rec.ID = chi.URLParam(r, "id")
	updated, err := h.Service.Update(r.Context(), rec)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceDTO(updated))
}

// DeleteAbsence removes a pending request.
func (h *Handler) DeleteAbsence(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApproveAbsence approves a pending request and reports the deduction.
func (h *Handler) ApproveAbsence(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}
	rec, ded, err := h.Service.Approve(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApprovalDTO{
		Record: toAbsenceDTO(rec),
		Bucket: string(ded.Key),
		Amount: ded.Amount.Float64(),
		Unit:   string(ded.Unit),
	})
}

// RejectAbsence rejects a pending request.
func (h *Handler) RejectAbsence(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.Reject(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceDTO(rec))
}

// ReopenAbsence reverts a decided request to pending.
func (h *Handler) ReopenAbsence(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.Reopen(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceDTO(rec))
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUserAbsences returns one user's absences.
func (h *Handler) ListUserAbsences(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Service.Store.ListByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceDTOs(recs))
}

// GetBalances returns per-bucket stats for a year, or one month of it.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year", err)
			return
		}
		year = parsed
	}

	var month *time.Month
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			writeError(w, http.StatusBadRequest, "invalid month", err)
			return
		}
		mm := time.Month(parsed)
		month = &mm
	}

	stats, err := h.Service.Stats(r.Context(), chi.URLParam(r, "id"), year, month)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceStatsDTOs(stats))
}

// GetVacationBalance returns the vacation balance view.
func (h *Handler) GetVacationBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := h.Service.VacationBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVacationBalanceDTO(bal))
}

// GetHistory returns export rows for a user.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryRowDTOs(rows))
}

// ListProfiles returns all profiles.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Profiles.ListProfiles(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]ProfileDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = toProfileDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveProfile upserts a profile.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var dto ProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return
	}
	dto.UserID = chi.URLParam(r, "id")
	if err := h.validate.Struct(dto); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}
	p, err := dto.ToProfile()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid profile", err)
		return
	}
	if err := h.Profiles.SaveProfile(r.Context(), p); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns the catalog.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPolicyDTOs(h.Catalog.Definitions()))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decodeAbsence(w http.ResponseWriter, r *http.Request) (leave.AbsenceRecord, bool) {
	var dto AbsenceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return leave.AbsenceRecord{}, false
	}
	if err := h.validate.Struct(dto); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return leave.AbsenceRecord{}, false
	}
	rec, err := dto.ToRecord()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return leave.AbsenceRecord{}, false
	}
	return rec, true
}

func (h *Handler) decodeDecision(w http.ResponseWriter, r *http.Request) (string, bool) {
	var dto DecisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return "", false
	}
	if err := h.validate.Struct(dto); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return "", false
	}
	return dto.ActorID, true
}

// writeDomainError maps engine errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found", err)
	case leave.IsConflict(err):
		writeError(w, http.StatusConflict, "conflict", err)
	case leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid request", err)
	default:
		if h.Log != nil {
			h.Log.WithError(err).Error("internal error")
		}
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
