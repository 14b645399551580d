package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/daRevrse/football-network/internal/repository"
	"github.com/daRevrse/football-network/internal/service"
)

// MatchHandler handles match lifecycle endpoints.
type MatchHandler struct {
	svc     *service.LifecycleService
	matches repository.MatchRepository
	db      repository.DBTX
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(svc *service.LifecycleService, matches repository.MatchRepository, db repository.DBTX) *MatchHandler {
	return &MatchHandler{svc: svc, matches: matches, db: db}
}

// Get handles GET /matches/{matchID}.
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	m, err := h.matches.FindByID(r.Context(), h.db, matchID)
	if err != nil {
		RespondError(w, domain.ErrInternal("load match", err))
		return
	}
	if m == nil {
		RespondError(w, domain.ErrNotFound("match", matchID.String()))
		return
	}
	RespondJSON(w, http.StatusOK, m)
}

// Check handles POST /matches/{matchID}/check.
func (h *MatchHandler) Check(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.svc.CheckMatch(r.Context(), matchID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// Start handles POST /matches/{matchID}/start.
func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	m, err := h.svc.StartMatch(r.Context(), matchID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, m)
}

// Complete handles POST /matches/{matchID}/complete.
func (h *MatchHandler) Complete(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	m, err := h.svc.CompleteMatch(r.Context(), matchID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, m)
}

// Cancel handles POST /matches/{matchID}/cancel.
func (h *MatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.svc.CancelMatch(r.Context(), matchID, input.Reason); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// Sweep handles POST /admin/sweep, forcing a lifecycle sweep outside the ticker.
func (h *MatchHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	transitioned, err := h.svc.RunSweep(r.Context())
	if err != nil {
		RespondError(w, domain.ErrInternal("run sweep", err))
		return
	}
	RespondJSON(w, http.StatusOK, map[string]int{"transitioned": transitioned})
}

func matchIDFromURL(r *http.Request) (uuid.UUID, error) {
	matchID, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid match id")
	}
	return matchID, nil
}
