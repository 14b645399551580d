package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/daRevrse/football-network/internal/service"
)

// ParticipationHandler handles participation and quorum endpoints.
type ParticipationHandler struct {
	svc *service.ParticipationService
}

// NewParticipationHandler creates a new ParticipationHandler.
func NewParticipationHandler(svc *service.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{svc: svc}
}

// Create handles POST /matches/{matchID}/participations.
func (h *ParticipationHandler) Create(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var body struct {
		HomeTeamID uuid.UUID `json:"home_team_id"`
		AwayTeamID uuid.UUID `json:"away_team_id"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if body.HomeTeamID == uuid.Nil || body.AwayTeamID == uuid.Nil {
		RespondError(w, domain.ErrValidation("home_team_id and away_team_id are required"))
		return
	}

	result, err := h.svc.CreateForMatch(r.Context(), matchID, body.HomeTeamID, body.AwayTeamID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

// Respond handles PATCH /participations/{participationID}.
func (h *ParticipationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	participationID, err := uuid.Parse(chi.URLParam(r, "participationID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid participation id"))
		return
	}

	var body struct {
		Status domain.ParticipationStatus `json:"status"`
		Note   *string                    `json:"note"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.svc.Respond(r.Context(), participationID, body.Status, body.Note)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// Quorum handles GET /matches/{matchID}/quorum.
func (h *ParticipationHandler) Quorum(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.svc.QuorumStatus(r.Context(), matchID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}
