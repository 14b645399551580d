package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/daRevrse/football-network/internal/stats"
)

// StatsHandler handles team record endpoints.
type StatsHandler struct {
	recalc *stats.Recalculator
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(recalc *stats.Recalculator) *StatsHandler {
	return &StatsHandler{recalc: recalc}
}

// TeamStats handles GET /teams/{teamID}/stats.
func (h *StatsHandler) TeamStats(w http.ResponseWriter, r *http.Request) {
	teamID, err := uuid.Parse(chi.URLParam(r, "teamID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid team id"))
		return
	}

	rec, err := h.recalc.TeamStats(r.Context(), teamID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, rec)
}
