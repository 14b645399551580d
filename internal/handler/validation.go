package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/daRevrse/football-network/internal/auth"
	"github.com/daRevrse/football-network/internal/domain"
	"github.com/daRevrse/football-network/internal/service"
)

// ValidationHandler handles score validation endpoints.
type ValidationHandler struct {
	svc *service.ValidationService
}

// NewValidationHandler creates a new ValidationHandler.
func NewValidationHandler(svc *service.ValidationService) *ValidationHandler {
	return &ValidationHandler{svc: svc}
}

// Submit handles POST /matches/{matchID}/validations.
func (h *ValidationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	validatorID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var body struct {
		Role      domain.ValidatorRole `json:"role"`
		HomeScore int                  `json:"home_score"`
		AwayScore int                  `json:"away_score"`
		Notes     *string              `json:"notes"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.svc.Submit(r.Context(), service.SubmitValidationInput{
		MatchID:     matchID,
		ValidatorID: validatorID,
		Role:        body.Role,
		HomeScore:   body.HomeScore,
		AwayScore:   body.AwayScore,
		Notes:       body.Notes,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

// Status handles GET /matches/{matchID}/validations.
func (h *ValidationHandler) Status(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	status, err := h.svc.Status(r.Context(), matchID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, status)
}

func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return uuid.Nil, domain.ErrUnauthorized("no auth context")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized("invalid subject claim")
	}
	return id, nil
}
