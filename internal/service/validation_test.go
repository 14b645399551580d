package service

import (
	"context"
	"testing"
	"time"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedMatch() *domain.Match {
	away := uuid.New()
	completed := time.Date(2026, 4, 18, 18, 0, 0, 0, time.UTC)
	return &domain.Match{
		ID:          uuid.New(),
		HomeTeamID:  uuid.New(),
		AwayTeamID:  &away,
		ScheduledAt: completed.Add(-2 * time.Hour),
		Status:      domain.MatchCompleted,
		CompletedAt: &completed,
	}
}

func newValidation(matches *fakeMatchRepo) (*ValidationService, *fakeValidationRepo, *fakeOutbox, *captureNotifier) {
	validations := &fakeValidationRepo{}
	outbox := &fakeOutbox{}
	notifier := &captureNotifier{}
	svc := NewValidationService(fakeDB{}, matches, validations, outbox, notifier, testLogger())
	return svc, validations, outbox, notifier
}

func submit(m *domain.Match, role domain.ValidatorRole, home, away int) SubmitValidationInput {
	return SubmitValidationInput{
		MatchID:     m.ID,
		ValidatorID: uuid.New(),
		Role:        role,
		HomeScore:   home,
		AwayScore:   away,
	}
}

func TestSubmit_MatchNotFound(t *testing.T) {
	svc, validations, _, _ := newValidation(newFakeMatchRepo())

	_, err := svc.Submit(context.Background(), SubmitValidationInput{
		MatchID: uuid.New(), ValidatorID: uuid.New(), Role: domain.RoleHomeManager,
	})

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Empty(t, validations.records)
}

func TestSubmit_RejectsNonCompletedMatch(t *testing.T) {
	m := completedMatch()
	m.Status = domain.MatchInProgress
	svc, validations, _, _ := newValidation(newFakeMatchRepo(m))

	_, err := svc.Submit(context.Background(), submit(m, domain.RoleHomeManager, 2, 1))

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_STATE", appErr.Code)
	assert.Empty(t, validations.records, "no record may be created for a non-completed match")
}

func TestSubmit_RejectsDuplicate(t *testing.T) {
	m := completedMatch()
	svc, validations, _, _ := newValidation(newFakeMatchRepo(m))

	in := submit(m, domain.RoleHomeManager, 2, 1)
	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), in)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.Equal(t, "You have already validated this match", appErr.Message)
	assert.Len(t, validations.records, 1, "record set unchanged after duplicate")
}

func TestSubmit_RejectsBadInput(t *testing.T) {
	m := completedMatch()
	svc, _, _, _ := newValidation(newFakeMatchRepo(m))

	_, err := svc.Submit(context.Background(), submit(m, "linesman", 1, 0))
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = svc.Submit(context.Background(), submit(m, domain.RoleReferee, -1, 0))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestSubmit_SingleValidationAwaitsMore(t *testing.T) {
	m := completedMatch()
	repo := newFakeMatchRepo(m)
	svc, _, outbox, notifier := newValidation(repo)

	res, err := svc.Submit(context.Background(), submit(m, domain.RoleHomeManager, 3, 1))
	require.NoError(t, err)

	assert.False(t, res.Consensus.HasConsensus)
	assert.False(t, res.Consensus.HasDispute)
	assert.Equal(t, 1, res.Consensus.Total)
	assert.NotEqual(t, uuid.Nil, res.ValidationID)

	stored := repo.matches[m.ID]
	assert.True(t, stored.HomeValidated, "per-role flag set")
	assert.False(t, stored.HasScore(), "no score written yet")
	assert.False(t, stored.Disputed)

	assert.Equal(t, []domain.EventType{domain.EventValidationRecorded}, outbox.typesSeen())
	assert.Empty(t, notifier.events)
}

func TestSubmit_ConsensusFinalizesMatch(t *testing.T) {
	m := completedMatch()
	repo := newFakeMatchRepo(m)
	svc, _, outbox, notifier := newValidation(repo)

	_, err := svc.Submit(context.Background(), submit(m, domain.RoleHomeManager, 3, 1))
	require.NoError(t, err)

	res, err := svc.Submit(context.Background(), submit(m, domain.RoleAwayManager, 3, 1))
	require.NoError(t, err)

	assert.True(t, res.Consensus.HasConsensus)
	assert.Equal(t, 3, res.Consensus.HomeScore)
	assert.Equal(t, 1, res.Consensus.AwayScore)

	stored := repo.matches[m.ID]
	require.True(t, stored.HasScore())
	assert.Equal(t, 3, *stored.HomeScore)
	assert.Equal(t, 1, *stored.AwayScore)
	assert.True(t, stored.HomeValidated)
	assert.True(t, stored.AwayValidated)
	assert.True(t, stored.RefereeVerified, "majority overrides the absent referee")
	assert.False(t, stored.Disputed)

	assert.Contains(t, outbox.typesSeen(), domain.EventMatchFinalized)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, "match.score.confirmed", notifier.events[0].Type)
}

func TestSubmit_ThreeWayDisagreementDisputes(t *testing.T) {
	m := completedMatch()
	prior := 9
	m.HomeScore = &prior
	m.AwayScore = &prior
	repo := newFakeMatchRepo(m)
	svc, _, outbox, notifier := newValidation(repo)

	_, err := svc.Submit(context.Background(), submit(m, domain.RoleHomeManager, 3, 1))
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), submit(m, domain.RoleAwayManager, 2, 1))
	require.NoError(t, err)

	res, err := svc.Submit(context.Background(), submit(m, domain.RoleReferee, 3, 0))
	require.NoError(t, err)

	assert.False(t, res.Consensus.HasConsensus)
	assert.True(t, res.Consensus.HasDispute)
	assert.Equal(t, 3, res.Consensus.Total)

	stored := repo.matches[m.ID]
	assert.True(t, stored.Disputed)
	require.NotNil(t, stored.DisputeReason)
	assert.Equal(t, disputeReason, *stored.DisputeReason)
	// Pre-existing score untouched by a dispute.
	assert.Equal(t, prior, *stored.HomeScore)
	assert.Equal(t, prior, *stored.AwayScore)

	assert.Contains(t, outbox.typesSeen(), domain.EventMatchDisputed)
	require.NotEmpty(t, notifier.events)
	assert.Equal(t, "match.score.disputed", notifier.events[len(notifier.events)-1].Type)
}

func TestStatus_ReturnsRecordsAndSnapshot(t *testing.T) {
	m := completedMatch()
	svc, _, _, _ := newValidation(newFakeMatchRepo(m))

	_, err := svc.Submit(context.Background(), submit(m, domain.RoleHomeManager, 1, 1))
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Len(t, status.Validations, 1)
	assert.Equal(t, 1, status.Consensus.Total)
	assert.False(t, status.Consensus.HasConsensus)
}

func TestStatus_MatchNotFound(t *testing.T) {
	svc, _, _, _ := newValidation(newFakeMatchRepo())
	_, err := svc.Status(context.Background(), uuid.New())

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
