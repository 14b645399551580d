package service

import (
	"context"
	"testing"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/daRevrse/football-network/internal/policy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type participationEnv struct {
	svc      *ParticipationService
	matches  *fakeMatchRepo
	parts    *fakeParticipationRepo
	outbox   *fakeOutbox
	notifier *captureNotifier
	match    *domain.Match
}

func newParticipationEnv(homeSize, awaySize int) *participationEnv {
	m := confirmedMatch(sweepNow)
	matches := newFakeMatchRepo(m)
	parts := newFakeParticipationRepo()
	for i := 0; i < homeSize; i++ {
		parts.rosters[m.HomeTeamID] = append(parts.rosters[m.HomeTeamID], uuid.New())
	}
	for i := 0; i < awaySize; i++ {
		parts.rosters[*m.AwayTeamID] = append(parts.rosters[*m.AwayTeamID], uuid.New())
	}
	outbox := &fakeOutbox{}
	notifier := &captureNotifier{}
	svc := NewParticipationService(fakeDB{}, matches, parts, outbox, notifier, testLogger())
	return &participationEnv{svc: svc, matches: matches, parts: parts, outbox: outbox, notifier: notifier, match: m}
}

// seed creates the rosters' records and confirms the requested number of
// players per side.
func (e *participationEnv) seed(t *testing.T, homeConfirm, awayConfirm int) {
	t.Helper()
	_, err := e.svc.CreateForMatch(context.Background(), e.match.ID, e.match.HomeTeamID, *e.match.AwayTeamID)
	require.NoError(t, err)

	confirm := func(teamID uuid.UUID, n int) {
		for _, rec := range e.parts.records {
			if n == 0 {
				return
			}
			if rec.TeamID == teamID && rec.Status == domain.ParticipationPending {
				rec.Status = domain.ParticipationConfirmed
				n--
			}
		}
	}
	confirm(e.match.HomeTeamID, homeConfirm)
	confirm(*e.match.AwayTeamID, awayConfirm)
}

func (e *participationEnv) anyPending(teamID uuid.UUID) *domain.ParticipationRecord {
	for _, rec := range e.parts.records {
		if rec.TeamID == teamID && rec.Status == domain.ParticipationPending {
			return rec
		}
	}
	return nil
}

func TestCreateForMatch_SeedsBothRosters(t *testing.T) {
	env := newParticipationEnv(10, 8)

	res, err := env.svc.CreateForMatch(context.Background(), env.match.ID, env.match.HomeTeamID, *env.match.AwayTeamID)
	require.NoError(t, err)
	assert.Equal(t, 10, res.HomeCreated)
	assert.Equal(t, 8, res.AwayCreated)
	assert.Len(t, env.parts.records, 18)

	for _, rec := range env.parts.records {
		assert.Equal(t, domain.ParticipationPending, rec.Status, "records are only created pending")
	}
}

func TestCreateForMatch_Idempotent(t *testing.T) {
	env := newParticipationEnv(10, 10)

	_, err := env.svc.CreateForMatch(context.Background(), env.match.ID, env.match.HomeTeamID, *env.match.AwayTeamID)
	require.NoError(t, err)

	res, err := env.svc.CreateForMatch(context.Background(), env.match.ID, env.match.HomeTeamID, *env.match.AwayTeamID)
	require.NoError(t, err)
	assert.Zero(t, res.HomeCreated)
	assert.Zero(t, res.AwayCreated)
	assert.Len(t, env.parts.records, 20, "exactly one record per (match, player)")
}

func TestCreateForMatch_UnknownMatch(t *testing.T) {
	env := newParticipationEnv(1, 1)
	_, err := env.svc.CreateForMatch(context.Background(), uuid.New(), env.match.HomeTeamID, *env.match.AwayTeamID)

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestRespond_UpdatesRecordAndPersistsQuorum(t *testing.T) {
	env := newParticipationEnv(10, 10)
	env.seed(t, 6, 5) // home validated-level, away one short

	rec := env.anyPending(*env.match.AwayTeamID)
	require.NotNil(t, rec)

	note := "see you there"
	res, err := env.svc.Respond(context.Background(), rec.ID, domain.ParticipationConfirmed, &note)
	require.NoError(t, err)

	assert.Equal(t, domain.ParticipationConfirmed, res.Participation.Status)
	require.NotNil(t, res.Participation.RespondedAt)
	require.NotNil(t, res.Participation.Note)

	// 6 + 6 confirmed now: quorum valid.
	assert.True(t, res.Quorum.IsValid)
	assert.Equal(t, policy.QuorumValidated, res.Quorum.Level)
	assert.True(t, env.matches.matches[env.match.ID].ParticipationValid)

	require.Len(t, env.parts.history, 1, "history row appended")
	snap := env.parts.history[0]
	assert.Equal(t, 6, snap.HomeConfirmed)
	assert.Equal(t, 6, snap.AwayConfirmed)
	assert.True(t, snap.IsValid)
	assert.Equal(t, string(policy.QuorumValidated), snap.Level)
}

func TestRespond_WarningLevelIncrementsCounter(t *testing.T) {
	env := newParticipationEnv(10, 10)
	env.seed(t, 5, 3)

	rec := env.anyPending(*env.match.AwayTeamID)
	require.NotNil(t, rec)

	res, err := env.svc.Respond(context.Background(), rec.ID, domain.ParticipationConfirmed, nil)
	require.NoError(t, err)

	// 5 and 4 confirmed: warning band.
	assert.False(t, res.Quorum.IsValid)
	assert.Equal(t, policy.QuorumWarning, res.Quorum.Level)
	assert.Equal(t, 1, env.matches.matches[env.match.ID].QuorumWarnings)
	assert.Contains(t, env.outbox.typesSeen(), domain.EventQuorumAlert)
}

func TestRespond_DeclineKeepsCriticalLevel(t *testing.T) {
	env := newParticipationEnv(10, 10)
	env.seed(t, 6, 3)

	rec := env.anyPending(*env.match.AwayTeamID)
	require.NotNil(t, rec)

	res, err := env.svc.Respond(context.Background(), rec.ID, domain.ParticipationDeclined, nil)
	require.NoError(t, err)

	// Home fully valid but away at 3 confirmed: overall critical.
	assert.False(t, res.Quorum.IsValid)
	assert.Equal(t, policy.QuorumCritical, res.Quorum.Level)
	assert.Zero(t, env.matches.matches[env.match.ID].QuorumWarnings)
}

func TestRespond_RejectsBadStatus(t *testing.T) {
	env := newParticipationEnv(2, 2)
	env.seed(t, 0, 0)
	rec := env.anyPending(env.match.HomeTeamID)
	require.NotNil(t, rec)

	_, err := env.svc.Respond(context.Background(), rec.ID, domain.ParticipationPending, nil)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestRespond_UnknownParticipation(t *testing.T) {
	env := newParticipationEnv(1, 1)
	_, err := env.svc.Respond(context.Background(), uuid.New(), domain.ParticipationConfirmed, nil)

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestQuorumStatus_BothTeamsAtMinimum(t *testing.T) {
	env := newParticipationEnv(10, 10)
	env.seed(t, 6, 6)

	res, err := env.svc.QuorumStatus(context.Background(), env.match.ID)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, policy.QuorumValidated, res.Level)
	assert.Equal(t, policy.TeamTally{Confirmed: 6, Total: 10}, res.Home)
}

func TestQuorumStatus_OneSideBelowWarningFloor(t *testing.T) {
	env := newParticipationEnv(10, 10)
	env.seed(t, 6, 3)

	res, err := env.svc.QuorumStatus(context.Background(), env.match.ID)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, policy.QuorumCritical, res.Level)
}

func TestQuorumStatus_ReadOnly(t *testing.T) {
	env := newParticipationEnv(10, 10)
	env.seed(t, 6, 6)

	_, err := env.svc.QuorumStatus(context.Background(), env.match.ID)
	require.NoError(t, err)
	assert.Empty(t, env.parts.history, "status read must not append history")
	assert.False(t, env.matches.matches[env.match.ID].ParticipationValid, "status read must not persist validity")
}
