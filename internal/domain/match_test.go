package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	allowed := []struct{ from, to MatchStatus }{
		{MatchPending, MatchConfirmed},
		{MatchPending, MatchCancelled},
		{MatchConfirmed, MatchInProgress},
		{MatchConfirmed, MatchCancelled},
		{MatchInProgress, MatchCompleted},
		{MatchInProgress, MatchCancelled},
	}
	for _, tt := range allowed {
		assert.True(t, tt.from.CanTransitionTo(tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	forbidden := []struct{ from, to MatchStatus }{
		{MatchConfirmed, MatchPending},
		{MatchInProgress, MatchConfirmed},
		{MatchCompleted, MatchInProgress},
		{MatchCompleted, MatchCancelled},
		{MatchCancelled, MatchConfirmed},
		{MatchPending, MatchCompleted},
		{MatchConfirmed, MatchCompleted},
	}
	for _, tt := range forbidden {
		assert.False(t, tt.from.CanTransitionTo(tt.to), "%s -> %s should be rejected", tt.from, tt.to)
	}
}

func TestDueToStart(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	t.Run("confirmed and past kickoff", func(t *testing.T) {
		m := &Match{Status: MatchConfirmed, ScheduledAt: now.Add(-time.Minute)}
		assert.True(t, m.DueToStart(now))
	})

	t.Run("exactly at kickoff", func(t *testing.T) {
		m := &Match{Status: MatchConfirmed, ScheduledAt: now}
		assert.True(t, m.DueToStart(now))
	})

	t.Run("future kickoff untouched", func(t *testing.T) {
		m := &Match{Status: MatchConfirmed, ScheduledAt: now.Add(time.Minute)}
		assert.False(t, m.DueToStart(now))
	})

	t.Run("wrong status", func(t *testing.T) {
		m := &Match{Status: MatchPending, ScheduledAt: now.Add(-time.Hour)}
		assert.False(t, m.DueToStart(now))
	})
}

func TestDueToComplete(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	t.Run("started and duration elapsed", func(t *testing.T) {
		started := now.Add(-121 * time.Minute)
		m := &Match{Status: MatchInProgress, StartedAt: &started, ScheduledAt: now}
		assert.True(t, m.DueToComplete(now))
	})

	t.Run("started but still running", func(t *testing.T) {
		started := now.Add(-30 * time.Minute)
		m := &Match{Status: MatchInProgress, StartedAt: &started}
		assert.False(t, m.DueToComplete(now))
	})

	t.Run("never started falls back to scheduled time", func(t *testing.T) {
		m := &Match{Status: MatchInProgress, ScheduledAt: now.Add(-3 * time.Hour)}
		assert.True(t, m.DueToComplete(now))
	})

	t.Run("custom duration respected", func(t *testing.T) {
		started := now.Add(-100 * time.Minute)
		m := &Match{Status: MatchInProgress, StartedAt: &started, DurationMinutes: 90}
		assert.True(t, m.DueToComplete(now))
	})

	t.Run("completed match never due", func(t *testing.T) {
		m := &Match{Status: MatchCompleted, ScheduledAt: now.Add(-5 * time.Hour)}
		assert.False(t, m.DueToComplete(now))
	})
}

func TestValidateScores(t *testing.T) {
	assert.NoError(t, ValidateScores(0, 0))
	assert.NoError(t, ValidateScores(3, 1))
	assert.Error(t, ValidateScores(-1, 0))
	assert.Error(t, ValidateScores(2, -3))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleHomeManager))
	assert.True(t, ValidRole(RoleAwayManager))
	assert.True(t, ValidRole(RoleReferee))
	assert.False(t, ValidRole("linesman"))
}

func TestValidResponse(t *testing.T) {
	assert.True(t, ValidResponse(ParticipationConfirmed))
	assert.True(t, ValidResponse(ParticipationDeclined))
	assert.True(t, ValidResponse(ParticipationMaybe))
	assert.False(t, ValidResponse(ParticipationPending))
	assert.False(t, ValidResponse("yes"))
}
