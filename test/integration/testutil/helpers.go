//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/daRevrse/football-network/internal/auth"
	"github.com/daRevrse/football-network/internal/domain"
)

// UserToken issues a user-realm JWT for the given subject.
func (env *TestEnv) UserToken(userID uuid.UUID) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmUser, userID, "user@test.com", "")
	if err != nil {
		env.t.Fatalf("UserToken: %v", err)
	}
	return token
}

// AdminToken issues an admin-realm JWT with the admin role.
func (env *TestEnv) AdminToken() string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, uuid.New(), "admin@test.com", auth.RoleAdmin)
	if err != nil {
		env.t.Fatalf("AdminToken: %v", err)
	}
	return token
}

// CreateTeam inserts a team with n active players and returns the team ID
// plus the player IDs.
func (env *TestEnv) CreateTeam(name string, players int) (uuid.UUID, []uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	teamID := uuid.New()
	if _, err := env.Pool.Exec(ctx,
		"INSERT INTO teams (id, name) VALUES ($1, $2)", teamID, name); err != nil {
		env.t.Fatalf("CreateTeam: insert team: %v", err)
	}

	playerIDs := make([]uuid.UUID, 0, players)
	for i := 0; i < players; i++ {
		playerID := uuid.New()
		if _, err := env.Pool.Exec(ctx,
			"INSERT INTO team_members (team_id, player_id, active) VALUES ($1, $2, true)",
			teamID, playerID); err != nil {
			env.t.Fatalf("CreateTeam: insert member: %v", err)
		}
		playerIDs = append(playerIDs, playerID)
	}
	return teamID, playerIDs
}

// CreateMatch inserts a match row in the given status and returns its ID.
func (env *TestEnv) CreateMatch(homeTeamID, awayTeamID uuid.UUID, status domain.MatchStatus, scheduledAt time.Time) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	matchID := uuid.New()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO matches (id, home_team_id, away_team_id, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5)`,
		matchID, homeTeamID, awayTeamID, scheduledAt, string(status))
	if err != nil {
		env.t.Fatalf("CreateMatch: %v", err)
	}
	return matchID
}

// CompleteMatchRow forces a match row into completed state directly.
func (env *TestEnv) CompleteMatchRow(matchID uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx, `
		UPDATE matches
		SET status = 'completed', started_at = now() - interval '3 hours', completed_at = now()
		WHERE id = $1`, matchID)
	if err != nil {
		env.t.Fatalf("CompleteMatchRow: %v", err)
	}
}

// ParticipationID looks up the participation row for a player in a match.
func (env *TestEnv) ParticipationID(matchID, playerID uuid.UUID) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id uuid.UUID
	err := env.Pool.QueryRow(ctx, `
		SELECT id FROM match_participations
		WHERE match_id = $1 AND player_id = $2`, matchID, playerID).Scan(&id)
	if err != nil {
		env.t.Fatalf("ParticipationID: %v", err)
	}
	return id
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.do("GET", path, nil, token)
}

// AuthPOST performs an authenticated POST request.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do("POST", path, body, token)
}

// AuthPATCH performs an authenticated PATCH request.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do("PATCH", path, body, token)
}

func (env *TestEnv) do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}
