//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertMatchStatus queries the matches table and asserts the row status.
func AssertMatchStatus(t *testing.T, env *TestEnv, matchID uuid.UUID, expected string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var status string
	err := env.Pool.QueryRow(ctx,
		"SELECT status FROM matches WHERE id = $1", matchID).Scan(&status)
	if err != nil {
		t.Fatalf("AssertMatchStatus: query: %v", err)
	}
	if status != expected {
		t.Errorf("match status: expected %q, got %q", expected, status)
	}
}

// AssertMatchScore asserts the persisted score of a match.
func AssertMatchScore(t *testing.T, env *TestEnv, matchID uuid.UUID, home, away int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var gotHome, gotAway *int
	err := env.Pool.QueryRow(ctx,
		"SELECT home_score, away_score FROM matches WHERE id = $1", matchID).Scan(&gotHome, &gotAway)
	if err != nil {
		t.Fatalf("AssertMatchScore: query: %v", err)
	}
	if gotHome == nil || gotAway == nil {
		t.Fatalf("AssertMatchScore: score not set")
	}
	if *gotHome != home || *gotAway != away {
		t.Errorf("score: expected %d-%d, got %d-%d", home, away, *gotHome, *gotAway)
	}
}

// CountOutboxEvents returns the number of outbox events of a type for an aggregate.
func CountOutboxEvents(t *testing.T, env *TestEnv, aggregateID string, eventType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM event_outbox WHERE aggregate_id = $1 AND event_type = $2",
		aggregateID, eventType).Scan(&count)
	if err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}

// CountQuorumSnapshots returns the number of history rows for a match.
func CountQuorumSnapshots(t *testing.T, env *TestEnv, matchID uuid.UUID) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM participation_status_history WHERE match_id = $1", matchID).Scan(&count)
	if err != nil {
		t.Fatalf("CountQuorumSnapshots: %v", err)
	}
	return count
}
