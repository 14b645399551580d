package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store is the interface for cached read models (Redis-backed in production).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const teamRecordTTL = 5 * time.Minute

func teamRecordKey(teamID uuid.UUID) string {
	return fmt.Sprintf("stats:team:%s", teamID)
}

// UpdateTeamRecord caches a team's aggregate record.
func UpdateTeamRecord(ctx context.Context, store Store, rec TeamRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal team record: %w", err)
	}
	return store.Set(ctx, teamRecordKey(rec.TeamID), data, teamRecordTTL)
}

// GetTeamRecord retrieves a cached team record.
func GetTeamRecord(ctx context.Context, store Store, teamID uuid.UUID) (*TeamRecord, error) {
	data, err := store.Get(ctx, teamRecordKey(teamID))
	if err != nil {
		return nil, err
	}
	var rec TeamRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// InvalidateTeamRecord removes a team's cached record.
func InvalidateTeamRecord(ctx context.Context, store Store, teamID uuid.UUID) error {
	return store.Delete(ctx, teamRecordKey(teamID))
}

// InMemoryStore is a simple in-memory store for development/testing.
type InMemoryStore struct {
	data map[string]entry
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]entry)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(s.data, key)
		return nil, fmt.Errorf("key expired: %s", key)
	}
	return e.value, nil
}

func (s *InMemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.data[key] = entry{value: value, expiresAt: exp}
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}
