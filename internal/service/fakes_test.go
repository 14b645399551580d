package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/daRevrse/football-network/internal/notify"
	"github.com/daRevrse/football-network/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- fake DB / Tx ---

// fakeTx satisfies pgx.Tx for the methods services touch; the fake
// repositories ignore the DBTX handed to them.
type fakeTx struct{ pgx.Tx }

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

func (fakeTx) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (fakeTx) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, nil
}
func (fakeTx) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, nil
}
func (fakeDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}
func (fakeDB) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

// --- fake match repository ---

type fakeMatchRepo struct {
	matches      map[uuid.UUID]*domain.Match
	failStart    map[uuid.UUID]error
	failComplete map[uuid.UUID]error
	// raceStart simulates a concurrent actor winning the guarded UPDATE
	// between the due-list snapshot and the transition.
	raceStart map[uuid.UUID]bool
}

func newFakeMatchRepo(matches ...*domain.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{
		matches:      make(map[uuid.UUID]*domain.Match),
		failStart:    make(map[uuid.UUID]error),
		failComplete: make(map[uuid.UUID]error),
		raceStart:    make(map[uuid.UUID]bool),
	}
	for _, m := range matches {
		r.matches[m.ID] = m
	}
	return r
}

func (r *fakeMatchRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) ListDueForStart(_ context.Context, _ repository.DBTX, now time.Time) ([]domain.Match, error) {
	var due []domain.Match
	for _, m := range r.matches {
		if m.DueToStart(now) {
			due = append(due, *m)
		}
	}
	return due, nil
}

func (r *fakeMatchRepo) ListDueForCompletion(_ context.Context, _ repository.DBTX, now time.Time) ([]domain.Match, error) {
	var due []domain.Match
	for _, m := range r.matches {
		if m.DueToComplete(now) {
			due = append(due, *m)
		}
	}
	return due, nil
}

func (r *fakeMatchRepo) MarkInProgress(_ context.Context, _ repository.DBTX, id uuid.UUID, now time.Time) (bool, error) {
	if err := r.failStart[id]; err != nil {
		return false, err
	}
	m, ok := r.matches[id]
	if !ok || m.Status != domain.MatchConfirmed {
		return false, nil
	}
	if r.raceStart[id] {
		delete(r.raceStart, id)
		at := now
		m.Status = domain.MatchInProgress
		m.StartedAt = &at
		return false, nil
	}
	m.Status = domain.MatchInProgress
	if m.StartedAt == nil {
		at := now
		m.StartedAt = &at
	}
	return true, nil
}

func (r *fakeMatchRepo) MarkCompleted(_ context.Context, _ repository.DBTX, id uuid.UUID, now time.Time) (bool, error) {
	if err := r.failComplete[id]; err != nil {
		return false, err
	}
	m, ok := r.matches[id]
	if !ok || m.Status != domain.MatchInProgress {
		return false, nil
	}
	m.Status = domain.MatchCompleted
	at := now
	m.CompletedAt = &at
	return true, nil
}

func (r *fakeMatchRepo) MarkCancelled(_ context.Context, _ repository.DBTX, id uuid.UUID) (bool, error) {
	m, ok := r.matches[id]
	if !ok {
		return false, nil
	}
	switch m.Status {
	case domain.MatchPending, domain.MatchConfirmed, domain.MatchInProgress:
		m.Status = domain.MatchCancelled
		return true, nil
	}
	return false, nil
}

func (r *fakeMatchRepo) SetValidationFlag(_ context.Context, _ repository.DBTX, id uuid.UUID, role domain.ValidatorRole, at time.Time) error {
	m := r.matches[id]
	switch role {
	case domain.RoleHomeManager:
		m.HomeValidated = true
		m.HomeValidatedAt = &at
	case domain.RoleAwayManager:
		m.AwayValidated = true
		m.AwayValidatedAt = &at
	case domain.RoleReferee:
		m.RefereeVerified = true
		m.RefereeVerifiedAt = &at
	}
	return nil
}

func (r *fakeMatchRepo) ApplyConsensus(_ context.Context, _ repository.DBTX, id uuid.UUID, homeScore, awayScore int, at time.Time) error {
	m := r.matches[id]
	m.HomeScore = &homeScore
	m.AwayScore = &awayScore
	m.HomeValidated = true
	m.AwayValidated = true
	m.RefereeVerified = true
	if m.HomeValidatedAt == nil {
		m.HomeValidatedAt = &at
	}
	if m.AwayValidatedAt == nil {
		m.AwayValidatedAt = &at
	}
	if m.RefereeVerifiedAt == nil {
		m.RefereeVerifiedAt = &at
	}
	m.Disputed = false
	m.DisputeReason = nil
	return nil
}

func (r *fakeMatchRepo) MarkDisputed(_ context.Context, _ repository.DBTX, id uuid.UUID, reason string) error {
	m := r.matches[id]
	m.Disputed = true
	m.DisputeReason = &reason
	return nil
}

func (r *fakeMatchRepo) UpdateQuorum(_ context.Context, _ repository.DBTX, id uuid.UUID, isValid, warned bool) error {
	m := r.matches[id]
	m.ParticipationValid = isValid
	if warned {
		m.QuorumWarnings++
	}
	return nil
}

// --- fake validation repository ---

type fakeValidationRepo struct {
	records []domain.ValidationRecord
}

func (r *fakeValidationRepo) Insert(_ context.Context, _ repository.DBTX, rec *domain.ValidationRecord) error {
	for _, existing := range r.records {
		if existing.MatchID == rec.MatchID &&
			existing.ValidatorID == rec.ValidatorID &&
			existing.Role == rec.Role {
			return domain.ErrConflict("You have already validated this match")
		}
	}
	r.records = append(r.records, *rec)
	return nil
}

func (r *fakeValidationRepo) Exists(_ context.Context, _ repository.DBTX, matchID, validatorID uuid.UUID, role domain.ValidatorRole) (bool, error) {
	for _, existing := range r.records {
		if existing.MatchID == matchID && existing.ValidatorID == validatorID && existing.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeValidationRepo) ListByMatch(_ context.Context, _ repository.DBTX, matchID uuid.UUID) ([]domain.ValidationRecord, error) {
	var out []domain.ValidationRecord
	for _, rec := range r.records {
		if rec.MatchID == matchID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// --- fake participation repository ---

type fakeParticipationRepo struct {
	rosters map[uuid.UUID][]uuid.UUID // teamID -> active player ids
	records map[uuid.UUID]*domain.ParticipationRecord
	history []domain.QuorumSnapshot
}

func newFakeParticipationRepo() *fakeParticipationRepo {
	return &fakeParticipationRepo{
		rosters: make(map[uuid.UUID][]uuid.UUID),
		records: make(map[uuid.UUID]*domain.ParticipationRecord),
	}
}

func (r *fakeParticipationRepo) CreateForTeam(_ context.Context, _ repository.DBTX, matchID, teamID uuid.UUID) (int, error) {
	created := 0
	for _, playerID := range r.rosters[teamID] {
		if r.findByMatchPlayer(matchID, playerID) != nil {
			continue
		}
		rec := &domain.ParticipationRecord{
			ID:       uuid.New(),
			MatchID:  matchID,
			TeamID:   teamID,
			PlayerID: playerID,
			Status:   domain.ParticipationPending,
		}
		r.records[rec.ID] = rec
		created++
	}
	return created, nil
}

func (r *fakeParticipationRepo) findByMatchPlayer(matchID, playerID uuid.UUID) *domain.ParticipationRecord {
	for _, rec := range r.records {
		if rec.MatchID == matchID && rec.PlayerID == playerID {
			return rec
		}
	}
	return nil
}

func (r *fakeParticipationRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.ParticipationRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeParticipationRepo) UpdateResponse(_ context.Context, _ repository.DBTX, id uuid.UUID, status domain.ParticipationStatus, note *string, at time.Time) (*domain.ParticipationRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	rec.Status = status
	rec.Note = note
	rec.RespondedAt = &at
	cp := *rec
	return &cp, nil
}

func (r *fakeParticipationRepo) TallyForTeam(_ context.Context, _ repository.DBTX, matchID, teamID uuid.UUID) (int, int, error) {
	confirmed, total := 0, 0
	for _, rec := range r.records {
		if rec.MatchID == matchID && rec.TeamID == teamID {
			total++
			if rec.Status == domain.ParticipationConfirmed {
				confirmed++
			}
		}
	}
	return confirmed, total, nil
}

func (r *fakeParticipationRepo) InsertQuorumSnapshot(_ context.Context, _ repository.DBTX, snap domain.QuorumSnapshot) error {
	r.history = append(r.history, snap)
	return nil
}

// --- fake outbox / notifier ---

type fakeOutbox struct {
	events []domain.OutboxDraft
}

func (o *fakeOutbox) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	o.events = append(o.events, draft)
	return nil
}

func (o *fakeOutbox) FetchUnpublishedRows(context.Context, repository.DBTX, int) ([]domain.OutboxRow, error) {
	return nil, nil
}

func (o *fakeOutbox) MarkPublished(context.Context, repository.DBTX, []int64) error { return nil }

func (o *fakeOutbox) typesSeen() []domain.EventType {
	types := make([]domain.EventType, len(o.events))
	for i, e := range o.events {
		types[i] = e.EventType
	}
	return types
}

type captureNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *captureNotifier) Notify(_ context.Context, e notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}
