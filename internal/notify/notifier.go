package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Event is a lifecycle or validation notification addressed to users and/or
// whole teams.
type Event struct {
	Type    string      `json:"type"`
	MatchID uuid.UUID   `json:"match_id"`
	UserIDs []uuid.UUID `json:"-"`
	TeamIDs []uuid.UUID `json:"-"`
	Data    interface{} `json:"data,omitempty"`
}

// Notifier delivers events to affected users. Delivery is fire-and-forget:
// implementations swallow and log their own failures, and callers never
// treat notification as part of an operation's success contract.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// HubNotifier pushes events onto the in-process hub, one room per recipient.
type HubNotifier struct {
	hub    *Hub
	logger *slog.Logger
}

// NewHubNotifier creates a hub-backed Notifier.
func NewHubNotifier(hub *Hub, logger *slog.Logger) *HubNotifier {
	return &HubNotifier{hub: hub, logger: logger}
}

func (n *HubNotifier) Notify(_ context.Context, e Event) {
	for _, userID := range e.UserIDs {
		n.hub.Publish("user:"+userID.String(), e.Type, e)
	}
	for _, teamID := range e.TeamIDs {
		n.hub.Publish("team:"+teamID.String(), e.Type, e)
	}
	n.logger.Debug("notification dispatched",
		"type", e.Type,
		"match_id", e.MatchID,
		"users", len(e.UserIDs),
		"teams", len(e.TeamIDs),
	)
}

// NopNotifier discards all events. Used by tools and tests.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) {}
