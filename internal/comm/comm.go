package comm

import (
	"encoding/json"

	"github.com/bingovivo/live-services/internal/livesvc/models"
)

// WSMessage is the envelope every message rides in, between web clients
// and services and across NATS. SocketId is empty on broadcasts.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "join-event", "game-state"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// JoinRequest asks to enter an event room.
type JoinRequest struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar,omitempty"`
}

// LeaveRequest marks a participant offline.
type LeaveRequest struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

// MarkRequest records a called number on a card.
type MarkRequest struct {
	EventID string `json:"event_id"`
	CardID  int    `json:"card_id"`
	Number  int    `json:"number"`
	UserID  string `json:"user_id"`
}

// ClaimRequest is a player pressing BINGO for a pattern.
type ClaimRequest struct {
	EventID string `json:"event_id"`
	CardID  int    `json:"card_id"`
	Pattern string `json:"pattern"`
	UserID  string `json:"user_id"`
}

// CardRequest fetches one card's view.
type CardRequest struct {
	EventID string `json:"event_id"`
	CardID  int    `json:"card_id"`
	UserID  string `json:"user_id"`
}

// StateRequest fetches the on-demand GameState or roster.
type StateRequest struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

// JoinResponse carries the event metadata and catch-up state after a join.
type JoinResponse struct {
	Ok     bool              `json:"ok"`
	Reason string            `json:"reason,omitempty"` // "not-found" or "not-active"
	Event  *models.LiveEvent `json:"event,omitempty"`
	State  *models.GameState `json:"state,omitempty"`
}

// StateBroadcast wraps a GameState with its event id so the socket edge
// can route it to the right room.
type StateBroadcast struct {
	EventID string           `json:"event_id"`
	State   models.GameState `json:"state"`
}

// RosterData is the ordered participant list for one requester.
type RosterData struct {
	EventID      string               `json:"event_id"`
	Participants []models.Participant `json:"participants"`
}

// ClaimResult reports whether a claim was accepted.
type ClaimResult struct {
	EventID  string `json:"event_id"`
	CardID   int    `json:"card_id"`
	Pattern  string `json:"pattern"`
	Accepted bool   `json:"accepted"`
}

// MarkResult reports whether a mark was accepted. A rejected mark is a
// routine outcome the UI may silently ignore.
type MarkResult struct {
	EventID  string `json:"event_id"`
	CardID   int    `json:"card_id"`
	Number   int    `json:"number"`
	Accepted bool   `json:"accepted"`
	Marked   []int  `json:"marked"`
}
