package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Win patterns.
const (
	PatternLine        = "LINE"
	PatternFullHouse   = "FULL_HOUSE"
	PatternFourCorners = "FOUR_CORNERS"
)

type WinClaim struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	CardID    int       `json:"card_id"`
	UserID    string    `json:"user_id"`
	Pattern   string    `json:"pattern"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}

// Winner is a confirmed claim as carried in GameState broadcasts.
type Winner struct {
	UserID    string          `json:"user_id"`
	CardID    int             `json:"card_id"`
	Pattern   string          `json:"pattern"`
	Payout    decimal.Decimal `json:"payout"`
	Timestamp time.Time       `json:"timestamp"`
}
