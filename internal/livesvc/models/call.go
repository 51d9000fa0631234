package models

import "time"

// BingoCall is one drawn number. CallOrder is 1-based, strictly increasing
// and gapless within an event.
type BingoCall struct {
	Number    int       `json:"number"`
	Letter    string    `json:"letter"`
	Timestamp time.Time `json:"timestamp"`
	CallOrder int       `json:"call_order"`
}

// GameState is the snapshot pushed to subscribers on every tick and
// returned on demand for late-joiner catch-up.
type GameState struct {
	IsActive       bool        `json:"is_active"`
	CurrentCall    *BingoCall  `json:"current_call,omitempty"`
	CalledNumbers  []BingoCall `json:"called_numbers"`
	Winners        []Winner    `json:"winners"`
	TimeToNextCall int         `json:"time_to_next_call"`
}
