package models

// Card ownership statuses.
const (
	CardAvailable = "AVAILABLE"
	CardSold      = "SOLD"
	CardPlaying   = "PLAYING"
)

// Card is a 5x5 bingo card. Numbers is row-major with 25 slots; slot 12
// holds the FREE sentinel 0. Ownership is assigned at purchase time by the
// backoffice backend, never by the engine.
type Card struct {
	ID       int    `json:"id"`
	EventID  string `json:"event_id"`
	Status   string `json:"status"`
	Numbers  []int  `json:"numbers"`
	TicketID string `json:"ticket_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}
