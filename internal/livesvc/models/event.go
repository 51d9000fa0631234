package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event lifecycle statuses, driven by the backoffice backend.
const (
	EventActive    = "ACTIVE"
	EventWaiting   = "WAITING"
	EventFinished  = "FINISHED"
	EventCancelled = "CANCELLED"
)

// Dealer is the host figure shown in the live room.
type Dealer struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	IsOnline bool   `json:"is_online"`
}

type LiveEvent struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	TimeStart   string          `json:"time_start"`
	TimeEnd     string          `json:"time_end"`
	Status      string          `json:"status"`
	Dealer      *Dealer         `json:"dealer,omitempty"`
	PrizePool   decimal.Decimal `json:"prize_pool"`
	Commission  decimal.Decimal `json:"commission"` // platform cut, percent
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Payout is the prize pool after the platform commission is deducted.
func (e *LiveEvent) Payout() decimal.Decimal {
	cut := e.PrizePool.Mul(e.Commission).Div(decimal.NewFromInt(100))
	return e.PrizePool.Sub(cut)
}
