package models

import "time"

type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar,omitempty"`
	IsOnline bool      `json:"is_online"`
	JoinedAt time.Time `json:"joined_at"`
	CardIDs  []int     `json:"card_ids"`
}
