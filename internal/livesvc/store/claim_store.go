package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bingovivo/live-services/internal/livesvc/models"
)

type ClaimStore struct {
	db *pgxpool.Pool
}

func NewClaimStore(db *pgxpool.Pool) *ClaimStore {
	return &ClaimStore{db: db}
}

// RecordClaim writes every claim outcome, accepted or not. Rejected claims
// are kept for audit; payout runs off accepted rows only.
func (s *ClaimStore) RecordClaim(ctx context.Context, claim *models.WinClaim) error {
	query := `
		INSERT INTO win_claims (id, event_id, card_id, user_id, pattern, accepted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.Exec(ctx, query,
		claim.ID,
		claim.EventID,
		claim.CardID,
		claim.UserID,
		claim.Pattern,
		claim.Accepted,
		claim.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record claim for card %d: %w", claim.CardID, err)
	}

	return nil
}

// GetAcceptedClaims lists the accepted claims of one event in claim order.
func (s *ClaimStore) GetAcceptedClaims(ctx context.Context, eventID string) ([]*models.WinClaim, error) {
	query := `
		SELECT id, event_id, card_id, user_id, pattern, accepted, created_at
		FROM win_claims
		WHERE event_id = $1 AND accepted = true
		ORDER BY created_at
	`

	rows, err := s.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accepted claims: %w", err)
	}
	defer rows.Close()

	var claims []*models.WinClaim
	for rows.Next() {
		var c models.WinClaim
		err := rows.Scan(
			&c.ID,
			&c.EventID,
			&c.CardID,
			&c.UserID,
			&c.Pattern,
			&c.Accepted,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		claims = append(claims, &c)
	}

	return claims, rows.Err()
}
