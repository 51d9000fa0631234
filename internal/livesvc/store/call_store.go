package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bingovivo/live-services/internal/livesvc/models"
)

type CallStore struct {
	db *pgxpool.Pool
}

func NewCallStore(db *pgxpool.Pool) *CallStore {
	return &CallStore{db: db}
}

// AppendCall persists one call. The event_calls table carries unique
// (event_id, call_order) and (event_id, number) constraints, so a gapped
// or repeated call never reaches the history.
func (s *CallStore) AppendCall(ctx context.Context, eventID string, call models.BingoCall) error {
	query := `
		INSERT INTO event_calls (event_id, number, letter, called_at, call_order)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.Exec(ctx, query,
		eventID,
		call.Number,
		call.Letter,
		call.Timestamp,
		call.CallOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to append call %d for event %s: %w", call.CallOrder, eventID, err)
	}

	return nil
}

// GetHistory reads the ordered call history back, for recovery after a
// service restart.
func (s *CallStore) GetHistory(ctx context.Context, eventID string) ([]models.BingoCall, error) {
	query := `
		SELECT number, letter, called_at, call_order
		FROM event_calls
		WHERE event_id = $1
		ORDER BY call_order
	`

	rows, err := s.db.Query(ctx, query, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call history: %w", err)
	}
	defer rows.Close()

	var history []models.BingoCall
	for rows.Next() {
		var c models.BingoCall
		err := rows.Scan(
			&c.Number,
			&c.Letter,
			&c.Timestamp,
			&c.CallOrder,
		)
		if err != nil {
			return nil, err
		}
		history = append(history, c)
	}

	return history, rows.Err()
}
