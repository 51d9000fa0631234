// Package backend is the client for the backoffice REST API. The engine
// treats it as a black box: event metadata and card ownership come from
// here, the call history never does.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bingovivo/live-services/internal/livesvc/game"
	"github.com/bingovivo/live-services/internal/livesvc/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type eventPayload struct {
	Event *models.LiveEvent `json:"event"`
	Cards []*models.Card    `json:"cards"`
}

// GetEvent fetches event metadata and the card roster. A 404 maps to
// ErrEventNotFound so join flows can tell "unavailable" apart from
// "not active".
func (c *Client) GetEvent(ctx context.Context, eventID string) (*models.LiveEvent, []*models.Card, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/events/%s", c.baseURL, eventID), nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("backend get event %s: %w", eventID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, game.ErrEventNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, nil, fmt.Errorf("backend get event %s: status %d: %s", eventID, resp.StatusCode, body)
	}

	var payload eventPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, nil, fmt.Errorf("backend get event %s: decode: %w", eventID, err)
	}
	if payload.Event == nil {
		return nil, nil, game.ErrEventNotFound
	}

	return payload.Event, payload.Cards, nil
}

type purchaseConfirmation struct {
	EventID  string `json:"event_id"`
	CardID   int    `json:"card_id"`
	TicketID string `json:"ticket_id"`
	UserID   string `json:"user_id"`
}

// ConfirmPurchase tells the backend a card was bound to a participant and
// ticket. Ownership transitions live entirely on the backend side.
func (c *Client) ConfirmPurchase(ctx context.Context, eventID string, cardID int, ticketID, userID string) error {
	body, err := json.Marshal(purchaseConfirmation{
		EventID:  eventID,
		CardID:   cardID,
		TicketID: ticketID,
		UserID:   userID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/events/%s/purchases", c.baseURL, eventID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend confirm purchase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("backend confirm purchase: status %d", resp.StatusCode)
	}

	return nil
}
