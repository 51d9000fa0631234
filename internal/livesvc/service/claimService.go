package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bingovivo/live-services/internal/livesvc/models"
	"github.com/bingovivo/live-services/internal/livesvc/store"
)

type ClaimService struct {
	claimStore *store.ClaimStore
}

func NewClaimService(claimStore *store.ClaimStore) *ClaimService {
	return &ClaimService{claimStore: claimStore}
}

// RecordClaim persists one claim outcome with a fresh id.
func (s *ClaimService) RecordClaim(ctx context.Context, eventID string, cardID int, userID, pattern string, accepted bool) error {
	claim := &models.WinClaim{
		ID:        uuid.New().String(),
		EventID:   eventID,
		CardID:    cardID,
		UserID:    userID,
		Pattern:   pattern,
		Accepted:  accepted,
		CreatedAt: time.Now(),
	}
	return s.claimStore.RecordClaim(ctx, claim)
}

func (s *ClaimService) GetAcceptedClaims(ctx context.Context, eventID string) ([]*models.WinClaim, error) {
	return s.claimStore.GetAcceptedClaims(ctx, eventID)
}
