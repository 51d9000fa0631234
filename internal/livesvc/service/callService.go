package service

import (
	"context"

	"github.com/bingovivo/live-services/internal/livesvc/models"
	"github.com/bingovivo/live-services/internal/livesvc/store"
)

// CallService is the sequencer's persistence sink.
type CallService struct {
	callStore *store.CallStore
}

func NewCallService(callStore *store.CallStore) *CallService {
	return &CallService{callStore: callStore}
}

func (s *CallService) AppendCall(ctx context.Context, eventID string, call models.BingoCall) error {
	return s.callStore.AppendCall(ctx, eventID, call)
}

func (s *CallService) GetHistory(ctx context.Context, eventID string) ([]models.BingoCall, error) {
	return s.callStore.GetHistory(ctx, eventID)
}
