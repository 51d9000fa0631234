package game

import (
	"testing"

	"github.com/bingovivo/live-services/internal/livesvc/models"
)

func stateWithCalls(n int) models.GameState {
	calls := make([]models.BingoCall, n)
	for i := range calls {
		calls[i] = models.BingoCall{Number: i + 1, CallOrder: i + 1}
	}
	return models.GameState{
		IsActive:      true,
		CurrentCall:   &calls[n-1],
		CalledNumbers: calls,
	}
}

func TestHubFanOutIdenticalAndOrdered(t *testing.T) {
	hub := NewHub("event-1")

	subs := []*Subscription{hub.Subscribe(), hub.Subscribe(), hub.Subscribe()}

	for i := 1; i <= 3; i++ {
		hub.Broadcast(stateWithCalls(i))
	}

	for si, sub := range subs {
		for i := 1; i <= 3; i++ {
			state := <-sub.C
			if len(state.CalledNumbers) != i {
				t.Fatalf("subscriber %d emission %d: expected %d calls, got %d",
					si, i, i, len(state.CalledNumbers))
			}
			if state.CurrentCall.CallOrder != i {
				t.Fatalf("subscriber %d emission %d: expected call order %d, got %d",
					si, i, i, state.CurrentCall.CallOrder)
			}
		}
	}
}

func TestHubCancelDetachesOnlyOneSubscriber(t *testing.T) {
	hub := NewHub("event-1")

	a := hub.Subscribe()
	b := hub.Subscribe()

	a.Cancel()
	a.Cancel() // must be safe to call twice

	if _, ok := <-a.C; ok {
		t.Fatal("cancelled subscription channel should be closed")
	}

	hub.Broadcast(stateWithCalls(1))

	state := <-b.C
	if state.CurrentCall.Number != 1 {
		t.Fatalf("remaining subscriber should still receive, got %+v", state)
	}
	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber left, got %d", hub.SubscriberCount())
	}
}

func TestHubStalledSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub("event-1")

	stalled := hub.Subscribe()
	_ = stalled // never read

	// more emissions than the channel buffers; Broadcast must not block
	for i := 1; i <= subBuffer+5; i++ {
		hub.Broadcast(stateWithCalls(i))
	}
}

func TestHubCloseThenCancel(t *testing.T) {
	hub := NewHub("event-1")
	sub := hub.Subscribe()

	hub.Close()
	sub.Cancel() // must not panic on the already-closed channel

	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers after close, got %d", hub.SubscriberCount())
	}
}
