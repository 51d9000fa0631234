package game

import (
	"sync"

	"github.com/bingovivo/live-services/internal/livesvc/models"
	log "github.com/sirupsen/logrus"
)

// subscriber channel depth; every GameState carries the full call history,
// so an emission dropped on a stalled subscriber is recoverable
const subBuffer = 32

// Subscription is a cancellable receive handle for one hub subscriber.
type Subscription struct {
	C      <-chan models.GameState
	ch     chan models.GameState
	hub    *Hub
	id     int
	cancel sync.Once
}

// Cancel detaches the subscriber and closes its channel. Safe to call more
// than once; other subscribers are unaffected.
func (s *Subscription) Cancel() {
	s.cancel.Do(func() {
		// the hub may have closed the channel already on session end
		if s.hub.remove(s.id) {
			close(s.ch)
		}
	})
}

// Hub fans sequencer emissions out to every subscriber of an event session.
type Hub struct {
	mu      sync.Mutex
	eventID string
	subs    map[int]chan models.GameState
	nextID  int
}

func NewHub(eventID string) *Hub {
	return &Hub{
		eventID: eventID,
		subs:    make(map[int]chan models.GameState),
	}
}

// Subscribe registers a new subscriber. The subscriber receives every
// emission from this moment onward; history replay is not part of the
// stream, late joiners fetch a GameState snapshot separately.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	ch := make(chan models.GameState, subBuffer)
	h.subs[h.nextID] = ch

	return &Subscription{C: ch, ch: ch, hub: h, id: h.nextID}
}

func (h *Hub) remove(id int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[id]; !ok {
		return false
	}
	delete(h.subs, id)
	return true
}

// SubscriberCount reports the current number of attached subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcast delivers one state to all subscribers. Each subscriber channel
// preserves emission order; a subscriber whose buffer is full misses this
// emission instead of stalling the caller's tick.
func (h *Hub) Broadcast(state models.GameState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- state:
		default:
			log.Warnf("hub %s: subscriber %d stalled, dropping emission %d",
				h.eventID, id, len(state.CalledNumbers))
		}
	}
}

// Close cancels every subscriber. Used when a session ends.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[int]chan models.GameState)
	h.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
}
