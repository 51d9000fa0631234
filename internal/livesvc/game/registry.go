package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bingovivo/live-services/internal/livesvc/models"
	log "github.com/sirupsen/logrus"
)

// EventLoader resolves an event id to its metadata and card roster. The
// production loader is the backoffice REST client; tests inject fakes.
type EventLoader interface {
	GetEvent(ctx context.Context, eventID string) (*models.LiveEvent, []*models.Card, error)
}

// Registry owns every live session in the process. It replaces ambient
// per-event maps with an explicit object so teardown is deterministic and
// request handlers get it injected.
type Registry struct {
	loader   EventLoader
	sink     CallSink
	interval time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(loader EventLoader, sink CallSink, interval time.Duration) *Registry {
	if interval <= 0 {
		interval = DefaultCallInterval
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Registry{
		loader:   loader,
		sink:     sink,
		interval: interval,
		sessions: make(map[string]*Session),
	}
}

// CreateSession loads the event from the backend and builds its session.
// An existing ACTIVE session is returned as-is; a cached non-ACTIVE one
// re-reads the status first, so an event that went ACTIVE on the backend
// since the first touch starts accepting joins, and one that ended is
// torn down.
func (r *Registry) CreateSession(ctx context.Context, eventID string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[eventID]
	r.mu.RUnlock()
	if ok {
		if s.Status() == models.EventActive {
			return s, nil
		}
		event, _, err := r.loader.GetEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		s.SetStatus(event.Status)
		if event.Status == models.EventFinished || event.Status == models.EventCancelled {
			r.EndSession(eventID)
		}
		return s, nil
	}

	event, cards, err := r.loader.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	s = NewSession(event, cards, r.interval, r.sink)

	// resume a draw that was interrupted by a service restart; starting
	// over at call order 1 would collide with the rows already persisted
	if src, ok := r.sink.(CallHistorySource); ok {
		history, err := src.GetHistory(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("restore call history for event %s: %w", eventID, err)
		}
		if len(history) > 0 {
			s.RestoreHistory(history)
			log.Infof("session for event %s restored %d persisted calls", eventID, len(history))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// lost the race to another creator
	if existing, ok := r.sessions[eventID]; ok {
		return existing, nil
	}

	r.sessions[eventID] = s
	log.Infof("session created for event %s (%s)", eventID, event.Name)

	return s, nil
}

// SyncStatus re-reads the event's status from the backend and applies
// it. A session whose event left ACTIVE is ended: the sequencer stops,
// subscribers detach and the call history stays frozen.
func (r *Registry) SyncStatus(ctx context.Context, eventID string) error {
	r.mu.RLock()
	s, ok := r.sessions[eventID]
	r.mu.RUnlock()
	if !ok {
		return ErrEventNotFound
	}

	event, _, err := r.loader.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	s.SetStatus(event.Status)
	if event.Status != models.EventActive && event.Status != models.EventWaiting {
		r.EndSession(eventID)
	}

	return nil
}

// Get returns the live session for an event id.
func (r *Registry) Get(eventID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	return s, nil
}

// EndSession stops the event's sequencer, detaches its subscribers and
// drops the session. Marked sets go with it.
func (r *Registry) EndSession(eventID string) {
	r.mu.Lock()
	s, ok := r.sessions[eventID]
	delete(r.sessions, eventID)
	r.mu.Unlock()

	if ok {
		s.End()
		log.Infof("session ended for event %s", eventID)
	}
}

// Close ends every session. Used on service shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for id, s := range sessions {
		s.End()
		log.Infof("session ended for event %s", id)
	}
}
