package game

import (
	"sort"
	"sync"
	"time"

	"github.com/bingovivo/live-services/internal/livesvc/bingo"
	"github.com/bingovivo/live-services/internal/livesvc/models"
	log "github.com/sirupsen/logrus"
)

type claimKey struct {
	cardID  int
	pattern string
}

// Session is the live instance of one bingo event: it owns the roster, the
// cards, the marked sets and the sequencer/hub pair. Event metadata and
// card ownership come from the backoffice backend; the session is the sole
// writer of the call history while the event is active.
type Session struct {
	event *models.LiveEvent

	mu           sync.RWMutex
	cards        map[int]*models.Card
	participants map[string]*models.Participant
	winners      []models.Winner
	claimed      map[claimKey]bool

	tracker   *Tracker
	hub       *Hub
	seq       *Sequencer
	startOnce sync.Once
}

// NewSession builds a session over backend-supplied event metadata and
// cards. Layouts that fail validation are regenerated: a malformed layout
// must never reach the win evaluator.
func NewSession(event *models.LiveEvent, cards []*models.Card, interval time.Duration, sink CallSink) *Session {
	s := &Session{
		event:        event,
		cards:        make(map[int]*models.Card, len(cards)),
		participants: make(map[string]*models.Participant),
		claimed:      make(map[claimKey]bool),
		tracker:      NewTracker(),
		hub:          NewHub(event.ID),
	}

	for _, c := range cards {
		if !bingo.Validate(c.Numbers) {
			log.Warnf("event %s: card %d has an invalid layout, regenerating", event.ID, c.ID)
			c.Numbers = bingo.Generate()
		}
		s.cards[c.ID] = c
	}

	s.seq = NewSequencer(event.ID, interval, sink, s.emitState, s.finish)
	return s
}

// Event returns the session's event metadata.
func (s *Session) Event() *models.LiveEvent {
	return s.event
}

// Status returns the event's current lifecycle status.
func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.event.Status
}

// SetStatus applies a status read back from the backend. Joins observe it
// immediately.
func (s *Session) SetStatus(status string) {
	s.mu.Lock()
	s.event.Status = status
	s.mu.Unlock()
}

// RestoreHistory seeds the sequencer with calls persisted before a
// service restart. Must run before the first subscription.
func (s *Session) RestoreHistory(history []models.BingoCall) {
	s.seq.Restore(history)
}

// Join validates the event is ACTIVE and adds (or reactivates) the
// participant in the roster.
func (s *Session) Join(userID, name, avatar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.event.Status != models.EventActive {
		return ErrEventNotActive
	}

	if p, ok := s.participants[userID]; ok {
		p.IsOnline = true
		return nil
	}

	p := &models.Participant{
		ID:       userID,
		Name:     name,
		Avatar:   avatar,
		IsOnline: true,
		JoinedAt: time.Now(),
	}
	for _, c := range s.cards {
		if c.UserID == userID {
			p.CardIDs = append(p.CardIDs, c.ID)
		}
	}
	sort.Ints(p.CardIDs)
	s.participants[userID] = p

	return nil
}

// Leave marks the participant offline. The roster entry is kept so the
// participant list can still show them.
func (s *Session) Leave(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.participants[userID]; ok {
		p.IsOnline = false
	}
}

// Heartbeat refreshes a participant's online flag.
func (s *Session) Heartbeat(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.participants[userID]; ok {
		p.IsOnline = true
	}
}

// Mark records a called number on a card. Numbers not on the card or not
// yet called are rejected with ErrInvalidMark and leave the marked set
// unchanged. Marking twice is a no-op.
func (s *Session) Mark(cardID, number int, userID string) error {
	s.mu.RLock()
	card, ok := s.cards[cardID]
	s.mu.RUnlock()
	if !ok {
		return ErrCardNotFound
	}

	return s.tracker.Mark(cardID, card.Numbers, s.seq.CalledSet(), number)
}

// Marked returns the card's marked numbers plus the implicit FREE cell.
func (s *Session) Marked(cardID int) []int {
	return append([]int{bingo.FreeSentinel}, s.tracker.Marked(cardID)...)
}

// ClaimWin re-evaluates the claimed pattern against the server-held marked
// set; a client-asserted set is never trusted. The first valid claim locks
// the (card, pattern) pair for the event, repeats return false. Claiming is
// a routine try-and-see interaction: a rejection is a result, not an error.
func (s *Session) ClaimWin(cardID int, pattern string, userID string) (bool, error) {
	s.mu.RLock()
	card, ok := s.cards[cardID]
	s.mu.RUnlock()
	if !ok {
		return false, ErrCardNotFound
	}

	satisfied := bingo.Evaluate(card.Numbers, s.tracker.MarkedSet(cardID))
	match := false
	for _, p := range satisfied {
		if p == pattern {
			match = true
			break
		}
	}
	if !match {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := claimKey{cardID: cardID, pattern: pattern}
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	s.winners = append(s.winners, models.Winner{
		UserID:    userID,
		CardID:    cardID,
		Pattern:   pattern,
		Payout:    s.event.Payout(),
		Timestamp: time.Now(),
	})

	return true, nil
}

// CardView is the card-level snapshot served to the display layer.
type CardView struct {
	Card      *models.Card `json:"card"`
	Marked    []int        `json:"marked"`
	Satisfied []string     `json:"satisfied"`
}

// Card recomputes the card view: layout, marked set and currently
// satisfied win patterns.
func (s *Session) Card(cardID int) (*CardView, error) {
	s.mu.RLock()
	card, ok := s.cards[cardID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCardNotFound
	}

	return &CardView{
		Card:      card,
		Marked:    s.Marked(cardID),
		Satisfied: bingo.Evaluate(card.Numbers, s.tracker.MarkedSet(cardID)),
	}, nil
}

// Roster returns the participant list ordered for display: the requesting
// participant first, then online before offline, then most recently joined.
func (s *Session) Roster(requesterID string) []models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roster := make([]models.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		roster = append(roster, *p)
	}

	sort.Slice(roster, func(i, j int) bool {
		a, b := roster[i], roster[j]
		if (a.ID == requesterID) != (b.ID == requesterID) {
			return a.ID == requesterID
		}
		if a.IsOnline != b.IsOnline {
			return a.IsOnline
		}
		return a.JoinedAt.After(b.JoinedAt)
	})

	return roster
}

// GameState builds the on-demand snapshot: current call, full ordered
// history, winners and the countdown. Late joiners catch up through this,
// not through the subscription stream.
func (s *Session) GameState() models.GameState {
	s.mu.RLock()
	winners := append([]models.Winner(nil), s.winners...)
	s.mu.RUnlock()

	state := s.seq.State()
	return models.GameState{
		IsActive:       state == StateRunning || state == StatePaused || state == StateIdle,
		CurrentCall:    s.seq.CurrentCall(),
		CalledNumbers:  s.seq.History(),
		Winners:        winners,
		TimeToNextCall: s.seq.Countdown(),
	}
}

// Subscribe attaches a subscriber to the session's broadcast hub and
// lazily starts the sequencer on the first subscription.
func (s *Session) Subscribe() *Subscription {
	sub := s.hub.Subscribe()
	s.startOnce.Do(s.seq.Start)
	return sub
}

// emitState is the sequencer's emit callback: every tick fans the updated
// aggregate state out to all subscribers.
func (s *Session) emitState(call models.BingoCall, history []models.BingoCall) {
	s.mu.RLock()
	winners := append([]models.Winner(nil), s.winners...)
	s.mu.RUnlock()

	s.hub.Broadcast(models.GameState{
		IsActive:       true,
		CurrentCall:    &call,
		CalledNumbers:  history,
		Winners:        winners,
		TimeToNextCall: s.seq.Countdown(),
	})
}

// finish runs once when the deck is exhausted or the sequencer faults:
// subscribers get a final inactive snapshot.
func (s *Session) finish() {
	sn := s.GameState()
	sn.IsActive = false
	s.hub.Broadcast(sn)
}

// Pause suspends the draw without detaching subscribers.
func (s *Session) Pause() { s.seq.Pause() }

// Resume continues a paused draw.
func (s *Session) Resume() { s.seq.Resume() }

// End stops the sequencer and detaches every subscriber. A new game needs
// a fresh session; an ended one is not resumable.
func (s *Session) End() {
	s.seq.Stop()
	s.hub.Close()
}
