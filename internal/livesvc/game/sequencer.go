package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/bingovivo/live-services/internal/livesvc/bingo"
	"github.com/bingovivo/live-services/internal/livesvc/models"
	log "github.com/sirupsen/logrus"
)

// DefaultCallInterval is the cadence of the live draw.
const DefaultCallInterval = 15 * time.Second

type SequencerState int

const (
	StateIdle SequencerState = iota
	StateRunning
	StatePaused
	StateFinished
)

// CallSink persists a call before it is emitted. A sink failure halts the
// sequencer: clients reconstruct history from call order, so a skipped
// order number is worse than a stopped game.
type CallSink interface {
	AppendCall(ctx context.Context, eventID string, call models.BingoCall) error
}

// CallHistorySource reads back persisted calls so a restarted service can
// resume an event where the draw left off.
type CallHistorySource interface {
	GetHistory(ctx context.Context, eventID string) ([]models.BingoCall, error)
}

// NopSink keeps the history in memory only.
type NopSink struct{}

func (NopSink) AppendCall(context.Context, string, models.BingoCall) error { return nil }

// Sequencer is the authoritative source of which numbers have been called
// for one event. While running it draws the next number from a shuffled
// non-repeating deck on a fixed interval, appends the call to history and
// hands it to the emit callback.
type Sequencer struct {
	eventID  string
	interval time.Duration
	sink     CallSink
	emit     func(call models.BingoCall, history []models.BingoCall)
	onDone   func() // deck exhausted or fault; fired once, after the last emit

	mu      sync.Mutex
	state   SequencerState
	deck    []int
	cursor  int
	history []models.BingoCall

	stop     chan struct{}
	stopOnce sync.Once
}

func NewSequencer(eventID string, interval time.Duration, sink CallSink,
	emit func(models.BingoCall, []models.BingoCall), onDone func()) *Sequencer {

	// shuffled deck 1..75, drawn without replacement
	deck := rand.Perm(bingo.MaxNumber)
	for i := range deck {
		deck[i]++
	}

	return &Sequencer{
		eventID:  eventID,
		interval: interval,
		sink:     sink,
		emit:     emit,
		onDone:   onDone,
		deck:     deck,
		stop:     make(chan struct{}),
	}
}

// Restore seeds the history with previously persisted calls and removes
// their numbers from the deck, so the draw continues at the next call
// order instead of colliding with rows already in storage. Only valid
// before Start; later calls are ignored.
func (s *Sequencer) Restore(history []models.BingoCall) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle || len(s.history) > 0 {
		return
	}

	called := make(map[int]bool, len(history))
	for _, c := range history {
		called[c.Number] = true
	}

	deck := s.deck[:0]
	for _, n := range s.deck {
		if !called[n] {
			deck = append(deck, n)
		}
	}
	s.deck = deck
	s.cursor = 0
	s.history = append(s.history, history...)
}

// Start moves the sequencer from IDLE to RUNNING and begins ticking.
// Starting twice is a no-op; a stopped sequencer is not resumable.
func (s *Sequencer) Start() {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	s.state = StateRunning
	s.mu.Unlock()

	go s.run()
}

func (s *Sequencer) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if !s.tick() {
				return
			}
		}
	}
}

// tick draws and emits one call. Returns false when the sequencer is done.
func (s *Sequencer) tick() bool {
	s.mu.Lock()

	if s.state == StatePaused {
		s.mu.Unlock()
		return true
	}
	if s.state != StateRunning {
		s.mu.Unlock()
		return false
	}

	if s.cursor >= len(s.deck) {
		s.state = StateFinished
		s.mu.Unlock()
		log.Infof("sequencer %s: deck exhausted after %d calls", s.eventID, len(s.deck))
		if s.onDone != nil {
			s.onDone()
		}
		return false
	}

	num := s.deck[s.cursor]
	call := models.BingoCall{
		Number:    num,
		Letter:    bingo.LetterFor(num),
		Timestamp: time.Now(),
		CallOrder: len(s.history) + 1,
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	// persist before emit; one retry, then fail closed
	err := s.sink.AppendCall(ctx, s.eventID, call)
	if err != nil {
		log.Warnf("sequencer %s: append call %d failed, retrying: %v", s.eventID, call.CallOrder, err)
		err = s.sink.AppendCall(ctx, s.eventID, call)
	}
	if err != nil {
		log.Errorf("sequencer %s: halting on call %d: %v: %v",
			s.eventID, call.CallOrder, ErrSequencerFault, err)
		s.mu.Lock()
		s.state = StateFinished
		s.mu.Unlock()
		if s.onDone != nil {
			s.onDone()
		}
		return false
	}

	s.mu.Lock()
	// Stop may have landed while the persist was in flight; the call is
	// discarded and history stays frozen. A pause in the same window still
	// appends: the call is already persisted, so dropping it would redraw
	// the number on resume and trip the unique call-order constraint.
	if s.state == StateFinished {
		s.mu.Unlock()
		return false
	}
	s.cursor++
	s.history = append(s.history, call)
	history := append([]models.BingoCall(nil), s.history...)
	s.mu.Unlock()

	s.emit(call, history)
	return true
}

// Pause suspends the draw; the ticker keeps running but ticks are ignored.
func (s *Sequencer) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		s.state = StatePaused
	}
}

// Resume continues a paused draw.
func (s *Sequencer) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePaused {
		s.state = StateRunning
	}
}

// Stop halts the draw permanently. No further calls are emitted.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	s.state = StateFinished
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Sequencer) State() SequencerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the ordered call history.
func (s *Sequencer) History() []models.BingoCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BingoCall(nil), s.history...)
}

// CalledSet returns the called numbers keyed for lookup.
func (s *Sequencer) CalledSet() map[int]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	called := make(map[int]bool, len(s.history))
	for _, c := range s.history {
		called[c.Number] = true
	}
	return called
}

// CurrentCall returns the most recent call, or nil before the first draw.
func (s *Sequencer) CurrentCall() *models.BingoCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return nil
	}
	c := s.history[len(s.history)-1]
	return &c
}

// Countdown is the number of seconds between calls, as presented to
// clients in GameState.
func (s *Sequencer) Countdown() int {
	return int(s.interval / time.Second)
}
