package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bingovivo/live-services/internal/livesvc/bingo"
	"github.com/bingovivo/live-services/internal/livesvc/models"
)

type failingSink struct{}

func (failingSink) AppendCall(context.Context, string, models.BingoCall) error {
	return errors.New("storage down")
}

// gatedSink parks AppendCall until released, to exercise state changes
// that land while a persist is in flight.
type gatedSink struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSink) AppendCall(context.Context, string, models.BingoCall) error {
	g.entered <- struct{}{}
	<-g.release
	return nil
}

func TestSequencerDrawsGaplessWithoutRepeats(t *testing.T) {
	var mu sync.Mutex
	var calls []models.BingoCall
	done := make(chan struct{})

	seq := NewSequencer("event-1", time.Millisecond, NopSink{},
		func(call models.BingoCall, history []models.BingoCall) {
			mu.Lock()
			calls = append(calls, call)
			mu.Unlock()
			if len(history) != call.CallOrder {
				t.Errorf("history length %d does not match call order %d", len(history), call.CallOrder)
			}
		},
		func() { close(done) })

	seq.Start()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("sequencer did not exhaust the deck in time")
	}

	mu.Lock()
	defer mu.Unlock()

	if len(calls) != bingo.MaxNumber {
		t.Fatalf("expected %d calls, got %d", bingo.MaxNumber, len(calls))
	}

	seen := make(map[int]bool)
	for i, c := range calls {
		if c.CallOrder != i+1 {
			t.Fatalf("call %d has order %d, orders must be gapless 1..N", i, c.CallOrder)
		}
		if c.Number < 1 || c.Number > bingo.MaxNumber {
			t.Fatalf("call number %d out of domain", c.Number)
		}
		if seen[c.Number] {
			t.Fatalf("number %d called twice in one event", c.Number)
		}
		seen[c.Number] = true
		if c.Letter != bingo.LetterFor(c.Number) {
			t.Fatalf("call %d letter %s does not match number %d", i, c.Letter, c.Number)
		}
	}

	if seq.State() != StateFinished {
		t.Fatalf("expected FINISHED after exhaustion, got %v", seq.State())
	}
}

func TestSequencerHaltsOnSinkFault(t *testing.T) {
	done := make(chan struct{})

	seq := NewSequencer("event-1", time.Millisecond, failingSink{},
		func(models.BingoCall, []models.BingoCall) {
			t.Error("no call may be emitted when the sink fails")
		},
		func() { close(done) })

	seq.Start()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sequencer did not halt on sink fault")
	}

	if seq.State() != StateFinished {
		t.Fatalf("expected FINISHED after fault, got %v", seq.State())
	}
	if len(seq.History()) != 0 {
		t.Fatalf("no call may enter history when persistence fails, got %d", len(seq.History()))
	}
}

func TestSequencerStopEmitsNothingFurther(t *testing.T) {
	seq := NewSequencer("event-1", time.Hour, NopSink{},
		func(models.BingoCall, []models.BingoCall) {
			t.Error("stopped sequencer must not emit")
		}, nil)

	seq.Start()
	seq.Stop()
	seq.Stop() // repeat stop is safe

	if seq.State() != StateFinished {
		t.Fatalf("expected FINISHED after stop, got %v", seq.State())
	}

	// a stopped sequencer cannot be restarted under the same identity
	seq.Start()
	if seq.State() != StateFinished {
		t.Fatal("stopped sequencer must not restart")
	}
}

func TestSequencerStopDuringPersistDiscardsCall(t *testing.T) {
	sink := &gatedSink{entered: make(chan struct{}), release: make(chan struct{})}
	emitted := make(chan models.BingoCall, 1)

	seq := NewSequencer("event-1", time.Millisecond, sink,
		func(c models.BingoCall, _ []models.BingoCall) { emitted <- c }, nil)

	seq.Start()
	<-sink.entered
	seq.Stop()
	close(sink.release)

	select {
	case c := <-emitted:
		t.Fatalf("call %d emitted after stop", c.Number)
	case <-time.After(100 * time.Millisecond):
	}
	if len(seq.History()) != 0 {
		t.Fatalf("history must stay frozen after stop, got %d calls", len(seq.History()))
	}
}

func TestSequencerRestoreRunsOutRemainingDeck(t *testing.T) {
	var prior []models.BingoCall
	for n := 1; n <= 73; n++ {
		prior = append(prior, models.BingoCall{
			Number: n, Letter: bingo.LetterFor(n), CallOrder: n, Timestamp: time.Now(),
		})
	}

	var mu sync.Mutex
	var calls []models.BingoCall
	done := make(chan struct{})

	seq := NewSequencer("event-1", time.Millisecond, NopSink{},
		func(c models.BingoCall, _ []models.BingoCall) {
			mu.Lock()
			calls = append(calls, c)
			mu.Unlock()
		},
		func() { close(done) })

	seq.Restore(prior)
	seq.Start()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("restored sequencer did not exhaust the remaining deck")
	}

	mu.Lock()
	defer mu.Unlock()

	if len(calls) != 2 {
		t.Fatalf("expected 2 remaining draws after restoring 73, got %d", len(calls))
	}
	if calls[0].CallOrder != 74 || calls[1].CallOrder != 75 {
		t.Fatalf("restored draw must continue the order, got %d and %d",
			calls[0].CallOrder, calls[1].CallOrder)
	}
	for _, c := range calls {
		if c.Number <= 73 {
			t.Fatalf("restored number %d drawn again", c.Number)
		}
	}
}

func TestSequencerPausedTickDrawsNothing(t *testing.T) {
	seq := NewSequencer("event-1", time.Hour, NopSink{},
		func(models.BingoCall, []models.BingoCall) {
			t.Error("paused sequencer must not emit")
		}, nil)

	seq.mu.Lock()
	seq.state = StateRunning
	seq.mu.Unlock()

	seq.Pause()
	if !seq.tick() {
		t.Fatal("paused tick should keep the loop alive")
	}
	if len(seq.History()) != 0 {
		t.Fatal("paused tick must not append history")
	}

	seq.Resume()
	if seq.State() != StateRunning {
		t.Fatalf("expected RUNNING after resume, got %v", seq.State())
	}
}

func TestSequencerCurrentCallAndCountdown(t *testing.T) {
	seq := NewSequencer("event-1", 15*time.Second, NopSink{}, func(models.BingoCall, []models.BingoCall) {}, nil)

	if seq.CurrentCall() != nil {
		t.Fatal("no current call before the first draw")
	}
	if seq.Countdown() != 15 {
		t.Fatalf("expected 15s countdown, got %d", seq.Countdown())
	}

	seq.mu.Lock()
	seq.state = StateRunning
	seq.mu.Unlock()
	if !seq.tick() {
		t.Fatal("tick should succeed")
	}

	call := seq.CurrentCall()
	if call == nil || call.CallOrder != 1 {
		t.Fatalf("expected current call with order 1, got %+v", call)
	}
	if !seq.CalledSet()[call.Number] {
		t.Fatal("called set must contain the drawn number")
	}
}
