package game

import (
	"sort"
	"sync"

	"github.com/bingovivo/live-services/internal/livesvc/bingo"
)

// Tracker holds the per-card marked sets of one event. Marks are permanent
// for the session, matching the irreversible nature of a live draw: there
// is no unmark operation.
type Tracker struct {
	mu     sync.RWMutex
	marked map[int]map[int]bool // cardID -> marked numbers
}

func NewTracker() *Tracker {
	return &Tracker{marked: make(map[int]map[int]bool)}
}

// Mark records a number on a card. The number must be on the card layout
// and must already be in the call history, otherwise ErrInvalidMark.
// Marking an already-marked number is a no-op. The FREE slot is implicitly
// marked and is never stored.
func (t *Tracker) Mark(cardID int, layout []int, called map[int]bool, number int) error {
	if number == bingo.FreeSentinel {
		return nil
	}

	onCard := false
	for i, n := range layout {
		if i != bingo.FreeIndex && n == number {
			onCard = true
			break
		}
	}
	if !onCard || !called[number] {
		return ErrInvalidMark
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.marked[cardID]
	if !ok {
		set = make(map[int]bool)
		t.marked[cardID] = set
	}
	set[number] = true

	return nil
}

// MarkedSet returns a copy of the card's marked numbers keyed for lookup.
func (t *Tracker) MarkedSet(cardID int) map[int]bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set := make(map[int]bool, len(t.marked[cardID]))
	for n := range t.marked[cardID] {
		set[n] = true
	}
	return set
}

// Marked returns the card's marked numbers in ascending order.
func (t *Tracker) Marked(cardID int) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	nums := make([]int, 0, len(t.marked[cardID]))
	for n := range t.marked[cardID] {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}
