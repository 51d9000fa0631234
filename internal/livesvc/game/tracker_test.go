package game

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bingovivo/live-services/internal/livesvc/bingo"
)

var trackerLayout = []int{
	1, 16, 31, 46, 61,
	2, 17, 32, 47, 62,
	3, 18, 0, 48, 63,
	4, 19, 34, 49, 64,
	5, 20, 35, 50, 65,
}

func calledSet(nums ...int) map[int]bool {
	m := make(map[int]bool, len(nums))
	for _, n := range nums {
		m[n] = true
	}
	return m
}

func TestMarkCalledNumber(t *testing.T) {
	tr := NewTracker()

	if err := tr.Mark(1, trackerLayout, calledSet(17), 17); err != nil {
		t.Fatalf("marking a called number should succeed: %v", err)
	}
	if got := tr.Marked(1); !reflect.DeepEqual(got, []int{17}) {
		t.Fatalf("expected [17], got %v", got)
	}
}

func TestMarkUncalledNumberRejected(t *testing.T) {
	tr := NewTracker()

	// 47 is on the card but has not been called
	err := tr.Mark(1, trackerLayout, calledSet(17), 47)
	if !errors.Is(err, ErrInvalidMark) {
		t.Fatalf("expected ErrInvalidMark, got %v", err)
	}
	if got := tr.Marked(1); len(got) != 0 {
		t.Fatalf("marked set must be unchanged after rejection, got %v", got)
	}
}

func TestMarkNumberNotOnCardRejected(t *testing.T) {
	tr := NewTracker()

	// 14 has been called but is not on this card
	err := tr.Mark(1, trackerLayout, calledSet(14), 14)
	if !errors.Is(err, ErrInvalidMark) {
		t.Fatalf("expected ErrInvalidMark, got %v", err)
	}
}

func TestMarkIdempotent(t *testing.T) {
	tr := NewTracker()
	called := calledSet(17)

	if err := tr.Mark(1, trackerLayout, called, 17); err != nil {
		t.Fatalf("first mark failed: %v", err)
	}
	if err := tr.Mark(1, trackerLayout, called, 17); err != nil {
		t.Fatalf("repeat mark should be a no-op, got %v", err)
	}
	if got := tr.Marked(1); !reflect.DeepEqual(got, []int{17}) {
		t.Fatalf("expected [17] after double mark, got %v", got)
	}
}

func TestFreeCellNeverStored(t *testing.T) {
	tr := NewTracker()

	if err := tr.Mark(1, trackerLayout, calledSet(), bingo.FreeSentinel); err != nil {
		t.Fatalf("marking FREE should be a no-op, got %v", err)
	}
	if got := tr.Marked(1); len(got) != 0 {
		t.Fatalf("FREE must not be stored, got %v", got)
	}
}

func TestMarkedSetsIndependentPerCard(t *testing.T) {
	tr := NewTracker()
	called := calledSet(17, 18)

	if err := tr.Mark(1, trackerLayout, called, 17); err != nil {
		t.Fatal(err)
	}
	if err := tr.Mark(2, trackerLayout, called, 18); err != nil {
		t.Fatal(err)
	}

	if got := tr.Marked(1); !reflect.DeepEqual(got, []int{17}) {
		t.Fatalf("card 1 expected [17], got %v", got)
	}
	if got := tr.Marked(2); !reflect.DeepEqual(got, []int{18}) {
		t.Fatalf("card 2 expected [18], got %v", got)
	}
}
