package bingo

import (
	"testing"

	"github.com/bingovivo/live-services/internal/livesvc/models"
)

// fixedCard is a valid layout used across the evaluator tests.
// Row-major: columns B I N G O, FREE at index 12.
var fixedCard = []int{
	1, 16, 31, 46, 61,
	2, 17, 32, 47, 62,
	3, 18, 0, 48, 63,
	4, 19, 34, 49, 64,
	5, 20, 35, 50, 65,
}

func markAll(nums ...int) map[int]bool {
	m := make(map[int]bool, len(nums))
	for _, n := range nums {
		m[n] = true
	}
	return m
}

func contains(patterns []string, p string) bool {
	for _, q := range patterns {
		if q == p {
			return true
		}
	}
	return false
}

func TestEvaluateInsufficientMarks(t *testing.T) {
	// three scattered marks satisfy nothing
	patterns := Evaluate(fixedCard, markAll(1, 17, 63))
	if len(patterns) != 0 {
		t.Fatalf("expected no patterns, got %v", patterns)
	}
}

func TestEvaluateRowLine(t *testing.T) {
	// middle row includes the FREE center, so four marks complete it
	patterns := Evaluate(fixedCard, markAll(3, 18, 48, 63))
	if !contains(patterns, models.PatternLine) {
		t.Fatalf("expected LINE, got %v", patterns)
	}
	if contains(patterns, models.PatternFullHouse) {
		t.Fatalf("did not expect FULL_HOUSE, got %v", patterns)
	}
}

func TestEvaluateColumnLine(t *testing.T) {
	patterns := Evaluate(fixedCard, markAll(1, 2, 3, 4, 5))
	if !contains(patterns, models.PatternLine) {
		t.Fatalf("expected LINE for complete B column, got %v", patterns)
	}
}

func TestEvaluateDiagonalLine(t *testing.T) {
	// main diagonal: 1, 17, FREE, 49, 65
	patterns := Evaluate(fixedCard, markAll(1, 17, 49, 65))
	if !contains(patterns, models.PatternLine) {
		t.Fatalf("expected LINE for main diagonal, got %v", patterns)
	}
}

func TestEvaluateFourCorners(t *testing.T) {
	patterns := Evaluate(fixedCard, markAll(1, 61, 5, 65))
	if !contains(patterns, models.PatternFourCorners) {
		t.Fatalf("expected FOUR_CORNERS, got %v", patterns)
	}
}

func TestEvaluateFullHouseRoundTrip(t *testing.T) {
	// any validated card with every non-free slot marked is a full house
	card := Generate()
	if !Validate(card) {
		t.Fatal("generated card should validate")
	}

	marked := make(map[int]bool)
	for i, n := range card {
		if i != FreeIndex {
			marked[n] = true
		}
	}

	patterns := Evaluate(card, marked)
	if !contains(patterns, models.PatternFullHouse) {
		t.Fatalf("expected FULL_HOUSE, got %v", patterns)
	}
	if !contains(patterns, models.PatternLine) {
		t.Fatalf("full house implies LINE, got %v", patterns)
	}
	if !contains(patterns, models.PatternFourCorners) {
		t.Fatalf("full house implies FOUR_CORNERS, got %v", patterns)
	}
}

func TestEvaluateLineReportedOnce(t *testing.T) {
	// two complete columns still report LINE a single time
	patterns := Evaluate(fixedCard, markAll(1, 2, 3, 4, 5, 16, 17, 18, 19, 20))
	count := 0
	for _, p := range patterns {
		if p == models.PatternLine {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected LINE exactly once, got %v", patterns)
	}
}

func TestEvaluateBadLayout(t *testing.T) {
	if got := Evaluate(make([]int, 10), markAll(1)); got != nil {
		t.Fatalf("expected nil for malformed layout, got %v", got)
	}
}
