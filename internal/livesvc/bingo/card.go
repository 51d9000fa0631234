package bingo

import "math/rand"

const (
	// FreeIndex is the N-column center slot, always the FREE space.
	FreeIndex = 12
	// FreeSentinel is the value stored at FreeIndex.
	FreeSentinel = 0
	// MaxNumber is the top of the calling domain (standard 75-ball bingo).
	MaxNumber = 75
)

// column ranges, low..high inclusive, indexed by column 0..4 (B I N G O)
var colLow = [5]int{1, 16, 31, 46, 61}
var colHigh = [5]int{15, 30, 45, 60, 75}

var letters = [5]string{"B", "I", "N", "G", "O"}

// LetterFor maps a called number to its column letter.
func LetterFor(n int) string {
	for col := 0; col < 5; col++ {
		if n >= colLow[col] && n <= colHigh[col] {
			return letters[col]
		}
	}
	return ""
}

// Generate produces a 25-slot row-major card layout. Each column holds
// distinct values drawn without replacement from its 15-number range; the
// N column center (index 12) is the FREE sentinel.
func Generate() []int {
	card := make([]int, 25)

	for col := 0; col < 5; col++ {
		// shuffled 15-number pool for this column
		pool := rand.Perm(15)
		next := 0

		for row := 0; row < 5; row++ {
			i := row*5 + col
			if i == FreeIndex {
				card[i] = FreeSentinel
				continue
			}
			card[i] = colLow[col] + pool[next]
			next++
		}
	}

	return card
}

// Validate re-checks the column-range invariant for an externally supplied
// layout: exactly 25 slots, FREE sentinel at index 12, every other value
// inside its column's range, no duplicates.
func Validate(card []int) bool {
	if len(card) != 25 {
		return false
	}

	seen := make(map[int]bool, 24)
	for i, n := range card {
		if i == FreeIndex {
			if n != FreeSentinel {
				return false
			}
			continue
		}
		col := i % 5
		if n < colLow[col] || n > colHigh[col] {
			return false
		}
		if seen[n] {
			return false
		}
		seen[n] = true
	}

	return true
}
