package bingo

import "github.com/bingovivo/live-services/internal/livesvc/models"

// corner slot indices of the 5x5 grid
var corners = [4]int{0, 4, 20, 24}

// Evaluate returns the distinct win patterns satisfied by the card layout
// given the holder's marked numbers. The FREE slot counts as marked. A card
// may satisfy several patterns at once; LINE is reported once no matter how
// many rows, columns or diagonals are complete.
func Evaluate(card []int, marked map[int]bool) []string {
	if len(card) != 25 {
		return nil
	}

	var grid [5][5]bool
	for i, n := range card {
		r, c := i/5, i%5
		if i == FreeIndex {
			grid[r][c] = true
			continue
		}
		if marked[n] {
			grid[r][c] = true
		}
	}

	var patterns []string

	if hasLine(grid) {
		patterns = append(patterns, models.PatternLine)
	}

	full := true
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			if !grid[r][c] {
				full = false
			}
		}
	}
	if full {
		patterns = append(patterns, models.PatternFullHouse)
	}

	allCorners := true
	for _, i := range corners {
		if !grid[i/5][i%5] {
			allCorners = false
		}
	}
	if allCorners {
		patterns = append(patterns, models.PatternFourCorners)
	}

	return patterns
}

func hasLine(grid [5][5]bool) bool {
	// rows and columns
	for i := 0; i < 5; i++ {
		rowComplete, colComplete := true, true
		for j := 0; j < 5; j++ {
			if !grid[i][j] {
				rowComplete = false
			}
			if !grid[j][i] {
				colComplete = false
			}
		}
		if rowComplete || colComplete {
			return true
		}
	}

	// both diagonals
	diag1, diag2 := true, true
	for i := 0; i < 5; i++ {
		if !grid[i][i] {
			diag1 = false
		}
		if !grid[i][4-i] {
			diag2 = false
		}
	}
	return diag1 || diag2
}
