package bingo

import "testing"

func TestGenerateLayoutInvariants(t *testing.T) {
	for i := 0; i < 100; i++ {
		card := Generate()

		if len(card) != 25 {
			t.Fatalf("expected 25 slots, got %d", len(card))
		}
		if card[FreeIndex] != FreeSentinel {
			t.Fatalf("expected FREE sentinel at index %d, got %d", FreeIndex, card[FreeIndex])
		}

		seen := make(map[int]bool)
		for idx, n := range card {
			if idx == FreeIndex {
				continue
			}
			col := idx % 5
			low, high := colLow[col], colHigh[col]
			if n < low || n > high {
				t.Fatalf("slot %d value %d outside column range %d-%d", idx, n, low, high)
			}
			if seen[n] {
				t.Fatalf("duplicate value %d on card", n)
			}
			seen[n] = true
		}
	}
}

func TestGenerateIsValid(t *testing.T) {
	for i := 0; i < 50; i++ {
		if !Validate(Generate()) {
			t.Fatal("generated card should validate")
		}
	}
}

func TestValidateRejectsWrongLength(t *testing.T) {
	if Validate(make([]int, 24)) {
		t.Fatal("24-slot layout should be rejected")
	}
	if Validate(nil) {
		t.Fatal("nil layout should be rejected")
	}
}

func TestValidateRejectsMissingFreeCell(t *testing.T) {
	card := Generate()
	card[FreeIndex] = 33
	if Validate(card) {
		t.Fatal("layout without FREE sentinel should be rejected")
	}
}

func TestValidateRejectsOutOfRangeColumn(t *testing.T) {
	card := Generate()
	// B column slot carrying an O-range number
	card[0] = 70
	if Validate(card) {
		t.Fatal("out-of-range column value should be rejected")
	}
}

func TestValidateRejectsDuplicates(t *testing.T) {
	card := Generate()
	// duplicate within the B column
	card[5] = card[0]
	if Validate(card) {
		t.Fatal("duplicate value should be rejected")
	}
}

func TestLetterFor(t *testing.T) {
	cases := []struct {
		n      int
		letter string
	}{
		{1, "B"}, {15, "B"}, {16, "I"}, {30, "I"}, {31, "N"},
		{45, "N"}, {46, "G"}, {60, "G"}, {61, "O"}, {75, "O"},
		{0, ""}, {76, ""},
	}
	for _, c := range cases {
		if got := LetterFor(c.n); got != c.letter {
			t.Fatalf("LetterFor(%d) = %q, expected %q", c.n, got, c.letter)
		}
	}
}
