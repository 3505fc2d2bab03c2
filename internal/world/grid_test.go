package world

import (
	"errors"
	"math"
	"testing"
)

func mustParse(t *testing.T, text string) *Grid {
	t.Helper()
	g, err := ParseGrid(text)
	if err != nil {
		t.Fatalf("ParseGrid() error = %v", err)
	}
	return g
}

func TestBuildGrid_RowMajor(t *testing.T) {
	kinds := []Kind{TypeA, TypeB, Empty, Empty, TypeA, TypeB, TypeB, Empty, TypeA}
	g, err := BuildGrid(kinds)
	if err != nil {
		t.Fatalf("BuildGrid() error = %v", err)
	}
	if g.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", g.Size())
	}
	for i, k := range kinds {
		if got := g.Kind(i/3, i%3); got != k {
			t.Errorf("Kind(%d, %d) = %v, want %v", i/3, i%3, got, k)
		}
	}
}

func TestBuildGrid_InvalidSize(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"empty", 0},
		{"two", 2},
		{"ten", 10},
		{"just over square", 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildGrid(make([]Kind, tt.n))
			if g != nil {
				t.Error("BuildGrid() returned a grid for an invalid size")
			}
			var sizeErr *InvalidSizeError
			if !errors.As(err, &sizeErr) {
				t.Fatalf("BuildGrid() error = %v, want *InvalidSizeError", err)
			}
			if sizeErr.Locations != tt.n {
				t.Errorf("Locations = %d, want %d", sizeErr.Locations, tt.n)
			}
		})
	}
}

func TestSquareSide(t *testing.T) {
	tests := []struct {
		n    int
		side int
		ok   bool
	}{
		{1, 1, true},
		{4, 2, true},
		{90000, 300, true},
		{100001, 316, false},
		{0, 0, false},
		{-9, 0, false},
		{1 << 52, 1 << 26, true},
		{3037000499 * 3037000499, 3037000499, true},
		{math.MaxInt64, 3037000499, false},
	}

	for _, tt := range tests {
		side, ok := SquareSide(tt.n)
		if side != tt.side || ok != tt.ok {
			t.Errorf("SquareSide(%d) = (%d, %v), want (%d, %v)", tt.n, side, ok, tt.side, tt.ok)
		}
	}
}

func TestGrid_OutOfBoundsPanics(t *testing.T) {
	g := NewGrid(3)

	defer func() {
		r := recover()
		oob, ok := r.(OutOfBoundsError)
		if !ok {
			t.Fatalf("recover() = %v, want OutOfBoundsError", r)
		}
		if oob.Row != 3 || oob.Col != 0 {
			t.Errorf("OutOfBoundsError = %+v, want row 3 col 0", oob)
		}
	}()
	g.At(3, 0)
}

func TestGrid_InBounds(t *testing.T) {
	g := NewGrid(3)
	if !g.InBounds(0, 0) {
		t.Error("(0, 0) should be in bounds")
	}
	if g.InBounds(-1, 0) {
		t.Error("(-1, 0) should be out of bounds")
	}
	if g.InBounds(0, 3) {
		t.Error("(0, 3) should be out of bounds")
	}
}

func TestGrid_CountsAndClone(t *testing.T) {
	g := mustParse(t, "A A .\n. B .\nA . B\n")

	want := Counts{Empty: 4, A: 3, B: 2}
	if got := g.Counts(); got != want {
		t.Fatalf("Counts() = %+v, want %+v", got, want)
	}

	clone := g.Clone()
	clone.Set(0, 2, Cell{Kind: TypeB})
	if g.Kind(0, 2) != Empty {
		t.Error("mutating a clone changed the original grid")
	}
	if g.Equal(clone) {
		t.Error("Equal() = true after clone was mutated")
	}
}

func TestGrid_StringRoundTrip(t *testing.T) {
	src := "A A .\n. B .\nA . B\n"
	g := mustParse(t, src)
	if got := g.String(); got != src {
		t.Errorf("String() = %q, want %q", got, src)
	}
	rows := g.Rows()
	if rows[1] != ".B." {
		t.Errorf("Rows()[1] = %q, want %q", rows[1], ".B.")
	}
}

func TestGrid_EachVisitsEveryCell(t *testing.T) {
	g := mustParse(t, "A B / . A")
	seen := 0
	g.Each(func(row, col int, c Cell) {
		if c.Kind != g.Kind(row, col) {
			t.Errorf("Each(%d, %d) kind = %v, want %v", row, col, c.Kind, g.Kind(row, col))
		}
		seen++
	})
	if seen != 4 {
		t.Errorf("Each visited %d cells, want 4", seen)
	}
}

func TestGrid_Summary(t *testing.T) {
	g := mustParse(t, "A B .\n. A .\nB . .\n")
	want := "Grid(3x3, a=2, b=2, empty=5)"
	if got := g.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
