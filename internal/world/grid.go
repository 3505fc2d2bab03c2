package world

import (
	"fmt"
	"strings"
)

// Grid holds the N×N simulation state in row-major order.
type Grid struct {
	size  int
	cells []Cell
}

// NewGrid creates an all-empty grid with the given side length.
func NewGrid(size int) *Grid {
	if size < 0 {
		size = 0
	}
	return &Grid{
		size:  size,
		cells: make([]Cell, size*size),
	}
}

// BuildGrid reshapes a flat row-major sequence into a square grid.
// Element i lands at (i / N, i % N). Returns *InvalidSizeError when
// len(kinds) is not a positive perfect square; no grid is built in that case.
func BuildGrid(kinds []Kind) (*Grid, error) {
	side, ok := SquareSide(len(kinds))
	if !ok {
		return nil, &InvalidSizeError{Locations: len(kinds)}
	}

	g := NewGrid(side)
	for i, k := range kinds {
		g.cells[i] = Cell{Kind: k}
	}
	return g, nil
}

// Size returns the side length N.
func (g *Grid) Size() int {
	return g.size
}

// Len returns the total number of locations (N*N).
func (g *Grid) Len() int {
	return len(g.cells)
}

// InBounds returns true if (row, col) lies inside the grid.
func (g *Grid) InBounds(row, col int) bool {
	return 0 <= row && row < g.size && 0 <= col && col < g.size
}

func (g *Grid) index(row, col int) int {
	if !g.InBounds(row, col) {
		panic(OutOfBoundsError{Row: row, Col: col, Size: g.size})
	}
	return row*g.size + col
}

// At returns the cell at (row, col). Panics with OutOfBoundsError outside the grid.
func (g *Grid) At(row, col int) Cell {
	return g.cells[g.index(row, col)]
}

// Kind returns the occupant kind at (row, col).
func (g *Grid) Kind(row, col int) Kind {
	return g.cells[g.index(row, col)].Kind
}

// Set overwrites the cell at (row, col).
func (g *Grid) Set(row, col int, c Cell) {
	g.cells[g.index(row, col)] = c
}

// SetSatisfied updates the satisfaction flag of the cell at (row, col).
func (g *Grid) SetSatisfied(row, col int, satisfied bool) {
	g.cells[g.index(row, col)].Satisfied = satisfied
}

// Each calls fn for every cell in row-major order.
func (g *Grid) Each(fn func(row, col int, c Cell)) {
	for i, c := range g.cells {
		fn(i/g.size, i%g.size, c)
	}
}

// Counts tallies locations per kind.
type Counts struct {
	Empty int `json:"empty"`
	A     int `json:"a"`
	B     int `json:"b"`
}

// Occupied returns the number of agents.
func (c Counts) Occupied() int {
	return c.A + c.B
}

// Total returns the number of locations.
func (c Counts) Total() int {
	return c.Empty + c.A + c.B
}

// Counts returns the number of cells of each kind.
func (g *Grid) Counts() Counts {
	var c Counts
	for _, cell := range g.cells {
		switch cell.Kind {
		case TypeA:
			c.A++
		case TypeB:
			c.B++
		default:
			c.Empty++
		}
	}
	return c
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{size: g.size, cells: cells}
}

// Equal reports whether both grids have the same size and kinds.
// Satisfaction flags are ignored.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.size != other.size {
		return false
	}
	for i := range g.cells {
		if g.cells[i].Kind != other.cells[i].Kind {
			return false
		}
	}
	return true
}

// Rows returns one string per row using the A / B / . notation.
func (g *Grid) Rows() []string {
	rows := make([]string, g.size)
	buf := make([]byte, g.size)
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			buf[c] = g.cells[r*g.size+c].Kind.Symbol()
		}
		rows[r] = string(buf)
	}
	return rows
}

// String renders the grid as space-separated symbols, one row per line.
// The output is accepted by ParseGrid.
func (g *Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(g.cells[r*g.size+c].Kind.Symbol())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Summary returns a one-line description of the grid.
func (g *Grid) Summary() string {
	c := g.Counts()
	return fmt.Sprintf("Grid(%dx%d, a=%d, b=%d, empty=%d)", g.size, g.size, c.A, c.B, c.Empty)
}
