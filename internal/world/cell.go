// Package world provides the square grid, cell kinds, and initial layout generation.
// Coordinates are (row, col) with (0, 0) in the top-left corner.
package world

// Kind is the occupant of a grid location.
type Kind uint8

const (
	Empty Kind = iota // Vacant location
	TypeA             // First agent population
	TypeB             // Second agent population
)

// Symbol returns the single-character notation used by ParseGrid and Grid.String.
func (k Kind) Symbol() byte {
	switch k {
	case TypeA:
		return 'A'
	case TypeB:
		return 'B'
	default:
		return '.'
	}
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case TypeA:
		return "a"
	case TypeB:
		return "b"
	default:
		return "empty"
	}
}

// Occupied reports whether the kind is an agent.
func (k Kind) Occupied() bool {
	return k != Empty
}

// Cell is a single grid location.
// Satisfied is only meaningful for occupied cells and is rewritten on every tick.
type Cell struct {
	Kind      Kind `json:"kind"`
	Satisfied bool `json:"satisfied"`
}

// IsOccupied checks if this cell currently holds an agent.
func (c Cell) IsOccupied() bool {
	return c.Kind.Occupied()
}

// Coord is a (row, col) grid position.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}
