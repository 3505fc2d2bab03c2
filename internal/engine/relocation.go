package engine

import (
	"math/rand"

	"github.com/talgya/schelling/internal/world"
)

// Relocation summarises one relocation pass.
type Relocation struct {
	Vacancies   int // Empty cells before the pass
	Unsatisfied int // Unsatisfied agents before the pass
	Moves       int // min(Vacancies, Unsatisfied)
}

// Relocate moves unsatisfied agents into random empty cells.
// Both location lists are captured before any cell is written and shuffled
// independently, then paired by position. Surplus entries of the longer list
// stay where they are until the next tick. Moved agents arrive unsatisfied;
// the next satisfaction pass re-evaluates them.
func Relocate(g *world.Grid, rng *rand.Rand) Relocation {
	var empties, unsatisfied []world.Coord
	g.Each(func(row, col int, c world.Cell) {
		switch {
		case !c.IsOccupied():
			empties = append(empties, world.Coord{Row: row, Col: col})
		case !c.Satisfied:
			unsatisfied = append(unsatisfied, world.Coord{Row: row, Col: col})
		}
	})

	world.Shuffle(rng, empties)
	world.Shuffle(rng, unsatisfied)

	moves := min(len(empties), len(unsatisfied))
	for i := 0; i < moves; i++ {
		from, to := unsatisfied[i], empties[i]
		g.Set(to.Row, to.Col, world.Cell{Kind: g.Kind(from.Row, from.Col)})
		g.Set(from.Row, from.Col, world.Cell{Kind: world.Empty})
	}

	return Relocation{
		Vacancies:   len(empties),
		Unsatisfied: len(unsatisfied),
		Moves:       moves,
	}
}
