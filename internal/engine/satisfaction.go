package engine

import "github.com/talgya/schelling/internal/world"

// Satisfaction summarises one satisfaction pass.
type Satisfaction struct {
	Agents      int
	Unsatisfied int

	// Mean same-kind neighbour fraction over all agents (isolated agents count as 1).
	MeanSimilarity float64
}

// EvaluateSatisfaction recomputes the Satisfied flag of every agent on the grid.
// The whole grid is evaluated before anything is moved, so flags always reflect
// the current arrangement.
func EvaluateSatisfaction(g *world.Grid, threshold float64) Satisfaction {
	var s Satisfaction
	similarity := 0.0

	g.Each(func(row, col int, c world.Cell) {
		if !c.IsOccupied() {
			return
		}
		same, total := world.Neighborhood(g, row, col)
		ok := world.Satisfied(same, total, threshold)
		g.SetSatisfied(row, col, ok)

		s.Agents++
		if !ok {
			s.Unsatisfied++
		}
		similarity += world.SimilarityRatio(same, total)
	})

	if s.Agents > 0 {
		s.MeanSimilarity = similarity / float64(s.Agents)
	}
	return s
}
