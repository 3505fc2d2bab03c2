package engine

import (
	"math/rand"

	"github.com/talgya/schelling/internal/world"
)

// StepResult describes what happened during one tick.
type StepResult struct {
	Tick           uint64  `json:"tick"`
	Agents         int     `json:"agents"`
	Unsatisfied    int     `json:"unsatisfied"`
	Vacancies      int     `json:"vacancies"`
	Moves          int     `json:"moves"`
	MeanSimilarity float64 `json:"mean_similarity"` // Measured before this tick's moves
}

// Converged reports whether further ticks can change the grid: either every
// agent is satisfied or there is nowhere to move.
func (r StepResult) Converged() bool {
	return r.Unsatisfied == 0 || r.Vacancies == 0
}

// Step advances g by one tick: a full satisfaction pass followed by one
// relocation pass. It does not stop at convergence; callers decide that.
func Step(g *world.Grid, threshold float64, rng *rand.Rand) StepResult {
	sat := EvaluateSatisfaction(g, threshold)
	rel := Relocate(g, rng)

	return StepResult{
		Agents:         sat.Agents,
		Unsatisfied:    sat.Unsatisfied,
		Vacancies:      rel.Vacancies,
		Moves:          rel.Moves,
		MeanSimilarity: sat.MeanSimilarity,
	}
}
