// Simulation owns the grid and runs one Schelling tick at a time.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/schelling/internal/world"
)

// DefaultThreshold is the same-kind neighbour fraction an agent needs to stay put.
const DefaultThreshold = 0.7

// InvalidThresholdError reports a similarity threshold outside (0, 1].
type InvalidThresholdError struct {
	Threshold float64
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("invalid threshold %v: must be in (0, 1]", e.Threshold)
}

// Stats tracks aggregate simulation statistics.
type Stats struct {
	Tick           uint64       `json:"tick"`
	Counts         world.Counts `json:"counts"`
	Unsatisfied    int          `json:"unsatisfied"`
	Moves          int          `json:"moves"`
	TotalMoves     uint64       `json:"total_moves"`
	MeanSimilarity float64      `json:"mean_similarity"`
	Converged      bool         `json:"converged"`
	ConvergedTick  uint64       `json:"converged_tick,omitempty"`
}

// Simulation holds the grid and everything needed to advance it.
// All grid access goes through the simulation lock: Step holds it for the
// whole tick, readers get copies.
type Simulation struct {
	RunID     uuid.UUID
	Threshold float64

	// ReportEvery logs a progress report every N ticks (0 = only on convergence).
	ReportEvery uint64

	mu       sync.RWMutex
	grid     *world.Grid
	rng      *rand.Rand
	lastTick uint64
	stats    Stats

	subMu     sync.Mutex
	nextSubID int
	subs      map[int]chan StepResult
}

// Initialize generates a grid from cfg and wraps it in a Simulation.
// It fails with *world.InvalidSizeError, *world.InvalidDistributionError or
// *InvalidThresholdError; no simulation is created in that case.
func Initialize(cfg world.GenConfig, threshold float64, rng *rand.Rand) (*Simulation, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	g, err := world.Generate(cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("generate grid: %w", err)
	}

	slog.Info("grid generated",
		"grid", g.Summary(),
		"locations", humanize.Comma(int64(g.Len())),
		"layout", cfg.Layout,
	)
	return NewSimulation(g, threshold, rng), nil
}

// ValidateThreshold checks that threshold is in (0, 1].
func ValidateThreshold(threshold float64) error {
	if !(threshold > 0 && threshold <= 1) {
		return &InvalidThresholdError{Threshold: threshold}
	}
	return nil
}

// NewSimulation wraps an existing grid. The simulation takes ownership of g.
func NewSimulation(g *world.Grid, threshold float64, rng *rand.Rand) *Simulation {
	s := &Simulation{
		RunID:     uuid.New(),
		Threshold: threshold,
		grid:      g,
		rng:       rng,
		subs:      make(map[int]chan StepResult),
	}
	s.stats.Counts = g.Counts()
	return s
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTick
}

// Stats returns a copy of the current statistics.
func (s *Simulation) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Step runs exactly one tick and returns its result.
func (s *Simulation) Step() StepResult {
	s.mu.Lock()
	s.lastTick++
	res := Step(s.grid, s.Threshold, s.rng)
	res.Tick = s.lastTick
	firstConvergence := s.updateStats(res)
	s.mu.Unlock()

	if s.ReportEvery > 0 && res.Tick%s.ReportEvery == 0 {
		s.report(res)
	}
	if firstConvergence {
		slog.Info("simulation converged",
			"tick", res.Tick,
			"unsatisfied", res.Unsatisfied,
			"vacancies", res.Vacancies,
			"similarity", fmt.Sprintf("%.3f", res.MeanSimilarity),
		)
	}

	s.publish(res)
	return res
}

func (s *Simulation) updateStats(res StepResult) bool {
	s.stats.Tick = res.Tick
	s.stats.Unsatisfied = res.Unsatisfied
	s.stats.Moves = res.Moves
	s.stats.TotalMoves += uint64(res.Moves)
	s.stats.MeanSimilarity = res.MeanSimilarity
	s.stats.Counts = s.grid.Counts()

	converged := res.Converged()
	first := converged && !s.stats.Converged
	if first {
		s.stats.ConvergedTick = res.Tick
	}
	s.stats.Converged = converged
	return first
}

func (s *Simulation) report(res StepResult) {
	slog.Info("tick report",
		"tick", res.Tick,
		"agents", humanize.Comma(int64(res.Agents)),
		"unsatisfied", humanize.Comma(int64(res.Unsatisfied)),
		"moves", humanize.Comma(int64(res.Moves)),
		"similarity", fmt.Sprintf("%.3f", res.MeanSimilarity),
	)
}

// Snapshot returns a copy of the grid that is safe to read while ticks continue.
func (s *Simulation) Snapshot() *world.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Clone()
}

// SnapshotTick returns a grid copy together with the tick it belongs to.
func (s *Simulation) SnapshotTick() (*world.Grid, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Clone(), s.lastTick
}

// Render walks every cell under the read lock, handing the renderer its
// position and kind. fn must not call back into the simulation.
func (s *Simulation) Render(fn func(row, col int, k world.Kind)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.grid.Each(func(row, col int, c world.Cell) {
		fn(row, col, c.Kind)
	})
}

// Size returns the grid side length.
func (s *Simulation) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Size()
}

// Subscribe registers a listener for step results. Slow listeners miss results
// rather than blocking the tick.
func (s *Simulation) Subscribe() (int, <-chan StepResult) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSubID++
	ch := make(chan StepResult, 16)
	s.subs[s.nextSubID] = ch
	return s.nextSubID, ch
}

// Unsubscribe removes a listener and closes its channel.
func (s *Simulation) Unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Simulation) publish(res StepResult) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- res:
		default:
		}
	}
}
