// Initial population layout.
// Produces a flat sequence with exact per-kind counts, then reshapes it into the grid.
package world

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Layout selects how agents are placed on the initial grid.
type Layout string

const (
	LayoutRandom Layout = "random" // Uniform Fisher–Yates permutation
	LayoutNoise  Layout = "noise"  // Simplex-noise ranked placement (clustered start)
)

// GenConfig holds grid generation parameters.
type GenConfig struct {
	Locations  int     `yaml:"locations"`   // Total cells, must be a perfect square
	FracA      float64 `yaml:"frac_a"`      // Share of TypeA agents (0.0–1.0)
	FracB      float64 `yaml:"frac_b"`      // Share of TypeB agents (0.0–1.0)
	Layout     Layout  `yaml:"layout"`      // Placement strategy
	NoiseScale float64 `yaml:"noise_scale"` // Base frequency for LayoutNoise
}

// DefaultGenConfig returns the classic 300×300 half-empty world.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Locations:  90000,
		FracA:      0.25,
		FracB:      0.25,
		Layout:     LayoutRandom,
		NoiseScale: 0.08,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Locations:  100,
		FracA:      0.25,
		FracB:      0.25,
		Layout:     LayoutRandom,
		NoiseScale: 0.2,
	}
}

// Validate checks sizes and fractions without building anything.
func (cfg GenConfig) Validate() error {
	if _, ok := SquareSide(cfg.Locations); !ok {
		return &InvalidSizeError{Locations: cfg.Locations}
	}
	if err := validateFractions(cfg.FracA, cfg.FracB); err != nil {
		return err
	}
	switch cfg.Layout {
	case "", LayoutRandom, LayoutNoise:
	default:
		return fmt.Errorf("unknown layout %q (valid: %s, %s)", cfg.Layout, LayoutRandom, LayoutNoise)
	}
	return nil
}

// Generate builds the initial grid described by cfg using rng for every random choice.
func Generate(cfg GenConfig, rng *rand.Rand) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Layout == LayoutNoise {
		return generateNoise(cfg, rng)
	}

	kinds, err := GenerateDistribution(cfg.Locations, cfg.FracA, cfg.FracB, rng)
	if err != nil {
		return nil, err
	}
	return BuildGrid(kinds)
}

// PopulationCounts converts fractions into exact agent counts for n locations.
// TypeA and TypeB are rounded independently (half away from zero); TypeB is
// clamped so the agents fit, and Empty absorbs whatever rounding slack is left,
// so a+b+empty == n always holds.
func PopulationCounts(n int, fracA, fracB float64) (a, b, empty int) {
	a = int(math.Round(fracA * float64(n)))
	b = int(math.Round(fracB * float64(n)))
	if a > n {
		a = n
	}
	if a+b > n {
		b = n - a
	}
	empty = n - a - b

	if rounded := int(math.Round(float64(n) * (1 - fracA - fracB))); rounded != empty {
		slog.Debug("empty count adjusted for rounding", "locations", n, "rounded", rounded, "empty", empty)
	}
	return a, b, empty
}

// GenerateDistribution returns n kinds with exact TypeA/TypeB/Empty counts in
// uniformly random order.
func GenerateDistribution(n int, fracA, fracB float64, rng *rand.Rand) ([]Kind, error) {
	if n <= 0 {
		return nil, &InvalidSizeError{Locations: n}
	}
	if err := validateFractions(fracA, fracB); err != nil {
		return nil, err
	}

	a, b, _ := PopulationCounts(n, fracA, fracB)

	// Slots start out Empty; fill the leading a+b with agents.
	kinds := make([]Kind, n)
	for i := 0; i < a; i++ {
		kinds[i] = TypeA
	}
	for i := a; i < a+b; i++ {
		kinds[i] = TypeB
	}

	Shuffle(rng, kinds)
	return kinds, nil
}

// Shuffle applies an unbiased Fisher–Yates permutation to s.
func Shuffle[T any](rng *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// generateNoise places agents by ranking two noise fields: occupancy picks the
// a+b highest cells, then kind splits those occupied cells by a second field.
// Counts match the random layout exactly; only the arrangement is clustered.
func generateNoise(cfg GenConfig, rng *rand.Rand) (*Grid, error) {
	side, _ := SquareSide(cfg.Locations)
	a, b, _ := PopulationCounts(cfg.Locations, cfg.FracA, cfg.FracB)

	scale := cfg.NoiseScale
	if scale <= 0 {
		scale = DefaultGenConfig().NoiseScale
	}

	seed := rng.Int63()
	occNoise := opensimplex.NewNormalized(seed)
	kindNoise := opensimplex.NewNormalized(seed + 1)

	n := cfg.Locations
	occ := make([]float64, n)
	kind := make([]float64, n)
	for i := 0; i < n; i++ {
		x, y := float64(i%side), float64(i/side)
		occ[i] = octaveNoise(occNoise, x, y, 3, scale, 0.5)
		kind[i] = octaveNoise(kindNoise, x, y, 3, scale, 0.5)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return occ[order[i]] > occ[order[j]] })

	occupied := order[:a+b]
	sort.SliceStable(occupied, func(i, j int) bool { return kind[occupied[i]] < kind[occupied[j]] })

	kinds := make([]Kind, n)
	for i, idx := range occupied {
		if i < a {
			kinds[idx] = TypeA
		} else {
			kinds[idx] = TypeB
		}
	}
	return BuildGrid(kinds)
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
