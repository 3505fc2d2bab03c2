package world

import (
	"fmt"
	"math"
)

// InvalidSizeError reports a location count that cannot form a square grid.
type InvalidSizeError struct {
	Locations int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid grid size: %d locations is not a positive perfect square", e.Locations)
}

// InvalidDistributionError reports population fractions that cannot be honoured.
type InvalidDistributionError struct {
	FracA  float64
	FracB  float64
	Reason string
}

func (e *InvalidDistributionError) Error() string {
	return fmt.Sprintf("invalid distribution (a=%.3f, b=%.3f): %s", e.FracA, e.FracB, e.Reason)
}

// OutOfBoundsError is the panic value raised when a coordinate outside the grid is accessed.
// All loops in this module derive their bounds from the grid, so this signals a programming error.
type OutOfBoundsError struct {
	Row, Col int
	Size     int
}

func (e OutOfBoundsError) Error() string {
	return fmt.Sprintf("out of bounds access (%d, %d) on %dx%d grid", e.Row, e.Col, e.Size, e.Size)
}

// SquareSide returns N when n == N*N for some N > 0.
func SquareSide(n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	side := int(math.Sqrt(float64(n)))
	if side < 1 {
		side = 1
	}
	// Correct for float rounding either side of the true root. Comparing by
	// division keeps the checks from overflowing near the top of the int range.
	for side > n/side {
		side--
	}
	for side+1 <= n/(side+1) {
		side++
	}
	return side, side*side == n
}

// fractionTolerance absorbs float error in sums such as 0.7+0.3.
const fractionTolerance = 1e-9

func validateFractions(fracA, fracB float64) error {
	switch {
	case math.IsNaN(fracA) || math.IsNaN(fracB):
		return &InvalidDistributionError{FracA: fracA, FracB: fracB, Reason: "fraction is NaN"}
	case fracA < 0 || fracB < 0:
		return &InvalidDistributionError{FracA: fracA, FracB: fracB, Reason: "fractions must be non-negative"}
	case fracA+fracB > 1+fractionTolerance:
		return &InvalidDistributionError{FracA: fracA, FracB: fracB, Reason: "fractions sum to more than 1"}
	}
	return nil
}
