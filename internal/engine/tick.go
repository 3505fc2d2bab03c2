// Package engine provides the Schelling update rule and the tick-based loop that drives it.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval matches the classic animation pace of roughly two ticks per second.
const DefaultInterval = 450 * time.Millisecond

// Engine drives the simulation forward.
type Engine struct {
	Interval time.Duration // Base tick interval

	// MaxTicks stops the loop after this many ticks (0 = unbounded).
	MaxTicks uint64

	// StopOnConvergence stops the loop after the first converged tick.
	StopOnConvergence bool

	// OnTick runs every tick and returns what the tick did.
	OnTick func(tick uint64) StepResult

	mu      sync.Mutex
	tick    uint64
	speed   float64 // Multiplier: 1.0 = real-time, 0 = paused
	running bool
	cancel  context.CancelFunc
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Interval: DefaultInterval,
		speed:    1.0,
	}
}

// Tick returns the number of ticks run so far.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier; 0 pauses the loop.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = speed
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run starts the simulation loop. Blocks until ctx is done, Stop is called,
// MaxTicks is reached, or the simulation converges with StopOnConvergence set.
// A tick in progress always completes.
func (e *Engine) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.running = true
	e.cancel = cancel
	start := e.tick
	e.mu.Unlock()

	slog.Info("simulation engine started", "tick", start, "speed", e.Speed(), "interval", e.Interval)

	defer func() {
		e.mu.Lock()
		e.running = false
		e.cancel = nil
		e.mu.Unlock()
		slog.Info("simulation engine stopped", "tick", e.Tick())
	}()

	for ctx.Err() == nil {
		speed := e.Speed()
		if speed <= 0 {
			// Paused; poll again shortly.
			if !sleep(ctx, 100*time.Millisecond) {
				return
			}
			continue
		}

		began := time.Now()

		res := e.step()
		if e.StopOnConvergence && res.Converged() {
			return
		}
		if e.MaxTicks > 0 && e.Tick()-start >= e.MaxTicks {
			return
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(began)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target && !sleep(ctx, target-elapsed) {
			return
		}
	}
}

// Stop halts the simulation loop after the current tick.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// step advances the simulation by one tick.
func (e *Engine) step() StepResult {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	e.mu.Unlock()

	if e.OnTick == nil {
		return StepResult{Tick: tick}
	}
	return e.OnTick(tick)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
