package engine

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/talgya/schelling/internal/world"
)

func TestEngine_MaxTicks(t *testing.T) {
	eng := NewEngine()
	eng.Interval = 0
	eng.MaxTicks = 25

	calls := 0
	eng.OnTick = func(tick uint64) StepResult {
		calls++
		return StepResult{Tick: tick, Unsatisfied: 1, Vacancies: 1}
	}

	eng.Run(context.Background())

	if calls != 25 || eng.Tick() != 25 {
		t.Errorf("calls = %d, Tick() = %d, want 25", calls, eng.Tick())
	}
	if eng.Running() {
		t.Error("Running() = true after Run returned")
	}
}

func TestEngine_StopOnConvergence(t *testing.T) {
	g, err := world.ParseGrid("A A . B B\nA A . B B\nA A . B B\nA A . B B\nA A . B B")
	if err != nil {
		t.Fatal(err)
	}
	sim := NewSimulation(g, DefaultThreshold, rand.New(rand.NewSource(1)))

	eng := NewEngine()
	eng.Interval = 0
	eng.MaxTicks = 100
	eng.StopOnConvergence = true
	eng.OnTick = func(uint64) StepResult { return sim.Step() }

	eng.Run(context.Background())

	if eng.Tick() != 1 {
		t.Errorf("Tick() = %d, want 1", eng.Tick())
	}
}

func TestEngine_StopAndContext(t *testing.T) {
	eng := NewEngine()
	eng.Interval = time.Millisecond
	eng.OnTick = func(tick uint64) StepResult {
		return StepResult{Tick: tick, Unsatisfied: 1, Vacancies: 1}
	}

	done := make(chan struct{})
	go func() {
		eng.Run(context.Background())
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for eng.Tick() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	eng.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	before := eng.Tick()
	eng.Run(ctx)
	if eng.Tick() != before {
		t.Errorf("Run with cancelled context ticked %d times", eng.Tick()-before)
	}
}

func TestEngine_Paused(t *testing.T) {
	eng := NewEngine()
	eng.SetSpeed(0)
	eng.OnTick = func(tick uint64) StepResult { return StepResult{Tick: tick} }

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	eng.Run(ctx)

	if eng.Tick() != 0 {
		t.Errorf("paused engine ticked %d times", eng.Tick())
	}
}
