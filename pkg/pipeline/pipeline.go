// Package pipeline drives terrain generation as a resumable state machine.
//
// A run executes a validated preset pass by pass. Each pass generates its
// layers into a column buffer, materializes the buffer into the grid a few
// columns at a time, then holds for the pass's settle time so the host's
// particle simulation can relax the new terrain. The host calls [Runner.Step]
// once per tick; every step does a bounded amount of work and returns, which
// keeps generation from stalling the simulation loop.
//
// # Usage
//
// Create a runner and step it until it reports completion:
//
//	runner := pipeline.NewRunner(w, p, pipeline.Options{Seed: 42})
//	for runner.Step(ctx) == pipeline.StatusContinue {
//	    host.Tick()
//	}
//
// Cancel aborts the run at the next step boundary and restores any physics
// overrides the current pass installed.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sandfall/strata/pkg/world"
)

// materializeChunk is how many grid columns one Materializing step writes
// before suspending back to the host.
const materializeChunk = 10

// State is the runner's current phase.
type State int

// Runner phases, in the order a pass moves through them.
const (
	StateIdle State = iota
	StateGenerating
	StateMaterializing
	StateSettling
	StateDone
	StateCancelled
)

// String returns the phase name for logs and status displays.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateMaterializing:
		return "materializing"
	case StateSettling:
		return "settling"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Status is what one Step reports back to the host loop.
type Status int

const (
	// StatusContinue means the run is still in progress; step again.
	StatusContinue Status = iota

	// StatusDone means every pass has generated, materialized, and settled.
	StatusDone

	// StatusCancelled means Cancel stopped the run before completion.
	StatusCancelled
)

// Options configures a run.
type Options struct {
	// Seed drives every random decision of the run. The same seed, preset,
	// and starting grid always produce the same terrain. Zero picks a
	// time-based seed.
	Seed uint64

	// Paused, when non-nil and returning true, makes Step a no-op for that
	// tick without losing position in the run.
	Paused func() bool

	// RunID labels the run in logs and hook events. Empty generates one.
	RunID string

	// Logger receives per-pass progress. Nil discards.
	Logger *log.Logger
}

// setDefaults fills zero-valued options in place.
func (o *Options) setDefaults() {
	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Stats accumulates over a run.
type Stats struct {
	// PassesDone counts fully settled passes.
	PassesDone int

	// CellsWritten counts buffer cells materialized into the grid.
	CellsWritten int

	// Duration is wall time from the first Step to Done or Cancelled.
	Duration time.Duration
}

// override records a material's physics before a pass replaced it.
type override struct {
	id   world.MaterialID
	prev world.Physics
}
