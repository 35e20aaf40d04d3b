package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/sandfall/strata/pkg/observability"
	"github.com/sandfall/strata/pkg/preset"
	"github.com/sandfall/strata/pkg/terrain"
	"github.com/sandfall/strata/pkg/world"
)

// Runner executes one preset against one world. It is not safe for
// concurrent use; the host loop owns it and calls Step from a single
// goroutine.
type Runner struct {
	w    world.World
	p    *preset.Preset
	opts Options

	state      State
	passIdx    int
	layerIdx   int
	colIdx     int
	settleLeft int

	cols *terrain.Columns
	rng  *rand.Rand

	// overrides holds the physics the current pass replaced, in
	// install order. Restored at pass end and on Cancel.
	overrides []override

	started     time.Time
	passStarted time.Time
	passCells   int
	stats       Stats
	cancelled   bool
}

// NewRunner prepares a run. The preset must have come out of a successful
// validation; passing an unvalidated preset is a programming error, not a
// runtime condition the runner guards against.
func NewRunner(w world.World, p *preset.Preset, opts Options) *Runner {
	opts.setDefaults()
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Runner{
		w:    w,
		p:    p,
		opts: opts,
		rng:  terrain.NewRand(opts.Seed),
	}
}

// State returns the current phase.
func (r *Runner) State() State { return r.state }

// Pass returns the zero-based index of the pass in progress, or the pass
// count once the run is done.
func (r *Runner) Pass() int { return r.passIdx }

// Passes returns the preset's pass count.
func (r *Runner) Passes() int { return len(r.p.Passes) }

// Stats returns a snapshot of the run's counters.
func (r *Runner) Stats() Stats {
	s := r.stats
	if !r.started.IsZero() && r.state != StateDone && r.state != StateCancelled {
		s.Duration = time.Since(r.started)
	}
	return s
}

// Cancel requests the run stop. The next Step restores any active physics
// overrides and reports StatusCancelled. Safe to call at any phase,
// including after completion, where it has no effect.
func (r *Runner) Cancel() {
	if r.state != StateDone {
		r.cancelled = true
	}
}

// Step advances the run by one bounded unit of work: one layer generated,
// one chunk of columns materialized, or one settle tick. It never blocks and
// never does unbounded work, so the host can call it from inside its
// simulation tick.
func (r *Runner) Step(ctx context.Context) Status {
	if r.state == StateDone {
		return StatusDone
	}
	if r.state == StateCancelled {
		return StatusCancelled
	}
	if r.cancelled {
		return r.finishCancelled(ctx)
	}
	if r.opts.Paused != nil && r.opts.Paused() {
		return StatusContinue
	}

	switch r.state {
	case StateIdle:
		r.started = time.Now()
		observability.Pipeline().OnRunStart(ctx, r.opts.RunID, len(r.p.Passes))
		r.opts.Logger.Info("generation run started",
			"run", r.opts.RunID, "passes", len(r.p.Passes), "seed", r.opts.Seed)
		if len(r.p.Passes) == 0 {
			return r.finishDone(ctx)
		}
		r.beginPass(ctx)

	case StateGenerating:
		r.generateLayer()

	case StateMaterializing:
		r.materializeChunk(ctx)

	case StateSettling:
		r.settleLeft--
		if r.settleLeft <= 0 {
			r.endPass(ctx)
		}
	}

	if r.state == StateDone {
		return StatusDone
	}
	return StatusContinue
}

// beginPass sets up the column buffer and physics overrides for the pass at
// passIdx and moves to StateGenerating.
func (r *Runner) beginPass(ctx context.Context) {
	// A crashed or cancelled earlier run may have left overrides behind on
	// a shared registry. Restoring here is idempotent.
	r.restoreOverrides()

	pass := &r.p.Passes[r.passIdx]
	gw, _ := r.w.Size()

	r.cols = terrain.NewColumns(gw)
	r.layerIdx = 0
	r.colIdx = 0
	r.passCells = 0
	r.passStarted = time.Now()

	if pass.GravitySolids {
		r.installOverrides(pass)
	}

	observability.Pipeline().OnPassStart(ctx, r.opts.RunID, r.passIdx)
	r.opts.Logger.Debug("pass started",
		"run", r.opts.RunID, "pass", r.passIdx,
		"bottom", pass.Bottom, "layers", len(pass.Layers))
	r.state = StateGenerating
}

// generateLayer applies one layer into the buffer, then moves to
// materialization once the pass's last layer is in.
func (r *Runner) generateLayer() {
	pass := &r.p.Passes[r.passIdx]
	if r.layerIdx < len(pass.Layers) {
		terrain.Apply(pass.Layers[r.layerIdx], r.cols, r.w, pass.Bottom, r.rng)
		r.layerIdx++
	}
	if r.layerIdx >= len(pass.Layers) {
		r.state = StateMaterializing
	}
}

// materializeChunk writes up to materializeChunk buffered columns into the
// grid, then either suspends (more columns remain) or moves to settling.
func (r *Runner) materializeChunk(ctx context.Context) {
	pass := &r.p.Passes[r.passIdx]
	gw, gh := r.w.Size()

	end := r.colIdx + materializeChunk
	if end > r.cols.Width {
		end = r.cols.Width
	}
	for col := r.colIdx; col < end; col++ {
		for _, e := range r.cols.Column(col) {
			y := pass.Bottom + e.Offset
			if col >= gw || y < 0 || y >= gh {
				continue
			}
			r.w.Set(col, y, world.Cell{Material: e.Material})
			r.passCells++
		}
	}
	r.colIdx = end

	if r.colIdx >= r.cols.Width {
		r.settleLeft = pass.SettleTime
		if r.settleLeft <= 0 {
			r.endPass(ctx)
			return
		}
		r.state = StateSettling
	}
}

// endPass restores physics, records the pass, and either starts the next
// pass or finishes the run.
func (r *Runner) endPass(ctx context.Context) {
	r.restoreOverrides()

	r.stats.PassesDone++
	r.stats.CellsWritten += r.passCells
	observability.Pipeline().OnPassComplete(ctx, r.opts.RunID, r.passIdx,
		r.passCells, time.Since(r.passStarted))
	r.opts.Logger.Debug("pass complete",
		"run", r.opts.RunID, "pass", r.passIdx, "cells", r.passCells)

	r.cols = nil
	r.passIdx++
	if r.passIdx >= len(r.p.Passes) {
		r.finishDone(ctx)
		return
	}
	r.beginPass(ctx)
}

func (r *Runner) finishDone(ctx context.Context) Status {
	r.state = StateDone
	r.stats.Duration = time.Since(r.started)
	observability.Pipeline().OnRunComplete(ctx, r.opts.RunID, r.stats.Duration, false)
	r.opts.Logger.Info("generation run complete",
		"run", r.opts.RunID, "passes", r.stats.PassesDone, "cells", r.stats.CellsWritten)
	return StatusDone
}

func (r *Runner) finishCancelled(ctx context.Context) Status {
	r.restoreOverrides()
	r.state = StateCancelled
	r.cols = nil
	if !r.started.IsZero() {
		r.stats.Duration = time.Since(r.started)
	}
	observability.Pipeline().OnRunComplete(ctx, r.opts.RunID, r.stats.Duration, true)
	r.opts.Logger.Info("generation run cancelled",
		"run", r.opts.RunID, "passes", r.stats.PassesDone)
	return StatusCancelled
}

// installOverrides grants granular physics to every static solid the pass
// places, so freshly materialized terrain falls and piles during settling.
// Each material is snapshotted at most once per pass.
func (r *Runner) installOverrides(pass *preset.Pass) {
	reg := r.w.Materials()
	seen := make(map[world.MaterialID]bool)

	for _, layer := range pass.Layers {
		for _, id := range layerMaterials(layer) {
			if seen[id] {
				continue
			}
			seen[id] = true

			prev, ok := reg.Physics(id)
			if !ok || prev.Class != world.ClassSolid || prev.Fall != world.FallNone {
				continue
			}
			r.overrides = append(r.overrides, override{id: id, prev: prev})
			reg.SetPhysics(id, world.Granular())
		}
	}
}

// restoreOverrides puts back every physics record the pass replaced.
// Idempotent: a second call finds the list empty.
func (r *Runner) restoreOverrides() {
	reg := r.w.Materials()
	for _, o := range r.overrides {
		reg.SetPhysics(o.id, o.prev)
	}
	r.overrides = r.overrides[:0]
}

// layerMaterials lists the materials a layer introduces into the world.
// Replace contributes only the replacement material; the matched material
// was already there.
func layerMaterials(layer preset.Layer) []world.MaterialID {
	switch l := layer.(type) {
	case preset.Uniform:
		return []world.MaterialID{l.Material}
	case preset.Padded:
		return []world.MaterialID{l.Material}
	case preset.Vein:
		return []world.MaterialID{l.Material}
	case preset.Replace:
		return []world.MaterialID{l.New}
	default:
		return nil
	}
}

// Run steps the runner to completion, checking ctx between steps. It exists
// for callers that want terrain now and have no simulation loop to
// interleave with, like the CLI's generate command.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	for {
		select {
		case <-ctx.Done():
			r.Cancel()
			r.Step(ctx)
			return r.stats, ctx.Err()
		default:
		}
		switch r.Step(ctx) {
		case StatusDone, StatusCancelled:
			return r.stats, nil
		}
	}
}
