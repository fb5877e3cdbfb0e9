package engine

import (
	"github.com/tscircuit/fastforce/internal/grid"
	"github.com/tscircuit/fastforce/internal/problem"
)

// Engine relaxes a problem by fixed-point iteration. Zero work happens at
// construction; cached state and the broadphase are built on the first Step.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	prob *problem.Problem

	c    *cache
	grid *grid.Grid

	solved     bool
	iterations int
	progress   float64
	maxMove    float64
}

// New wraps a problem description. The description's points are mutated in
// place as the relaxation proceeds.
func New(p *problem.Problem) *Engine {
	return &Engine{prob: p}
}

// Solved reports whether a step's maximum movement fell below epsilon.
func (e *Engine) Solved() bool { return e.solved }

// Iterations reports the number of completed steps.
func (e *Engine) Iterations() int { return e.iterations }

// Progress reports a convergence estimate in [0, 1]: 0 before the first step,
// then epsilonMove divided by the last step's maximum movement, capped at 1.
// It follows the latest step, so it can fall as well as rise; it reaches 1
// exactly when the engine is solved.
func (e *Engine) Progress() float64 { return e.progress }

// MaxMove reports the largest point displacement of the most recent step.
func (e *Engine) MaxMove() float64 { return e.maxMove }

func (e *Engine) ensureInit() {
	if e.c != nil {
		return
	}
	e.c = buildCache(e.prob)
	b := e.prob.Bounds
	e.grid = grid.New(b.MinX, b.MinY, e.c.influence)
}

// Step advances one iteration: clear forces, rebuild the broadphase, run the
// five kernels in fixed order, then integrate. Once solved, Step is a no-op.
func (e *Engine) Step() {
	if e.solved {
		return
	}
	e.ensureInit()

	e.clearForces()
	e.rebuildGrid()
	e.segSegForces()
	e.pointSegForces()
	e.boundsForces()
	e.lengthForces()
	e.orientationForces()
	e.integrate()

	e.iterations++
}

// Solve steps until convergence or the schedule's step cap.
func (e *Engine) Solve() {
	for !e.solved && e.iterations < e.prob.Schedule.MaxSteps {
		e.Step()
	}
}
