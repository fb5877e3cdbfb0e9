package engine

import (
	"math"

	"github.com/tscircuit/fastforce/internal/geom"
)

// relaxationScale returns the force fade factor for the current iteration:
// 1 outside the relaxation window, then a linear ramp down to 1/relaxationSteps
// on the final step.
func (e *Engine) relaxationScale() float64 {
	s := e.prob.Schedule
	if s.RelaxationSteps <= 0 {
		return 1
	}
	remaining := s.MaxSteps - e.iterations
	if remaining > s.RelaxationSteps {
		return 1
	}
	return float64(remaining) / float64(s.RelaxationSteps)
}

// integrate advances velocities and positions, mirrors new positions to the
// externally owned points, and updates the convergence bookkeeping.
func (e *Engine) integrate() {
	c := e.c
	s := e.prob.Schedule

	scale := e.relaxationScale()
	if scale < 1 {
		for i := range c.fx {
			c.fx[i] *= scale
			c.fy[i] *= scale
		}
	}

	// During the fade, friction ramps toward 1 so residual momentum dies out
	// with the forces.
	friction := s.Friction
	if scale < 1 {
		friction = 1 - (1-s.Friction)*scale
	}
	momentum := 1 - friction

	maxMove := 0.0
	for i := range c.px {
		if !c.movable[i] {
			continue
		}
		vx := c.vx[i]*momentum + c.fx[i]*s.StepSize
		vy := c.vy[i]*momentum + c.fy[i]*s.StepSize

		vSq := vx*vx + vy*vy
		if vSq <= geom.Eps {
			c.vx[i], c.vy[i] = 0, 0
			continue
		}
		v := math.Sqrt(vSq)
		if s.MaxMovePerStep > 0 && v > s.MaxMovePerStep {
			k := s.MaxMovePerStep / v
			vx *= k
			vy *= k
			v = s.MaxMovePerStep
		}

		c.vx[i], c.vy[i] = vx, vy
		c.px[i] += vx
		c.py[i] += vy
		c.ext[i].X = c.px[i]
		c.ext[i].Y = c.py[i]

		if v > maxMove {
			maxMove = v
		}
	}

	e.maxMove = maxMove
	e.progress = math.Min(1, s.EpsilonMove/math.Max(s.EpsilonMove, maxMove))
	if maxMove <= s.EpsilonMove {
		e.solved = true
	}
}
