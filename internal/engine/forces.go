package engine

import (
	"math"

	"github.com/tscircuit/fastforce/internal/geom"
	"github.com/tscircuit/fastforce/internal/problem"
)

// repelMagnitude evaluates the shared repulsion profile for a signed gap.
// Overlap amplifies the force twice: through the multiplier and through the
// exponent turning positive.
func repelMagnitude(ip problem.Interaction, gap float64) float64 {
	mag := ip.Strength
	if gap < 0 {
		mag *= ip.OverlapMultiplier
	}
	if ip.Decay != 0 {
		mag *= geom.SafeExp(-ip.Decay * gap)
	}
	return mag
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (e *Engine) clearForces() {
	c := e.c
	for i := range c.fx {
		c.fx[i] = 0
		c.fy[i] = 0
	}
}

// rebuildGrid reinserts every segment with its AABB expanded by the influence
// distance. Inert segments get an inverted box so they occupy no cells.
func (e *Engine) rebuildGrid() {
	c := e.c
	e.grid.Reset(len(c.segA))
	inf := c.influence
	for s := range c.segA {
		if c.inert(s) {
			e.grid.Insert(s, 0, 0, -1, -1)
			continue
		}
		ax, ay := c.px[c.segA[s]], c.py[c.segA[s]]
		bx, by := c.px[c.segB[s]], c.py[c.segB[s]]
		if !finite(ax) || !finite(ay) || !finite(bx) || !finite(by) {
			e.grid.Insert(s, 0, 0, -1, -1)
			continue
		}
		e.grid.Insert(s,
			math.Min(ax, bx)-inf, math.Min(ay, by)-inf,
			math.Max(ax, bx)+inf, math.Max(ay, by)+inf)
	}
}

// segSegForces applies pairwise repulsion between same-layer segments.
// Candidate pairs come from the broadphase; each unordered pair is handled
// once (j > i) with the visited mark keyed to the owning segment.
func (e *Engine) segSegForces() {
	c := e.c
	ip := e.prob.SegSeg
	if ip.Strength == 0 {
		return
	}
	for i := range c.segA {
		if c.inert(i) {
			continue
		}
		ia, ib := c.segA[i], c.segB[i]
		e.grid.VisitSegment(i, uint32(i+1), func(j32 int32) {
			j := int(j32)
			if j <= i || c.inert(j) {
				return
			}
			if c.segLayer[i] < 0 || c.segLayer[i] != c.segLayer[j] {
				return
			}
			ja, jb := c.segA[j], c.segB[j]
			if ia == ja || ia == jb || ib == ja || ib == jb {
				return
			}
			if !c.movable[ia] && !c.movable[ib] && !c.movable[ja] && !c.movable[jb] {
				return
			}

			r := geom.ClosestPointsOnSegments(
				c.px[ia], c.py[ia], c.px[ib], c.py[ib],
				c.px[ja], c.py[ja], c.px[jb], c.py[jb])

			required := c.halfWidth[i] + c.halfWidth[j] + ip.MinSeparation
			dist := math.Sqrt(r.DistSq)
			mag := repelMagnitude(ip, dist-required)

			ux, uy := e.segSegDirection(r, i, j, dist)
			if !finite(mag) || !finite(ux) || !finite(uy) {
				return
			}

			// i pushed along +u, j along -u, each split across its endpoints
			// by the closest-point parameter.
			c.fx[ia] += ux * mag * (1 - r.S)
			c.fy[ia] += uy * mag * (1 - r.S)
			c.fx[ib] += ux * mag * r.S
			c.fy[ib] += uy * mag * r.S
			c.fx[ja] -= ux * mag * (1 - r.T)
			c.fy[ja] -= uy * mag * (1 - r.T)
			c.fx[jb] -= ux * mag * r.T
			c.fy[jb] -= uy * mag * r.T
		})
	}
}

// segSegDirection resolves the push direction for a segment pair. Coincident
// closest points fall back to the midpoint difference, then to segment i's
// left perpendicular, finally to +x. The fixed order keeps trajectories
// reproducible.
func (e *Engine) segSegDirection(r geom.SegmentResult, i, j int, dist float64) (float64, float64) {
	if r.DistSq > geom.Eps {
		return (r.X1 - r.X2) / dist, (r.Y1 - r.Y2) / dist
	}
	c := e.c
	ia, ib := c.segA[i], c.segB[i]
	ja, jb := c.segA[j], c.segB[j]
	mx := (c.px[ia]+c.px[ib])/2 - (c.px[ja]+c.px[jb])/2
	my := (c.py[ia]+c.py[ib])/2 - (c.py[ja]+c.py[jb])/2
	if d2 := mx*mx + my*my; d2 > geom.Eps {
		d := math.Sqrt(d2)
		return mx / d, my / d
	}
	dx, dy := c.px[ib]-c.px[ia], c.py[ib]-c.py[ia]
	if l2 := dx*dx + dy*dy; l2 > geom.Eps {
		l := math.Sqrt(l2)
		return -dy / l, dx / l
	}
	return 1, 0
}

// pointSegForces repels points from same-layer segments. The endpoint pair is
// skipped only for non-degenerate segments: there the split reaction cancels
// against the direct term anyway, while a degenerate segment must still expel
// its own endpoints (the reaction lands entirely on the t=0 end).
func (e *Engine) pointSegForces() {
	c := e.c
	ip := e.prob.PointSeg
	if ip.Strength == 0 {
		return
	}
	nseg := len(c.segA)
	for p := range c.px {
		pm := c.movable[p]
		e.grid.VisitAround(c.px[p], c.py[p], uint32(nseg+p+1), func(s32 int32) {
			s := int(s32)
			if c.inert(s) || !c.pointOnLayer(p, c.segLayer[s]) {
				return
			}
			a, b := c.segA[s], c.segB[s]
			if !pm && !c.movable[a] && !c.movable[b] {
				return
			}
			ax, ay := c.px[a], c.py[a]
			bx, by := c.px[b], c.py[b]
			if int32(p) == a || int32(p) == b {
				dx, dy := bx-ax, by-ay
				if dx*dx+dy*dy > geom.DegenerateLengthSq {
					return
				}
			}

			r := geom.ClosestPointOnSegment(c.px[p], c.py[p], ax, ay, bx, by)
			required := c.radius[p] + c.halfWidth[s] + ip.MinSeparation
			dist := math.Sqrt(r.DistSq)
			mag := repelMagnitude(ip, dist-required)

			var ux, uy float64
			switch {
			case r.DistSq > geom.Eps:
				ux, uy = r.DX/dist, r.DY/dist
			default:
				dx, dy := bx-ax, by-ay
				if l2 := dx*dx + dy*dy; l2 > geom.Eps {
					l := math.Sqrt(l2)
					ux, uy = -dy/l, dx/l
				} else {
					ux, uy = 1, 0
				}
			}
			if !finite(mag) || !finite(ux) || !finite(uy) {
				return
			}

			c.fx[p] += ux * mag
			c.fy[p] += uy * mag
			c.fx[a] -= ux * mag * (1 - r.T)
			c.fy[a] -= uy * mag * (1 - r.T)
			c.fx[b] -= ux * mag * r.T
			c.fy[b] -= uy * mag * r.T
		})
	}
}

// boundsForces pushes every point toward the effective keep-in region. Fixed
// points accumulate force too; integration simply never reads it back into a
// position.
func (e *Engine) boundsForces() {
	c := e.c
	ip := e.prob.KeepIn
	if ip.Strength == 0 {
		return
	}
	b := e.prob.Bounds
	for p := range c.px {
		r := c.radius[p]
		if m := repelMagnitude(ip, c.px[p]-(b.MinX+b.Padding+r)); finite(m) {
			c.fx[p] += m
		}
		if m := repelMagnitude(ip, (b.MaxX-b.Padding-r)-c.px[p]); finite(m) {
			c.fx[p] -= m
		}
		if m := repelMagnitude(ip, c.py[p]-(b.MinY+b.Padding+r)); finite(m) {
			c.fy[p] += m
		}
		if m := repelMagnitude(ip, (b.MaxY-b.Padding-r)-c.py[p]); finite(m) {
			c.fy[p] -= m
		}
	}
}

// lengthForces pulls fixed-length segments back toward their rest length with
// a penalty that stiffens exponentially with the error.
func (e *Engine) lengthForces() {
	c := e.c
	ip := e.prob.FixedLength
	if ip.Strength == 0 {
		return
	}
	for s := range c.segA {
		if !c.fixedLen[s] || c.inert(s) {
			continue
		}
		a, b := c.segA[s], c.segB[s]
		if !c.movable[a] && !c.movable[b] {
			continue
		}
		dx, dy := c.px[b]-c.px[a], c.py[b]-c.py[a]
		l2 := dx*dx + dy*dy
		if l2 <= geom.Eps {
			continue
		}
		l := math.Sqrt(l2)
		err := l - c.restLen[s]
		gain := 1.0
		if ip.Decay != 0 {
			gain = geom.SafeExp(ip.Decay * math.Abs(err))
		}
		mag := ip.Strength * err * gain
		if !finite(mag) {
			continue
		}
		ux, uy := dx/l, dy/l
		c.fx[a] += ux * mag
		c.fy[a] += uy * mag
		c.fx[b] -= ux * mag
		c.fy[b] -= uy * mag
	}
}

// orientationForces applies a restoring couple to fixed-orientation segments.
// The magnitude scales with length so long segments rotate at the same
// angular rate as short ones.
func (e *Engine) orientationForces() {
	c := e.c
	ip := e.prob.FixedOrientation
	if ip.Strength == 0 {
		return
	}
	for s := range c.segA {
		if !c.fixedOrient[s] || c.inert(s) {
			continue
		}
		a, b := c.segA[s], c.segB[s]
		if !c.movable[a] && !c.movable[b] {
			continue
		}
		dx, dy := c.px[b]-c.px[a], c.py[b]-c.py[a]
		l2 := dx*dx + dy*dy
		if l2 <= geom.Eps {
			continue
		}
		l := math.Sqrt(l2)
		err := geom.WrapToPi(math.Atan2(dy, dx) - c.restAng[s])
		gain := 1.0
		if ip.Decay != 0 {
			gain = geom.SafeExp(ip.Decay * math.Abs(err))
		}
		mag := ip.Strength * err * l * gain
		if !finite(mag) {
			continue
		}
		ux, uy := dx/l, dy/l
		nx, ny := -uy, ux
		c.fx[a] += nx * mag
		c.fy[a] += ny * mag
		c.fx[b] -= nx * mag
		c.fy[b] -= ny * mag
	}
}
