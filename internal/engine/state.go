package engine

import (
	"math"

	"github.com/tscircuit/fastforce/internal/problem"
)

// maskLayerLimit is the largest layer count that uses the bitmask encoding;
// beyond it membership switches to hashed sets. Both encodings implement the
// same predicate.
const maskLayerLimit = 30

// cutoffLn1000 is ln(1000): the gap at which an exponential repulsion tail
// has decayed a thousandfold, used to size the broadphase influence radius.
const cutoffLn1000 = 6.907755278982137

// cache holds the flat solver state derived from the problem description.
// Positions, forces, and velocities are parallel arrays indexed by point;
// segments store endpoint indices into those arrays.
type cache struct {
	// points
	px, py  []float64
	radius  []float64
	movable []bool
	fx, fy  []float64
	vx, vy  []float64
	ext     []*problem.Point

	// layer membership, one encoding active at a time
	useSets bool
	ptMask  []uint32
	ptSet   []map[int32]struct{}

	// segments
	segA, segB  []int32 // endpoint indices, -1 when unresolved
	halfWidth   []float64
	segLayer    []int32 // -1 when the layer id is unknown
	fixedLen    []bool
	fixedOrient []bool
	restLen     []float64
	restAng     []float64

	influence float64
}

func (c *cache) inert(s int) bool {
	return c.segA[s] < 0 || c.segB[s] < 0
}

// pointOnLayer reports whether point p's layer set contains layer l.
func (c *cache) pointOnLayer(p int, l int32) bool {
	if l < 0 {
		return false
	}
	if c.useSets {
		_, ok := c.ptSet[p][l]
		return ok
	}
	return c.ptMask[p]&(1<<uint(l)) != 0
}

// buildCache materializes the parallel arrays, snapshots rest lengths and
// angles, and derives the global influence distance.
func buildCache(p *problem.Problem) *cache {
	np := len(p.Points)
	ns := len(p.Segments)
	c := &cache{
		px:      make([]float64, np),
		py:      make([]float64, np),
		radius:  make([]float64, np),
		movable: make([]bool, np),
		fx:      make([]float64, np),
		fy:      make([]float64, np),
		vx:      make([]float64, np),
		vy:      make([]float64, np),
		ext:     make([]*problem.Point, np),

		segA:        make([]int32, ns),
		segB:        make([]int32, ns),
		halfWidth:   make([]float64, ns),
		segLayer:    make([]int32, ns),
		fixedLen:    make([]bool, ns),
		fixedOrient: make([]bool, ns),
		restLen:     make([]float64, ns),
		restAng:     make([]float64, ns),
	}

	pointIndex := make(map[string]int32, np)
	for i, pt := range p.Points {
		if _, ok := pointIndex[pt.ID]; !ok {
			pointIndex[pt.ID] = int32(i)
		}
		c.px[i], c.py[i] = pt.X, pt.Y
		c.radius[i] = pt.Radius
		c.movable[i] = pt.Movable
		c.ext[i] = pt
	}

	layerIndex := buildLayerIndex(p)
	c.useSets = len(layerIndex) > maskLayerLimit
	if c.useSets {
		c.ptSet = make([]map[int32]struct{}, np)
	} else {
		c.ptMask = make([]uint32, np)
	}
	for i, pt := range p.Points {
		if c.useSets {
			set := make(map[int32]struct{}, len(pt.Layers))
			for _, name := range pt.Layers {
				if l, ok := layerIndex[name]; ok {
					set[l] = struct{}{}
				}
			}
			c.ptSet[i] = set
		} else {
			for _, name := range pt.Layers {
				if l, ok := layerIndex[name]; ok {
					c.ptMask[i] |= 1 << uint(l)
				}
			}
		}
	}

	for i, sg := range p.Segments {
		c.segA[i], c.segB[i] = -1, -1
		if a, ok := pointIndex[sg.From]; ok {
			c.segA[i] = a
		}
		if b, ok := pointIndex[sg.To]; ok {
			c.segB[i] = b
		}
		c.halfWidth[i] = sg.Width / 2
		c.segLayer[i] = -1
		if l, ok := layerIndex[sg.Layer]; ok {
			c.segLayer[i] = l
		}
		c.fixedLen[i] = sg.FixedLength
		c.fixedOrient[i] = sg.FixedOrientation
		if !c.inert(i) {
			ax, ay := c.px[c.segA[i]], c.py[c.segA[i]]
			bx, by := c.px[c.segB[i]], c.py[c.segB[i]]
			c.restLen[i] = math.Hypot(bx-ax, by-ay)
			c.restAng[i] = math.Atan2(by-ay, bx-ax)
		}
	}

	c.influence = deriveInfluence(p, c)
	return c
}

// buildLayerIndex maps layer names to indices. A declared Layers list pins
// the universe; otherwise it is collected from segments then points in
// first-appearance order.
func buildLayerIndex(p *problem.Problem) map[string]int32 {
	idx := make(map[string]int32)
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := idx[name]; !ok {
			idx[name] = int32(len(idx))
		}
	}
	if len(p.Layers) > 0 {
		for _, name := range p.Layers {
			add(name)
		}
		return idx
	}
	for _, sg := range p.Segments {
		add(sg.Layer)
	}
	for _, pt := range p.Points {
		for _, name := range pt.Layers {
			add(name)
		}
	}
	return idx
}

// deriveInfluence computes the maximum distance at which two entities can
// exchange a nontrivial force. Broadphase cells are sized to it so that any
// interacting pair shares at least one cell.
func deriveInfluence(p *problem.Problem, c *cache) float64 {
	maxRadius := 0.0
	for _, r := range c.radius {
		if r > maxRadius {
			maxRadius = r
		}
	}
	maxHalf := 0.0
	for _, h := range c.halfWidth {
		if h > maxHalf {
			maxHalf = h
		}
	}
	maxMinSep := math.Max(p.SegSeg.MinSeparation, p.PointSeg.MinSeparation)
	baseSep := math.Max(maxRadius+maxHalf, 2*maxHalf) + maxMinSep

	minDecay := 0.0
	for _, d := range []float64{p.SegSeg.Decay, p.PointSeg.Decay} {
		if d > 0 && (minDecay == 0 || d < minDecay) {
			minDecay = d
		}
	}
	cutoff := 10*baseSep + 1
	if minDecay > 0 {
		cutoff = cutoffLn1000 / minDecay
	}
	return baseSep + cutoff
}
