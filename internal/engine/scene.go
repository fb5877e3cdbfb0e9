package engine

// Scene is a rendering description of the problem: a plain-data snapshot that
// visualization collaborators (terminal canvas, SVG export) draw without
// touching engine state.
type Scene struct {
	// Bounds is the raw keep-in rectangle, Effective the padding inset.
	Bounds    [4]float64 // minX, minY, maxX, maxY
	Effective [4]float64

	Segments []SceneSegment
	Points   []ScenePoint

	// Initial marks a snapshot taken before the first step; it carries the
	// separation halos around segments and points.
	Initial bool
}

// SceneSegment is one resolved segment with its drawing extents.
type SceneSegment struct {
	ID             string
	Layer          string
	X1, Y1, X2, Y2 float64
	Width          float64
	Halo           float64 // half-width plus required clearance; 0 after the first step
}

// ScenePoint is one point with its clearance rings.
type ScenePoint struct {
	ID      string
	X, Y    float64
	Radius  float64
	Halo    float64 // radius plus required clearance; 0 after the first step
	Movable bool
}

// Visualize snapshots the current state. Before the first step it describes
// the initial problem with clearance halos; afterwards it reflects the
// relaxed positions with plain radius rings. Unresolved segments are omitted.
func (e *Engine) Visualize() *Scene {
	p := e.prob
	b := p.Bounds
	sc := &Scene{
		Bounds: [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY},
		Effective: [4]float64{
			b.MinX + b.Padding, b.MinY + b.Padding,
			b.MaxX - b.Padding, b.MaxY - b.Padding,
		},
		Initial: e.iterations == 0,
	}

	for _, sg := range p.Segments {
		a, z := p.Point(sg.From), p.Point(sg.To)
		if a == nil || z == nil {
			continue
		}
		s := SceneSegment{
			ID:    sg.ID,
			Layer: sg.Layer,
			X1:    a.X, Y1: a.Y,
			X2: z.X, Y2: z.Y,
			Width: sg.Width,
		}
		if sc.Initial {
			s.Halo = sg.Width/2 + p.SegSeg.MinSeparation
		}
		sc.Segments = append(sc.Segments, s)
	}

	for _, pt := range p.Points {
		s := ScenePoint{
			ID: pt.ID,
			X:  pt.X, Y: pt.Y,
			Radius:  pt.Radius,
			Movable: pt.Movable,
		}
		if sc.Initial {
			s.Halo = pt.Radius + p.PointSeg.MinSeparation
		}
		sc.Points = append(sc.Points, s)
	}

	return sc
}
