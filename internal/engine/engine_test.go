package engine

import (
	"math"
	"testing"

	"github.com/tscircuit/fastforce/internal/problem"
)

func schedule(stepSize, epsilon float64, maxSteps int) problem.Schedule {
	return problem.Schedule{
		MaxSteps:    maxSteps,
		StepSize:    stepSize,
		EpsilonMove: epsilon,
		Friction:    1.0,
	}
}

// degeneratePairProblem is a fixed anchor with a movable point riding almost
// on top of it, joined by a wide segment.
func degeneratePairProblem() *problem.Problem {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "p1", X: 0, Y: 0, Movable: false, Layers: []string{"0"}},
		{ID: "p2", X: 0.05, Y: 0, Movable: true, Layers: []string{"0"}},
	}
	p.Segments = []*problem.Segment{
		{ID: "s1", From: "p1", To: "p2", Width: 2, Layer: "0"},
	}
	p.PointSeg = problem.Interaction{Strength: 1, Decay: 0.5, OverlapMultiplier: 5, MinSeparation: 10}
	p.Schedule = schedule(0.1, 0.01, 300)
	return p
}

func TestDegenerateSegmentExpelsEndpoint(t *testing.T) {
	p := degeneratePairProblem()
	e := New(p)
	e.Solve()

	if p.Points[0].X != 0 || p.Points[0].Y != 0 {
		t.Errorf("fixed point moved to (%v, %v)", p.Points[0].X, p.Points[0].Y)
	}
	if p.Points[1].X <= 5 {
		t.Errorf("movable endpoint at x=%v, want > 5", p.Points[1].X)
	}
	if !e.Solved() {
		t.Error("engine did not report solved")
	}
}

func TestFixedLengthSpring(t *testing.T) {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "p1", X: 0, Y: 0, Movable: false, Layers: []string{"0"}},
		{ID: "p2", X: 20, Y: 0, Movable: true, Layers: []string{"0"}},
	}
	p.Segments = []*problem.Segment{
		{ID: "s1", From: "p1", To: "p2", Layer: "0", FixedLength: true},
	}
	p.FixedLength = problem.Interaction{Strength: 1}
	p.Schedule = schedule(0.05, 1e-3, 300)

	e := New(p)
	e.ensureInit()
	// The rest pose is shorter than the starting geometry.
	e.c.restLen[0] = 10
	e.Solve()

	got := math.Hypot(p.Points[1].X-p.Points[0].X, p.Points[1].Y-p.Points[0].Y)
	if math.Abs(got-10)/10 > 0.01 {
		t.Errorf("relaxed length = %v, want 10 within 1%%", got)
	}
}

func TestFixedOrientationHinge(t *testing.T) {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "p1", X: 0, Y: 0, Movable: false, Layers: []string{"0"}},
		{ID: "p2", X: 0, Y: 10, Movable: true, Layers: []string{"0"}},
	}
	p.Segments = []*problem.Segment{
		{ID: "s1", From: "p1", To: "p2", Layer: "0", FixedOrientation: true},
	}
	p.FixedOrientation = problem.Interaction{Strength: 1}
	p.Schedule = schedule(0.05, 1e-3, 500)

	e := New(p)
	e.ensureInit()
	// The rest pose points along +x; the starting geometry is rotated 90deg.
	e.c.restAng[0] = 0
	e.Solve()

	ang := math.Atan2(p.Points[1].Y-p.Points[0].Y, p.Points[1].X-p.Points[0].X)
	if math.Abs(ang) > 1e-2 {
		t.Errorf("relaxed angle = %v rad, want ~0", ang)
	}
}

func TestBoundsExpulsion(t *testing.T) {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "p", X: -5, Y: 50, Movable: true, Layers: []string{"0"}},
	}
	p.Bounds = problem.Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	p.KeepIn = problem.Interaction{Strength: 2, Decay: 1, OverlapMultiplier: 10}
	p.Schedule = schedule(0.01, 0.01, 500)
	p.Schedule.MaxMovePerStep = 5

	e := New(p)
	e.Solve()

	if p.Points[0].X < 0 || p.Points[0].X > 100 {
		t.Errorf("point ended at x=%v, want inside [0, 100]", p.Points[0].X)
	}
	if p.Points[0].Y < 0 || p.Points[0].Y > 100 {
		t.Errorf("point ended at y=%v, want inside [0, 100]", p.Points[0].Y)
	}
}

func TestBoundsApproachIsMonotone(t *testing.T) {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "p", X: -5, Y: 50, Movable: true, Layers: []string{"0"}},
	}
	p.Bounds = problem.Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	p.KeepIn = problem.Interaction{Strength: 2, Decay: 1, OverlapMultiplier: 10}
	p.Schedule = schedule(0.001, 1e-4, 200)
	p.Schedule.MaxMovePerStep = 0.5

	e := New(p)
	prev := p.Points[0].X
	for i := 0; i < 200 && !e.Solved(); i++ {
		e.Step()
		if p.Points[0].X < prev-1e-12 {
			t.Fatalf("step %d moved point away from the interior: %v -> %v", i, prev, p.Points[0].X)
		}
		prev = p.Points[0].X
		if prev > 1 {
			break
		}
	}
	if prev <= -5 {
		t.Error("point never moved toward the interior")
	}
}

func crossingLayersProblem() *problem.Problem {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "a1", X: -5, Y: 0, Movable: true, Layers: []string{"0"}},
		{ID: "a2", X: 5, Y: 0, Movable: true, Layers: []string{"0"}},
		{ID: "b1", X: 0, Y: -5, Movable: true, Layers: []string{"1"}},
		{ID: "b2", X: 0, Y: 5, Movable: true, Layers: []string{"1"}},
	}
	p.Segments = []*problem.Segment{
		{ID: "s1", From: "a1", To: "a2", Width: 1, Layer: "0"},
		{ID: "s2", From: "b1", To: "b2", Width: 1, Layer: "1"},
	}
	p.SegSeg = problem.Interaction{Strength: 5, Decay: 0.5, OverlapMultiplier: 5, MinSeparation: 1}
	p.Schedule = schedule(0.05, 1e-3, 50)
	return p
}

func TestLayerIsolation(t *testing.T) {
	p := crossingLayersProblem()
	before := snapshot(p)
	e := New(p)
	for i := 0; i < 10; i++ {
		e.Step()
	}
	if !equalPositions(before, snapshot(p)) {
		t.Error("segments on different layers exchanged forces")
	}
}

func TestRelaxationFade(t *testing.T) {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "p", X: 1, Y: 50, Movable: true, Layers: []string{"0"}},
	}
	p.Bounds = problem.Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	// Slow decay keeps a nearly constant drift force alive for the whole run.
	p.KeepIn = problem.Interaction{Strength: 2, Decay: 0.01, OverlapMultiplier: 1}
	p.Schedule = schedule(0.1, 1e-9, 40)
	p.Schedule.RelaxationSteps = 20

	e := New(p)
	moves := make([]float64, 0, 40)
	for !e.Solved() && e.Iterations() < p.Schedule.MaxSteps {
		e.Step()
		moves = append(moves, e.MaxMove())
	}
	if len(moves) < 40 {
		t.Fatalf("run converged after %d steps; fade not exercised", len(moves))
	}
	mid, final := moves[20], moves[39]
	if final > mid {
		t.Errorf("max move grew through the fade: mid=%v final=%v", mid, final)
	}
}

func TestParallelOverlapDirectionIsDeterministic(t *testing.T) {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "a1", X: 0, Y: 0, Movable: true, Layers: []string{"0"}},
		{ID: "a2", X: 10, Y: 0, Movable: true, Layers: []string{"0"}},
		{ID: "b1", X: 5, Y: 0, Movable: true, Layers: []string{"0"}},
		{ID: "b2", X: 15, Y: 0, Movable: true, Layers: []string{"0"}},
	}
	p.Segments = []*problem.Segment{
		{ID: "s1", From: "a1", To: "a2", Width: 1, Layer: "0"},
		{ID: "s2", From: "b1", To: "b2", Width: 1, Layer: "0"},
	}
	p.SegSeg = problem.Interaction{Strength: 1, Decay: 0.5, OverlapMultiplier: 2, MinSeparation: 1}
	p.Schedule = schedule(0.01, 1e-6, 10)

	e := New(p)
	e.ensureInit()
	e.clearForces()
	e.rebuildGrid()
	e.segSegForces()

	// Coincident closest points resolve by the midpoint rule: segment one's
	// midpoint sits left of segment two's, so it is pushed toward -x. The
	// opposing force lands on segment two's t=0 endpoint.
	if e.c.fx[0] >= 0 || e.c.fx[1] >= 0 {
		t.Errorf("first segment forces = (%v, %v), want both negative", e.c.fx[0], e.c.fx[1])
	}
	if e.c.fx[2] <= 0 || e.c.fx[3] < 0 {
		t.Errorf("second segment forces = (%v, %v), want positive reaction", e.c.fx[2], e.c.fx[3])
	}
	if sum := e.c.fx[0] + e.c.fx[1] + e.c.fx[2] + e.c.fx[3]; math.Abs(sum) > 1e-9 {
		t.Errorf("net x force = %v, want ~0", sum)
	}
}

func TestSegSegForceSymmetry(t *testing.T) {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "a1", X: 0, Y: 0, Movable: true, Layers: []string{"0"}},
		{ID: "a2", X: 10, Y: 1, Movable: true, Layers: []string{"0"}},
		{ID: "b1", X: 2, Y: 3, Movable: true, Layers: []string{"0"}},
		{ID: "b2", X: 9, Y: 2.5, Movable: true, Layers: []string{"0"}},
	}
	p.Segments = []*problem.Segment{
		{ID: "s1", From: "a1", To: "a2", Width: 1, Layer: "0"},
		{ID: "s2", From: "b1", To: "b2", Width: 1, Layer: "0"},
	}
	p.SegSeg = problem.Interaction{Strength: 3, Decay: 0.2, OverlapMultiplier: 4, MinSeparation: 2}
	p.Schedule = schedule(0.01, 1e-6, 10)

	e := New(p)
	e.ensureInit()
	e.clearForces()
	e.rebuildGrid()
	e.segSegForces()

	var sx, sy float64
	for i := range e.c.fx {
		sx += e.c.fx[i]
		sy += e.c.fy[i]
	}
	if math.Abs(sx) > 1e-9 || math.Abs(sy) > 1e-9 {
		t.Errorf("net force = (%v, %v), want ~0", sx, sy)
	}
}

func TestPointSegForceSymmetry(t *testing.T) {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "a", X: 0, Y: 0, Movable: true, Layers: []string{"0"}},
		{ID: "b", X: 10, Y: 0, Movable: true, Layers: []string{"0"}},
		{ID: "q", X: 4, Y: 2, Movable: true, Radius: 1, Layers: []string{"0"}},
	}
	p.Segments = []*problem.Segment{
		{ID: "s1", From: "a", To: "b", Width: 2, Layer: "0"},
	}
	p.PointSeg = problem.Interaction{Strength: 2, Decay: 0.3, OverlapMultiplier: 5, MinSeparation: 1}
	p.Schedule = schedule(0.01, 1e-6, 10)

	e := New(p)
	e.ensureInit()
	e.clearForces()
	e.rebuildGrid()
	e.pointSegForces()

	var sx, sy float64
	for i := range e.c.fx {
		sx += e.c.fx[i]
		sy += e.c.fy[i]
	}
	if math.Abs(sx) > 1e-9 || math.Abs(sy) > 1e-9 {
		t.Errorf("net force = (%v, %v), want ~0", sx, sy)
	}
	if e.c.fy[2] <= 0 {
		t.Errorf("point force y = %v, want positive push away from the segment", e.c.fy[2])
	}
}

func TestEndpointOfHealthySegmentFeelsNoNetForce(t *testing.T) {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "a", X: 0, Y: 0, Movable: true, Layers: []string{"0"}},
		{ID: "b", X: 10, Y: 0, Movable: true, Layers: []string{"0"}},
	}
	p.Segments = []*problem.Segment{
		{ID: "s1", From: "a", To: "b", Width: 2, Layer: "0"},
	}
	p.PointSeg = problem.Interaction{Strength: 1, Decay: 0.5, OverlapMultiplier: 5, MinSeparation: 10}
	p.Schedule = schedule(0.1, 1e-3, 20)

	e := New(p)
	e.Step()
	if e.c.fx[0] != 0 || e.c.fy[0] != 0 || e.c.fx[1] != 0 || e.c.fy[1] != 0 {
		t.Errorf("endpoints of a healthy segment accumulated force: (%v,%v) (%v,%v)",
			e.c.fx[0], e.c.fy[0], e.c.fx[1], e.c.fy[1])
	}
}

func TestMaxMovePerStepClamp(t *testing.T) {
	p := degeneratePairProblem()
	p.Schedule.MaxMovePerStep = 0.5

	e := New(p)
	for i := 0; i < 50 && !e.Solved(); i++ {
		before := snapshot(p)
		e.Step()
		after := snapshot(p)
		for j := range before {
			d := math.Hypot(after[j][0]-before[j][0], after[j][1]-before[j][1])
			if d > 0.5+1e-12 {
				t.Fatalf("step %d moved point %d by %v, clamp is 0.5", i, j, d)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	run := func() [][2]float64 {
		p := crossingLayersProblem()
		// Put the segments on one layer so forces actually flow.
		p.Segments[1].Layer = "0"
		p.Points[2].Layers = []string{"0"}
		p.Points[3].Layers = []string{"0"}
		e := New(p)
		for i := 0; i < 25; i++ {
			e.Step()
		}
		return snapshot(p)
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d diverged between identical runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestStepAfterSolvedIsNoop(t *testing.T) {
	p := degeneratePairProblem()
	e := New(p)
	e.Solve()
	if !e.Solved() {
		t.Fatal("problem did not converge")
	}
	before := snapshot(p)
	iters := e.Iterations()
	e.Step()
	if !equalPositions(before, snapshot(p)) {
		t.Error("step after solved moved points")
	}
	if !e.Solved() || e.Iterations() != iters {
		t.Error("step after solved changed bookkeeping")
	}
}

func TestAllStrengthsZeroLeavesPositions(t *testing.T) {
	p := crossingLayersProblem()
	p.SegSeg = problem.Interaction{}
	before := snapshot(p)
	e := New(p)
	e.Solve()
	if !equalPositions(before, snapshot(p)) {
		t.Error("positions changed with every interaction disabled")
	}
	if !e.Solved() {
		t.Error("zero-interaction problem should converge immediately")
	}
}

func TestUnresolvedEndpointIsInert(t *testing.T) {
	p := degeneratePairProblem()
	p.Segments[0].To = "missing"
	before := snapshot(p)
	e := New(p)
	e.Solve()
	if !equalPositions(before, snapshot(p)) {
		t.Error("inert segment produced forces")
	}
}

func TestMaskAndSetLayerEncodingsAgree(t *testing.T) {
	build := func(extraLayers int) *problem.Problem {
		p := crossingLayersProblem()
		p.Segments[1].Layer = "0"
		p.Points[2].Layers = []string{"0"}
		p.Points[3].Layers = []string{"0"}
		p.Layers = []string{"0", "1"}
		for i := 0; i < extraLayers; i++ {
			p.Layers = append(p.Layers, string(rune('a'+i%26))+string(rune('0'+i/26)))
		}
		return p
	}

	small := build(0)  // bitmask encoding
	large := build(40) // forced into set encoding

	es, el := New(small), New(large)
	es.ensureInit()
	el.ensureInit()
	if es.c.useSets {
		t.Fatal("small layer universe unexpectedly uses sets")
	}
	if !el.c.useSets {
		t.Fatal("large layer universe did not switch to sets")
	}

	for i := 0; i < 25; i++ {
		es.Step()
		el.Step()
	}
	a, b := snapshot(small), snapshot(large)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("encodings diverged at point %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestProgressAndSolvedFlag(t *testing.T) {
	p := degeneratePairProblem()
	e := New(p)
	if e.Progress() != 0 {
		t.Errorf("progress before stepping = %v, want 0", e.Progress())
	}
	e.Solve()
	if !e.Solved() {
		t.Fatal("did not converge")
	}
	if e.Progress() != 1 {
		t.Errorf("progress after convergence = %v, want 1", e.Progress())
	}
	if e.Iterations() == 0 || e.Iterations() > p.Schedule.MaxSteps {
		t.Errorf("iterations = %d", e.Iterations())
	}
}

func TestVisualizeScenes(t *testing.T) {
	p := degeneratePairProblem()
	e := New(p)

	initial := e.Visualize()
	if !initial.Initial {
		t.Error("pre-step scene not marked initial")
	}
	if len(initial.Points) != 2 || len(initial.Segments) != 1 {
		t.Fatalf("scene has %d points, %d segments", len(initial.Points), len(initial.Segments))
	}
	if initial.Points[1].Halo != p.Points[1].Radius+p.PointSeg.MinSeparation {
		t.Errorf("point halo = %v", initial.Points[1].Halo)
	}
	if initial.Segments[0].Halo != 1+p.SegSeg.MinSeparation {
		t.Errorf("segment halo = %v", initial.Segments[0].Halo)
	}

	e.Step()
	current := e.Visualize()
	if current.Initial {
		t.Error("post-step scene still marked initial")
	}
	if current.Points[0].Halo != 0 || current.Segments[0].Halo != 0 {
		t.Error("post-step scene carries halos")
	}
	if current.Points[1].X != p.Points[1].X {
		t.Error("scene does not reflect relaxed positions")
	}
}

func snapshot(p *problem.Problem) [][2]float64 {
	out := make([][2]float64, len(p.Points))
	for i, pt := range p.Points {
		out[i] = [2]float64{pt.X, pt.Y}
	}
	return out
}

func equalPositions(a, b [][2]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
