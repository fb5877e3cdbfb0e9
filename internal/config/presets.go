package config

import (
	"sort"

	"github.com/tscircuit/fastforce/internal/problem"
)

// Presets are small built-in problems, mainly for demos and smoke runs.
// Builders return fresh copies because the engine relaxes points in place.
var presets = map[string]func() *problem.Problem{
	"expel":  expelPreset,
	"spring": springPreset,
	"bus":    busPreset,
	"corral": corralPreset,
}

// GetPreset returns a fresh instance of a named preset, or nil.
func GetPreset(name string) *problem.Problem {
	build, ok := presets[name]
	if !ok {
		return nil
	}
	return build()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// expelPreset: a movable point riding on a collapsed segment gets pushed out
// to clearance.
func expelPreset() *problem.Problem {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "anchor", X: 50, Y: 50, Layers: []string{"top"}},
		{ID: "float", X: 50.05, Y: 50, Movable: true, Layers: []string{"top"}},
	}
	p.Segments = []*problem.Segment{
		{ID: "stub", From: "anchor", To: "float", Width: 2, Layer: "top"},
	}
	p.Bounds = problem.Bounds{MaxX: 100, MaxY: 100}
	p.PointSeg = problem.Interaction{Strength: 1, Decay: 0.5, OverlapMultiplier: 5, MinSeparation: 8}
	p.KeepIn = problem.Interaction{Strength: 2, Decay: 1, OverlapMultiplier: 10}
	p.Schedule.StepSize = 0.1
	p.Schedule.EpsilonMove = 0.01
	p.Schedule.MaxMovePerStep = 2
	return p
}

// springPreset: a fixed-length, fixed-orientation link whose free end starts
// outside the bounds; keep-in tension settles it against the constraints.
func springPreset() *problem.Problem {
	p := problem.New()
	p.Points = []*problem.Point{
		{ID: "a", X: 20, Y: 50, Layers: []string{"top"}},
		{ID: "b", X: 110, Y: 55, Movable: true, Layers: []string{"top"}},
	}
	p.Segments = []*problem.Segment{
		{ID: "link", From: "a", To: "b", Width: 1, Layer: "top", FixedLength: true, FixedOrientation: true},
	}
	p.Bounds = problem.Bounds{MaxX: 100, MaxY: 100}
	p.FixedLength = problem.Interaction{Strength: 1}
	p.FixedOrientation = problem.Interaction{Strength: 1}
	p.KeepIn = problem.Interaction{Strength: 1, Decay: 1, OverlapMultiplier: 5}
	return p
}

// busPreset: five overlapping parallel traces spreading out across a channel.
func busPreset() *problem.Problem {
	p := problem.New()
	ids := []string{"t0", "t1", "t2", "t3", "t4"}
	for i, id := range ids {
		y := 50 + float64(i)*0.3
		p.Points = append(p.Points,
			&problem.Point{ID: id + "l", X: 10, Y: y, Movable: true, Layers: []string{"top"}},
			&problem.Point{ID: id + "r", X: 90, Y: y, Movable: true, Layers: []string{"top"}},
		)
		p.Segments = append(p.Segments, &problem.Segment{
			ID: id, From: id + "l", To: id + "r", Width: 1.5, Layer: "top",
		})
	}
	p.Bounds = problem.Bounds{MaxX: 100, MaxY: 100, Padding: 5}
	p.SegSeg = problem.Interaction{Strength: 2, Decay: 0.8, OverlapMultiplier: 6, MinSeparation: 2}
	p.KeepIn = problem.Interaction{Strength: 2, Decay: 1, OverlapMultiplier: 10}
	p.Schedule.MaxMovePerStep = 1
	p.Schedule.Friction = 0.9
	p.Schedule.RelaxationSteps = 100
	return p
}

// corralPreset: loose points herded into the padded region.
func corralPreset() *problem.Problem {
	p := problem.New()
	coords := [][2]float64{{-10, 20}, {115, 40}, {50, -8}, {60, 112}, {50, 50}}
	for i, c := range coords {
		p.Points = append(p.Points, &problem.Point{
			ID: string(rune('a' + i)), X: c[0], Y: c[1],
			Movable: true, Radius: 2, Layers: []string{"top"},
		})
	}
	p.Bounds = problem.Bounds{MaxX: 100, MaxY: 100, Padding: 4}
	p.KeepIn = problem.Interaction{Strength: 2, Decay: 0.5, OverlapMultiplier: 10}
	p.Schedule.MaxMovePerStep = 3
	p.Schedule.EpsilonMove = 0.01
	return p
}
