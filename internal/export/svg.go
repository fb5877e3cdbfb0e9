// Package export writes relaxation scenes as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/tscircuit/fastforce/internal/engine"
)

const (
	backgroundFill = "#0a0a0a"
	boundsStroke   = "#444466"
	segmentStroke  = "#00ff88"
	haloStroke     = "#225544"
	pointFill      = "#00ccff"
	fixedPointFill = "#888899"
)

// SceneToSVG renders a scene into an SVG document of the given pixel size.
// World coordinates are fitted to the viewport with a 5% margin; y is flipped
// so +y points up.
func SceneToSVG(sc *engine.Scene, width, height int) string {
	minX, minY, maxX, maxY := sceneExtent(sc)
	spanX, spanY := maxX-minX, maxY-minY
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}
	minX -= spanX * 0.05
	minY -= spanY * 0.05
	spanX *= 1.1
	spanY *= 1.1

	sx := float64(width) / spanX
	sy := float64(height) / spanY
	tx := func(x float64) float64 { return (x - minX) * sx }
	ty := func(y float64) float64 { return float64(height) - (y-minY)*sy }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, backgroundFill)

	if sc.Bounds[2] > sc.Bounds[0] && sc.Bounds[3] > sc.Bounds[1] {
		writeRect(&sb, tx(sc.Bounds[0]), ty(sc.Bounds[3]),
			(sc.Bounds[2]-sc.Bounds[0])*sx, (sc.Bounds[3]-sc.Bounds[1])*sy, "")
		if sc.Effective != sc.Bounds {
			writeRect(&sb, tx(sc.Effective[0]), ty(sc.Effective[3]),
				(sc.Effective[2]-sc.Effective[0])*sx, (sc.Effective[3]-sc.Effective[1])*sy,
				` stroke-dasharray="6 4"`)
		}
	}

	for _, s := range sc.Segments {
		if s.Halo > 0 {
			fmt.Fprintf(&sb,
				`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f" stroke-linecap="round" opacity="0.5"/>`+"\n",
				tx(s.X1), ty(s.Y1), tx(s.X2), ty(s.Y2), haloStroke, 2*s.Halo*sx)
		}
		w := s.Width * sx
		if w < 1 {
			w = 1
		}
		fmt.Fprintf(&sb,
			`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f" stroke-linecap="round"/>`+"\n",
			tx(s.X1), ty(s.Y1), tx(s.X2), ty(s.Y2), segmentStroke, w)
	}

	for _, p := range sc.Points {
		fill := pointFill
		if !p.Movable {
			fill = fixedPointFill
		}
		if p.Halo > p.Radius {
			fmt.Fprintf(&sb,
				`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-dasharray="3 3"/>`+"\n",
				tx(p.X), ty(p.Y), p.Halo*sx, haloStroke)
		}
		r := p.Radius * sx
		if r < 2 {
			r = 2
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n",
			tx(p.X), ty(p.Y), r, fill)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func writeRect(sb *strings.Builder, x, y, w, h float64, extra string) {
	fmt.Fprintf(sb,
		`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="%s"%s/>`+"\n",
		x, y, w, h, boundsStroke, extra)
}

func sceneExtent(sc *engine.Scene) (minX, minY, maxX, maxY float64) {
	if sc.Bounds[2] > sc.Bounds[0] && sc.Bounds[3] > sc.Bounds[1] {
		return sc.Bounds[0], sc.Bounds[1], sc.Bounds[2], sc.Bounds[3]
	}
	first := true
	grow := func(x, y float64) {
		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false
			return
		}
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	for _, p := range sc.Points {
		grow(p.X, p.Y)
	}
	for _, s := range sc.Segments {
		grow(s.X1, s.Y1)
		grow(s.X2, s.Y2)
	}
	if first {
		return 0, 0, 1, 1
	}
	return minX, minY, maxX, maxY
}
