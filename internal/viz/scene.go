package viz

import (
	"math"

	"github.com/tscircuit/fastforce/internal/engine"
)

// frame maps world coordinates onto the canvas sub-pixel plane, preserving a
// small margin around the scene bounds.
type frame struct {
	minX, minY   float64
	scaleX       float64
	scaleY       float64
	heightPixels int
}

func newFrame(sc *engine.Scene, c *Canvas) frame {
	minX, minY := sc.Bounds[0], sc.Bounds[1]
	maxX, maxY := sc.Bounds[2], sc.Bounds[3]
	// Degenerate bounds fall back to the extent of the entities.
	if maxX <= minX || maxY <= minY {
		minX, minY = math.Inf(1), math.Inf(1)
		maxX, maxY = math.Inf(-1), math.Inf(-1)
		for _, p := range sc.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		for _, s := range sc.Segments {
			minX = math.Min(minX, math.Min(s.X1, s.X2))
			maxX = math.Max(maxX, math.Max(s.X1, s.X2))
			minY = math.Min(minY, math.Min(s.Y1, s.Y2))
			maxY = math.Max(maxY, math.Max(s.Y1, s.Y2))
		}
		if minX > maxX {
			minX, minY, maxX, maxY = 0, 0, 1, 1
		}
	}
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

	w, h := c.Width*2, c.Height*4
	return frame{
		minX: minX, minY: minY,
		scaleX:       float64(w-1) / spanX,
		scaleY:       float64(h-1) / spanY,
		heightPixels: h,
	}
}

// world maps a world coordinate to sub-pixels, flipping y so +y points up.
func (f frame) world(x, y float64) (int, int) {
	px := int((x - f.minX) * f.scaleX)
	py := f.heightPixels - 1 - int((y-f.minY)*f.scaleY)
	return px, py
}

// Render draws a scene onto a fresh canvas and returns it. Bounds render as
// the outer rectangle, the effective region as an inner one when padding is
// nonzero, segments as lines, points as dots with radius rings and, on the
// initial snapshot, clearance halos.
func Render(sc *engine.Scene, width, height int) *Canvas {
	c := NewCanvas(width, height)
	f := newFrame(sc, c)

	if sc.Bounds[2] > sc.Bounds[0] && sc.Bounds[3] > sc.Bounds[1] {
		x0, y0 := f.world(sc.Bounds[0], sc.Bounds[1])
		x1, y1 := f.world(sc.Bounds[2], sc.Bounds[3])
		c.DrawRect(x0, y0, x1, y1)
		if sc.Effective != sc.Bounds {
			ex0, ey0 := f.world(sc.Effective[0], sc.Effective[1])
			ex1, ey1 := f.world(sc.Effective[2], sc.Effective[3])
			c.DrawRect(ex0, ey0, ex1, ey1)
		}
	}

	for _, s := range sc.Segments {
		x0, y0 := f.world(s.X1, s.Y1)
		x1, y1 := f.world(s.X2, s.Y2)
		c.DrawLine(x0, y0, x1, y1)
		if s.Halo > 0 {
			// Offset parallel lines sketch the keep-out corridor.
			dx, dy := s.X2-s.X1, s.Y2-s.Y1
			l := math.Hypot(dx, dy)
			if l > 0 {
				nx, ny := -dy/l*s.Halo, dx/l*s.Halo
				ax0, ay0 := f.world(s.X1+nx, s.Y1+ny)
				ax1, ay1 := f.world(s.X2+nx, s.Y2+ny)
				bx0, by0 := f.world(s.X1-nx, s.Y1-ny)
				bx1, by1 := f.world(s.X2-nx, s.Y2-ny)
				c.DrawLine(ax0, ay0, ax1, ay1)
				c.DrawLine(bx0, by0, bx1, by1)
			}
		}
	}

	for _, p := range sc.Points {
		px, py := f.world(p.X, p.Y)
		c.Set(px, py)
		if p.Radius > 0 {
			c.DrawCircle(px, py, int(p.Radius*f.scaleX))
		}
		if p.Halo > p.Radius {
			c.DrawCircle(px, py, int(p.Halo*f.scaleX))
		}
	}

	return c
}
