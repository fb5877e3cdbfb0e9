// Package grid implements the uniform spatial hash used by the relaxation
// broadphase. Segments are inserted by expanded AABB into every covered cell;
// queries walk either a segment's own cells or the 3x3 neighborhood around a
// point and deduplicate candidates with per-query visited marks.
package grid

import "math"

const (
	// Cell coordinates must stay within [-2^25, 2^25-1] for Key to be
	// collision-free.
	keyOffset = int64(1) << 25
	keyStride = int64(1) << 26

	// MinCellSize keeps the hash usable when the derived influence distance
	// collapses toward zero.
	MinCellSize = 1e-3
)

// Key encodes a cell coordinate pair into a single map key. The encoding is
// injective over the documented coordinate range.
func Key(cx, cy int32) int64 {
	return (int64(cx)+keyOffset)*keyStride + (int64(cy) + keyOffset)
}

// Grid is a uniform spatial hash over segment indices. It is rebuilt from
// scratch every step; cell slices are recycled between rebuilds.
type Grid struct {
	cellSize float64
	originX  float64
	originY  float64

	cells map[int64][]int32

	// per-segment covered cell ranges; empty[i] means no cells at all
	minCX, maxCX []int32
	minCY, maxCY []int32
	empty        []bool

	marks []uint32
}

// New returns a grid anchored at the given origin. cellSize is clamped to
// MinCellSize.
func New(originX, originY, cellSize float64) *Grid {
	if cellSize < MinCellSize {
		cellSize = MinCellSize
	}
	return &Grid{
		cellSize: cellSize,
		originX:  originX,
		originY:  originY,
		cells:    make(map[int64][]int32),
	}
}

// CellSize reports the edge length of one cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Reset drops all cell contents and visited marks and resizes the per-segment
// bookkeeping to n segments.
func (g *Grid) Reset(n int) {
	for k, s := range g.cells {
		g.cells[k] = s[:0]
	}
	if cap(g.minCX) < n {
		g.minCX = make([]int32, n)
		g.maxCX = make([]int32, n)
		g.minCY = make([]int32, n)
		g.maxCY = make([]int32, n)
		g.empty = make([]bool, n)
		g.marks = make([]uint32, n)
	} else {
		g.minCX = g.minCX[:n]
		g.maxCX = g.maxCX[:n]
		g.minCY = g.minCY[:n]
		g.maxCY = g.maxCY[:n]
		g.empty = g.empty[:n]
		g.marks = g.marks[:n]
		for i := range g.marks {
			g.marks[i] = 0
			g.empty[i] = false
		}
	}
}

// Cell maps a world coordinate to its cell coordinates.
func (g *Grid) Cell(x, y float64) (int32, int32) {
	return int32(math.Floor((x - g.originX) / g.cellSize)),
		int32(math.Floor((y - g.originY) / g.cellSize))
}

// Insert registers segment i with the given AABB. An inverted box
// (maxX < minX) marks the segment as empty: it occupies no cells and is never
// returned from a query.
func (g *Grid) Insert(i int, minX, minY, maxX, maxY float64) {
	if maxX < minX {
		g.empty[i] = true
		return
	}
	cx0, cy0 := g.Cell(minX, minY)
	cx1, cy1 := g.Cell(maxX, maxY)
	g.minCX[i], g.maxCX[i] = cx0, cx1
	g.minCY[i], g.maxCY[i] = cy0, cy1
	for cx := cx0; cx <= cx1; cx++ {
		for cy := cy0; cy <= cy1; cy++ {
			k := Key(cx, cy)
			g.cells[k] = append(g.cells[k], int32(i))
		}
	}
}

// VisitSegment calls visit once for every distinct segment sharing a cell with
// segment i, in cell-scan order. id must be unique per query within a rebuild;
// it seeds the visited marks. Segment i itself is reported too; callers
// typically filter j > i.
func (g *Grid) VisitSegment(i int, id uint32, visit func(j int32)) {
	if g.empty[i] {
		return
	}
	for cx := g.minCX[i]; cx <= g.maxCX[i]; cx++ {
		for cy := g.minCY[i]; cy <= g.maxCY[i]; cy++ {
			for _, j := range g.cells[Key(cx, cy)] {
				if g.marks[j] == id {
					continue
				}
				g.marks[j] = id
				visit(j)
			}
		}
	}
}

// VisitAround calls visit once for every distinct segment occupying the 3x3
// cell neighborhood of the world position (x, y). id must be unique per query
// within a rebuild.
func (g *Grid) VisitAround(x, y float64, id uint32, visit func(j int32)) {
	cx, cy := g.Cell(x, y)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for _, j := range g.cells[Key(cx+dx, cy+dy)] {
				if g.marks[j] == id {
					continue
				}
				g.marks[j] = id
				visit(j)
			}
		}
	}
}
