package grid

import "testing"

func TestKeyInjective(t *testing.T) {
	coords := []int32{-(1 << 25), -1, 0, 1, 17, 1<<25 - 1}
	seen := make(map[int64][2]int32)
	for _, cx := range coords {
		for _, cy := range coords {
			k := Key(cx, cy)
			if prev, ok := seen[k]; ok {
				t.Fatalf("Key collision: (%d,%d) and (%d,%d) -> %d", prev[0], prev[1], cx, cy, k)
			}
			seen[k] = [2]int32{cx, cy}
		}
	}
}

func TestCellCoordinates(t *testing.T) {
	g := New(-10, -10, 5)
	tests := []struct {
		x, y   float64
		cx, cy int32
	}{
		{-10, -10, 0, 0},
		{-5.001, -10, 0, 0},
		{-5, -10, 1, 0},
		{0, 0, 2, 2},
		{-12, -11, -1, -1},
	}
	for _, tt := range tests {
		cx, cy := g.Cell(tt.x, tt.y)
		if cx != tt.cx || cy != tt.cy {
			t.Errorf("Cell(%v, %v) = (%d, %d), want (%d, %d)", tt.x, tt.y, cx, cy, tt.cx, tt.cy)
		}
	}
}

func TestMinimumCellSize(t *testing.T) {
	g := New(0, 0, 0)
	if g.CellSize() != MinCellSize {
		t.Errorf("cell size = %v, want %v", g.CellSize(), MinCellSize)
	}
}

func collect(g *Grid, i int, id uint32) []int32 {
	var out []int32
	g.VisitSegment(i, id, func(j int32) { out = append(out, j) })
	return out
}

func TestVisitSegmentDedupes(t *testing.T) {
	g := New(0, 0, 1)
	g.Reset(2)
	// Both segments span several cells, so each appears in multiple shared
	// cells; the visited mark must collapse them to one visit.
	g.Insert(0, 0, 0, 3.5, 0.5)
	g.Insert(1, 0, 0, 3.5, 0.5)

	got := collect(g, 0, 1)
	counts := map[int32]int{}
	for _, j := range got {
		counts[j]++
	}
	if counts[0] != 1 || counts[1] != 1 {
		t.Errorf("visit counts = %v, want each candidate exactly once", counts)
	}
}

func TestVisitSegmentSeparateQueries(t *testing.T) {
	g := New(0, 0, 1)
	g.Reset(3)
	g.Insert(0, 0, 0, 1, 1)
	g.Insert(1, 0, 0, 1, 1)
	g.Insert(2, 0, 0, 1, 1)

	// A second query with a distinct id must see candidates already marked by
	// the first query.
	first := collect(g, 0, 1)
	second := collect(g, 1, 2)
	if len(first) != 3 || len(second) != 3 {
		t.Errorf("query results = %d and %d candidates, want 3 and 3", len(first), len(second))
	}
}

func TestEmptySegmentNeverReturned(t *testing.T) {
	g := New(0, 0, 1)
	g.Reset(2)
	g.Insert(0, 0, 0, 2, 2)
	g.Insert(1, 5, 5, 4, 4) // inverted: inert segment

	got := collect(g, 0, 1)
	for _, j := range got {
		if j == 1 {
			t.Error("inert segment appeared in query results")
		}
	}

	// Querying from the inert segment yields nothing.
	if got := collect(g, 1, 2); len(got) != 0 {
		t.Errorf("query from inert segment returned %v", got)
	}
}

func TestVisitAround(t *testing.T) {
	g := New(0, 0, 10)
	g.Reset(2)
	g.Insert(0, 12, 12, 18, 13) // cell (1,1)
	g.Insert(1, 55, 55, 58, 58) // cell (5,5), far away

	var got []int32
	g.VisitAround(9.5, 9.5, 7, func(j int32) { got = append(got, j) }) // cell (0,0), neighbor of (1,1)
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("VisitAround = %v, want [0]", got)
	}

	got = nil
	g.VisitAround(80, 80, 8, func(j int32) { got = append(got, j) })
	if len(got) != 0 {
		t.Errorf("VisitAround far away = %v, want none", got)
	}
}

func TestResetClearsCells(t *testing.T) {
	g := New(0, 0, 1)
	g.Reset(1)
	g.Insert(0, 0, 0, 1, 1)
	g.Reset(1)

	if got := collect(g, 0, 1); len(got) != 0 {
		t.Errorf("after Reset, query returned %v", got)
	}
}
