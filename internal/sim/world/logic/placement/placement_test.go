package placement

import "testing"

func testGrid() Grid { return Grid{Tiles: 8, LocalGrid: 4, CellSize: 100} }

func TestCheck_TileRule(t *testing.T) {
	g := testGrid()
	if got := g.Check(0, 0, 3, 3, nil); got != OK {
		t.Fatalf("3x3 at tile origin: %s", got)
	}
	if got := g.Check(1, 1, 3, 3, nil); got != OK {
		t.Fatalf("3x3 at local offset 1: %s", got)
	}
	if got := g.Check(2, 0, 3, 3, nil); got != StraddlesTile {
		t.Fatalf("3x3 crossing into the next tile: %s", got)
	}
	if got := g.Check(4, 3, 2, 2, nil); got != StraddlesTile {
		t.Fatalf("2x2 crossing rows: %s", got)
	}
	if got := g.Check(4, 4, 4, 4, nil); got != OK {
		t.Fatalf("4x4 filling a tile: %s", got)
	}
}

func TestCheck_Bounds(t *testing.T) {
	g := testGrid()
	if got := g.Check(-1, 0, 1, 1, nil); got != OutOfBounds {
		t.Fatalf("negative: %s", got)
	}
	if got := g.Check(31, 31, 1, 1, nil); got != OK {
		t.Fatalf("last cell: %s", got)
	}
	if got := g.Check(31, 31, 2, 1, nil); got != OutOfBounds {
		t.Fatalf("past the edge: %s", got)
	}
}

func TestCheck_Overlap(t *testing.T) {
	g := testGrid()
	occ := []Rect{g.Footprint(0, 0, 2, 2)}
	if got := g.Check(1, 1, 2, 2, occ); got != Overlaps {
		t.Fatalf("overlapping footprint: %s", got)
	}
	if got := g.Check(2, 0, 2, 2, occ); got != OK {
		t.Fatalf("edge-adjacent footprint: %s", got)
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 10, H: 10}
	if !r.Contains(5, 5) || r.Contains(10, 5) {
		t.Fatalf("Contains mismatch")
	}
	if x, y := r.Center(); x != 5 || y != 5 {
		t.Fatalf("Center=%v,%v", x, y)
	}
}
