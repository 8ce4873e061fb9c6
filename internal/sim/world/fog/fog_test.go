package fog

import "testing"

func TestNewGrid_Dimensions(t *testing.T) {
	g := NewGrid(3200, 3200, 50)
	if g.Cols != 64 || g.Rows != 64 {
		t.Fatalf("grid %dx%d", g.Cols, g.Rows)
	}
	if u, e, v := g.Counts(); u != 64*64 || e != 0 || v != 0 {
		t.Fatalf("fresh grid counts u=%d e=%d v=%d", u, e, v)
	}
}

func TestStampDisc_CellCentreInsideRadius(t *testing.T) {
	g := NewGrid(1000, 1000, 50)
	g.StampDisc(500, 500, 100)

	// Cell 10 spans 500..550, centre 525.
	if !g.IsVisible(510, 510) {
		t.Fatalf("cell under the source should be visible")
	}
	// Cell 12 (600..650) has centre 625: 125 away on x, outside r=100.
	if g.IsVisible(610, 510) {
		t.Fatalf("cell whose centre is outside the radius must not be visible")
	}
	// Cell 11 (550..600) centre 575: 75 away, inside.
	if !g.IsVisible(560, 510) {
		t.Fatalf("cell whose centre is inside the radius should be visible")
	}
}

func TestBeginTick_DemotesToExploredNeverUnexplored(t *testing.T) {
	g := NewGrid(500, 500, 50)
	g.StampDisc(100, 100, 60)
	if !g.IsVisible(100, 100) {
		t.Fatalf("expected visible")
	}
	g.BeginTick()
	if got := g.At(100, 100); got != Explored {
		t.Fatalf("after BeginTick got %s, want EXPLORED", got)
	}
	g.BeginTick()
	if got := g.At(100, 100); got != Explored {
		t.Fatalf("explored cell regressed to %s", got)
	}
	if got := g.At(400, 400); got != Unexplored {
		t.Fatalf("untouched cell = %s", got)
	}
}

func TestStampRect(t *testing.T) {
	g := NewGrid(1000, 1000, 100)
	g.StampRect(200, 200, 200, 200)
	if !g.IsVisible(250, 250) || !g.IsVisible(350, 350) {
		t.Fatalf("cells inside the rect should be visible")
	}
	if g.IsVisible(450, 250) || g.IsVisible(150, 250) {
		t.Fatalf("cells outside the rect should stay hidden")
	}
}

func TestAt_OffMap(t *testing.T) {
	g := NewGrid(100, 100, 50)
	g.StampDisc(50, 50, 500)
	if g.At(-1, 10) != Unexplored || g.At(10, 100) != Unexplored {
		t.Fatalf("off-map points must read as unexplored")
	}
	if g.Cell(-1, 0) != Unexplored || g.Cell(1, 1) != Visible {
		t.Fatalf("Cell lookup mismatch")
	}
}
