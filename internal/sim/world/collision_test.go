package world

import (
	"math"
	"testing"
	"time"
)

func TestCollision_SeparatesStackedUnits(t *testing.T) {
	w := newTestWorld(t, nil)
	a := mustUnit(t, w, "marine", 1, 1000, 1000)
	b := mustUnit(t, w, "marine", 1, 1000, 1000)
	w.StepOnce()

	gap := math.Max(math.Abs(a.X-b.X), math.Abs(a.Y-b.Y))
	if gap < a.W-1e-6 {
		t.Fatalf("still overlapping: a=%v,%v b=%v,%v", a.X, a.Y, b.X, b.Y)
	}
}

func TestCollision_StructuresStayPut(t *testing.T) {
	w := newTestWorld(t, nil)
	b := mustStructure(t, w, "barracks", 1, 8, 8, false)
	m := mustUnit(t, w, "marine", 2, 1090, 950)
	bx, by := b.X, b.Y
	w.StepOnce()

	if b.X != bx || b.Y != by {
		t.Fatalf("barracks pushed from %v,%v to %v,%v", bx, by, b.X, b.Y)
	}
	if m.Bounds().Overlaps(b.Bounds()) && m.X-m.W/2 < b.X+b.W/2-0.1 {
		t.Fatalf("marine still inside: x=%v", m.X)
	}
}

func TestCollision_BuildersPassThroughTheirSite(t *testing.T) {
	w := newTestWorld(t, nil)
	site := mustStructure(t, w, "supply_depot", 1, 8, 8, true)
	wk := mustUnit(t, w, "worker", 1, 1095, 950)
	w.IssueCommand(1, []EntityID{wk.ID}, CmdRepair, CommandParams{Target: site.ID})
	x := wk.X
	w.systemCollision()
	if wk.X != x {
		t.Fatalf("builder pushed off its site: %v -> %v", x, wk.X)
	}
}

func TestCollision_ClampsToMap(t *testing.T) {
	w := newTestWorld(t, nil)
	a := mustUnit(t, w, "marine", 1, 1600, 3190)
	b := mustUnit(t, w, "marine", 1, 1600, 3190)
	w.StepOnce()
	for _, e := range []*Entity{a, b} {
		if e.Y+e.H/2 > w.cfg.MapHeight || e.Y-e.H/2 < 0 {
			t.Fatalf("entity off map: y=%v", e.Y)
		}
	}
}

func TestCollision_CrowdKeepsStructureOnFootprint(t *testing.T) {
	w := newTestWorld(t, nil)
	b := mustStructure(t, w, "barracks", 1, 8, 8, false)
	if !w.IsValidPlacement(11, 8, "turret") {
		t.Fatalf("cell beside the barracks should start free")
	}
	bx, by := b.X, b.Y

	var ids []EntityID
	for i := 0; i < 6; i++ {
		ids = append(ids, mustUnit(t, w, "marine", 1, 700+float64(i)*30, 700).ID)
	}
	if code := w.IssueCommand(1, ids, CmdMove, CommandParams{X: bx, Y: by}); code != "" {
		t.Fatalf("move: %s", code)
	}
	stepN(w, ticksFor(w, 5*time.Minute))

	if b.X != bx || b.Y != by {
		t.Fatalf("barracks drifted from %v,%v to %v,%v", bx, by, b.X, b.Y)
	}
	if !w.IsValidPlacement(11, 8, "turret") {
		t.Fatalf("free cell beside the barracks reads as blocked")
	}
}
