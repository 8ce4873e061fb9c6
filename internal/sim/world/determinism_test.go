package world

import (
	"testing"

	"skirmish.ai/internal/sim/catalogs"
)

func TestDeterminism_SameCommandsSameDigest(t *testing.T) {
	cfg := DefaultConfig()
	w1, err := New(cfg, catalogs.Default())
	if err != nil {
		t.Fatalf("world1: %v", err)
	}
	w2, err := New(cfg, catalogs.Default())
	if err != nil {
		t.Fatalf("world2: %v", err)
	}

	workers := func(w *World, player int) []EntityID {
		var out []EntityID
		for _, s := range w.SnapshotEntities() {
			if s.Owner == player && s.Class == ClassWorker {
				out = append(out, s.ID)
			}
		}
		return out
	}

	for i := 0; i < 200; i++ {
		if i == 0 {
			for _, w := range []*World{w1, w2} {
				ids := workers(w, 1)
				w.Enqueue(Command{Player: 1, IDs: ids[:1], Kind: CmdBuild, Params: CommandParams{Type: "supply_depot", GridX: 8, GridY: 0}})
				w.Enqueue(Command{Player: 1, IDs: ids[1:], Kind: CmdMove, Params: CommandParams{X: 1600, Y: 1600}})
				w.Enqueue(Command{Player: 5, IDs: workers(w, 5), Kind: CmdMove, Params: CommandParams{X: 1600, Y: 1600}})
			}
		}
		t1, d1 := w1.StepOnce()
		t2, d2 := w2.StepOnce()
		if t1 != t2 || d1 != d2 {
			t.Fatalf("diverged at tick %d/%d: %s vs %s", t1, t2, d1, d2)
		}
	}
	if w1.Digest() == "" {
		t.Fatalf("empty digest")
	}
}

func TestDigest_ChangesWithState(t *testing.T) {
	w := newTestWorld(t, nil)
	_, d1 := w.StepOnce()
	_, d2 := w.StepOnce()
	if d1 == d2 {
		// The tick is part of the digest.
		t.Fatalf("digest did not include the tick")
	}
	if a, b := w.stateDigest(5), w.stateDigest(5); a != b {
		t.Fatalf("digest not stable: %s vs %s", a, b)
	}
	before := w.stateDigest(5)
	w.DebugSetResources(1, 1)
	if w.stateDigest(5) == before {
		t.Fatalf("digest ignores resources")
	}
}

func TestMetrics_UpdatedPerStep(t *testing.T) {
	w := newTestWorld(t, nil)
	if m := w.Metrics(); m.Tick != 0 {
		t.Fatalf("metrics before step: %+v", m)
	}
	m := mustUnit(t, w, "marine", 1, 1000, 1000)
	w.TakeDamage(m.ID, 10, 0)
	stepN(w, 3)
	got := w.Metrics()
	if got.Tick != 3 || got.Entities != w.entities.len() {
		t.Fatalf("metrics=%+v", got)
	}
	if got.StatsWindow.Damage != 10 {
		t.Fatalf("damage window=%v", got.StatsWindow.Damage)
	}
}
