package world

import (
	"testing"
	"time"

	"skirmish.ai/internal/sim/catalogs"
)

// newTestWorld builds a quiet three-player match: players 1 and 3 share team
// 1, player 2 is alone on team 2. No starting workers, no income and no
// worker respawns unless mut turns them back on.
func newTestWorld(t *testing.T, mut func(*Config)) *World {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ID = "test"
	cfg.StartingWorkers = 0
	cfg.IncomeAmount = 0
	cfg.WorkerRespawnDelay = 0
	cfg.Players = []PlayerSetup{
		{ID: 1, Name: "A", Team: 1, HomeGridX: 0, HomeGridY: 0},
		{ID: 2, Name: "B", Team: 2, HomeGridX: 28, HomeGridY: 28},
		{ID: 3, Name: "C", Team: 1, HomeGridX: 28, HomeGridY: 0},
	}
	if mut != nil {
		mut(&cfg)
	}
	w, err := New(cfg, catalogs.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func mustUnit(t *testing.T, w *World, typeID string, owner int, x, y float64) *Entity {
	t.Helper()
	id := w.DebugSpawnUnit(typeID, owner, x, y)
	if id == 0 {
		t.Fatalf("spawn %s for %d failed", typeID, owner)
	}
	return w.Entity(id)
}

func mustStructure(t *testing.T, w *World, typeID string, owner, gx, gy int, underConstruction bool) *Entity {
	t.Helper()
	id := w.DebugSpawnStructure(typeID, owner, gx, gy, underConstruction)
	if id == 0 {
		t.Fatalf("spawn %s for %d at %d,%d failed", typeID, owner, gx, gy)
	}
	return w.Entity(id)
}

func stepN(w *World, n int) {
	for i := 0; i < n; i++ {
		w.StepOnce()
	}
}

func ticksFor(w *World, d time.Duration) int {
	return int(d / w.cfg.TickDuration())
}

func resources(t *testing.T, w *World, player int) int {
	t.Helper()
	st, ok := w.PlayerState(player)
	if !ok {
		t.Fatalf("unknown player %d", player)
	}
	return st.Resources
}

func countEvents(w *World, kind EventKind) int {
	n := 0
	for _, ev := range w.Events() {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func countOwned(w *World, owner int, typeID string) int {
	n := 0
	for _, s := range w.SnapshotEntities() {
		if s.Owner == owner && s.Type == typeID {
			n++
		}
	}
	return n
}
