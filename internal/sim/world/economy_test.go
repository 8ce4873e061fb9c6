package world

import (
	"testing"
	"time"
)

func TestIncome_FixedInterval(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.IncomeAmount = 5 })
	stepN(w, ticksFor(w, time.Second)-1)
	if got := resources(t, w, 1); got != 200 {
		t.Fatalf("paid early: %d", got)
	}
	w.StepOnce()
	if got := resources(t, w, 1); got != 205 {
		t.Fatalf("after one interval: %d", got)
	}
	// A long frame catches up every interval it spans.
	w.Step(3500 * time.Millisecond)
	if got := resources(t, w, 2); got != 215 {
		t.Fatalf("after catch-up: %d", got)
	}
}

func TestRespawn_WorkerReturnsAfterDelay(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.WorkerRespawnDelay = 10 * time.Second })
	wk := mustUnit(t, w, "worker", 1, 1000, 1000)
	w.StepOnce()
	w.DebugKill(wk.ID)
	w.StepOnce()

	st, _ := w.PlayerState(1)
	if st.PendingRespawns != 1 || st.WorkerSupply != 0 {
		t.Fatalf("after death: %+v", st)
	}
	w.AdvanceTo(w.Now() + 10*time.Second - w.cfg.TickDuration())
	if countOwned(w, 1, "worker") != 0 {
		t.Fatalf("respawned early")
	}
	w.StepOnce()
	if countOwned(w, 1, "worker") != 1 {
		t.Fatalf("worker did not respawn")
	}
	if st, _ := w.PlayerState(1); st.PendingRespawns != 0 || st.WorkerSupply != 1 {
		t.Fatalf("after respawn: %+v", st)
	}
}

func TestRespawn_DroppedAtWorkerCap(t *testing.T) {
	w := newTestWorld(t, func(c *Config) {
		c.WorkerRespawnDelay = time.Second
		c.WorkerSupplyCap = 1
	})
	a := mustUnit(t, w, "worker", 1, 1000, 1000)
	mustUnit(t, w, "worker", 1, 1100, 1000)
	w.StepOnce()
	w.DebugKill(a.ID)
	w.StepOnce()
	w.AdvanceTo(w.Now() + 2*time.Second)

	if got := countOwned(w, 1, "worker"); got != 1 {
		t.Fatalf("workers=%d", got)
	}
	if st, _ := w.PlayerState(1); st.PendingRespawns != 0 {
		t.Fatalf("respawn still pending at cap")
	}
}

func TestSupplyCap_FollowsProviders(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.SupplyCapMax = 30 })
	st, _ := w.PlayerState(1)
	if st.SupplyCap != 20 {
		t.Fatalf("base+hq cap=%d", st.SupplyCap)
	}
	d1 := mustStructure(t, w, "supply_depot", 1, 8, 8, false)
	mustStructure(t, w, "supply_depot", 1, 12, 8, false)
	if st, _ := w.PlayerState(1); st.SupplyCap != 30 {
		t.Fatalf("cap above max: %d", st.SupplyCap)
	}
	w.DebugKill(d1.ID)
	w.StepOnce()
	if st, _ := w.PlayerState(1); st.SupplyCap != 28 {
		t.Fatalf("after losing a depot: %d", st.SupplyCap)
	}
	// Unfinished depots provide nothing.
	mustStructure(t, w, "supply_depot", 1, 16, 8, true)
	w.StepOnce()
	if st, _ := w.PlayerState(1); st.SupplyCap != 28 {
		t.Fatalf("unfinished depot counted: %d", st.SupplyCap)
	}
}

func TestTurret_Expires(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.TurretLifetime = 2 * time.Second })
	tu := mustStructure(t, w, "turret", 1, 8, 8, false)
	w.StepOnce()
	if countEvents(w, EventExpirationBar) != 1 {
		t.Fatalf("no expiration bar")
	}
	w.AdvanceTo(w.Now() + 2*time.Second)
	if w.Entity(tu.ID) != nil {
		t.Fatalf("turret outlived its lifetime")
	}
	if st, _ := w.PlayerState(2); st.Resources != 200 {
		t.Fatalf("expiry paid a bounty")
	}
}
