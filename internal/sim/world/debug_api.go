package world

import "time"

// ---- Debug/Test Helpers ----
//
// These helpers exist to allow black-box tests in sibling packages (e.g. internal/sim/worldtest)
// to set up deterministic preconditions without reaching into world internals.
//
// They are NOT safe to call concurrently with Run(). Prefer using them only in tests that drive
// the world via Step/StepOnce, from a single goroutine.

// DebugSpawnUnit places a mobile entity at (x, y). It returns 0 for unknown
// or structure types.
func (w *World) DebugSpawnUnit(typeID string, owner int, x, y float64) EntityID {
	if e := w.spawnUnit(typeID, owner, x, y); e != nil {
		return e.ID
	}
	return 0
}

// DebugSpawnStructure places a completed (or unfinished) structure at a
// placement cell without checking placement rules or paying for it.
func (w *World) DebugSpawnStructure(typeID string, owner, gx, gy int, underConstruction bool) EntityID {
	if e := w.spawnStructure(typeID, owner, gx, gy, underConstruction); e != nil {
		return e.ID
	}
	return 0
}

func (w *World) DebugSetPos(id EntityID, x, y float64) bool {
	e := w.Entity(id)
	if e == nil {
		return false
	}
	e.X, e.Y = w.clampToMap(e, x, y)
	e.DestX, e.DestY = e.X, e.Y
	return true
}

func (w *World) DebugSetHealth(id EntityID, hp float64) bool {
	e := w.Entity(id)
	if e == nil || hp <= 0 {
		return false
	}
	e.Health = min(hp, e.MaxHealth)
	return true
}

func (w *World) DebugSetResources(player, amount int) bool {
	p := w.player(player)
	if p == nil {
		return false
	}
	p.Resources = amount
	return true
}

// DebugKill removes an entity as if it had died without a killer.
func (w *World) DebugKill(id EntityID) bool {
	e := w.Entity(id)
	if e == nil {
		return false
	}
	e.Health = 0
	e.dead = true
	return true
}

// DebugClearPlayer removes every entity a player owns, keeping the seat.
func (w *World) DebugClearPlayer(player int) {
	for _, e := range w.liveEntities() {
		if e.Owner == player {
			e.Health = 0
			e.dead = true
			e.noReward = true
		}
	}
	w.systemSweep()
	if p := w.player(player); p != nil {
		p.RespawnAt = nil
	}
	w.recountSupply()
}

// TakeDamage applies one hit to an entity on behalf of from (0 for none) and
// returns the health removed.
func (w *World) TakeDamage(id EntityID, amount float64, from EntityID) float64 {
	v := w.Entity(id)
	if v == nil {
		return 0
	}
	return w.takeDamage(v, amount, w.entities.get(from))
}

// AdvanceTo steps nominal ticks until the clock reaches at least t.
func (w *World) AdvanceTo(t time.Duration) {
	for w.now < t {
		w.StepOnce()
	}
}
