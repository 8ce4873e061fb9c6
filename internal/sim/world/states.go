package world

import (
	"skirmish.ai/internal/sim/world/logic/mathx"
)

// stepEntity runs one entity's per-tick update in the fixed order: stats,
// timers, stance, then its state machine.
func (w *World) stepEntity(e *Entity) {
	if !e.initialized {
		w.applyUpgrades(e)
	}
	w.regen(e)
	w.expireShield(e)

	if e.Expires && e.ExpiresAt > 0 {
		if w.now >= e.ExpiresAt {
			e.Health = 0
			e.dead = true
			e.noReward = true
			return
		}
		left := float64(e.ExpiresAt-w.now) / float64(w.cfg.TurretLifetime)
		w.emit(Event{Kind: EventExpirationBar, Source: e.ID, Player: e.Owner, X: e.X, Y: e.Y, Progress: mathx.Clamp01(left)})
	}

	if e.Construction != nil {
		w.stepConstruction(e)
		return
	}
	if e.Siege != nil {
		w.stepSiege(e)
	}
	if e.Producer != nil {
		w.stepProduction(e)
	}
	if e.IsGarrisoned() {
		w.stepGarrisoned(e)
		return
	}
	if e.IsStructure() {
		w.stepDefense(e)
		return
	}
	if !e.IsMobile() {
		return
	}

	switch e.State {
	case StateIdle:
		w.stepIdle(e)
	case StateMoving:
		w.stepMoving(e)
	case StateAttacking:
		w.stepAttacking(e)
	case StateAttackMoving:
		w.stepAttackMoving(e)
	case StateHold:
		w.stepHold(e)
	case StatePatrol:
		w.stepPatrol(e)
	case StateBuilding:
		w.stepBuilder(e)
	case StateRepairing:
		w.stepRepair(e)
	}
}

func (w *World) stepIdle(e *Entity) {
	if e.Siege != nil && !e.Siege.mobile {
		w.stepDefense(e)
		return
	}
	e.Target = 0
	w.stepFlee(e)
}

func (w *World) stepMoving(e *Entity) {
	if !e.CanMove() {
		e.goIdle()
		return
	}
	if e.Enter != 0 {
		w.stepEnter(e)
		return
	}
	if w.moveToward(e, e.DestX, e.DestY) {
		e.goIdle()
	}
}

func (w *World) stepAttacking(e *Entity) {
	t := w.Entity(e.Target)
	if t == nil || !w.hostile(e, t) {
		e.goIdle()
		return
	}
	if !w.handleCombat(e, t) && !e.CanMove() {
		// Static stance: do not chase.
		e.goIdle()
	}
}

func (w *World) stepAttackMoving(e *Entity) {
	if w.engage(e, w.acquireRange(e)) {
		return
	}
	if !e.CanMove() {
		e.goIdle()
		return
	}
	if w.moveToward(e, e.DestX, e.DestY) {
		e.goIdle()
	}
}

func (w *World) stepHold(e *Entity) {
	e.DestX, e.DestY = e.X, e.Y
	if t := w.Entity(e.Target); t != nil {
		if w.handleCombat(e, t) {
			return
		}
		e.Target = 0
	}
	if t := w.findTarget(e, w.acquireRange(e)+e.HalfSize()); t != nil {
		e.Target = t.ID
		w.handleCombat(e, t)
	}
}

func (w *World) stepPatrol(e *Entity) {
	if len(e.Waypoints) == 0 {
		e.goIdle()
		return
	}
	if w.engage(e, w.acquireRange(e)) {
		return
	}
	if !e.CanMove() {
		e.goIdle()
		return
	}
	if e.Waypoint >= len(e.Waypoints) {
		e.Waypoint = 0
	}
	wp := e.Waypoints[e.Waypoint]
	e.DestX, e.DestY = wp.X, wp.Y
	w.moveToward(e, wp.X, wp.Y)
	if mathx.Dist(e.X, e.Y, wp.X, wp.Y) <= w.cfg.PatrolTolerance {
		e.Waypoint = (e.Waypoint + 1) % len(e.Waypoints)
	}
}

// engage fights the current target while it stays within radius, or
// acquires a new one. It reports whether the entity spent its tick fighting.
func (w *World) engage(e *Entity, radius float64) bool {
	if !e.IsCombatant() {
		return false
	}
	if t := w.Entity(e.Target); t != nil && w.hostile(e, t) {
		if mathx.Dist(e.X, e.Y, t.X, t.Y) <= radius+e.HalfSize()+t.HalfSize() {
			w.handleCombat(e, t)
			return true
		}
	}
	e.Target = 0
	t := w.findTarget(e, radius+e.HalfSize())
	if t == nil {
		return false
	}
	e.Target = t.ID
	w.handleCombat(e, t)
	return true
}

// stepDefense is the behaviour of anything that fights without moving:
// turrets, sieged tanks and garrisoned units.
func (w *World) stepDefense(e *Entity) {
	if !e.IsCombatant() {
		return
	}
	reach := func(t *Entity) bool {
		return mathx.Dist(e.X, e.Y, t.X, t.Y) <= w.attackRange(e)+e.HalfSize()+t.HalfSize()
	}
	t := w.Entity(e.Target)
	if t == nil || !w.hostile(e, t) || !reach(t) {
		e.Target = 0
		t = w.findTarget(e, w.attackRange(e)+e.HalfSize())
		if t == nil {
			return
		}
		e.Target = t.ID
	}
	w.handleCombat(e, t)
}
