package world

import (
	"skirmish.ai/internal/sim/world/logic/mathx"
	"skirmish.ai/internal/sim/world/logic/steering"
)

// moveToward advances e one tick along the straight line to (tx, ty) and
// reports arrival. Entities that cannot move report false.
func (w *World) moveToward(e *Entity, tx, ty float64) bool {
	if !e.CanMove() {
		return false
	}
	step := e.Speed * w.cfg.TickDuration().Seconds()
	nx, ny, dx, dy := steering.Step(e.X, e.Y, tx, ty, step)
	e.Facing = steering.Facing(e.Facing, dx, dy)
	e.X, e.Y = w.clampToMap(e, nx, ny)
	return mathx.Dist(e.X, e.Y, tx, ty) <= w.cfg.ArriveTolerance
}

func (w *World) clampToMap(e *Entity, x, y float64) (float64, float64) {
	return mathx.Clamp(x, e.W/2, w.cfg.MapWidth-e.W/2), mathx.Clamp(y, e.H/2, w.cfg.MapHeight-e.H/2)
}

// clearOrders drops every per-order field. Commands call it before setting
// their own state.
func (e *Entity) clearOrders() {
	e.Target = 0
	e.Build = nil
	e.Waypoints = nil
	e.Waypoint = 0
	e.Enter = 0
	e.fleeing = false
	e.DestX, e.DestY = e.X, e.Y
}

func (e *Entity) goIdle() {
	e.clearOrders()
	e.State = StateIdle
}

// underThreat reports a recent hit by a live hostile that the entity has not
// reacted to yet.
func (w *World) underThreat(e *Entity) *Entity {
	if e.LastAttacker == 0 || e.LastHitAt == e.fleeHit || w.now-e.LastHitAt > w.cfg.FleeMemory {
		return nil
	}
	a := w.Entity(e.LastAttacker)
	if a == nil || !w.hostile(e, a) {
		return nil
	}
	return a
}

func (w *World) stepFlee(e *Entity) {
	if !e.fleeing {
		a := w.underThreat(e)
		if a == nil || !e.CanMove() || w.cfg.FleeDistance <= 0 {
			return
		}
		e.fleeHit = e.LastHitAt
		x, y := steering.Away(e.X, e.Y, a.X, a.Y, w.cfg.FleeDistance)
		e.fleeX, e.fleeY = w.clampToMap(e, x, y)
		e.fleeing = true
	}
	if w.moveToward(e, e.fleeX, e.fleeY) || !e.CanMove() {
		e.fleeing = false
		e.DestX, e.DestY = e.X, e.Y
	}
}
