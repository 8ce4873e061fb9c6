package world

import (
	"math"

	"skirmish.ai/internal/sim/world/logic/mathx"
	"skirmish.ai/internal/sim/world/logic/steering"
)

// takeDamage applies one hit of raw strength to v and returns the health
// actually removed. from may be nil (no attributable source).
func (w *World) takeDamage(v *Entity, raw float64, from *Entity) float64 {
	if !v.Alive() || v.Invulnerable {
		return 0
	}
	now := w.now
	if v.Owner != 0 && w.player(v.Owner).Level(UpgradeReactiveShield) > 0 && now >= v.ShieldReadyAt {
		v.ShieldBonus = w.cfg.ShieldArmor
		v.ShieldUntil = now + w.cfg.ShieldDuration
		v.ShieldReadyAt = now + w.cfg.ShieldCooldown
	}

	dealt := math.Min(v.EffectiveDamage(raw, now), v.Health)
	v.Health -= dealt
	if from != nil {
		v.LastAttacker = from.ID
		v.LastHitAt = now
	}
	w.stats.RecordDamage(w.tick.Load(), dealt)

	if v.Health <= 0 {
		v.Health = 0
		v.dead = true
		if k := w.identifyKiller(v, from); k != nil {
			v.killedBy = k.ID
			v.killerOwner = k.Owner
		}
		w.emit(Event{Kind: EventExplosion, Source: v.ID, Player: v.Owner, X: v.X, Y: v.Y, Amount: math.Max(v.W, v.H)})
	}
	return dealt
}

// identifyKiller prefers the hitting entity when it was targeting the
// victim, then any other hostile entity targeting it.
func (w *World) identifyKiller(v, from *Entity) *Entity {
	if from != nil && from.Target == v.ID && w.hostile(from, v) {
		return from
	}
	for _, e := range w.liveEntities() {
		if e != v && e.Target == v.ID && w.hostile(e, v) {
			return e
		}
	}
	return nil
}

// handleCombat closes on t or fires at it. It reports whether t is inside
// firing reach.
func (w *World) handleCombat(e, t *Entity) bool {
	if !e.Alive() || !t.Alive() {
		return false
	}
	d := mathx.Dist(e.X, e.Y, t.X, t.Y)
	if d <= w.attackRange(e)+e.HalfSize()+t.HalfSize() {
		e.DestX, e.DestY = e.X, e.Y
		e.Facing = steering.Facing(e.Facing, t.X-e.X, t.Y-e.Y)
		if w.now-e.LastAttack >= e.Cooldown() {
			w.fire(e, t)
		}
		return true
	}
	if e.State != StateHold && e.CanMove() {
		w.moveToward(e, t.X, t.Y)
	}
	return false
}

func (w *World) fire(e, t *Entity) {
	e.Target = t.ID
	e.LastAttack = w.now
	sx, sy := e.X, e.Y
	if e.IsGarrisoned() {
		if b := w.Entity(e.GarrisonedIn); b != nil {
			sx, sy = b.X, b.Y
		}
	}
	dmg := w.attackDamage(e)
	w.emit(Event{Kind: EventAttack, Source: e.ID, Target: t.ID, Player: e.Owner, X: sx, Y: sy, TX: t.X, TY: t.Y, Amount: dmg})
	dealt := w.takeDamage(t, dmg, e)
	if dealt > 0 && t.Alive() {
		w.emit(Event{Kind: EventBurst, Source: e.ID, Target: t.ID, Player: e.Owner, X: t.X, Y: t.Y, Amount: dealt})
	}
}

// findTarget returns the nearest hostile, attackable entity within radius of
// e. Ties keep the earlier entity in update order.
func (w *World) findTarget(e *Entity, radius float64) *Entity {
	var best *Entity
	bestD := math.Inf(1)
	for _, o := range w.liveEntities() {
		if o == e || o.Invulnerable || o.IsGarrisoned() || !w.hostile(e, o) {
			continue
		}
		d := mathx.Dist(e.X, e.Y, o.X, o.Y) - o.HalfSize()
		if d <= radius && d < bestD {
			best, bestD = o, d
		}
	}
	return best
}

// regen heals in whole intervals, catching up after long frames.
func (w *World) regen(e *Entity) {
	if w.cfg.RegenInterval <= 0 {
		return
	}
	for e.LastRegen+w.cfg.RegenInterval <= w.now {
		e.LastRegen += w.cfg.RegenInterval
		if e.Construction == nil {
			e.heal(e.Regen * w.cfg.RegenInterval.Seconds())
		}
	}
}

func (w *World) expireShield(e *Entity) {
	if e.ShieldBonus > 0 && w.now >= e.ShieldUntil {
		e.ShieldBonus = 0
	}
}
