package world

import "fmt"

// systemSweep settles every entity that died this tick exactly once:
// bounty, bookkeeping, reference cleanup, then slot recycling.
func (w *World) systemSweep() {
	var dead []*Entity
	for _, e := range w.entities.all() {
		if !e.Alive() {
			dead = append(dead, e)
		}
	}
	if len(dead) == 0 {
		return
	}
	for _, v := range dead {
		w.settleDeath(v)
	}
	for _, e := range w.liveEntities() {
		w.dropDeadReferences(e)
	}
	for _, v := range dead {
		w.entities.remove(v.ID)
	}
	w.entities.compact()
}

func (w *World) rewardFor(c Class) int {
	switch c {
	case ClassWorker:
		return w.cfg.Rewards.Worker
	case ClassBuilding:
		return w.cfg.Rewards.Building
	case ClassTurret:
		return w.cfg.Rewards.Turret
	case ClassUnit:
		return w.cfg.Rewards.Unit
	default:
		return 0
	}
}

func (w *World) settleDeath(v *Entity) {
	v.dead = true
	v.Health = 0
	tick := w.tick.Load()

	rec := KillRecord{Tick: tick, Victim: v.ID.String(), VictimType: v.Type, VictimOwn: v.Owner}
	if !v.noReward && v.killerOwner != 0 && v.Owner != 0 && !w.allied(v.killerOwner, v.Owner) {
		if p := w.player(v.killerOwner); p != nil {
			amt := w.rewardFor(v.Class)
			p.Resources += amt
			p.KillScore++
			rec.Killer = v.killedBy.String()
			rec.KillerOwn = p.ID
			rec.Reward = amt
			w.stats.RecordKill(tick)
			if amt > 0 {
				w.emit(Event{Kind: EventFloatingText, Source: v.ID, Player: p.ID, X: v.X, Y: v.Y, Amount: float64(amt), Text: fmt.Sprintf("+%d", amt)})
			}
		}
	}
	w.kills = append(w.kills, rec)

	p := w.player(v.Owner)
	if v.Class == ClassWorker {
		w.scheduleRespawn(p)
	}
	if p != nil && v.Construction == nil {
		if def := w.catalogs.Entities.ByID[v.Type]; def.SupplyProvided > 0 {
			p.supplyProvided = max(0, p.supplyProvided-def.SupplyProvided)
			w.refreshSupplyCap(p)
		}
	}
	if v.Garrison != nil && len(v.Garrison.Occupants) > 0 {
		w.unload(v)
	}
	if v.IsGarrisoned() {
		if b := w.entities.get(v.GarrisonedIn); b != nil && b.Garrison != nil {
			b.Garrison.Occupants = removeID(b.Garrison.Occupants, v.ID)
		}
		v.GarrisonedIn = 0
	}
	v.Target = 0
	v.Build = nil
}

// dropDeadReferences clears handles to entities that are gone. Explicit
// attack orders end; roaming orders re-acquire on the next tick.
func (w *World) dropDeadReferences(e *Entity) {
	if e.Target != 0 && w.Entity(e.Target) == nil {
		switch e.State {
		case StateAttacking, StateRepairing:
			e.goIdle()
		default:
			e.Target = 0
		}
	}
	if e.Build != nil && w.Entity(e.Build.Target) == nil {
		e.goIdle()
	}
	if e.Enter != 0 && w.Entity(e.Enter) == nil {
		e.goIdle()
	}
	if e.LastAttacker != 0 && w.Entity(e.LastAttacker) == nil {
		e.LastAttacker = 0
	}
}

func removeID(ids []EntityID, id EntityID) []EntityID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
