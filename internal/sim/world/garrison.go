package world

import "skirmish.ai/internal/protocol"

// orderGarrison sends a unit to an owned, completed bunker with room.
func (w *World) orderGarrison(e, b *Entity) string {
	if !e.CanGarrison() || e.IsGarrisoned() {
		return protocol.ErrNoPermission
	}
	if b.Garrison == nil || b.Construction != nil || b.Owner != e.Owner {
		return protocol.ErrInvalidTarget
	}
	if len(b.Garrison.Occupants) >= b.Garrison.Capacity {
		return protocol.ErrAtCap
	}
	e.clearOrders()
	e.State = StateMoving
	e.Enter = b.ID
	e.DestX, e.DestY = b.X, b.Y
	return ""
}

func (w *World) stepEnter(e *Entity) {
	b := w.Entity(e.Enter)
	if b == nil || b.Garrison == nil || len(b.Garrison.Occupants) >= b.Garrison.Capacity {
		e.goIdle()
		return
	}
	if distToRect(b.Bounds(), e.X, e.Y) > e.HalfSize()+w.cfg.ArriveTolerance+1 {
		w.moveToward(e, b.X, b.Y)
		return
	}
	e.goIdle()
	b.Garrison.Occupants = append(b.Garrison.Occupants, e.ID)
	e.GarrisonedIn = b.ID
	e.X, e.Y = b.X, b.Y
	e.DestX, e.DestY = b.X, b.Y
}

// stepGarrisoned keeps an occupant on its bunker and lets it shoot out.
func (w *World) stepGarrisoned(e *Entity) {
	b := w.Entity(e.GarrisonedIn)
	if b == nil {
		e.GarrisonedIn = 0
		return
	}
	e.X, e.Y = b.X, b.Y
	w.stepDefense(e)
}

// unload ejects every occupant around the bunker.
func (w *World) unload(b *Entity) string {
	if b.Garrison == nil {
		return protocol.ErrInvalidTarget
	}
	for i, id := range b.Garrison.Occupants {
		u := w.entities.get(id)
		if !u.Alive() {
			continue
		}
		u.X, u.Y = w.spawnPointNear(b, u.Type, i)
		u.GarrisonedIn = 0
		u.goIdle()
	}
	b.Garrison.Occupants = nil
	return ""
}
