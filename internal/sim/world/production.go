package world

import (
	"time"

	"skirmish.ai/internal/protocol"
)

// train queues one unit on a completed producer building. Cost is paid up
// front; supply is checked against live plus queued units.
func (w *World) train(b *Entity, typeID string) string {
	pr := b.Producer
	if pr == nil || b.Construction != nil {
		return protocol.ErrNoPermission
	}
	allowed := false
	for _, t := range pr.Trains {
		if t == typeID {
			allowed = true
		}
	}
	if !allowed {
		return protocol.ErrBadRequest
	}
	if len(pr.Queue) >= w.cfg.ProductionQueueMax {
		return protocol.ErrAtCap
	}
	def := w.catalogs.Entities.ByID[typeID]
	p := w.player(b.Owner)
	if p == nil || p.Resources < def.Cost {
		return protocol.ErrNoResource
	}
	units, workers := w.queuedSupply(p.ID)
	if classFromCatalog(def.Class) == ClassWorker {
		if p.WorkerSupply+workers+def.Supply > p.WorkerSupplyCap {
			return protocol.ErrSupplyCap
		}
	} else if p.Supply+units+def.Supply > p.SupplyCap {
		return protocol.ErrSupplyCap
	}
	p.Resources -= def.Cost
	w.stats.RecordSpent(w.tick.Load(), def.Cost)
	pr.Queue = append(pr.Queue, typeID)
	return ""
}

// queuedSupply sums the supply of everything waiting in the player's
// production queues.
func (w *World) queuedSupply(playerID int) (units, workers int) {
	for _, e := range w.liveEntities() {
		if e.Owner != playerID || e.Producer == nil {
			continue
		}
		for _, t := range e.Producer.Queue {
			def := w.catalogs.Entities.ByID[t]
			if classFromCatalog(def.Class) == ClassWorker {
				workers += def.Supply
			} else {
				units += def.Supply
			}
		}
	}
	return units, workers
}

func (w *World) stepProduction(b *Entity) {
	pr := b.Producer
	if len(pr.Queue) == 0 {
		pr.Elapsed = 0
		return
	}
	pr.Elapsed += w.cfg.TickDuration()
	typeID := pr.Queue[0]
	def := w.catalogs.Entities.ByID[typeID]
	if pr.Elapsed < time.Duration(def.TimeMs)*time.Millisecond {
		return
	}
	pr.Elapsed = 0
	pr.Queue = pr.Queue[1:]
	x, y := w.spawnPointNear(b, typeID, 0)
	u := w.spawnUnit(typeID, b.Owner, x, y)
	if u == nil {
		return
	}
	if pr.HasRally {
		u.State = StateMoving
		u.DestX, u.DestY = w.clampToMap(u, pr.RallyX, pr.RallyY)
	}
	w.emit(Event{Kind: EventUnitTrained, Source: u.ID, Target: b.ID, Player: b.Owner, X: u.X, Y: u.Y, Text: u.Type})
}

func (w *World) setRally(b *Entity, x, y float64) string {
	if b.Producer == nil {
		return protocol.ErrInvalidTarget
	}
	b.Producer.RallyX = min(max(x, 0), w.cfg.MapWidth)
	b.Producer.RallyY = min(max(y, 0), w.cfg.MapHeight)
	b.Producer.HasRally = true
	return ""
}
