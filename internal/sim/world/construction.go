package world

import (
	"math"
	"time"

	"skirmish.ai/internal/protocol"
	"skirmish.ai/internal/sim/world/logic/mathx"
	"skirmish.ai/internal/sim/world/logic/placement"
	"skirmish.ai/internal/sim/world/logic/steering"
)

// constructionStartHealth is the share of max health a fresh construction
// site starts with; the rest is gained with progress.
const constructionStartHealth = 0.1

// IsValidPlacement reports whether a structure of typeID fits with its
// top-left footprint cell at (gx, gy).
func (w *World) IsValidPlacement(gx, gy int, typeID string) bool {
	return w.checkPlacement(gx, gy, typeID) == placement.OK
}

func (w *World) checkPlacement(gx, gy int, typeID string) placement.Result {
	def, ok := w.catalogs.Entities.ByID[typeID]
	if !ok || !def.IsStructure() {
		return placement.OutOfBounds
	}
	return w.grid.Check(gx, gy, def.Footprint[0], def.Footprint[1], w.occupied(nil))
}

// occupied lists the footprints of live structures and static map features.
func (w *World) occupied(except *Entity) []Rect {
	out := append([]Rect(nil), w.cfg.Obstacles...)
	for _, e := range w.liveEntities() {
		if e != except && e.IsStructure() {
			out = append(out, e.Bounds())
		}
	}
	return out
}

// startBuild is the worker side of the build command: pay, place the site
// and walk to it.
func (w *World) startBuild(e *Entity, typeID string, gx, gy int) string {
	if !e.CanBuild || e.IsGarrisoned() {
		return protocol.ErrNoPermission
	}
	def, ok := w.catalogs.Entities.ByID[typeID]
	if !ok || !def.Buildable {
		return protocol.ErrBadRequest
	}
	p := w.player(e.Owner)
	if p == nil || p.Resources < def.Cost {
		return protocol.ErrNoResource
	}
	if !w.IsValidPlacement(gx, gy, typeID) {
		return protocol.ErrBlocked
	}
	b := w.spawnStructure(typeID, e.Owner, gx, gy, true)
	if b == nil {
		return protocol.ErrInternal
	}
	p.Resources -= def.Cost
	w.stats.RecordSpent(w.tick.Load(), def.Cost)
	w.assignBuilder(e, b)
	return ""
}

func (w *World) assignBuilder(e, b *Entity) {
	e.clearOrders()
	e.State = StateBuilding
	e.Build = &BuildOrder{Target: b.ID, Type: b.Type, Corner: -1}
	w.pickAnchor(e, b)
}

func (w *World) anchorBlocked(b *Entity, corner int) bool {
	p := b.Construction.Corners[corner]
	if p.X < 0 || p.Y < 0 || p.X > w.cfg.MapWidth || p.Y > w.cfg.MapHeight {
		return true
	}
	for _, r := range w.occupied(b) {
		if r.Contains(p.X, p.Y) {
			return true
		}
	}
	return false
}

// pickAnchor routes the worker to the nearest free corner of the site, or to
// the footprint centre when every corner is blocked.
func (w *World) pickAnchor(e, b *Entity) {
	o := e.Build
	o.Corner = -1
	o.AtX, o.AtY = b.X, b.Y
	best := math.Inf(1)
	for i, p := range b.Construction.Corners {
		if w.anchorBlocked(b, i) {
			continue
		}
		if d := mathx.DistSq(e.X, e.Y, p.X, p.Y); d < best {
			best = d
			o.Corner = i
			o.AtX, o.AtY = p.X, p.Y
		}
	}
	o.Stationed = false
}

func (w *World) stepBuilder(e *Entity) {
	o := e.Build
	if o == nil {
		e.goIdle()
		return
	}
	b := w.Entity(o.Target)
	if b == nil || b.Construction == nil || b.Type != o.Type {
		e.goIdle()
		return
	}
	if o.Corner < 0 || w.anchorBlocked(b, o.Corner) {
		w.pickAnchor(e, b)
	}
	slack := w.cfg.ArriveTolerance
	if o.Stationed {
		// Collision may nudge a stationed worker; stay on the job.
		slack = math.Max(slack, e.W)
	}
	if mathx.Dist(e.X, e.Y, o.AtX, o.AtY) <= slack {
		o.Stationed = true
		e.Facing = steering.Facing(e.Facing, b.X-e.X, b.Y-e.Y)
		return
	}
	o.Stationed = false
	if w.moveToward(e, o.AtX, o.AtY) {
		o.Stationed = true
	}
}

// builders returns the workers assigned to the site (same target and type).
func (w *World) builders(b *Entity, stationedOnly bool) []*Entity {
	var out []*Entity
	for _, e := range w.liveEntities() {
		if e.Build == nil || e.Build.Target != b.ID || e.Build.Type != b.Type {
			continue
		}
		if stationedOnly && !e.Build.Stationed {
			continue
		}
		out = append(out, e)
	}
	return out
}

// buildRate is the progress added per tick by n stationed workers.
func (w *World) buildRate(typeID string, n int) float64 {
	if n <= 0 {
		return 0
	}
	base := 1.0
	if def, ok := w.catalogs.Entities.ByID[typeID]; ok && def.TimeMs > 0 {
		base = float64(w.cfg.TickDuration()) / float64(time.Duration(def.TimeMs)*time.Millisecond)
	}
	return base * (1 + w.cfg.BuildSpeedPerExtraWorker*float64(n-1))
}

func (w *World) stepConstruction(b *Entity) {
	c := b.Construction
	if n := len(w.builders(b, true)); n > 0 {
		prev := c.Progress
		c.Progress = math.Min(1, prev+w.buildRate(b.Type, n))
		b.heal(b.MaxHealth * (1 - constructionStartHealth) * (c.Progress - prev))
	}
	w.emit(Event{Kind: EventConstructionBar, Source: b.ID, Player: b.Owner, X: b.X, Y: b.Y, Progress: c.Progress})
	if c.Progress >= 1 {
		w.completeConstruction(b)
	}
}

// completeConstruction runs exactly once per site: the Construction record is
// dropped before anything else so no second finalisation can happen.
func (w *World) completeConstruction(b *Entity) {
	b.Construction = nil
	w.onStructureComplete(b)
	for _, e := range w.builders(b, false) {
		e.goIdle()
	}
	w.stats.RecordBuildingComplete(w.tick.Load())
	w.emit(Event{Kind: EventConstructionComplete, Source: b.ID, Player: b.Owner, X: b.X, Y: b.Y, Text: b.Type})
}

// onStructureComplete applies the bonuses deferred until a structure stands.
func (w *World) onStructureComplete(b *Entity) {
	def := w.catalogs.Entities.ByID[b.Type]
	if p := w.player(b.Owner); p != nil && def.SupplyProvided > 0 {
		p.supplyProvided += def.SupplyProvided
		w.refreshSupplyCap(p)
	}
	if b.Expires && w.cfg.TurretLifetime > 0 {
		b.ExpiresAt = w.now + w.cfg.TurretLifetime
	}
	if pr := b.Producer; pr != nil && !pr.HasRally && len(pr.Trains) > 0 {
		pr.RallyX, pr.RallyY = w.spawnPointNear(b, pr.Trains[0], 0)
	}
}

// stepRepair heals an owned or allied building, paying per HP restored. An
// unfinished building is joined as a builder instead.
func (w *World) stepRepair(e *Entity) {
	b := w.Entity(e.Target)
	if b == nil || !b.IsBuilding() || !w.allied(e.Owner, b.Owner) {
		e.goIdle()
		return
	}
	if b.Construction != nil {
		w.assignBuilder(e, b)
		return
	}
	if b.Health >= b.MaxHealth {
		e.goIdle()
		return
	}
	if distToRect(b.Bounds(), e.X, e.Y) > e.HalfSize()+w.cfg.ArriveTolerance+1 {
		w.moveToward(e, b.X, b.Y)
		return
	}
	hp := math.Min(w.cfg.RepairHPPerSec*w.cfg.TickDuration().Seconds(), b.MaxHealth-b.Health)
	e.repairDebt += hp * w.cfg.RepairCostPerHP
	if cost := int(e.repairDebt); cost > 0 {
		p := w.player(e.Owner)
		if p == nil || p.Resources < cost {
			e.goIdle()
			return
		}
		p.Resources -= cost
		e.repairDebt -= float64(cost)
		w.stats.RecordSpent(w.tick.Load(), cost)
	}
	b.heal(hp)
}

// cancelBuild stops a worker's build order, or tears down an unfinished
// building with a partial refund.
func (w *World) cancelBuild(e *Entity) string {
	if e.Build != nil {
		e.goIdle()
		return ""
	}
	if e.Construction == nil || !e.IsBuilding() {
		return protocol.ErrInvalidTarget
	}
	def := w.catalogs.Entities.ByID[e.Type]
	if p := w.player(e.Owner); p != nil {
		p.Resources += def.Cost * w.cfg.CancelRefundPct / 100
	}
	for _, b := range w.builders(e, false) {
		b.goIdle()
	}
	e.Health = 0
	e.dead = true
	e.noReward = true
	return ""
}

func distToRect(r Rect, x, y float64) float64 {
	dx := math.Max(math.Max(r.X-x, 0), x-(r.X+r.W))
	dy := math.Max(math.Max(r.Y-y, 0), y-(r.Y+r.H))
	return math.Hypot(dx, dy)
}
