package world

// systemIncome pays the passive income on its fixed clock interval,
// catching up when a frame spans several intervals.
func (w *World) systemIncome() {
	if w.cfg.IncomeAmount <= 0 || w.cfg.IncomeInterval <= 0 {
		return
	}
	for w.now >= w.nextIncome {
		for _, p := range w.sortedPlayers() {
			p.Resources += w.cfg.IncomeAmount
		}
		w.nextIncome += w.cfg.IncomeInterval
	}
}

// recountSupply rebuilds both supply pools from the live entities.
func (w *World) recountSupply() {
	for _, p := range w.players {
		p.Supply = 0
		p.WorkerSupply = 0
	}
	for _, e := range w.liveEntities() {
		p := w.player(e.Owner)
		if p == nil {
			continue
		}
		switch e.Class {
		case ClassWorker:
			p.WorkerSupply += e.Supply
		case ClassUnit:
			p.Supply += e.Supply
		}
	}
	for _, p := range w.players {
		w.refreshSupplyCap(p)
	}
}

func (w *World) refreshSupplyCap(p *Player) {
	p.SupplyCap = min(w.cfg.SupplyCapMax, w.cfg.SupplyCapBase+p.supplyProvided)
}

func (w *World) scheduleRespawn(p *Player) {
	if p == nil || w.cfg.WorkerRespawnDelay <= 0 {
		return
	}
	p.RespawnAt = append(p.RespawnAt, w.now+w.cfg.WorkerRespawnDelay)
}

// systemRespawns re-enters workers whose respawn deadline has passed. A
// player at the worker cap drops the respawn.
func (w *World) systemRespawns() {
	for _, p := range w.sortedPlayers() {
		for len(p.RespawnAt) > 0 && p.RespawnAt[0] <= w.now {
			p.RespawnAt = p.RespawnAt[1:]
			if p.WorkerSupply >= p.WorkerSupplyCap {
				continue
			}
			x, y := p.HomeX, p.HomeY
			if hq := w.homeStructure(p); hq != nil {
				x, y = w.spawnPointNear(hq, workerType, len(p.RespawnAt))
			}
			u := w.spawnUnit(workerType, p.ID, x, y)
			if u == nil {
				continue
			}
			p.WorkerSupply += u.Supply
			w.emit(Event{Kind: EventUnitTrained, Source: u.ID, Player: p.ID, X: u.X, Y: u.Y, Text: u.Type})
		}
	}
}

// homeStructure is the player's completed HQ closest to its home position.
func (w *World) homeStructure(p *Player) *Entity {
	var best *Entity
	bestD := 0.0
	for _, e := range w.liveEntities() {
		if e.Owner != p.ID || e.Type != hqType || e.Construction != nil {
			continue
		}
		d := (e.X-p.HomeX)*(e.X-p.HomeX) + (e.Y-p.HomeY)*(e.Y-p.HomeY)
		if best == nil || d < bestD {
			best, bestD = e, d
		}
	}
	return best
}
