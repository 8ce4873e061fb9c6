package main

import "skirmish.ai/internal/protocol"

// planEvery spaces decisions out so the bot stays well inside the
// per-connection command budget.
const planEvery = 10

// bot runs a fixed opening: workers until the cap, one barracks, then
// marines that attack-move to the map centre in waves.
type bot struct {
	params   protocol.MatchParams
	armySize int

	barracksOrdered bool
}

func cmd(kind string, ids ...uint64) protocol.CmdMsg {
	return protocol.CmdMsg{Type: protocol.TypeCmd, ProtocolVersion: protocol.Version, Kind: kind, IDs: ids}
}

func (b *bot) plan(s *protocol.SnapshotMsg) []protocol.CmdMsg {
	if s.Tick%planEvery != 0 {
		return nil
	}
	var (
		hq, barracks     *protocol.EntityObs
		workers, marines []protocol.EntityObs
	)
	for i := range s.Entities {
		e := &s.Entities[i]
		if e.Owner != s.Player.ID || e.Silhouette {
			continue
		}
		switch e.Type {
		case "hq":
			hq = e
		case "barracks":
			barracks = e
		case "worker":
			workers = append(workers, *e)
		case "marine":
			if !e.Garrisoned {
				marines = append(marines, *e)
			}
		}
	}
	if hq == nil {
		return nil
	}

	var out []protocol.CmdMsg
	res := s.Player.Resources

	if barracks == nil && !b.barracksOrdered && res >= 150 && len(workers) > 0 {
		gx, gy := b.barracksCell(hq)
		c := cmd("build", workers[0].ID)
		c.UnitType, c.GridX, c.GridY = "barracks", gx, gy
		out = append(out, c)
		b.barracksOrdered = true
		res -= 150
	}
	if barracks == nil && b.barracksOrdered && res >= 150 {
		// The site never appeared (blocked or lost); try again.
		b.barracksOrdered = false
	}

	if s.Player.WorkerSupply < s.Player.WorkerSupplyCap && res >= 50 {
		c := cmd("train", hq.ID)
		c.UnitType = "worker"
		out = append(out, c)
		res -= 50
	}
	if barracks != nil && barracks.Progress == 0 && s.Player.Supply < s.Player.SupplyCap && res >= 50 {
		c := cmd("train", barracks.ID)
		c.UnitType = "marine"
		out = append(out, c)
	}

	var idle []uint64
	for _, m := range marines {
		if m.State == "idle" {
			idle = append(idle, m.ID)
		}
	}
	if len(idle) >= b.armySize {
		c := cmd("attackMove", idle...)
		c.X, c.Y = b.params.MapWidth/2, b.params.MapHeight/2
		out = append(out, c)
	}
	return out
}

// barracksCell places the barracks one cell beside the HQ on the side
// facing the map centre.
func (b *bot) barracksCell(hq *protocol.EntityObs) (int, int) {
	cells := b.params.Tiles * b.params.LocalGrid
	cell := 100.0
	if cells > 0 {
		cell = b.params.MapWidth / float64(cells)
	}
	gx := int((float64(hq.Pos[0]) - float64(hq.Size[0])/2) / cell)
	gy := int((float64(hq.Pos[1]) - float64(hq.Size[1])/2) / cell)
	w := int(float64(hq.Size[0]) / cell)
	if float64(hq.Pos[0]) < b.params.MapWidth/2 {
		return gx + w + 1, gy
	}
	return gx - 4, gy
}
