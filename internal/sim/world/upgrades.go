package world

import "skirmish.ai/internal/protocol"

// purchaseUpgrade buys the next level of an upgrade and re-derives the stats
// of every live entity the player owns.
func (w *World) purchaseUpgrade(playerID int, id string) string {
	p := w.player(playerID)
	if p == nil {
		return protocol.ErrNoPermission
	}
	def, ok := w.catalogs.Upgrades.ByID[id]
	if !ok {
		return protocol.ErrBadRequest
	}
	lvl := p.Level(id)
	if lvl >= def.Cap {
		return protocol.ErrAtCap
	}
	price := def.Price(lvl)
	if p.Resources < price {
		return protocol.ErrNoResource
	}
	p.Resources -= price
	p.Upgrades[id] = lvl + 1
	w.stats.RecordSpent(w.tick.Load(), price)
	for _, e := range w.liveEntities() {
		if e.Owner == playerID {
			w.applyUpgrades(e)
		}
	}
	return ""
}
