package world

import "math"

// systemVision recomputes every team grid: demote, then stamp the current
// sources. Cells never fall back below Explored.
func (w *World) systemVision() {
	for _, g := range w.fog {
		g.BeginTick()
	}
	for _, e := range w.liveEntities() {
		if e.Owner == 0 || e.Vision <= 0 {
			continue
		}
		if g := w.fog[w.teamOf(e.Owner)]; g != nil {
			g.StampDisc(e.X, e.Y, e.Vision)
		}
	}
	if team := w.objectiveGrants(); team != 0 {
		if g := w.fog[team]; g != nil {
			o := w.Entity(w.objective)
			vw, vh := w.cfg.ObjectiveVisionW, w.cfg.ObjectiveVisionH
			g.StampRect(o.X-vw/2, o.Y-vh/2, vw, vh)
		}
	}
}

func (w *World) IsVisibleTeam(team int, x, y float64) bool {
	g := w.fog[team]
	return g != nil && g.IsVisible(x, y)
}

// IsVisible is the player-facing lookup; players see what their team sees.
func (w *World) IsVisible(player int, x, y float64) bool {
	return w.IsVisibleTeam(w.teamOf(player), x, y)
}

// IsDetected reports whether a completed sensor of the team has (x, y)
// within its square radius. Detection works through fog and is independent
// of vision.
func (w *World) IsDetected(team int, x, y float64) bool {
	r := w.cfg.SensorRadius
	if r <= 0 {
		return false
	}
	for _, e := range w.liveEntities() {
		if !e.Sensor || e.Construction != nil || w.teamOf(e.Owner) != team {
			continue
		}
		if math.Abs(e.X-x) <= r && math.Abs(e.Y-y) <= r {
			return true
		}
	}
	return false
}
