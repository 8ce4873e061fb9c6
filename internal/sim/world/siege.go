package world

import "skirmish.ai/internal/sim/world/logic/mathx"

// toggleSiege flips the stance intent. The transform itself eases over
// SiegeTransform in stepSiege.
func (w *World) toggleSiege(e *Entity) bool {
	if e.Siege == nil {
		return false
	}
	e.Siege.Deploy = !e.Siege.Deploy
	e.Target = 0
	if e.Siege.Deploy {
		e.DestX, e.DestY = e.X, e.Y
		if e.State == StateMoving || e.State == StateAttackMoving || e.State == StatePatrol {
			e.goIdle()
		}
	}
	return true
}

func (w *World) stepSiege(e *Entity) {
	s := e.Siege
	step := 1.0
	if w.cfg.SiegeTransform > 0 {
		step = float64(w.cfg.TickDuration()) / float64(w.cfg.SiegeTransform)
	}
	target := 0.0
	if s.Deploy {
		target = 1
	}
	s.Progress = mathx.Approach(s.Progress, target, step)
	s.mobile = s.Progress <= w.cfg.SiegeMoveLock
}
