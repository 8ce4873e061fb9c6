package world

import (
	"time"
)

// Step advances the match by one tick with the clock at now. The clock is
// read once; a value behind the previous tick is held at the previous one.
func (w *World) Step(now time.Duration) {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	if now > w.now {
		w.now = now
	}
	w.events = w.events[:0]
	w.kills = w.kills[:0]

	// Apply commands in arrival order.
	cmds := w.queue
	w.queue = nil
	for _, c := range cmds {
		w.applyCommand(c)
	}

	w.systemIncome()
	w.systemRespawns()

	// Entities step in insertion order and may see peers already updated
	// this tick.
	for _, e := range w.entities.all() {
		if e.Alive() {
			w.stepEntity(e)
		}
	}

	w.systemCollision()
	w.systemObjective()
	w.systemVision()
	w.systemSweep()
	w.recountSupply()

	digest := w.stateDigest(nowTick)
	w.lastDigest = digest
	if w.tickLogger != nil {
		var kills []KillRecord
		if len(w.kills) > 0 {
			kills = append(kills, w.kills...)
		}
		_ = w.tickLogger.WriteTick(TickLogEntry{
			Tick:     nowTick,
			NowMs:    w.now.Milliseconds(),
			NowNs:    int64(w.now),
			Commands: len(cmds),
			Cmds:     cmds,
			Entities: w.entities.len(),
			Kills:    kills,
			Stats:    w.stats.Summarize(nowTick),
			Digest:   digest,
		})
	}

	w.sendSnapshots(nowTick)

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)
	w.metrics.Store(MatchMetrics{
		Tick:     nextTick,
		Entities: w.entities.len(),
		Clients:  len(w.clients),
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
		},
		StepMS:           stepMS,
		StatsWindowTicks: w.stats.WindowTicks(),
		StatsWindow:      w.stats.Summarize(nowTick),
		Objective:        w.objectiveState,
	})
}

// StepOnce advances by exactly one nominal tick. It is primarily intended for
// deterministic tests.
func (w *World) StepOnce() (tick uint64, digest string) {
	tick = w.tick.Load()
	w.Step(w.now + w.cfg.TickDuration())
	return tick, w.lastDigest
}
