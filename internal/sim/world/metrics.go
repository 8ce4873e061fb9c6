package world

// MatchMetrics is a thread-safe read-only view of key match runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type MatchMetrics struct {
	Tick uint64 `json:"tick"`

	Entities int `json:"entities"`
	Clients  int `json:"clients"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`

	StatsWindowTicks uint64      `json:"stats_window_ticks"`
	StatsWindow      StatsBucket `json:"stats_window"`

	Objective ObjectiveState `json:"objective"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

func (w *World) Metrics() MatchMetrics {
	if w == nil {
		return MatchMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return MatchMetrics{}
	}
	m, ok := v.(MatchMetrics)
	if !ok {
		return MatchMetrics{}
	}
	return m
}
