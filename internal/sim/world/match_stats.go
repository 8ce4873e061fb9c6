package world

type StatsBucket struct {
	Kills              int     `json:"kills"`
	Damage             float64 `json:"damage"`
	BuildingsCompleted int     `json:"buildings_completed"`
	ResourcesSpent     int     `json:"resources_spent"`
}

// MatchStats keeps rolling per-bucket counters over a fixed tick window.
type MatchStats struct {
	bucketTicks uint64
	windowTicks uint64

	buckets []StatsBucket
	curIdx  int
	curBase uint64 // start tick (inclusive) of current bucket
}

func NewMatchStats(bucketTicks, windowTicks uint64) *MatchStats {
	if bucketTicks <= 0 {
		bucketTicks = 100
	}
	if windowTicks < bucketTicks {
		windowTicks = bucketTicks
	}
	n := int(windowTicks / bucketTicks)
	if n < 1 {
		n = 1
	}
	return &MatchStats{
		bucketTicks: bucketTicks,
		windowTicks: uint64(n) * bucketTicks,
		buckets:     make([]StatsBucket, n),
	}
}

func (s *MatchStats) rotate(nowTick uint64) {
	// Move forward until nowTick is in [curBase, curBase+bucketTicks).
	for nowTick >= s.curBase+s.bucketTicks {
		s.curIdx = (s.curIdx + 1) % len(s.buckets)
		s.buckets[s.curIdx] = StatsBucket{}
		s.curBase += s.bucketTicks
	}
}

func (s *MatchStats) RecordKill(nowTick uint64) {
	if s == nil {
		return
	}
	s.rotate(nowTick)
	s.buckets[s.curIdx].Kills++
}

func (s *MatchStats) RecordDamage(nowTick uint64, amount float64) {
	if s == nil || amount <= 0 {
		return
	}
	s.rotate(nowTick)
	s.buckets[s.curIdx].Damage += amount
}

func (s *MatchStats) RecordBuildingComplete(nowTick uint64) {
	if s == nil {
		return
	}
	s.rotate(nowTick)
	s.buckets[s.curIdx].BuildingsCompleted++
}

func (s *MatchStats) RecordSpent(nowTick uint64, amount int) {
	if s == nil || amount <= 0 {
		return
	}
	s.rotate(nowTick)
	s.buckets[s.curIdx].ResourcesSpent += amount
}

func (s *MatchStats) WindowTicks() uint64 {
	if s == nil {
		return 0
	}
	return s.windowTicks
}

func (s *MatchStats) Summarize(nowTick uint64) StatsBucket {
	if s == nil {
		return StatsBucket{}
	}
	s.rotate(nowTick)
	var out StatsBucket
	for _, b := range s.buckets {
		out.Kills += b.Kills
		out.Damage += b.Damage
		out.BuildingsCompleted += b.BuildingsCompleted
		out.ResourcesSpent += b.ResourcesSpent
	}
	return out
}
