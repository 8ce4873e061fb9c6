// Package rates holds a tick-based fixed-window event counter.
package rates

// Window admits at most Max events per Ticks-long window. The zero value of
// Ticks or Max admits everything.
type Window struct {
	Ticks uint64
	Max   int

	start uint64
	count int
}

// Allow counts one event at nowTick. When the window is already full it
// reports false and the ticks left until the window reopens.
func (w *Window) Allow(nowTick uint64) (ok bool, cooldownTicks uint64) {
	if w.Ticks == 0 || w.Max <= 0 {
		return true, 0
	}
	if nowTick < w.start || nowTick-w.start >= w.Ticks {
		w.start = nowTick
		w.count = 0
	}
	w.count++
	if w.count <= w.Max {
		return true, 0
	}
	return false, w.start + w.Ticks - nowTick
}
