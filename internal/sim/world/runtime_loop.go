package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := w.cfg.TickDuration()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	var pendingJoins []JoinRequest
	var pendingLeaves []int

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case c := <-w.inbox:
			w.Enqueue(c)
		case <-ticker.C:
			for _, id := range pendingLeaves {
				w.handleLeave(id)
			}
			for _, req := range pendingJoins {
				w.HandleJoin(req)
			}
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			w.Step(time.Since(start))
		}
	}
}

func (w *World) Stop() { close(w.stop) }

func (w *World) Inbox() chan<- Command { return w.inbox }

func (w *World) Join() chan<- JoinRequest { return w.join }

func (w *World) Leave() chan<- int { return w.leave }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
