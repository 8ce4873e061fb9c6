package world

import "time"

// EntitySnapshot is the read-only per-entity view handed to the renderer.
// A silhouette carries only identity and geometry.
type EntitySnapshot struct {
	ID     EntityID
	Type   string
	Class  Class
	Owner  int
	Team   int
	X, Y   float64
	W, H   float64
	Facing float64

	Health    float64
	MaxHealth float64
	State     State
	Target    EntityID

	UnderConstruction bool
	Progress          float64

	Siege         SiegeMode
	SiegeProgress float64

	Garrisoned bool
	Occupants  int
	QueueLen   int
	ExpiresIn  time.Duration

	Silhouette bool
}

func (w *World) snapshotOf(e *Entity) EntitySnapshot {
	s := EntitySnapshot{
		ID:         e.ID,
		Type:       e.Type,
		Class:      e.Class,
		Owner:      e.Owner,
		Team:       w.teamOf(e.Owner),
		X:          e.X,
		Y:          e.Y,
		W:          e.W,
		H:          e.H,
		Facing:     e.Facing,
		Health:     e.Health,
		MaxHealth:  e.MaxHealth,
		State:      e.State,
		Target:     e.Target,
		Garrisoned: e.IsGarrisoned(),
	}
	if c := e.Construction; c != nil {
		s.UnderConstruction = true
		s.Progress = c.Progress
	}
	if e.Siege != nil {
		s.Siege = e.Siege.Mode()
		s.SiegeProgress = e.Siege.Progress
	}
	if e.Garrison != nil {
		s.Occupants = len(e.Garrison.Occupants)
	}
	if e.Producer != nil {
		s.QueueLen = len(e.Producer.Queue)
	}
	if e.ExpiresAt > 0 {
		s.ExpiresIn = max(0, e.ExpiresAt-w.now)
	}
	return s
}

// SnapshotEntities returns every live entity in update order.
func (w *World) SnapshotEntities() []EntitySnapshot {
	live := w.liveEntities()
	out := make([]EntitySnapshot, 0, len(live))
	for _, e := range live {
		out = append(out, w.snapshotOf(e))
	}
	return out
}

// SnapshotForTeam filters the world through a team's fog: friendly and
// neutral entities in full, enemies in visible cells in full, enemies only
// detected by a sensor as silhouettes. Enemies inside bunkers are hidden.
func (w *World) SnapshotForTeam(team int) []EntitySnapshot {
	var out []EntitySnapshot
	for _, e := range w.liveEntities() {
		et := w.teamOf(e.Owner)
		switch {
		case e.Owner == 0 || et == team:
			out = append(out, w.snapshotOf(e))
		case e.IsGarrisoned():
		case w.IsVisibleTeam(team, e.X, e.Y):
			out = append(out, w.snapshotOf(e))
		case w.IsDetected(team, e.X, e.Y):
			out = append(out, EntitySnapshot{
				ID:         e.ID,
				Class:      e.Class,
				Owner:      e.Owner,
				Team:       et,
				X:          e.X,
				Y:          e.Y,
				W:          e.W,
				H:          e.H,
				Silhouette: true,
			})
		}
	}
	return out
}
