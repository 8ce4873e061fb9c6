package world

// ObjectiveState is the control state of the neutral objective.
type ObjectiveState struct {
	ControllerTeam int  `json:"controller_team"`
	Contested      bool `json:"contested"`
}

// Objective returns the objective state and its entity id. ok is false when
// the match has no objective.
func (w *World) Objective() (st ObjectiveState, id EntityID, ok bool) {
	o := w.Entity(w.objective)
	if o == nil {
		return ObjectiveState{}, 0, false
	}
	return w.objectiveState, o.ID, true
}

// systemObjective collects the teams with units standing on the objective.
// A single team takes control, which persists after it leaves; several
// teams contest it.
func (w *World) systemObjective() {
	o := w.Entity(w.objective)
	if o == nil {
		return
	}
	area := o.Bounds()
	present := map[int]bool{}
	for _, e := range w.liveEntities() {
		if !e.IsMobile() || e.IsGarrisoned() || e.Owner == 0 {
			continue
		}
		if e.Bounds().Overlaps(area) {
			present[w.teamOf(e.Owner)] = true
		}
	}
	switch len(present) {
	case 0:
		w.objectiveState.Contested = false
	case 1:
		w.objectiveState.Contested = false
		for team := range present {
			if team != w.objectiveState.ControllerTeam {
				w.objectiveState.ControllerTeam = team
				w.emit(Event{Kind: EventObjectiveCaptured, Source: o.ID, Team: team, X: o.X, Y: o.Y})
			}
		}
	default:
		w.objectiveState.Contested = true
	}
}

// objectiveGrants reports the team currently receiving the objective's
// vision, or 0.
func (w *World) objectiveGrants() int {
	if w.Entity(w.objective) == nil || w.objectiveState.Contested {
		return 0
	}
	return w.objectiveState.ControllerTeam
}
