package world

import "testing"

func TestObjective_CapturePersistsAndContests(t *testing.T) {
	w := newTestWorld(t, nil)
	_, oid, ok := w.Objective()
	if !ok {
		t.Fatalf("no objective")
	}
	o := w.Entity(oid)

	a := mustUnit(t, w, "marine", 1, o.X, o.Y)
	w.StepOnce()
	st, _, _ := w.Objective()
	if st.ControllerTeam != 1 || st.Contested {
		t.Fatalf("after capture: %+v", st)
	}
	if countEvents(w, EventObjectiveCaptured) != 1 {
		t.Fatalf("want a capture event")
	}
	// The objective extends the controller's vision beyond the marine's.
	if !w.IsVisibleTeam(1, o.X-390, o.Y) {
		t.Fatalf("controller lacks objective vision")
	}

	w.DebugSetPos(a.ID, 1000, 1000)
	w.StepOnce()
	if st, _, _ := w.Objective(); st.ControllerTeam != 1 {
		t.Fatalf("control lost on leaving: %+v", st)
	}
	if countEvents(w, EventObjectiveCaptured) != 0 {
		t.Fatalf("recapture event while holding")
	}

	w.DebugSetPos(a.ID, o.X, o.Y)
	mustUnit(t, w, "marine", 2, o.X+30, o.Y)
	w.StepOnce()
	st, _, _ = w.Objective()
	if !st.Contested || st.ControllerTeam != 1 {
		t.Fatalf("contested: %+v", st)
	}
	if w.objectiveGrants() != 0 || w.IsVisibleTeam(1, o.X-390, o.Y) {
		t.Fatalf("contested objective still grants vision")
	}
}

func TestObjective_BuildingsDoNotCapture(t *testing.T) {
	w := newTestWorld(t, nil)
	// A turret just touching the objective footprint.
	mustStructure(t, w, "turret", 2, 14, 15, false)
	w.StepOnce()
	if st, _, _ := w.Objective(); st.ControllerTeam != 0 {
		t.Fatalf("structure captured: %+v", st)
	}
}
