package world

import (
	"testing"

	"skirmish.ai/internal/sim/world/fog"
)

func TestVision_DestroyedSourceLeavesExplored(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 1, 2000, 2000)
	g := w.Fog(1)

	if got := g.At(2000, 2000); got != fog.Unexplored {
		t.Fatalf("before any tick: %s", got)
	}
	w.StepOnce()
	if !w.IsVisible(1, 2000, 2000) || !w.IsVisible(3, 2000, 2000) {
		t.Fatalf("marine cell not visible to its team")
	}
	if w.IsVisible(2, 2000, 2000) {
		t.Fatalf("enemy team sees the marine cell")
	}

	w.DebugKill(m.ID)
	w.StepOnce()
	if got := g.At(2000, 2000); got != fog.Explored {
		t.Fatalf("after source died: %s want EXPLORED", got)
	}
	stepN(w, 10)
	if got := g.At(2000, 2000); got != fog.Explored {
		t.Fatalf("explored cell regressed to %s", got)
	}
	if got := g.At(1000, 2900); got != fog.Unexplored {
		t.Fatalf("far cell: %s", got)
	}
}

func TestVision_MovingSourceDemotes(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 1, 2000, 2000)
	w.StepOnce()
	w.DebugSetPos(m.ID, 2000, 1000)
	w.StepOnce()
	if w.IsVisible(1, 2000, 2000) {
		t.Fatalf("old position still visible")
	}
	if !w.Fog(1).IsExplored(2000, 2000) || !w.IsVisible(1, 2000, 1000) {
		t.Fatalf("fog did not follow the source")
	}
}

func findSnap(ss []EntitySnapshot, id EntityID) (EntitySnapshot, bool) {
	for _, s := range ss {
		if s.ID == id {
			return s, true
		}
	}
	return EntitySnapshot{}, false
}

func TestSnapshotForTeam_SensorSilhouette(t *testing.T) {
	w := newTestWorld(t, nil)
	sensor := mustStructure(t, w, "sensor_tower", 1, 8, 8, false)
	far := mustUnit(t, w, "marine", 2, 1300, 850)
	near := mustUnit(t, w, "marine", 2, 1000, 850)
	w.StepOnce()

	ss := w.SnapshotForTeam(1)
	s, ok := findSnap(ss, far.ID)
	if !ok || !s.Silhouette {
		t.Fatalf("detected enemy: ok=%v snap=%+v", ok, s)
	}
	if s.Type != "" || s.Health != 0 {
		t.Fatalf("silhouette leaked details: %+v", s)
	}
	if s, ok := findSnap(ss, near.ID); !ok || s.Silhouette || s.Type != "marine" {
		t.Fatalf("visible enemy: ok=%v snap=%+v", ok, s)
	}
	if _, ok := findSnap(ss, sensor.ID); !ok {
		t.Fatalf("own sensor missing")
	}
	if !w.IsDetected(1, 1300, 850) || w.IsDetected(2, 1300, 850) {
		t.Fatalf("detection is per team")
	}

	w.DebugKill(sensor.ID)
	w.StepOnce()
	if _, ok := findSnap(w.SnapshotForTeam(1), far.ID); ok {
		t.Fatalf("enemy still reported without a sensor")
	}
}

func TestIsDetected_UnfinishedSensor(t *testing.T) {
	w := newTestWorld(t, nil)
	mustStructure(t, w, "sensor_tower", 1, 8, 8, true)
	if w.IsDetected(1, 900, 900) {
		t.Fatalf("unfinished sensor detects")
	}
}
