package world

import (
	"testing"
	"time"

	"skirmish.ai/internal/protocol"
)

func TestTrain_QueueSpawnAndRally(t *testing.T) {
	w := newTestWorld(t, nil)
	b := mustStructure(t, w, "barracks", 1, 8, 8, false)
	train := func() string {
		return w.IssueCommand(1, []EntityID{b.ID}, CmdTrain, CommandParams{Type: "marine"})
	}

	if code := w.IssueCommand(1, []EntityID{b.ID}, CmdSetRally, CommandParams{X: 2000, Y: 950}); code != "" {
		t.Fatalf("rally: %s", code)
	}
	if code := train(); code != "" {
		t.Fatalf("train: %s", code)
	}
	if got := resources(t, w, 1); got != 150 {
		t.Fatalf("resources=%d", got)
	}

	stepN(w, ticksFor(w, 4*time.Second)-1)
	if countOwned(w, 1, "marine") != 0 {
		t.Fatalf("marine finished early")
	}
	w.StepOnce()
	if countOwned(w, 1, "marine") != 1 || countEvents(w, EventUnitTrained) != 1 {
		t.Fatalf("marine not trained on time")
	}
	if st, _ := w.PlayerState(1); st.Supply != 1 {
		t.Fatalf("supply=%d", st.Supply)
	}
	for _, s := range w.SnapshotEntities() {
		if s.Type == "marine" && s.State != StateMoving {
			t.Fatalf("trained marine ignored the rally point: %s", s.State)
		}
	}
}

func TestTrain_Rejections(t *testing.T) {
	w := newTestWorld(t, nil)
	b := mustStructure(t, w, "barracks", 1, 8, 8, false)
	site := mustStructure(t, w, "barracks", 1, 12, 12, true)
	w.DebugSetResources(1, 10_000)
	train := func(id EntityID, typeID string) string {
		return w.IssueCommand(1, []EntityID{id}, CmdTrain, CommandParams{Type: typeID})
	}

	if code := train(site.ID, "marine"); code != protocol.ErrNoPermission {
		t.Fatalf("unfinished producer: %q", code)
	}
	if code := train(b.ID, "worker"); code != protocol.ErrBadRequest {
		t.Fatalf("wrong unit type: %q", code)
	}
	for i := 0; i < w.cfg.ProductionQueueMax; i++ {
		if code := train(b.ID, "marine"); code != "" {
			t.Fatalf("queue slot %d: %q", i, code)
		}
	}
	if code := train(b.ID, "marine"); code != protocol.ErrAtCap {
		t.Fatalf("full queue: %q", code)
	}

	w.DebugSetResources(1, 0)
	b2 := mustStructure(t, w, "barracks", 1, 16, 8, false)
	if code := train(b2.ID, "marine"); code != protocol.ErrNoResource {
		t.Fatalf("poor: %q", code)
	}
}

func TestTrain_SupplyCountsQueuedUnits(t *testing.T) {
	w := newTestWorld(t, nil)
	b := mustStructure(t, w, "barracks", 1, 8, 8, false)
	w.DebugSetResources(1, 10_000)
	st, _ := w.PlayerState(1)
	for i := 0; i < st.SupplyCap-1; i++ {
		mustUnit(t, w, "marine", 1, float64(100+i*40), 2500)
	}
	w.StepOnce()

	if code := w.IssueCommand(1, []EntityID{b.ID}, CmdTrain, CommandParams{Type: "marine"}); code != "" {
		t.Fatalf("last free supply: %q", code)
	}
	if code := w.IssueCommand(1, []EntityID{b.ID}, CmdTrain, CommandParams{Type: "marine"}); code != protocol.ErrSupplyCap {
		t.Fatalf("over cap with a queued unit: %q", code)
	}
}

func TestTrain_WorkersUseTheirOwnPool(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.WorkerSupplyCap = 2 })
	hq := w.homeStructure(w.player(1))
	w.DebugSetResources(1, 10_000)
	train := func() string {
		return w.IssueCommand(1, []EntityID{hq.ID}, CmdTrain, CommandParams{Type: "worker"})
	}
	if train() != "" || train() != "" {
		t.Fatalf("workers within the cap rejected")
	}
	if code := train(); code != protocol.ErrSupplyCap {
		t.Fatalf("third worker: %q", code)
	}
}

func TestTrain_PicksShortestQueue(t *testing.T) {
	w := newTestWorld(t, nil)
	b1 := mustStructure(t, w, "barracks", 1, 8, 8, false)
	b2 := mustStructure(t, w, "barracks", 1, 16, 8, false)
	w.DebugSetResources(1, 10_000)
	for i := 0; i < 3; i++ {
		if code := w.IssueCommand(1, []EntityID{b1.ID, b2.ID}, CmdTrain, CommandParams{Type: "marine"}); code != "" {
			t.Fatalf("train %d: %q", i, code)
		}
	}
	if len(b1.Producer.Queue) != 2 || len(b2.Producer.Queue) != 1 {
		t.Fatalf("queues=%d,%d", len(b1.Producer.Queue), len(b2.Producer.Queue))
	}
}
