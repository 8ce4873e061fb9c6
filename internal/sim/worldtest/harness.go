package worldtest

import (
	"encoding/json"
	"testing"

	"skirmish.ai/internal/protocol"
	"skirmish.ai/internal/sim/catalogs"
	world "skirmish.ai/internal/sim/world"
)

// Harness is a small black-box test helper for driving a match via exported APIs:
// - Join() seats a player through the world's join channel semantics
// - Issue()/Step() apply commands and advance one tick via StepOnce()
// - Per-player Out channels carry SNAPSHOT JSON
// - Debug* helpers provide deterministic preconditions
//
// It intentionally avoids touching world internals so tests can live outside the world package.
type Harness struct {
	T    *testing.T
	Cats *catalogs.Catalogs
	W    *world.World

	sessions map[int]*session
}

type session struct {
	PlayerID int
	Out      chan []byte
	last     protocol.SnapshotMsg
}

func NewHarness(t *testing.T, cfg world.Config, cats *catalogs.Catalogs) *Harness {
	t.Helper()
	if cats == nil {
		cats = catalogs.Default()
	}
	w, err := world.New(cfg, cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return &Harness{
		T:        t,
		Cats:     cats,
		W:        w,
		sessions: map[int]*session{},
	}
}

// Join seats a player. seat 0 takes the first free slot.
func (h *Harness) Join(name string, seat int) int {
	h.T.Helper()
	out := make(chan []byte, 4)
	resp := make(chan world.JoinResponse, 1)
	h.W.HandleJoin(world.JoinRequest{Name: name, Seat: seat, Out: out, Resp: resp})
	jr := <-resp
	if jr.Code != "" {
		h.T.Fatalf("join %q: %s", name, jr.Code)
	}
	id := jr.Welcome.PlayerID
	h.sessions[id] = &session{PlayerID: id, Out: out}
	return id
}

// Issue applies a command immediately and fails the test on a rejection.
func (h *Harness) Issue(player int, ids []world.EntityID, kind world.CommandKind, p world.CommandParams) {
	h.T.Helper()
	if code := h.W.IssueCommand(player, ids, kind, p); code != "" {
		h.T.Fatalf("%s by %d: %s", kind, player, code)
	}
}

func (h *Harness) Step() string {
	h.T.Helper()
	_, d := h.W.StepOnce()
	h.drainAll()
	return d
}

func (h *Harness) StepFor(n int) string {
	h.T.Helper()
	d := ""
	for i := 0; i < n; i++ {
		_, d = h.W.StepOnce()
	}
	h.drainAll()
	return d
}

func (h *Harness) LastSnapshot(player int) protocol.SnapshotMsg {
	h.T.Helper()
	s := h.sessions[player]
	if s == nil {
		h.T.Fatalf("player %d not joined", player)
	}
	return s.last
}

// Owned lists the live entities of a player, optionally of one type.
func (h *Harness) Owned(player int, typeID string) []world.EntityID {
	var out []world.EntityID
	for _, s := range h.W.SnapshotEntities() {
		if s.Owner == player && (typeID == "" || s.Type == typeID) {
			out = append(out, s.ID)
		}
	}
	return out
}

func (h *Harness) SpawnUnit(typeID string, owner int, x, y float64) world.EntityID {
	h.T.Helper()
	id := h.W.DebugSpawnUnit(typeID, owner, x, y)
	if id == 0 {
		h.T.Fatalf("DebugSpawnUnit %s returned 0", typeID)
	}
	return id
}

func (h *Harness) drainAll() {
	h.T.Helper()
	for _, s := range h.sessions {
		var last []byte
		for {
			select {
			case b := <-s.Out:
				last = b
				continue
			default:
			}
			break
		}
		if len(last) == 0 {
			continue
		}
		var msg protocol.SnapshotMsg
		if err := json.Unmarshal(last, &msg); err != nil {
			h.T.Fatalf("unmarshal SNAPSHOT: %v", err)
		}
		s.last = msg
	}
}
