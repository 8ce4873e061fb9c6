package world

import (
	"sort"
	"time"
)

type Team struct {
	ID   int
	Name string
}

type Player struct {
	ID   int
	Name string
	Team int

	Resources       int
	SupplyCap       int
	Supply          int
	WorkerSupplyCap int
	WorkerSupply    int

	Upgrades  map[string]int
	KillScore int

	HomeX, HomeY float64

	// Worker respawn deadlines, oldest first.
	RespawnAt []time.Duration

	// Supply granted by completed structures, before the cap.
	supplyProvided int
}

func (p *Player) Level(upgrade string) int {
	if p == nil {
		return 0
	}
	return p.Upgrades[upgrade]
}

// PlayerState is the read-only view handed to collaborators.
type PlayerState struct {
	ID              int
	Name            string
	Team            int
	Resources       int
	SupplyCap       int
	Supply          int
	WorkerSupplyCap int
	WorkerSupply    int
	Upgrades        map[string]int
	KillScore       int
	PendingRespawns int
}

func (p *Player) state() PlayerState {
	ups := make(map[string]int, len(p.Upgrades))
	for k, v := range p.Upgrades {
		ups[k] = v
	}
	return PlayerState{
		ID:              p.ID,
		Name:            p.Name,
		Team:            p.Team,
		Resources:       p.Resources,
		SupplyCap:       p.SupplyCap,
		Supply:          p.Supply,
		WorkerSupplyCap: p.WorkerSupplyCap,
		WorkerSupply:    p.WorkerSupply,
		Upgrades:        ups,
		KillScore:       p.KillScore,
		PendingRespawns: len(p.RespawnAt),
	}
}

func (w *World) player(id int) *Player { return w.players[id] }

func (w *World) teamOf(playerID int) int {
	if p := w.players[playerID]; p != nil {
		return p.Team
	}
	return 0
}

// allied reports whether two owners share a team. Neutral (owner 0) is
// allied with nobody.
func (w *World) allied(a, b int) bool {
	if a == 0 || b == 0 {
		return false
	}
	if a == b {
		return true
	}
	ta, tb := w.teamOf(a), w.teamOf(b)
	return ta != 0 && ta == tb
}

func (w *World) hostile(a, b *Entity) bool {
	if a.Owner == 0 || b.Owner == 0 {
		return false
	}
	return !w.allied(a.Owner, b.Owner)
}

func (w *World) sortedPlayers() []*Player {
	out := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) PlayerState(id int) (PlayerState, bool) {
	p := w.players[id]
	if p == nil {
		return PlayerState{}, false
	}
	return p.state(), true
}

func (w *World) Teams() []Team {
	out := make([]Team, len(w.teams))
	copy(out, w.teams)
	return out
}
