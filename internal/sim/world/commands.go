package world

import "skirmish.ai/internal/protocol"

type CommandKind string

const (
	CmdMove        CommandKind = "move"
	CmdAttackMove  CommandKind = "attackMove"
	CmdAttack      CommandKind = "attack"
	CmdHold        CommandKind = "hold"
	CmdPatrol      CommandKind = "patrol"
	CmdBuild       CommandKind = "build"
	CmdRepair      CommandKind = "repair"
	CmdCancelBuild CommandKind = "cancelBuild"
	CmdToggleSiege CommandKind = "toggleSiege"
	CmdTrain       CommandKind = "train"
	CmdSetRally    CommandKind = "setRally"
	CmdUpgrade     CommandKind = "upgrade"
	CmdGarrison    CommandKind = "garrison"
	CmdUnload      CommandKind = "unload"
)

// CommandParams carries the union of every command's arguments; each kind
// reads only its own fields.
type CommandParams struct {
	X      float64  `json:"x,omitempty"`
	Y      float64  `json:"y,omitempty"`
	Target EntityID `json:"target,omitempty"`

	// Type is the building to place (build), the unit to train (train) or
	// the upgrade to buy (upgrade).
	Type  string `json:"type,omitempty"`
	GridX int    `json:"grid_x,omitempty"`
	GridY int    `json:"grid_y,omitempty"`

	Waypoints []Point `json:"waypoints,omitempty"`
}

// Command is one player order. The tick log records commands in this form
// so a match can be replayed.
type Command struct {
	Player int           `json:"player"`
	IDs    []EntityID    `json:"ids,omitempty"`
	Kind   CommandKind   `json:"kind"`
	Params CommandParams `json:"params"`
}

// Enqueue queues a command for the start of the next Step.
func (w *World) Enqueue(c Command) {
	w.queue = append(w.queue, c)
}

// IssueCommand applies a command immediately, between ticks. Invalid
// commands change nothing; the returned code (empty on success) is for
// diagnostics only.
func (w *World) IssueCommand(player int, ids []EntityID, kind CommandKind, params CommandParams) string {
	return w.applyCommand(Command{Player: player, IDs: ids, Kind: kind, Params: params})
}

// owned resolves the ids to live entities of the player, dropping
// duplicates, stale handles and foreign entities.
func (w *World) owned(player int, ids []EntityID) []*Entity {
	seen := map[EntityID]bool{}
	var out []*Entity
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if e := w.Entity(id); e != nil && e.Owner == player {
			out = append(out, e)
		}
	}
	return out
}

func (w *World) applyCommand(c Command) string {
	if w.player(c.Player) == nil {
		return protocol.ErrNoPermission
	}
	if c.Kind == CmdUpgrade {
		return w.purchaseUpgrade(c.Player, c.Params.Type)
	}
	units := w.owned(c.Player, c.IDs)
	if len(units) == 0 {
		return protocol.ErrInvalidTarget
	}
	p := c.Params

	switch c.Kind {
	case CmdMove, CmdAttackMove:
		state := StateMoving
		if c.Kind == CmdAttackMove {
			state = StateAttackMoving
		}
		return w.each(units, func(e *Entity) string {
			if !e.CanMove() {
				return protocol.ErrNoPermission
			}
			e.clearOrders()
			e.State = state
			e.DestX, e.DestY = w.clampToMap(e, p.X, p.Y)
			return ""
		})

	case CmdAttack:
		t := w.Entity(p.Target)
		if t == nil || t.Invulnerable {
			return protocol.ErrInvalidTarget
		}
		return w.each(units, func(e *Entity) string {
			if !e.IsCombatant() || !w.hostile(e, t) {
				return protocol.ErrInvalidTarget
			}
			if e.IsStructure() || e.IsGarrisoned() {
				e.Target = t.ID
				return ""
			}
			e.clearOrders()
			e.State = StateAttacking
			e.Target = t.ID
			return ""
		})

	case CmdHold:
		return w.each(units, func(e *Entity) string {
			if !e.IsMobile() || e.IsGarrisoned() {
				return protocol.ErrNoPermission
			}
			e.clearOrders()
			e.State = StateHold
			return ""
		})

	case CmdPatrol:
		route := p.Waypoints
		if len(route) == 0 {
			route = []Point{{X: p.X, Y: p.Y}}
		}
		return w.each(units, func(e *Entity) string {
			if !e.CanMove() {
				return protocol.ErrNoPermission
			}
			e.clearOrders()
			e.State = StatePatrol
			e.Waypoints = append([]Point{{X: e.X, Y: e.Y}}, w.clampRoute(e, route)...)
			e.Waypoint = 1
			return ""
		})

	case CmdBuild:
		var lead *Entity
		for _, e := range units {
			if e.CanBuild && !e.IsGarrisoned() {
				lead = e
				break
			}
		}
		if lead == nil {
			return protocol.ErrNoPermission
		}
		if code := w.startBuild(lead, p.Type, p.GridX, p.GridY); code != "" {
			return code
		}
		site := w.Entity(lead.Build.Target)
		for _, e := range units {
			if e != lead && e.CanBuild && !e.IsGarrisoned() {
				w.assignBuilder(e, site)
			}
		}
		return ""

	case CmdRepair:
		t := w.Entity(p.Target)
		if t == nil || !t.IsBuilding() || !w.allied(c.Player, t.Owner) {
			return protocol.ErrInvalidTarget
		}
		return w.each(units, func(e *Entity) string {
			if !e.CanBuild || e.IsGarrisoned() {
				return protocol.ErrNoPermission
			}
			if t.Construction != nil {
				w.assignBuilder(e, t)
				return ""
			}
			e.clearOrders()
			e.State = StateRepairing
			e.Target = t.ID
			return ""
		})

	case CmdCancelBuild:
		return w.each(units, w.cancelBuild)

	case CmdToggleSiege:
		return w.each(units, func(e *Entity) string {
			if !w.toggleSiege(e) {
				return protocol.ErrNoPermission
			}
			return ""
		})

	case CmdTrain:
		// One unit per command, on the selected producer with the
		// shortest queue that accepts it.
		code := protocol.ErrNoPermission
		for _, b := range byQueueLength(units) {
			if code = w.train(b, p.Type); code == "" {
				return ""
			}
		}
		return code

	case CmdSetRally:
		return w.each(units, func(b *Entity) string { return w.setRally(b, p.X, p.Y) })

	case CmdGarrison:
		b := w.Entity(p.Target)
		if b == nil {
			return protocol.ErrInvalidTarget
		}
		return w.each(units, func(e *Entity) string { return w.orderGarrison(e, b) })

	case CmdUnload:
		return w.each(units, w.unload)
	}
	return protocol.ErrBadRequest
}

// each applies fn to every unit. The command succeeds if any unit accepted
// it; otherwise the first rejection code is returned.
func (w *World) each(units []*Entity, fn func(*Entity) string) string {
	first := ""
	ok := false
	for _, e := range units {
		if code := fn(e); code == "" {
			ok = true
		} else if first == "" {
			first = code
		}
	}
	if ok {
		return ""
	}
	return first
}

func byQueueLength(units []*Entity) []*Entity {
	var out []*Entity
	for _, e := range units {
		if e.Producer != nil {
			out = append(out, e)
		}
	}
	// Insertion sort keeps selection order among equals.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j].Producer.Queue) < len(out[j-1].Producer.Queue); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// clampRoute keeps every waypoint reachable by e's centre.
func (w *World) clampRoute(e *Entity, ps []Point) []Point {
	out := make([]Point, len(ps))
	for i, p := range ps {
		out[i].X, out[i].Y = w.clampToMap(e, p.X, p.Y)
	}
	return out
}
