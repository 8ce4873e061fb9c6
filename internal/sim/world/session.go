package world

import (
	"encoding/json"
	"math"
	"sort"

	"skirmish.ai/internal/protocol"
	"skirmish.ai/internal/sim/encoding"
)

// JoinRequest seats a remote client on a player slot. Seat 0 takes the
// lowest free slot.
type JoinRequest struct {
	Name string
	Seat int
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Code    string
}

type clientState struct {
	Player int
	Name   string
	Out    chan []byte
}

// HandleJoin seats the client and answers on req.Resp. Run calls it for
// requests from the join channel; tests driving Step may call it directly.
func (w *World) HandleJoin(req JoinRequest) {
	resp := w.joinPlayer(req)
	if req.Resp != nil {
		req.Resp <- resp
	}
}

func (w *World) joinPlayer(req JoinRequest) JoinResponse {
	seat := req.Seat
	if seat == 0 {
		for _, p := range w.sortedPlayers() {
			if w.clients[p.ID] == nil {
				seat = p.ID
				break
			}
		}
	}
	p := w.player(seat)
	if p == nil || w.clients[seat] != nil {
		return JoinResponse{Code: protocol.ErrMatchFull}
	}
	w.clients[seat] = &clientState{Player: seat, Name: req.Name, Out: req.Out}
	return JoinResponse{Welcome: w.buildWelcome(p)}
}

func (w *World) handleLeave(player int) {
	delete(w.clients, player)
}

func (w *World) buildWelcome(p *Player) protocol.WelcomeMsg {
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		MatchID:         w.cfg.ID,
		PlayerID:        p.ID,
		Team:            p.Team,
		MatchParams: protocol.MatchParams{
			TickRateHz:  w.cfg.TickRateHz,
			MapWidth:    w.cfg.MapWidth,
			MapHeight:   w.cfg.MapHeight,
			Tiles:       w.cfg.Tiles,
			LocalGrid:   w.cfg.LocalGrid,
			FogCellSize: w.cfg.FogCellSize,
			Seed:        w.cfg.Seed,
		},
		Catalogs: protocol.CatalogDigests{
			EntitiesDigest: w.catalogs.Entities.Digest,
			UpgradesDigest: w.catalogs.Upgrades.Digest,
		},
	}
}

// sendSnapshots pushes one team-filtered SNAPSHOT to every seated client,
// dropping the oldest queued one when a client falls behind.
func (w *World) sendSnapshots(nowTick uint64) {
	if len(w.clients) == 0 {
		return
	}
	ids := make([]int, 0, len(w.clients))
	for id := range w.clients {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		cl := w.clients[id]
		p := w.player(id)
		if cl == nil || cl.Out == nil || p == nil {
			continue
		}
		b, err := json.Marshal(w.BuildSnapshotMsg(p.ID, nowTick))
		if err != nil {
			continue
		}
		sendLatest(cl.Out, b)
	}
}

// BuildSnapshotMsg renders the wire snapshot a player receives.
func (w *World) BuildSnapshotMsg(playerID int, nowTick uint64) protocol.SnapshotMsg {
	p := w.player(playerID)
	msg := protocol.SnapshotMsg{
		Type:            protocol.TypeSnapshot,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		NowMs:           w.now.Milliseconds(),
		Entities:        []protocol.EntityObs{},
		Events:          []protocol.EventObs{},
	}
	if p == nil {
		return msg
	}
	st := p.state()
	msg.Player = protocol.PlayerObs{
		ID:              st.ID,
		Team:            st.Team,
		Resources:       st.Resources,
		Supply:          st.Supply,
		SupplyCap:       st.SupplyCap,
		WorkerSupply:    st.WorkerSupply,
		WorkerSupplyCap: st.WorkerSupplyCap,
		Upgrades:        st.Upgrades,
		KillScore:       st.KillScore,
	}

	visible := map[EntityID]bool{}
	for _, s := range w.SnapshotForTeam(p.Team) {
		visible[s.ID] = true
		msg.Entities = append(msg.Entities, entityObs(s))
	}
	for _, ev := range w.events {
		if ev.Player != 0 && w.teamOf(ev.Player) != p.Team && !visible[ev.Source] && !w.IsVisibleTeam(p.Team, ev.X, ev.Y) {
			continue
		}
		msg.Events = append(msg.Events, eventObs(ev))
	}
	if g := w.fog[p.Team]; g != nil {
		msg.Fog = protocol.FogObs{Cols: g.Cols, Rows: g.Rows, Encoding: "RLE", Data: encoding.EncodeRLE(g.Cells())}
	}
	msg.Objective = protocol.ObjectiveObs{
		ControllerTeam: w.objectiveState.ControllerTeam,
		Contested:      w.objectiveState.Contested,
	}
	return msg
}

func entityObs(s EntitySnapshot) protocol.EntityObs {
	o := protocol.EntityObs{
		ID:         uint64(s.ID),
		Class:      s.Class.String(),
		Owner:      s.Owner,
		Pos:        [2]int{int(math.Round(s.X)), int(math.Round(s.Y))},
		Size:       [2]int{int(math.Round(s.W)), int(math.Round(s.H))},
		Silhouette: s.Silhouette,
	}
	if s.Silhouette {
		return o
	}
	o.Type = s.Type
	o.Facing = s.Facing
	o.HP = int(math.Ceil(s.Health))
	o.MaxHP = int(math.Ceil(s.MaxHealth))
	o.State = s.State.String()
	if s.UnderConstruction {
		o.Progress = s.Progress
	}
	if s.Siege != SiegeMobile || s.SiegeProgress > 0 {
		o.Siege = s.Siege.String()
	}
	o.Garrisoned = s.Garrisoned
	o.Occupants = s.Occupants
	o.ExpiresMs = s.ExpiresIn.Milliseconds()
	return o
}

func eventObs(ev Event) protocol.EventObs {
	o := protocol.EventObs{
		Kind:     string(ev.Kind),
		Source:   uint64(ev.Source),
		Target:   uint64(ev.Target),
		Pos:      [2]int{int(math.Round(ev.X)), int(math.Round(ev.Y))},
		Amount:   ev.Amount,
		Progress: ev.Progress,
		Text:     ev.Text,
	}
	if ev.Kind == EventAttack {
		o.To = &[2]int{int(math.Round(ev.TX)), int(math.Round(ev.TY))}
	}
	return o
}

// CommandFromMsg converts a validated CMD message into a kernel command for
// the sending player. The session, not the message, decides the player.
func CommandFromMsg(player int, m protocol.CmdMsg) Command {
	c := Command{
		Player: player,
		Kind:   CommandKind(m.Kind),
		Params: CommandParams{
			X:      m.X,
			Y:      m.Y,
			Target: EntityID(m.Target),
			Type:   m.UnitType,
			GridX:  m.GridX,
			GridY:  m.GridY,
		},
	}
	for _, id := range m.IDs {
		c.IDs = append(c.IDs, EntityID(id))
	}
	for _, wp := range m.Waypoints {
		c.Params.Waypoints = append(c.Params.Waypoints, Point{X: wp[0], Y: wp[1]})
	}
	return c
}
