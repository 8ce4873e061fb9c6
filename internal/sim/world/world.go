package world

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"skirmish.ai/internal/sim/catalogs"
	"skirmish.ai/internal/sim/world/fog"
	"skirmish.ai/internal/sim/world/logic/mathx"
	"skirmish.ai/internal/sim/world/logic/placement"
	"skirmish.ai/internal/sim/world/logic/steering"
)

// World is a single-threaded authoritative match simulation.
// All state must be accessed only from the goroutine driving Step/Run.
type World struct {
	cfg      Config
	catalogs *catalogs.Catalogs
	grid     placement.Grid

	tick atomic.Uint64
	now  time.Duration

	entities arena
	players  map[int]*Player
	teams    []Team
	fog      map[int]*fog.Grid

	objective      EntityID
	objectiveState ObjectiveState

	rng        *rand.Rand
	nextIncome time.Duration

	queue  []Command
	events []Event
	kills  []KillRecord

	lastDigest string
	stats      *MatchStats
	metrics    atomic.Value // MatchMetrics

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger TickLogger

	inbox   chan Command
	join    chan JoinRequest
	leave   chan int
	stop    chan struct{}
	clients map[int]*clientState
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick     uint64       `json:"tick"`
	NowMs    int64        `json:"now_ms"`
	NowNs    int64        `json:"now_ns"`
	Commands int          `json:"commands"`
	Cmds     []Command    `json:"cmds,omitempty"`
	Entities int          `json:"entities"`
	Kills    []KillRecord `json:"kills,omitempty"`
	Stats    StatsBucket  `json:"stats"`
	Digest   string       `json:"digest"`
}

// KillRecord is one rewarded or unrewarded death observed in the sweep.
type KillRecord struct {
	Tick       uint64 `json:"tick"`
	Victim     string `json:"victim"`
	VictimType string `json:"victim_type"`
	VictimOwn  int    `json:"victim_owner"`
	Killer     string `json:"killer,omitempty"`
	KillerOwn  int    `json:"killer_owner,omitempty"`
	Reward     int    `json:"reward"`
}

func New(cfg Config, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, fmt.Errorf("nil catalogs")
	}
	cfg.applyDefaults()
	if len(cfg.Players) == 0 {
		return nil, fmt.Errorf("no players")
	}
	if len(cfg.Players) > MaxPlayers {
		return nil, fmt.Errorf("too many players: %d > %d", len(cfg.Players), MaxPlayers)
	}
	cells := cfg.Tiles * cfg.LocalGrid
	if cfg.MapWidth != cfg.MapHeight || math.Mod(cfg.MapWidth, float64(cells)) != 0 {
		return nil, fmt.Errorf("map %.0fx%.0f does not split into %d placement cells", cfg.MapWidth, cfg.MapHeight, cells)
	}
	if math.Mod(cfg.MapWidth, cfg.FogCellSize) != 0 {
		return nil, fmt.Errorf("fog cell size %.0f does not divide the map", cfg.FogCellSize)
	}

	w := &World{
		cfg:      cfg,
		catalogs: cats,
		grid:     cfg.placementGrid(),
		players:  map[int]*Player{},
		fog:      map[int]*fog.Grid{},
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		stats:    NewMatchStats(100, 6000),
		inbox:    make(chan Command, 1024),
		join:     make(chan JoinRequest, 16),
		leave:    make(chan int, 16),
		stop:     make(chan struct{}),
		clients:  map[int]*clientState{},
	}
	w.nextIncome = cfg.IncomeInterval

	teamIDs := map[int]bool{}
	for _, t := range cfg.Teams {
		if teamIDs[t.ID] {
			return nil, fmt.Errorf("duplicate team id %d", t.ID)
		}
		teamIDs[t.ID] = true
		w.teams = append(w.teams, Team{ID: t.ID, Name: t.Name})
		w.fog[t.ID] = fog.NewGrid(cfg.MapWidth, cfg.MapHeight, cfg.FogCellSize)
	}
	sort.Slice(w.teams, func(i, j int) bool { return w.teams[i].ID < w.teams[j].ID })

	for _, ps := range cfg.Players {
		if ps.ID <= 0 {
			return nil, fmt.Errorf("bad player id %d", ps.ID)
		}
		if w.players[ps.ID] != nil {
			return nil, fmt.Errorf("duplicate player id %d", ps.ID)
		}
		if !teamIDs[ps.Team] {
			return nil, fmt.Errorf("player %d: unknown team %d", ps.ID, ps.Team)
		}
		w.players[ps.ID] = &Player{
			ID:              ps.ID,
			Name:            ps.Name,
			Team:            ps.Team,
			Resources:       cfg.StartingResources,
			SupplyCap:       cfg.SupplyCapBase,
			WorkerSupplyCap: cfg.WorkerSupplyCap,
			Upgrades:        map[string]int{},
		}
	}

	if _, ok := cats.Entities.ByID[objectiveType]; ok {
		n := w.grid.Cells()
		def := cats.Entities.ByID[objectiveType]
		gx := (n - def.Footprint[0]) / 2
		gy := (n - def.Footprint[1]) / 2
		if e := w.spawnStructure(objectiveType, 0, gx, gy, false); e != nil {
			w.objective = e.ID
		}
	}

	for _, p := range w.sortedPlayers() {
		var ps PlayerSetup
		for _, s := range cfg.Players {
			if s.ID == p.ID {
				ps = s
			}
		}
		hq := w.spawnStructure(hqType, p.ID, ps.HomeGridX, ps.HomeGridY, false)
		if hq == nil {
			return nil, fmt.Errorf("player %d: cannot place hq at %d,%d", p.ID, ps.HomeGridX, ps.HomeGridY)
		}
		p.HomeX, p.HomeY = hq.X, hq.Y
		for i := 0; i < cfg.StartingWorkers; i++ {
			x, y := w.spawnPointNear(hq, workerType, i)
			w.spawnUnit(workerType, p.ID, x, y)
		}
	}
	w.recountSupply()
	w.systemVision()
	return w, nil
}

const (
	objectiveType = "objective"
	hqType        = "hq"
	workerType    = "worker"
)

func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

func (w *World) Config() Config { return w.cfg }

func (w *World) Catalogs() *catalogs.Catalogs { return w.catalogs }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

// Now is the clock value of the last Step.
func (w *World) Now() time.Duration { return w.now }

func (w *World) Entity(id EntityID) *Entity {
	e := w.entities.get(id)
	if !e.Alive() {
		return nil
	}
	return e
}

func (w *World) Fog(team int) *fog.Grid { return w.fog[team] }

// Events returns the transient visual events emitted by the last Step.
func (w *World) Events() []Event {
	out := make([]Event, len(w.events))
	copy(out, w.events)
	return out
}

func (w *World) newEntity(typeID string, owner int) *Entity {
	def, ok := w.catalogs.Entities.ByID[typeID]
	if !ok {
		return nil
	}
	base := Stats{
		MaxHealth:   def.HP,
		Armor:       def.Armor,
		Damage:      def.Damage,
		AttackSpeed: def.AttackSpeed,
		Range:       def.Range,
		Vision:      def.Vision,
		Regen:       def.Regen,
		Speed:       def.Speed,
	}
	e := &Entity{
		Type:         def.ID,
		Class:        classFromCatalog(def.Class),
		Owner:        owner,
		Base:         base,
		Stats:        base,
		Health:       def.HP,
		Supply:       def.Supply,
		Cost:         def.Cost,
		Invulnerable: def.Invulnerable,
		Sensor:       def.Sensor,
		CanBuild:     def.CanBuild,
		Expires:      def.Expires,
		Perks:        append([]string(nil), def.Perks...),
		LastAttack:   -time.Hour,
		fleeHit:      -time.Hour,
		LastRegen:    w.now,
	}
	if def.IsStructure() {
		cell := w.grid.CellSize
		e.W = float64(def.Footprint[0]) * cell
		e.H = float64(def.Footprint[1]) * cell
	} else {
		e.W, e.H = def.Size, def.Size
	}
	if def.Siege {
		e.Siege = &Siege{mobile: true}
	}
	if def.GarrisonCapacity > 0 {
		e.Garrison = &Garrison{Capacity: def.GarrisonCapacity}
	}
	if len(def.Trains) > 0 {
		e.Producer = &Producer{Trains: append([]string(nil), def.Trains...)}
	}
	return e
}

func (w *World) spawnUnit(typeID string, owner int, x, y float64) *Entity {
	e := w.newEntity(typeID, owner)
	if e == nil || e.IsStructure() {
		return nil
	}
	e.X = mathx.Clamp(x, e.W/2, w.cfg.MapWidth-e.W/2)
	e.Y = mathx.Clamp(y, e.H/2, w.cfg.MapHeight-e.H/2)
	e.DestX, e.DestY = e.X, e.Y
	w.entities.insert(e)
	return e
}

// spawnStructure places a structure with its top-left footprint cell at
// (gx, gy). Placement rules are the caller's responsibility.
func (w *World) spawnStructure(typeID string, owner int, gx, gy int, underConstruction bool) *Entity {
	e := w.newEntity(typeID, owner)
	if e == nil || !e.IsStructure() {
		return nil
	}
	fp := w.grid.Footprint(gx, gy, int(math.Round(e.W/w.grid.CellSize)), int(math.Round(e.H/w.grid.CellSize)))
	e.X, e.Y = fp.Center()
	e.DestX, e.DestY = e.X, e.Y
	if underConstruction {
		e.Construction = &Construction{
			Corners: steering.Corners(fp.X, fp.Y, fp.W, fp.H, 12),
		}
		e.Health = math.Min(e.MaxHealth, math.Max(1, e.MaxHealth*constructionStartHealth))
	} else {
		w.onStructureComplete(e)
	}
	w.entities.insert(e)
	return e
}

// spawnPointNear returns a free-ish point just outside a structure, on the
// side facing the map centre. slot spreads consecutive spawns sideways.
func (w *World) spawnPointNear(b *Entity, typeID string, slot int) (float64, float64) {
	size := 20.0
	if def, ok := w.catalogs.Entities.ByID[typeID]; ok && def.Size > 0 {
		size = def.Size
	}
	cx, cy := w.cfg.MapWidth/2, w.cfg.MapHeight/2
	dx, dy := cx-b.X, cy-b.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		dx, dy, d = 0, 1, 1
	}
	dx, dy = dx/d, dy/d
	reach := b.HalfSize()*math.Sqrt2 + size/2 + 4
	x := b.X + dx*reach
	y := b.Y + dy*reach
	// Spread along the perpendicular.
	off := float64((slot+1)/2) * (size + 4)
	if slot%2 == 1 {
		off = -off
	}
	x += -dy * off
	y += dx * off
	return mathx.Clamp(x, size/2, w.cfg.MapWidth-size/2), mathx.Clamp(y, size/2, w.cfg.MapHeight-size/2)
}

// liveEntities returns the alive entities in insertion (update) order.
func (w *World) liveEntities() []*Entity {
	all := w.entities.all()
	out := all[:0]
	for _, e := range all {
		if e.Alive() {
			out = append(out, e)
		}
	}
	return out
}

func (w *World) emit(ev Event) {
	ev.Tick = w.tick.Load()
	w.events = append(w.events, ev)
}
