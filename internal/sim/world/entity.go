package world

import (
	"math"
	"time"

	"skirmish.ai/internal/sim/catalogs"
	"skirmish.ai/internal/sim/world/logic/steering"
)

type Class uint8

const (
	ClassWorker Class = iota + 1
	ClassUnit
	ClassBuilding
	ClassTurret
	ClassNeutral
)

func (c Class) String() string {
	switch c {
	case ClassWorker:
		return catalogs.ClassWorker
	case ClassUnit:
		return catalogs.ClassUnit
	case ClassBuilding:
		return catalogs.ClassBuilding
	case ClassTurret:
		return catalogs.ClassTurret
	case ClassNeutral:
		return catalogs.ClassNeutral
	default:
		return "UNKNOWN"
	}
}

func classFromCatalog(s string) Class {
	switch s {
	case catalogs.ClassWorker:
		return ClassWorker
	case catalogs.ClassUnit:
		return ClassUnit
	case catalogs.ClassBuilding:
		return ClassBuilding
	case catalogs.ClassTurret:
		return ClassTurret
	default:
		return ClassNeutral
	}
}

type State uint8

const (
	StateIdle State = iota
	StateMoving
	StateAttacking
	StateAttackMoving
	StateHold
	StatePatrol
	StateBuilding
	StateRepairing
)

var stateNames = [...]string{"idle", "moving", "attacking", "attackMoving", "hold", "patrol", "building", "repairing"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

type Point = steering.Point

// Stats are the derived combat/movement numbers of an entity. Base holds the
// catalog preset; the live copy is recomputed from Base whenever upgrades
// change.
type Stats struct {
	MaxHealth   float64
	Armor       float64
	Damage      float64
	AttackSpeed float64
	Range       float64
	Vision      float64
	Regen       float64
	Speed       float64
}

// Entity is the single record type for everything on the map. Optional
// behaviour is attached as capability components selected by class/type.
type Entity struct {
	ID    EntityID
	Type  string
	Class Class
	Owner int

	X, Y   float64
	W, H   float64
	Facing float64

	Health float64
	Base   Stats
	Stats

	Supply       int
	Cost         int
	Invulnerable bool

	State     State
	Target    EntityID
	DestX     float64
	DestY     float64
	Waypoints []Point
	Waypoint  int

	LastAttack   time.Duration
	LastRegen    time.Duration
	LastAttacker EntityID
	LastHitAt    time.Duration

	fleeing      bool
	fleeX, fleeY float64
	fleeHit      time.Duration

	ShieldBonus   float64
	ShieldUntil   time.Duration
	ShieldReadyAt time.Duration

	// Lifetime deadline (turrets); zero means none.
	ExpiresAt time.Duration
	Expires   bool

	Construction *Construction
	Build        *BuildOrder
	Siege        *Siege
	Garrison     *Garrison
	Producer     *Producer
	Sensor       bool
	CanBuild     bool
	Perks        []string

	// GarrisonedIn is the bunker holding this unit; Enter is the bunker it
	// is walking to.
	GarrisonedIn EntityID
	Enter        EntityID

	initialized bool
	dead        bool
	killedBy    EntityID
	killerOwner int
	noReward    bool
	repairDebt  float64
}

func (e *Entity) Alive() bool { return e != nil && !e.dead && e.Health > 0 }

func (e *Entity) IsStructure() bool {
	return e.Class == ClassBuilding || e.Class == ClassTurret || e.Class == ClassNeutral
}

// IsBuilding reports player-owned structures (buildings and turrets).
func (e *Entity) IsBuilding() bool {
	return e.Class == ClassBuilding || e.Class == ClassTurret
}

func (e *Entity) IsCombatant() bool {
	return e.Base.Damage > 0 && e.Base.AttackSpeed > 0 && e.Base.Range > 0 && e.Construction == nil
}

func (e *Entity) IsMobile() bool {
	return e.Class == ClassWorker || e.Class == ClassUnit
}

func (e *Entity) HasPerk(p string) bool {
	for _, have := range e.Perks {
		if have == p {
			return true
		}
	}
	return false
}

func (e *Entity) IsGarrisoned() bool { return e.GarrisonedIn != 0 }

func (e *Entity) CanGarrison() bool { return e.Class == ClassUnit && e.Siege == nil }

// CanMove reports whether the entity may translate this tick.
func (e *Entity) CanMove() bool {
	if !e.IsMobile() || e.Speed <= 0 || e.IsGarrisoned() {
		return false
	}
	if e.Siege != nil && !e.Siege.mobile {
		return false
	}
	return true
}

func (e *Entity) HalfSize() float64 { return math.Max(e.W, e.H) / 2 }

// Bounds is the axis-aligned footprint in world pixels.
func (e *Entity) Bounds() Rect {
	return Rect{X: e.X - e.W/2, Y: e.Y - e.H/2, W: e.W, H: e.H}
}

func (e *Entity) Cooldown() time.Duration {
	if e.AttackSpeed <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / e.AttackSpeed)
}

func (e *Entity) totalArmor(now time.Duration) float64 {
	if e.ShieldBonus > 0 && now < e.ShieldUntil {
		return e.Armor + e.ShieldBonus
	}
	return e.Armor
}

// EffectiveDamage is the damage a hit of raw strength deals to this entity.
// At least one point always gets through.
func (e *Entity) EffectiveDamage(raw float64, now time.Duration) float64 {
	return math.Max(1, raw-e.totalArmor(now))
}

func (e *Entity) heal(amount float64) {
	if amount <= 0 {
		return
	}
	e.Health = math.Min(e.MaxHealth, e.Health+amount)
}

// Construction is the building-side record of a structure being built.
type Construction struct {
	Progress float64
	Corners  [4]Point
}

// BuildOrder is the worker-side assignment to a construction.
type BuildOrder struct {
	Target EntityID
	Type   string
	// Corner is the anchor index the worker is routed to; -1 means the
	// footprint centre fallback.
	Corner    int
	AtX, AtY  float64
	Stationed bool
}

// Siege is the stance sub-machine: mobile -> transforming -> sieged, and back.
type Siege struct {
	Progress float64
	Deploy   bool
	mobile   bool
}

type SiegeMode uint8

const (
	SiegeMobile SiegeMode = iota
	SiegeTransforming
	SiegeSieged
)

func (m SiegeMode) String() string {
	switch m {
	case SiegeTransforming:
		return "transforming"
	case SiegeSieged:
		return "sieged"
	default:
		return "mobile"
	}
}

func (s *Siege) Mode() SiegeMode {
	switch {
	case s.Progress <= 0 && !s.Deploy:
		return SiegeMobile
	case s.Progress >= 1 && s.Deploy:
		return SiegeSieged
	default:
		return SiegeTransforming
	}
}

type Garrison struct {
	Capacity  int
	Occupants []EntityID
}

type Producer struct {
	Trains   []string
	Queue    []string
	Elapsed  time.Duration
	RallyX   float64
	RallyY   float64
	HasRally bool
}
