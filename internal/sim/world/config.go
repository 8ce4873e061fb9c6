package world

import (
	"time"

	"skirmish.ai/internal/sim/world/logic/placement"
)

// MaxPlayers is the number of player slots in a match.
const MaxPlayers = 8

type Rect = placement.Rect

type Config struct {
	ID         string
	TickRateHz int
	Seed       int64

	// Map geometry. The map is Tiles x Tiles coarse tiles, each split into a
	// LocalGrid x LocalGrid placement sub-grid.
	MapWidth    float64
	MapHeight   float64
	Tiles       int
	LocalGrid   int
	FogCellSize float64
	Obstacles   []Rect

	// Economy.
	StartingResources  int
	IncomeAmount       int
	IncomeInterval     time.Duration
	SupplyCapBase      int
	SupplyCapMax       int
	WorkerSupplyCap    int
	StartingWorkers    int
	WorkerRespawnDelay time.Duration

	Rewards RewardConfig

	// Combat and movement.
	AcquireRangeMultiplier float64
	FleeDistance           float64
	FleeMemory             time.Duration
	PatrolTolerance        float64
	ArriveTolerance        float64
	RegenInterval          time.Duration
	ShieldArmor            float64
	ShieldDuration         time.Duration
	ShieldCooldown         time.Duration
	GarrisonRangeBonus     float64
	CollisionJitter        float64

	// Construction and production.
	BuildSpeedPerExtraWorker float64
	CancelRefundPct          int
	RepairHPPerSec           float64
	RepairCostPerHP          float64
	TurretLifetime           time.Duration
	ProductionQueueMax       int

	// Siege stance.
	SiegeTransform time.Duration
	SiegeMoveLock  float64
	SiegeRangeMul  float64
	SiegeDamageMul float64
	SiegeTechMul   float64

	// Vision.
	SensorRadius     float64
	ObjectiveVisionW float64
	ObjectiveVisionH float64

	Teams   []TeamSetup
	Players []PlayerSetup
}

// RewardConfig is the resource bounty paid to the killer's owner, keyed by
// the victim's class.
type RewardConfig struct {
	Worker   int
	Building int
	Turret   int
	Unit     int
}

type TeamSetup struct {
	ID   int
	Name string
}

type PlayerSetup struct {
	ID   int
	Name string
	Team int

	// Placement cell of the player's starting HQ.
	HomeGridX int
	HomeGridY int
}

// DefaultConfig is the standard 8-player, two-team match.
func DefaultConfig() Config {
	return Config{
		ID:         "match_1",
		TickRateHz: 20,
		Seed:       1337,

		MapWidth:    3200,
		MapHeight:   3200,
		Tiles:       8,
		LocalGrid:   4,
		FogCellSize: 50,

		StartingResources:  200,
		IncomeAmount:       5,
		IncomeInterval:     time.Second,
		SupplyCapBase:      10,
		SupplyCapMax:       200,
		WorkerSupplyCap:    16,
		StartingWorkers:    4,
		WorkerRespawnDelay: 10 * time.Second,

		Rewards: RewardConfig{Worker: 50, Building: 30, Turret: 15, Unit: 5},

		AcquireRangeMultiplier: 1.5,
		FleeDistance:           150,
		FleeMemory:             2 * time.Second,
		PatrolTolerance:        8,
		ArriveTolerance:        2,
		RegenInterval:          time.Second,
		ShieldArmor:            5,
		ShieldDuration:         3 * time.Second,
		ShieldCooldown:         10 * time.Second,
		GarrisonRangeBonus:     50,
		CollisionJitter:        0.5,

		BuildSpeedPerExtraWorker: 0.5,
		CancelRefundPct:          75,
		RepairHPPerSec:           20,
		RepairCostPerHP:          0.25,
		TurretLifetime:           60 * time.Second,
		ProductionQueueMax:       5,

		SiegeTransform: 2 * time.Second,
		SiegeMoveLock:  0.2,
		SiegeRangeMul:  1.6,
		SiegeDamageMul: 1.5,
		SiegeTechMul:   1.25,

		SensorRadius:     600,
		ObjectiveVisionW: 800,
		ObjectiveVisionH: 800,

		Teams: []TeamSetup{{ID: 1, Name: "North"}, {ID: 2, Name: "South"}},
		Players: []PlayerSetup{
			{ID: 1, Name: "P1", Team: 1, HomeGridX: 0, HomeGridY: 0},
			{ID: 2, Name: "P2", Team: 1, HomeGridX: 12, HomeGridY: 0},
			{ID: 3, Name: "P3", Team: 1, HomeGridX: 16, HomeGridY: 0},
			{ID: 4, Name: "P4", Team: 1, HomeGridX: 28, HomeGridY: 0},
			{ID: 5, Name: "P5", Team: 2, HomeGridX: 0, HomeGridY: 28},
			{ID: 6, Name: "P6", Team: 2, HomeGridX: 12, HomeGridY: 28},
			{ID: 7, Name: "P7", Team: 2, HomeGridX: 16, HomeGridY: 28},
			{ID: 8, Name: "P8", Team: 2, HomeGridX: 28, HomeGridY: 28},
		},
	}
}

// applyDefaults fills zero values for the scalar knobs so hand-built configs
// (tests, tools) stay short.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.TickRateHz <= 0 {
		c.TickRateHz = d.TickRateHz
	}
	if c.MapWidth <= 0 || c.MapHeight <= 0 {
		c.MapWidth, c.MapHeight = d.MapWidth, d.MapHeight
	}
	if c.Tiles <= 0 {
		c.Tiles = d.Tiles
	}
	if c.LocalGrid <= 0 {
		c.LocalGrid = d.LocalGrid
	}
	if c.FogCellSize <= 0 {
		c.FogCellSize = d.FogCellSize
	}
	if c.IncomeInterval <= 0 {
		c.IncomeInterval = d.IncomeInterval
	}
	if c.SupplyCapMax <= 0 {
		c.SupplyCapMax = d.SupplyCapMax
	}
	if c.Rewards == (RewardConfig{}) {
		c.Rewards = d.Rewards
	}
	if c.AcquireRangeMultiplier <= 0 {
		c.AcquireRangeMultiplier = d.AcquireRangeMultiplier
	}
	if c.PatrolTolerance <= 0 {
		c.PatrolTolerance = d.PatrolTolerance
	}
	if c.ArriveTolerance <= 0 {
		c.ArriveTolerance = d.ArriveTolerance
	}
	if c.RegenInterval <= 0 {
		c.RegenInterval = d.RegenInterval
	}
	if c.CollisionJitter <= 0 {
		c.CollisionJitter = d.CollisionJitter
	}
	if c.SiegeTransform <= 0 {
		c.SiegeTransform = d.SiegeTransform
	}
	if c.SiegeRangeMul <= 0 {
		c.SiegeRangeMul = d.SiegeRangeMul
	}
	if c.SiegeDamageMul <= 0 {
		c.SiegeDamageMul = d.SiegeDamageMul
	}
	if c.SiegeTechMul <= 0 {
		c.SiegeTechMul = d.SiegeTechMul
	}
	if c.ProductionQueueMax <= 0 {
		c.ProductionQueueMax = d.ProductionQueueMax
	}
}

// TickDuration is the nominal wall-clock length of one tick.
func (c Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRateHz)
}

func (c Config) placementGrid() placement.Grid {
	return placement.Grid{
		Tiles:     c.Tiles,
		LocalGrid: c.LocalGrid,
		CellSize:  c.MapWidth / float64(c.Tiles*c.LocalGrid),
	}
}
