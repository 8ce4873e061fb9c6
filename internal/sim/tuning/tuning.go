package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"skirmish.ai/internal/sim/world"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int   `yaml:"tick_rate_hz"`
	Seed       int64 `yaml:"seed"`

	Map     MapTuning     `yaml:"map"`
	Economy EconomyTuning `yaml:"economy"`
	Rewards RewardTuning  `yaml:"rewards"`
	Combat  CombatTuning  `yaml:"combat"`
	Build   BuildTuning   `yaml:"build"`
	Siege   SiegeTuning   `yaml:"siege"`
	Vision  VisionTuning  `yaml:"vision"`

	Match     MatchTuning     `yaml:"match"`
	Transport TransportTuning `yaml:"transport"`
}

type MapTuning struct {
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Tiles       int     `yaml:"tiles"`
	LocalGrid   int     `yaml:"local_grid"`
	FogCellSize float64 `yaml:"fog_cell_size"`
	Obstacles   []Rect  `yaml:"obstacles,omitempty"`
}

type Rect struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type EconomyTuning struct {
	StartingResources int `yaml:"starting_resources"`
	IncomeAmount      int `yaml:"income_amount"`
	IncomeIntervalMs  int `yaml:"income_interval_ms"`
	SupplyCapBase     int `yaml:"supply_cap_base"`
	SupplyCapMax      int `yaml:"supply_cap_max"`
	WorkerSupplyCap   int `yaml:"worker_supply_cap"`
	StartingWorkers   int `yaml:"starting_workers"`
	RespawnDelayMs    int `yaml:"worker_respawn_ms"`
}

type RewardTuning struct {
	Worker   int `yaml:"worker"`
	Building int `yaml:"building"`
	Turret   int `yaml:"turret"`
	Unit     int `yaml:"unit"`
}

type CombatTuning struct {
	AcquireRangeMultiplier float64 `yaml:"acquire_range_multiplier"`
	FleeDistance           float64 `yaml:"flee_distance"`
	FleeMemoryMs           int     `yaml:"flee_memory_ms"`
	PatrolTolerance        float64 `yaml:"patrol_tolerance"`
	ArriveTolerance        float64 `yaml:"arrive_tolerance"`
	RegenIntervalMs        int     `yaml:"regen_interval_ms"`
	ShieldArmor            float64 `yaml:"shield_armor"`
	ShieldDurationMs       int     `yaml:"shield_duration_ms"`
	ShieldCooldownMs       int     `yaml:"shield_cooldown_ms"`
	GarrisonRangeBonus     float64 `yaml:"garrison_range_bonus"`
	CollisionJitter        float64 `yaml:"collision_jitter"`
}

type BuildTuning struct {
	SpeedPerExtraWorker float64 `yaml:"speed_per_extra_worker"`
	CancelRefundPct     int     `yaml:"cancel_refund_pct"`
	RepairHPPerSec      float64 `yaml:"repair_hp_per_sec"`
	RepairCostPerHP     float64 `yaml:"repair_cost_per_hp"`
	TurretLifetimeMs    int     `yaml:"turret_lifetime_ms"`
	ProductionQueueMax  int     `yaml:"production_queue_max"`
}

type SiegeTuning struct {
	TransformMs int     `yaml:"transform_ms"`
	MoveLock    float64 `yaml:"move_lock"`
	RangeMul    float64 `yaml:"range_mul"`
	DamageMul   float64 `yaml:"damage_mul"`
	TechMul     float64 `yaml:"tech_mul"`
}

type VisionTuning struct {
	SensorRadius     float64 `yaml:"sensor_radius"`
	ObjectiveVisionW float64 `yaml:"objective_vision_w"`
	ObjectiveVisionH float64 `yaml:"objective_vision_h"`
}

// TransportTuning bounds what one client connection may do. It never
// reaches the kernel.
type TransportTuning struct {
	CmdWindowTicks uint64 `yaml:"cmd_window_ticks"`
	CmdMax         int    `yaml:"cmd_max"`
	OutQueue       int    `yaml:"out_queue"`
}

type MatchTuning struct {
	Teams   []TeamSpec   `yaml:"teams"`
	Players []PlayerSpec `yaml:"players"`
}

type TeamSpec struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type PlayerSpec struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Team  int    `yaml:"team"`
	HomeX int    `yaml:"home_grid_x"`
	HomeY int    `yaml:"home_grid_y"`
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0")
	}
	if t.Map.Tiles <= 0 || t.Map.LocalGrid <= 0 {
		return fmt.Errorf("map tiles/local_grid must be > 0")
	}
	if t.Map.FogCellSize <= 0 {
		return fmt.Errorf("fog_cell_size must be > 0")
	}
	cols := t.Map.Width / t.Map.FogCellSize
	if cols != float64(int(cols)) || t.Map.Height/t.Map.FogCellSize != float64(int(t.Map.Height/t.Map.FogCellSize)) {
		return fmt.Errorf("fog_cell_size %.0f does not divide the map", t.Map.FogCellSize)
	}
	if len(t.Match.Players) == 0 {
		return fmt.Errorf("match.players is empty")
	}
	if len(t.Match.Players) > world.MaxPlayers {
		return fmt.Errorf("match.players: at most %d players", world.MaxPlayers)
	}
	teams := map[int]bool{}
	for _, tm := range t.Match.Teams {
		teams[tm.ID] = true
	}
	seen := map[int]bool{}
	for _, p := range t.Match.Players {
		if p.ID <= 0 || seen[p.ID] {
			return fmt.Errorf("match.players: bad or duplicate id %d", p.ID)
		}
		seen[p.ID] = true
		if !teams[p.Team] {
			return fmt.Errorf("match.players: player %d references unknown team %d", p.ID, p.Team)
		}
	}
	return nil
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      20,
		Seed:            1337,
		Map: MapTuning{
			Width:       3200,
			Height:      3200,
			Tiles:       8,
			LocalGrid:   4,
			FogCellSize: 50,
		},
		Economy: EconomyTuning{
			StartingResources: 200,
			IncomeAmount:      5,
			IncomeIntervalMs:  1000,
			SupplyCapBase:     10,
			SupplyCapMax:      200,
			WorkerSupplyCap:   16,
			StartingWorkers:   4,
			RespawnDelayMs:    10000,
		},
		Rewards: RewardTuning{Worker: 50, Building: 30, Turret: 15, Unit: 5},
		Combat: CombatTuning{
			AcquireRangeMultiplier: 1.5,
			FleeDistance:           150,
			FleeMemoryMs:           2000,
			PatrolTolerance:        8,
			ArriveTolerance:        2,
			RegenIntervalMs:        1000,
			ShieldArmor:            5,
			ShieldDurationMs:       3000,
			ShieldCooldownMs:       10000,
			GarrisonRangeBonus:     50,
			CollisionJitter:        0.5,
		},
		Build: BuildTuning{
			SpeedPerExtraWorker: 0.5,
			CancelRefundPct:     75,
			RepairHPPerSec:      20,
			RepairCostPerHP:     0.25,
			TurretLifetimeMs:    60000,
			ProductionQueueMax:  5,
		},
		Siege: SiegeTuning{
			TransformMs: 2000,
			MoveLock:    0.2,
			RangeMul:    1.6,
			DamageMul:   1.5,
			TechMul:     1.25,
		},
		Vision: VisionTuning{
			SensorRadius:     600,
			ObjectiveVisionW: 800,
			ObjectiveVisionH: 800,
		},
		Match: MatchTuning{
			Teams: []TeamSpec{{ID: 1, Name: "North"}, {ID: 2, Name: "South"}},
			Players: []PlayerSpec{
				{ID: 1, Name: "P1", Team: 1, HomeX: 0, HomeY: 0},
				{ID: 2, Name: "P2", Team: 1, HomeX: 12, HomeY: 0},
				{ID: 3, Name: "P3", Team: 1, HomeX: 16, HomeY: 0},
				{ID: 4, Name: "P4", Team: 1, HomeX: 28, HomeY: 0},
				{ID: 5, Name: "P5", Team: 2, HomeX: 0, HomeY: 28},
				{ID: 6, Name: "P6", Team: 2, HomeX: 12, HomeY: 28},
				{ID: 7, Name: "P7", Team: 2, HomeX: 16, HomeY: 28},
				{ID: 8, Name: "P8", Team: 2, HomeX: 28, HomeY: 28},
			},
		},
		Transport: TransportTuning{CmdWindowTicks: 20, CmdMax: 40, OutQueue: 8},
	}
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// WorldConfig maps the tuning file onto the kernel configuration.
func (t Tuning) WorldConfig(id string) world.Config {
	cfg := world.Config{
		ID:         id,
		TickRateHz: t.TickRateHz,
		Seed:       t.Seed,

		MapWidth:    t.Map.Width,
		MapHeight:   t.Map.Height,
		Tiles:       t.Map.Tiles,
		LocalGrid:   t.Map.LocalGrid,
		FogCellSize: t.Map.FogCellSize,

		StartingResources:  t.Economy.StartingResources,
		IncomeAmount:       t.Economy.IncomeAmount,
		IncomeInterval:     ms(t.Economy.IncomeIntervalMs),
		SupplyCapBase:      t.Economy.SupplyCapBase,
		SupplyCapMax:       t.Economy.SupplyCapMax,
		WorkerSupplyCap:    t.Economy.WorkerSupplyCap,
		StartingWorkers:    t.Economy.StartingWorkers,
		WorkerRespawnDelay: ms(t.Economy.RespawnDelayMs),

		Rewards: world.RewardConfig{
			Worker:   t.Rewards.Worker,
			Building: t.Rewards.Building,
			Turret:   t.Rewards.Turret,
			Unit:     t.Rewards.Unit,
		},

		AcquireRangeMultiplier: t.Combat.AcquireRangeMultiplier,
		FleeDistance:           t.Combat.FleeDistance,
		FleeMemory:             ms(t.Combat.FleeMemoryMs),
		PatrolTolerance:        t.Combat.PatrolTolerance,
		ArriveTolerance:        t.Combat.ArriveTolerance,
		RegenInterval:          ms(t.Combat.RegenIntervalMs),
		ShieldArmor:            t.Combat.ShieldArmor,
		ShieldDuration:         ms(t.Combat.ShieldDurationMs),
		ShieldCooldown:         ms(t.Combat.ShieldCooldownMs),
		GarrisonRangeBonus:     t.Combat.GarrisonRangeBonus,
		CollisionJitter:        t.Combat.CollisionJitter,

		BuildSpeedPerExtraWorker: t.Build.SpeedPerExtraWorker,
		CancelRefundPct:          t.Build.CancelRefundPct,
		RepairHPPerSec:           t.Build.RepairHPPerSec,
		RepairCostPerHP:          t.Build.RepairCostPerHP,
		TurretLifetime:           ms(t.Build.TurretLifetimeMs),
		ProductionQueueMax:       t.Build.ProductionQueueMax,

		SiegeTransform: ms(t.Siege.TransformMs),
		SiegeMoveLock:  t.Siege.MoveLock,
		SiegeRangeMul:  t.Siege.RangeMul,
		SiegeDamageMul: t.Siege.DamageMul,
		SiegeTechMul:   t.Siege.TechMul,

		SensorRadius:     t.Vision.SensorRadius,
		ObjectiveVisionW: t.Vision.ObjectiveVisionW,
		ObjectiveVisionH: t.Vision.ObjectiveVisionH,
	}
	for _, r := range t.Map.Obstacles {
		cfg.Obstacles = append(cfg.Obstacles, world.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H})
	}
	for _, tm := range t.Match.Teams {
		cfg.Teams = append(cfg.Teams, world.TeamSetup{ID: tm.ID, Name: tm.Name})
	}
	for _, p := range t.Match.Players {
		cfg.Players = append(cfg.Players, world.PlayerSetup{
			ID:        p.ID,
			Name:      p.Name,
			Team:      p.Team,
			HomeGridX: p.HomeX,
			HomeGridY: p.HomeY,
		})
	}
	return cfg
}
