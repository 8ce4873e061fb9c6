package catalogs

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

//go:embed defaults/*.json
var defaultFS embed.FS

// Entity classes as written in entities.json.
const (
	ClassWorker   = "WORKER"
	ClassUnit     = "UNIT"
	ClassBuilding = "BUILDING"
	ClassTurret   = "TURRET"
	ClassNeutral  = "NEUTRAL"
)

type Catalogs struct {
	Entities EntityCatalog
	Upgrades UpgradeCatalog
}

type EntityCatalog struct {
	ByID   map[string]EntityDef
	Order  []string
	Digest string
}

// EntityDef is the stat preset of one entity type. Mobile entities use Size
// (pixels); structures use Footprint (placement cells).
type EntityDef struct {
	ID        string  `json:"id"`
	Class     string  `json:"class"`
	Size      float64 `json:"size,omitempty"`
	Footprint [2]int  `json:"footprint,omitempty"`

	HP          float64 `json:"hp"`
	Armor       float64 `json:"armor"`
	Damage      float64 `json:"damage,omitempty"`
	AttackSpeed float64 `json:"attack_speed,omitempty"`
	Range       float64 `json:"range,omitempty"`
	Vision      float64 `json:"vision"`
	Regen       float64 `json:"regen,omitempty"`
	Speed       float64 `json:"speed,omitempty"`

	Cost   int `json:"cost,omitempty"`
	Supply int `json:"supply,omitempty"`
	TimeMs int `json:"time_ms,omitempty"`

	CanBuild         bool     `json:"can_build,omitempty"`
	Buildable        bool     `json:"buildable,omitempty"`
	Trains           []string `json:"trains,omitempty"`
	SupplyProvided   int      `json:"supply_provided,omitempty"`
	Siege            bool     `json:"siege,omitempty"`
	GarrisonCapacity int      `json:"garrison_capacity,omitempty"`
	Sensor           bool     `json:"sensor,omitempty"`
	Expires          bool     `json:"expires,omitempty"`
	Invulnerable     bool     `json:"invulnerable,omitempty"`

	// Perks enable the type-conditional upgrades (e.g. "vitality").
	Perks []string `json:"perks,omitempty"`
}

func (d EntityDef) IsStructure() bool {
	return d.Class == ClassBuilding || d.Class == ClassTurret || d.Class == ClassNeutral
}

type UpgradeCatalog struct {
	ByID   map[string]UpgradeDef
	Order  []string
	Digest string
}

type UpgradeDef struct {
	ID        string `json:"id"`
	BasePrice int    `json:"base_price"`
	Cap       int    `json:"cap"`
}

// Price is the cost of buying the next level when the counter is at level.
func (u UpgradeDef) Price(level int) int {
	return u.BasePrice * (level + 1)
}

// Default returns the built-in catalogs.
func Default() *Catalogs {
	c, err := load(func(name string) ([]byte, error) {
		return defaultFS.ReadFile("defaults/" + name)
	})
	if err != nil {
		panic(fmt.Sprintf("catalogs: embedded defaults: %v", err))
	}
	return c
}

// Load reads catalogs from configDir. Files missing from configDir fall back
// to the built-in defaults.
func Load(configDir string) (*Catalogs, error) {
	return load(func(name string) ([]byte, error) {
		b, err := os.ReadFile(filepath.Join(configDir, name))
		if err == nil {
			return b, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
		return defaultFS.ReadFile("defaults/" + name)
	})
}

func load(read func(name string) ([]byte, error)) (*Catalogs, error) {
	var c Catalogs
	raw, err := read("entities.json")
	if err != nil {
		return nil, err
	}
	if err := loadEntities(raw, &c.Entities); err != nil {
		return nil, err
	}
	raw, err = read("upgrades.json")
	if err != nil {
		return nil, err
	}
	if err := loadUpgrades(raw, &c.Upgrades); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadEntities(raw []byte, out *EntityCatalog) error {
	out.Digest = sha256Hex(raw)

	var defs []EntityDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("entities.json: %w", err)
	}
	out.ByID = map[string]EntityDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("entities.json: empty id")
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("entities.json: duplicate id %s", d.ID)
		}
		switch d.Class {
		case ClassWorker, ClassUnit:
			if d.Size <= 0 {
				return fmt.Errorf("entities.json: %s: size must be > 0", d.ID)
			}
		case ClassBuilding, ClassTurret, ClassNeutral:
			if d.Footprint[0] <= 0 || d.Footprint[1] <= 0 {
				return fmt.Errorf("entities.json: %s: footprint must be > 0", d.ID)
			}
		default:
			return fmt.Errorf("entities.json: %s: unknown class %q", d.ID, d.Class)
		}
		if d.HP <= 0 {
			return fmt.Errorf("entities.json: %s: hp must be > 0", d.ID)
		}
		out.ByID[d.ID] = d
		out.Order = append(out.Order, d.ID)
	}
	sort.Strings(out.Order)
	return nil
}

func loadUpgrades(raw []byte, out *UpgradeCatalog) error {
	out.Digest = sha256Hex(raw)

	var defs []UpgradeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("upgrades.json: %w", err)
	}
	out.ByID = map[string]UpgradeDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("upgrades.json: empty id")
		}
		if d.Cap <= 0 || d.BasePrice < 0 {
			return fmt.Errorf("upgrades.json: %s: bad cap/base_price", d.ID)
		}
		out.ByID[d.ID] = d
		out.Order = append(out.Order, d.ID)
	}
	sort.Strings(out.Order)
	return nil
}

func (c *Catalogs) validate() error {
	for _, id := range c.Entities.Order {
		d := c.Entities.ByID[id]
		for _, t := range d.Trains {
			td, ok := c.Entities.ByID[t]
			if !ok {
				return fmt.Errorf("entities.json: %s trains unknown type %s", id, t)
			}
			if td.IsStructure() {
				return fmt.Errorf("entities.json: %s trains structure %s", id, t)
			}
		}
	}
	return nil
}
