package world

import "skirmish.ai/internal/sim/world/logic/mathx"

// Upgrade ids as they appear in upgrades.json.
const (
	UpgradeArmor          = "armor"
	UpgradeWeapons        = "weapons"
	UpgradeRange          = "range"
	UpgradeRegen          = "regen"
	UpgradeLogistics      = "logistics"
	UpgradeVitality       = "vitality"
	UpgradeSiegeTech      = "siege_tech"
	UpgradeReactiveShield = "reactive_shield"
)

// Per-level effects.
const (
	armorPerLevel    = 1.0
	damagePerLevel   = 1.0
	rangePctPerLevel = 0.03
	regenPerLevel    = 0.1
	speedPctPerLevel = 0.05
	healthPerLevel   = 10.0
)

// applyUpgrades derives the live stats from Base and the owner's upgrade
// levels. It always starts from Base, so calling it again never compounds.
// A raised max health raises current health by the same amount.
func (w *World) applyUpgrades(e *Entity) {
	prevMax := e.MaxHealth
	s := e.Base
	if p := w.player(e.Owner); p != nil {
		s.Armor += armorPerLevel * float64(p.Level(UpgradeArmor))
		if s.Damage > 0 {
			s.Damage += damagePerLevel * float64(p.Level(UpgradeWeapons))
		}
		s.Range *= 1 + rangePctPerLevel*float64(p.Level(UpgradeRange))
		if e.IsMobile() {
			s.Regen += regenPerLevel * float64(p.Level(UpgradeRegen))
		}
		if e.HasPerk(UpgradeLogistics) {
			s.Speed *= 1 + speedPctPerLevel*float64(p.Level(UpgradeLogistics))
		}
		if e.HasPerk(UpgradeVitality) {
			s.MaxHealth += healthPerLevel * float64(p.Level(UpgradeVitality))
		}
	}
	e.Stats = s
	if gain := e.MaxHealth - prevMax; gain > 0 && e.Construction == nil {
		e.Health += gain
	}
	e.Health = mathx.Clamp(e.Health, 0, e.MaxHealth)
	e.initialized = true
}

// siegeFactor is the eased transform progress in [0,1].
func siegeFactor(e *Entity) float64 {
	if e.Siege == nil {
		return 0
	}
	p := mathx.Clamp01(e.Siege.Progress)
	return p * p * (3 - 2*p)
}

func (w *World) siegeTech(e *Entity) bool {
	if e.Siege == nil || e.Siege.Mode() != SiegeSieged || !e.HasPerk(UpgradeSiegeTech) {
		return false
	}
	return w.player(e.Owner).Level(UpgradeSiegeTech) > 0
}

// attackRange is the live range with stance and garrison modifiers.
func (w *World) attackRange(e *Entity) float64 {
	r := e.Range
	if e.Siege != nil {
		r *= mathx.Lerp(1, w.cfg.SiegeRangeMul, siegeFactor(e))
		if w.siegeTech(e) {
			r *= w.cfg.SiegeTechMul
		}
	}
	if e.IsGarrisoned() {
		r += w.cfg.GarrisonRangeBonus
	}
	return r
}

func (w *World) attackDamage(e *Entity) float64 {
	d := e.Damage
	if e.Siege != nil {
		d *= mathx.Lerp(1, w.cfg.SiegeDamageMul, siegeFactor(e))
		if w.siegeTech(e) {
			d *= w.cfg.SiegeTechMul
		}
	}
	return d
}

func (w *World) acquireRange(e *Entity) float64 {
	return w.attackRange(e) * w.cfg.AcquireRangeMultiplier
}
