package world

import (
	"math"
	"testing"

	"skirmish.ai/internal/protocol"
)

func buy(t *testing.T, w *World, player int, id string) {
	t.Helper()
	if code := w.IssueCommand(player, nil, CmdUpgrade, CommandParams{Type: id}); code != "" {
		t.Fatalf("buy %s: %s", id, code)
	}
}

func TestUpgrade_PriceScalesWithLevel(t *testing.T) {
	w := newTestWorld(t, nil)
	w.DebugSetResources(1, 1000)
	buy(t, w, 1, UpgradeArmor)
	buy(t, w, 1, UpgradeArmor)
	if got := resources(t, w, 1); got != 1000-100-200 {
		t.Fatalf("resources=%d", got)
	}
	if st, _ := w.PlayerState(1); st.Upgrades[UpgradeArmor] != 2 {
		t.Fatalf("level=%d", st.Upgrades[UpgradeArmor])
	}
}

func TestUpgrade_RecomputedFromBase(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 1, 1000, 1000)
	wk := mustUnit(t, w, "worker", 1, 1100, 1000)
	hq := w.homeStructure(w.player(1))
	w.StepOnce()
	w.DebugSetResources(1, 10_000)

	buy(t, w, 1, UpgradeArmor)
	buy(t, w, 1, UpgradeArmor)
	w.applyUpgrades(m)
	w.applyUpgrades(m)
	if m.Armor != 2 || hq.Armor != 3 {
		t.Fatalf("armor marine=%v hq=%v", m.Armor, hq.Armor)
	}

	buy(t, w, 1, UpgradeWeapons)
	if wk.Damage != 6 || hq.Damage != 0 {
		t.Fatalf("damage worker=%v hq=%v", wk.Damage, hq.Damage)
	}

	buy(t, w, 1, UpgradeLogistics)
	if math.Abs(wk.Speed-90*1.05) > 1e-9 || m.Speed != 100 {
		t.Fatalf("speed worker=%v marine=%v", wk.Speed, m.Speed)
	}

	buy(t, w, 1, UpgradeRange)
	if math.Abs(m.Range-150*1.03) > 1e-9 {
		t.Fatalf("range=%v", m.Range)
	}

	buy(t, w, 1, UpgradeRegen)
	if math.Abs(m.Regen-0.3) > 1e-9 || hq.Regen != 0 {
		t.Fatalf("regen marine=%v hq=%v", m.Regen, hq.Regen)
	}
}

func TestUpgrade_VitalityRaisesCurrentHealth(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 1, 1000, 1000)
	wk := mustUnit(t, w, "worker", 1, 1100, 1000)
	w.StepOnce()
	w.TakeDamage(m.ID, 50, 0)

	buy(t, w, 1, UpgradeVitality)
	if m.MaxHealth != 110 || m.Health != 60 {
		t.Fatalf("marine %v/%v", m.Health, m.MaxHealth)
	}
	if wk.MaxHealth != 60 {
		t.Fatalf("worker without the perk got %v", wk.MaxHealth)
	}
}

func TestUpgrade_NewUnitsInheritLevels(t *testing.T) {
	w := newTestWorld(t, nil)
	buy(t, w, 1, UpgradeArmor)
	m := mustUnit(t, w, "marine", 1, 1000, 1000)
	w.StepOnce()
	if m.Armor != 1 {
		t.Fatalf("armor=%v", m.Armor)
	}
}

func TestUpgrade_Rejections(t *testing.T) {
	w := newTestWorld(t, nil)
	w.DebugSetResources(1, 10_000)
	buy(t, w, 1, UpgradeReactiveShield)
	if code := w.IssueCommand(1, nil, CmdUpgrade, CommandParams{Type: UpgradeReactiveShield}); code != protocol.ErrAtCap {
		t.Fatalf("past cap: %q", code)
	}
	if code := w.IssueCommand(1, nil, CmdUpgrade, CommandParams{Type: "teleport"}); code != protocol.ErrBadRequest {
		t.Fatalf("unknown: %q", code)
	}
	w.DebugSetResources(1, 0)
	if code := w.IssueCommand(1, nil, CmdUpgrade, CommandParams{Type: UpgradeArmor}); code != protocol.ErrNoResource {
		t.Fatalf("poor: %q", code)
	}
	if code := w.IssueCommand(9, nil, CmdUpgrade, CommandParams{Type: UpgradeArmor}); code != protocol.ErrNoPermission {
		t.Fatalf("unknown player: %q", code)
	}
}

func TestUpgrade_ReactiveShieldOnHit(t *testing.T) {
	w := newTestWorld(t, nil)
	buy(t, w, 2, UpgradeReactiveShield)
	m := mustUnit(t, w, "marine", 2, 1000, 1000)
	w.StepOnce()

	if got := w.TakeDamage(m.ID, 10, 0); got != 10-w.cfg.ShieldArmor {
		t.Fatalf("first hit dealt %v", got)
	}
	if got := w.TakeDamage(m.ID, 10, 0); got != 10-w.cfg.ShieldArmor {
		t.Fatalf("hit under shield dealt %v", got)
	}
	w.AdvanceTo(w.Now() + w.cfg.ShieldDuration)
	if got := w.TakeDamage(m.ID, 10, 0); got != 10 {
		t.Fatalf("hit after shield, before cooldown, dealt %v", got)
	}
}
