package world

import (
	"math"
	"testing"

	"skirmish.ai/internal/protocol"
)

func TestSiege_TransformCycle(t *testing.T) {
	w := newTestWorld(t, nil)
	tank := mustUnit(t, w, "siege_tank", 1, 1000, 1000)
	w.StepOnce()
	mobileRange := w.attackRange(tank)

	if code := w.IssueCommand(1, []EntityID{tank.ID}, CmdToggleSiege, CommandParams{}); code != "" {
		t.Fatalf("toggle: %s", code)
	}
	stepN(w, 10)
	if tank.Siege.Mode() != SiegeTransforming {
		t.Fatalf("mode=%s mid-transform", tank.Siege.Mode())
	}
	if code := w.IssueCommand(1, []EntityID{tank.ID}, CmdMove, CommandParams{X: 2000, Y: 1000}); code != protocol.ErrNoPermission {
		t.Fatalf("move while locked: %q", code)
	}

	stepN(w, ticksFor(w, w.cfg.SiegeTransform))
	if tank.Siege.Mode() != SiegeSieged {
		t.Fatalf("mode=%s", tank.Siege.Mode())
	}
	if got, want := w.attackRange(tank), mobileRange*w.cfg.SiegeRangeMul; math.Abs(got-want) > 1e-9 {
		t.Fatalf("sieged range=%v want %v", got, want)
	}
	if got, want := w.attackDamage(tank), tank.Damage*w.cfg.SiegeDamageMul; math.Abs(got-want) > 1e-9 {
		t.Fatalf("sieged damage=%v want %v", got, want)
	}
	if tank.X != 1000 || tank.Y != 1000 {
		t.Fatalf("sieged tank moved")
	}

	w.IssueCommand(1, []EntityID{tank.ID}, CmdToggleSiege, CommandParams{})
	stepN(w, ticksFor(w, w.cfg.SiegeTransform)+1)
	if tank.Siege.Mode() != SiegeMobile {
		t.Fatalf("mode=%s after unsiege", tank.Siege.Mode())
	}
	if code := w.IssueCommand(1, []EntityID{tank.ID}, CmdMove, CommandParams{X: 2000, Y: 1000}); code != "" {
		t.Fatalf("move after unsiege: %q", code)
	}
}

func TestSiege_TechAppliesOnlyWhenSieged(t *testing.T) {
	w := newTestWorld(t, nil)
	tank := mustUnit(t, w, "siege_tank", 1, 1000, 1000)
	if code := w.IssueCommand(1, nil, CmdUpgrade, CommandParams{Type: UpgradeSiegeTech}); code != "" {
		t.Fatalf("buy siege tech: %s", code)
	}
	w.StepOnce()
	base := w.attackRange(tank)
	if base != tank.Base.Range {
		t.Fatalf("mobile tank got siege tech: range=%v", base)
	}

	w.IssueCommand(1, []EntityID{tank.ID}, CmdToggleSiege, CommandParams{})
	stepN(w, ticksFor(w, w.cfg.SiegeTransform)+1)
	want := base * w.cfg.SiegeRangeMul * w.cfg.SiegeTechMul
	if got := w.attackRange(tank); math.Abs(got-want) > 1e-9 {
		t.Fatalf("range=%v want %v", got, want)
	}
}

func TestSiege_NotForOtherUnits(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 1, 1000, 1000)
	if code := w.IssueCommand(1, []EntityID{m.ID}, CmdToggleSiege, CommandParams{}); code != protocol.ErrNoPermission {
		t.Fatalf("code=%q", code)
	}
}

func TestSiege_SiegedTankDefends(t *testing.T) {
	w := newTestWorld(t, nil)
	tank := mustUnit(t, w, "siege_tank", 1, 1000, 1000)
	w.IssueCommand(1, []EntityID{tank.ID}, CmdToggleSiege, CommandParams{})
	stepN(w, ticksFor(w, w.cfg.SiegeTransform)+1)

	// Beyond mobile range, inside sieged range.
	enemy := mustUnit(t, w, "worker", 2, 1300, 1000)
	w.StepOnce()
	if tank.Target != enemy.ID {
		t.Fatalf("sieged tank target=%v", tank.Target)
	}
	if enemy.Health >= 60 {
		t.Fatalf("enemy untouched")
	}
}

func TestSiege_ToggleClearsTarget(t *testing.T) {
	w := newTestWorld(t, nil)
	tank := mustUnit(t, w, "siege_tank", 1, 1000, 1000)
	enemy := mustUnit(t, w, "marine", 2, 1600, 1000)
	w.IssueCommand(1, []EntityID{tank.ID}, CmdAttack, CommandParams{Target: enemy.ID})
	if tank.Target != enemy.ID {
		t.Fatalf("attack did not lock: %v", tank.Target)
	}
	if code := w.IssueCommand(1, []EntityID{tank.ID}, CmdToggleSiege, CommandParams{}); code != "" {
		t.Fatalf("toggle: %s", code)
	}
	if tank.Target != 0 {
		t.Fatalf("toggle kept target %v", tank.Target)
	}
}
