package world

import (
	"math"
	"testing"
	"time"

	"skirmish.ai/internal/protocol"
)

func TestTakeDamage_ArmorFloor(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 2, 1000, 1000)
	m.Armor = 15

	if got := w.TakeDamage(m.ID, 10, 0); got != 1 {
		t.Fatalf("dealt=%v want 1", got)
	}
	if m.Health != 99 {
		t.Fatalf("health=%v want 99", m.Health)
	}
}

func TestTakeDamage_HealthNeverNegative(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 2, 1000, 1000)

	if got := w.TakeDamage(m.ID, 1e6, 0); got != 100 {
		t.Fatalf("dealt=%v want the remaining 100", got)
	}
	if m.Health != 0 || m.Alive() {
		t.Fatalf("health=%v alive=%v", m.Health, m.Alive())
	}
	if w.Entity(m.ID) != nil {
		t.Fatalf("dead entity still resolvable")
	}
	if got := w.TakeDamage(m.ID, 10, 0); got != 0 {
		t.Fatalf("damage to a dead entity dealt %v", got)
	}
	if countEvents(w, EventExplosion) != 1 {
		t.Fatalf("want one explosion event")
	}
}

func TestTakeDamage_InvulnerableObjective(t *testing.T) {
	w := newTestWorld(t, nil)
	_, id, ok := w.Objective()
	if !ok {
		t.Fatalf("no objective")
	}
	if got := w.TakeDamage(id, 1e6, 0); got != 0 {
		t.Fatalf("objective took %v damage", got)
	}
}

func TestCombat_MarineDuel(t *testing.T) {
	w := newTestWorld(t, nil)
	a := mustUnit(t, w, "marine", 1, 1000, 1000)
	b := mustUnit(t, w, "marine", 2, 1100, 1000)

	if code := w.IssueCommand(1, []EntityID{a.ID}, CmdAttack, CommandParams{Target: b.ID}); code != "" {
		t.Fatalf("attack a->b: %s", code)
	}
	if code := w.IssueCommand(2, []EntityID{b.ID}, CmdAttack, CommandParams{Target: a.ID}); code != "" {
		t.Fatalf("attack b->a: %s", code)
	}
	stepN(w, ticksFor(w, 12*time.Second))

	// a steps first in update order, so it lands the tenth hit first.
	if b.Health != 0 || w.Entity(b.ID) != nil {
		t.Fatalf("loser health=%v alive=%v", b.Health, w.Entity(b.ID) != nil)
	}
	if a.Health <= 0 || a.Health >= 100 {
		t.Fatalf("winner health=%v", a.Health)
	}
	if a.Target != 0 || a.State != StateIdle {
		t.Fatalf("winner kept a dangling target: target=%v state=%s", a.Target, a.State)
	}
	st, _ := w.PlayerState(1)
	if st.Resources != 200+w.cfg.Rewards.Unit || st.KillScore != 1 {
		t.Fatalf("killer player=%+v", st)
	}
}

func TestCombat_DuelFromSamePoint(t *testing.T) {
	w := newTestWorld(t, nil)
	a := mustUnit(t, w, "marine", 1, 1000, 1000)
	b := mustUnit(t, w, "marine", 2, 1000, 1000)

	w.IssueCommand(1, []EntityID{a.ID}, CmdAttack, CommandParams{Target: b.ID})
	w.IssueCommand(2, []EntityID{b.ID}, CmdAttack, CommandParams{Target: a.ID})
	for i := 0; i < ticksFor(w, 12*time.Second); i++ {
		w.StepOnce()
		if a.Health < 0 || b.Health < 0 {
			t.Fatalf("tick %d: negative health a=%v b=%v", i, a.Health, b.Health)
		}
	}

	loser, winner := b, a
	if a.Health == 0 {
		loser, winner = a, b
	}
	if loser.Health != 0 || w.Entity(loser.ID) != nil {
		t.Fatalf("loser health=%v alive=%v", loser.Health, w.Entity(loser.ID) != nil)
	}
	if winner.Health <= 0 || winner.Health >= winner.MaxHealth {
		t.Fatalf("winner health=%v", winner.Health)
	}
}

func TestCombat_HealthStaysInBounds(t *testing.T) {
	w := newTestWorld(t, nil)
	var north, south []EntityID
	for i := 0; i < 6; i++ {
		north = append(north, mustUnit(t, w, "marine", 1, 900+float64(i)*20, 900).ID)
		south = append(south, mustUnit(t, w, "marine", 2, 900+float64(i)*20, 1150).ID)
	}
	north = append(north, mustUnit(t, w, "siege_tank", 1, 950, 820).ID)
	south = append(south, mustUnit(t, w, "worker", 2, 900, 1250).ID)
	mustStructure(t, w, "turret", 2, 10, 12, false)
	if code := w.IssueCommand(1, nil, CmdUpgrade, CommandParams{Type: UpgradeRegen}); code != "" {
		t.Fatalf("regen upgrade: %s", code)
	}

	w.IssueCommand(1, north, CmdAttackMove, CommandParams{X: 1000, Y: 1200})
	w.IssueCommand(2, south, CmdAttackMove, CommandParams{X: 1000, Y: 900})
	for i := 0; i < ticksFor(w, 40*time.Second); i++ {
		w.StepOnce()
		for _, e := range w.liveEntities() {
			if e.Health < 0 || e.Health > e.MaxHealth {
				t.Fatalf("tick %d: %s health=%v max=%v", i, e.ID, e.Health, e.MaxHealth)
			}
		}
	}
}

func TestCombat_HoldAcquiresBeyondReach(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 1, 1000, 1000)
	enemy := mustUnit(t, w, "worker", 2, 1200, 1000)

	w.IssueCommand(1, []EntityID{m.ID}, CmdHold, CommandParams{})
	stepN(w, 5)
	if m.Target != enemy.ID {
		t.Fatalf("held marine target=%v want %v", m.Target, enemy.ID)
	}
	if m.X != 1000 || m.Y != 1000 {
		t.Fatalf("held marine moved to %v,%v", m.X, m.Y)
	}
	if enemy.Health != enemy.MaxHealth {
		t.Fatalf("fired beyond reach: enemy health=%v", enemy.Health)
	}
}

func TestSweep_RewardsByClass(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 1, 1000, 1000)
	worker := mustUnit(t, w, "worker", 2, 1100, 1000)

	if code := w.IssueCommand(1, []EntityID{m.ID}, CmdAttack, CommandParams{Target: worker.ID}); code != "" {
		t.Fatalf("attack: %s", code)
	}
	w.TakeDamage(worker.ID, 1e6, m.ID)
	w.StepOnce()

	if got := resources(t, w, 1); got != 200+50 {
		t.Fatalf("worker bounty: resources=%d", got)
	}
	if countEvents(w, EventFloatingText) != 1 {
		t.Fatalf("want a floating text for the bounty")
	}
	if m.Target != 0 {
		t.Fatalf("dangling target %v", m.Target)
	}
}

func TestSweep_NoRewardForAllies(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 1, 1000, 1000)
	ally := mustUnit(t, w, "worker", 3, 1100, 1000)

	if code := w.IssueCommand(1, []EntityID{m.ID}, CmdAttack, CommandParams{Target: ally.ID}); code != protocol.ErrInvalidTarget {
		t.Fatalf("attacking an ally: code=%q", code)
	}
	w.TakeDamage(ally.ID, 1e6, m.ID)
	w.StepOnce()

	if got := resources(t, w, 1); got != 200 {
		t.Fatalf("ally kill paid out: resources=%d", got)
	}
	if st, _ := w.PlayerState(1); st.KillScore != 0 {
		t.Fatalf("ally kill scored")
	}
}

func TestCombat_AttackMoveAcquires(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 1, 1000, 1000)
	e := mustUnit(t, w, "worker", 2, 1200, 1000)

	// The worker sits outside firing range but inside acquire range.
	if code := w.IssueCommand(1, []EntityID{m.ID}, CmdAttackMove, CommandParams{X: 1000, Y: 2000}); code != "" {
		t.Fatalf("attackMove: %s", code)
	}
	w.StepOnce()
	if m.Target != e.ID {
		t.Fatalf("target=%v want %v", m.Target, e.ID)
	}
	if m.X <= 1000 {
		t.Fatalf("marine did not close in: x=%v", m.X)
	}
}

func TestCombat_HoldDoesNotChase(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 1, 1000, 1000)
	mustUnit(t, w, "worker", 2, 1300, 1000)

	if code := w.IssueCommand(1, []EntityID{m.ID}, CmdHold, CommandParams{}); code != "" {
		t.Fatalf("hold: %s", code)
	}
	stepN(w, 20)
	if m.X != 1000 || m.Y != 1000 {
		t.Fatalf("held marine moved to %v,%v", m.X, m.Y)
	}
}

func TestIdle_FleesFromAttacker(t *testing.T) {
	w := newTestWorld(t, nil)
	worker := mustUnit(t, w, "worker", 1, 1000, 1000)
	m := mustUnit(t, w, "marine", 2, 1100, 1000)
	m.Target = worker.ID

	w.TakeDamage(worker.ID, 5, m.ID)
	stepN(w, 10)
	if worker.X >= 1000 {
		t.Fatalf("worker did not move away: x=%v", worker.X)
	}
	if math.Abs(worker.Y-1000) > 1e-6 {
		t.Fatalf("worker fled sideways: y=%v", worker.Y)
	}
}

func TestRegen_WholeIntervals(t *testing.T) {
	w := newTestWorld(t, nil)
	m := mustUnit(t, w, "marine", 1, 1000, 1000)
	w.TakeDamage(m.ID, 50, 0)

	// Long frame: three full intervals are caught up.
	w.Step(3500 * time.Millisecond)
	if math.Abs(m.Health-(50+3*0.2)) > 1e-9 {
		t.Fatalf("health=%v", m.Health)
	}
}
