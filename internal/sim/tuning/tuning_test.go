package tuning

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"skirmish.ai/internal/sim/world"
)

func TestDefaultsMatchKernelDefaults(t *testing.T) {
	got := Defaults().WorldConfig("m")
	want := world.DefaultConfig()
	want.ID = "m"
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("defaults drifted:\n got=%+v\nwant=%+v", got, want)
	}
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := `
tick_rate_hz: 30
economy:
  income_amount: 8
siege:
  range_mul: 2
transport:
  cmd_max: 5
match:
  teams:
    - {id: 1, name: Red}
    - {id: 2, name: Blue}
  players:
    - {id: 1, name: A, team: 1, home_grid_x: 0, home_grid_y: 0}
    - {id: 2, name: B, team: 2, home_grid_x: 28, home_grid_y: 28}
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	tu, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tu.TickRateHz != 30 || tu.Economy.IncomeAmount != 8 || tu.Siege.RangeMul != 2 {
		t.Fatalf("overrides not applied: %+v", tu)
	}
	if tu.Economy.StartingResources != 200 || tu.Siege.DamageMul != 1.5 {
		t.Fatalf("defaults lost: %+v", tu)
	}
	if tu.Transport.CmdMax != 5 || tu.Transport.CmdWindowTicks != 20 {
		t.Fatalf("transport=%+v", tu.Transport)
	}
	cfg := tu.WorldConfig("x")
	if len(cfg.Players) != 2 || cfg.Players[1].HomeGridX != 28 || cfg.Teams[1].Name != "Blue" {
		t.Fatalf("match setup: %+v", cfg.Players)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	cases := map[string]string{
		"unknown team":   "match:\n  teams: [{id: 1}]\n  players: [{id: 1, team: 9}]\n",
		"duplicate id":   "match:\n  teams: [{id: 1}]\n  players: [{id: 1, team: 1}, {id: 1, team: 1}]\n",
		"fog not exact":  "map:\n  fog_cell_size: 70\n",
		"zero tick rate": "tick_rate_hz: 0\n",
		"not yaml":       "tick_rate_hz: [\n",
	}
	for name, raw := range cases {
		path := filepath.Join(t.TempDir(), "tuning.yaml")
		if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !strings.HasPrefix(err.Error(), "tuning.yaml: ") {
			t.Fatalf("%s: unwrapped error %v", name, err)
		}
	}
}

func TestShippedTuningFileMatchesDefaults(t *testing.T) {
	tu, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(tu, Defaults()) {
		t.Fatalf("configs/tuning.yaml drifted from Defaults()")
	}
}
