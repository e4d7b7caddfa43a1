package gamedata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/seedforge/internal/bootstrap"
	"github.com/gravitas-games/seedforge/internal/generator"
	"github.com/gravitas-games/seedforge/internal/pickup"
	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resolver"
	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/world"
)

func TestDemoBuilds(t *testing.T) {
	def, err := Demo()
	if err != nil {
		t.Fatalf("Demo: %v", err)
	}
	w, err := def.BuildWorld()
	if err != nil {
		t.Fatalf("BuildWorld: %v", err)
	}
	if got := w.PickupCount(); got != 11 {
		t.Fatalf("expected 11 pickup locations, got %d", got)
	}
	lift := w.MustLookup("Surface/Landing Site/Elevator")
	if got := w.FullName(w.Target(lift, nil)); got != "Depths/Lift Room/Elevator" {
		t.Fatalf("elevator leads to %s", got)
	}
	game := def.Game()
	if starts := game.StartingLocations(w); len(starts) != 2 {
		t.Fatalf("starting locations = %v", starts)
	}
	pool, err := game.Pool.CreatePool(nil, bootstrap.Settings{}, w)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	if len(pool.Pickups) != 10 || len(pool.Fixed) != 1 {
		t.Fatalf("pool has %d pickups and %d fixed", len(pool.Pickups), len(pool.Fixed))
	}
	if pool.Junk.Name != "Nothing" {
		t.Fatalf("junk = %+v", pool.Junk)
	}
}

func TestVanillaDemoIsNotBeatableEmpty(t *testing.T) {
	def, err := Demo()
	if err != nil {
		t.Fatalf("Demo: %v", err)
	}
	in, err := generator.NewPlayerInput(def.Game(), bootstrap.Settings{})
	if err != nil {
		t.Fatalf("NewPlayerInput: %v", err)
	}
	if requirement.Satisfied(in.Goal, resource.NewCollection(in.World.Resources), nil) {
		t.Fatalf("goal should not hold with nothing collected")
	}
}

func TestGenerateDemo(t *testing.T) {
	reg := bootstrap.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	game, err := reg.Get("demo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	tests := []struct {
		name     string
		settings bootstrap.Settings
		// wantSuit requires the witness to collect the first suit
		wantSuit bool
	}{
		{name: "vanilla", wantSuit: true},
		{name: "random start", settings: bootstrap.Settings{StartingLocation: bootstrap.StartRandom}},
		{name: "two-way docks", settings: bootstrap.Settings{DockShuffle: bootstrap.DockTwoWay}},
		{name: "one-way docks", settings: bootstrap.Settings{DockShuffle: bootstrap.DockOneWay}},
		{name: "major/minor split", settings: bootstrap.Settings{MajorMinorSplit: true}, wantSuit: true},
	}
	gen := generator.New(generator.Options{Attempts: 50})
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := generator.NewPlayerInput(game, tt.settings)
			if err != nil {
				t.Fatalf("NewPlayerInput: %v", err)
			}
			w := in.World
			layout, err := gen.Generate(context.Background(), generator.Input{Seed: uint64(100 + i), Players: []generator.PlayerInput{in}})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			pl := layout.Players[0]
			if got := pl.Patches.Len(); got != w.PickupCount() {
				t.Fatalf("%d of %d locations assigned", got, w.PickupCount())
			}
			if e, _ := pl.Patches.Assignment(10); e.Name != "Energy Tank" {
				t.Fatalf("fixed slot holds %q", e.Name)
			}
			if err := resolver.Replay(w, pl.Patches, nil, pl.Playthrough); err != nil {
				t.Fatalf("Replay: %v", err)
			}
			checkProgressiveSuits(t, w, pl, tt.wantSuit)
			checkDocks(t, w, pl.Patches.Docks, tt.settings.DockShuffle)
			if tt.settings.MajorMinorSplit {
				checkSplit(t, w, pl)
			}
		})
	}
}

// checkProgressiveSuits verifies both suits were placed and the witness
// grants Varia before Gravity.
func checkProgressiveSuits(t *testing.T, w *world.World, pl generator.PlayerLayout, wantSuit bool) {
	t.Helper()
	suits := 0
	for _, idx := range pl.Patches.Assigned() {
		if e, _ := pl.Patches.Assignment(idx); e.Name == "Progressive Suit" {
			suits++
		}
	}
	if suits != 2 {
		t.Fatalf("%d progressive suits placed, want 2", suits)
	}
	var order []string
	for _, step := range pl.Playthrough {
		if step.Kind == resolver.ActionPickup && step.Entry.Name == "Progressive Suit" {
			order = append(order, w.Resources.Name(step.Gained[0].Resource))
		}
	}
	want := []string{"Varia Suit", "Gravity Suit"}
	for k, got := range order {
		if got != want[k] {
			t.Fatalf("suit pickup %d granted %s, want %s (order %v)", k, got, want[k], order)
		}
	}
	if wantSuit && len(order) == 0 {
		t.Fatalf("witness never collects a suit")
	}
}

func checkDocks(t *testing.T, w *world.World, docks world.DockConnections, mode bootstrap.DockMode) {
	t.Helper()
	all := w.NodesOfKind(world.NodeDock)
	switch mode {
	case bootstrap.DockVanilla:
		if len(docks) != 0 {
			t.Fatalf("vanilla docks shuffled: %v", docks)
		}
	case bootstrap.DockTwoWay:
		for _, x := range all {
			if docks[docks[x]] != x {
				t.Fatalf("%s and %s do not lead to each other", w.FullName(x), w.FullName(docks[x]))
			}
		}
	case bootstrap.DockOneWay:
		for _, x := range all {
			to, ok := docks[x]
			if !ok || to == x || w.Node(to).Kind != world.NodeDock {
				t.Fatalf("one-way dock %s leads to %d", w.FullName(x), to)
			}
		}
	}
}

func checkSplit(t *testing.T, w *world.World, pl generator.PlayerLayout) {
	t.Helper()
	for _, idx := range pl.Patches.Assigned() {
		e, _ := pl.Patches.Assignment(idx)
		n, _ := w.PickupNode(idx)
		if e.Category != pickup.CategoryJunk && e.Category.IsMajor() != (w.Node(n).Location == world.LocationMajor) {
			t.Fatalf("%s (%s) placed in %s location %s", e.Name, e.Category, w.Node(n).Location, w.FullName(n))
		}
	}
}

func TestRequirementYAML(t *testing.T) {
	src := `
all:
  - {has: Bombs}
  - any:
      - {has: Missile, amount: 5}
      - {trick: Wall Jump, level: expert}
      - impossible
`
	var def RequirementDef
	if err := yaml.Unmarshal([]byte(src), &def); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	db := resource.NewDatabase()
	bombs, _ := db.Register(resource.KindItem, resource.Info{Name: "Bombs"})
	missile, _ := db.Register(resource.KindItem, resource.Info{Name: "Missile"})
	jump, _ := db.Register(resource.KindTrick, resource.Info{Name: "Wall Jump"})
	req, err := def.Build(db)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	have, _ := resource.CollectionOf(db, resource.Quantity{Resource: bombs, Amount: 1}, resource.Quantity{Resource: missile, Amount: 4})
	if requirement.Satisfied(req, have, nil) {
		t.Fatalf("4 missiles and no tricks should not satisfy")
	}
	if !requirement.Satisfied(req, have, requirement.TrickLevels{jump: requirement.LevelExpert}) {
		t.Fatalf("expert wall jump should satisfy")
	}

	out, err := yaml.Marshal(def)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again RequirementDef
	if err := yaml.Unmarshal(out, &again); err != nil {
		t.Fatalf("unmarshal again: %v", err)
	}
	req2, err := again.Build(db)
	if err != nil {
		t.Fatalf("Build again: %v", err)
	}
	if requirement.Describe(req, db) != requirement.Describe(req2, db) {
		t.Fatalf("round trip changed requirement:\n%s\n%s", requirement.Describe(req, db), requirement.Describe(req2, db))
	}
}

func TestRequirementUnknownNameSuggests(t *testing.T) {
	var def RequirementDef
	if err := yaml.Unmarshal([]byte(`{has: Bomb}`), &def); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	db := resource.NewDatabase()
	_, _ = db.Register(resource.KindItem, resource.Info{Name: "Bombs"})
	_, err := def.Build(db)
	if !errors.Is(err, resource.ErrNotFound) || !strings.Contains(err.Error(), "Bombs") {
		t.Fatalf("expected suggestion for Bombs, got %v", err)
	}
}

func TestLoadRejectsBrokenDefinitions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no id", "name: x", "no id"},
		{"bad target", `
id: t
goal: trivial
starting_locations: [R/A/Start]
regions:
  - name: R
    areas:
      - name: A
        nodes:
          - {name: Start}
          - {name: Door, kind: dock, target: R/B/Nowhere}
`, "unknown target"},
		{"bad start", `
id: t
goal: trivial
starting_locations: [R/A/Elsewhere]
regions:
  - name: R
    areas:
      - name: A
        nodes: [{name: Start}]
`, "unknown starting location"},
		{"bad kind", `
id: t
goal: trivial
regions:
  - name: R
    areas:
      - name: A
        nodes: [{name: Start, kind: portal}]
`, "unknown node kind"},
	}
	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.src), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q error, got %v", tt.want, err)
			}
		})
	}
}

func TestParseNodeKind(t *testing.T) {
	for _, k := range []world.NodeKind{world.NodeGeneric, world.NodePickup, world.NodeEvent, world.NodeDock, world.NodeTeleporter} {
		got, err := parseNodeKind(strings.ToUpper(k.String()))
		if err != nil || got != k {
			t.Errorf("parseNodeKind(%s) = %v, %v", k, got, err)
		}
	}
}
