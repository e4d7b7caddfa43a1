package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gravitas-games/seedforge/internal/bootstrap"
	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resource"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "generator.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "generator:\n  attempts: 3\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generator.Attempts != 3 || cfg.Generator.Seed != nil {
		t.Fatalf("generator = %+v", cfg.Generator)
	}
	if cfg.Generator.Timeout != 2*time.Minute || cfg.Generator.ResolverTimeout != 30*time.Second {
		t.Fatalf("timeouts = %v, %v", cfg.Generator.Timeout, cfg.Generator.ResolverTimeout)
	}
	if cfg.Generator.Weights.ProgressionBase != 1 {
		t.Fatalf("weights = %+v", cfg.Generator.Weights)
	}
	if cfg.Store.Redis.KeyPrefix != "seedforge:layout:" || cfg.Output.Path != "layout.json" {
		t.Fatalf("store/output defaults not applied: %+v %+v", cfg.Store, cfg.Output)
	}
	if len(cfg.Players) != 1 || cfg.Players[0].Game != "demo" {
		t.Fatalf("players = %+v", cfg.Players)
	}
}

func TestLoadParsesDurationsAndPlayers(t *testing.T) {
	src := `
generator:
  seed: 42
  timeout: 45s
  resolver_timeout: 5s
  weights: {progression_base: 2, per_unlock: 3, location_base: 1, newness: 0}
store:
  redis: {address: "localhost:6379", ttl: 1h}
players:
  - game: demo
    dock_shuffle: two-way
    starting_location: random
    trick_levels: {Wall Jump: expert}
    starting_items: [{name: Missile, amount: 5}]
`
	cfg, err := Load(writeConfig(t, src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generator.SeedOrNow(time.Now()) != 42 {
		t.Fatalf("seed = %v", cfg.Generator.Seed)
	}
	if cfg.Generator.Timeout != 45*time.Second || cfg.Store.Redis.TTL != time.Hour {
		t.Fatalf("durations = %v, %v", cfg.Generator.Timeout, cfg.Store.Redis.TTL)
	}
	if cfg.Generator.Weights.PerUnlock != 3 {
		t.Fatalf("weights = %+v", cfg.Generator.Weights)
	}

	db := resource.NewDatabase()
	missile, _ := db.Register(resource.KindItem, resource.Info{Name: "Missile"})
	jump, _ := db.Register(resource.KindTrick, resource.Info{Name: "Wall Jump"})
	s, err := cfg.Players[0].Settings(db)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s.DockShuffle != bootstrap.DockTwoWay || s.StartingLocation != bootstrap.StartRandom {
		t.Fatalf("modes = %+v", s)
	}
	if s.Tricks.Get(jump) != requirement.LevelExpert {
		t.Fatalf("tricks = %v", s.Tricks)
	}
	if len(s.StartingItems) != 1 || s.StartingItems[0].Resource != missile || s.StartingItems[0].Amount != 5 {
		t.Fatalf("starting items = %+v", s.StartingItems)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	src := `
generator:
  attempts: -1
players:
  - dock_shuffle: sideways
    trick_levels: {Wall Jump: godlike}
`
	_, err := Load(writeConfig(t, src))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"attempts", "sideways", "godlike"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestSettingsUnknownTrick(t *testing.T) {
	db := resource.NewDatabase()
	_, _ = db.Register(resource.KindTrick, resource.Info{Name: "Wall Jump"})
	_, err := PlayerConfig{TrickLevels: map[string]string{"Wall Jmp": "beginner"}}.Settings(db)
	if !errors.Is(err, resource.ErrNotFound) {
		t.Fatalf("expected resource.ErrNotFound, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}
