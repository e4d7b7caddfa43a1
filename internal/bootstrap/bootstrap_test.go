package bootstrap

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/gravitas-games/seedforge/internal/pickup"
	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/world"
)

func stubGame(id string) Game {
	return Game{
		ID:        id,
		Name:      strings.ToUpper(id),
		LoadWorld: func() (*world.World, error) { return nil, nil },
		Pool: PoolCreatorFunc(func(*rand.Rand, Settings, *world.World) (pickup.Pool, error) {
			return pickup.Pool{}, nil
		}),
		Goal:              func(*world.World) (requirement.Requirement, error) { return requirement.Trivial(), nil },
		StartingLocations: func(*world.World) []world.NodeIndex { return []world.NodeIndex{0} },
	}
}

func TestRegistryGetIsCaseInsensitive(t *testing.T) {
	r := NewRegistry(stubGame("prime"))
	g, err := r.Get("  Prime ")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if g.Name != "PRIME" {
		t.Fatalf("got %+v", g)
	}
}

func TestRegistryRejectsDuplicatesAndIncompleteGames(t *testing.T) {
	r := NewRegistry(stubGame("prime"))
	if err := r.Register(stubGame("PRIME")); !errors.Is(err, ErrDuplicateGame) {
		t.Fatalf("expected ErrDuplicateGame, got %v", err)
	}
	g := stubGame("echoes")
	g.Pool = nil
	if err := r.Register(g); err == nil || !strings.Contains(err.Error(), "missing pool creator") {
		t.Fatalf("expected missing pool creator error, got %v", err)
	}
	if ids := r.IDs(); len(ids) != 1 || ids[0] != "prime" {
		t.Fatalf("IDs = %v", ids)
	}
}

func TestRegistrySuggestsCloseIDs(t *testing.T) {
	r := NewRegistry(stubGame("prime"), stubGame("dread"))
	_, err := r.Get("prim")
	if !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "prime"`) {
		t.Fatalf("missing suggestion: %v", err)
	}
	if _, err := r.Get("zzzzzzzz"); err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("unexpected suggestion: %v", err)
	}
}

func TestParseModes(t *testing.T) {
	tests := []struct {
		in   string
		want DockMode
		ok   bool
	}{
		{"", DockVanilla, true},
		{"Two-Way", DockTwoWay, true},
		{"one-way", DockOneWay, true},
		{"sideways", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseDockMode(tt.in)
		if (err == nil) != tt.ok || (tt.ok && got != tt.want) {
			t.Errorf("ParseDockMode(%q) = %v, %v", tt.in, got, err)
		}
	}
	if m, err := ParseStartMode("random"); err != nil || m != StartRandom {
		t.Errorf("ParseStartMode(random) = %v, %v", m, err)
	}
	if _, err := ParseStartMode("anywhere"); err == nil {
		t.Errorf("expected error for unknown start mode")
	}
}
