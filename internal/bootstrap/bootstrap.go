// Package bootstrap is the registry of supported games. Each game supplies
// the capabilities the generator needs: a world loader, a pool creator and a
// victory condition.
package bootstrap

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/gravitas-games/seedforge/internal/pickup"
	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/world"
)

var (
	// ErrUnknownGame is returned when no game is registered under an id.
	ErrUnknownGame = errors.New("bootstrap: unknown game")
	// ErrDuplicateGame is returned when an id is registered twice.
	ErrDuplicateGame = errors.New("bootstrap: game already registered")
)

// StartMode selects how the starting location is chosen.
type StartMode int

const (
	StartVanilla StartMode = iota // the game's first starting location
	StartRandom                   // any of the game's starting locations
)

func (m StartMode) String() string {
	if m == StartRandom {
		return "random"
	}
	return "vanilla"
}

// ParseStartMode is the inverse of StartMode.String. Empty means vanilla.
func ParseStartMode(s string) (StartMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vanilla":
		return StartVanilla, nil
	case "random":
		return StartRandom, nil
	}
	return 0, fmt.Errorf("bootstrap: unknown starting location mode %q", s)
}

// DockMode selects how dock connections are shuffled.
type DockMode int

const (
	DockVanilla DockMode = iota // every dock leads to its default target
	DockTwoWay                  // docks are re-paired, both sides agree
	DockOneWay                  // each dock leads to a random dock
)

var dockModeNames = [...]string{"vanilla", "two-way", "one-way"}

func (m DockMode) String() string {
	if m < 0 || int(m) >= len(dockModeNames) {
		return "unknown"
	}
	return dockModeNames[m]
}

// ParseDockMode is the inverse of DockMode.String. Empty means vanilla.
func ParseDockMode(s string) (DockMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DockVanilla, nil
	}
	for i, name := range dockModeNames {
		if s == name {
			return DockMode(i), nil
		}
	}
	return 0, fmt.Errorf("bootstrap: unknown dock shuffle mode %q", s)
}

// Settings are the per-player generation options.
type Settings struct {
	Tricks           requirement.TrickLevels
	StartingLocation StartMode
	DockShuffle      DockMode
	MajorMinorSplit  bool
	// StartingItems are granted on top of the pool's starting resources.
	StartingItems []resource.Quantity
}

// PoolCreator builds the pickup pool for one player.
type PoolCreator interface {
	CreatePool(rng *rand.Rand, settings Settings, w *world.World) (pickup.Pool, error)
}

// PoolCreatorFunc adapts a function to PoolCreator.
type PoolCreatorFunc func(rng *rand.Rand, settings Settings, w *world.World) (pickup.Pool, error)

// CreatePool calls f.
func (f PoolCreatorFunc) CreatePool(rng *rand.Rand, settings Settings, w *world.World) (pickup.Pool, error) {
	return f(rng, settings, w)
}

// Game bundles the capabilities of one supported game.
type Game struct {
	ID   string
	Name string
	// LoadWorld returns a freshly built world.
	LoadWorld func() (*world.World, error)
	Pool      PoolCreator
	// Goal returns the victory condition for w.
	Goal func(w *world.World) (requirement.Requirement, error)
	// StartingLocations lists the allowed starting nodes, vanilla first.
	StartingLocations func(w *world.World) []world.NodeIndex
}

// Validate reports the capabilities g is missing.
func (g Game) Validate() error {
	var errs []error
	if strings.TrimSpace(g.ID) == "" {
		errs = append(errs, errors.New("missing id"))
	}
	if g.LoadWorld == nil {
		errs = append(errs, errors.New("missing world loader"))
	}
	if g.Pool == nil {
		errs = append(errs, errors.New("missing pool creator"))
	}
	if g.Goal == nil {
		errs = append(errs, errors.New("missing goal"))
	}
	if g.StartingLocations == nil {
		errs = append(errs, errors.New("missing starting locations"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("bootstrap: game %q: %w", g.ID, errors.Join(errs...))
	}
	return nil
}

// Registry maps game ids to games. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Game
}

// NewRegistry creates a registry seeded with games. Invalid or duplicate
// seeds are skipped.
func NewRegistry(games ...Game) *Registry {
	r := &Registry{games: make(map[string]Game, len(games))}
	for _, g := range games {
		_ = r.Register(g)
	}
	return r
}

// Register adds g under its lower-cased id.
func (r *Registry) Register(g Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	key := strings.ToLower(strings.TrimSpace(g.ID))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.games[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateGame, key)
	}
	r.games[key] = g
	return nil
}

// Get returns the game registered under id.
func (r *Registry) Get(id string) (Game, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	r.mu.RLock()
	g, ok := r.games[key]
	r.mu.RUnlock()
	if ok {
		return g, nil
	}
	if s := r.suggest(key); s != "" {
		return Game{}, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownGame, id, s)
	}
	return Game{}, fmt.Errorf("%w: %q", ErrUnknownGame, id)
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.games))
	for id := range r.games {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) suggest(key string) string {
	best, bestDist := "", 3
	for _, id := range r.IDs() {
		if d := levenshtein.ComputeDistance(key, id); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best
}
