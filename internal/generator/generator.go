// Package generator places pickups into world locations by weighted random
// selection constrained by reachability, then asks the resolver to confirm
// the result can be completed. Failed attempts are retried from scratch.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/gravitas-games/seedforge/internal/bootstrap"
	"github.com/gravitas-games/seedforge/internal/patches"
	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resolver"
	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/world"
)

// preflightStream is the PCG stream used to build pools during validation.
// Attempt streams never reach it.
const preflightStream = ^uint64(0)

// Options configure a Generator.
type Options struct {
	// Attempts is the number of retries after the first attempt.
	Attempts int
	// Timeout bounds the whole generation. Zero means no limit.
	Timeout time.Duration
	// ResolverTimeout bounds each final validation. Zero means no limit.
	ResolverTimeout time.Duration
	// Weights tune placement; the zero value means DefaultWeights.
	Weights Weights
	// Events receives progress updates; nil means none.
	Events EventBus
}

// Generator runs generations. It holds no per-generation state and may be
// reused; concurrent Generate calls are independent. Within an attempt the
// players are generated concurrently, so event handlers must be safe for
// concurrent use in multiworld runs.
type Generator struct {
	opts Options
	bus  EventBus
}

// New creates a Generator.
func New(opts Options) *Generator {
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	bus := opts.Events
	if bus == nil {
		bus = NewNullEventBus()
	}
	return &Generator{opts: opts, bus: bus}
}

// PlayerInput is everything needed to generate one player's world.
type PlayerInput struct {
	Game     bootstrap.Game
	World    *world.World
	Goal     requirement.Requirement
	Settings bootstrap.Settings
}

// NewPlayerInput loads game's world and goal.
func NewPlayerInput(game bootstrap.Game, settings bootstrap.Settings) (PlayerInput, error) {
	if err := game.Validate(); err != nil {
		return PlayerInput{}, err
	}
	w, err := game.LoadWorld()
	if err != nil {
		return PlayerInput{}, fmt.Errorf("generator: load %s world: %w", game.ID, err)
	}
	goal, err := game.Goal(w)
	if err != nil {
		return PlayerInput{}, fmt.Errorf("generator: %s goal: %w", game.ID, err)
	}
	return PlayerInput{Game: game, World: w, Goal: goal, Settings: settings}, nil
}

// Input is one generation request. Every player is generated as an
// independent world with its own random stream.
type Input struct {
	Seed    uint64
	Players []PlayerInput
}

// Generate produces a layout whose goal the resolver can reach for every
// player. Errors are *GenerationError values matching one of the package
// sentinels.
func (g *Generator) Generate(ctx context.Context, in Input) (*LayoutDescription, error) {
	if problems := g.preflight(in); len(problems) > 0 {
		return nil, invalidConfiguration(problems, nil)
	}

	runCtx := ctx
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	var last *LayoutDescription
	lastOutcome := OutcomeStuck
	ran := 0
	for attempt := 0; attempt <= g.opts.Attempts; attempt++ {
		if err := interrupted(ctx, runCtx, ran); err != nil {
			return nil, err
		}
		ran++
		log.Printf("generator: seed %d attempt %d/%d", in.Seed, attempt+1, g.opts.Attempts+1)
		g.bus.Publish(Event{Type: EventAttemptStarted, Attempt: attempt})

		layout, outcome, err := g.attempt(runCtx, in, attempt)
		if err != nil {
			if stop := interrupted(ctx, runCtx, ran); stop != nil {
				return nil, stop
			}
			return nil, err
		}
		if outcome == OutcomeSuccess {
			log.Printf("generator: seed %d accepted on attempt %d, hash %s", in.Seed, attempt+1, layout.Hash)
			g.bus.Publish(Event{Type: EventCompleted, Attempt: attempt, Percent: 100, Message: layout.Hash})
			return layout, nil
		}
		log.Printf("generator: seed %d attempt %d %s", in.Seed, attempt+1, outcome)
		g.bus.Publish(Event{Type: EventAttemptFailed, Attempt: attempt, Message: outcome.String()})
		last, lastOutcome = layout, outcome
	}
	kind := ErrImpossibleForSolver
	if lastOutcome == OutcomeTimedOut {
		kind = ErrTimeout
	}
	return nil, &GenerationError{Kind: kind, Attempts: ran, Layout: last}
}

// interrupted maps a finished context to the matching generation error.
func interrupted(ctx, runCtx context.Context, ran int) error {
	if err := ctx.Err(); errors.Is(err, context.Canceled) {
		return &GenerationError{Kind: ErrCancelled, Attempts: ran, Err: err}
	}
	if resolver.Expired(runCtx) {
		return &GenerationError{Kind: ErrTimeout, Attempts: ran, Err: context.DeadlineExceeded}
	}
	return nil
}

// abortErr is the error for a search stopped by ctx.
func abortErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.DeadlineExceeded
}

func playerRNG(seed uint64, attempt, player int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(attempt)<<32|uint64(player)))
}

// attempt generates every player once, concurrently. The layout is
// returned for failed outcomes too; the outcome is that of the first player
// that did not succeed.
func (g *Generator) attempt(ctx context.Context, in Input, attempt int) (*LayoutDescription, AttemptOutcome, error) {
	players := make([]PlayerLayout, len(in.Players))
	outcomes := make([]AttemptOutcome, len(in.Players))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, player := range in.Players {
		i, player := i, player
		eg.Go(func() error {
			pl, o, err := g.generatePlayer(egCtx, playerRNG(in.Seed, attempt, i), i, attempt, player)
			players[i], outcomes[i] = pl, o
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}

	layout := &LayoutDescription{
		ID:          uuid.NewString(),
		Seed:        in.Seed,
		Attempt:     attempt,
		Players:     players,
		GeneratedAt: time.Now().UTC(),
	}
	outcome := OutcomeSuccess
	for _, o := range outcomes {
		if o != OutcomeSuccess {
			outcome = o
			break
		}
	}
	if err := layout.computeHash(); err != nil {
		return nil, 0, err
	}
	return layout, outcome, nil
}

func (g *Generator) generatePlayer(ctx context.Context, rng *rand.Rand, index, attempt int, in PlayerInput) (PlayerLayout, AttemptOutcome, error) {
	w := in.World
	pool, err := in.Game.Pool.CreatePool(rng, in.Settings, w)
	if err != nil {
		return PlayerLayout{}, 0, invalidConfiguration([]string{fmt.Sprintf("player %d: create pool: %v", index, err)}, err)
	}
	start, ok := chooseStart(rng, in.Game, w, in.Settings.StartingLocation)
	if !ok {
		return PlayerLayout{}, 0, invalidConfiguration([]string{fmt.Sprintf("player %d: no starting location", index)}, nil)
	}
	starting, err := resource.CollectionOf(w.Resources, pool.StartingResources...)
	if err == nil {
		_, err = starting.AddAll(in.Settings.StartingItems)
	}
	if err != nil {
		return PlayerLayout{}, 0, invalidConfiguration([]string{fmt.Sprintf("player %d: starting resources: %v", index, err)}, err)
	}

	p := patches.New(index, start, starting)
	p.Docks = shuffleDocks(rng, w, in.Settings.DockShuffle)
	for _, idx := range sortedFixed(pool.Fixed) {
		if err := p.Assign(idx, pool.Fixed[idx]); err != nil {
			return PlayerLayout{}, 0, invalidConfiguration([]string{fmt.Sprintf("player %d: %v", index, err)}, err)
		}
	}
	if free := w.PickupCount() - p.Len(); len(pool.Pickups) > free {
		return PlayerLayout{}, 0, invalidConfiguration([]string{
			fmt.Sprintf("player %d: pool has %d pickups for %d free locations", index, len(pool.Pickups), free),
		}, nil)
	}

	layout := PlayerLayout{Index: index, Game: in.Game.ID, Patches: p, world: w}
	pl := newPlacer(g, rng, in, p, pool, attempt)
	outcome, err := pl.progressionPhase(ctx)
	if err != nil || outcome != OutcomeSuccess {
		return layout, outcome, err
	}
	if outcome, err = pl.fillPhase(); err != nil || outcome != OutcomeSuccess {
		return layout, outcome, err
	}

	rctx := ctx
	if g.opts.ResolverTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, g.opts.ResolverTimeout)
		defer cancel()
	}
	res := pl.resolver.Resolve(rctx, in.Goal)
	if res.Reach.Aborted {
		if resolver.Expired(ctx) {
			return layout, 0, abortErr(ctx)
		}
		return layout, OutcomeTimedOut, nil
	}
	layout.Unreachable = unreachable(w, res.Reach)
	if !res.Reached {
		return layout, OutcomeStuck, nil
	}
	if err := resolver.Replay(w, p, in.Settings.Tricks, res.Reach.Steps); err != nil {
		log.Printf("generator: player %d witness rejected: %v", index, err)
		return layout, OutcomeStuck, nil
	}
	layout.Playthrough = res.Reach.Steps
	return layout, OutcomeSuccess, nil
}

// preflight lists every configuration problem found without searching.
func (g *Generator) preflight(in Input) []string {
	var problems []string
	if g.opts.Attempts < 0 {
		problems = append(problems, fmt.Sprintf("attempts must not be negative, got %d", g.opts.Attempts))
	}
	if err := g.opts.Weights.Validate(); err != nil {
		problems = append(problems, "weights: "+err.Error())
	}
	if len(in.Players) == 0 {
		problems = append(problems, "no players")
	}
	for i, player := range in.Players {
		problems = append(problems, preflightPlayer(in.Seed, i, player)...)
	}
	return problems
}

func preflightPlayer(seed uint64, index int, in PlayerInput) []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf("player %d: ", index)+fmt.Sprintf(format, args...))
	}
	if err := in.Game.Validate(); err != nil {
		add("%v", err)
		return problems
	}
	w := in.World
	if w == nil {
		add("no world")
		return problems
	}
	db := w.Resources

	starts := in.Game.StartingLocations(w)
	if len(starts) == 0 {
		add("no starting location")
	}
	for _, s := range starts {
		if w.Node(s) == nil {
			add("starting location %d does not exist", s)
		}
	}
	tricks := lo.Keys(in.Settings.Tricks)
	sort.Slice(tricks, func(i, j int) bool { return tricks[i] < tricks[j] })
	for _, idx := range tricks {
		if info, ok := db.Get(idx); !ok || info.Kind != resource.KindTrick {
			add("trick level set for %s, which is not a trick", db.Name(idx))
		}
	}
	for _, q := range in.Settings.StartingItems {
		if _, ok := db.Get(q.Resource); !ok || q.Amount < 0 {
			add("invalid starting item %s x%d", db.Name(q.Resource), q.Amount)
		}
	}

	pool, err := in.Game.Pool.CreatePool(rand.New(rand.NewPCG(seed, preflightStream)), in.Settings, w)
	if err != nil {
		add("create pool: %v", err)
		return problems
	}
	for _, idx := range sortedFixed(pool.Fixed) {
		if _, ok := w.PickupNode(idx); !ok {
			add("fixed pickup %q names missing location %d", pool.Fixed[idx].Name, idx)
		}
	}
	if free := w.PickupCount() - len(pool.Fixed); len(pool.Pickups) > free {
		add("pool has %d pickups for %d free locations", len(pool.Pickups), free)
	}
	if in.Settings.MajorMinorSplit {
		freeSlots := map[bool]int{}
		for _, idx := range w.PickupIndices() {
			if _, fixed := pool.Fixed[idx]; fixed {
				continue
			}
			if n, ok := w.PickupNode(idx); ok {
				freeSlots[w.Node(n).Location == world.LocationMajor]++
			}
		}
		pickups := map[bool]int{}
		for _, e := range pool.Pickups {
			pickups[e.Category.IsMajor()]++
		}
		for _, major := range []bool{true, false} {
			if pickups[major] > freeSlots[major] {
				kind := "minor"
				if major {
					kind = "major"
				}
				add("pool has %d %s pickups for %d free %s locations", pickups[major], kind, freeSlots[major], kind)
			}
		}
	}
	return problems
}

// unreachable lists the pickup slots reach never got to.
func unreachable(w *world.World, reach *resolver.Reach) []world.PickupIndex {
	seen := make(map[world.PickupIndex]bool)
	for _, idx := range reach.ReachableLocations() {
		seen[idx] = true
	}
	return lo.Filter(w.PickupIndices(), func(idx world.PickupIndex, _ int) bool {
		return !seen[idx]
	})
}
