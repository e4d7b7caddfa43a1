package generator

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/samber/lo"

	"github.com/gravitas-games/seedforge/internal/patches"
	"github.com/gravitas-games/seedforge/internal/pickup"
	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resolver"
	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/world"
)

// placer holds the state of one player's attempt.
type placer struct {
	gen      *Generator
	rng      *rand.Rand
	world    *world.World
	goal     requirement.Requirement
	split    bool
	patches  *patches.GamePatches
	resolver *resolver.Resolver
	junk     pickup.Entry

	progression []pickup.Entry
	rest        []pickup.Entry
	total       int
	placed      int
	firstSeen   map[world.PickupIndex]int
	player      int
	attempt     int
}

func newPlacer(g *Generator, rng *rand.Rand, in PlayerInput, p *patches.GamePatches, pool pickup.Pool, attempt int) *placer {
	pl := &placer{
		gen:       g,
		rng:       rng,
		world:     in.World,
		goal:      in.Goal,
		split:     in.Settings.MajorMinorSplit,
		patches:   p,
		resolver:  resolver.New(in.World, p, in.Settings.Tricks),
		junk:      pool.Junk,
		total:     len(pool.Pickups),
		firstSeen: make(map[world.PickupIndex]int),
		player:    p.Player,
		attempt:   attempt,
	}
	if pl.junk.Name == "" {
		pl.junk = pickup.Nothing()
	}
	referenced := referencedResources(in.World, in.Goal)
	for _, e := range pool.Pickups {
		if isProgression(e, referenced) {
			pl.progression = append(pl.progression, e)
		} else {
			pl.rest = append(pl.rest, e)
		}
	}
	return pl
}

// referencedResources returns every resource some requirement of w or the
// goal mentions.
func referencedResources(w *world.World, goal requirement.Requirement) map[resource.Index]bool {
	out := make(map[resource.Index]bool)
	add := func(req requirement.Requirement) {
		for _, idx := range requirement.Resources(req) {
			out[idx] = true
		}
	}
	add(goal)
	for i := range w.Nodes {
		add(w.Nodes[i].Requirement)
	}
	for i := range w.Areas {
		for _, conns := range w.Areas[i].Connections {
			for _, c := range conns {
				add(c.Requirement)
			}
		}
	}
	return out
}

func isProgression(e pickup.Entry, referenced map[resource.Index]bool) bool {
	for _, idx := range e.Grants() {
		if referenced[idx] {
			return true
		}
	}
	return false
}

// progressionPhase places progression pickups one at a time into reachable
// locations until none are left, or the goal is met and no reachable
// location can take one. Leftovers go to the fill phase.
func (pl *placer) progressionPhase(ctx context.Context) (AttemptOutcome, error) {
	for len(pl.progression) > 0 {
		if resolver.Expired(ctx) {
			return 0, abortErr(ctx)
		}
		reach := pl.resolver.Explore(ctx)
		if reach.Aborted {
			return 0, abortErr(ctx)
		}
		goalMet := pl.resolver.Satisfies(reach, pl.goal)
		available := reach.AvailableLocations()
		for _, loc := range available {
			if _, seen := pl.firstSeen[loc]; !seen {
				pl.firstSeen[loc] = pl.placed
			}
		}

		candidates, locations := pl.candidates(available)
		if len(candidates) == 0 {
			if goalMet {
				break
			}
			return OutcomeStuck, nil
		}
		weights, err := pl.pickupWeights(ctx, reach, candidates)
		if err != nil {
			return 0, err
		}
		choice := candidates[weightedPick(pl.rng, weights)]
		entry := pl.progression[choice]
		loc := pl.pickLocation(locations[entry.Category.IsMajor()])
		if err := pl.patches.Assign(loc, entry); err != nil {
			return 0, err
		}
		pl.progression = append(pl.progression[:choice], pl.progression[choice+1:]...)
		pl.placed++
		pl.gen.bus.Publish(Event{
			Type:    EventPlacement,
			Player:  pl.player,
			Attempt: pl.attempt,
			Percent: 100 * float64(pl.placed) / float64(pl.total),
			Message: entry.Name + " at " + pl.world.FullName(pl.locationNode(loc)),
		})
	}
	pl.rest = append(pl.rest, pl.progression...)
	pl.progression = nil
	return OutcomeSuccess, nil
}

// candidates returns the progression pickups that have somewhere to go, and
// the available locations keyed by whether they suit major pickups.
func (pl *placer) candidates(available []world.PickupIndex) ([]int, map[bool][]world.PickupIndex) {
	locations := make(map[bool][]world.PickupIndex, 2)
	for _, loc := range available {
		if !pl.split {
			locations[true] = append(locations[true], loc)
			locations[false] = append(locations[false], loc)
			continue
		}
		major := pl.isMajorLocation(loc)
		locations[major] = append(locations[major], loc)
	}
	var out []int
	for i, e := range pl.progression {
		if len(locations[e.Category.IsMajor()]) > 0 {
			out = append(out, i)
		}
	}
	return out, locations
}

// pickupWeights weights each candidate by how many nodes it would open up.
// When no candidate opens anything they all weigh the same.
func (pl *placer) pickupWeights(ctx context.Context, reach *resolver.Reach, candidates []int) ([]float64, error) {
	w := pl.gen.opts.Weights
	base := reach.Nodes.Size()
	goalMet := pl.resolver.Satisfies(reach, pl.goal)
	byName := make(map[string]int)
	unlocks := make([]int, len(candidates))
	anyUnlock := false
	for j, i := range candidates {
		e := pl.progression[i]
		u, ok := byName[e.Name]
		if !ok {
			more := pl.resolver.ExploreWith(ctx, e.Gain(reach.Resources))
			if more.Aborted {
				return nil, abortErr(ctx)
			}
			u = more.Nodes.Size() - base
			if !goalMet && pl.resolver.Satisfies(more, pl.goal) {
				u++
			}
			byName[e.Name] = u
		}
		unlocks[j] = u
		if u > 0 {
			anyUnlock = true
		}
	}
	weights := make([]float64, len(candidates))
	for j, u := range unlocks {
		switch {
		case !anyUnlock:
			weights[j] = w.ProgressionBase
		case u > 0:
			weights[j] = w.ProgressionBase + w.PerUnlock*float64(u)
		}
	}
	return weights, nil
}

// pickLocation favours locations that became reachable recently.
func (pl *placer) pickLocation(locations []world.PickupIndex) world.PickupIndex {
	w := pl.gen.opts.Weights
	weights := make([]float64, len(locations))
	for i, loc := range locations {
		weights[i] = w.LocationBase + w.Newness*float64(pl.firstSeen[loc])
	}
	return locations[weightedPick(pl.rng, weights)]
}

// fillPhase shuffles the remaining pickups into the free locations and puts
// junk everywhere else, so every location ends up assigned. With the
// major/minor split a pickup that finds no free location of its own kind
// leaves the attempt stuck.
func (pl *placer) fillPhase() (AttemptOutcome, error) {
	free := lo.Filter(pl.world.PickupIndices(), func(idx world.PickupIndex, _ int) bool {
		return !pl.patches.IsAssigned(idx)
	})
	items := pl.rest
	pl.rest = nil
	pl.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	pl.rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	for _, e := range items {
		slot := -1
		for i, loc := range free {
			if !pl.split || pl.isMajorLocation(loc) == e.Category.IsMajor() {
				slot = i
				break
			}
		}
		if slot < 0 {
			return OutcomeStuck, nil
		}
		if err := pl.patches.Assign(free[slot], e); err != nil {
			return 0, err
		}
		free = append(free[:slot], free[slot+1:]...)
	}
	for _, loc := range free {
		if err := pl.patches.Assign(loc, pl.junk); err != nil {
			return 0, err
		}
	}
	return OutcomeSuccess, nil
}

func (pl *placer) isMajorLocation(loc world.PickupIndex) bool {
	return pl.world.Node(pl.locationNode(loc)).Location == world.LocationMajor
}

func (pl *placer) locationNode(loc world.PickupIndex) world.NodeIndex {
	n, _ := pl.world.PickupNode(loc)
	return n
}

func sortedFixed(fixed map[world.PickupIndex]pickup.Entry) []world.PickupIndex {
	out := lo.Keys(fixed)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
