// Package resolver decides whether a (possibly partial) set of patches lets
// the player reach a goal. It runs a forward fixed-point search: flood the
// graph with the current resources, collect everything newly reachable,
// repeat until a pass adds nothing. Resources only grow, so the search
// terminates and never needs to backtrack.
//
// The resolver assumes the player can always return to the starting
// location; every witness path therefore starts there.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/gravitas-games/seedforge/internal/patches"
	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/world"
)

// Resolver explores one world under one set of patches. The patches are
// read, never written.
type Resolver struct {
	world   *world.World
	patches *patches.GamePatches
	tricks  requirement.TrickLevels
}

// New creates a resolver for w and p with the given trick configuration.
func New(w *world.World, p *patches.GamePatches, tricks requirement.TrickLevels) *Resolver {
	return &Resolver{world: w, patches: p, tricks: tricks}
}

// Result answers a goal query.
type Result struct {
	Reached bool
	Reach   *Reach
}

// Explore runs the search to its fixed point without computing witness
// paths. It is the cheap query the generator uses between placements.
func (r *Resolver) Explore(ctx context.Context) *Reach {
	return r.explore(ctx, nil, false)
}

// ExploreWith explores as if extra had been granted at the start.
func (r *Resolver) ExploreWith(ctx context.Context, extra []resource.Quantity) *Reach {
	return r.explore(ctx, extra, false)
}

// Resolve runs the full search with witness paths and reports whether goal
// holds at the fixed point. An unreached goal is a normal result.
func (r *Resolver) Resolve(ctx context.Context, goal requirement.Requirement) Result {
	reach := r.explore(ctx, nil, true)
	return Result{
		Reached: !reach.Aborted && requirement.Satisfied(goal, reach.Resources, r.tricks),
		Reach:   reach,
	}
}

// Satisfies reports whether goal holds for reach under the resolver's tricks.
func (r *Resolver) Satisfies(reach *Reach, goal requirement.Requirement) bool {
	return requirement.Satisfied(goal, reach.Resources, r.tricks)
}

// Expired reports whether ctx is done or its deadline has already passed,
// even if the context's timer has not fired yet.
func Expired(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	d, ok := ctx.Deadline()
	return ok && !time.Now().Before(d)
}

func (r *Resolver) explore(ctx context.Context, extra []resource.Quantity, withPaths bool) *Reach {
	w := r.world
	have := resource.NewCollection(w.Resources)
	have.Merge(r.patches.StartingResources)
	for _, q := range extra {
		_ = have.Add(q.Resource, q.Amount) // negative extras are ignored
	}

	reach := &Reach{
		Resources: have,
		Collected: mapset.New[world.NodeIndex](),
		world:     w,
		patches:   r.patches,
	}
	start := r.patches.StartingLocation
	if w.Node(start) == nil {
		reach.Nodes = mapset.New[world.NodeIndex]()
		return reach
	}

	for {
		if Expired(ctx) {
			reach.Aborted = true
			break
		}
		reach.Passes++
		reach.Nodes = r.flood(start, have)

		progress := false
		for _, n := range sortedNodes(reach.Nodes) {
			if reach.Collected.Has(n) {
				continue
			}
			step, ok := r.action(n, have)
			if !ok {
				continue
			}
			if withPaths {
				step.Path = world.ShortestPath(w, r.patches.Docks, start, n, r.passable(step.State.Resources))
			}
			_, _ = have.AddAll(step.Gained) // gains are never negative
			reach.Collected.Put(n)
			reach.Steps = append(reach.Steps, step)
			progress = true
		}
		if !progress {
			break
		}
	}
	return reach
}

// action returns the step taken at node n with resources have, if any.
func (r *Resolver) action(n world.NodeIndex, have *resource.Collection) (Step, bool) {
	node := r.world.Node(n)
	switch node.Kind {
	case world.NodePickup:
		entry, ok := r.patches.Assignment(node.Pickup)
		if !ok {
			return Step{}, false
		}
		return Step{
			Kind:   ActionPickup,
			State:  State{Node: n, Resources: have.Copy()},
			Pickup: node.Pickup,
			Entry:  entry,
			Gained: entry.Gain(have),
		}, true
	case world.NodeEvent:
		if !requirement.Satisfied(node.Requirement, have, r.tricks) {
			return Step{}, false
		}
		return Step{
			Kind:   ActionEvent,
			State:  State{Node: n, Resources: have.Copy()},
			Gained: []resource.Quantity{{Resource: node.Event, Amount: 1}},
		}, true
	}
	return Step{}, false
}

func (r *Resolver) passable(have *resource.Collection) func(world.NodeIndex, world.Connection) bool {
	return func(_ world.NodeIndex, c world.Connection) bool {
		return requirement.Satisfied(c.Requirement, have, r.tricks)
	}
}

// flood returns every node reachable from start over satisfied connections.
func (r *Resolver) flood(start world.NodeIndex, have *resource.Collection) mapset.Set[world.NodeIndex] {
	reachable := mapset.New[world.NodeIndex]()
	queue := []world.NodeIndex{start}
	reachable.Put(start)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, c := range r.world.Edges(current, r.patches.Docks) {
			if reachable.Has(c.To) || !requirement.Satisfied(c.Requirement, have, r.tricks) {
				continue
			}
			reachable.Put(c.To)
			queue = append(queue, c.To)
		}
	}
	return reachable
}

// Replay independently re-checks a witness: every path must start at the
// starting location, end at the step's node and only cross connections
// satisfied by the step's resources; every event must have its requirement
// met; and every recorded gain must match what the node actually grants.
func Replay(w *world.World, p *patches.GamePatches, tricks requirement.TrickLevels, steps []Step) error {
	have := resource.NewCollection(w.Resources)
	have.Merge(p.StartingResources)
	seen := make(map[string]bool, len(steps))
	for i, step := range steps {
		if !step.State.Resources.Equal(have) {
			return fmt.Errorf("resolver: step %d: recorded resources %s, replay has %s",
				i, step.State.Resources.Describe(), have.Describe())
		}
		if key := step.State.Key(); seen[key] {
			return fmt.Errorf("resolver: step %d repeats state %s", i, key)
		} else {
			seen[key] = true
		}
		if err := replayPath(w, p, tricks, have, step); err != nil {
			return fmt.Errorf("resolver: step %d: %w", i, err)
		}
		node := w.Node(step.State.Node)
		var gain []resource.Quantity
		switch step.Kind {
		case ActionEvent:
			if node.Kind != world.NodeEvent {
				return fmt.Errorf("resolver: step %d: %s is not an event", i, w.FullName(node.Index))
			}
			if !requirement.Satisfied(node.Requirement, have, tricks) {
				return fmt.Errorf("resolver: step %d: event %s requirement unmet", i, w.FullName(node.Index))
			}
			gain = []resource.Quantity{{Resource: node.Event, Amount: 1}}
		case ActionPickup:
			entry, ok := p.Assignment(step.Pickup)
			if !ok || node.Kind != world.NodePickup || node.Pickup != step.Pickup {
				return fmt.Errorf("resolver: step %d: no pickup %d at %s", i, step.Pickup, w.FullName(node.Index))
			}
			if entry.Name != step.Entry.Name {
				return fmt.Errorf("resolver: step %d: slot holds %q, step collected %q", i, entry.Name, step.Entry.Name)
			}
			gain = entry.Gain(have)
		default:
			return fmt.Errorf("resolver: step %d: unknown action %d", i, step.Kind)
		}
		if !sameQuantities(gain, step.Gained) {
			return fmt.Errorf("resolver: step %d: recorded gains %v, %s grants %v",
				i, step.Gained, w.FullName(node.Index), gain)
		}
		if _, err := have.AddAll(gain); err != nil {
			return fmt.Errorf("resolver: step %d: %w", i, err)
		}
	}
	return nil
}

func sameQuantities(a, b []resource.Quantity) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func replayPath(w *world.World, p *patches.GamePatches, tricks requirement.TrickLevels, have *resource.Collection, step Step) error {
	path := step.Path
	if len(path) == 0 {
		return fmt.Errorf("missing path to %s", w.FullName(step.State.Node))
	}
	if path[0] != p.StartingLocation || path[len(path)-1] != step.State.Node {
		return fmt.Errorf("path %d..%d does not lead from start to %s", path[0], path[len(path)-1], w.FullName(step.State.Node))
	}
	for j := 1; j < len(path); j++ {
		crossed := false
		for _, c := range w.Edges(path[j-1], p.Docks) {
			if c.To == path[j] && requirement.Satisfied(c.Requirement, have, tricks) {
				crossed = true
				break
			}
		}
		if !crossed {
			return fmt.Errorf("cannot move %s -> %s", w.FullName(path[j-1]), w.FullName(path[j]))
		}
	}
	return nil
}
