package resolver

import (
	"sort"
	"strconv"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/gravitas-games/seedforge/internal/patches"
	"github.com/gravitas-games/seedforge/internal/pickup"
	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/world"
)

// State is the unit of search: where the player stands and what they hold.
type State struct {
	Node      world.NodeIndex
	Resources *resource.Collection
}

// Key identifies a state for deduplication.
func (s State) Key() string {
	return strconv.Itoa(int(s.Node)) + "|" + s.Resources.Key()
}

// ActionKind tells what a witness step did.
type ActionKind int

const (
	ActionPickup ActionKind = iota // collected the pickup in a slot
	ActionEvent                    // triggered an event node
)

func (k ActionKind) String() string {
	if k == ActionEvent {
		return "event"
	}
	return "pickup"
}

// Step is one resource-granting action of the witness. State holds the
// action node and the resources held just before the action; Path leads
// from the starting location to the node using only connections satisfied
// by those resources. Path is nil when the resolver ran without paths.
type Step struct {
	Kind   ActionKind
	State  State
	Pickup world.PickupIndex
	Entry  pickup.Entry
	Gained []resource.Quantity
	Path   []world.NodeIndex
}

// Reach is the fixed point of one exploration.
type Reach struct {
	// Nodes are reachable from the starting location with Resources.
	Nodes mapset.Set[world.NodeIndex]
	// Resources is the collection at the fixed point.
	Resources *resource.Collection
	// Collected are the pickup and event nodes whose gains are in Resources.
	Collected mapset.Set[world.NodeIndex]
	// Steps is the witness, in the order actions were taken.
	Steps []Step
	// Passes counts saturation passes, the last one adding nothing.
	Passes int
	// Aborted is set when the context ended before the fixed point.
	Aborted bool

	world   *world.World
	patches *patches.GamePatches
}

// Reachable reports whether n is reachable at the fixed point.
func (r *Reach) Reachable(n world.NodeIndex) bool {
	return r.Nodes.Has(n)
}

// ReachableNodes returns the reachable nodes in ascending order.
func (r *Reach) ReachableNodes() []world.NodeIndex {
	return sortedNodes(r.Nodes)
}

// AvailableLocations returns the reachable pickup slots that have no
// assignment yet, in ascending order. These are the legal targets for the
// next placement.
func (r *Reach) AvailableLocations() []world.PickupIndex {
	var out []world.PickupIndex
	for _, n := range r.ReachableNodes() {
		node := r.world.Node(n)
		if node.Kind == world.NodePickup && !r.patches.IsAssigned(node.Pickup) {
			out = append(out, node.Pickup)
		}
	}
	return out
}

// ReachableLocations returns every reachable pickup slot, assigned or not.
func (r *Reach) ReachableLocations() []world.PickupIndex {
	var out []world.PickupIndex
	for _, n := range r.ReachableNodes() {
		if node := r.world.Node(n); node.Kind == world.NodePickup {
			out = append(out, node.Pickup)
		}
	}
	return out
}

// Key is a canonical fingerprint of the fixed point.
func (r *Reach) Key() string {
	nodes := r.ReachableNodes()
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = strconv.Itoa(int(n))
	}
	return strings.Join(parts, ",") + "|" + r.Resources.Key()
}

func sortedNodes(s mapset.Set[world.NodeIndex]) []world.NodeIndex {
	out := make([]world.NodeIndex, 0, s.Size())
	s.Each(func(n world.NodeIndex) {
		out = append(out, n)
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
