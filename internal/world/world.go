package world

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resource"
)

// World is the full region list. It is immutable once built and safe to
// share between concurrent generations.
type World struct {
	Name      string
	Resources *resource.Database
	Regions   []Region
	Areas     []Area
	Nodes     []Node

	pickups map[PickupIndex]NodeIndex
	byName  map[string]NodeIndex
}

// Node returns the node at idx, or nil when out of range.
func (w *World) Node(idx NodeIndex) *Node {
	if idx < 0 || int(idx) >= len(w.Nodes) {
		return nil
	}
	return &w.Nodes[idx]
}

// FullName returns "Region/Area/Node" for idx.
func (w *World) FullName(idx NodeIndex) string {
	n := w.Node(idx)
	if n == nil {
		return fmt.Sprintf("node#%d", idx)
	}
	return fullName(w.Regions[n.Region].Name, w.Areas[n.Area].Name, n.Name)
}

func fullName(region, area, node string) string {
	return region + "/" + area + "/" + node
}

// Lookup resolves a "Region/Area/Node" identifier.
func (w *World) Lookup(name string) (NodeIndex, bool) {
	idx, ok := w.byName[strings.TrimSpace(name)]
	return idx, ok
}

// MustLookup resolves a node identifier, or panics.
func (w *World) MustLookup(name string) NodeIndex {
	idx, ok := w.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("world: no node named %q", name))
	}
	return idx
}

// PickupNode returns the node holding the given pickup slot.
func (w *World) PickupNode(p PickupIndex) (NodeIndex, bool) {
	idx, ok := w.pickups[p]
	return idx, ok
}

// PickupIndices returns every pickup slot in ascending order.
func (w *World) PickupIndices() []PickupIndex {
	out := make([]PickupIndex, 0, len(w.pickups))
	for p := range w.pickups {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PickupCount returns the number of pickup slots.
func (w *World) PickupCount() int {
	return len(w.pickups)
}

// NodesOfKind returns the indices of all nodes of kind, in arena order.
func (w *World) NodesOfKind(kind NodeKind) []NodeIndex {
	var out []NodeIndex
	for i := range w.Nodes {
		if w.Nodes[i].Kind == kind {
			out = append(out, NodeIndex(i))
		}
	}
	return out
}

// Target returns where a connector node leads given the overlay docks,
// falling back to its default target.
func (w *World) Target(idx NodeIndex, docks DockConnections) NodeIndex {
	if t, ok := docks[idx]; ok {
		return t
	}
	if n := w.Node(idx); n != nil && n.Kind.IsConnector() {
		return n.DefaultTarget
	}
	return NoNode
}

// Edges returns the outgoing connections of idx: the area's local
// connections plus, for docks and teleporters, the crossing to their target
// gated by the node's own requirement.
func (w *World) Edges(idx NodeIndex, docks DockConnections) []Connection {
	n := w.Node(idx)
	if n == nil {
		return nil
	}
	local := w.AreaOf(idx).Connections[idx]
	if !n.Kind.IsConnector() {
		return local
	}
	target := w.Target(idx, docks)
	if target == NoNode {
		return local
	}
	out := make([]Connection, 0, len(local)+1)
	out = append(out, local...)
	req := n.Requirement
	if req == nil {
		req = requirement.Trivial()
	}
	return append(out, Connection{To: target, Requirement: req})
}

// AreaOf returns the area containing idx.
func (w *World) AreaOf(idx NodeIndex) *Area {
	n := w.Node(idx)
	if n == nil {
		return nil
	}
	return &w.Areas[n.Area]
}
