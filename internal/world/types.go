// Package world defines the read-only game graph: regions containing areas
// containing nodes. Nodes live in a flat arena addressed by NodeIndex; the
// configurable dock/teleporter targets are kept in a separate overlay so the
// arena never changes after Build.
package world

import (
	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resource"
)

// NodeIndex addresses a node in the world arena.
type NodeIndex int

// NoNode marks an absent node reference.
const NoNode NodeIndex = -1

// PickupIndex is the stable identifier of a pickup slot.
type PickupIndex int

// NodeKind enumerates the node variants.
type NodeKind int

const (
	NodeGeneric    NodeKind = iota // pass-through point
	NodePickup                     // holds one pickup slot
	NodeEvent                      // grants an event resource when triggered
	NodeDock                       // door to another area
	NodeTeleporter                 // elevator/teleporter to another area
)

func (k NodeKind) String() string {
	switch k {
	case NodeGeneric:
		return "generic"
	case NodePickup:
		return "pickup"
	case NodeEvent:
		return "event"
	case NodeDock:
		return "dock"
	case NodeTeleporter:
		return "teleporter"
	default:
		return "unknown"
	}
}

// IsConnector reports whether the node leads to another area.
func (k NodeKind) IsConnector() bool {
	return k == NodeDock || k == NodeTeleporter
}

// LocationCategory splits pickup locations for major/minor placement.
type LocationCategory int

const (
	LocationMajor LocationCategory = iota
	LocationMinor
)

func (c LocationCategory) String() string {
	if c == LocationMinor {
		return "minor"
	}
	return "major"
}

// Node is a point in the world graph.
type Node struct {
	Index  NodeIndex
	Name   string
	Kind   NodeKind
	Area   int
	Region int

	// Pickup and Location are set for NodePickup.
	Pickup   PickupIndex
	Location LocationCategory

	// Event is the resource granted by a NodeEvent.
	Event resource.Index

	// Requirement gates triggering an event or crossing a dock/teleporter.
	// Nil means no extra requirement.
	Requirement requirement.Requirement

	// DefaultTarget is where a dock/teleporter leads in the unshuffled game.
	DefaultTarget NodeIndex
}

// Connection is a directed, requirement-gated edge between two nodes.
type Connection struct {
	To          NodeIndex
	Requirement requirement.Requirement
}

// Area is an ordered set of nodes and the local traversal graph between them.
type Area struct {
	Index       int
	Name        string
	Region      int
	Nodes       []NodeIndex
	Connections map[NodeIndex][]Connection
}

// Region is an ordered set of areas.
type Region struct {
	Index int
	Name  string
	Areas []int
}

// DockConnections overlays dock/teleporter targets on top of the static
// defaults. It maps a connector node to the node it leads to.
type DockConnections map[NodeIndex]NodeIndex

// Copy returns an independent copy of the overlay.
func (d DockConnections) Copy() DockConnections {
	out := make(DockConnections, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
