package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resource"
)

// Builder assembles a World. Indices returned by the Add methods are stable
// and become the arena indices of the built world.
type Builder struct {
	w   *World
	err error
}

// NewBuilder starts an empty world backed by db.
func NewBuilder(name string, db *resource.Database) *Builder {
	if db == nil {
		db = resource.NewDatabase()
	}
	return &Builder{w: &World{
		Name:      name,
		Resources: db,
		pickups:   make(map[PickupIndex]NodeIndex),
		byName:    make(map[string]NodeIndex),
	}}
}

// Resources returns the database the world is built against.
func (b *Builder) Resources() *resource.Database {
	return b.w.Resources
}

// AddRegion appends a region and returns its index.
func (b *Builder) AddRegion(name string) int {
	idx := len(b.w.Regions)
	b.w.Regions = append(b.w.Regions, Region{Index: idx, Name: strings.TrimSpace(name)})
	return idx
}

// AddArea appends an area to region and returns its index.
func (b *Builder) AddArea(region int, name string) int {
	if region < 0 || region >= len(b.w.Regions) {
		b.fail(fmt.Errorf("world: area %q added to unknown region %d", name, region))
		return -1
	}
	idx := len(b.w.Areas)
	b.w.Areas = append(b.w.Areas, Area{
		Index:       idx,
		Name:        strings.TrimSpace(name),
		Region:      region,
		Connections: make(map[NodeIndex][]Connection),
	})
	b.w.Regions[region].Areas = append(b.w.Regions[region].Areas, idx)
	return idx
}

// AddNode appends n to area and returns its index. Index, Area and Region
// of n are filled in. DefaultTarget is reset to NoNode; connectors get
// their target through SetDefaultTarget once both ends exist.
func (b *Builder) AddNode(area int, n Node) NodeIndex {
	if area < 0 || area >= len(b.w.Areas) {
		b.fail(fmt.Errorf("world: node %q added to unknown area %d", n.Name, area))
		return NoNode
	}
	idx := NodeIndex(len(b.w.Nodes))
	n.Index = idx
	n.Name = strings.TrimSpace(n.Name)
	n.Area = area
	n.Region = b.w.Areas[area].Region
	n.DefaultTarget = NoNode
	b.w.Nodes = append(b.w.Nodes, n)
	b.w.Areas[area].Nodes = append(b.w.Areas[area].Nodes, idx)
	return idx
}

// Connect adds a directed edge between two nodes of the same area. A nil
// requirement is stored as trivial.
func (b *Builder) Connect(from, to NodeIndex, req requirement.Requirement) {
	if b.w.Node(from) == nil || b.w.Node(to) == nil {
		b.fail(fmt.Errorf("world: connection %d -> %d references unknown node", from, to))
		return
	}
	if req == nil {
		req = requirement.Trivial()
	}
	area := &b.w.Areas[b.w.Nodes[from].Area]
	area.Connections[from] = append(area.Connections[from], Connection{To: to, Requirement: req})
}

// SetDefaultTarget sets where a dock or teleporter leads when unshuffled.
func (b *Builder) SetDefaultTarget(from, to NodeIndex) {
	n := b.w.Node(from)
	if n == nil || b.w.Node(to) == nil {
		b.fail(fmt.Errorf("world: dock target %d -> %d references unknown node", from, to))
		return
	}
	n.DefaultTarget = to
}

// Lookup resolves a node added so far by its "Region/Area/Node" name.
func (b *Builder) Lookup(name string) (NodeIndex, bool) {
	want := strings.TrimSpace(name)
	for i := range b.w.Nodes {
		if b.w.FullName(NodeIndex(i)) == want {
			return NodeIndex(i), true
		}
	}
	return NoNode, false
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build validates the world and returns it. Validation errors are joined;
// warnings do not fail the build.
func (b *Builder) Build() (*World, error) {
	if b.err != nil {
		return nil, b.err
	}
	w := b.w
	for i := range w.Nodes {
		n := &w.Nodes[i]
		w.byName[w.FullName(n.Index)] = n.Index
		if n.Kind == NodePickup {
			if _, dup := w.pickups[n.Pickup]; !dup {
				w.pickups[n.Pickup] = n.Index
			}
		}
	}

	var errs []error
	for _, v := range Validate(w) {
		if v.Severity == SeverityError {
			errs = append(errs, v)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("world: %q failed validation: %w", w.Name, errors.Join(errs...))
	}
	return w, nil
}
