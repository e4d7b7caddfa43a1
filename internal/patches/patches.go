// Package patches holds the decision record of one generation attempt: where
// the player starts, what they start with, where docks lead and which
// pickup sits in which slot.
package patches

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gravitas-games/seedforge/internal/pickup"
	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/world"
)

// ErrAlreadyAssigned is returned when a pickup slot is assigned twice.
var ErrAlreadyAssigned = errors.New("patches: pickup index already assigned")

// GamePatches accumulates randomization decisions for one player. The
// assignment only grows; a slot is never assigned twice.
type GamePatches struct {
	Player            int
	StartingLocation  world.NodeIndex
	StartingResources *resource.Collection
	Docks             world.DockConnections

	assignment map[world.PickupIndex]pickup.Entry
}

// New creates empty patches for player starting at start with starting
// resources. starting may be nil.
func New(player int, start world.NodeIndex, starting *resource.Collection) *GamePatches {
	if starting == nil {
		starting = resource.NewCollection(nil)
	}
	return &GamePatches{
		Player:            player,
		StartingLocation:  start,
		StartingResources: starting,
		Docks:             make(world.DockConnections),
		assignment:        make(map[world.PickupIndex]pickup.Entry),
	}
}

// Assign binds entry to slot idx.
func (p *GamePatches) Assign(idx world.PickupIndex, entry pickup.Entry) error {
	if _, exists := p.assignment[idx]; exists {
		return fmt.Errorf("%w: %d", ErrAlreadyAssigned, idx)
	}
	p.assignment[idx] = entry
	return nil
}

// Assignment returns the entry in slot idx.
func (p *GamePatches) Assignment(idx world.PickupIndex) (pickup.Entry, bool) {
	e, ok := p.assignment[idx]
	return e, ok
}

// IsAssigned reports whether slot idx holds a pickup.
func (p *GamePatches) IsAssigned(idx world.PickupIndex) bool {
	_, ok := p.assignment[idx]
	return ok
}

// Assigned returns the assigned slots in ascending order.
func (p *GamePatches) Assigned() []world.PickupIndex {
	out := make([]world.PickupIndex, 0, len(p.assignment))
	for idx := range p.assignment {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of assigned slots.
func (p *GamePatches) Len() int {
	return len(p.assignment)
}

// Copy returns an independent copy. Entries are values and are shared.
func (p *GamePatches) Copy() *GamePatches {
	out := &GamePatches{
		Player:            p.Player,
		StartingLocation:  p.StartingLocation,
		StartingResources: p.StartingResources.Copy(),
		Docks:             p.Docks.Copy(),
		assignment:        make(map[world.PickupIndex]pickup.Entry, len(p.assignment)),
	}
	for idx, e := range p.assignment {
		out.assignment[idx] = e
	}
	return out
}
