package patches

import (
	"fmt"

	"github.com/gravitas-games/seedforge/internal/pickup"
	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/world"
)

// QuantitySnapshot is a resource amount keyed by name rather than index.
type QuantitySnapshot struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

// EntrySnapshot is a pickup entry keyed by resource names.
type EntrySnapshot struct {
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Resources   []QuantitySnapshot `json:"resources,omitempty"`
	Progressive []QuantitySnapshot `json:"progressive,omitempty"`
	Ammo        []QuantitySnapshot `json:"ammo,omitempty"`
}

// AssignmentSnapshot is one slot of the assignment.
type AssignmentSnapshot struct {
	Index    int           `json:"index"`
	Location string        `json:"location"`
	Pickup   EntrySnapshot `json:"pickup"`
}

// Snapshot is the name-keyed, serializable form of GamePatches. Indices are
// only meaningful for one world, names survive data reloads.
type Snapshot struct {
	Player            int                  `json:"player"`
	StartingLocation  string               `json:"startingLocation"`
	StartingResources []QuantitySnapshot   `json:"startingResources,omitempty"`
	Docks             map[string]string    `json:"docks,omitempty"`
	Assignment        []AssignmentSnapshot `json:"assignment"`
}

// Snapshot encodes p using names from w.
func (p *GamePatches) Snapshot(w *world.World) Snapshot {
	db := w.Resources
	s := Snapshot{
		Player:            p.Player,
		StartingLocation:  w.FullName(p.StartingLocation),
		StartingResources: quantitiesToSnapshot(db, p.StartingResources.Entries()),
		Assignment:        make([]AssignmentSnapshot, 0, p.Len()),
	}
	if len(p.Docks) > 0 {
		s.Docks = make(map[string]string, len(p.Docks))
		for from, to := range p.Docks {
			s.Docks[w.FullName(from)] = w.FullName(to)
		}
	}
	for _, idx := range p.Assigned() {
		entry := p.assignment[idx]
		location := ""
		if node, ok := w.PickupNode(idx); ok {
			location = w.FullName(node)
		}
		s.Assignment = append(s.Assignment, AssignmentSnapshot{
			Index:    int(idx),
			Location: location,
			Pickup:   entryToSnapshot(db, entry),
		})
	}
	return s
}

// FromSnapshot decodes s against w. Every name must resolve.
func FromSnapshot(w *world.World, s Snapshot) (*GamePatches, error) {
	db := w.Resources
	start, ok := w.Lookup(s.StartingLocation)
	if !ok {
		return nil, fmt.Errorf("patches: unknown starting location %q", s.StartingLocation)
	}
	qs, err := quantitiesFromSnapshot(db, s.StartingResources)
	if err != nil {
		return nil, fmt.Errorf("patches: starting resources: %w", err)
	}
	starting, err := resource.CollectionOf(db, qs...)
	if err != nil {
		return nil, fmt.Errorf("patches: starting resources: %w", err)
	}
	p := New(s.Player, start, starting)
	for from, to := range s.Docks {
		f, ok := w.Lookup(from)
		if !ok {
			return nil, fmt.Errorf("patches: unknown dock %q", from)
		}
		t, ok := w.Lookup(to)
		if !ok {
			return nil, fmt.Errorf("patches: unknown dock target %q", to)
		}
		p.Docks[f] = t
	}
	for _, a := range s.Assignment {
		if _, ok := w.PickupNode(world.PickupIndex(a.Index)); !ok {
			return nil, fmt.Errorf("patches: unknown pickup index %d", a.Index)
		}
		entry, err := entryFromSnapshot(db, a.Pickup)
		if err != nil {
			return nil, fmt.Errorf("patches: pickup %d: %w", a.Index, err)
		}
		if err := p.Assign(world.PickupIndex(a.Index), entry); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func quantitiesToSnapshot(db *resource.Database, qs []resource.Quantity) []QuantitySnapshot {
	if len(qs) == 0 {
		return nil
	}
	out := make([]QuantitySnapshot, 0, len(qs))
	for _, q := range qs {
		info, _ := db.Get(q.Resource)
		out = append(out, QuantitySnapshot{Kind: info.Kind.String(), Name: info.Name, Amount: q.Amount})
	}
	return out
}

func quantitiesFromSnapshot(db *resource.Database, qs []QuantitySnapshot) ([]resource.Quantity, error) {
	if len(qs) == 0 {
		return nil, nil
	}
	out := make([]resource.Quantity, 0, len(qs))
	for _, q := range qs {
		kind, err := resource.ParseKind(q.Kind)
		if err != nil {
			return nil, err
		}
		info, err := db.Find(kind, q.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, resource.Quantity{Resource: info.Index, Amount: q.Amount})
	}
	return out, nil
}

func entryToSnapshot(db *resource.Database, e pickup.Entry) EntrySnapshot {
	return EntrySnapshot{
		Name:        e.Name,
		Category:    e.Category.String(),
		Resources:   quantitiesToSnapshot(db, e.Resources),
		Progressive: quantitiesToSnapshot(db, e.Progressive),
		Ammo:        quantitiesToSnapshot(db, e.Ammo),
	}
}

func entryFromSnapshot(db *resource.Database, s EntrySnapshot) (pickup.Entry, error) {
	category, err := pickup.ParseCategory(s.Category)
	if err != nil {
		return pickup.Entry{}, err
	}
	e := pickup.Entry{Name: s.Name, Category: category}
	if e.Resources, err = quantitiesFromSnapshot(db, s.Resources); err != nil {
		return pickup.Entry{}, err
	}
	if e.Progressive, err = quantitiesFromSnapshot(db, s.Progressive); err != nil {
		return pickup.Entry{}, err
	}
	if e.Ammo, err = quantitiesFromSnapshot(db, s.Ammo); err != nil {
		return pickup.Entry{}, err
	}
	return e, nil
}
