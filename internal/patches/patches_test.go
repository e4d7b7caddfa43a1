package patches

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gravitas-games/seedforge/internal/pickup"
	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/world"
)

func smallWorld(t *testing.T) (*world.World, resource.Index) {
	t.Helper()
	db := resource.NewDatabase()
	bombs, _ := db.Register(resource.KindItem, resource.Info{Name: "Bombs"})
	b := world.NewBuilder("small", db)
	r := b.AddRegion("R")
	a1 := b.AddArea(r, "A")
	a2 := b.AddArea(r, "B")
	start := b.AddNode(a1, world.Node{Name: "Start", Kind: world.NodeGeneric})
	slot0 := b.AddNode(a1, world.Node{Name: "Slot", Kind: world.NodePickup, Pickup: 0})
	door := b.AddNode(a1, world.Node{Name: "Door", Kind: world.NodeTeleporter})
	back := b.AddNode(a2, world.Node{Name: "Back", Kind: world.NodeTeleporter})
	slot1 := b.AddNode(a2, world.Node{Name: "Slot", Kind: world.NodePickup, Pickup: 1})
	b.Connect(start, slot0, nil)
	b.Connect(start, door, nil)
	b.Connect(back, slot1, nil)
	b.SetDefaultTarget(door, back)
	b.SetDefaultTarget(back, door)
	w, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return w, bombs
}

func TestAssignRejectsDuplicates(t *testing.T) {
	p := New(0, 0, nil)
	if err := p.Assign(4, pickup.Nothing()); err != nil {
		t.Fatalf("unexpected assign error: %v", err)
	}
	err := p.Assign(4, pickup.Entry{Name: "Bombs"})
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}
	if e, _ := p.Assignment(4); e.Name != "Nothing" {
		t.Fatalf("duplicate assign replaced entry: %+v", e)
	}
	if p.Len() != 1 {
		t.Fatalf("expected 1 assignment, got %d", p.Len())
	}
}

func TestCopyIsIndependent(t *testing.T) {
	p := New(0, 0, nil)
	_ = p.Assign(1, pickup.Nothing())
	p.Docks[3] = 4
	cp := p.Copy()
	_ = cp.Assign(2, pickup.Nothing())
	cp.Docks[5] = 6
	_ = cp.StartingResources.Add(0, 1)
	if p.IsAssigned(2) || len(p.Docks) != 1 || p.StartingResources.Len() != 0 {
		t.Fatalf("original mutated through copy")
	}
	if got := cp.Assigned(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Assigned() = %v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	w, bombs := smallWorld(t)
	starting, _ := resource.CollectionOf(w.Resources, resource.Quantity{Resource: bombs, Amount: 1})
	p := New(2, w.MustLookup("R/A/Start"), starting)
	p.Docks[w.MustLookup("R/A/Door")] = w.MustLookup("R/B/Back")
	bombEntry := pickup.Entry{
		Name:      "Bombs",
		Category:  pickup.CategoryMajor,
		Resources: []resource.Quantity{{Resource: bombs, Amount: 1}},
	}
	if err := p.Assign(0, bombEntry); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := p.Assign(1, pickup.Nothing()); err != nil {
		t.Fatalf("assign: %v", err)
	}

	data, err := json.Marshal(p.Snapshot(w))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Assignment[0].Location != "R/A/Slot" || s.Assignment[1].Location != "R/B/Slot" {
		t.Fatalf("locations = %+v", s.Assignment)
	}
	out, err := FromSnapshot(w, s)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	if out.Player != 2 || out.StartingLocation != p.StartingLocation {
		t.Fatalf("header mismatch: %+v", out)
	}
	if !out.StartingResources.Equal(p.StartingResources) {
		t.Fatalf("starting resources mismatch")
	}
	if out.Docks[w.MustLookup("R/A/Door")] != w.MustLookup("R/B/Back") {
		t.Fatalf("docks mismatch: %v", out.Docks)
	}
	e, ok := out.Assignment(0)
	if !ok || e.Name != "Bombs" || e.Category != pickup.CategoryMajor || len(e.Resources) != 1 || e.Resources[0].Resource != bombs {
		t.Fatalf("assignment 0 mismatch: %+v", e)
	}
}

func TestFromSnapshotRejectsUnknownNames(t *testing.T) {
	w, _ := smallWorld(t)
	if _, err := FromSnapshot(w, Snapshot{StartingLocation: "R/A/Nowhere"}); err == nil {
		t.Fatalf("expected unknown starting location error")
	}
	s := Snapshot{
		StartingLocation: "R/A/Start",
		Assignment: []AssignmentSnapshot{{
			Index:  0,
			Pickup: EntrySnapshot{Name: "X", Category: "major", Resources: []QuantitySnapshot{{Kind: "item", Name: "Bomb", Amount: 1}}},
		}},
	}
	if _, err := FromSnapshot(w, s); !errors.Is(err, resource.ErrNotFound) {
		t.Fatalf("expected resource.ErrNotFound, got %v", err)
	}
}
