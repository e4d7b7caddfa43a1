package world

import (
	"strings"
	"testing"

	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resource"
)

// twoAreaWorld builds:
//
//	Surface/Landing: Ship -> Door East (dock to Cave/Door West), Ship -> Item A
//	Surface/Cave:    Door West -> Item B (needs Bombs), Door West -> Lift (teleporter to Landing/Ship)
func twoAreaWorld(t *testing.T) (*World, resource.Index) {
	t.Helper()
	db := resource.NewDatabase()
	bombs, _ := db.Register(resource.KindItem, resource.Info{Name: "Bombs"})
	b := NewBuilder("test", db)
	r := b.AddRegion("Surface")
	landing := b.AddArea(r, "Landing")
	cave := b.AddArea(r, "Cave")

	ship := b.AddNode(landing, Node{Name: "Ship", Kind: NodeGeneric})
	doorE := b.AddNode(landing, Node{Name: "Door East", Kind: NodeDock})
	itemA := b.AddNode(landing, Node{Name: "Item A", Kind: NodePickup, Pickup: 0})
	doorW := b.AddNode(cave, Node{Name: "Door West", Kind: NodeDock})
	itemB := b.AddNode(cave, Node{Name: "Item B", Kind: NodePickup, Pickup: 1})
	lift := b.AddNode(cave, Node{Name: "Lift", Kind: NodeTeleporter})
	b.Connect(ship, doorE, nil)
	b.Connect(ship, itemA, nil)
	b.Connect(doorE, ship, nil)
	b.Connect(doorW, itemB, requirement.Has(bombs, 1))
	b.Connect(doorW, lift, nil)
	b.Connect(itemB, doorW, nil)
	b.SetDefaultTarget(doorE, doorW)
	b.SetDefaultTarget(doorW, doorE)
	b.SetDefaultTarget(lift, ship)
	w, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return w, bombs
}

func TestBuildIndexesNodes(t *testing.T) {
	w, _ := twoAreaWorld(t)
	if got := len(w.Nodes); got != 6 {
		t.Fatalf("expected 6 nodes, got %d", got)
	}
	idx, ok := w.Lookup("Surface/Cave/Item B")
	if !ok {
		t.Fatalf("lookup failed")
	}
	if w.FullName(idx) != "Surface/Cave/Item B" {
		t.Errorf("FullName = %q", w.FullName(idx))
	}
	if p, ok := w.PickupNode(1); !ok || p != idx {
		t.Errorf("PickupNode(1) = %d, %v", p, ok)
	}
	if got := w.PickupIndices(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("PickupIndices = %v", got)
	}
	if got := w.NodesOfKind(NodeTeleporter); len(got) != 1 {
		t.Errorf("NodesOfKind(teleporter) = %v", got)
	}
}

func TestMustLookupPanics(t *testing.T) {
	w, _ := twoAreaWorld(t)
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup should panic on missing name")
		}
	}()
	w.MustLookup("Surface/Nowhere/Thing")
}

func TestEdgesFollowDockOverlay(t *testing.T) {
	w, _ := twoAreaWorld(t)
	doorE := w.MustLookup("Surface/Landing/Door East")
	doorW := w.MustLookup("Surface/Cave/Door West")
	lift := w.MustLookup("Surface/Cave/Lift")
	ship := w.MustLookup("Surface/Landing/Ship")

	hasEdge := func(edges []Connection, to NodeIndex) bool {
		for _, e := range edges {
			if e.To == to {
				return true
			}
		}
		return false
	}
	if !hasEdge(w.Edges(doorE, nil), doorW) {
		t.Fatalf("default dock target not followed")
	}
	overlay := DockConnections{doorE: lift}
	edges := w.Edges(doorE, overlay)
	if hasEdge(edges, doorW) || !hasEdge(edges, lift) {
		t.Fatalf("overlay not applied: %+v", edges)
	}
	if !hasEdge(edges, ship) {
		t.Fatalf("local connections lost")
	}
	// the arena itself is untouched
	if w.Nodes[doorE].DefaultTarget != doorW {
		t.Fatalf("default target mutated")
	}
}

func TestValidateFindsDuplicatePickupIndex(t *testing.T) {
	db := resource.NewDatabase()
	b := NewBuilder("dup", db)
	a := b.AddArea(b.AddRegion("R"), "A")
	b.AddNode(a, Node{Name: "One", Kind: NodePickup, Pickup: 3})
	b.AddNode(a, Node{Name: "Two", Kind: NodePickup, Pickup: 3})
	_, err := b.Build()
	if err == nil || !strings.Contains(err.Error(), "pickup index 3 already used") {
		t.Fatalf("expected duplicate pickup error, got %v", err)
	}
}

func TestValidateCrossAreaConnection(t *testing.T) {
	db := resource.NewDatabase()
	b := NewBuilder("cross", db)
	r := b.AddRegion("R")
	a1 := b.AddNode(b.AddArea(r, "A"), Node{Name: "X", Kind: NodeGeneric})
	a2 := b.AddNode(b.AddArea(r, "B"), Node{Name: "Y", Kind: NodeGeneric})
	b.Connect(a1, a2, nil)
	_, err := b.Build()
	if err == nil || !strings.Contains(err.Error(), "use a dock") {
		t.Fatalf("expected cross-area connection error, got %v", err)
	}
}

func TestValidateConnectionFindingsInNodeOrder(t *testing.T) {
	build := func() error {
		b := NewBuilder("cross", resource.NewDatabase())
		r := b.AddRegion("R")
		a, other := b.AddArea(r, "A"), b.AddArea(r, "B")
		y := b.AddNode(other, Node{Name: "Y", Kind: NodeGeneric})
		for _, name := range []string{"X0", "X1", "X2", "X3", "X4", "X5"} {
			b.Connect(b.AddNode(a, Node{Name: name, Kind: NodeGeneric}), y, nil)
		}
		_, err := b.Build()
		return err
	}
	first := build()
	if first == nil {
		t.Fatalf("expected cross-area errors")
	}
	msg := first.Error()
	last := -1
	for _, name := range []string{"X0", "X1", "X2", "X3", "X4", "X5"} {
		i := strings.Index(msg, "R/A/"+name)
		if i < last {
			t.Fatalf("findings out of node order: %s", msg)
		}
		last = i
	}
	for i := 0; i < 10; i++ {
		if got := build().Error(); got != msg {
			t.Fatalf("build %d reported\n%s\nwant\n%s", i, got, msg)
		}
	}
}

func TestAreaOf(t *testing.T) {
	w, _ := twoAreaWorld(t)
	if a := w.AreaOf(w.MustLookup("Surface/Cave/Lift")); a == nil || a.Name != "Cave" {
		t.Fatalf("AreaOf(Lift) = %+v", a)
	}
	if w.AreaOf(NodeIndex(len(w.Nodes))) != nil {
		t.Fatalf("AreaOf out of range should be nil")
	}
}

func TestValidateDockWithoutTarget(t *testing.T) {
	db := resource.NewDatabase()
	b := NewBuilder("dock", db)
	a := b.AddArea(b.AddRegion("R"), "A")
	b.AddNode(a, Node{Name: "Door", Kind: NodeDock})
	_, err := b.Build()
	if err == nil || !strings.Contains(err.Error(), "no default target") {
		t.Fatalf("expected missing target error, got %v", err)
	}
}

func TestValidateEventKind(t *testing.T) {
	db := resource.NewDatabase()
	item, _ := db.Register(resource.KindItem, resource.Info{Name: "Key"})
	b := NewBuilder("event", db)
	a := b.AddArea(b.AddRegion("R"), "A")
	b.AddNode(a, Node{Name: "Boss", Kind: NodeEvent, Event: item})
	_, err := b.Build()
	if err == nil || !strings.Contains(err.Error(), "want an event") {
		t.Fatalf("expected event kind error, got %v", err)
	}
}

func TestShortestPath(t *testing.T) {
	w, bombs := twoAreaWorld(t)
	ship := w.MustLookup("Surface/Landing/Ship")
	itemB := w.MustLookup("Surface/Cave/Item B")

	have := resource.NewCollection(w.Resources)
	passable := func(_ NodeIndex, c Connection) bool {
		return requirement.Satisfied(c.Requirement, have, nil)
	}
	if p := ShortestPath(w, nil, ship, itemB, passable); p != nil {
		t.Fatalf("expected no path without bombs, got %v", p)
	}
	_ = have.Add(bombs, 1)
	p := ShortestPath(w, nil, ship, itemB, passable)
	want := []string{"Surface/Landing/Ship", "Surface/Landing/Door East", "Surface/Cave/Door West", "Surface/Cave/Item B"}
	if len(p) != len(want) {
		t.Fatalf("path = %v", p)
	}
	for i, n := range p {
		if w.FullName(n) != want[i] {
			t.Errorf("step %d = %s, want %s", i, w.FullName(n), want[i])
		}
	}
	if p := ShortestPath(w, nil, ship, ship, passable); len(p) != 1 {
		t.Errorf("trivial path = %v", p)
	}
}
