// Package gamedata loads game definitions from YAML and exposes them as
// bootstrap games. The builtin demo game is embedded.
package gamedata

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/seedforge/internal/bootstrap"
	"github.com/gravitas-games/seedforge/internal/pickup"
	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/world"
)

//go:embed demo.yaml
var demoYAML []byte

// Definition is a whole game as written in YAML.
type Definition struct {
	ID                string         `yaml:"id"`
	Name              string         `yaml:"name"`
	Resources         ResourcesDef   `yaml:"resources"`
	StartingLocations []string       `yaml:"starting_locations"`
	Goal              RequirementDef `yaml:"goal"`
	Regions           []RegionDef    `yaml:"regions"`
	Pool              PoolDef        `yaml:"pool"`
}

// ResourcesDef lists the resources by kind.
type ResourcesDef struct {
	Items  []ResourceDef `yaml:"items"`
	Events []ResourceDef `yaml:"events"`
	Tricks []ResourceDef `yaml:"tricks"`
	Misc   []ResourceDef `yaml:"misc"`
}

// ResourceDef is one resource.
type ResourceDef struct {
	Name     string `yaml:"name"`
	LongName string `yaml:"long_name,omitempty"`
	Max      int    `yaml:"max,omitempty"`
}

// RegionDef is a region and its areas.
type RegionDef struct {
	Name  string    `yaml:"name"`
	Areas []AreaDef `yaml:"areas"`
}

// AreaDef is an area, its nodes and the connections between them. Node
// names in connections are local to the area.
type AreaDef struct {
	Name        string          `yaml:"name"`
	Nodes       []NodeDef       `yaml:"nodes"`
	Connections []ConnectionDef `yaml:"connections"`
}

// NodeDef is one node. Target is the full "Region/Area/Node" name a dock or
// teleporter leads to.
type NodeDef struct {
	Name        string          `yaml:"name"`
	Kind        string          `yaml:"kind,omitempty"`
	Pickup      int             `yaml:"pickup,omitempty"`
	Location    string          `yaml:"location,omitempty"`
	Event       string          `yaml:"event,omitempty"`
	Target      string          `yaml:"target,omitempty"`
	Requirement *RequirementDef `yaml:"requirement,omitempty"`
}

// ConnectionDef is a directed edge. Both marks the edge as two-way.
type ConnectionDef struct {
	From        string          `yaml:"from"`
	To          string          `yaml:"to"`
	Both        bool            `yaml:"both,omitempty"`
	Requirement *RequirementDef `yaml:"requirement,omitempty"`
}

// QuantityDef names an item amount. Amount defaults to 1.
type QuantityDef struct {
	Name   string `yaml:"name"`
	Amount int    `yaml:"amount,omitempty"`
}

// PickupDef describes Count copies of a pickup.
type PickupDef struct {
	Name        string        `yaml:"name"`
	Category    string        `yaml:"category"`
	Count       int           `yaml:"count,omitempty"`
	Resources   []QuantityDef `yaml:"resources,omitempty"`
	Progressive []QuantityDef `yaml:"progressive,omitempty"`
	Ammo        []QuantityDef `yaml:"ammo,omitempty"`
}

// FixedDef binds a pickup to a slot.
type FixedDef struct {
	Index     int `yaml:"index"`
	PickupDef `yaml:",inline"`
}

// PoolDef is the pickup pool.
type PoolDef struct {
	Pickups       []PickupDef   `yaml:"pickups"`
	Fixed         []FixedDef    `yaml:"fixed,omitempty"`
	StartingItems []QuantityDef `yaml:"starting_items,omitempty"`
	Junk          *PickupDef    `yaml:"junk,omitempty"`
}

// Load reads a definition from a YAML file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gamedata: failed to read %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("gamedata: %s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a definition and checks that it builds.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("gamedata: failed to parse definition: %w", err)
	}
	if strings.TrimSpace(def.ID) == "" {
		return nil, errors.New("gamedata: definition has no id")
	}
	if def.Name == "" {
		def.Name = def.ID
	}
	w, err := def.BuildWorld()
	if err != nil {
		return nil, err
	}
	if _, err := def.Goal.Build(w.Resources); err != nil {
		return nil, fmt.Errorf("gamedata: goal: %w", err)
	}
	if len(def.StartingLocations) == 0 {
		return nil, errors.New("gamedata: no starting locations")
	}
	for _, name := range def.StartingLocations {
		if _, ok := w.Lookup(name); !ok {
			return nil, fmt.Errorf("gamedata: unknown starting location %q", name)
		}
	}
	if _, err := def.createPool(nil, bootstrap.Settings{}, w); err != nil {
		return nil, err
	}
	return &def, nil
}

// Demo returns the embedded demo game definition.
func Demo() (*Definition, error) {
	return Parse(demoYAML)
}

// Register adds the embedded games to reg.
func Register(reg *bootstrap.Registry) error {
	def, err := Demo()
	if err != nil {
		return err
	}
	return reg.Register(def.Game())
}

// Game exposes the definition as a bootstrap game.
func (d *Definition) Game() bootstrap.Game {
	return bootstrap.Game{
		ID:        d.ID,
		Name:      d.Name,
		LoadWorld: d.BuildWorld,
		Pool:      bootstrap.PoolCreatorFunc(d.createPool),
		Goal: func(w *world.World) (requirement.Requirement, error) {
			return d.Goal.Build(w.Resources)
		},
		StartingLocations: func(w *world.World) []world.NodeIndex {
			out := make([]world.NodeIndex, 0, len(d.StartingLocations))
			for _, name := range d.StartingLocations {
				if idx, ok := w.Lookup(name); ok {
					out = append(out, idx)
				}
			}
			return out
		},
	}
}

// BuildResources registers every resource in a fresh database.
func (d *Definition) BuildResources() (*resource.Database, error) {
	db := resource.NewDatabase()
	groups := []struct {
		kind resource.Kind
		defs []ResourceDef
	}{
		{resource.KindItem, d.Resources.Items},
		{resource.KindEvent, d.Resources.Events},
		{resource.KindTrick, d.Resources.Tricks},
		{resource.KindMisc, d.Resources.Misc},
	}
	for _, g := range groups {
		for _, r := range g.defs {
			if _, err := db.Register(g.kind, resource.Info{Name: r.Name, LongName: r.LongName, Max: r.Max}); err != nil {
				return nil, fmt.Errorf("gamedata: %w", err)
			}
		}
	}
	return db, nil
}

// BuildWorld builds a fresh world from the definition.
func (d *Definition) BuildWorld() (*world.World, error) {
	db, err := d.BuildResources()
	if err != nil {
		return nil, err
	}
	b := world.NewBuilder(d.Name, db)

	type pending struct {
		node   world.NodeIndex
		target string
	}
	var targets []pending
	for _, rd := range d.Regions {
		region := b.AddRegion(rd.Name)
		for _, ad := range rd.Areas {
			area := b.AddArea(region, ad.Name)
			local := make(map[string]world.NodeIndex, len(ad.Nodes))
			for _, nd := range ad.Nodes {
				n, err := d.node(db, nd)
				if err != nil {
					return nil, fmt.Errorf("gamedata: %s/%s/%s: %w", rd.Name, ad.Name, nd.Name, err)
				}
				idx := b.AddNode(area, n)
				local[nd.Name] = idx
				if nd.Target != "" {
					targets = append(targets, pending{node: idx, target: nd.Target})
				}
			}
			for _, cd := range ad.Connections {
				from, ok := local[cd.From]
				if !ok {
					return nil, fmt.Errorf("gamedata: %s/%s: connection from unknown node %q", rd.Name, ad.Name, cd.From)
				}
				to, ok := local[cd.To]
				if !ok {
					return nil, fmt.Errorf("gamedata: %s/%s: connection to unknown node %q", rd.Name, ad.Name, cd.To)
				}
				req, err := cd.Requirement.Build(db)
				if err != nil {
					return nil, fmt.Errorf("gamedata: %s/%s: %s -> %s: %w", rd.Name, ad.Name, cd.From, cd.To, err)
				}
				b.Connect(from, to, req)
				if cd.Both {
					b.Connect(to, from, req)
				}
			}
		}
	}
	for _, p := range targets {
		to, ok := b.Lookup(p.target)
		if !ok {
			return nil, fmt.Errorf("gamedata: unknown target %q", p.target)
		}
		b.SetDefaultTarget(p.node, to)
	}
	return b.Build()
}

func (d *Definition) node(db *resource.Database, nd NodeDef) (world.Node, error) {
	kind, err := parseNodeKind(nd.Kind)
	if err != nil {
		return world.Node{}, err
	}
	n := world.Node{Name: nd.Name, Kind: kind}
	switch kind {
	case world.NodePickup:
		n.Pickup = world.PickupIndex(nd.Pickup)
		if n.Location, err = parseLocation(nd.Location); err != nil {
			return world.Node{}, err
		}
	case world.NodeEvent:
		info, err := db.Find(resource.KindEvent, nd.Event)
		if err != nil {
			return world.Node{}, err
		}
		n.Event = info.Index
	}
	if nd.Requirement != nil {
		if n.Requirement, err = nd.Requirement.Build(db); err != nil {
			return world.Node{}, err
		}
	}
	return n, nil
}

// createPool expands the pool definition. rng shuffles the pickup order and
// may be nil.
func (d *Definition) createPool(rng *rand.Rand, _ bootstrap.Settings, w *world.World) (pickup.Pool, error) {
	db := w.Resources
	pool := pickup.Pool{Fixed: make(map[world.PickupIndex]pickup.Entry), Junk: pickup.Nothing()}
	for _, pd := range d.Pool.Pickups {
		e, err := pd.entry(db)
		if err != nil {
			return pickup.Pool{}, err
		}
		count := pd.Count
		if count == 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			pool.Pickups = append(pool.Pickups, e)
		}
	}
	for _, fd := range d.Pool.Fixed {
		e, err := fd.entry(db)
		if err != nil {
			return pickup.Pool{}, err
		}
		idx := world.PickupIndex(fd.Index)
		if _, dup := pool.Fixed[idx]; dup {
			return pickup.Pool{}, fmt.Errorf("gamedata: pickup %d fixed twice", fd.Index)
		}
		pool.Fixed[idx] = e
	}
	var err error
	if pool.StartingResources, err = quantities(db, d.Pool.StartingItems); err != nil {
		return pickup.Pool{}, fmt.Errorf("gamedata: starting items: %w", err)
	}
	if d.Pool.Junk != nil {
		if pool.Junk, err = d.Pool.Junk.entry(db); err != nil {
			return pickup.Pool{}, err
		}
	}
	if rng != nil {
		rng.Shuffle(len(pool.Pickups), func(i, j int) {
			pool.Pickups[i], pool.Pickups[j] = pool.Pickups[j], pool.Pickups[i]
		})
	}
	return pool, nil
}

func (pd PickupDef) entry(db *resource.Database) (pickup.Entry, error) {
	category := pickup.CategoryJunk
	if pd.Category != "" {
		var err error
		if category, err = pickup.ParseCategory(pd.Category); err != nil {
			return pickup.Entry{}, fmt.Errorf("gamedata: pickup %q: %w", pd.Name, err)
		}
	}
	e := pickup.Entry{Name: pd.Name, Category: category}
	var err error
	if e.Resources, err = quantities(db, pd.Resources); err != nil {
		return pickup.Entry{}, fmt.Errorf("gamedata: pickup %q: %w", pd.Name, err)
	}
	if e.Progressive, err = quantities(db, pd.Progressive); err != nil {
		return pickup.Entry{}, fmt.Errorf("gamedata: pickup %q: %w", pd.Name, err)
	}
	if e.Ammo, err = quantities(db, pd.Ammo); err != nil {
		return pickup.Entry{}, fmt.Errorf("gamedata: pickup %q: %w", pd.Name, err)
	}
	return e, nil
}

func quantities(db *resource.Database, defs []QuantityDef) ([]resource.Quantity, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make([]resource.Quantity, 0, len(defs))
	for _, q := range defs {
		info, err := db.Find(resource.KindItem, q.Name)
		if err != nil {
			return nil, err
		}
		amount := q.Amount
		if amount == 0 {
			amount = 1
		}
		if amount < 0 {
			return nil, fmt.Errorf("negative amount %d of %s", amount, q.Name)
		}
		out = append(out, resource.Quantity{Resource: info.Index, Amount: amount})
	}
	return out, nil
}

func parseNodeKind(s string) (world.NodeKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return world.NodeGeneric, nil
	}
	for k := world.NodeGeneric; k <= world.NodeTeleporter; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

func parseLocation(s string) (world.LocationCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "major":
		return world.LocationMajor, nil
	case "minor":
		return world.LocationMinor, nil
	}
	return 0, fmt.Errorf("unknown location category %q", s)
}
