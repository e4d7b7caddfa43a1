package generator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/gravitas-games/seedforge/internal/patches"
	"github.com/gravitas-games/seedforge/internal/resolver"
	"github.com/gravitas-games/seedforge/internal/world"
)

// LayoutDescription is the result of a successful generation.
type LayoutDescription struct {
	// ID is unique per generation run, unlike Hash.
	ID   string
	Seed uint64
	// Hash identifies the layout for sharing and caching. It covers the seed
	// and every player's patches, not the generation time.
	Hash string
	// Attempt is the zero-based attempt that produced the layout.
	Attempt     int
	Players     []PlayerLayout
	GeneratedAt time.Time
}

// PlayerLayout is one player's share of a layout.
type PlayerLayout struct {
	Index   int
	Game    string
	Patches *patches.GamePatches
	// Playthrough is the resolver's witness that the goal is reachable. It
	// is empty for unsolvable layouts.
	Playthrough []resolver.Step
	// Unreachable lists the slots the final playthrough never visits.
	Unreachable []world.PickupIndex

	world *world.World
}

// World returns the world the patches apply to.
func (p PlayerLayout) World() *world.World {
	return p.world
}

// LayoutFile is the serialized form of a LayoutDescription. Everything is
// keyed by name.
type LayoutFile struct {
	ID          string       `json:"id"`
	Seed        uint64       `json:"seed"`
	Hash        string       `json:"hash"`
	Attempt     int          `json:"attempt"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Players     []PlayerFile `json:"players"`
}

// PlayerFile is the serialized form of a PlayerLayout.
type PlayerFile struct {
	Index       int              `json:"index"`
	Game        string           `json:"game"`
	Patches     patches.Snapshot `json:"patches"`
	Playthrough []StepFile       `json:"playthrough,omitempty"`
	Unreachable []string         `json:"unreachable,omitempty"`
	Resources   []ResourceFile   `json:"resources"`
}

// ResourceFile is one row of a player's resource table.
type ResourceFile struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Max  int    `json:"max,omitempty"`
}

// StepFile is one serialized witness step.
type StepFile struct {
	Action   string   `json:"action"`
	Location string   `json:"location"`
	Pickup   string   `json:"pickup,omitempty"`
	Gained   []string `json:"gained,omitempty"`
	Path     []string `json:"path,omitempty"`
}

// File converts l to its serialized form.
func (l *LayoutDescription) File() LayoutFile {
	f := LayoutFile{
		ID:          l.ID,
		Seed:        l.Seed,
		Hash:        l.Hash,
		Attempt:     l.Attempt,
		GeneratedAt: l.GeneratedAt,
		Players:     make([]PlayerFile, 0, len(l.Players)),
	}
	for _, p := range l.Players {
		f.Players = append(f.Players, p.file())
	}
	return f
}

func (p PlayerLayout) file() PlayerFile {
	w := p.world
	out := PlayerFile{Index: p.Index, Game: p.Game, Patches: p.Patches.Snapshot(w)}
	for _, s := range p.Playthrough {
		step := StepFile{Action: s.Kind.String(), Location: w.FullName(s.State.Node)}
		if s.Kind == resolver.ActionPickup {
			step.Pickup = s.Entry.Name
		}
		for _, q := range s.Gained {
			step.Gained = append(step.Gained, w.Resources.Name(q.Resource)+" +"+strconv.Itoa(q.Amount))
		}
		for _, n := range s.Path {
			step.Path = append(step.Path, w.FullName(n))
		}
		out.Playthrough = append(out.Playthrough, step)
	}
	for _, idx := range p.Unreachable {
		n, _ := w.PickupNode(idx)
		out.Unreachable = append(out.Unreachable, w.FullName(n))
	}
	for _, info := range w.Resources.Export() {
		out.Resources = append(out.Resources, ResourceFile{Kind: info.Kind.String(), Name: info.Name, Max: info.Max})
	}
	return out
}

// Marshal encodes l as indented JSON.
func (l *LayoutDescription) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(l.File(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("generator: encode layout: %w", err)
	}
	return data, nil
}

// UnmarshalLayout decodes a layout produced by Marshal.
func UnmarshalLayout(data []byte) (LayoutFile, error) {
	var f LayoutFile
	if err := json.Unmarshal(data, &f); err != nil {
		return LayoutFile{}, fmt.Errorf("generator: decode layout: %w", err)
	}
	return f, nil
}

// computeHash fills l.Hash from the seed and the players' patches.
func (l *LayoutDescription) computeHash() error {
	d := xxhash.New()
	fmt.Fprintf(d, "%d|", l.Seed)
	for _, p := range l.Players {
		data, err := json.Marshal(p.Patches.Snapshot(p.world))
		if err != nil {
			return fmt.Errorf("generator: hash layout: %w", err)
		}
		fmt.Fprintf(d, "%d:%s|", p.Index, p.Game)
		_, _ = d.Write(data)
	}
	l.Hash = fmt.Sprintf("%016x", d.Sum64())
	return nil
}
