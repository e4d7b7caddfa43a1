// Package pickup describes placeable items and the pool handed to the
// generator by a game's pool creator.
package pickup

import (
	"fmt"
	"strings"

	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/world"
)

// Category groups pickups for placement rules and spoiler output.
type Category int

const (
	CategoryMajor     Category = iota // upgrades that open the world
	CategoryKey                       // keys and artifacts
	CategoryEnergy                    // health/energy tanks
	CategoryExpansion                 // ammo expansions
	CategoryJunk                      // filler with no logical value
)

var categoryNames = [...]string{"major", "key", "energy", "expansion", "junk"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if s == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("pickup: unknown category %q", s)
}

// IsMajor reports whether entries of this category count as major items for
// major/minor location splitting.
func (c Category) IsMajor() bool {
	return c == CategoryMajor || c == CategoryKey || c == CategoryEnergy
}

// Entry is the description of a placeable item.
type Entry struct {
	Name     string
	Category Category
	// Resources are always granted when collected.
	Resources []resource.Quantity
	// Progressive, when set, grants the first resource of the chain the
	// player does not hold yet (or the last one once all are held).
	Progressive []resource.Quantity
	// Ammo is granted alongside the main resources.
	Ammo []resource.Quantity
}

// Gain returns what collecting e grants to a player holding have.
func (e Entry) Gain(have *resource.Collection) []resource.Quantity {
	out := make([]resource.Quantity, 0, len(e.Resources)+len(e.Ammo)+1)
	out = append(out, e.Resources...)
	if len(e.Progressive) > 0 {
		step := e.Progressive[len(e.Progressive)-1]
		for _, q := range e.Progressive {
			if have.Get(q.Resource) < q.Amount {
				step = q
				break
			}
		}
		out = append(out, step)
	}
	return append(out, e.Ammo...)
}

// Grants returns every resource e can ever grant, ignoring progression order.
func (e Entry) Grants() []resource.Index {
	seen := make(map[resource.Index]bool)
	var out []resource.Index
	for _, qs := range [][]resource.Quantity{e.Resources, e.Progressive, e.Ammo} {
		for _, q := range qs {
			if !seen[q.Resource] {
				seen[q.Resource] = true
				out = append(out, q.Resource)
			}
		}
	}
	return out
}

// Pool is what a pool creator hands to the generator.
type Pool struct {
	// Pickups are placed by the generator, in this order of preference.
	Pickups []Entry
	// Fixed holds pickups already bound to a slot (vanilla placements).
	Fixed map[world.PickupIndex]Entry
	// StartingResources are granted before the player moves.
	StartingResources []resource.Quantity
	// Junk fills any slot left over once Pickups is exhausted.
	Junk Entry
}

// Size returns the number of pickups still to be placed.
func (p Pool) Size() int {
	return len(p.Pickups)
}

// Nothing is the default junk entry.
func Nothing() Entry {
	return Entry{Name: "Nothing", Category: CategoryJunk}
}
