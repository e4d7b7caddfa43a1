// Package requirement defines the boolean predicate trees that gate world
// connections and events. Requirements are immutable values; evaluating one
// never has side effects.
package requirement

import (
	"github.com/gravitas-games/seedforge/internal/resource"
)

// Requirement is a pure predicate over a resource collection and the
// configured trick levels.
type Requirement interface {
	// Satisfied evaluates the tree. AND stops at the first false child,
	// OR at the first true one.
	Satisfied(have *resource.Collection, tricks TrickLevels) bool
	requirement() // marker method restricting implementations to this package
}

// Resource is satisfied when at least Amount of Index is held.
type Resource struct {
	Index  resource.Index
	Amount int
}

// Trick is satisfied when the configured level for Index is at least Level.
type Trick struct {
	Index resource.Index
	Level Level
}

// And is satisfied when every child is. An empty And is always satisfied.
type And struct {
	Items []Requirement
}

// Or is satisfied when any child is. An empty Or is never satisfied.
type Or struct {
	Items []Requirement
}

func (Resource) requirement() {}
func (Trick) requirement()    {}
func (And) requirement()      {}
func (Or) requirement()       {}

func (r Resource) Satisfied(have *resource.Collection, _ TrickLevels) bool {
	return have.Get(r.Index) >= r.Amount
}

func (r Trick) Satisfied(_ *resource.Collection, tricks TrickLevels) bool {
	return tricks.Get(r.Index) >= r.Level
}

func (r And) Satisfied(have *resource.Collection, tricks TrickLevels) bool {
	for _, item := range r.Items {
		if !item.Satisfied(have, tricks) {
			return false
		}
	}
	return true
}

func (r Or) Satisfied(have *resource.Collection, tricks TrickLevels) bool {
	for _, item := range r.Items {
		if item.Satisfied(have, tricks) {
			return true
		}
	}
	return false
}

// Satisfied evaluates req; a nil requirement counts as trivial.
func Satisfied(req Requirement, have *resource.Collection, tricks TrickLevels) bool {
	if req == nil {
		return true
	}
	return req.Satisfied(have, tricks)
}

// Has builds a resource leaf.
func Has(idx resource.Index, amount int) Requirement {
	return Resource{Index: idx, Amount: amount}
}

// HasTrick builds a trick leaf.
func HasTrick(idx resource.Index, level Level) Requirement {
	return Trick{Index: idx, Level: level}
}

// All builds an And node.
func All(items ...Requirement) Requirement {
	return And{Items: items}
}

// Any builds an Or node.
func Any(items ...Requirement) Requirement {
	return Or{Items: items}
}

// Trivial is always satisfied.
func Trivial() Requirement { return And{} }

// Impossible is never satisfied.
func Impossible() Requirement { return Or{} }

// Walk calls fn for every leaf of req, depth first, in child order.
func Walk(req Requirement, fn func(leaf Requirement)) {
	switch r := req.(type) {
	case nil:
	case And:
		for _, item := range r.Items {
			Walk(item, fn)
		}
	case Or:
		for _, item := range r.Items {
			Walk(item, fn)
		}
	default:
		fn(r)
	}
}

// Resources returns the distinct resource indices referenced by resource
// leaves of req.
func Resources(req Requirement) []resource.Index {
	seen := make(map[resource.Index]bool)
	var out []resource.Index
	Walk(req, func(leaf Requirement) {
		if r, ok := leaf.(Resource); ok && !seen[r.Index] {
			seen[r.Index] = true
			out = append(out, r.Index)
		}
	})
	return out
}
