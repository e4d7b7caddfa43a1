// Package resource provides the countable game resources the logic is
// written against: items, tricks, events and misc flags. It only tracks
// identities and amounts; what a resource means is up to the game data.
package resource

import (
	"fmt"
	"strings"
)

// Kind identifies which axis a resource lives on.
type Kind int

const (
	// KindItem is a collectible item (bombs, missiles, keys).
	KindItem Kind = iota
	// KindTrick is a movement/sequence-break technique evaluated against
	// the configured trick levels rather than the collection.
	KindTrick
	// KindEvent is a world event flag (boss defeated, switch pressed).
	KindEvent
	// KindMisc is a configuration flag exposed to the logic.
	KindMisc
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindTrick:
		return "trick"
	case KindEvent:
		return "event"
	case KindMisc:
		return "misc"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "item", "items":
		return KindItem, nil
	case "trick", "tricks":
		return KindTrick, nil
	case "event", "events":
		return KindEvent, nil
	case "misc":
		return KindMisc, nil
	}
	return 0, fmt.Errorf("resource: unknown kind %q", s)
}

// Index is a dense numeric handle assigned by a Database. Indices start at 0
// and increment in registration order.
type Index int

// Info describes a single interned resource.
type Info struct {
	Index    Index  `json:"index" yaml:"-"`
	Kind     Kind   `json:"kind" yaml:"-"`
	Name     string `json:"name" yaml:"name"`
	LongName string `json:"longName,omitempty" yaml:"long_name,omitempty"`
	// Max caps the amount a collection may hold. Zero means uncapped.
	Max int `json:"max,omitempty" yaml:"max,omitempty"`
}

// Quantity pairs a resource with an amount.
type Quantity struct {
	Resource Index `json:"resource"`
	Amount   int   `json:"amount"`
}
