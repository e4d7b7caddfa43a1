package resource

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Collection maps resources to non-negative amounts: what the player
// currently has. Amounts only grow; Add rejects negative deltas and clamps
// at the resource's Max when a database is attached.
type Collection struct {
	amounts map[Index]int
	db      *Database
}

// NewCollection returns an empty collection. db may be nil, in which case
// amounts are uncapped.
func NewCollection(db *Database) *Collection {
	return &Collection{amounts: make(map[Index]int), db: db}
}

// CollectionOf builds a collection from quantities.
func CollectionOf(db *Database, qs ...Quantity) (*Collection, error) {
	c := NewCollection(db)
	for _, q := range qs {
		if err := c.Add(q.Resource, q.Amount); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Get returns the amount held for idx.
func (c *Collection) Get(idx Index) int {
	if c == nil {
		return 0
	}
	return c.amounts[idx]
}

// Has reports whether at least amount of idx is held.
func (c *Collection) Has(idx Index, amount int) bool {
	return c.Get(idx) >= amount
}

// Add increases idx by amount and returns an error for negative amounts.
func (c *Collection) Add(idx Index, amount int) error {
	if amount < 0 {
		return fmt.Errorf("resource: cannot remove %d of resource %d", -amount, idx)
	}
	if amount == 0 {
		return nil
	}
	next := c.amounts[idx] + amount
	if c.db != nil {
		if info, ok := c.db.Get(idx); ok && info.Max > 0 && next > info.Max {
			next = info.Max
		}
	}
	c.amounts[idx] = next
	return nil
}

// AddAll adds every quantity and reports whether any amount changed.
func (c *Collection) AddAll(qs []Quantity) (bool, error) {
	changed := false
	for _, q := range qs {
		before := c.Get(q.Resource)
		if err := c.Add(q.Resource, q.Amount); err != nil {
			return changed, err
		}
		if c.Get(q.Resource) != before {
			changed = true
		}
	}
	return changed, nil
}

// Merge adds every amount of other into c.
func (c *Collection) Merge(other *Collection) {
	if other == nil {
		return
	}
	for idx, amount := range other.amounts {
		_ = c.Add(idx, amount) // amounts in a collection are never negative
	}
}

// Copy returns an independent copy sharing the database.
func (c *Collection) Copy() *Collection {
	out := &Collection{amounts: make(map[Index]int, len(c.amounts)), db: c.db}
	for idx, amount := range c.amounts {
		out.amounts[idx] = amount
	}
	return out
}

// Len returns the number of resources with a non-zero amount.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.amounts)
}

// Entries returns the held quantities sorted by index.
func (c *Collection) Entries() []Quantity {
	if c == nil {
		return nil
	}
	out := make([]Quantity, 0, len(c.amounts))
	for idx, amount := range c.amounts {
		out = append(out, Quantity{Resource: idx, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out
}

// Equal reports whether both collections hold exactly the same amounts.
func (c *Collection) Equal(other *Collection) bool {
	if c.Len() != other.Len() {
		return false
	}
	for idx, amount := range c.amounts {
		if other.Get(idx) != amount {
			return false
		}
	}
	return true
}

// Contains reports whether c holds at least every amount in other.
func (c *Collection) Contains(other *Collection) bool {
	for _, q := range other.Entries() {
		if c.Get(q.Resource) < q.Amount {
			return false
		}
	}
	return true
}

// Key returns a canonical string form used to deduplicate search states.
func (c *Collection) Key() string {
	var b strings.Builder
	for i, q := range c.Entries() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(q.Resource)))
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(q.Amount))
	}
	return b.String()
}

// Describe renders the collection with resource names.
func (c *Collection) Describe() string {
	entries := c.Entries()
	parts := make([]string, 0, len(entries))
	for _, q := range entries {
		name := fmt.Sprintf("resource#%d", q.Resource)
		if c.db != nil {
			name = c.db.Name(q.Resource)
		}
		parts = append(parts, fmt.Sprintf("%s=%d", name, q.Amount))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
