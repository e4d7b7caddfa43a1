package requirement

import (
	"fmt"
	"strings"

	"github.com/gravitas-games/seedforge/internal/resource"
)

// Describe renders req with resource names from db, e.g.
// "Bombs ≥ 1 and (Missile ≥ 5 or Wall Jump ≥ beginner)".
func Describe(req Requirement, db *resource.Database) string {
	return describe(req, db, false)
}

func describe(req Requirement, db *resource.Database, nested bool) string {
	switch r := req.(type) {
	case nil:
		return "trivial"
	case Resource:
		return fmt.Sprintf("%s ≥ %d", db.Name(r.Index), r.Amount)
	case Trick:
		return fmt.Sprintf("%s ≥ %s", db.Name(r.Index), r.Level)
	case And:
		if len(r.Items) == 0 {
			return "trivial"
		}
		return join(r.Items, " and ", db, nested)
	case Or:
		if len(r.Items) == 0 {
			return "impossible"
		}
		return join(r.Items, " or ", db, nested)
	default:
		return fmt.Sprintf("%T", req)
	}
}

func join(items []Requirement, sep string, db *resource.Database, nested bool) string {
	if len(items) == 1 {
		return describe(items[0], db, nested)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = describe(item, db, true)
	}
	s := strings.Join(parts, sep)
	if nested {
		return "(" + s + ")"
	}
	return s
}
