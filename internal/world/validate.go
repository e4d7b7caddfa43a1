package world

import (
	"fmt"
	"sort"

	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resource"
)

// ValidationSeverity indicates whether a finding blocks the build or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks the build
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Node     NodeIndex // NoNode for world-level findings
	Name     string    // full node name, when Node is set
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Node == NoNode {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.Name, e.Message)
}

// Validate runs the structural checks on w. It never mutates the world.
func Validate(w *World) []ValidationError {
	var out []ValidationError
	out = append(out, validateNames(w)...)
	out = append(out, validatePickups(w)...)
	out = append(out, validateNodes(w)...)
	out = append(out, validateConnections(w)...)
	return out
}

func nodeErr(w *World, idx NodeIndex, sev ValidationSeverity, format string, args ...any) ValidationError {
	return ValidationError{Node: idx, Name: w.FullName(idx), Message: fmt.Sprintf(format, args...), Severity: sev}
}

func validateNames(w *World) []ValidationError {
	var out []ValidationError
	seen := make(map[string]bool, len(w.Nodes))
	for i := range w.Nodes {
		n := &w.Nodes[i]
		if n.Name == "" {
			out = append(out, nodeErr(w, n.Index, SeverityError, "empty node name"))
			continue
		}
		name := w.FullName(n.Index)
		if seen[name] {
			out = append(out, nodeErr(w, n.Index, SeverityError, "duplicate node name"))
		}
		seen[name] = true
	}
	for _, a := range w.Areas {
		if len(a.Nodes) == 0 {
			out = append(out, ValidationError{
				Node:     NoNode,
				Message:  fmt.Sprintf("area %s/%s has no nodes", w.Regions[a.Region].Name, a.Name),
				Severity: SeverityWarning,
			})
		}
	}
	return out
}

func validatePickups(w *World) []ValidationError {
	var out []ValidationError
	owner := make(map[PickupIndex]NodeIndex)
	for i := range w.Nodes {
		n := &w.Nodes[i]
		if n.Kind != NodePickup {
			continue
		}
		if n.Pickup < 0 {
			out = append(out, nodeErr(w, n.Index, SeverityError, "negative pickup index %d", n.Pickup))
			continue
		}
		if prev, dup := owner[n.Pickup]; dup {
			out = append(out, nodeErr(w, n.Index, SeverityError,
				"pickup index %d already used by %s", n.Pickup, w.FullName(prev)))
			continue
		}
		owner[n.Pickup] = n.Index
	}
	return out
}

func validateNodes(w *World) []ValidationError {
	var out []ValidationError
	db := w.Resources
	for i := range w.Nodes {
		n := &w.Nodes[i]
		switch n.Kind {
		case NodeEvent:
			info, ok := db.Get(n.Event)
			if !ok {
				out = append(out, nodeErr(w, n.Index, SeverityError, "event resource %d is not registered", n.Event))
			} else if info.Kind != resource.KindEvent {
				out = append(out, nodeErr(w, n.Index, SeverityError, "grants %s %q, want an event", info.Kind, info.Name))
			}
		case NodeDock, NodeTeleporter:
			if n.DefaultTarget == NoNode {
				out = append(out, nodeErr(w, n.Index, SeverityError, "%s has no default target", n.Kind))
			} else if t := w.Node(n.DefaultTarget); t == nil {
				out = append(out, nodeErr(w, n.Index, SeverityError, "target %d out of range", n.DefaultTarget))
			} else if t.Area == n.Area {
				out = append(out, nodeErr(w, n.Index, SeverityWarning, "%s leads back into its own area", n.Kind))
			}
		}
		out = append(out, validateRequirement(w, n.Index, n.Requirement)...)
	}
	return out
}

func validateConnections(w *World) []ValidationError {
	var out []ValidationError
	for _, a := range w.Areas {
		sources := make([]NodeIndex, 0, len(a.Connections))
		for from := range a.Connections {
			sources = append(sources, from)
		}
		sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
		for _, from := range sources {
			conns := a.Connections[from]
			if w.Nodes[from].Area != a.Index {
				out = append(out, nodeErr(w, from, SeverityError, "connection stored in foreign area %s", a.Name))
			}
			for _, c := range conns {
				to := w.Node(c.To)
				if to == nil {
					out = append(out, nodeErr(w, from, SeverityError, "connection to unknown node %d", c.To))
					continue
				}
				if to.Area != a.Index {
					out = append(out, nodeErr(w, from, SeverityError,
						"connection leaves area to %s; use a dock", w.FullName(c.To)))
				}
				out = append(out, validateRequirement(w, from, c.Requirement)...)
			}
		}
	}
	return out
}

func validateRequirement(w *World, at NodeIndex, req requirement.Requirement) []ValidationError {
	var out []ValidationError
	requirement.Walk(req, func(leaf requirement.Requirement) {
		switch r := leaf.(type) {
		case requirement.Resource:
			info, ok := w.Resources.Get(r.Index)
			if !ok {
				out = append(out, nodeErr(w, at, SeverityError, "requirement references unknown resource %d", r.Index))
			} else if info.Kind == resource.KindTrick {
				out = append(out, nodeErr(w, at, SeverityError, "trick %q used as a resource leaf", info.Name))
			}
		case requirement.Trick:
			info, ok := w.Resources.Get(r.Index)
			if !ok || info.Kind != resource.KindTrick {
				out = append(out, nodeErr(w, at, SeverityError, "trick leaf references non-trick resource %d", r.Index))
			}
		}
	})
	return out
}
