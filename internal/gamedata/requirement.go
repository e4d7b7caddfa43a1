package gamedata

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resource"
)

// RequirementDef is the YAML form of a requirement. It accepts the scalars
// "trivial" and "impossible", or a mapping with one of has, trick, all, any.
type RequirementDef struct {
	Scalar string
	Has    string
	Amount int
	Trick  string
	Level  string
	All    []RequirementDef
	Any    []RequirementDef
}

// UnmarshalYAML decodes either form.
func (r *RequirementDef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.Scalar = strings.ToLower(strings.TrimSpace(value.Value))
		return nil
	}
	var raw struct {
		Has    string           `yaml:"has"`
		Amount int              `yaml:"amount"`
		Trick  string           `yaml:"trick"`
		Level  string           `yaml:"level"`
		All    []RequirementDef `yaml:"all"`
		Any    []RequirementDef `yaml:"any"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*r = RequirementDef{
		Has:    raw.Has,
		Amount: raw.Amount,
		Trick:  raw.Trick,
		Level:  raw.Level,
		All:    raw.All,
		Any:    raw.Any,
	}
	return nil
}

// MarshalYAML emits the same shapes UnmarshalYAML accepts.
func (r RequirementDef) MarshalYAML() (any, error) {
	switch {
	case r.Scalar != "":
		return r.Scalar, nil
	case r.Has != "":
		m := map[string]any{"has": r.Has}
		if r.Amount > 1 {
			m["amount"] = r.Amount
		}
		return m, nil
	case r.Trick != "":
		return map[string]any{"trick": r.Trick, "level": r.Level}, nil
	case r.All != nil:
		return map[string]any{"all": r.All}, nil
	case r.Any != nil:
		return map[string]any{"any": r.Any}, nil
	}
	return "trivial", nil
}

// Build resolves names against db. A nil def is trivial.
func (r *RequirementDef) Build(db *resource.Database) (requirement.Requirement, error) {
	if r == nil {
		return requirement.Trivial(), nil
	}
	switch {
	case r.Scalar != "":
		switch r.Scalar {
		case "trivial":
			return requirement.Trivial(), nil
		case "impossible":
			return requirement.Impossible(), nil
		}
		return nil, fmt.Errorf("gamedata: unknown requirement %q", r.Scalar)
	case r.Has != "":
		info, err := findHeld(db, r.Has)
		if err != nil {
			return nil, err
		}
		amount := r.Amount
		if amount == 0 {
			amount = 1
		}
		return requirement.Has(info.Index, amount), nil
	case r.Trick != "":
		info, err := db.Find(resource.KindTrick, r.Trick)
		if err != nil {
			return nil, err
		}
		level := requirement.LevelBeginner
		if r.Level != "" {
			if level, err = requirement.ParseLevel(r.Level); err != nil {
				return nil, err
			}
		}
		return requirement.HasTrick(info.Index, level), nil
	case r.All != nil:
		items, err := buildAll(db, r.All)
		if err != nil {
			return nil, err
		}
		return requirement.All(items...), nil
	case r.Any != nil:
		items, err := buildAll(db, r.Any)
		if err != nil {
			return nil, err
		}
		return requirement.Any(items...), nil
	}
	return nil, errors.New("gamedata: empty requirement")
}

func buildAll(db *resource.Database, defs []RequirementDef) ([]requirement.Requirement, error) {
	out := make([]requirement.Requirement, 0, len(defs))
	for i := range defs {
		req, err := defs[i].Build(db)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

// findHeld resolves a "has" name among items, events and misc resources, in
// that order.
func findHeld(db *resource.Database, name string) (resource.Info, error) {
	for _, kind := range []resource.Kind{resource.KindItem, resource.KindEvent, resource.KindMisc} {
		if info, ok := db.Lookup(kind, name); ok {
			return info, nil
		}
	}
	return db.Find(resource.KindItem, name)
}
