package requirement

import (
	"fmt"
	"strings"

	"github.com/gravitas-games/seedforge/internal/resource"
)

// Level is a trick difficulty threshold.
type Level int

const (
	LevelDisabled Level = iota
	LevelBeginner
	LevelIntermediate
	LevelAdvanced
	LevelExpert
	LevelHypermode
)

var levelNames = [...]string{"disabled", "beginner", "intermediate", "advanced", "expert", "hypermode"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts a level name or its number.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if s == name || s == fmt.Sprint(i) {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("requirement: unknown trick level %q", s)
}

// TrickLevels holds the per-resolve trick configuration. Tricks missing from
// the map are disabled.
type TrickLevels map[resource.Index]Level

// Get returns the configured level for idx.
func (t TrickLevels) Get(idx resource.Index) Level {
	if t == nil {
		return LevelDisabled
	}
	return t[idx]
}
