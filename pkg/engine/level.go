package engine

import (
	"strings"

	"github.com/andrew-torda/modelfix/pkg/diag"
)

// Level is how much molecular dynamics refinement the engine does on
// the loops it builds.
type Level byte

const (
	LevelNone Level = iota
	LevelVeryFast
	LevelFast
	LevelSlow
	LevelVerySlow
	LevelSlowLarge
)

// DefaultLevel is used when no level, or an unknown one, is asked for.
const DefaultLevel = LevelVeryFast

var levelNames = [...]string{
	LevelNone:      "none",
	LevelVeryFast:  "very_fast",
	LevelFast:      "fast",
	LevelSlow:      "slow",
	LevelVerySlow:  "very_slow",
	LevelSlowLarge: "slow_large",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// Python is the expression for the level in a MODELLER script.
func (l Level) Python() string {
	if l == LevelNone || int(l) >= len(levelNames) {
		return "None"
	}
	return "refine." + levelNames[l]
}

// ParseLevel turns a name into a Level. The empty string gives the
// default. An unknown name also gives the default, along with a
// warning that says so.
func ParseLevel(name string) (Level, *diag.Warning) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultLevel, nil
	}
	for i, s := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	w := diag.Warnf(diag.WarnRefinement,
		"refinement option %s not supported. Valid refinement options: %s. Continuing with %s refinement",
		name, strings.Join(levelNames[1:], ", "), DefaultLevel)
	return DefaultLevel, &w
}
