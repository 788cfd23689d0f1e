package perm

import (
	"encoding/json"
	"fmt"
)

// Level is an ordered capability tier for one resource.
type Level int8

// Permission levels, lowest to highest.
const (
	LevelHidden Level = iota
	LevelView
	LevelManage
)

// String returns the wire name of the level.
func (l Level) String() string {
	switch l {
	case LevelView:
		return "view"
	case LevelManage:
		return "manage"
	default:
		return "hidden"
	}
}

// ParseLevel maps a wire name to a Level. Unknown names parse as hidden,
// matching the default for absent entries.
func ParseLevel(s string) Level {
	switch s {
	case "view":
		return LevelView
	case "manage":
		return LevelManage
	default:
		return LevelHidden
	}
}

// MarshalJSON encodes the level as its wire name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a wire name, tolerating unknown values as hidden.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("permission level: %w", err)
	}
	*l = ParseLevel(s)
	return nil
}
