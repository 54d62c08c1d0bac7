package engine

import (
	"fmt"
	"strings"
)

// DefaultLayout is the classic level used when no level file is available
var DefaultLayout = []string{
	"    ######",
	"    ##   #",
	"    ##$  #",
	"  ####  $##",
	"  ##  $ $ #",
	"#### # ## #   ######",
	"##   # ## #####  ..#",
	"## $  $          ..#",
	"###### ### #@##  ..#",
	"    ##     #########",
	"    ########",
}

// DefaultLevelConfig returns the built-in classic level
func DefaultLevelConfig() *LevelConfig {
	layout := make([]string, len(DefaultLayout))
	copy(layout, DefaultLayout)
	return &LevelConfig{
		Name:         "Classic",
		Description:  "The classic warehouse: six bags, six targets.",
		Layout:       layout,
		UndoCapacity: DefaultUndoCapacity,
		Messages:     DefaultMessages(),
	}
}

// DefaultMessages returns the messages used when a level leaves them empty
func DefaultMessages() LevelMessages {
	return LevelMessages{
		Welcome:   "Push every bag onto a target.",
		Moved:     "Moved %s.",
		Pushed:    "Pushed a bag %s.",
		Blocked:   "Can't move %s.",
		Solved:    "Level complete!",
		Undone:    "Move undone.",
		UndoEmpty: "Nothing to undo.",
	}
}

// ValidateLevelConfig validates a level configuration for correctness and playability
func ValidateLevelConfig(config *LevelConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil: %w", ErrInvalidArgument)
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if len(config.Layout) == 0 {
		return fmt.Errorf("config validation: layout must have at least one row")
	}
	if config.UndoCapacity < 0 || config.UndoCapacity > MaxUndoCapacity {
		return fmt.Errorf("config validation: undo_capacity must be between 0 and %d, got %d", MaxUndoCapacity, config.UndoCapacity)
	}

	for i, row := range config.Layout {
		if strings.ContainsAny(row, "\n\r") {
			return fmt.Errorf("config validation: row %d contains a line break", i+1)
		}
		for j, char := range row {
			switch char {
			case WallChar, BaggageChar, PlayerChar, TargetChar, EmptyChar:
			default:
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", char, i+1, j+1)
			}
		}
	}

	if err := ValidateLevel(config.Text()); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	return nil
}

// messages fills empty level messages with the defaults
func messages(config *LevelConfig) LevelMessages {
	m := config.Messages
	d := DefaultMessages()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&m.Welcome, d.Welcome)
	fill(&m.Moved, d.Moved)
	fill(&m.Pushed, d.Pushed)
	fill(&m.Blocked, d.Blocked)
	fill(&m.Solved, d.Solved)
	fill(&m.Undone, d.Undone)
	fill(&m.UndoEmpty, d.UndoEmpty)
	return m
}
