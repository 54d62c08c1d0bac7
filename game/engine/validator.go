package engine

import (
	"fmt"
	"strings"
)

// IsStructurallyValid reports whether a builder-mode board is playable
func IsStructurallyValid(b *Board) bool {
	return len(StructureProblems(b)) == 0
}

// StructureProblems lists every structural rule the board breaks:
// each row, ignoring empty cells, must start and end with a wall;
// baggage and target counts must match and be at least one;
// exactly one player must exist.
func StructureProblems(b *Board) []string {
	if b == nil {
		return []string{"board is missing"}
	}

	var problems []string
	players, baggage, targets := 0, 0, 0
	for r, row := range b.cells {
		var occupied []Entity
		for _, e := range row {
			if e.Kind != Empty {
				occupied = append(occupied, e)
			}
		}
		for i, e := range occupied {
			if (i == 0 || i == len(occupied)-1) && e.Kind != Wall {
				problems = append(problems, fmt.Sprintf("row %d: border cell at column %d is %s, not wall", r+1, e.Col+1, e.Kind))
			}
			switch e.Kind {
			case Player:
				players++
			case Baggage:
				baggage++
			case Target:
				targets++
			}
		}
	}

	if baggage == 0 {
		problems = append(problems, "level has no baggage")
	}
	if baggage != targets {
		problems = append(problems, fmt.Sprintf("baggage count %d does not match target count %d", baggage, targets))
	}
	if players != 1 {
		problems = append(problems, fmt.Sprintf("level must have exactly one player, found %d", players))
	}
	return problems
}

// ValidateLevel decodes text in builder mode and checks its structure
func ValidateLevel(text string) error {
	d, err := Decode(text, BuilderMode)
	if err != nil {
		return err
	}
	if problems := StructureProblems(d.Board); len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrStructuralViolation, strings.Join(problems, "; "))
	}
	return nil
}

// IsSolved reports whether every target holds a baggage
func IsSolved(b *Board, targets []Position) bool {
	if b == nil {
		return false
	}
	for _, t := range targets {
		if b.At(t) != Baggage {
			return false
		}
	}
	return true
}

// BaggageOnTargets counts the targets currently covered by baggage
func BaggageOnTargets(b *Board, targets []Position) int {
	if b == nil {
		return 0
	}
	count := 0
	for _, t := range targets {
		if b.At(t) == Baggage {
			count++
		}
	}
	return count
}
