// Command validate checks the level files in ../levels (or the files given as
// arguments). It checks:
//   - JSON/YAML structure and required fields
//   - Layout playability (one player, at least one bag, bags match targets)
//   - Connectivity: every bag and target lies in the player's region
//   - Static deadlocks: no bag starts wedged in a corner off a target
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/sokoban/game/config"
	"github.com/wricardo/sokoban/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateLevel loads and validates a single level file
func validateLevel(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	level, err := config.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to load level: %v", err)
		return result
	}
	if err := engine.ValidateLevelConfig(level); err != nil {
		result.fail("%v", err)
		return result
	}

	decoded, err := engine.DecodeRows(level.Layout, engine.GameMode)
	if err != nil {
		result.fail("Failed to decode layout: %v", err)
		return result
	}

	connectivity := validateConnectivity(decoded)
	deadlocks := findCornerDeadlocks(decoded.Board, decoded.Targets)
	for _, p := range deadlocks {
		result.fail("Bag at (%d,%d) is stuck in a corner", p.Row, p.Col)
	}
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)

	if result.Valid {
		stats := engine.AnalyzeLayout(level.Layout)
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ Name: %s", level.Name),
			fmt.Sprintf("✓ Grid: %dx%d", stats.Rows, stats.Cols),
			fmt.Sprintf("✓ Bags: %d", stats.Baggage),
			fmt.Sprintf("✓ Targets: %d", len(decoded.Targets)),
			fmt.Sprintf("✓ Undo capacity: %d", level.UndoCapacity),
		)
	}
	return result
}

// validateConnectivity flood-fills from the player over every non-wall cell
// and reports bags and targets outside the reached region.
func validateConnectivity(decoded *engine.Decoded) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []string{}}
	if !decoded.HasPlayer {
		result.fail("Cannot validate connectivity: no player")
		return result
	}

	board := decoded.Board
	visited := map[engine.Position]bool{decoded.Player: true}
	queue := []engine.Position{decoded.Player}
	directions := []engine.Direction{engine.Up, engine.Down, engine.Left, engine.Right}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dir := range directions {
			next := current.Add(dir)
			if visited[next] || board.At(next) == engine.Wall {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	var unreachable []string
	for _, p := range board.Find(engine.Baggage) {
		if !visited[p] {
			unreachable = append(unreachable, fmt.Sprintf("Bag at (%d,%d)", p.Row, p.Col))
		}
	}
	for _, p := range decoded.Targets {
		if !visited[p] {
			unreachable = append(unreachable, fmt.Sprintf("Target at (%d,%d)", p.Row, p.Col))
		}
	}

	if len(unreachable) > 0 {
		result.fail("Connectivity failure: %d cells unreachable from player", len(unreachable))
		for _, cell := range unreachable {
			result.Errors = append(result.Errors, "Unreachable: "+cell)
		}
		return result
	}
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: %d cells reachable from player", len(visited)))
	return result
}

// findCornerDeadlocks returns bags off target with walls on two adjacent sides.
// Such a bag can never be pushed again.
func findCornerDeadlocks(board *engine.Board, targets []engine.Position) []engine.Position {
	onTarget := make(map[engine.Position]bool, len(targets))
	for _, t := range targets {
		onTarget[t] = true
	}

	var stuck []engine.Position
	for _, p := range board.Find(engine.Baggage) {
		if onTarget[p] {
			continue
		}
		vertical := board.At(p.Add(engine.Up)) == engine.Wall || board.At(p.Add(engine.Down)) == engine.Wall
		horizontal := board.At(p.Add(engine.Left)) == engine.Wall || board.At(p.Add(engine.Right)) == engine.Wall
		if vertical && horizontal {
			stuck = append(stuck, p)
		}
	}
	return stuck
}

// levelFiles returns the arguments, or every level file in dir
func levelFiles(dir string, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && config.IsLevelFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// main validates each level file, printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	files, err := levelFiles("../levels", os.Args[1:])
	if err != nil {
		fmt.Printf("Error finding level files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateLevel(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
