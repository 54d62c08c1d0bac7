// Command analyze prints quick, human-readable heuristics about the level
// files in the project's levels directory. It summarizes dimensions, counts
// of bags and targets, the player's distance to the nearest loose bag, and a
// Manhattan lower bound on the pushes each level needs.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/sokoban/game/config"
	"github.com/wricardo/sokoban/game/engine"
)

// BagReport describes one loose bag and its closest open target
type BagReport struct {
	Bag      engine.Position
	Target   engine.Position
	Distance int
}

// LevelReport is the analysis of a single level
type LevelReport struct {
	Name        string
	Stats       engine.LayoutStats
	Player      engine.Position
	NearestBag  int
	Bags        []BagReport
	PushesBound int
	Solved      bool
}

func main() {
	dir := "levels"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Printf("Error reading levels: %v\n", err)
		os.Exit(1)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && config.IsLevelFile(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", file)
		if err := analyzeLevel(os.Stdout, filepath.Join(dir, file)); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

// analyzeLevel reads a level file and prints its report to w
func analyzeLevel(w io.Writer, path string) error {
	level, err := config.ReadFile(path)
	if err != nil {
		return err
	}
	report, err := analyze(level)
	if err != nil {
		return err
	}
	printReport(w, report)
	return nil
}

// analyze computes distance heuristics for a level
func analyze(level *engine.LevelConfig) (*LevelReport, error) {
	decoded, err := engine.DecodeRows(level.Layout, engine.GameMode)
	if err != nil {
		return nil, err
	}
	if !decoded.HasPlayer {
		return nil, fmt.Errorf("level %q has no player", level.Name)
	}

	report := &LevelReport{
		Name:       level.Name,
		Stats:      engine.AnalyzeLayout(level.Layout),
		Player:     decoded.Player,
		NearestBag: -1,
		Solved:     engine.IsSolved(decoded.Board, decoded.Targets),
	}

	if _, dist, ok := engine.NearestLooseBaggage(decoded.Board, decoded.Targets, decoded.Player); ok {
		report.NearestBag = dist
	}

	onTarget := make(map[engine.Position]bool, len(decoded.Targets))
	for _, t := range decoded.Targets {
		onTarget[t] = true
	}
	for _, bag := range decoded.Board.Find(engine.Baggage) {
		if onTarget[bag] {
			continue
		}
		target, dist, ok := engine.NearestOpenTarget(decoded.Board, decoded.Targets, bag)
		if !ok {
			continue
		}
		report.Bags = append(report.Bags, BagReport{Bag: bag, Target: target, Distance: dist})
		report.PushesBound += dist
	}
	return report, nil
}

func printReport(w io.Writer, r *LevelReport) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", r.Stats.Rows, r.Stats.Cols)
	fmt.Fprintf(w, "Player Position: (%d, %d)\n", r.Player.Row, r.Player.Col)
	fmt.Fprintf(w, "Bags: %d, Targets: %d, Floor: %d\n", r.Stats.Baggage, r.Stats.Targets, r.Stats.Floor)

	if r.Solved {
		fmt.Fprintf(w, "✅ Level starts solved\n")
		return
	}

	fmt.Fprintf(w, "Nearest loose bag: %d steps from the player\n", r.NearestBag)
	for i, b := range r.Bags {
		if i == 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(r.Bags)-5)
			break
		}
		fmt.Fprintf(w, "   Bag (%d, %d) -> target (%d, %d): %d\n", b.Bag.Row, b.Bag.Col, b.Target.Row, b.Target.Col, b.Distance)
	}
	fmt.Fprintf(w, "Minimum pushes (Manhattan bound): %d\n", r.PushesBound)
}
