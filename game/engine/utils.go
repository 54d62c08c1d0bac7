package engine

import (
	"fmt"
	"unicode/utf8"
)

// CellInfo describes one board coordinate for clients
type CellInfo struct {
	Position Position `json:"position"`
	Kind     Kind     `json:"kind"`
	Target   bool     `json:"target"`
}

// DescribeCell reports what occupies a coordinate and whether it is a target
func DescribeCell(b *Board, targets []Position, p Position) (CellInfo, error) {
	if b == nil {
		return CellInfo{}, fmt.Errorf("describe cell: nil board: %w", ErrInvalidArgument)
	}
	ent, err := b.Get(p.Row, p.Col)
	if err != nil {
		return CellInfo{}, err
	}
	info := CellInfo{Position: p, Kind: ent.Kind}
	for _, t := range targets {
		if t == p {
			info.Target = true
			break
		}
	}
	return info, nil
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// NearestLooseBaggage finds the closest baggage not resting on a target
func NearestLooseBaggage(b *Board, targets []Position, from Position) (Position, int, bool) {
	onTarget := make(map[Position]bool, len(targets))
	for _, t := range targets {
		onTarget[t] = true
	}

	minDistance := -1
	var nearest Position
	for _, p := range b.Find(Baggage) {
		if onTarget[p] {
			continue
		}
		if d := ManhattanDistance(from, p); minDistance == -1 || d < minDistance {
			minDistance, nearest = d, p
		}
	}
	return nearest, minDistance, minDistance >= 0
}

// NearestOpenTarget finds the closest target without baggage
func NearestOpenTarget(b *Board, targets []Position, from Position) (Position, int, bool) {
	minDistance := -1
	var nearest Position
	for _, t := range targets {
		if b.At(t) == Baggage {
			continue
		}
		if d := ManhattanDistance(from, t); minDistance == -1 || d < minDistance {
			minDistance, nearest = d, t
		}
	}
	return nearest, minDistance, minDistance >= 0
}

// LayoutStats summarizes a level layout
type LayoutStats struct {
	Rows    int `json:"rows"`
	Cols    int `json:"cols"`
	Walls   int `json:"walls"`
	Floor   int `json:"floor"`
	Baggage int `json:"baggage"`
	Targets int `json:"targets"`
	Players int `json:"players"`
}

// AnalyzeLayout counts the cells of each kind in a layout
func AnalyzeLayout(layout []string) LayoutStats {
	stats := LayoutStats{Rows: len(layout)}
	for _, row := range layout {
		if n := utf8.RuneCountInString(row); n > stats.Cols {
			stats.Cols = n
		}
		for _, ch := range row {
			switch KindFromRune(ch) {
			case Wall:
				stats.Walls++
			case Baggage:
				stats.Baggage++
			case Target:
				stats.Targets++
			case Player:
				stats.Players++
			default:
				stats.Floor++
			}
		}
	}
	return stats
}
