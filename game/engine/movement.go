package engine

import "fmt"

// Blocker names what stopped a move
type Blocker string

const (
	BlockedNone     Blocker = "none"
	BlockedWall     Blocker = "wall"
	BlockedBaggage  Blocker = "baggage"
	BlockedBoundary Blocker = "boundary"
)

// MovePlan is the outcome of the planning pass for one player command
type MovePlan struct {
	From        Position `json:"from"`
	To          Position `json:"to"`
	Pushes      bool     `json:"pushes"`
	BaggageFrom Position `json:"baggage_from"`
	BaggageTo   Position `json:"baggage_to"`
	Blocked     Blocker  `json:"blocked"`
	// Obstacle is the cell that stopped the chain when Blocked is not BlockedNone
	Obstacle Position `json:"obstacle"`
}

// OK reports whether the whole chain can be committed
func (p MovePlan) OK() bool {
	return p.Blocked == BlockedNone
}

// UndoEntry records one committed player command. Positions are post-move
// coordinates; Inverse moves them back.
type UndoEntry struct {
	Player  Position  `json:"player"`
	Baggage *Position `json:"baggage,omitempty"`
	Inverse Direction `json:"inverse"`
}

// Move resolves a directional command for the player at the given position.
// Blocked moves return false with the board untouched; only misuse is an error.
func Move(b *Board, player Position, dir Direction) (UndoEntry, bool, error) {
	if err := checkPlayer(b, player); err != nil {
		return UndoEntry{}, false, err
	}
	if dir.IsZero() {
		return UndoEntry{}, false, nil
	}

	plan := planMove(b, player, dir)
	if !plan.OK() {
		return UndoEntry{}, false, nil
	}

	entry, err := commit(b, plan, dir)
	if err != nil {
		return UndoEntry{}, false, err
	}
	return entry, true, nil
}

// Plan runs the planning pass without mutating the board. Invalid input and
// the zero direction produce a plan that goes nowhere.
func Plan(b *Board, player Position, dir Direction) MovePlan {
	if checkPlayer(b, player) != nil || dir.IsZero() {
		return MovePlan{From: player, To: player, Blocked: BlockedNone}
	}
	return planMove(b, player, dir)
}

func checkPlayer(b *Board, player Position) error {
	if b == nil {
		return fmt.Errorf("move: nil board: %w", ErrInvalidArgument)
	}
	if !b.InBounds(player) {
		return fmt.Errorf("move: player at (%d,%d): %w: %w", player.Row, player.Col, ErrInvalidArgument, ErrOutOfBounds)
	}
	if k := b.At(player); k != Player {
		return fmt.Errorf("move: cell (%d,%d) holds %s, not a player: %w", player.Row, player.Col, k, ErrInvalidArgument)
	}
	return nil
}

func planMove(b *Board, player Position, dir Direction) MovePlan {
	plan := MovePlan{From: player, To: player.Add(dir), Blocked: BlockedNone}
	planStep(b, player, dir, &plan)
	return plan
}

// planStep checks whether the entity at from can advance one cell. A player
// entering a baggage cell recurses once for the baggage.
func planStep(b *Board, from Position, dir Direction, plan *MovePlan) bool {
	dest := from.Add(dir)
	if !b.InBounds(dest) {
		plan.Blocked, plan.Obstacle = BlockedBoundary, dest
		return false
	}

	switch b.At(dest) {
	case Wall:
		plan.Blocked, plan.Obstacle = BlockedWall, dest
		return false
	case Baggage:
		if b.At(from) == Baggage {
			plan.Blocked, plan.Obstacle = BlockedBaggage, dest
			return false
		}
		plan.Pushes = true
		plan.BaggageFrom, plan.BaggageTo = dest, dest.Add(dir)
		return planStep(b, dest, dir, plan)
	}
	return true
}

func commit(b *Board, plan MovePlan, dir Direction) (UndoEntry, error) {
	entry := UndoEntry{Player: plan.To, Inverse: dir.Inverse()}
	if plan.Pushes {
		if err := b.Swap(plan.BaggageFrom, plan.BaggageTo); err != nil {
			return UndoEntry{}, err
		}
		to := plan.BaggageTo
		entry.Baggage = &to
	}
	if err := b.Swap(plan.From, plan.To); err != nil {
		return UndoEntry{}, err
	}
	return entry, nil
}
