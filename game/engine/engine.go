package engine

import (
	"fmt"
	"strings"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsSolved() bool
	GetPlayerPosition() Position

	// Movement operations
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string
	LastPlan() MovePlan

	// Undo
	Undo() bool
	CanUndo() bool

	// Configuration
	GetConfig() *LevelConfig
	SetConfig(config *LevelConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Targets
	GetTotalTargets() int
	GetBaggageOnTargets() int
	GetRemainingTargets() int
}

// GameEngine implements the Engine interface. Each instance owns its board
// and undo log.
type GameEngine struct {
	config   *LevelConfig
	messages LevelMessages
	board    *Board
	targets  []Position
	player   Position
	undo     *UndoLog
	lastPlan MovePlan
	state    *GameState
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *LevelConfig) (*GameEngine, error) {
	if err := ValidateLevelConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{}
	if err := engine.load(config); err != nil {
		return nil, err
	}
	return engine, nil
}

// NewEngineWithDefaults creates a new game engine on the built-in classic level
func NewEngineWithDefaults() *GameEngine {
	engine := &GameEngine{}
	if err := engine.load(DefaultLevelConfig()); err != nil {
		panic(fmt.Sprintf("default level does not load: %v", err))
	}
	return engine
}

// load decodes the level and starts a fresh state for it
func (e *GameEngine) load(config *LevelConfig) error {
	text := config.Text()
	d, err := Decode(text, GameMode)
	if err != nil {
		return err
	}
	if !d.HasPlayer {
		return fmt.Errorf("level %q has no player: %w", config.Name, ErrInvalidArgument)
	}

	e.config = config
	e.messages = messages(config)
	e.board, e.targets, e.player = d.Board, d.Targets, d.Player
	e.undo = NewUndoLog(config.UndoCapacity)
	e.lastPlan = MovePlan{From: d.Player, To: d.Player, Blocked: BlockedNone}
	e.state = &GameState{
		Level:        text,
		LevelName:    config.Name,
		Message:      e.messages.Welcome,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	e.syncState()
	return nil
}

// syncState copies the board into the serializable state
func (e *GameEngine) syncState() {
	e.state.Grid = EncodeRows(e.board)
	e.state.View = Render(e.board, e.targets)
	e.state.Targets = append([]Position(nil), e.targets...)
	e.state.PlayerPos = e.player
	e.state.Completed = IsSolved(e.board, e.targets)
	e.state.OnTarget = BaggageOnTargets(e.board, e.targets)
	e.state.TotalGoals = len(e.targets)
	e.state.UndoDepth = e.undo.Len()
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the board with a persisted state. The board is rebuilt
// from the grid rows and target list; the undo log starts empty.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil: %w", ErrInvalidArgument)
	}

	var (
		d   *Decoded
		err error
	)
	targets := state.Targets
	if len(state.Grid) > 0 {
		d, err = DecodeRows(state.Grid, GameMode)
	} else if state.Level != "" {
		d, err = Decode(state.Level, GameMode)
		if err == nil {
			targets = d.Targets
		}
	} else {
		return fmt.Errorf("state has neither grid nor level text: %w", ErrInvalidArgument)
	}
	if err != nil {
		return err
	}
	if !d.HasPlayer {
		return fmt.Errorf("state grid has no player: %w", ErrInvalidArgument)
	}
	for _, t := range targets {
		if !d.Board.InBounds(t) {
			return fmt.Errorf("target (%d,%d): %w", t.Row, t.Col, ErrOutOfBounds)
		}
	}

	e.board, e.targets, e.player = d.Board, append([]Position(nil), targets...), d.Player
	if e.undo == nil {
		e.undo = NewUndoLog(DefaultUndoCapacity)
	}
	e.undo.Clear()
	e.lastPlan = MovePlan{From: d.Player, To: d.Player, Blocked: BlockedNone}
	if state.MoveHistory == nil {
		state.MoveHistory = []MoveHistoryEntry{}
	}
	if state.CurrentMoves == nil {
		state.CurrentMoves = []MoveHistoryEntry{}
	}
	e.state = state
	e.syncState()
	return nil
}

// Reset resets the level to its initial layout
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	if err := e.load(e.config); err != nil {
		// The config was validated on load, so this only fails on corruption
		e.state.Message = fmt.Sprintf("Reset failed: %v", err)
		return e.state
	}

	// Restore cumulative history and totals; clear only the current segment
	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// IsSolved returns whether every target holds a baggage
func (e *GameEngine) IsSolved() bool {
	return e.state.Completed
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.player
}

// Board returns the live board. Callers must not mutate it.
func (e *GameEngine) Board() *Board {
	return e.board
}

// Targets returns the target coordinates
func (e *GameEngine) Targets() []Position {
	return e.targets
}

// Move attempts to move the player in the specified direction
func (e *GameEngine) Move(direction string) bool {
	from := e.player
	dir, ok := ParseDirection(direction)
	if !ok {
		e.lastPlan = MovePlan{From: from, To: from, Blocked: BlockedNone}
		e.state.Message = fmt.Sprintf("Unknown direction %q. Use one of: %s", direction, strings.Join(Directions, ", "))
		return false
	}

	plan := Plan(e.board, from, dir)
	e.lastPlan = plan

	entry, moved, err := Move(e.board, from, dir)
	if err != nil {
		e.state.Message = fmt.Sprintf("Move failed: %v", err)
		moved = false
	}

	history := MoveHistoryEntry{Action: dir.String(), FromPosition: from, ToPosition: from, Success: moved}
	if moved {
		e.undo.Push(entry)
		e.player = entry.Player
		history.ToPosition = entry.Player
		if entry.Baggage != nil {
			e.state.Pushes++
			history.Pushed = true
			to := *entry.Baggage
			history.BaggageTo = &to
			e.state.Message = format(e.messages.Pushed, dir)
		} else {
			e.state.Message = format(e.messages.Moved, dir)
		}
	} else if err == nil {
		e.state.Message = format(e.messages.Blocked, dir) + fmt.Sprintf(" [Blocked by: %s at (%d,%d)]", plan.Blocked, plan.Obstacle.Row, plan.Obstacle.Col)
	}

	e.syncState()
	if moved && e.state.Completed {
		e.state.Message = e.messages.Solved
	}
	e.state.AddMoveToHistory(history)

	return moved
}

// LastPlan returns the plan computed for the most recent move attempt
func (e *GameEngine) LastPlan() MovePlan {
	return e.lastPlan
}

// CanMove checks if the player can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	dir, ok := ParseDirection(direction)
	if !ok {
		return false
	}
	return Plan(e.board, e.player, dir).OK()
}

// GetPossibleMoves returns all valid directions the player can move
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// Undo reverts the most recent move
func (e *GameEngine) Undo() bool {
	entry, ok := e.undo.Peek()
	if !ok {
		e.state.Message = e.messages.UndoEmpty
		return false
	}

	from := e.player
	undone, err := Undo(e.undo, e.board)
	if err != nil {
		e.state.Message = fmt.Sprintf("Undo failed: %v", err)
		e.syncState()
		return false
	}
	if !undone {
		e.state.Message = e.messages.UndoEmpty
		return false
	}

	e.player = entry.Player.Add(entry.Inverse)
	if entry.Baggage != nil && e.state.Pushes > 0 {
		e.state.Pushes--
	}
	e.lastPlan = MovePlan{From: from, To: e.player, Blocked: BlockedNone}
	e.state.Message = e.messages.Undone
	e.syncState()
	e.state.AddMoveToHistory(MoveHistoryEntry{
		Action:       "undo",
		FromPosition: from,
		ToPosition:   e.player,
		Pushed:       entry.Baggage != nil,
		Success:      true,
	})
	return true
}

// CanUndo reports whether the undo log holds an entry
func (e *GameEngine) CanUndo() bool {
	return !e.undo.IsEmpty()
}

// UndoLog exposes the undo history
func (e *GameEngine) UndoLog() *UndoLog {
	return e.undo
}

// GetConfig returns the current level configuration
func (e *GameEngine) GetConfig() *LevelConfig {
	return e.config
}

// SetConfig sets a new level configuration and resets the game
func (e *GameEngine) SetConfig(config *LevelConfig) error {
	if err := ValidateLevelConfig(config); err != nil {
		return err
	}
	return e.load(config)
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetTotalTargets returns the number of targets in the level
func (e *GameEngine) GetTotalTargets() int {
	return len(e.targets)
}

// GetBaggageOnTargets returns the number of targets covered by baggage
func (e *GameEngine) GetBaggageOnTargets() int {
	return BaggageOnTargets(e.board, e.targets)
}

// GetRemainingTargets returns the number of uncovered targets
func (e *GameEngine) GetRemainingTargets() int {
	return e.GetTotalTargets() - e.GetBaggageOnTargets()
}

// BulkMove executes multiple moves in sequence, returning success status for each.
// It stops after the move that solves the level.
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		success := e.Move(direction)
		results = append(results, success)

		if success && e.IsSolved() {
			break
		}
	}

	return results
}

// AddMoveToHistory adds an entry to both the cumulative and current histories
func (gs *GameState) AddMoveToHistory(entry MoveHistoryEntry) {
	entry.Timestamp = time.Now().Unix()
	entry.MoveNumber = gs.TotalMoves + 1
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}

func format(msg string, dir Direction) string {
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, dir)
	}
	return msg
}
