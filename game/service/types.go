package service

import (
	"time"

	"github.com/wricardo/sokoban/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	LevelConfig    *engine.LevelConfig `json:"level_config"`
}

// MoveResult contains the result of a move or undo operation
type MoveResult struct {
	Success     bool              `json:"success"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// Stop reason codes reported by BulkMove
const (
	StopBlockedWall      = "blocked_wall"
	StopBlockedBaggage   = "blocked_baggage"
	StopBlockedBoundary  = "blocked_boundary"
	StopInvalidDirection = "invalid_direction"
	StopSolved           = "solved"
)

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_wall|blocked_baggage|blocked_boundary|invalid_direction|solved
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos      engine.Position `json:"start_pos"`
	EndPos        engine.Position `json:"end_pos"`
	PushesDelta   int             `json:"pushes_delta"`
	OnTargetStart int             `json:"baggage_on_target_start"`
	OnTargetEnd   int             `json:"baggage_on_target_end"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	Solved        bool     `json:"solved"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	LocalView3x3  []string `json:"local_view_3x3,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx         int              `json:"idx"`
	Dir         string           `json:"dir"`
	From        engine.Position  `json:"from"`
	To          engine.Position  `json:"to"`
	Success     bool             `json:"success"`
	Pushed      bool             `json:"pushed,omitempty"`
	BaggageFrom *engine.Position `json:"baggage_from,omitempty"`
	BaggageTo   *engine.Position `json:"baggage_to,omitempty"`
	OnTarget    bool             `json:"on_target,omitempty"` // pushed baggage landed on a target
	Solved      bool             `json:"solved,omitempty"`
}

// AttemptInfo details the cell that blocked a move
type AttemptInfo struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	TileChar string `json:"tile_char"`
	TileType string `json:"tile_type"`
	Blocker  string `json:"blocker"` // wall, baggage, boundary
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "push", "target_reached", "target_left", "solved", "undo", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a level configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Baggage     int    `json:"baggage"`
}

// ValidationResult reports whether level text is playable
type ValidationResult struct {
	Valid    bool               `json:"valid"`
	Problems []string           `json:"problems"`
	Stats    engine.LayoutStats `json:"stats"`
}
