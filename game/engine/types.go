package engine

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Kind identifies what occupies a board cell
type Kind string

const (
	Empty   Kind = "empty"
	Wall    Kind = "wall"
	Baggage Kind = "baggage"
	Player  Kind = "player"
	Target  Kind = "target"

	// Level characters
	WallChar    = '#'
	BaggageChar = '$'
	PlayerChar  = '@'
	TargetChar  = '.'
	EmptyChar   = ' '

	// Validation constants
	DefaultUndoCapacity = 10
	MaxUndoCapacity     = 100
	MaxBulkMoves        = 100
	MaxBuilderRows      = 12
	MaxBuilderCols      = MaxBuilderRows * 2
	WebSocketBufferSize = 256
)

// Movable reports whether entities of this kind can be pushed or walk
func (k Kind) Movable() bool {
	return k == Player || k == Baggage
}

// Char returns the level character for the kind
func (k Kind) Char() byte {
	switch k {
	case Wall:
		return WallChar
	case Baggage:
		return BaggageChar
	case Player:
		return PlayerChar
	case Target:
		return TargetChar
	default:
		return EmptyChar
	}
}

// KindFromChar maps a level character to its kind. Unknown characters are Empty.
func KindFromChar(c byte) Kind {
	switch c {
	case WallChar:
		return Wall
	case BaggageChar:
		return Baggage
	case PlayerChar:
		return Player
	case TargetChar:
		return Target
	default:
		return Empty
	}
}

// KindFromRune is KindFromChar for decoded text; runes outside ASCII are Empty
func KindFromRune(r rune) Kind {
	if r >= utf8.RuneSelf {
		return Empty
	}
	return KindFromChar(byte(r))
}

// Position is a 0-based row/column coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the position displaced by d
func (p Position) Add(d Direction) Position {
	return Position{Row: p.Row + d.DRow, Col: p.Col + d.DCol}
}

// Direction is a unit displacement on the board
type Direction struct {
	DRow int `json:"drow"`
	DCol int `json:"dcol"`
}

var (
	Up    = Direction{DRow: -1}
	Down  = Direction{DRow: 1}
	Left  = Direction{DCol: -1}
	Right = Direction{DCol: 1}

	// NoDirection is the result of unrecognized input; moving with it does nothing
	NoDirection = Direction{}
)

// Directions lists the four moves in the order they are reported to clients
var Directions = []string{"up", "down", "left", "right"}

// ParseDirection maps a textual command to a direction.
// Unknown input yields NoDirection and false.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w":
		return Up, true
	case "down", "s":
		return Down, true
	case "left", "a":
		return Left, true
	case "right", "d":
		return Right, true
	}
	return NoDirection, false
}

// IsZero reports whether d is the no-op direction
func (d Direction) IsZero() bool {
	return d.DRow == 0 && d.DCol == 0
}

// Inverse returns the opposite displacement
func (d Direction) Inverse() Direction {
	return Direction{DRow: -d.DRow, DCol: -d.DCol}
}

// String returns the command name of a unit direction
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// Entity is the occupant of one board slot. Row and Col always equal the slot
// the board stores it in.
type Entity struct {
	Kind Kind `json:"kind"`
	Row  int  `json:"row"`
	Col  int  `json:"col"`
}

// Movable reports whether the entity can change position
func (e Entity) Movable() bool {
	return e.Kind.Movable()
}

// Position returns the entity's coordinates
func (e Entity) Position() Position {
	return Position{Row: e.Row, Col: e.Col}
}

// LevelMessages holds the texts shown to players for game events
type LevelMessages struct {
	Welcome   string `json:"welcome" yaml:"welcome"`
	Moved     string `json:"moved,omitempty" yaml:"moved,omitempty"`
	Pushed    string `json:"pushed,omitempty" yaml:"pushed,omitempty"`
	Blocked   string `json:"blocked,omitempty" yaml:"blocked,omitempty"`
	Solved    string `json:"solved" yaml:"solved"`
	Undone    string `json:"undone,omitempty" yaml:"undone,omitempty"`
	UndoEmpty string `json:"undo_empty,omitempty" yaml:"undo_empty,omitempty"`
}

// LevelConfig describes a playable level loaded from a level file
type LevelConfig struct {
	Name         string        `json:"name" yaml:"name"`
	Description  string        `json:"description" yaml:"description"`
	Layout       []string      `json:"layout" yaml:"layout"`
	UndoCapacity int           `json:"undo_capacity,omitempty" yaml:"undo_capacity,omitempty"`
	Messages     LevelMessages `json:"messages" yaml:"messages"`
}

// Text returns the layout as level text with newline-terminated rows
func (c *LevelConfig) Text() string {
	var b strings.Builder
	for _, row := range c.Layout {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}

// GameState represents the complete, serializable state of one board
type GameState struct {
	Grid       []string   `json:"grid"` // Encoded board, targets excluded
	View       []string   `json:"view"` // Board with uncovered targets drawn
	Targets    []Position `json:"targets"`
	PlayerPos  Position   `json:"player_pos"`
	Completed  bool       `json:"completed"`
	Level      string     `json:"level"` // Original level text
	LevelName  string     `json:"level_name"`
	Message    string     `json:"message"`
	Pushes     int        `json:"pushes"`
	OnTarget   int        `json:"baggage_on_target"`
	TotalGoals int        `json:"total_targets"`
	UndoDepth  int        `json:"undo_available"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single command in the game history
type MoveHistoryEntry struct {
	Action       string    `json:"action"`
	FromPosition Position  `json:"from_position"`
	ToPosition   Position  `json:"to_position"`
	Pushed       bool      `json:"pushed,omitempty"`
	BaggageTo    *Position `json:"baggage_to,omitempty"`
	Timestamp    int64     `json:"timestamp"`
	Success      bool      `json:"success"`
	MoveNumber   int       `json:"move_number"`
}

// Clone returns a deep copy that shares no slices or pointers with gs
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.Grid = slices.Clone(gs.Grid)
	c.View = slices.Clone(gs.View)
	c.Targets = slices.Clone(gs.Targets)
	c.MoveHistory = cloneHistory(gs.MoveHistory)
	c.CurrentMoves = cloneHistory(gs.CurrentMoves)
	return &c
}

func cloneHistory(entries []MoveHistoryEntry) []MoveHistoryEntry {
	out := slices.Clone(entries)
	for i := range out {
		if out[i].BaggageTo != nil {
			to := *out[i].BaggageTo
			out[i].BaggageTo = &to
		}
	}
	return out
}
