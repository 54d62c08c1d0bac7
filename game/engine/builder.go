package engine

import "fmt"

// Builder edits a level board in builder mode, where targets are grid cells
type Builder struct {
	board *Board
}

// NewBuilder creates a rows x cols level filled with walls
func NewBuilder(rows, cols int) (*Builder, error) {
	if err := checkBuilderSize(rows, cols); err != nil {
		return nil, err
	}
	return &Builder{board: NewRectBoard(rows, cols, Wall)}, nil
}

// NewBuilderFromText starts editing an existing level
func NewBuilderFromText(text string) (*Builder, error) {
	d, err := Decode(text, BuilderMode)
	if err != nil {
		return nil, err
	}
	if err := checkBuilderSize(d.Board.Rows(), d.Board.MaxWidth()); err != nil {
		return nil, err
	}
	return &Builder{board: d.Board}, nil
}

func checkBuilderSize(rows, cols int) error {
	if rows < 1 || rows > MaxBuilderRows || cols < 1 || cols > MaxBuilderCols {
		return fmt.Errorf("builder size %dx%d outside 1x1..%dx%d: %w", rows, cols, MaxBuilderRows, MaxBuilderCols, ErrInvalidArgument)
	}
	return nil
}

// Board returns the board being edited
func (bl *Builder) Board() *Board {
	return bl.board
}

// Resize changes the level dimensions, clamped to the builder limits.
// Existing cells are kept and new cells are walls. It returns false when the
// dimensions did not change.
func (bl *Builder) Resize(rows, cols int) bool {
	rows = clamp(rows, 1, MaxBuilderRows)
	cols = clamp(cols, 1, MaxBuilderCols)

	old := bl.board
	if old.Rows() == rows {
		same := true
		for r := 0; r < rows; r++ {
			if old.Width(r) != cols {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}

	next := NewRectBoard(rows, cols, Wall)
	for r := 0; r < rows && r < old.Rows(); r++ {
		for c := 0; c < cols && c < old.Width(r); c++ {
			next.cells[r][c].Kind = old.cells[r][c].Kind
		}
	}
	bl.board = next
	return true
}

// Set places a kind at row, col
func (bl *Builder) Set(row, col int, kind Kind) error {
	return bl.board.Place(kind, row, col)
}

// Clear empties the cell at row, col
func (bl *Builder) Clear(row, col int) error {
	return bl.board.Place(Empty, row, col)
}

// Encode returns the level text
func (bl *Builder) Encode() string {
	return Encode(bl.board)
}

// Problems returns the structural problems of the current level
func (bl *Builder) Problems() []string {
	return StructureProblems(bl.board)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
