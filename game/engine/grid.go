package engine

import "fmt"

// Board is the cell arrangement of one level instance. Rows may differ in
// length, mirroring the level text they were decoded from, but the shape never
// changes after construction.
type Board struct {
	cells [][]Entity
}

// NewBoard creates a board with the given row widths, every cell Empty
func NewBoard(widths []int) *Board {
	cells := make([][]Entity, len(widths))
	for r, w := range widths {
		cells[r] = make([]Entity, w)
		for c := range cells[r] {
			cells[r][c] = Entity{Kind: Empty, Row: r, Col: c}
		}
	}
	return &Board{cells: cells}
}

// NewRectBoard creates a rows x cols board filled with the given kind
func NewRectBoard(rows, cols int, fill Kind) *Board {
	widths := make([]int, rows)
	for i := range widths {
		widths[i] = cols
	}
	b := NewBoard(widths)
	for r := range b.cells {
		for c := range b.cells[r] {
			b.cells[r][c].Kind = fill
		}
	}
	return b
}

// Rows returns the number of rows
func (b *Board) Rows() int {
	return len(b.cells)
}

// Width returns the number of columns in a row, or 0 for a row outside the board
func (b *Board) Width(row int) int {
	if row < 0 || row >= len(b.cells) {
		return 0
	}
	return len(b.cells[row])
}

// MaxWidth returns the length of the widest row
func (b *Board) MaxWidth() int {
	max := 0
	for _, row := range b.cells {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// InBounds reports whether the coordinate addresses a cell
func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < len(b.cells) && p.Col >= 0 && p.Col < len(b.cells[p.Row])
}

// Get returns the entity stored at row, col
func (b *Board) Get(row, col int) (Entity, error) {
	p := Position{Row: row, Col: col}
	if !b.InBounds(p) {
		return Entity{}, fmt.Errorf("get (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	return b.cells[row][col], nil
}

// At returns the kind at p, or Wall when p lies outside the board
func (b *Board) At(p Position) Kind {
	if !b.InBounds(p) {
		return Wall
	}
	return b.cells[p.Row][p.Col].Kind
}

// Place overwrites the slot at row, col with an entity of the given kind
func (b *Board) Place(kind Kind, row, col int) error {
	p := Position{Row: row, Col: col}
	if !b.InBounds(p) {
		return fmt.Errorf("place %s at (%d,%d): %w", kind, row, col, ErrOutOfBounds)
	}
	b.cells[row][col] = Entity{Kind: kind, Row: row, Col: col}
	return nil
}

// Swap exchanges the contents of two slots and rewrites both entities'
// coordinates. Nothing changes when either slot is out of bounds.
func (b *Board) Swap(a, c Position) error {
	if !b.InBounds(a) || !b.InBounds(c) {
		return fmt.Errorf("swap (%d,%d) <-> (%d,%d): %w", a.Row, a.Col, c.Row, c.Col, ErrOutOfBounds)
	}
	ea, ec := b.cells[a.Row][a.Col], b.cells[c.Row][c.Col]
	b.cells[a.Row][a.Col] = Entity{Kind: ec.Kind, Row: a.Row, Col: a.Col}
	b.cells[c.Row][c.Col] = Entity{Kind: ea.Kind, Row: c.Row, Col: c.Col}
	return nil
}

// Count returns the number of cells holding the given kind
func (b *Board) Count(kind Kind) int {
	count := 0
	for _, row := range b.cells {
		for _, e := range row {
			if e.Kind == kind {
				count++
			}
		}
	}
	return count
}

// Find returns the positions of every cell holding the given kind in row-major order
func (b *Board) Find(kind Kind) []Position {
	var found []Position
	for _, row := range b.cells {
		for _, e := range row {
			if e.Kind == kind {
				found = append(found, e.Position())
			}
		}
	}
	return found
}

// Clone returns an independent copy of the board
func (b *Board) Clone() *Board {
	cells := make([][]Entity, len(b.cells))
	for r, row := range b.cells {
		cells[r] = make([]Entity, len(row))
		copy(cells[r], row)
	}
	return &Board{cells: cells}
}

// Equal reports whether two boards have the same shape and contents
func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	if len(b.cells) != len(other.cells) {
		return false
	}
	for r := range b.cells {
		if len(b.cells[r]) != len(other.cells[r]) {
			return false
		}
		for c := range b.cells[r] {
			if b.cells[r][c] != other.cells[r][c] {
				return false
			}
		}
	}
	return true
}
