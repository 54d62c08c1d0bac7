package engine

import (
	"fmt"
	"strings"
)

// Mode selects how target characters are decoded
type Mode int

const (
	// GameMode keeps targets out of the grid so baggage can occupy them
	GameMode Mode = iota
	// BuilderMode places targets in the grid as editable cells
	BuilderMode
)

func (m Mode) String() string {
	if m == BuilderMode {
		return "builder"
	}
	return "game"
}

// Decoded is the result of decoding level text
type Decoded struct {
	Board     *Board
	Targets   []Position
	Player    Position
	HasPlayer bool
}

// Decode converts level text into a board. Carriage returns are ignored and
// trailing blank lines dropped. Unknown characters decode as Empty.
func Decode(text string, mode Mode) (*Decoded, error) {
	rows := splitRows(text)
	if len(rows) == 0 {
		return nil, fmt.Errorf("decode: empty level text: %w", ErrInvalidArgument)
	}

	cells := make([][]rune, len(rows))
	widths := make([]int, len(rows))
	for i, row := range rows {
		cells[i] = []rune(row)
		widths[i] = len(cells[i])
	}

	d := &Decoded{Board: NewBoard(widths)}
	for r, row := range cells {
		for c, ch := range row {
			kind := KindFromRune(ch)
			switch kind {
			case Target:
				d.Targets = append(d.Targets, Position{Row: r, Col: c})
				if mode == GameMode {
					continue
				}
			case Player:
				if !d.HasPlayer {
					d.Player, d.HasPlayer = Position{Row: r, Col: c}, true
				}
			}
			d.Board.cells[r][c] = Entity{Kind: kind, Row: r, Col: c}
		}
	}
	return d, nil
}

// DecodeRows decodes a level given as one string per row
func DecodeRows(rows []string, mode Mode) (*Decoded, error) {
	return Decode(strings.Join(rows, "\n"), mode)
}

// Encode converts a board to level text, one character per cell with every
// row terminated by a newline. Targets held in a separate set are not drawn.
func Encode(b *Board) string {
	var sb strings.Builder
	for _, row := range EncodeRows(b) {
		sb.WriteString(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// EncodeRows converts a board to one string per row
func EncodeRows(b *Board) []string {
	if b == nil {
		return nil
	}
	rows := make([]string, len(b.cells))
	for r, row := range b.cells {
		buf := make([]byte, len(row))
		for c, e := range row {
			buf[c] = e.Kind.Char()
		}
		rows[r] = string(buf)
	}
	return rows
}

// Render returns the board rows with uncovered targets drawn as '.'
func Render(b *Board, targets []Position) []string {
	if b == nil {
		return nil
	}
	rows := EncodeRows(b)
	for _, t := range targets {
		if !b.InBounds(t) || b.At(t) != Empty {
			continue
		}
		buf := []byte(rows[t.Row])
		buf[t.Col] = TargetChar
		rows[t.Row] = string(buf)
	}
	return rows
}

func splitRows(text string) []string {
	text = strings.ReplaceAll(text, "\r", "")
	if text == "" {
		return nil
	}
	rows := strings.Split(text, "\n")
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}
	return rows
}
