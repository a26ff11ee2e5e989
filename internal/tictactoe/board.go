package tictactoe

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Size  = 3
	Cells = Size * Size
)

const rowSeparator = "---+---+---"

// Lines lists every row, column and diagonal by position.
var Lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a 3x3 grid addressed row-major by positions 0..8. An empty string is an
// empty cell; once set a cell is never cleared.
type Board struct {
	cells [Cells]string
}

// ParsePosition resolves a move token into a board position.
func ParsePosition(token string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, token)
	}
	if n < 0 || n >= Cells {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPosition, n)
	}
	return n, nil
}

func (b *Board) Place(pos int, mark string) error {
	if pos < 0 || pos >= Cells {
		return fmt.Errorf("%w: %d", ErrOutOfRange, pos)
	}
	if mark == "" {
		return ErrEmptyMark
	}
	if b.cells[pos] != "" {
		return fmt.Errorf("%w: %d", ErrCellOccupied, pos)
	}
	b.cells[pos] = mark
	return nil
}

// Cell returns the mark at pos and whether the cell is occupied.
func (b Board) Cell(pos int) (string, bool) {
	if pos < 0 || pos >= Cells {
		return "", false
	}
	return b.cells[pos], b.cells[pos] != ""
}

func (b Board) Occupied() int {
	n := 0
	for _, c := range b.cells {
		if c != "" {
			n++
		}
	}
	return n
}

func (b Board) IsFull() bool {
	return b.Occupied() == Cells
}

// Winner returns the mark completing any line.
func (b Board) Winner() (string, bool) {
	for _, line := range Lines {
		a, c, d := b.cells[line[0]], b.cells[line[1]], b.cells[line[2]]
		if a != "" && a == c && c == d {
			return a, true
		}
	}
	return "", false
}

// Render draws the grid, showing the position number for empty cells.
func (b Board) Render() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		if row > 0 {
			sb.WriteString("\n")
			sb.WriteString(rowSeparator)
			sb.WriteString("\n")
		}
		for col := 0; col < Size; col++ {
			pos := row*Size + col
			if col > 0 {
				sb.WriteString("|")
			}
			cell := b.cells[pos]
			if cell == "" {
				cell = strconv.Itoa(pos)
			}
			sb.WriteString(" ")
			sb.WriteString(cell)
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

// Legend is the empty board, used to show position numbering.
func Legend() string {
	var b Board
	return b.Render()
}
