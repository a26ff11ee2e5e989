package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_Place(t *testing.T) {
	t.Run("Sets an empty cell", func(t *testing.T) {
		// Given: an empty board
		var b Board

		// When: placing a mark
		err := b.Place(4, "X")

		// Then: the cell holds the mark
		require.NoError(t, err)
		mark, ok := b.Cell(4)
		assert.True(t, ok)
		assert.Equal(t, "X", mark)
		assert.Equal(t, 1, b.Occupied())
	})

	t.Run("Rejects an occupied cell without changing it", func(t *testing.T) {
		// Given: a board with cell 0 taken
		var b Board
		require.NoError(t, b.Place(0, "X"))

		// When: placing another mark on the same cell
		err := b.Place(0, "O")

		// Then: ErrCellOccupied and the original mark stays
		assert.ErrorIs(t, err, ErrCellOccupied)
		mark, _ := b.Cell(0)
		assert.Equal(t, "X", mark)
	})

	t.Run("Rejects positions off the board", func(t *testing.T) {
		var b Board

		assert.ErrorIs(t, b.Place(-1, "X"), ErrOutOfRange)
		assert.ErrorIs(t, b.Place(9, "X"), ErrOutOfRange)
		assert.Equal(t, 0, b.Occupied())
	})

	t.Run("Rejects an empty mark", func(t *testing.T) {
		var b Board

		err := b.Place(0, "")

		assert.ErrorIs(t, err, ErrEmptyMark)
		assert.NotErrorIs(t, err, ErrInvalidPlayer)
		assert.Equal(t, 0, b.Occupied())
	})
}

func TestBoard_Winner(t *testing.T) {
	for _, line := range Lines {
		var b Board
		for _, pos := range line {
			require.NoError(t, b.Place(pos, "🐙"))
		}
		mark, ok := b.Winner()
		assert.True(t, ok, "line %v", line)
		assert.Equal(t, "🐙", mark)
	}

	t.Run("No winner on a mixed line", func(t *testing.T) {
		var b Board
		require.NoError(t, b.Place(0, "X"))
		require.NoError(t, b.Place(1, "O"))
		require.NoError(t, b.Place(2, "X"))

		_, ok := b.Winner()
		assert.False(t, ok)
	})
}

func TestBoard_IsFull(t *testing.T) {
	var b Board
	for pos := 0; pos < Cells-1; pos++ {
		require.NoError(t, b.Place(pos, "X"))
		assert.False(t, b.IsFull())
	}
	require.NoError(t, b.Place(Cells-1, "O"))
	assert.True(t, b.IsFull())
}

func TestBoard_Render(t *testing.T) {
	t.Run("Legend numbers every cell", func(t *testing.T) {
		want := " 0 | 1 | 2 \n---+---+---\n 3 | 4 | 5 \n---+---+---\n 6 | 7 | 8 "
		assert.Equal(t, want, Legend())
	})

	t.Run("Marks replace numbers", func(t *testing.T) {
		var b Board
		require.NoError(t, b.Place(0, "X"))
		require.NoError(t, b.Place(4, "O"))

		want := " X | 1 | 2 \n---+---+---\n 3 | O | 5 \n---+---+---\n 6 | 7 | 8 "
		assert.Equal(t, want, b.Render())
		assert.Equal(t, b.Render(), b.Render())
	})
}

func TestParsePosition(t *testing.T) {
	pos, err := ParsePosition(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, 7, pos)

	for _, token := range []string{"", "x", "9", "-1", "1.5"} {
		_, err := ParsePosition(token)
		assert.ErrorIs(t, err, ErrInvalidPosition, "token %q", token)
	}
}
