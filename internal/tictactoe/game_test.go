package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame() *Game {
	return NewGame(NewPlayer("A", "X"), NewPlayer("B", "O"))
}

func play(t *testing.T, g *Game, tokens ...string) State {
	t.Helper()
	var state State
	for _, token := range tokens {
		var err error
		state, err = g.ApplyMove(token)
		require.NoError(t, err, "move %s", token)
	}
	return state
}

func TestNewGame(t *testing.T) {
	g := newTestGame()

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, AwaitingPlayer1Move, g.State())
	assert.True(t, g.HasPlayer("A"))
	assert.True(t, g.HasPlayer("B"))
	assert.False(t, g.HasPlayer("a"))

	current, err := g.CurrentPlayer()
	require.NoError(t, err)
	assert.Equal(t, "A", current.Name)
}

func TestGame_ApplyMove(t *testing.T) {
	t.Run("Alternates turns", func(t *testing.T) {
		// Given: a new game
		g := newTestGame()

		// When: player 1 moves
		state, err := g.ApplyMove("0")

		// Then: it is player 2's turn and the cell holds player 1's mark
		require.NoError(t, err)
		assert.Equal(t, AwaitingPlayer2Move, state)
		mark, _ := g.board.Cell(0)
		assert.Equal(t, "X", mark)

		state = play(t, g, "4")
		assert.Equal(t, AwaitingPlayer1Move, state)
		assert.Equal(t, 2, g.Moves())
	})

	t.Run("Rejected moves keep the turn", func(t *testing.T) {
		g := newTestGame()
		play(t, g, "0")
		before := g.Board()

		for _, token := range []string{"0", "nine", "9"} {
			state, err := g.ApplyMove(token)
			assert.Error(t, err)
			assert.True(t, IsMoveError(err))
			assert.Equal(t, AwaitingPlayer2Move, state)
			assert.Equal(t, AwaitingPlayer2Move, g.State())
		}
		assert.Equal(t, before, g.Board())
		assert.Equal(t, 1, g.Moves())
	})

	t.Run("Occupied cell on second player's turn", func(t *testing.T) {
		g := newTestGame()
		play(t, g, "0")

		_, err := g.ApplyMove("0")

		assert.ErrorIs(t, err, ErrCellOccupied)
		assert.Equal(t, AwaitingPlayer2Move, g.State())
	})

	t.Run("Top row wins for player 1", func(t *testing.T) {
		g := newTestGame()

		state := play(t, g, "0", "3", "1", "4", "2")

		assert.Equal(t, Player1Won, state)
		winner, ok := g.Winner()
		assert.True(t, ok)
		assert.Equal(t, "A", winner.Name)
	})

	t.Run("Diagonal wins for player 2", func(t *testing.T) {
		g := newTestGame()

		state := play(t, g, "0", "2", "1", "4", "8", "6")

		assert.Equal(t, Player2Won, state)
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// X O X
		// X O O
		// O X X
		g := newTestGame()

		state := play(t, g, "0", "1", "2", "4", "3", "5", "7", "6", "8")

		assert.Equal(t, Draw, state)
		assert.True(t, g.board.IsFull())
		_, ok := g.Winner()
		assert.False(t, ok)
	})

	t.Run("Win on the last cell is not a draw", func(t *testing.T) {
		// X O X
		// O O X
		// O X X
		g := newTestGame()

		state := play(t, g, "0", "1", "2", "3", "5", "4", "7", "6", "8")

		assert.Equal(t, Player1Won, state)
	})

	t.Run("Terminal games reject moves", func(t *testing.T) {
		g := newTestGame()
		play(t, g, "0", "3", "1", "4", "2")

		state, err := g.ApplyMove("8")

		assert.ErrorIs(t, err, ErrGameAlreadyOver)
		assert.False(t, IsMoveError(err))
		assert.Equal(t, Player1Won, state)
		_, err = g.CurrentPlayer()
		assert.ErrorIs(t, err, ErrGameAlreadyOver)
	})
}

func TestGame_OccupiedCellsOnlyGrow(t *testing.T) {
	g := newTestGame()
	seen := map[int]string{}
	for _, token := range []string{"4", "4", "0", "8", "0", "2", "6", "3", "5", "1", "7"} {
		_, _ = g.ApplyMove(token)
		b := g.Board()
		for pos, mark := range seen {
			got, ok := b.Cell(pos)
			require.True(t, ok)
			require.Equal(t, mark, got)
		}
		for pos := 0; pos < Cells; pos++ {
			if mark, ok := b.Cell(pos); ok {
				seen[pos] = mark
			}
		}
		if g.State().Terminal() {
			break
		}
	}
}

func TestGame_MoveAs(t *testing.T) {
	g := newTestGame()

	_, err := g.MoveAs("B", "0")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, AwaitingPlayer1Move, g.State())

	_, err = g.MoveAs("C", "0")
	assert.ErrorIs(t, err, ErrNotInGame)

	state, err := g.MoveAs("A", "0")
	require.NoError(t, err)
	assert.Equal(t, AwaitingPlayer2Move, state)
}

func TestGame_Opponent(t *testing.T) {
	g := newTestGame()

	p, ok := g.Opponent("A")
	assert.True(t, ok)
	assert.Equal(t, "B", p.Name)

	_, ok = g.Opponent("nobody")
	assert.False(t, ok)
}

func TestValidatePlayers(t *testing.T) {
	assert.NoError(t, ValidatePlayers(NewPlayer("A", "X"), NewPlayer("B", "O")))
	assert.ErrorIs(t, ValidatePlayers(NewPlayer("A", "X"), NewPlayer("A", "O")), ErrSelfPlay)
	assert.ErrorIs(t, ValidatePlayers(NewPlayer("A", "X"), NewPlayer("B", "X")), ErrSameMark)
	assert.ErrorIs(t, ValidatePlayers(NewPlayer(" ", "X"), NewPlayer("B", "O")), ErrInvalidPlayer)
	assert.ErrorIs(t, ValidatePlayers(NewPlayer("A", ""), NewPlayer("B", "O")), ErrInvalidPlayer)
}

func TestGame_BoardCopyIsReadable(t *testing.T) {
	// Given: a game with one move
	g := newTestGame()
	_, err := g.ApplyMove("0")
	require.NoError(t, err)

	// When: querying the board copy without binding it first
	mark, ok := g.Board().Cell(0)

	// Then: every read-only query works on the returned value
	assert.True(t, ok)
	assert.Equal(t, "X", mark)
	assert.Equal(t, 1, g.Board().Occupied())
	assert.False(t, g.Board().IsFull())
	_, won := g.Board().Winner()
	assert.False(t, won)
	assert.Equal(t, g.RenderTable(), g.Board().Render())
}
