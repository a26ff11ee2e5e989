package tictactoe

import "errors"

// Move failures. A rejected move never changes the board or the turn.
var (
	ErrInvalidPosition = errors.New("position must be a number from 0 to 8")
	ErrOutOfRange      = errors.New("position is off the board")
	ErrCellOccupied    = errors.New("that space is already taken")
	ErrGameAlreadyOver = errors.New("game is already over")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrNotInGame       = errors.New("player is not in this game")
	ErrEmptyMark       = errors.New("cannot place an empty mark")
)

// Player validation failures reported by ValidatePlayers.
var (
	ErrInvalidPlayer = errors.New("player needs a name and a mark")
	ErrSelfPlay      = errors.New("cannot start a game against yourself")
	ErrSameMark      = errors.New("players must use different marks")
)

// IsMoveError reports whether err is a recoverable move rejection that should be
// shown to the acting player.
func IsMoveError(err error) bool {
	return errors.Is(err, ErrInvalidPosition) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrCellOccupied) ||
		errors.Is(err, ErrNotYourTurn)
}
