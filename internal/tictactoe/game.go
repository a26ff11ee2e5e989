package tictactoe

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle position of a Game.
type State int

const (
	AwaitingPlayer1Move State = iota
	AwaitingPlayer2Move
	Player1Won
	Player2Won
	Draw
)

func (s State) String() string {
	switch s {
	case AwaitingPlayer1Move:
		return "awaiting_player1"
	case AwaitingPlayer2Move:
		return "awaiting_player2"
	case Player1Won:
		return "player1_won"
	case Player2Won:
		return "player2_won"
	case Draw:
		return "draw"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further moves are accepted.
func (s State) Terminal() bool {
	return s == Player1Won || s == Player2Won || s == Draw
}

// Game is one tic-tac-toe match between two players. It carries no lock: whoever
// holds the pointer owns it exclusively (see session.Registry).
type Game struct {
	ID        string
	StartedAt time.Time
	UpdatedAt time.Time

	board   Board
	player1 Player
	player2 Player
	state   State
	moves   int
}

// NewGame creates a game in AwaitingPlayer1Move. Players are expected to have passed
// ValidatePlayers.
func NewGame(player1, player2 Player) *Game {
	now := time.Now()
	return &Game{
		ID:        uuid.NewString(),
		StartedAt: now,
		UpdatedAt: now,
		player1:   player1,
		player2:   player2,
		state:     AwaitingPlayer1Move,
	}
}

func (g *Game) State() State { return g.state }

func (g *Game) Player1() Player { return g.player1 }

func (g *Game) Player2() Player { return g.player2 }

// Moves counts placed marks.
func (g *Game) Moves() int { return g.moves }

// Board returns a copy of the grid.
func (g *Game) Board() Board { return g.board }

func (g *Game) RenderTable() string { return g.board.Render() }

// HasPlayer matches name against both players, case-sensitively.
func (g *Game) HasPlayer(name string) bool {
	return g.player1.Name == name || g.player2.Name == name
}

// CurrentPlayer is the player whose turn it is.
func (g *Game) CurrentPlayer() (Player, error) {
	switch g.state {
	case AwaitingPlayer1Move:
		return g.player1, nil
	case AwaitingPlayer2Move:
		return g.player2, nil
	default:
		return Player{}, ErrGameAlreadyOver
	}
}

// Opponent returns the other player of name.
func (g *Game) Opponent(name string) (Player, bool) {
	switch name {
	case g.player1.Name:
		return g.player2, true
	case g.player2.Name:
		return g.player1, true
	default:
		return Player{}, false
	}
}

// Winner returns the winning player once the game is won.
func (g *Game) Winner() (Player, bool) {
	switch g.state {
	case Player1Won:
		return g.player1, true
	case Player2Won:
		return g.player2, true
	default:
		return Player{}, false
	}
}

// ApplyMove places the current player's mark at the position named by token and
// advances the state. On error the game is unchanged.
func (g *Game) ApplyMove(token string) (State, error) {
	if g.state.Terminal() {
		return g.state, ErrGameAlreadyOver
	}
	pos, err := ParsePosition(token)
	if err != nil {
		return g.state, err
	}
	acting, _ := g.CurrentPlayer()
	if err := g.board.Place(pos, acting.Mark); err != nil {
		return g.state, err
	}
	g.moves++
	g.UpdatedAt = time.Now()

	actingFirst := g.state == AwaitingPlayer1Move
	switch mark, won := g.board.Winner(); {
	case won && mark == acting.Mark:
		if actingFirst {
			g.state = Player1Won
		} else {
			g.state = Player2Won
		}
	case g.board.IsFull():
		g.state = Draw
	case actingFirst:
		g.state = AwaitingPlayer2Move
	default:
		g.state = AwaitingPlayer1Move
	}
	return g.state, nil
}

// MoveAs is ApplyMove restricted to the player named name.
func (g *Game) MoveAs(name, token string) (State, error) {
	if !g.HasPlayer(name) {
		return g.state, ErrNotInGame
	}
	current, err := g.CurrentPlayer()
	if err != nil {
		return g.state, err
	}
	if current.Name != name {
		return g.state, ErrNotYourTurn
	}
	return g.ApplyMove(token)
}
