package session

import "github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"

// Lease is exclusive ownership of a checked-out game. The holder may mutate the
// game freely without locking; it is invisible to every other caller until Checkin.
// A Lease belongs to one goroutine and is spent by its first Checkin or Discard.
type Lease struct {
	reg   *Registry
	game  *tictactoe.Game
	spent bool
}

func (l *Lease) Game() *tictactoe.Game {
	return l.game
}

// Checkin returns the game to the registry. A game that has reached a terminal
// state is dropped instead, so it can never block its players again.
func (l *Lease) Checkin() {
	if l == nil || l.spent {
		return
	}
	l.spent = true
	if l.game.State().Terminal() {
		l.reg.release(l.game)
		l.reg.dropped(l.game, DropFinished)
		return
	}
	l.reg.checkin(l.game)
}

// Discard drops the game permanently.
func (l *Lease) Discard() {
	if l == nil || l.spent {
		return
	}
	l.spent = true
	l.reg.release(l.game)
	l.reg.dropped(l.game, DropAbandoned)
}
