// Package scoreboard keeps per-player win, loss and draw counters.
package scoreboard

import (
	"context"
	"errors"
	"strings"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
)

var ErrEmptyName = errors.New("scoreboard: empty player name")

// Record is the tally of one player name.
type Record struct {
	Name   string `redis:"-"`
	Wins   int64  `redis:"wins"`
	Losses int64  `redis:"losses"`
	Draws  int64  `redis:"draws"`
}

func (r Record) Played() int64 {
	return r.Wins + r.Losses + r.Draws
}

type Store interface {
	// Add counts the outcome of a finished game. Games that are not terminal are ignored
	// and a game id is counted at most once.
	Add(ctx context.Context, g *tictactoe.Game) error
	Get(ctx context.Context, name string) (Record, error)
	Close() error
}

type field string

const (
	fieldWins   field = "wins"
	fieldLosses field = "losses"
	fieldDraws  field = "draws"
)

type delta struct {
	name  string
	field field
}

// deltas maps a terminal game to the counters it bumps.
func deltas(g *tictactoe.Game) []delta {
	p1, p2 := g.Player1().Name, g.Player2().Name
	switch g.State() {
	case tictactoe.Player1Won:
		return []delta{{p1, fieldWins}, {p2, fieldLosses}}
	case tictactoe.Player2Won:
		return []delta{{p2, fieldWins}, {p1, fieldLosses}}
	case tictactoe.Draw:
		return []delta{{p1, fieldDraws}, {p2, fieldDraws}}
	default:
		return nil
	}
}

func normalize(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}
