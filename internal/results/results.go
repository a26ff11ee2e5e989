// Package results archives games that left the registry.
package results

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
	"go.uber.org/zap"
)

var ErrUnsupportedDSN = errors.New("results: unsupported dsn")

const (
	OutcomePlayer1 = "player1"
	OutcomePlayer2 = "player2"
	OutcomeDraw    = "draw"
	OutcomeNone    = "none"
)

// Result is the archived form of one game.
type Result struct {
	GameID      string
	Player1Name string
	Player1Mark string
	Player2Name string
	Player2Mark string
	Cells       [tictactoe.Cells]string
	Outcome     string
	Winner      string
	Reason      string
	Moves       int
	StartedAt   time.Time
	EndedAt     time.Time
}

func (r Result) Duration() time.Duration {
	d := r.EndedAt.Sub(r.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// FromGame snapshots g. reason tells how the game left the registry.
func FromGame(g *tictactoe.Game, reason string) Result {
	p1, p2 := g.Player1(), g.Player2()
	res := Result{
		GameID:      g.ID,
		Player1Name: p1.Name,
		Player1Mark: p1.Mark,
		Player2Name: p2.Name,
		Player2Mark: p2.Mark,
		Outcome:     OutcomeNone,
		Reason:      reason,
		Moves:       g.Moves(),
		StartedAt:   g.StartedAt,
		EndedAt:     g.UpdatedAt,
	}
	board := g.Board()
	for i := range res.Cells {
		res.Cells[i], _ = board.Cell(i)
	}
	switch g.State() {
	case tictactoe.Player1Won:
		res.Outcome, res.Winner = OutcomePlayer1, p1.Name
	case tictactoe.Player2Won:
		res.Outcome, res.Winner = OutcomePlayer2, p2.Name
	case tictactoe.Draw:
		res.Outcome = OutcomeDraw
	}
	return res
}

type Repository interface {
	// Save upserts r keyed by GameID.
	Save(ctx context.Context, r Result) error
	// Recent lists the latest games of name, newest first.
	Recent(ctx context.Context, name string, limit int) ([]Result, error)
	Close() error
}

// Open picks a repository by dsn: empty for memory, postgres:// or postgresql:// for
// Postgres, sqlite:<path> for SQLite.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (Repository, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return NewMemoryRepository(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return openSQL(ctx, dialectPostgres, dsn, logger)
	case strings.HasPrefix(dsn, "sqlite:"):
		path := strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite://"), "sqlite:")
		if path == "" {
			return nil, fmt.Errorf("%w: missing sqlite path", ErrUnsupportedDSN)
		}
		return openSQL(ctx, dialectSQLite, path, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDSN, redact(dsn))
	}
}

func openSQL(ctx context.Context, d dialect, dsn string, logger *zap.Logger) (Repository, error) {
	repo, err := NewSQLRepository(ctx, d, dsn, logger)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func redact(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "…"
	}
	if len(dsn) > 8 {
		return dsn[:8] + "…"
	}
	return dsn
}
