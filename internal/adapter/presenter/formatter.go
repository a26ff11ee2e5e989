package presenter

import (
	"errors"
	"strings"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/msgcat"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/session"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/util"
	"github.com/park285/Eugene-KakaoTalk-bot/pkg/t3dto"
	"go.uber.org/zap"
)

const historyTimeLayout = "2006-01-02 15:04"

// PrefixProvider exposes the Prefix that Kakao messages should use.
type PrefixProvider interface {
	Prefix() string
}

// Formatter renders game snapshots and errors into reply text through the message catalog.
type Formatter struct {
	catalog        *msgcat.Catalog
	prefixProvider PrefixProvider
	logger         *zap.Logger
}

func NewFormatter(catalog *msgcat.Catalog, provider PrefixProvider, logger *zap.Logger) *Formatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Formatter{catalog: catalog, prefixProvider: provider, logger: logger}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefixProvider == nil {
		return ""
	}
	return strings.TrimSpace(f.prefixProvider.Prefix())
}

// render falls back to the key itself so a broken override never silences a reply.
func (f *Formatter) render(key string, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	data["Prefix"] = f.Prefix()
	out, err := f.catalog.Render(key, data)
	if err != nil {
		f.logger.Warn("msgcat_render_failed", zap.String("key", key), zap.Error(err))
		return key
	}
	return out
}

// Usage renders the usage line stored under key.
func (f *Formatter) Usage(key string) string {
	return f.render("common.usage", map[string]any{"Usage": f.render(key, nil)})
}

func (f *Formatter) UnknownCommand() string { return f.render("common.unknown_command", nil) }

func (f *Formatter) InternalError() string { return f.render("common.internal_error", nil) }

func (f *Formatter) Help(status string) string {
	header := f.render("help.header", map[string]any{"Status": status})
	return util.ApplyKakaoSeeMorePadding(f.render("help.body", nil), header)
}

// Started announces a new game and shows the position legend.
func (f *Formatter) Started(player1, player2 tictactoe.Player) string {
	text := f.render("t3.start", map[string]any{"Player1": player1.Name, "Player2": player2.Name})
	return text + "\n" + tictactoe.Legend()
}

func (f *Formatter) StartError(err error, player1, player2 tictactoe.Player) string {
	var busy *session.PlayerAlreadyInGameError
	switch {
	case errors.As(err, &busy):
		return f.render("t3.already_in_game", map[string]any{"Name": busy.Name})
	case errors.Is(err, session.ErrRegistryFull):
		return f.render("t3.registry_full", nil)
	case errors.Is(err, tictactoe.ErrSelfPlay):
		return f.render("t3.self_play", nil)
	case errors.Is(err, tictactoe.ErrSameMark):
		return f.render("t3.same_mark", map[string]any{"Mark": player2.Mark})
	case errors.Is(err, tictactoe.ErrInvalidPlayer):
		return f.render("t3.invalid_player", nil)
	default:
		f.logger.Error("t3_start_failed",
			zap.String("player1", player1.Name),
			zap.String("player2", player2.Name),
			zap.Error(err),
		)
		return f.InternalError()
	}
}

// Move renders the board after a move and names the next player or the result.
func (f *Formatter) Move(v *t3dto.GameView) string {
	if v == nil {
		return f.InternalError()
	}
	var line string
	switch {
	case v.Winner != nil:
		line = f.render("t3.won", map[string]any{"Name": v.Winner.Name})
	case v.Draw:
		line = f.render("t3.draw", nil)
	case v.Next != nil:
		line = f.render("t3.turn", map[string]any{"Name": v.Next.Name, "Mark": v.Next.Mark})
	}
	return v.Table + "\n" + line
}

// Status is the board of a game in progress.
func (f *Formatter) Status(v *t3dto.GameView) string {
	return f.Move(v)
}

func (f *Formatter) MoveError(err error, name, token string) string {
	switch {
	case errors.Is(err, tictactoe.ErrNotYourTurn):
		return f.render("t3.not_your_turn", map[string]any{"Name": name})
	case errors.Is(err, tictactoe.ErrInvalidPosition):
		return f.render("t3.invalid_position", map[string]any{"Token": token})
	case errors.Is(err, tictactoe.ErrOutOfRange):
		return f.render("t3.out_of_range", map[string]any{"Token": token})
	case errors.Is(err, tictactoe.ErrCellOccupied):
		return f.render("t3.occupied", map[string]any{"Token": token})
	case errors.Is(err, tictactoe.ErrNotInGame), errors.Is(err, tictactoe.ErrGameAlreadyOver):
		return f.NotInGame()
	default:
		f.logger.Error("t3_move_failed", zap.String("player", name), zap.String("token", token), zap.Error(err))
		return f.InternalError()
	}
}

func (f *Formatter) NotInGame() string { return f.render("t3.not_in_game", nil) }

func (f *Formatter) Quit() string { return f.render("t3.quit", nil) }

func (f *Formatter) Stats(s t3dto.Stats) string {
	return f.render("t3.stats", map[string]any{
		"Name":   s.Name,
		"Wins":   s.Wins,
		"Losses": s.Losses,
		"Draws":  s.Draws,
		"Played": s.Played(),
	})
}

// History lists the archived games of name, newest first.
func (f *Formatter) History(name string, entries []t3dto.HistoryEntry) string {
	if len(entries) == 0 {
		return f.render("t3.history_empty", map[string]any{"Name": name})
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, f.render("t3.history_header", map[string]any{"Name": name}))
	for _, e := range entries {
		lines = append(lines, f.render("t3.history_line", map[string]any{
			"Result":   e.Result,
			"Opponent": e.Opponent,
			"Moves":    e.Moves,
			"When":     e.EndedAt.Local().Format(historyTimeLayout),
		}))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) StatsUnavailable() string { return f.render("t3.stats_unavailable", nil) }

func (f *Formatter) FactNotOwner() string { return f.render("fact.not_owner", nil) }

func (f *Formatter) FactUnknown(character string) string {
	return f.render("fact.unknown", map[string]any{"Name": character})
}
