package bot

import (
	"context"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/adapter/presenter"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/boardimage"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/command"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
	"github.com/park285/Eugene-KakaoTalk-bot/pkg/t3dto"
	"go.uber.org/zap"
)

func (b *Bot) handleT3(ctx context.Context, req request) {
	sub := req.inv.Shift()
	if sub.Name == "" {
		b.text(req.room, b.deps.Formatter.Help(b.cfg.Status))
		return
	}
	spec, ok := b.t3.Lookup(sub.Name)
	if !ok {
		b.text(req.room, b.deps.Formatter.UnknownCommand())
		return
	}
	args, ok := b.bind(req, spec, sub)
	if !ok {
		return
	}

	switch spec.Name {
	case "start":
		b.t3Start(req, args)
	case "put":
		b.t3Put(ctx, req, args)
	case "quit":
		b.t3Quit(req)
	case "board":
		b.t3Board(ctx, req)
	case "stats":
		b.t3Stats(ctx, req, args)
	case "history":
		b.t3History(ctx, req, args)
	case "help":
		b.text(req.room, b.deps.Formatter.Help(b.cfg.Status))
	}
}

// t3Start: the sender is player 1 and picks a mark, then names the opponent and theirs.
func (b *Bot) t3Start(req request, args command.Args) {
	player1 := tictactoe.NewPlayer(req.sender, args.At(0))
	player2 := tictactoe.NewPlayer(args.Name(1), args.At(2))

	if err := b.deps.Registry.Start(player1, player2); err != nil {
		b.text(req.room, b.deps.Formatter.StartError(err, player1, player2))
		return
	}
	b.text(req.room, b.deps.Formatter.Started(player1, player2))
}

func (b *Bot) t3Put(ctx context.Context, req request, args command.Args) {
	token := args.At(0)
	var view *t3dto.GameView
	found, err := b.deps.Registry.With(req.sender, func(g *tictactoe.Game) error {
		state, err := g.MoveAs(req.sender, token)
		if err != nil {
			return err
		}
		b.logger.Info("t3_move",
			zap.String("game_id", g.ID),
			zap.String("player", req.sender),
			zap.String("position", token),
			zap.String("state", state.String()),
		)
		view = b.snapshot(ctx, g)
		return nil
	})
	switch {
	case !found:
		b.text(req.room, b.deps.Formatter.NotInGame())
	case err != nil:
		b.text(req.room, b.deps.Formatter.MoveError(err, req.sender, token))
	default:
		b.board(req.room, b.deps.Formatter.Move(view), view)
	}
}

func (b *Bot) t3Quit(req request) {
	if !b.deps.Registry.Abandon(req.sender) {
		b.text(req.room, b.deps.Formatter.NotInGame())
		return
	}
	b.text(req.room, b.deps.Formatter.Quit())
}

func (b *Bot) t3Board(ctx context.Context, req request) {
	var view *t3dto.GameView
	found, _ := b.deps.Registry.With(req.sender, func(g *tictactoe.Game) error {
		view = b.snapshot(ctx, g)
		return nil
	})
	if !found {
		b.text(req.room, b.deps.Formatter.NotInGame())
		return
	}
	b.board(req.room, b.deps.Formatter.Status(view), view)
}

func (b *Bot) t3Stats(ctx context.Context, req request, args command.Args) {
	name := req.sender
	if args.Len() > 0 {
		name = args.Name(0)
	}
	sctx, cancel := storeContext(ctx)
	defer cancel()
	rec, err := b.deps.Scores.Get(sctx, name)
	if err != nil {
		b.logger.Warn("t3_stats_failed", zap.String("name", name), zap.Error(err))
		b.text(req.room, b.deps.Formatter.StatsUnavailable())
		return
	}
	b.text(req.room, b.deps.Formatter.Stats(presenter.ToDTOStats(rec)))
}

func (b *Bot) t3History(ctx context.Context, req request, args command.Args) {
	limit, err := historyLimit(args)
	if err != nil {
		b.text(req.room, b.deps.Formatter.Usage("t3.usage.history"))
		return
	}
	if b.deps.Archive == nil {
		b.text(req.room, b.deps.Formatter.StatsUnavailable())
		return
	}
	sctx, cancel := storeContext(ctx)
	defer cancel()
	games, err := b.deps.Archive.Recent(sctx, req.sender, limit)
	if err != nil {
		b.logger.Warn("t3_history_failed", zap.String("name", req.sender), zap.Error(err))
		b.text(req.room, b.deps.Formatter.StatsUnavailable())
		return
	}
	b.text(req.room, b.deps.Formatter.History(req.sender, presenter.ToDTOHistory(req.sender, games)))
}

// snapshot must run while g is checked out.
func (b *Bot) snapshot(ctx context.Context, g *tictactoe.Game) *t3dto.GameView {
	view := presenter.ToDTOGame(g)
	if b.deps.Images == nil {
		return view
	}
	p1, p2 := g.Player1(), g.Player2()
	png, err := b.deps.Images.RenderPNG(ctx, g.Board(), p1, p2, boardimage.Options{
		Header: p1.Name + " vs " + p2.Name,
	})
	if err != nil {
		b.logger.Warn("t3_board_image_failed", zap.String("game_id", g.ID), zap.Error(err))
		return view
	}
	view.BoardImage = png
	return view
}
