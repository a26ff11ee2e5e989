package bot

import (
	"context"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/results"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/scoreboard"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/session"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
	"go.uber.org/zap"
)

// RecordResults returns a drop hook that counts finished games on scores and archives
// every dropped game. Either store may be nil. Failures are logged only.
func RecordResults(scores scoreboard.Store, archive results.Repository, logger *zap.Logger) session.DropHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(g *tictactoe.Game, reason session.DropReason) {
		ctx, cancel := storeContext(context.Background())
		defer cancel()

		if scores != nil && reason == session.DropFinished {
			if err := scores.Add(ctx, g); err != nil {
				logger.Warn("scoreboard_add_failed", zap.String("game_id", g.ID), zap.Error(err))
			}
		}
		if archive != nil {
			if err := archive.Save(ctx, results.FromGame(g, string(reason))); err != nil {
				logger.Warn("results_save_failed", zap.String("game_id", g.ID), zap.Error(err))
			}
		}
	}
}
