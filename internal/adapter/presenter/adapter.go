package presenter

import (
	"github.com/park285/Eugene-KakaoTalk-bot/internal/results"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/scoreboard"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
	"github.com/park285/Eugene-KakaoTalk-bot/pkg/t3dto"
)

func toDTOPlayer(p tictactoe.Player) t3dto.Player {
	return t3dto.Player{Name: p.Name, Mark: p.Mark}
}

// ToDTOGame snapshots g. Call it while holding the game's lease.
func ToDTOGame(g *tictactoe.Game) *t3dto.GameView {
	if g == nil {
		return nil
	}
	v := &t3dto.GameView{
		GameID:  g.ID,
		Player1: toDTOPlayer(g.Player1()),
		Player2: toDTOPlayer(g.Player2()),
		Table:   g.RenderTable(),
		State:   g.State().String(),
		Moves:   g.Moves(),
		Draw:    g.State() == tictactoe.Draw,
	}
	if next, err := g.CurrentPlayer(); err == nil {
		p := toDTOPlayer(next)
		v.Next = &p
	}
	if winner, ok := g.Winner(); ok {
		p := toDTOPlayer(winner)
		v.Winner = &p
	}
	return v
}

func ToDTOStats(r scoreboard.Record) t3dto.Stats {
	return t3dto.Stats{Name: r.Name, Wins: r.Wins, Losses: r.Losses, Draws: r.Draws}
}

const (
	historyWon       = "Won"
	historyLost      = "Lost"
	historyDraw      = "Draw"
	historyAbandoned = "Abandoned"
	historyExpired   = "Expired"
)

// ToDTOHistory describes each archived game from name's point of view.
func ToDTOHistory(name string, games []results.Result) []t3dto.HistoryEntry {
	out := make([]t3dto.HistoryEntry, 0, len(games))
	for _, r := range games {
		opponent := r.Player2Name
		if r.Player2Name == name {
			opponent = r.Player1Name
		}
		out = append(out, t3dto.HistoryEntry{
			GameID:   r.GameID,
			Opponent: opponent,
			Result:   historyResult(name, r),
			Moves:    r.Moves,
			EndedAt:  r.EndedAt,
		})
	}
	return out
}

func historyResult(name string, r results.Result) string {
	switch r.Outcome {
	case results.OutcomeDraw:
		return historyDraw
	case results.OutcomePlayer1, results.OutcomePlayer2:
		if r.Winner == name {
			return historyWon
		}
		return historyLost
	}
	if r.Reason == "expired" {
		return historyExpired
	}
	return historyAbandoned
}
