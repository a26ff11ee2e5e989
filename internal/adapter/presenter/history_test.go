package presenter

import (
	"testing"
	"time"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/results"
	"github.com/park285/Eugene-KakaoTalk-bot/pkg/t3dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDTOHistory(t *testing.T) {
	games := []results.Result{
		{GameID: "g1", Player1Name: "A", Player2Name: "B", Outcome: results.OutcomePlayer1, Winner: "A", Moves: 5},
		{GameID: "g2", Player1Name: "C", Player2Name: "A", Outcome: results.OutcomePlayer1, Winner: "C", Moves: 7},
		{GameID: "g3", Player1Name: "A", Player2Name: "D", Outcome: results.OutcomeDraw, Moves: 9},
		{GameID: "g4", Player1Name: "E", Player2Name: "A", Outcome: results.OutcomeNone, Reason: "abandoned", Moves: 2},
		{GameID: "g5", Player1Name: "A", Player2Name: "F", Outcome: results.OutcomeNone, Reason: "expired"},
	}

	got := ToDTOHistory("A", games)

	require.Len(t, got, len(games))
	want := []struct{ opponent, result string }{
		{"B", "Won"}, {"C", "Lost"}, {"D", "Draw"}, {"E", "Abandoned"}, {"F", "Expired"},
	}
	for i, w := range want {
		assert.Equal(t, w.opponent, got[i].Opponent, games[i].GameID)
		assert.Equal(t, w.result, got[i].Result, games[i].GameID)
	}
}

func TestFormatter_History(t *testing.T) {
	f := newFormatter(t)

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, "A has no archived games yet.", f.History("A", nil))
	})

	t.Run("Lines", func(t *testing.T) {
		ended := time.Date(2026, 3, 1, 12, 30, 0, 0, time.Local)
		out := f.History("A", []t3dto.HistoryEntry{
			{Opponent: "B", Result: "Won", Moves: 5, EndedAt: ended},
			{Opponent: "C", Result: "Draw", Moves: 9, EndedAt: ended},
		})

		assert.Equal(t, "Last games of A:\n"+
			"Won vs B in 5 moves (2026-03-01 12:30)\n"+
			"Draw vs C in 9 moves (2026-03-01 12:30)", out)
	})
}
