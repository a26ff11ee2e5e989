package t3dto

import "time"

// HistoryEntry is one archived game seen from a single player's side.
type HistoryEntry struct {
	GameID   string    `json:"game_id"`
	Opponent string    `json:"opponent"`
	Result   string    `json:"result"`
	Moves    int       `json:"moves"`
	EndedAt  time.Time `json:"ended_at"`
}
