package t3dto

type Player struct {
	Name string `json:"name"`
	Mark string `json:"mark"`
}

// GameView is a read-only snapshot of a game, taken while the game is checked out.
type GameView struct {
	GameID     string  `json:"game_id"`
	Player1    Player  `json:"player1"`
	Player2    Player  `json:"player2"`
	Table      string  `json:"table"`
	State      string  `json:"state"`
	Moves      int     `json:"moves"`
	Next       *Player `json:"next,omitempty"`
	Winner     *Player `json:"winner,omitempty"`
	Draw       bool    `json:"draw"`
	BoardImage []byte  `json:"-"`
}

func (v *GameView) Finished() bool {
	return v != nil && (v.Winner != nil || v.Draw)
}
