package tictactoe

import "strings"

// Player is a participant of a game. Name is the identity used for registry lookup,
// Mark is what gets drawn on the board.
type Player struct {
	Name string `json:"name"`
	Mark string `json:"mark"`
}

func NewPlayer(name, mark string) Player {
	return Player{Name: strings.TrimSpace(name), Mark: strings.TrimSpace(mark)}
}

func (p Player) valid() bool {
	return p.Name != "" && p.Mark != ""
}

// ValidatePlayers checks that two players can share a board.
func ValidatePlayers(p1, p2 Player) error {
	if !p1.valid() || !p2.valid() {
		return ErrInvalidPlayer
	}
	if p1.Name == p2.Name {
		return ErrSelfPlay
	}
	if p1.Mark == p2.Mark {
		return ErrSameMark
	}
	return nil
}
