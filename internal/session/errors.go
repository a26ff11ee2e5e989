package session

import (
	"errors"
	"fmt"
)

var (
	ErrPlayerAlreadyInGame = errors.New("player is already in a game")
	ErrRegistryFull        = errors.New("too many games in progress")
)

// PlayerAlreadyInGameError names the player that blocked a Start.
type PlayerAlreadyInGameError struct {
	Name string
}

func (e *PlayerAlreadyInGameError) Error() string {
	return fmt.Sprintf("%s is already in a game", e.Name)
}

func (e *PlayerAlreadyInGameError) Is(target error) bool {
	return target == ErrPlayerAlreadyInGame
}
