package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMove is the root of every rejected move.
	ErrInvalidMove = errors.New("invalid move")
	// ErrInvalidOperation is the root of every operation rejected by the game state.
	ErrInvalidOperation = errors.New("invalid operation")

	ErrCellOccupied   = fmt.Errorf("%w: cell already occupied", ErrInvalidMove)
	ErrCellOutOfRange = fmt.Errorf("%w: cell out of range", ErrInvalidMove)
	ErrNotYourTurn    = fmt.Errorf("%w: not your turn", ErrInvalidMove)

	ErrGameOver        = fmt.Errorf("%w: game already finished", ErrInvalidOperation)
	ErrNotComputerTurn = fmt.Errorf("%w: not the computer's turn", ErrInvalidOperation)
	ErrInvalidMark     = fmt.Errorf("%w: mark must be X or O", ErrInvalidOperation)

	ErrMalformedBoard = errors.New("malformed board")
)
