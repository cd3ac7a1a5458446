//go:generate mockgen -source=machine.go -destination=mock_game/move_calculator.go -package=mock_game

package game

import (
	"context"
	"fmt"
)

// MoveCalculator picks the cell mark should play on board.
type MoveCalculator interface {
	BestMove(ctx context.Context, board Board, mark PlayerMark) (int, error)
}

// Game is the turn-taking state machine of a single human-versus-computer
// match. A Game is not safe for concurrent use.
type Game struct {
	board    Board
	turn     PlayerMark
	human    PlayerMark
	computer PlayerMark
	status   Status
	moves    int
	engine   MoveCalculator
}

// NewGame returns a game where the human holds X and moves first.
func NewGame(engine MoveCalculator) *Game {
	g := &Game{
		human:    PlayerX,
		computer: PlayerO,
		engine:   engine,
	}
	g.clear(PlayerX)
	return g
}

func (g *Game) Board() Board { return g.board }
func (g *Game) Status() Status { return g.status }
func (g *Game) Turn() PlayerMark { return g.turn }
func (g *Game) HumanMark() PlayerMark { return g.human }
func (g *Game) ComputerMark() PlayerMark { return g.computer }
func (g *Game) Moves() int { return g.moves }
func (g *Game) ComputerToMove() bool { return !g.status.Terminal() && g.turn == g.computer }

// Clone returns an independent copy sharing the same move calculator.
func (g *Game) Clone() *Game {
	c := *g
	return &c
}

// ApplyMove plays mark at cell. A rejected move leaves the game untouched.
func (g *Game) ApplyMove(cell int, mark PlayerMark) (Status, error) {
	if g.status.Terminal() {
		return g.status, ErrGameOver
	}
	if !InRange(cell) {
		return g.status, fmt.Errorf("%w: %d", ErrCellOutOfRange, cell)
	}
	if mark != g.turn {
		return g.status, ErrNotYourTurn
	}
	if g.board[cell] != None {
		return g.status, fmt.Errorf("%w: %d", ErrCellOccupied, cell)
	}

	g.place(cell, mark)
	return g.status, nil
}

// ComputerRespond asks the move calculator for the computer's move and plays
// it. The turn check of ApplyMove is skipped since the engine answers for its
// own mark.
func (g *Game) ComputerRespond(ctx context.Context) (Status, error) {
	if g.status.Terminal() {
		return g.status, ErrGameOver
	}
	if g.turn != g.computer {
		return g.status, ErrNotComputerTurn
	}
	if g.engine == nil {
		return g.status, fmt.Errorf("%w: no move calculator", ErrInvalidOperation)
	}

	cell, err := g.engine.BestMove(ctx, g.board, g.computer)
	if err != nil {
		return g.status, fmt.Errorf("failed to calculate computer move: %w", err)
	}
	if !InRange(cell) {
		return g.status, fmt.Errorf("engine returned %w: %d", ErrCellOutOfRange, cell)
	}
	if g.board[cell] != None {
		return g.status, fmt.Errorf("engine returned %w: %d", ErrCellOccupied, cell)
	}

	g.place(cell, g.computer)
	return g.status, nil
}

// ChooseMark gives mark to the human and the other one to the computer, then
// starts a new game with X to move. When the computer holds X it plays its
// opening move before ChooseMark returns. If that move fails the previous
// game is restored.
func (g *Game) ChooseMark(ctx context.Context, mark PlayerMark) error {
	if !mark.Valid() {
		return ErrInvalidMark
	}

	prev := g.Clone()
	g.human = mark
	g.computer = mark.Opponent()
	g.clear(PlayerX)

	if g.computer == PlayerX {
		if _, err := g.ComputerRespond(ctx); err != nil {
			*g = *prev
			return err
		}
	}
	return nil
}

// Reset clears the board. The human moves first whichever mark it holds.
func (g *Game) Reset() {
	g.clear(g.human)
}

func (g *Game) clear(first PlayerMark) {
	g.board = Board{}
	g.moves = 0
	g.status = InProgress()
	g.turn = first
}

func (g *Game) place(cell int, mark PlayerMark) {
	g.board[cell] = mark
	g.moves++
	g.status = Evaluate(g.board, mark)
	if !g.status.Terminal() {
		g.turn = mark.Opponent()
	}
}
