package bot

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"errors"
	"math/rand/v2"
	"strings"
)

// Terminal scores seen from the maximizing mark. There is no depth discount.
const (
	ScoreWin  = 10
	ScoreLoss = -10
	ScoreDraw = 0

	// scoreBound lies outside [ScoreLoss, ScoreWin] so the first candidate
	// always replaces it.
	scoreBound = 10000
)

var (
	ErrNoAvailableMoves  = errors.New("no available moves")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// Difficulty selects the move strategy of the computer.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts easy, medium or hard. An empty string means hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return Hard, nil
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", ErrUnknownDifficulty
	}
}

// Result is the move chosen by the search and the score it guarantees.
// Index is -1 when the position is already decided.
type Result struct {
	Index int
	Score int
}

// Minimax searches every continuation of board. maximizer is the mark the
// search plays for, its opponent minimizes, and toMove is the mark placed at
// this ply. Equal scores keep the lowest index.
func Minimax(board game.Board, maximizer, toMove game.PlayerMark) Result {
	r, _ := search(board, maximizer, toMove)
	return r
}

// Nodes returns the number of positions Minimax visits for the same inputs.
func Nodes(board game.Board, maximizer, toMove game.PlayerMark) int {
	_, n := search(board, maximizer, toMove)
	return n
}

func search(board game.Board, maximizer, toMove game.PlayerMark) (Result, int) {
	minimizer := maximizer.Opponent()

	switch {
	case game.HasWon(board, minimizer):
		return Result{Index: -1, Score: ScoreLoss}, 1
	case game.HasWon(board, maximizer):
		return Result{Index: -1, Score: ScoreWin}, 1
	case game.IsBoardFull(board):
		return Result{Index: -1, Score: ScoreDraw}, 1
	}

	maximizing := toMove == maximizer
	best := Result{Index: -1, Score: scoreBound}
	if maximizing {
		best.Score = -scoreBound
	}

	nodes := 1
	for i, cell := range board {
		if cell != game.None {
			continue
		}

		// board is an array, so child is a copy and the caller's board is untouched.
		child := board
		child[i] = toMove

		r, n := search(child, maximizer, toMove.Opponent())
		nodes += n

		if maximizing {
			if r.Score > best.Score {
				best = Result{Index: i, Score: r.Score}
			}
		} else if r.Score < best.Score {
			best = Result{Index: i, Score: r.Score}
		}
	}

	return best, nodes
}

// CalculateNextMove determines the next cell for mark based on the difficulty.
func CalculateNextMove(board game.Board, mark game.PlayerMark, difficulty Difficulty) (int, error) {
	cell, _, err := calculate(board, mark, difficulty)
	return cell, err
}

// calculate also reports how many positions were visited.
func calculate(board game.Board, mark game.PlayerMark, difficulty Difficulty) (cell, nodes int, err error) {
	if len(game.EmptyCells(board)) == 0 {
		return -1, 0, ErrNoAvailableMoves
	}

	switch difficulty {
	case Easy:
		return easyMove(board), 1, nil
	case Medium:
		return mediumMove(board, mark), 1, nil
	default:
		return hardMove(board, mark)
	}
}

// easyMove makes a completely random move.
func easyMove(board game.Board) int {
	cells := game.EmptyCells(board)
	if len(cells) == 0 {
		return -1
	}
	return cells[rand.IntN(len(cells))]
}

// mediumMove will win if it can, block if it must, otherwise move randomly.
func mediumMove(board game.Board, mark game.PlayerMark) int {
	if cell, ok := findWinningMove(board, mark); ok {
		return cell
	}
	if cell, ok := findWinningMove(board, mark.Opponent()); ok {
		return cell
	}
	return easyMove(board)
}

// hardMove plays the minimax choice.
func hardMove(board game.Board, mark game.PlayerMark) (int, int, error) {
	r, nodes := search(board, mark, mark)
	if r.Index < 0 {
		return -1, nodes, ErrNoAvailableMoves
	}
	return r.Index, nodes, nil
}

// findWinningMove returns the empty cell of the first line where mark holds the
// two other cells.
func findWinningMove(board game.Board, mark game.PlayerMark) (int, bool) {
	for _, ln := range game.WinningLines {
		held, free := 0, -1
		for _, c := range ln {
			switch board[c] {
			case mark:
				held++
			case game.None:
				free = c
			}
		}
		if held == 2 && free >= 0 {
			return free, true
		}
	}
	return -1, false
}
