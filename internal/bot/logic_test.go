package bot

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"errors"
	"slices"
	"testing"
)

func mustBoard(t *testing.T, s string) game.Board {
	t.Helper()
	b, err := game.ParseBoard(s)
	if err != nil {
		t.Fatalf("ParseBoard(%q) failed: %v", s, err)
	}
	return b
}

func TestFindWinningMove(t *testing.T) {
	tests := []struct {
		name      string
		board     string
		mark      game.PlayerMark
		wantCell  int
		wantFound bool
	}{
		{name: "No winning move - empty board", board: "___/___/___", mark: game.PlayerX, wantCell: -1},
		{name: "X can win - first row", board: "XX_/OO_/___", mark: game.PlayerX, wantCell: 2, wantFound: true},
		{name: "O can win - second column", board: "XO_/XO_/___", mark: game.PlayerO, wantCell: 7, wantFound: true},
		{name: "X can win - main diagonal", board: "X__/_X_/___", mark: game.PlayerX, wantCell: 8, wantFound: true},
		{name: "O can win - anti-diagonal", board: "__O/_O_/___", mark: game.PlayerO, wantCell: 6, wantFound: true},
		{name: "Blocked line does not count", board: "XXO/___/___", mark: game.PlayerX, wantCell: -1},
		{name: "Full board, no win possible", board: "XOX/OXO/OXO", mark: game.PlayerX, wantCell: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell, found := findWinningMove(mustBoard(t, tt.board), tt.mark)
			if found != tt.wantFound || cell != tt.wantCell {
				t.Errorf("findWinningMove() got (%d, %v), want (%d, %v)", cell, found, tt.wantCell, tt.wantFound)
			}
		})
	}
}

func TestEasyMove(t *testing.T) {
	t.Run("Only one spot left", func(t *testing.T) {
		board := mustBoard(t, "XOX/OXO/X_O")
		if cell := easyMove(board); cell != 7 {
			t.Errorf("easyMove should pick the only available spot 7, but got %d", cell)
		}
	})

	t.Run("Multiple spots left - always an empty cell", func(t *testing.T) {
		board := mustBoard(t, "X__/_O_/__X")
		empty := game.EmptyCells(board)
		for range 100 {
			if cell := easyMove(board); !slices.Contains(empty, cell) {
				t.Fatalf("easyMove returned non-empty cell %d", cell)
			}
		}
	})
}

func TestMediumMove(t *testing.T) {
	t.Run("Takes the win", func(t *testing.T) {
		if cell := mediumMove(mustBoard(t, "OO_/XX_/X__"), game.PlayerO); cell != 2 {
			t.Errorf("mediumMove should win at 2, got %d", cell)
		}
	})

	t.Run("Blocks the opponent", func(t *testing.T) {
		if cell := mediumMove(mustBoard(t, "XX_/_O_/___"), game.PlayerO); cell != 2 {
			t.Errorf("mediumMove should block at 2, got %d", cell)
		}
	})
}

func TestMinimax_TerminalScores(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  Result
	}{
		{name: "Minimizer already won", board: "XXX/OO_/___", want: Result{Index: -1, Score: ScoreLoss}},
		{name: "Maximizer already won", board: "OOO/XX_/X__", want: Result{Index: -1, Score: ScoreWin}},
		{name: "Full board", board: "XOX/XOO/OXX", want: Result{Index: -1, Score: ScoreDraw}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// O maximizes in every case.
			if got := Minimax(mustBoard(t, tt.board), game.PlayerO, game.PlayerO); got != tt.want {
				t.Errorf("Minimax() got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMinimax_Choices(t *testing.T) {
	tests := []struct {
		name      string
		board     string
		maximizer game.PlayerMark
		want      Result
	}{
		{name: "Wins in one", board: "OO_/XX_/X__", maximizer: game.PlayerO, want: Result{Index: 2, Score: ScoreWin}},
		{name: "Blocks a threat", board: "XX_/_O_/___", maximizer: game.PlayerO, want: Result{Index: 2, Score: ScoreDraw}},
		{name: "Answers the center with the first corner", board: "___/_X_/___", maximizer: game.PlayerO, want: Result{Index: 0, Score: ScoreDraw}},
		{name: "Empty board ties break to index 0", board: "___/___/___", maximizer: game.PlayerX, want: Result{Index: 0, Score: ScoreDraw}},
		{name: "Forced loss still returns a move", board: "X_X/_O_/X_O", maximizer: game.PlayerO, want: Result{Index: 1, Score: ScoreLoss}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Minimax(mustBoard(t, tt.board), tt.maximizer, tt.maximizer); got != tt.want {
				t.Errorf("Minimax() got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMinimax_LeavesBoardUntouched(t *testing.T) {
	board := mustBoard(t, "X__/_O_/___")
	before := board
	Minimax(board, game.PlayerX, game.PlayerX)
	if board != before {
		t.Errorf("Minimax mutated the caller's board: %v", board)
	}
}

func TestNodes(t *testing.T) {
	// X@7 then O@8 is a draw; X@8 then O@7 lets O complete 1-4-7.
	board := mustBoard(t, "XOX/XOO/O__")
	if n := Nodes(board, game.PlayerX, game.PlayerX); n != 5 {
		t.Errorf("Nodes() got %d, want 5", n)
	}
	if r := Minimax(board, game.PlayerX, game.PlayerX); r != (Result{Index: 7, Score: ScoreDraw}) {
		t.Errorf("Minimax() got %+v", r)
	}
}

// value is an independent game-theoretic oracle: +1 when toMove can force a
// win, -1 when it is forced to lose, 0 otherwise.
func value(b game.Board, toMove game.PlayerMark, memo map[game.Board]int) int {
	if v, ok := memo[b]; ok {
		return v
	}
	var v int
	switch {
	case game.HasWon(b, toMove.Opponent()):
		v = -1
	case game.IsBoardFull(b):
		v = 0
	default:
		v = -2
		for _, c := range game.EmptyCells(b) {
			child := b
			child[c] = toMove
			if cv := -value(child, toMove.Opponent(), memo); cv > v {
				v = cv
			}
		}
	}
	memo[b] = v
	return v
}

func reachable(b game.Board, toMove game.PlayerMark, seen map[game.Board]game.PlayerMark) {
	if _, ok := seen[b]; ok {
		return
	}
	if game.HasWon(b, toMove.Opponent()) || game.IsBoardFull(b) {
		return
	}
	seen[b] = toMove
	for _, c := range game.EmptyCells(b) {
		child := b
		child[c] = toMove
		reachable(child, toMove.Opponent(), seen)
	}
}

func TestMinimax_IsOptimalEverywhere(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive search over every reachable position")
	}

	positions := make(map[game.Board]game.PlayerMark)
	reachable(game.Board{}, game.PlayerX, positions)
	memo := make(map[game.Board]int)

	for b, mover := range positions {
		best := value(b, mover, memo)
		r := Minimax(b, mover, mover)
		if r.Index < 0 || b[r.Index] != game.None {
			t.Fatalf("board %v: Minimax returned invalid index %d", b, r.Index)
		}

		child := b
		child[r.Index] = mover
		got := -value(child, mover.Opponent(), memo)
		if got != best {
			t.Fatalf("board %v (%s to move): chose %d worth %d, best is %d", b, mover, r.Index, got, best)
		}
		if r.Score != best*ScoreWin {
			t.Fatalf("board %v: score %d does not match value %d", b, r.Score, best)
		}
	}
}

func TestComputerVsComputer(t *testing.T) {
	for _, first := range []game.PlayerMark{game.PlayerX, game.PlayerO} {
		t.Run(string(first)+" first", func(t *testing.T) {
			var b game.Board
			if r := Minimax(b, first, first); r.Score != ScoreDraw {
				t.Fatalf("empty board should be worth a draw, got %d", r.Score)
			}

			mover := first
			status := game.InProgress()
			for !status.Terminal() {
				r := Minimax(b, mover, mover)
				b[r.Index] = mover
				status = game.Evaluate(b, mover)
				mover = mover.Opponent()
			}

			if status.State != game.StateDrawn {
				t.Errorf("game should always end in a draw, got %+v on %v", status, b)
			}
		})
	}
}

func TestCalculateNextMove(t *testing.T) {
	full := mustBoard(t, "XOX/XOO/OXX")
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		if _, err := CalculateNextMove(full, game.PlayerX, d); !errors.Is(err, ErrNoAvailableMoves) {
			t.Errorf("%s: expected ErrNoAvailableMoves, got %v", d, err)
		}
	}

	cell, err := CalculateNextMove(mustBoard(t, "OO_/XX_/X__"), game.PlayerO, Hard)
	if err != nil || cell != 2 {
		t.Errorf("hard should win at 2, got %d, %v", cell, err)
	}
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"": Hard, "EASY": Easy, " medium ": Medium, "hard": Hard} {
		if got, err := ParseDifficulty(in); err != nil || got != want {
			t.Errorf("ParseDifficulty(%q) got (%v, %v), want %v", in, got, err, want)
		}
	}
	if _, err := ParseDifficulty("impossible"); !errors.Is(err, ErrUnknownDifficulty) {
		t.Errorf("expected ErrUnknownDifficulty, got %v", err)
	}
}
