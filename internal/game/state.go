package game

// State is the phase of a game.
type State string

const (
	StateInProgress State = "in_progress"
	StateWon        State = "won"
	StateDrawn      State = "drawn"
)

// Status is a tagged game state. Winner and Line are only set when State is
// StateWon.
type Status struct {
	State  State
	Winner PlayerMark
	Line   Line
}

// InProgress returns the non-terminal status.
func InProgress() Status {
	return Status{State: StateInProgress}
}

// Terminal reports whether no further moves are accepted.
func (s Status) Terminal() bool {
	return s.State == StateWon || s.State == StateDrawn
}

// Evaluate derives the status of b right after mark has moved.
func Evaluate(b Board, mark PlayerMark) Status {
	if ln, ok := WinningLine(b, mark); ok {
		return Status{State: StateWon, Winner: mark, Line: ln}
	}
	if IsBoardFull(b) {
		return Status{State: StateDrawn}
	}
	return InProgress()
}
