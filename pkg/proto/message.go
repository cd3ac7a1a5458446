package proto

import "ctchen222/Tic-Tac-Toe-Solo/internal/game"

// Client message types.
const (
	TypeMove       = "move"
	TypeChooseMark = "choose_mark"
	TypeReset      = "reset"
	TypeState      = "state"
)

// Server message types. TypeState is shared with the client request that
// asks for a fresh snapshot.
const (
	TypeError = "error"
)

// Outcomes as seen by the human player.
const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
	OutcomeDraw = "draw"
)

// ClientMessage is a command sent by the browser over the WebSocket.
type ClientMessage struct {
	Type string `json:"type" validate:"required,oneof=move choose_mark reset state"`
	Cell *int   `json:"cell,omitempty" validate:"omitempty,min=0,max=8"`
	Mark string `json:"mark,omitempty" validate:"omitempty,oneof=X O x o"`
}

// Snapshot is the full observable state of one game.
type Snapshot struct {
	Board    [game.CellCount]string `json:"board"`
	Turn     game.PlayerMark        `json:"turn"`
	Human    game.PlayerMark        `json:"human"`
	Computer game.PlayerMark        `json:"computer"`
	Status   game.State             `json:"status"`
	Winner   game.PlayerMark        `json:"winner,omitempty"`
	Line     []int                  `json:"line,omitempty"`
	Outcome  string                 `json:"outcome,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Moves    int                    `json:"moves"`
	Pending  bool                   `json:"pending"`
}

// ServerMessage is pushed to the browser after every command. Error frames
// carry no snapshot.
type ServerMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
	*Snapshot
}

// NewSnapshot captures g. pending marks a computer reply that is scheduled but
// not yet played.
func NewSnapshot(g *game.Game, pending bool) *Snapshot {
	status := g.Status()
	s := &Snapshot{
		Board:    g.Board().Strings(),
		Turn:     g.Turn(),
		Human:    g.HumanMark(),
		Computer: g.ComputerMark(),
		Status:   status.State,
		Moves:    g.Moves(),
		Pending:  pending,
	}

	switch status.State {
	case game.StateWon:
		s.Winner = status.Winner
		s.Line = status.Line[:]
		if status.Winner == g.HumanMark() {
			s.Outcome, s.Message = OutcomeWin, "You Won the Game!"
		} else {
			s.Outcome, s.Message = OutcomeLoss, "Computer won the game! Game over."
		}
	case game.StateDrawn:
		s.Outcome, s.Message = OutcomeDraw, "Draw!"
	}
	return s
}

// StateMessage wraps a snapshot for sessionID.
func StateMessage(sessionID string, s *Snapshot) *ServerMessage {
	return &ServerMessage{Type: TypeState, SessionID: sessionID, Snapshot: s}
}

// ErrorMessage reports a rejected command.
func ErrorMessage(sessionID string, err error) *ServerMessage {
	return &ServerMessage{Type: TypeError, SessionID: sessionID, Reason: err.Error()}
}
