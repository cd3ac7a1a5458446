package models

import "ctchen222/Tic-Tac-Toe-Solo/pkg/proto"

// CreateGameRequest optionally picks the human's mark for the new game.
type CreateGameRequest struct {
	Mark string `json:"mark" binding:"omitempty,oneof=X O x o"`
}

// MoveRequest places the human's mark. Cell is a pointer so that 0 passes
// the required check.
type MoveRequest struct {
	Cell *int `json:"cell" binding:"required,min=0,max=8"`
}

// MarkRequest switches the human's mark and restarts the game.
type MarkRequest struct {
	Mark string `json:"mark" binding:"required,oneof=X O x o"`
}

// GameResponse is the state of one game session.
type GameResponse struct {
	SessionID string `json:"session_id"`
	*proto.Snapshot
}
