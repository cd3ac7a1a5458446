package controller

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/models"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/response"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/hub"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionStore is the part of the hub the REST API needs.
type SessionStore interface {
	Create(ctx context.Context, paced bool) *session.Session
	Get(id string) (*session.Session, error)
	Remove(ctx context.Context, id string) error
}

var _ SessionStore = (*hub.Hub)(nil)

// GameController handles game-related HTTP requests. REST sessions are not
// paced: every move answer already holds the computer reply.
type GameController struct {
	store SessionStore
}

// NewGameController creates a new GameController.
func NewGameController(store SessionStore) *GameController {
	return &GameController{
		store: store,
	}
}

// Register mounts the game routes on rg.
func (gc *GameController) Register(rg *gin.RouterGroup) {
	games := rg.Group("/games")
	games.POST("", gc.Create)

	byID := games.Group("/:id", gc.loadSession)
	byID.GET("", gc.Get)
	byID.POST("/moves", gc.Move)
	byID.POST("/mark", gc.ChooseMark)
	byID.POST("/reset", gc.Reset)
	byID.DELETE("", gc.Delete)
}

const sessionKey = "session"

func (gc *GameController) loadSession(c *gin.Context) {
	s, err := gc.store.Get(c.Param("id"))
	if err != nil {
		response.AbortWithError(c, toHTTPError(err))
		return
	}
	c.Set(sessionKey, s)
	c.Next()
}

func sessionFrom(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// Create starts a new game. Choosing O lets the computer open.
func (gc *GameController) Create(c *gin.Context) {
	var req models.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	s := gc.store.Create(ctx, false)

	snap := s.Snapshot()
	if req.Mark != "" {
		mark, err := game.ParseMark(req.Mark)
		if err == nil {
			snap, err = s.ChooseMark(ctx, mark)
		}
		if err != nil {
			_ = gc.store.Remove(ctx, s.ID)
			slog.ErrorContext(ctx, "failed to start game", "session.id", s.ID, "error", err)
			response.AbortWithError(c, toHTTPError(err))
			return
		}
	}

	response.SuccessResponseStatus(c, http.StatusCreated, gameResponse(s.ID, snap))
}

// Get returns the current state of a game.
func (gc *GameController) Get(c *gin.Context) {
	s := sessionFrom(c)
	response.SuccessResponse(c, gameResponse(s.ID, s.Snapshot()))
}

// Move plays the human move and the computer reply.
func (gc *GameController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	s := sessionFrom(c)
	snap, err := s.Move(c.Request.Context(), *req.Cell)
	if err != nil {
		response.AbortWithError(c, toHTTPError(err))
		return
	}
	response.SuccessResponse(c, gameResponse(s.ID, snap))
}

// ChooseMark switches marks and restarts.
func (gc *GameController) ChooseMark(c *gin.Context) {
	var req models.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	mark, err := game.ParseMark(req.Mark)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	s := sessionFrom(c)
	snap, err := s.ChooseMark(c.Request.Context(), mark)
	if err != nil {
		response.AbortWithError(c, toHTTPError(err))
		return
	}
	response.SuccessResponse(c, gameResponse(s.ID, snap))
}

// Reset clears the board.
func (gc *GameController) Reset(c *gin.Context) {
	s := sessionFrom(c)
	snap, err := s.Reset(c.Request.Context())
	if err != nil {
		response.AbortWithError(c, toHTTPError(err))
		return
	}
	response.SuccessResponse(c, gameResponse(s.ID, snap))
}

// Delete ends a game.
func (gc *GameController) Delete(c *gin.Context) {
	s := sessionFrom(c)
	if err := gc.store.Remove(c.Request.Context(), s.ID); err != nil {
		response.AbortWithError(c, toHTTPError(err))
		return
	}
	response.SuccessResponse(c, gin.H{"message": "Game deleted successfully"})
}

func gameResponse(id string, snap *proto.Snapshot) models.GameResponse {
	return models.GameResponse{SessionID: id, Snapshot: snap}
}

func toHTTPError(err error) response.Error {
	switch {
	case errors.Is(err, hub.ErrSessionNotFound), errors.Is(err, session.ErrSessionClosed):
		return response.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInvalidMove), errors.Is(err, game.ErrInvalidOperation):
		return response.NewError(http.StatusConflict, err.Error())
	default:
		return response.NewError(http.StatusInternalServerError, err.Error())
	}
}
