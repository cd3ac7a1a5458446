package hub

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/config"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

var ErrSessionNotFound = errors.New("session not found")

// Hub keeps every live session in memory, keyed by session ID.
type Hub struct {
	sessions      *xsync.MapOf[string, *session.Session]
	engine        game.MoveCalculator
	delay         time.Duration
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time
}

// NewHub creates a hub whose sessions all play against engine.
func NewHub(engine game.MoveCalculator, cfg config.Game) *Hub {
	return &Hub{
		sessions:      xsync.NewMapOf[string, *session.Session](),
		engine:        engine,
		delay:         cfg.ComputerDelay,
		ttl:           cfg.SessionTTL,
		sweepInterval: cfg.SweepInterval,
		now:           time.Now,
	}
}

// Create registers a new session. Paced sessions delay the computer reply,
// the others answer within the move call.
func (h *Hub) Create(ctx context.Context, paced bool) *session.Session {
	opts := []session.Option{session.WithClock(h.now)}
	if paced {
		opts = append(opts, session.WithDelay(h.delay))
	}

	id := uuid.New().String()
	s := session.New(id, h.engine, opts...)
	h.sessions.Store(id, s)

	slog.InfoContext(ctx, "session created", "session.id", id, "session.paced", paced)
	return s
}

// Get looks up a live session.
func (h *Hub) Get(id string) (*session.Session, error) {
	s, ok := h.sessions.Load(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove unregisters and closes a session.
func (h *Hub) Remove(ctx context.Context, id string) error {
	s, ok := h.sessions.LoadAndDelete(id)
	if !ok {
		return ErrSessionNotFound
	}
	if err := s.Close(); err != nil {
		slog.WarnContext(ctx, "error closing session", "session.id", id, "error", err)
	}
	slog.InfoContext(ctx, "session removed", "session.id", id)
	return nil
}

// Len is the number of live sessions.
func (h *Hub) Len() int {
	return h.sessions.Size()
}

// Serve runs a paced session over conn and unregisters it once the
// connection ends.
func (h *Hub) Serve(ctx context.Context, conn session.Connection) error {
	ctx, span := tracer.Start(ctx, "hub.Serve")
	defer span.End()

	s := h.Create(ctx, true)
	span.SetAttributes(attribute.String("session.id", s.ID))
	// Cleanup must survive the request context.
	defer func() { _ = h.Remove(context.WithoutCancel(ctx), s.ID) }()

	if err := s.Serve(ctx, conn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session ended with error")
		return err
	}
	return nil
}

// CloseAll closes and unregisters every session.
func (h *Hub) CloseAll(ctx context.Context) {
	_, span := tracer.Start(ctx, "hub.CloseAll", trace.WithAttributes(
		attribute.Int("session.count", h.Len()),
	))
	defer span.End()

	h.sessions.Range(func(id string, s *session.Session) bool {
		h.sessions.Delete(id)
		_ = s.Close()
		return true
	})
}
