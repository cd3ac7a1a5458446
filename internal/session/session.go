package session

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("session")
	meter  = otel.Meter("session")
)

var ErrSessionClosed = errors.New("session closed")

// finishedGames counts terminal outcomes from the human's side.
var finishedGames, _ = meter.Int64Counter("ttt.games.finished",
	metric.WithDescription("Games that reached a win, loss or draw"),
)

// Session owns one game and the pacing of its computer replies. Every method
// is safe for concurrent use.
type Session struct {
	ID string

	mu       sync.Mutex
	game     *game.Game
	delay    time.Duration
	pending  *time.Timer
	gen      uint64
	closed   bool
	lastSeen time.Time
	conn     Connection
	now      func() time.Time
}

type Option func(*Session)

// WithDelay schedules computer replies d after the human move. Zero or less
// replies before the move call returns.
func WithDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithClock replaces time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session whose computer opponent is engine.
func New(id string, engine game.MoveCalculator, opts ...Option) *Session {
	s := &Session{
		ID:   id,
		game: game.NewGame(engine),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSeen = s.now()
	return s
}

// Snapshot returns the current state.
func (s *Session) Snapshot() *proto.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// LastSeen is the time of the last command.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Pending reports whether a computer reply is scheduled.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Move plays the human's mark at cell and then lets the computer answer,
// either right away or after the configured delay.
func (s *Session) Move(ctx context.Context, cell int) (*proto.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "session.Move", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.Int("game.cell", cell),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.touch(); err != nil {
		return nil, err
	}

	status, err := s.game.ApplyMove(cell, s.game.HumanMark())
	if err != nil {
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		return s.snapshot(), err
	}
	span.SetAttributes(attribute.Bool("move.valid", true))
	s.record(ctx, status)

	if s.game.ComputerToMove() {
		if s.delay > 0 {
			s.schedule()
		} else if err := s.respond(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Computer reply failed")
			return s.snapshot(), err
		}
	}
	return s.snapshot(), nil
}

// ChooseMark gives mark to the human and restarts. A pending reply is
// dropped, and when the computer takes X its opening is already on the board
// in the returned snapshot. If that opening fails the previous game and its
// pending reply are kept.
func (s *Session) ChooseMark(ctx context.Context, mark game.PlayerMark) (*proto.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "session.ChooseMark", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("game.mark", string(mark)),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.touch(); err != nil {
		return nil, err
	}
	s.cancel()

	if err := s.game.ChooseMark(ctx, mark); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Choose mark failed")
		// The previous game is back, so is the reply it was waiting for.
		if s.delay > 0 && s.game.ComputerToMove() {
			s.schedule()
		}
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// Reset clears the board and drops a pending reply. The human moves first.
func (s *Session) Reset(ctx context.Context) (*proto.Snapshot, error) {
	_, span := tracer.Start(ctx, "session.Reset", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.touch(); err != nil {
		return nil, err
	}
	s.cancel()
	s.game.Reset()
	return s.snapshot(), nil
}

// Close drops a pending reply and closes the attached connection, if any.
// Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Session) touch() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.lastSeen = s.now()
	return nil
}

func (s *Session) snapshot() *proto.Snapshot {
	return proto.NewSnapshot(s.game, s.pending != nil)
}

// schedule arms the paced reply. The generation ties the timer to the game
// it was armed for.
func (s *Session) schedule() {
	s.cancel()
	gen := s.gen
	s.pending = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

// cancel invalidates any armed reply, including one whose timer has already
// fired and is waiting for the lock.
func (s *Session) cancel() {
	s.gen++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *Session) fire(gen uint64) {
	ctx, span := tracer.Start(context.Background(), "session.computerReply", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.gen {
		span.SetAttributes(attribute.Bool("reply.stale", true))
		return
	}
	s.pending = nil

	if err := s.respond(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer reply failed")
		s.send(ctx, proto.ErrorMessage(s.ID, err))
		return
	}
	s.send(ctx, proto.StateMessage(s.ID, s.snapshot()))
}

func (s *Session) respond(ctx context.Context) error {
	status, err := s.game.ComputerRespond(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "computer reply failed", "session.id", s.ID, "error", err)
		return err
	}
	s.record(ctx, status)
	return nil
}

func (s *Session) record(ctx context.Context, status game.Status) {
	if !status.Terminal() {
		return
	}
	outcome := proto.NewSnapshot(s.game, false).Outcome
	slog.InfoContext(ctx, "game finished", "session.id", s.ID, "game.outcome", outcome, "game.moves", s.game.Moves())
	if finishedGames != nil {
		finishedGames.Add(ctx, 1, metric.WithAttributes(attribute.String("game.outcome", outcome)))
	}
}
