package session

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	heartbeatInterval = 10 * time.Second
	pongWait          = 60 * time.Second
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// pongConn is a Connection that reports heartbeat answers, as
// *websocket.Conn does.
type pongConn interface {
	SetPongHandler(h func(appData string) error)
	SetReadDeadline(t time.Time) error
}

// Serve attaches conn, pushes the initial state and pumps commands until the
// connection fails or ctx is done. The session is closed on return.
func (s *Session) Serve(ctx context.Context, conn Connection) error {
	ctx, span := tracer.Start(ctx, "session.Serve", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.conn = conn
	if pc, ok := conn.(pongConn); ok {
		_ = pc.SetReadDeadline(time.Now().Add(pongWait))
		pc.SetPongHandler(func(string) error {
			s.keepAlive()
			return pc.SetReadDeadline(time.Now().Add(pongWait))
		})
	}
	s.send(ctx, proto.StateMessage(s.ID, s.snapshot()))
	s.mu.Unlock()

	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		defer cancel()
		return s.readPump(ctx, conn)
	})

	errg.Go(func() error {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				// Unblocks the read pump.
				s.Close()
				return nil
			case <-ticker.C:
				s.mu.Lock()
				err := conn.WriteMessage(websocket.PingMessage, nil)
				s.mu.Unlock()
				if err != nil {
					slog.WarnContext(ctx, "failed to send ping, assuming disconnect", "session.id", s.ID, "error", err)
					s.Close()
					return nil
				}
			}
		}
	})

	err := errg.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Connection error")
	}
	slog.InfoContext(ctx, "session disconnected", "session.id", s.ID)
	return err
}

// keepAlive marks a connected but idle player as still present.
func (s *Session) keepAlive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.lastSeen = s.now()
	}
}

func (s *Session) readPump(ctx context.Context, conn Connection) error {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				slog.WarnContext(ctx, "session connection error", "session.id", s.ID, "error", err)
				return err
			}
			return nil
		}
		s.HandleMessage(ctx, msg)
	}
}

// send writes msg to the attached connection. The caller holds s.mu, which
// also serializes writers on the connection.
func (s *Session) send(ctx context.Context, msg *proto.ServerMessage) {
	if s.conn == nil || s.closed {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "session.id", s.ID, "error", err)
		return
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "error writing message", "session.id", s.ID, "message.type", msg.Type, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
}
