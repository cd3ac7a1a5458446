package session

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/validator"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrMalformedMessage = errors.New("malformed message")

// HandleMessage decodes one client frame, runs it and answers with a state
// frame, or an error frame when the command is rejected.
func (s *Session) HandleMessage(ctx context.Context, raw []byte) {
	ctx, span := tracer.Start(ctx, "session.HandleMessage", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	err := s.dispatch(ctx, raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		slog.WarnContext(ctx, "rejected message from client", "session.id", s.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Rejected message")
		s.send(ctx, proto.ErrorMessage(s.ID, err))
		return
	}
	// Read under the lock again: a paced reply may already have landed.
	s.send(ctx, proto.StateMessage(s.ID, s.snapshot()))
}

func (s *Session) dispatch(ctx context.Context, raw []byte) error {
	var message proto.ClientMessage
	if err := json.Unmarshal(raw, &message); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := validator.Struct(message); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeMove:
		if message.Cell == nil {
			return fmt.Errorf("%w: cell is required", ErrMalformedMessage)
		}
		_, err := s.Move(ctx, *message.Cell)
		return err
	case proto.TypeChooseMark:
		mark, err := game.ParseMark(message.Mark)
		if err != nil {
			return err
		}
		_, err = s.ChooseMark(ctx, mark)
		return err
	case proto.TypeReset:
		_, err := s.Reset(ctx)
		return err
	default:
		return nil
	}
}
