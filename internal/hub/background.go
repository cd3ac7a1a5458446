package hub

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Run sweeps idle sessions until ctx is done, then closes the rest.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.CloseAll(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-ticker.C:
			h.Sweep(ctx)
		}
	}
}

// Sweep closes sessions idle for longer than the TTL and returns how many it
// removed. A TTL of zero keeps sessions forever.
func (h *Hub) Sweep(ctx context.Context) int {
	if h.ttl <= 0 {
		return 0
	}

	now := h.now()
	ctx, span := tracer.Start(ctx, "hub.Sweep", trace.WithAttributes(
		attribute.Int("session.count", h.Len()),
	))
	defer span.End()

	removed := 0
	h.sessions.Range(func(id string, s *session.Session) bool {
		if idle := now.Sub(s.LastSeen()); idle > h.ttl {
			slog.DebugContext(ctx, "session expired, deleting", "session.id", id, "session.idle", idle)
			h.sessions.Delete(id)
			if err := s.Close(); err != nil {
				slog.WarnContext(ctx, "error closing expired session", "session.id", id, "error", err)
			}
			removed++
		}
		return true
	})

	span.SetAttributes(attribute.Int("session.removed", removed))
	return removed
}
