package bot

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("bot")

// Engine implements the game.MoveCalculator interface.
type Engine struct {
	difficulty     Difficulty
	searchDuration metric.Float64Histogram
	searchNodes    metric.Int64Counter
}

var _ game.MoveCalculator = (*Engine)(nil)

// NewEngine creates a move calculator playing at the given difficulty.
func NewEngine(difficulty Difficulty) *Engine {
	meter := otel.Meter("bot")

	duration, err := meter.Float64Histogram("ttt.search.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Time spent choosing a computer move"),
	)
	if err != nil {
		otel.Handle(err)
	}
	nodes, err := meter.Int64Counter("ttt.search.nodes",
		metric.WithDescription("Positions visited by the game-tree search"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &Engine{
		difficulty:     difficulty,
		searchDuration: duration,
		searchNodes:    nodes,
	}
}

// Difficulty returns the strategy the engine plays.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// BestMove picks the cell mark should play on board.
func (e *Engine) BestMove(ctx context.Context, board game.Board, mark game.PlayerMark) (int, error) {
	ctx, span := tracer.Start(ctx, "bot.BestMove", trace.WithAttributes(
		attribute.String("bot.difficulty", string(e.difficulty)),
		attribute.String("bot.mark", string(mark)),
		attribute.String("game.board", board.String()),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Search cancelled")
		return -1, fmt.Errorf("search cancelled: %w", err)
	}

	start := time.Now()
	cell, nodes, err := calculate(board, mark, e.difficulty)
	elapsed := time.Since(start)

	attrs := metric.WithAttributes(attribute.String("bot.difficulty", string(e.difficulty)))
	if e.searchDuration != nil {
		e.searchDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "No move available")
		return -1, err
	}

	if e.searchNodes != nil {
		e.searchNodes.Add(ctx, int64(nodes), attrs)
	}

	span.SetAttributes(attribute.Int("bot.cell", cell), attribute.Int("bot.nodes", nodes))
	return cell, nil
}
