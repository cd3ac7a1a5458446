package session

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game/mock_game"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSession_Move(t *testing.T) {
	t.Run("Without delay the reply is in the returned snapshot", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		engine := mock_game.NewMockMoveCalculator(ctrl)
		engine.EXPECT().BestMove(gomock.Any(), gomock.Any(), game.PlayerO).Return(0, nil)
		s := New("s1", engine)

		snap, err := s.Move(context.Background(), 4)

		require.NoError(t, err)
		assert.Equal(t, [9]string{"O", "", "", "", "X", "", "", "", ""}, snap.Board)
		assert.Equal(t, game.PlayerX, snap.Turn)
		assert.False(t, snap.Pending)
	})

	t.Run("Rejected move leaves the game untouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		engine := mock_game.NewMockMoveCalculator(ctrl)
		engine.EXPECT().BestMove(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil)
		s := New("s1", engine)
		_, err := s.Move(context.Background(), 4)
		require.NoError(t, err)

		snap, err := s.Move(context.Background(), 0)

		require.ErrorIs(t, err, game.ErrCellOccupied)
		assert.Equal(t, 2, snap.Moves)
	})

	t.Run("Winning move needs no reply", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		engine := mock_game.NewMockMoveCalculator(ctrl)
		gomock.InOrder(
			engine.EXPECT().BestMove(gomock.Any(), gomock.Any(), game.PlayerO).Return(3, nil),
			engine.EXPECT().BestMove(gomock.Any(), gomock.Any(), game.PlayerO).Return(4, nil),
		)
		s := New("s1", engine)
		for _, c := range []int{0, 1} {
			_, err := s.Move(context.Background(), c)
			require.NoError(t, err)
		}

		snap, err := s.Move(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, game.StateWon, snap.Status)
		assert.Equal(t, []int{0, 1, 2}, snap.Line)
		assert.Equal(t, "win", snap.Outcome)
	})
}

func TestSession_PacedReply(t *testing.T) {
	t.Run("Reply lands after the delay", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		engine := mock_game.NewMockMoveCalculator(ctrl)
		engine.EXPECT().BestMove(gomock.Any(), gomock.Any(), game.PlayerO).Return(0, nil)
		s := New("s1", engine, WithDelay(20*time.Millisecond))

		snap, err := s.Move(context.Background(), 4)

		require.NoError(t, err)
		assert.True(t, snap.Pending)
		assert.Equal(t, 1, snap.Moves)
		assert.Eventually(t, func() bool { return s.Snapshot().Moves == 2 }, time.Second, 5*time.Millisecond)
		assert.False(t, s.Pending())
	})

	t.Run("Human cannot move while the reply is pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		engine := mock_game.NewMockMoveCalculator(ctrl)
		engine.EXPECT().BestMove(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()
		s := New("s1", engine, WithDelay(time.Hour))
		t.Cleanup(func() { _ = s.Close() })

		_, err := s.Move(context.Background(), 4)
		require.NoError(t, err)
		_, err = s.Move(context.Background(), 5)

		require.ErrorIs(t, err, game.ErrNotYourTurn)
	})

	t.Run("Reset cancels the pending reply", func(t *testing.T) {
		var calls atomic.Int32
		s := New("s1", countingEngine(&calls), WithDelay(30*time.Millisecond))

		_, err := s.Move(context.Background(), 4)
		require.NoError(t, err)
		snap, err := s.Reset(context.Background())
		require.NoError(t, err)

		assert.False(t, snap.Pending)
		time.Sleep(80 * time.Millisecond)
		assert.Zero(t, calls.Load())
		assert.Zero(t, s.Snapshot().Moves)
	})

	t.Run("ChooseMark cancels the pending reply", func(t *testing.T) {
		var calls atomic.Int32
		s := New("s1", countingEngine(&calls), WithDelay(30*time.Millisecond))

		_, err := s.Move(context.Background(), 4)
		require.NoError(t, err)
		_, err = s.ChooseMark(context.Background(), game.PlayerX)
		require.NoError(t, err)

		time.Sleep(80 * time.Millisecond)
		assert.Zero(t, calls.Load())
		assert.Equal(t, game.Board{}.Strings(), s.Snapshot().Board)
	})

	t.Run("Failed ChooseMark re-arms the previous reply", func(t *testing.T) {
		boom := errors.New("boom")
		engine := engineFunc(func(_ context.Context, b game.Board, m game.PlayerMark) (int, error) {
			if m == game.PlayerX {
				return -1, boom
			}
			return game.EmptyCells(b)[0], nil
		})
		s := New("s1", engine, WithDelay(20*time.Millisecond))
		t.Cleanup(func() { _ = s.Close() })

		_, err := s.Move(context.Background(), 4)
		require.NoError(t, err)
		snap, err := s.ChooseMark(context.Background(), game.PlayerO)

		require.ErrorIs(t, err, boom)
		assert.Equal(t, game.PlayerX, snap.Human)
		assert.Equal(t, "X", snap.Board[4])
		assert.True(t, snap.Pending)
		assert.Eventually(t, func() bool { return s.Snapshot().Moves == 2 }, time.Second, 5*time.Millisecond)
	})

	t.Run("Close cancels the pending reply", func(t *testing.T) {
		var calls atomic.Int32
		s := New("s1", countingEngine(&calls), WithDelay(30*time.Millisecond))

		_, err := s.Move(context.Background(), 4)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		time.Sleep(80 * time.Millisecond)
		assert.Zero(t, calls.Load())
	})
}

func TestSession_ChooseMark(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mock_game.NewMockMoveCalculator(ctrl)
	engine.EXPECT().BestMove(gomock.Any(), game.Board{}, game.PlayerX).Return(4, nil)
	s := New("s1", engine, WithDelay(time.Hour))

	snap, err := s.ChooseMark(context.Background(), game.PlayerO)

	require.NoError(t, err)
	assert.Equal(t, game.PlayerO, snap.Human)
	assert.Equal(t, game.PlayerX, snap.Computer)
	assert.Equal(t, "X", snap.Board[4])
	assert.Equal(t, 1, snap.Moves)
	assert.Equal(t, game.PlayerO, snap.Turn)
}

func TestSession_Closed(t *testing.T) {
	s := New("s1", nil)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Move(context.Background(), 0)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Reset(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.ChooseMark(context.Background(), game.PlayerO)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_LastSeen(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := New("s1", nil, WithClock(clock))
	assert.Equal(t, now, s.LastSeen())

	now = now.Add(time.Minute)
	_, err := s.Reset(context.Background())

	require.NoError(t, err)
	assert.Equal(t, now, s.LastSeen())
}

type engineFunc func(ctx context.Context, b game.Board, m game.PlayerMark) (int, error)

func (f engineFunc) BestMove(ctx context.Context, b game.Board, m game.PlayerMark) (int, error) {
	return f(ctx, b, m)
}

// countingEngine plays the first empty cell and counts its calls.
func countingEngine(calls *atomic.Int32) game.MoveCalculator {
	return engineFunc(func(_ context.Context, b game.Board, _ game.PlayerMark) (int, error) {
		calls.Add(1)
		return game.EmptyCells(b)[0], nil
	})
}
