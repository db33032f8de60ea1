package usecase

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe/testing/suite"
)

var errEngineBroken = errors.New("engine broken")

type mockGame struct {
	mock.Mock
}

func (that *mockGame) ApplyMove(cell int) (bool, error) {
	args := that.Called(cell)
	return args.Bool(0), args.Error(1)
}

func (that *mockGame) Len() int {
	return that.Called().Int(0)
}

func (that *mockGame) View(step int) (tictactoe.Snapshot, error) {
	args := that.Called(step)
	return args.Get(0).(tictactoe.Snapshot), args.Error(1) //nolint: forcetypeassert // test mock
}

func (that *mockGame) Latest() tictactoe.Snapshot {
	return that.Called().Get(0).(tictactoe.Snapshot) //nolint: forcetypeassert // test mock
}

func newMockSession(t *testing.T, game *mockGame) *GameSession {
	t.Helper()

	_, st := suite.New(t)

	return NewGameSession(st.Logger, func() Game { return game })
}

func TestGameSession_Click(t *testing.T) {
	t.Run("Forwards the click to the game", func(t *testing.T) {
		// Given: a game that accepts cell 4
		game := &mockGame{}
		game.On("ApplyMove", 4).Return(true, nil).Once()
		game.On("Latest").Return(tictactoe.Snapshot{Step: 1, Outcome: entity.Outcome{Status: entity.StatusInProgress}}).Once()
		session := newMockSession(t, game)

		// When: clicking cell 4
		applied, err := session.Click(4)

		// Then: the move is reported as applied
		require.NoError(t, err)
		assert.True(t, applied)
		game.AssertExpectations(t)
	})

	t.Run("Ignored click is not an error", func(t *testing.T) {
		// Given: a game that rejects cell 0 as occupied
		game := &mockGame{}
		game.On("ApplyMove", 0).Return(false, nil).Once()
		session := newMockSession(t, game)

		// When: clicking cell 0
		applied, err := session.Click(0)

		// Then: nothing is applied and no error is returned
		require.NoError(t, err)
		assert.False(t, applied)
		game.AssertExpectations(t)
		game.AssertNotCalled(t, "Latest")
	})

	t.Run("Engine error is wrapped", func(t *testing.T) {
		// Given: a game that fails
		game := &mockGame{}
		game.On("ApplyMove", 12).Return(false, errEngineBroken).Once()
		session := newMockSession(t, game)

		// When: clicking
		applied, err := session.Click(12)

		// Then: the error is returned wrapped
		require.ErrorIs(t, err, errEngineBroken)
		assert.False(t, applied)
	})

	t.Run("Clicks are ignored while viewing a past step", func(t *testing.T) {
		// Given: a session showing step 1 of 3
		game := &mockGame{}
		game.On("View", 1).Return(tictactoe.Snapshot{Step: 1}, nil).Once()
		game.On("Len").Return(3)
		session := newMockSession(t, game)
		require.NoError(t, session.JumpTo(1))

		// When: clicking any cell
		applied, err := session.Click(5)

		// Then: the game is never asked to move
		require.NoError(t, err)
		assert.False(t, applied)
		game.AssertNotCalled(t, "ApplyMove", mock.Anything)
	})
}

func TestGameSession_Play(t *testing.T) {
	t.Run("Winner is shown after the top row", func(t *testing.T) {
		_, st := suite.New(t)

		// Given: a session backed by a real game
		session := NewDefaultGameSession(st.Logger)

		// When: X plays 0, 1, 2 and O plays 3, 4
		for _, cell := range []int{0, 3, 1, 4, 2} {
			applied, err := session.Click(cell)
			require.NoError(t, err)
			require.True(t, applied)
		}

		// Then: the view shows X as winner
		view, err := session.Render()
		require.NoError(t, err)
		assert.Equal(t, "Winner: X", view.Status)
		assert.Equal(t, [entity.BoardSize]string{"X", "X", "X", "O", "O", "", "", "", ""}, view.Cells)
		assert.True(t, view.Latest)
		assert.Equal(t, 5, view.Step)
		assert.Equal(t, session.ID(), view.SessionID)
		assert.Len(t, view.History, 6)

		// When: clicking after the win
		applied, err := session.Click(5)

		// Then: nothing changes
		require.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("Next player is shown while in progress", func(t *testing.T) {
		_, st := suite.New(t)

		// Given: a session where X has played once
		session := NewDefaultGameSession(st.Logger)
		_, err := session.Click(4)
		require.NoError(t, err)

		// When: rendering
		view, err := session.Render()

		// Then: O is next
		require.NoError(t, err)
		assert.Equal(t, "Next player: O", view.Status)
	})

	t.Run("Invalid cell is an error", func(t *testing.T) {
		_, st := suite.New(t)

		// Given: a fresh session
		session := NewDefaultGameSession(st.Logger)

		// When: clicking outside the board
		_, err := session.Click(9)

		// Then: ErrInvalidCell is returned
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})
}

func TestGameSession_ClickLogsOnce(t *testing.T) {
	// Given: a session writing debug logs to a buffer
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	session := NewDefaultGameSession(logger)

	// When: a cell is played and then clicked again
	applied, err := session.Click(4)
	require.NoError(t, err)
	require.True(t, applied)
	applied, err = session.Click(4)
	require.NoError(t, err)
	require.False(t, applied)

	// Then: each click produced exactly one move record
	text := logs.String()
	assert.Equal(t, 1, strings.Count(text, `"msg":"move applied"`))
	assert.Equal(t, 1, strings.Count(text, `"msg":"move ignored"`))
	assert.NotContains(t, text, `"msg":"click ignored"`)
}

func TestGameSession_JumpTo(t *testing.T) {
	t.Run("Shows a past step and returns to the latest", func(t *testing.T) {
		_, st := suite.New(t)

		// Given: a session with three moves
		session := NewDefaultGameSession(st.Logger)
		for _, cell := range []int{0, 4, 8} {
			_, err := session.Click(cell)
			require.NoError(t, err)
		}

		// When: jumping to the first move
		require.NoError(t, session.JumpTo(1))
		view, err := session.Render()

		// Then: the old board and its turn are shown
		require.NoError(t, err)
		assert.False(t, view.Latest)
		assert.Equal(t, 1, view.Step)
		assert.Equal(t, [entity.BoardSize]string{"X", "", "", "", "", "", "", "", ""}, view.Cells)
		assert.Equal(t, "Next player: O", view.Status)
		assert.Len(t, view.History, 4)

		// When: following the latest step again
		session.FollowLatest()
		view, err = session.Render()

		// Then: the newest board is back
		require.NoError(t, err)
		assert.True(t, view.Latest)
		assert.Equal(t, 3, view.Step)
	})

	t.Run("Jumping to the newest step follows the game", func(t *testing.T) {
		_, st := suite.New(t)

		// Given: a session with one move
		session := NewDefaultGameSession(st.Logger)
		_, err := session.Click(0)
		require.NoError(t, err)

		// When: jumping to step 1, the newest
		require.NoError(t, session.JumpTo(1))

		// Then: clicks are accepted again
		applied, err := session.Click(1)
		require.NoError(t, err)
		assert.True(t, applied)
	})

	t.Run("Out of range step", func(t *testing.T) {
		_, st := suite.New(t)

		// Given: a fresh session
		session := NewDefaultGameSession(st.Logger)

		// When: jumping past the end
		err := session.JumpTo(4)

		// Then: ErrInvalidStep is returned
		assert.ErrorIs(t, err, apperror.ErrInvalidStep)
	})
}

func TestGameSession_Restart(t *testing.T) {
	_, st := suite.New(t)

	// Given: a finished game viewed at a past step
	session := NewDefaultGameSession(st.Logger)
	for _, cell := range []int{0, 3, 1, 4, 2} {
		_, err := session.Click(cell)
		require.NoError(t, err)
	}
	require.NoError(t, session.JumpTo(2))

	// When: restarting
	session.Restart()
	view, err := session.Render()

	// Then: a fresh game is shown with X to move
	require.NoError(t, err)
	assert.Equal(t, [entity.BoardSize]string{}, view.Cells)
	assert.Equal(t, "Next player: X", view.Status)
	assert.True(t, view.Latest)
	assert.Equal(t, []string{"Go to game start"}, view.History)
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "Next player: X", StatusLine(tictactoe.Snapshot{Turn: entity.MarkX}))
	assert.Equal(t, "Winner: O", StatusLine(tictactoe.Snapshot{
		Outcome: entity.Outcome{Status: entity.StatusWon, Winner: entity.MarkO},
	}))
	assert.Equal(t, "Draw", StatusLine(tictactoe.Snapshot{Outcome: entity.Outcome{Status: entity.StatusDraw}}))
}

func TestHistoryLabels(t *testing.T) {
	assert.Equal(t, []string{"Go to game start", "Go to move #1", "Go to move #2"}, HistoryLabels(3))
}
