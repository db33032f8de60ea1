package usecase

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

// Game is the part of tictactoe.GameController a session drives.
type Game interface {
	ApplyMove(cell int) (bool, error)
	Len() int
	View(step int) (tictactoe.Snapshot, error)
	Latest() tictactoe.Snapshot
}

// ControllerFactory - starts a fresh game.
type ControllerFactory func() Game

// View is what a front end needs to draw one frame.
type View struct {
	SessionID string
	Cells     [entity.BoardSize]string
	Status    string
	Step      int
	Latest    bool
	History   []string
	Snapshot  tictactoe.Snapshot
}

// GameSession is one interactive game as seen by a front end.
// It remembers which history step is on screen; the controller owns the history itself.
type GameSession struct {
	id      string
	logger  *slog.Logger
	newGame ControllerFactory

	game Game
	// viewing is the displayed step, -1 means follow the latest one.
	viewing int
}

func NewGameSession(logger *slog.Logger, newGame ControllerFactory) *GameSession {
	id := uuid.NewString()

	session := &GameSession{
		id:      id,
		logger:  logger.With("component", "game_session", "session_id", id),
		newGame: newGame,
		game:    newGame(),
		viewing: -1,
	}

	session.logger.Info("game started")

	return session
}

// NewDefaultGameSession - session backed by a real GameController.
func NewDefaultGameSession(logger *slog.Logger) *GameSession {
	return NewGameSession(logger, func() Game {
		return tictactoe.NewGameController(logger)
	})
}

func (that *GameSession) ID() string {
	return that.id
}

// Click - handles a click on cell. Clicks are ignored while a past step is on screen.
// Per-move logging is left to the controller.
func (that *GameSession) Click(cell int) (bool, error) {
	if that.viewing >= 0 {
		that.logger.Debug("click ignored", "cell", cell, "reason", "viewing past step", "step", that.viewing)
		return false, nil
	}

	applied, err := that.game.ApplyMove(cell)
	if err != nil {
		return false, fmt.Errorf("failed to apply move: %w", err)
	}

	if !applied {
		return false, nil
	}

	if snapshot := that.game.Latest(); snapshot.Outcome.IsFinished() {
		that.logger.Info("game over",
			"status", snapshot.Outcome.Status,
			"winner", snapshot.Outcome.Winner,
			"moves", snapshot.Step,
		)
	}

	return true, nil
}

// Restart - drops the current game and starts a new one.
func (that *GameSession) Restart() {
	that.game = that.newGame()
	that.viewing = -1

	that.logger.Info("game restarted")
}

// JumpTo - shows the board as it was after step moves. Jumping to the newest step follows the game again.
func (that *GameSession) JumpTo(step int) error {
	if _, err := that.game.View(step); err != nil {
		return fmt.Errorf("failed to jump: %w", err)
	}

	if step == that.game.Len()-1 {
		that.viewing = -1
	} else {
		that.viewing = step
	}

	that.logger.Debug("jumped", "step", step)

	return nil
}

// FollowLatest - goes back to showing the newest step.
func (that *GameSession) FollowLatest() {
	that.viewing = -1
}

func (that *GameSession) Render() (View, error) {
	snapshot := that.game.Latest()
	if that.viewing >= 0 {
		var err error
		if snapshot, err = that.game.View(that.viewing); err != nil {
			return View{}, fmt.Errorf("failed to render step %d: %w", that.viewing, err)
		}
	}

	view := View{
		SessionID: that.id,
		Status:    StatusLine(snapshot),
		Step:      snapshot.Step,
		Latest:    that.viewing < 0,
		History:   HistoryLabels(that.game.Len()),
		Snapshot:  snapshot,
	}

	for i, mark := range snapshot.Board {
		view.Cells[i] = string(mark)
	}

	return view, nil
}

// StatusLine - "Next player: X", "Winner: X" or "Draw".
func StatusLine(snapshot tictactoe.Snapshot) string {
	switch snapshot.Outcome.Status {
	case entity.StatusWon:
		return "Winner: " + string(snapshot.Outcome.Winner)
	case entity.StatusDraw:
		return "Draw"
	default:
		return "Next player: " + string(snapshot.Turn)
	}
}

// HistoryLabels - one label per history entry.
func HistoryLabels(entries int) []string {
	labels := make([]string, 0, entries)
	for step := 0; step < entries; step++ {
		if step == 0 {
			labels = append(labels, "Go to game start")
			continue
		}
		labels = append(labels, fmt.Sprintf("Go to move #%d", step))
	}

	return labels
}
