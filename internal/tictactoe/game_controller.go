package tictactoe

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

// Rejection reasons reported by Check.
const (
	ReasonNone     = ""
	ReasonInvalid  = "invalid cell"
	ReasonOccupied = "cell occupied"
	ReasonFinished = "game finished"
)

// Snapshot is the state of the game as seen at one history step.
type Snapshot struct {
	Step    int            `json:"step"`
	Board   entity.Board   `json:"board"`
	Outcome entity.Outcome `json:"outcome"`
	Turn    entity.Mark    `json:"turn"`
	Move    *entity.Move   `json:"move,omitempty"`
}

// GameController owns the move history of a single game.
// Outcome and turn are always derived from the history, never stored.
type GameController struct {
	logger  *slog.Logger
	history entity.History
}

func NewGameController(logger *slog.Logger) *GameController {
	return &GameController{
		logger:  logger.With("component", "game_controller"),
		history: entity.NewHistory(),
	}
}

// Replay - builds a controller by applying cells in order. Every move must be accepted.
func Replay(logger *slog.Logger, cells ...int) (*GameController, error) {
	controller := NewGameController(logger)

	for i, cell := range cells {
		applied, err := controller.ApplyMove(cell)
		if err != nil {
			return nil, fmt.Errorf("replay move %d: %w", i, err)
		}

		if !applied {
			return nil, fmt.Errorf("replay move %d: cell %d rejected: %s", i, cell, controller.Check(cell))
		}
	}

	return controller, nil
}

// ApplyMove - places the current player's mark at cell.
// An out of range cell is a caller error. An occupied cell or a finished game is
// silently ignored: applied is false and nothing changes.
func (that *GameController) ApplyMove(cell int) (bool, error) {
	if !entity.IsValidCell(cell) {
		return false, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if reason := that.Check(cell); reason != ReasonNone {
		that.logger.Debug("move ignored", "cell", cell, "reason", reason)
		return false, nil
	}

	move := entity.Move{Cell: cell, Mark: that.WhoseTurn()}
	that.history = that.history.Append(move)

	that.logger.Debug("move applied",
		"cell", cell,
		"mark", move.Mark,
		"step", that.history.Moves(),
		"status", that.CurrentStatus().Status,
	)

	return true, nil
}

// Check - reports why a move at cell would not be applied, or ReasonNone.
func (that *GameController) Check(cell int) string {
	if !entity.IsValidCell(cell) {
		return ReasonInvalid
	}

	if !that.CurrentStatus().IsInProgress() {
		return ReasonFinished
	}

	if !that.CurrentBoard().IsEmpty(cell) {
		return ReasonOccupied
	}

	return ReasonNone
}

func (that *GameController) CurrentStatus() entity.Outcome {
	return entity.OutcomeOf(that.CurrentBoard())
}

func (that *GameController) CurrentBoard() entity.Board {
	return that.history.Latest().Board
}

// WhoseTurn - meaningful only while the game is in progress.
func (that *GameController) WhoseTurn() entity.Mark {
	return entity.TurnAt(that.history.Moves())
}

// History - a copy of every snapshot since the empty board.
func (that *GameController) History() entity.History {
	return that.history.Clone()
}

// Len - number of history entries, one more than the number of moves.
func (that *GameController) Len() int {
	return len(that.history)
}

func (that *GameController) Step(step int) (entity.HistoryEntry, error) {
	if step < 0 || step >= len(that.history) {
		return entity.HistoryEntry{}, fmt.Errorf("%w: step %d of %d", apperror.ErrInvalidStep, step, len(that.history))
	}

	entry := that.history[step]
	if entry.Move != nil {
		move := *entry.Move
		entry.Move = &move
	}

	return entry, nil
}

// View - the game as it stood after step moves. Turn is derived from the step, not the history length.
func (that *GameController) View(step int) (Snapshot, error) {
	entry, err := that.Step(step)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Step:    step,
		Board:   entry.Board,
		Outcome: entity.OutcomeOf(entry.Board),
		Turn:    entity.TurnAt(step),
		Move:    entry.Move,
	}, nil
}

// Latest - the view at the newest step.
func (that *GameController) Latest() Snapshot {
	snapshot, _ := that.View(that.history.Moves()) //nolint: errcheck // the latest step always exists
	return snapshot
}

// Fork - a new controller whose history is the first step+1 entries of this one.
// The receiver is left untouched.
func (that *GameController) Fork(step int) (*GameController, error) {
	if step < 0 || step >= len(that.history) {
		return nil, fmt.Errorf("%w: step %d of %d", apperror.ErrInvalidStep, step, len(that.history))
	}

	return &GameController{
		logger:  that.logger,
		history: that.history[:step+1].Clone(),
	}, nil
}
