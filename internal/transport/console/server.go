package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/usecase"
)

const helpLine = "commands: 0-8 to play a cell, jump <step>, latest, restart, help, quit"

// maxLineSize caps a single command line; longer lines are skipped.
const maxLineSize = 4096

var errLineTooLong = errors.New("line too long")

type gameSession interface {
	Click(cell int) (bool, error)
	Restart()
	JumpTo(step int) error
	FollowLatest()
	Render() (usecase.View, error)
}

type Options struct {
	Prompt      string
	HideHistory bool
}

type Server struct {
	logger  *slog.Logger
	session gameSession
	opts    Options
}

func New(logger *slog.Logger, session gameSession, opts Options) *Server {
	return &Server{
		logger:  logger.With("component", "console"),
		session: session,
		opts:    opts,
	}
}

// Start - reads commands from in until quit, EOF or ctx is done, rendering to out after each one.
func (that *Server) Start(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReaderSize(in, maxLineSize)

	if err := that.render(out); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			that.logger.Info("console stopped", "reason", ctx.Err())
			return nil
		}

		if _, err := fmt.Fprint(out, that.opts.Prompt); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := readLine(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if errors.Is(err, errLineTooLong) {
			that.logger.Debug("command skipped", "reason", err)
			if err = that.println(out, "line too long"); err != nil {
				return err
			}
			continue
		}

		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}

		quit, err := that.handle(out, strings.TrimSpace(line))
		if err != nil {
			return err
		}

		if quit {
			return nil
		}
	}
}

// readLine - next line without its terminator. A line longer than the reader's buffer
// is drained up to its newline and reported as errLineTooLong.
func readLine(reader *bufio.Reader) (string, error) {
	line, isPrefix, err := reader.ReadLine()
	if err != nil {
		return "", err
	}

	if !isPrefix {
		return string(line), nil
	}

	for isPrefix {
		if _, isPrefix, err = reader.ReadLine(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
	}

	return "", errLineTooLong
}

// handle - runs one command line. Bad input is reported to the player, only write failures are returned.
func (that *Server) handle(out io.Writer, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		return false, that.println(out, helpLine)
	case "restart", "new":
		that.session.Restart()
	case "latest":
		that.session.FollowLatest()
	case "jump":
		if len(fields) != 2 {
			return false, that.println(out, "usage: jump <step>")
		}

		step, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, that.println(out, "step must be a number")
		}

		if err = that.session.JumpTo(step); err != nil {
			if errors.Is(err, apperror.ErrInvalidStep) {
				return false, that.println(out, "no such step")
			}
			return false, err
		}
	default:
		cell, err := strconv.Atoi(fields[0])
		if err != nil {
			return false, that.println(out, helpLine)
		}

		if _, err = that.session.Click(cell); err != nil {
			if errors.Is(err, apperror.ErrInvalidCell) {
				return false, that.println(out, "cell must be between 0 and 8")
			}
			return false, err
		}
	}

	return false, that.render(out)
}

func (that *Server) render(out io.Writer) error {
	view, err := that.session.Render()
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	if _, err = io.WriteString(out, Format(view, !that.opts.HideHistory)); err != nil {
		return fmt.Errorf("failed to write board: %w", err)
	}

	return nil
}

func (that *Server) println(out io.Writer, line string) error {
	if _, err := fmt.Fprintln(out, line); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}
	return nil
}

// Format - status line, the 3x3 grid and optionally the history list with the shown step marked.
func Format(view usecase.View, withHistory bool) string {
	var sb strings.Builder

	sb.WriteString(view.Status)
	sb.WriteString("\n")

	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}

		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			cell := view.Cells[row*3+col]
			if cell == "" {
				cell = " "
			}
			cells[col] = " " + cell + " "
		}

		sb.WriteString(strings.Join(cells, "|"))
		sb.WriteString("\n")
	}

	if withHistory {
		for step, label := range view.History {
			marker := ""
			if step == view.Step {
				marker = " <"
			}
			fmt.Fprintf(&sb, "%d. %s%s\n", step, label, marker)
		}
	}

	return sb.String()
}
