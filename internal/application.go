package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe/internal/config"
	"github.com/rocketscienceinc/tictactoe/internal/transport/console"
	"github.com/rocketscienceinc/tictactoe/internal/usecase"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			logger.With("component", "app").Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return Run(ctx, logger, conf, os.Stdin, os.Stdout)
}

// Run - plays games on the console until the input ends, the player quits or ctx is done.
// After cancellation Run waits for the console to finish with in and out, unless in is
// os.Stdin: a read from the terminal can't be interrupted, so that goroutine is left behind.
func Run(ctx context.Context, logger *slog.Logger, conf *config.Config, in io.Reader, out io.Writer) error {
	log := logger.With("component", "app")

	session := usecase.NewDefaultGameSession(logger)
	server := console.New(logger, session, console.Options{
		Prompt:      conf.Console.Prompt,
		HideHistory: conf.Console.HideHistory,
	})

	consoleErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting console", "session_id", session.ID())
		consoleErrCh <- server.Start(ctx, in, out)
	}()

	select {
	case err := <-consoleErrCh:
		if err != nil {
			return fmt.Errorf("console error: %w", err)
		}
		log.Info("Console closed")
		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")

		if in == os.Stdin {
			return nil
		}

		if err := <-consoleErrCh; err != nil {
			return fmt.Errorf("console error: %w", err)
		}

		return nil
	}
}
