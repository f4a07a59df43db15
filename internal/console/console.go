package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/hotseat-tictactoe/internal/tictactoe"
)

// Console runs a hot-seat round on one terminal: both players type into the same input.
type Console struct {
	logger *slog.Logger
	view   *View
	engine *tictactoe.Engine
}

func New(logger *slog.Logger, out io.Writer) *Console {
	view := NewView(out)

	return &Console{
		logger: logger.With("component", "console"),
		view:   view,
		engine: tictactoe.NewEngine(view),
	}
}

// Run - reads commands from in until q, end of input or ctx is cancelled.
func (that *Console) Run(ctx context.Context, in io.Reader) error {
	log := that.logger.With("method", "Run")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, readErr := readLines(ctx, in)

	that.view.Render(that.engine.State())
	that.view.Usage()

	for {
		select {
		case <-ctx.Done():
			log.Info("context cancelled, leaving")
			that.view.Goodbye(that.engine.State().Scores)
			return nil
		case line, ok := <-lines:
			if !ok {
				that.view.Goodbye(that.engine.State().Scores)

				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}

			if quit := that.handle(line); quit {
				that.view.Goodbye(that.engine.State().Scores)
				return nil
			}
		}
	}
}

func (that *Console) handle(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}

	command, err := ParseCommand(line)
	if err != nil {
		that.logger.Debug("bad input", "line", line, "error", err)
		that.view.Error(err)
		that.view.Usage()
		return false
	}

	switch command.Kind {
	case CommandQuit:
		return true
	case CommandReset:
		that.engine.Reset()
	case CommandMove:
		result := that.engine.ApplyMove(command.Row, command.Column)
		if !result.IsApplied() {
			that.view.Hint(result)
		}
	}

	return false
}

// readLines feeds the scanner into a channel so Run can also watch ctx.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errCh <- nil
				return
			}
		}
		errCh <- scanner.Err()
	}()

	return lines, errCh
}
