package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	CommandMove  = "move"
	CommandReset = "reset"
	CommandQuit  = "quit"
)

var ErrInvalidCommand = errors.New("invalid command")

// Command is one parsed input line.
type Command struct {
	Kind   string
	Row    int
	Column int
}

// ParseCommand - accepts "row column", "r" and "q". Range checks are left to the engine.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))

	switch {
	case len(fields) == 1 && (fields[0] == "r" || fields[0] == "reset"):
		return Command{Kind: CommandReset}, nil
	case len(fields) == 1 && (fields[0] == "q" || fields[0] == "quit"):
		return Command{Kind: CommandQuit}, nil
	case len(fields) == 2:
		row, err := strconv.Atoi(fields[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: row %q is not a number", ErrInvalidCommand, fields[0])
		}

		column, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("%w: column %q is not a number", ErrInvalidCommand, fields[1])
		}

		return Command{Kind: CommandMove, Row: row, Column: column}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, line)
	}
}
