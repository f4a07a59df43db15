package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/rocketscienceinc/hotseat-tictactoe/internal/entity"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/tictactoe"
)

// View draws the round on a terminal and reacts to engine events.
type View struct {
	out io.Writer

	circle *color.Color
	cross  *color.Color
	faint  *color.Color
	banner *color.Color
	hint   *color.Color
}

func NewView(out io.Writer) *View {
	return &View{
		out:    out,
		circle: color.New(color.FgBlue, color.Bold),
		cross:  color.New(color.FgRed, color.Bold),
		faint:  color.New(color.Faint),
		banner: color.New(color.FgGreen, color.Bold),
		hint:   color.New(color.FgYellow),
	}
}

// Notify - redraws after a move and announces round endings and resets.
func (that *View) Notify(event tictactoe.Event) {
	switch event.Kind {
	case tictactoe.EventMove:
		that.Render(event.State)
	case tictactoe.EventWin:
		that.banner.Fprintf(that.out, "%s wins!\n", that.name(event.State.Outcome.Winner))
		that.renderScores(event.State.Scores)
	case tictactoe.EventDraw:
		that.banner.Fprintln(that.out, "Draw!")
		that.renderScores(event.State.Scores)
	case tictactoe.EventReset:
		that.banner.Fprintln(that.out, "New round")
		that.Render(event.State)
	}
}

// Render - board, whose turn it is and the running score.
func (that *View) Render(state entity.State) {
	var sb strings.Builder

	sb.WriteString("    0   1   2\n")
	for row := 0; row < entity.BoardSize; row++ {
		cells := make([]string, entity.BoardSize)
		for column := 0; column < entity.BoardSize; column++ {
			cells[column] = that.mark(state.Board[row][column])
		}

		fmt.Fprintf(&sb, "%d   %s\n", row, strings.Join(cells, " | "))
		if row < entity.BoardSize-1 {
			sb.WriteString("   ---+---+---\n")
		}
	}

	fmt.Fprint(that.out, sb.String())

	if state.Outcome.IsFinished() {
		that.faint.Fprintln(that.out, "Round over. Type r for another round or q to quit.")
		return
	}

	fmt.Fprintf(that.out, "Turn %d: %s to move\n", state.Turn, that.name(state.Player))
}

// Hint - explains a rejected move. Nothing else is redrawn.
func (that *View) Hint(result entity.MoveResult) {
	switch result.Reason {
	case entity.ReasonCellOccupied:
		that.hint.Fprintf(that.out, "Cell %d %d is already taken.\n", result.Row, result.Column)
	case entity.ReasonRoundFinished:
		that.hint.Fprintln(that.out, "The round is over. Type r to start another one.")
	case entity.ReasonOutOfRange:
		that.hint.Fprintf(that.out, "Row and column must be between 0 and %d.\n", entity.BoardSize-1)
	}
}

func (that *View) Usage() {
	that.faint.Fprintln(that.out, "Enter a move as \"row column\" (0-2), r to reset, q to quit.")
}

func (that *View) Error(err error) {
	that.hint.Fprintln(that.out, err.Error())
}

func (that *View) Goodbye(scores entity.Scoreboard) {
	fmt.Fprintln(that.out, "Final score")
	that.renderScores(scores)
}

func (that *View) renderScores(scores entity.Scoreboard) {
	fmt.Fprintf(that.out, "%s: %d  %s: %d  Draws: %d\n",
		that.name(entity.PlayerA), scores.PlayerA,
		that.name(entity.PlayerB), scores.PlayerB,
		scores.Draws,
	)
}

func (that *View) name(player entity.Player) string {
	return fmt.Sprintf("%s (%s)", player.Label(), that.mark(entity.Cell(player)))
}

func (that *View) mark(cell entity.Cell) string {
	switch cell {
	case entity.Cell(entity.PlayerA):
		return that.circle.Sprint("O")
	case entity.Cell(entity.PlayerB):
		return that.cross.Sprint("X")
	default:
		return " "
	}
}
