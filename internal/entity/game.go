package entity

import (
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/apperror"
)

const (
	BoardSize = 3
	CellCount = BoardSize * BoardSize

	FirstTurn = 1

	EmptyCell Cell = ""
)

const (
	OutcomeNone = "none"
	OutcomeWin  = "win"
	OutcomeDraw = "draw"
)

const (
	MoveApplied  = "applied"
	MoveRejected = "rejected"

	ReasonCellOccupied  = "cell_occupied"
	ReasonRoundFinished = "round_finished"
	ReasonOutOfRange    = "out_of_range"
)

// WinCombos - flattened indices of the 3 rows, 3 columns and 2 diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Cell is either EmptyCell or the mark of the player who owns it.
type Cell string

func (that Cell) IsEmpty() bool {
	return that == EmptyCell
}

// Owner - the player who marked the cell, false for an empty cell.
func (that Cell) Owner() (Player, bool) {
	player := Player(that)
	return player, player.IsValid()
}

// Board is the 3x3 grid indexed by [row][column].
type Board [BoardSize][BoardSize]Cell

// Index - row-major flattened index of (row, column).
func Index(row, column int) int {
	return row*BoardSize + column
}

// Coords - inverse of Index.
func Coords(index int) (int, int) {
	return index / BoardSize, index % BoardSize
}

// InRange reports whether (row, column) addresses a cell of the board.
func InRange(row, column int) bool {
	return row >= 0 && row < BoardSize && column >= 0 && column < BoardSize
}

func (that Board) Flatten() [CellCount]Cell {
	var flat [CellCount]Cell
	for row := range that {
		for column, cell := range that[row] {
			flat[Index(row, column)] = cell
		}
	}
	return flat
}

func (that Board) IsFull() bool {
	for _, cell := range that.Flatten() {
		if cell.IsEmpty() {
			return false
		}
	}
	return true
}

// Outcome is the result of a round. Winner and Line are set only for a win.
type Outcome struct {
	Kind   string `json:"kind"`
	Winner Player `json:"winner,omitempty"`
	Line   []int  `json:"line,omitempty"`
}

func NoOutcome() Outcome {
	return Outcome{Kind: OutcomeNone}
}

func WinOutcome(player Player, line [3]int) Outcome {
	return Outcome{Kind: OutcomeWin, Winner: player, Line: line[:]}
}

func DrawOutcome() Outcome {
	return Outcome{Kind: OutcomeDraw}
}

func (that Outcome) IsFinished() bool {
	return that.Kind == OutcomeWin || that.Kind == OutcomeDraw
}

func (that Outcome) IsWin() bool {
	return that.Kind == OutcomeWin
}

func (that Outcome) IsDraw() bool {
	return that.Kind == OutcomeDraw
}

// Scoreboard lives for the whole session and is never cleared by a reset.
type Scoreboard struct {
	PlayerA int `json:"player_a"`
	PlayerB int `json:"player_b"`
	Draws   int `json:"draws"`
}

// Record - bumps the counter matching a finished outcome.
func (that *Scoreboard) Record(outcome Outcome) {
	switch outcome.Kind {
	case OutcomeWin:
		if outcome.Winner == PlayerA {
			that.PlayerA++
		} else if outcome.Winner == PlayerB {
			that.PlayerB++
		}
	case OutcomeDraw:
		that.Draws++
	}
}

// Wins - number of rounds the given player has won.
func (that Scoreboard) Wins(player Player) int {
	switch player {
	case PlayerA:
		return that.PlayerA
	case PlayerB:
		return that.PlayerB
	default:
		return 0
	}
}

// State is a read-only snapshot of an engine. Player is derived from Turn.
type State struct {
	Board   Board      `json:"board"`
	Turn    int        `json:"turn"`
	Player  Player     `json:"player"`
	Outcome Outcome    `json:"outcome"`
	Scores  Scoreboard `json:"scores"`
}

// MoveResult tells the caller whether a move was taken and what it led to.
type MoveResult struct {
	Status  string  `json:"status"`
	Reason  string  `json:"reason,omitempty"`
	Player  Player  `json:"player,omitempty"`
	Row     int     `json:"row"`
	Column  int     `json:"column"`
	Cell    int     `json:"cell"`
	Outcome Outcome `json:"outcome"`
}

func Rejected(row, column int, reason string, outcome Outcome) MoveResult {
	cell := -1
	if InRange(row, column) {
		cell = Index(row, column)
	}

	return MoveResult{
		Status:  MoveRejected,
		Reason:  reason,
		Row:     row,
		Column:  column,
		Cell:    cell,
		Outcome: outcome,
	}
}

func (that MoveResult) IsApplied() bool {
	return that.Status == MoveApplied
}

// Err - the sentinel matching the rejection reason, nil for an applied move.
func (that MoveResult) Err() error {
	if that.IsApplied() {
		return nil
	}

	switch that.Reason {
	case ReasonCellOccupied:
		return apperror.ErrCellOccupied
	case ReasonRoundFinished:
		return apperror.ErrRoundFinished
	default:
		return apperror.ErrInvalidCell
	}
}
