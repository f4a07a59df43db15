package tictactoe

import (
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/entity"
)

// Engine owns one round of tic-tac-toe and the scores of the session.
// It is not safe for concurrent use; callers serialize ApplyMove and Reset.
type Engine struct {
	board   entity.Board
	turn    int
	outcome entity.Outcome
	scores  entity.Scoreboard

	notifier Notifier
}

func NewEngine(notifier Notifier) *Engine {
	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &Engine{
		turn:     entity.FirstTurn,
		outcome:  entity.NoOutcome(),
		notifier: notifier,
	}
}

// Restore - rebuilds an engine from a snapshot taken with State.
func Restore(state entity.State, notifier Notifier) *Engine {
	engine := NewEngine(notifier)

	engine.board = state.Board
	engine.scores = state.Scores

	if state.Turn >= entity.FirstTurn {
		engine.turn = state.Turn
	}

	if state.Outcome.Kind != "" {
		engine.outcome = cloneOutcome(state.Outcome)
	}

	return engine
}

// ApplyMove - marks (row, column) for the player whose turn it is.
// Illegal moves are rejected without touching the state or notifying anyone.
func (that *Engine) ApplyMove(row, column int) entity.MoveResult {
	if !entity.InRange(row, column) {
		return entity.Rejected(row, column, entity.ReasonOutOfRange, cloneOutcome(that.outcome))
	}

	if that.outcome.IsFinished() {
		return entity.Rejected(row, column, entity.ReasonRoundFinished, cloneOutcome(that.outcome))
	}

	if !that.board[row][column].IsEmpty() {
		return entity.Rejected(row, column, entity.ReasonCellOccupied, cloneOutcome(that.outcome))
	}

	player := that.currentPlayer()
	that.board[row][column] = entity.Cell(player)
	that.turn++

	that.outcome = checkGameStatus(that.board)
	that.scores.Record(that.outcome)

	result := entity.MoveResult{
		Status:  entity.MoveApplied,
		Player:  player,
		Row:     row,
		Column:  column,
		Cell:    entity.Index(row, column),
		Outcome: cloneOutcome(that.outcome),
	}

	that.notify(EventMove, &result)

	switch that.outcome.Kind {
	case entity.OutcomeWin:
		that.notify(EventWin, &result)
	case entity.OutcomeDraw:
		that.notify(EventDraw, &result)
	}

	return result
}

// Reset - starts a new round. The scoreboard survives.
func (that *Engine) Reset() {
	that.board = entity.Board{}
	that.turn = entity.FirstTurn
	that.outcome = entity.NoOutcome()

	that.notify(EventReset, nil)
}

func (that *Engine) State() entity.State {
	return entity.State{
		Board:   that.board,
		Turn:    that.turn,
		Player:  that.currentPlayer(),
		Outcome: cloneOutcome(that.outcome),
		Scores:  that.scores,
	}
}

func (that *Engine) currentPlayer() entity.Player {
	return entity.PlayerForTurn(that.turn)
}

func (that *Engine) notify(kind string, result *entity.MoveResult) {
	that.notifier.Notify(Event{
		Kind:   kind,
		Result: result,
		State:  that.State(),
	})
}

// checkGameStatus - PlayerA is checked before PlayerB, and a win before a draw.
func checkGameStatus(board entity.Board) entity.Outcome {
	occupied := occupiedCells(board)

	for _, player := range []entity.Player{entity.PlayerA, entity.PlayerB} {
		if line, ok := winningLine(occupied[player]); ok {
			return entity.WinOutcome(player, line)
		}
	}

	if board.IsFull() {
		return entity.DrawOutcome()
	}

	return entity.NoOutcome()
}

// cellSet is a set of flattened board indices, one bit per cell.
type cellSet uint16

func (that cellSet) contains(index int) bool {
	return that&(1<<index) != 0
}

func occupiedCells(board entity.Board) map[entity.Player]cellSet {
	occupied := make(map[entity.Player]cellSet, 2)

	for index, cell := range board.Flatten() {
		if player, ok := cell.Owner(); ok {
			occupied[player] |= 1 << index
		}
	}

	return occupied
}

func winningLine(cells cellSet) ([3]int, bool) {
	for _, combo := range entity.WinCombos {
		if cells.contains(combo[0]) && cells.contains(combo[1]) && cells.contains(combo[2]) {
			return combo, true
		}
	}

	return [3]int{}, false
}

func cloneOutcome(outcome entity.Outcome) entity.Outcome {
	if outcome.Line != nil {
		outcome.Line = append([]int(nil), outcome.Line...)
	}
	return outcome
}
