package apperror

import "errors"

var (
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrRoundFinished   = errors.New("round is already finished")
	ErrInvalidCell     = errors.New("invalid cell coordinates")
	ErrSessionNotFound = errors.New("session not found")
)
