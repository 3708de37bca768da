package apperror

import "errors"

var (
	ErrMoveOutOfBounds     = errors.New("move out of bounds")
	ErrCellOccupied        = errors.New("chosen position is already filled")
	ErrNotActiveMacroboard = errors.New("move not in active macroboard")
	ErrInvalidPlayer       = errors.New("invalid player id")
	ErrParseInput          = errors.New("failed to parse input")
	ErrNotFound            = errors.New("not found")
)
