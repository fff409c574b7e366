package unit

import "errors"

var (
	// ErrInvalidMove rejects a move to a hex that is not a neighbour.
	ErrInvalidMove = errors.New("invalid move")
	// ErrPreconditionFailed rejects an action whose rule preconditions do not hold.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrInvalidTarget rejects a reference to an unknown, destroyed or dead unit.
	ErrInvalidTarget = errors.New("invalid target")
)
