package board

import "errors"

// Sentinel errors. Use these with errors.Is().
var (
	// ErrInvalidFEN indicates a malformed or impossible FEN string.
	ErrInvalidFEN = errors.New("invalid FEN string")

	// ErrInvalidSquare indicates an unparseable square name.
	ErrInvalidSquare = errors.New("invalid square")

	// ErrUnresolvedMove indicates move text that matches no legal move.
	ErrUnresolvedMove = errors.New("unresolved move")

	// ErrAmbiguousMove indicates move text that matches several legal moves.
	ErrAmbiguousMove = errors.New("ambiguous move")

	// ErrMissingKing is the panic value when a position is built without a king.
	ErrMissingKing = errors.New("position has no king")

	// ErrNullMoveExecution is the panic value when the null move is executed.
	ErrNullMoveExecution = errors.New("cannot execute the null move")
)
