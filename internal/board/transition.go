package board

// MoveStatus is the outcome of attempting a move.
type MoveStatus uint8

const (
	// Done means the move was played; the transition holds the new Position.
	Done MoveStatus = iota
	// IllegalMove means the move is not in the mover's legal-move set.
	IllegalMove
	// LeavesPlayerInCheck means the move would expose the mover's own king.
	LeavesPlayerInCheck
)

// IsDone reports whether the move was played.
func (s MoveStatus) IsDone() bool {
	return s == Done
}

// String returns the status name.
func (s MoveStatus) String() string {
	switch s {
	case Done:
		return "Done"
	case IllegalMove:
		return "IllegalMove"
	case LeavesPlayerInCheck:
		return "LeavesPlayerInCheck"
	default:
		return "Unknown"
	}
}

// MoveTransition records an attempt to play a move. On failure To equals From.
type MoveTransition struct {
	From   *Position
	To     *Position
	Move   Move
	Status MoveStatus
}
