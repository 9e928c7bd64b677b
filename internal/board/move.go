package board

import "fmt"

// MoveKind tags the variant of a Move.
type MoveKind uint8

const (
	NullMoveKind MoveKind = iota
	Quiet
	Capture
	PawnDoublePush
	EnPassantCapture
	Promotion
	KingSideCastle
	QueenSideCastle
)

// String returns the variant name.
func (k MoveKind) String() string {
	switch k {
	case Quiet:
		return "Quiet"
	case Capture:
		return "Capture"
	case PawnDoublePush:
		return "PawnDoublePush"
	case EnPassantCapture:
		return "EnPassantCapture"
	case Promotion:
		return "Promotion"
	case KingSideCastle:
		return "KingSideCastle"
	case QueenSideCastle:
		return "QueenSideCastle"
	default:
		return "NullMove"
	}
}

// Move is a candidate move generated from a specific Position. It remembers
// that Position, so executing it is self-contained and undoing it is exact.
type Move struct {
	kind      MoveKind
	origin    *Position
	piece     Piece
	to        Square
	captured  Piece     // NoPiece unless the move captures
	promotion PieceType // NoPieceType unless kind == Promotion
	rook      Piece     // castling rook, NoPiece otherwise
	rookTo    Square
}

// NullMove is the "no move" sentinel: the transition of an initial position,
// the result of unresolvable move text and the search result on a terminal board.
var NullMove = Move{
	kind:      NullMoveKind,
	piece:     NoPiece,
	to:        NoSquare,
	captured:  NoPiece,
	promotion: NoPieceType,
	rook:      NoPiece,
	rookTo:    NoSquare,
}

func newMove(kind MoveKind, pos *Position, piece Piece, to Square) Move {
	return Move{
		kind:      kind,
		origin:    pos,
		piece:     piece,
		to:        to,
		captured:  NoPiece,
		promotion: NoPieceType,
		rook:      NoPiece,
		rookTo:    NoSquare,
	}
}

func newCapture(kind MoveKind, pos *Position, piece Piece, to Square, captured Piece) Move {
	m := newMove(kind, pos, piece, to)
	m.captured = captured
	return m
}

// newPromotion wraps a quiet or capturing pawn move with a promotion choice.
func newPromotion(base Move, pt PieceType) Move {
	base.kind = Promotion
	base.promotion = pt
	return base
}

func newCastle(kind MoveKind, pos *Position, king Piece, to Square, rook Piece, rookTo Square) Move {
	m := newMove(kind, pos, king, to)
	m.rook = rook
	m.rookTo = rookTo
	return m
}

// Kind returns the move variant.
func (m Move) Kind() MoveKind {
	return m.kind
}

// IsNull reports whether m is the null move.
func (m Move) IsNull() bool {
	return m.kind == NullMoveKind
}

// Origin returns the Position this move was generated from.
func (m Move) Origin() *Position {
	return m.origin
}

// Piece returns the moved piece as it stood before the move.
func (m Move) Piece() Piece {
	return m.piece
}

// From returns the origin square.
func (m Move) From() Square {
	if m.kind == NullMoveKind {
		return NoSquare
	}
	return m.piece.Square
}

// To returns the destination square.
func (m Move) To() Square {
	return m.to
}

// Captured returns the captured piece, if any.
func (m Move) Captured() (Piece, bool) {
	return m.captured, !m.captured.IsNone()
}

// IsAttack reports whether the move captures a piece.
func (m Move) IsAttack() bool {
	return !m.captured.IsNone()
}

// IsCastling reports whether the move is a castle.
func (m Move) IsCastling() bool {
	return m.kind == KingSideCastle || m.kind == QueenSideCastle
}

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.kind == Promotion
}

// Promotion returns the promotion piece type (NoPieceType if none).
func (m Move) Promotion() PieceType {
	return m.promotion
}

// Wrapped returns the variant a promotion decorates (Quiet or Capture).
// For any other move it returns the move's own kind.
func (m Move) Wrapped() MoveKind {
	if m.kind != Promotion {
		return m.kind
	}
	if m.IsAttack() {
		return Capture
	}
	return Quiet
}

// Equal compares moves by origin square, destination square and moved piece.
// Promotions also compare the promotion type.
func (m Move) Equal(o Move) bool {
	if m.kind == NullMoveKind || o.kind == NullMoveKind {
		return m.kind == o.kind
	}
	return m.to == o.to && m.piece.Equal(o.piece) && m.promotion == o.promotion
}

// Execute builds the Position that results from playing m. It performs no
// legality check; use Player.MakeMove for that.
// Executing the null move panics.
func (m Move) Execute() *Position {
	if m.kind == NullMoveKind || m.origin == nil {
		panic(ErrNullMoveExecution)
	}

	pos := m.origin
	us := m.piece.Color
	b := NewBuilder()

	for _, p := range pos.ActivePieces(us) {
		if p.Equal(m.piece) || (m.IsCastling() && p.Equal(m.rook)) {
			continue
		}
		b.SetPiece(p)
	}
	for _, p := range pos.ActivePieces(us.Other()) {
		if m.IsAttack() && p.Equal(m.captured) {
			continue
		}
		b.SetPiece(p)
	}

	switch m.kind {
	case Promotion:
		b.SetPiece(Piece{Type: m.promotion, Color: us, Square: m.to})
	case KingSideCastle, QueenSideCastle:
		b.SetPiece(m.piece.MovedTo(m))
		b.SetPiece(Piece{Type: Rook, Color: us, Square: m.rookTo})
	case PawnDoublePush:
		moved := m.piece.MovedTo(m)
		b.SetPiece(moved)
		b.SetEnPassantPawn(moved)
	default:
		b.SetPiece(m.piece.MovedTo(m))
	}

	b.SetMover(us.Other())
	b.SetTransition(m)
	return b.Build()
}

// Undo returns the Position the move was generated from. Because positions
// are immutable this restores captured pieces, en passant state and
// castling rights exactly.
func (m Move) Undo() *Position {
	return m.origin
}

// String returns the move in coordinate notation (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m.kind == NullMoveKind {
		return "0000"
	}
	s := m.From().String() + m.to.String()
	if m.kind == Promotion {
		s += string(m.promotion.Char())
	}
	return s
}

// GoString describes the move variant, for test failures.
func (m Move) GoString() string {
	return fmt.Sprintf("%s(%s)", m.kind, m.String())
}
