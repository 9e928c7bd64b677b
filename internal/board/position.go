package board

import (
	"fmt"
	"strings"
)

// Position is an immutable chess position. New positions are produced by
// Move.Execute or assembled with a Builder; a built Position never changes.
type Position struct {
	squares [NumSquares]Piece

	// Active pieces of each color, ordered by square index.
	white []Piece
	black []Piece

	// Occupancy bitboards (cached for evaluation).
	occupied [2]Bitboard
	pieces   [2][6]Bitboard

	enPassantPawn Piece
	transition    Move // NullMove for an initial position
	mover         Color

	whitePlayer *Player
	blackPlayer *Player

	castling CastlingRights
	hash     uint64
	pawnKeys [2]uint64
}

// Builder stages pieces for a new Position. A Builder is consumed by Build;
// reuse after Build is not supported.
type Builder struct {
	squares       [NumSquares]Piece
	mover         Color
	enPassantPawn Piece
	transition    Move
}

// NewBuilder returns an empty Builder with White to move.
func NewBuilder() *Builder {
	b := &Builder{
		mover:         White,
		enPassantPawn: NoPiece,
		transition:    NullMove,
	}
	for i := range b.squares {
		b.squares[i] = NoPiece
	}
	return b
}

// SetPiece places p on its square, replacing any previous occupant.
func (b *Builder) SetPiece(p Piece) *Builder {
	b.squares[p.Square] = p
	return b
}

// SetMover sets the side to move.
func (b *Builder) SetMover(c Color) *Builder {
	b.mover = c
	return b
}

// SetEnPassantPawn registers the pawn that may be captured en passant.
func (b *Builder) SetEnPassantPawn(p Piece) *Builder {
	b.enPassantPawn = p
	return b
}

// SetTransition records the move that produced the position being built.
func (b *Builder) SetTransition(m Move) *Builder {
	b.transition = m
	return b
}

// Build seals the staged pieces into a Position and derives both Players.
// It panics with ErrMissingKing if either color has no king.
func (b *Builder) Build() *Position {
	pos := &Position{
		squares:       b.squares,
		enPassantPawn: b.enPassantPawn,
		transition:    b.transition,
		mover:         b.mover,
		white:         make([]Piece, 0, 16),
		black:         make([]Piece, 0, 16),
	}

	for sq := A8; sq <= H1; sq++ {
		p := pos.squares[sq]
		if p.IsNone() {
			continue
		}
		if p.Color == White {
			pos.white = append(pos.white, p)
		} else {
			pos.black = append(pos.black, p)
		}
		pos.occupied[p.Color] = pos.occupied[p.Color].Set(sq)
		pos.pieces[p.Color][p.Type] = pos.pieces[p.Color][p.Type].Set(sq)
	}

	whiteKing, ok := findKing(pos.white)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrMissingKing, White))
	}
	blackKing, ok := findKing(pos.black)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrMissingKing, Black))
	}

	whiteMoves := pos.generateMoves(pos.white)
	blackMoves := pos.generateMoves(pos.black)
	whiteAttacks := pos.attackSet(White, whiteMoves)
	blackAttacks := pos.attackSet(Black, blackMoves)
	pos.whitePlayer = newPlayer(pos, White, whiteKing, whiteMoves, whiteAttacks, blackAttacks)
	pos.blackPlayer = newPlayer(pos, Black, blackKing, blackMoves, blackAttacks, whiteAttacks)

	pos.castling = pos.computeCastlingRights()
	pos.hash, pos.pawnKeys = pos.computeKeys()
	return pos
}

func findKing(pieces []Piece) (Piece, bool) {
	for _, p := range pieces {
		if p.Type == King {
			return p, true
		}
	}
	return NoPiece, false
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	b := NewBuilder()
	back := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for file := 0; file < 8; file++ {
		b.SetPiece(NewPiece(back[file], Black, Square(file)))
		b.SetPiece(NewPiece(Pawn, Black, Square(8+file)))
		b.SetPiece(NewPiece(Pawn, White, Square(48+file)))
		b.SetPiece(NewPiece(back[file], White, Square(56+file)))
	}
	return b.SetMover(White).Build()
}

// PieceAt returns the piece on sq, or NoPiece if the square is empty.
func (pos *Position) PieceAt(sq Square) Piece {
	if sq >= NoSquare {
		return NoPiece
	}
	return pos.squares[sq]
}

// IsOccupied reports whether sq holds a piece.
func (pos *Position) IsOccupied(sq Square) bool {
	return !pos.PieceAt(sq).IsNone()
}

// ActivePieces returns the pieces of color c in square order. The slice is
// shared; callers must not modify it.
func (pos *Position) ActivePieces(c Color) []Piece {
	if c == White {
		return pos.white
	}
	return pos.black
}

// Occupied returns the squares occupied by color c.
func (pos *Position) Occupied(c Color) Bitboard {
	return pos.occupied[c]
}

// Pieces returns the squares holding pieces of color c and type pt.
func (pos *Position) Pieces(c Color, pt PieceType) Bitboard {
	return pos.pieces[c][pt]
}

// WhitePlayer returns the White side of the position.
func (pos *Position) WhitePlayer() *Player {
	return pos.whitePlayer
}

// BlackPlayer returns the Black side of the position.
func (pos *Position) BlackPlayer() *Player {
	return pos.blackPlayer
}

// Player returns the Player of color c.
func (pos *Position) Player(c Color) *Player {
	if c == White {
		return pos.whitePlayer
	}
	return pos.blackPlayer
}

// CurrentPlayer returns the Player to move.
func (pos *Position) CurrentPlayer() *Player {
	return pos.Player(pos.mover)
}

// Mover returns the color to move.
func (pos *Position) Mover() Color {
	return pos.mover
}

// EnPassantPawn returns the pawn that just double pushed, if any.
func (pos *Position) EnPassantPawn() (Piece, bool) {
	return pos.enPassantPawn, !pos.enPassantPawn.IsNone()
}

// EnPassantSquare returns the square a capturing pawn would land on, or
// NoSquare when no en passant capture is possible.
func (pos *Position) EnPassantSquare() Square {
	ep, ok := pos.EnPassantPawn()
	if !ok {
		return NoSquare
	}
	return ep.Square.Offset(8 * ep.Color.OppositeDirection())
}

// Transition returns the move that produced this position.
func (pos *Position) Transition() Move {
	return pos.transition
}

// LastMoves returns up to n of the most recent moves leading to this
// position, newest first.
func (pos *Position) LastMoves(n int) []Move {
	moves := make([]Move, 0, n)
	for cur := pos; cur != nil && len(moves) < n; {
		m := cur.transition
		if m.IsNull() {
			break
		}
		moves = append(moves, m)
		cur = m.origin
	}
	return moves
}

// IsEndGame reports whether the side to move is checkmated or stalemated.
func (pos *Position) IsEndGame() bool {
	p := pos.CurrentPlayer()
	return p.IsInCheckmate() || p.IsInStalemate()
}

// CastlingRights returns the castling capability of both sides.
func (pos *Position) CastlingRights() CastlingRights {
	return pos.castling
}

// Hash returns the zobrist key of the position: placement, side to move,
// castling capability and en passant file.
func (pos *Position) Hash() uint64 {
	return pos.hash
}

// PawnKey returns the zobrist key of color c's pawns alone.
func (pos *Position) PawnKey(c Color) uint64 {
	return pos.pawnKeys[c]
}

// FindMove returns the legal move of the side to move from one square to
// another (with an optional promotion type), or NullMove if none exists.
func (pos *Position) FindMove(from, to Square, promotion PieceType) Move {
	for _, m := range pos.CurrentPlayer().LegalMoves() {
		if m.From() != from || m.To() != to {
			continue
		}
		if m.IsPromotion() {
			if m.Promotion() == promotion || (promotion == NoPieceType && m.Promotion() == Queen) {
				return m
			}
			continue
		}
		return m
	}
	return NullMove
}

// String returns a visual representation of the position.
func (pos *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for row := 0; row < 8; row++ {
		fmt.Fprintf(&sb, "%d  ", 8-row)
		for file := 0; file < 8; file++ {
			p := pos.squares[row*8+file]
			if p.IsNone() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(p.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", pos.mover)
	fmt.Fprintf(&sb, "Castling: %s\n", pos.castling)
	fmt.Fprintf(&sb, "En passant: %s\n", pos.EnPassantSquare())
	fmt.Fprintf(&sb, "Hash: %016x\n", pos.hash)
	return sb.String()
}
