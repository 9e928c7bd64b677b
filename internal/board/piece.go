package board

import "fmt"

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// Direction is the sign of a forward pawn step in square indices:
// White moves toward row 0 (-1), Black toward row 7 (+1).
func (c Color) Direction() int {
	if c == White {
		return -1
	}
	return 1
}

// OppositeDirection is the sign of a backward pawn step.
func (c Color) OppositeDirection() int {
	return -c.Direction()
}

// IsPromotionSquare reports whether a pawn of this color promotes on sq.
func (c Color) IsPromotionSquare(sq Square) bool {
	if c == White {
		return sq.Row() == 0
	}
	return sq.Row() == 7
}

// IsPawnStartSquare reports whether sq is on this color's pawn starting rank.
func (c Color) IsPawnStartSquare(sq Square) bool {
	if c == White {
		return sq.Row() == 6
	}
	return sq.Row() == 1
}

// KingHome returns the starting square of this color's king.
func (c Color) KingHome() Square {
	if c == White {
		return E1
	}
	return E8
}

// PieceType represents the type of a chess piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the FEN character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	chars := []byte{'p', 'n', 'b', 'r', 'q', 'k', ' '}
	if pt > NoPieceType {
		return ' '
	}
	return chars[pt]
}

// Letter returns the SAN letter of the piece type ("" for pawns).
func (pt PieceType) Letter() string {
	switch pt {
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return ""
	}
}

// Value returns the material value of the piece type in centipawns.
func (pt PieceType) Value() int {
	return PieceValue[pt]
}

// PieceValue holds the material value of each piece type in centipawns.
var PieceValue = [7]int{100, 320, 350, 500, 900, 20000, 0}

// PromotionTypes lists promotion choices in generation order.
var PromotionTypes = [4]PieceType{Queen, Rook, Bishop, Knight}

// Piece is an immutable piece value. Moving a piece produces a new value.
type Piece struct {
	Type      PieceType
	Color     Color
	Square    Square
	FirstMove bool // has not moved yet

	// King only.
	Castled        bool
	KingSideRight  bool
	QueenSideRight bool
}

// NoPiece is the empty-square sentinel.
var NoPiece = Piece{Type: NoPieceType, Color: NoColor, Square: NoSquare}

// NewPiece creates an unmoved piece on sq. Kings start with both castling rights.
func NewPiece(pt PieceType, c Color, sq Square) Piece {
	p := Piece{Type: pt, Color: c, Square: sq, FirstMove: true}
	if pt == King {
		p.KingSideRight = true
		p.QueenSideRight = true
	}
	return p
}

// IsNone reports whether p is the empty-square sentinel.
func (p Piece) IsNone() bool {
	return p.Type >= NoPieceType
}

// Equal compares the identity fields: type, color, square and move flag.
func (p Piece) Equal(o Piece) bool {
	return p.Type == o.Type && p.Color == o.Color && p.Square == o.Square && p.FirstMove == o.FirstMove
}

// Value returns the material value of the piece in centipawns.
func (p Piece) Value() int {
	return PieceValue[p.Type]
}

// MovedTo returns the piece as it stands after m. Every moved piece loses its
// first-move flag; a king also loses its castling rights and records whether
// m was a castle.
func (p Piece) MovedTo(m Move) Piece {
	moved := Piece{Type: p.Type, Color: p.Color, Square: m.To()}
	if p.Type == King {
		moved.Castled = m.IsCastling()
	}
	return moved
}

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black.
func (p Piece) String() string {
	if p.IsNone() {
		return " "
	}
	c := p.Type.Char()
	if p.Color == White {
		c -= 'a' - 'A'
	}
	return string(c)
}

// GoString describes the piece with its square, for test failures.
func (p Piece) GoString() string {
	if p.IsNone() {
		return "NoPiece"
	}
	return fmt.Sprintf("%s %s@%s(first=%v)", p.Color, p.Type, p.Square, p.FirstMove)
}

// PieceTypeFromChar converts a FEN character to a color and piece type.
func PieceTypeFromChar(c byte) (PieceType, Color, bool) {
	color := White
	if c >= 'a' && c <= 'z' {
		color = Black
		c -= 'a' - 'A'
	}
	switch c {
	case 'P':
		return Pawn, color, true
	case 'N':
		return Knight, color, true
	case 'B':
		return Bishop, color, true
	case 'R':
		return Rook, color, true
	case 'Q':
		return Queen, color, true
	case 'K':
		return King, color, true
	default:
		return NoPieceType, NoColor, false
	}
}
