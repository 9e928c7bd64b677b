package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position. The half-move clock
// and full-move number are optional and ignored.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, fmt.Errorf("%w: need 4 to 6 fields, got %d", ErrInvalidFEN, len(parts))
	}

	placement, err := parsePiecePlacement(parts[0])
	if err != nil {
		return nil, err
	}

	var mover Color
	switch parts[1] {
	case "w":
		mover = White
	case "b":
		mover = Black
	default:
		return nil, fmt.Errorf("%w: invalid side to move %q", ErrInvalidFEN, parts[1])
	}

	rights, err := parseCastlingRights(parts[2])
	if err != nil {
		return nil, err
	}

	b := NewBuilder().SetMover(mover)
	kings := [2]int{}
	for sq := A8; sq <= H1; sq++ {
		pt, c := placement[sq].pt, placement[sq].color
		if pt == NoPieceType {
			continue
		}
		b.SetPiece(fenPiece(pt, c, sq, rights))
		if pt == King {
			kings[c]++
		}
	}
	for c := White; c <= Black; c++ {
		if kings[c] != 1 {
			return nil, fmt.Errorf("%w: %s has %d kings", ErrInvalidFEN, c, kings[c])
		}
	}

	if parts[3] != "-" {
		ep, err := parseEnPassant(parts[3], mover, b)
		if err != nil {
			return nil, err
		}
		b.SetEnPassantPawn(ep)
	}

	for _, field := range parts[4:] {
		if _, err := strconv.Atoi(field); err != nil {
			return nil, fmt.Errorf("%w: invalid move counter %q", ErrInvalidFEN, field)
		}
	}

	pos := b.Build()
	if pos.Player(mover.Other()).InCheck() {
		return nil, fmt.Errorf("%w: side not to move is in check", ErrInvalidFEN)
	}
	return pos, nil
}

type fenSquare struct {
	pt    PieceType
	color Color
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(placement string) ([NumSquares]fenSquare, error) {
	var board [NumSquares]fenSquare
	for i := range board {
		board[i] = fenSquare{pt: NoPieceType, color: NoColor}
	}

	rows := strings.Split(placement, "/")
	if len(rows) != 8 {
		return board, fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(rows))
	}

	for row, rowStr := range rows {
		file := 0
		for _, c := range rowStr {
			if file > 7 {
				return board, fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, 8-row)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			if c > 0x7F {
				return board, fmt.Errorf("%w: invalid piece character %q", ErrInvalidFEN, c)
			}
			pt, color, ok := PieceTypeFromChar(byte(c))
			if !ok {
				return board, fmt.Errorf("%w: invalid piece character %q", ErrInvalidFEN, c)
			}
			if pt == Pawn && (row == 0 || row == 7) {
				return board, fmt.Errorf("%w: pawn on back rank %d", ErrInvalidFEN, 8-row)
			}
			board[row*8+file] = fenSquare{pt: pt, color: color}
			file++
		}
		if file != 8 {
			return board, fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, 8-row, file)
		}
	}
	return board, nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(castling string) (CastlingRights, error) {
	if castling == "-" {
		return NoCastling, nil
	}

	cr := NoCastling
	for _, c := range castling {
		switch c {
		case 'K':
			cr |= WhiteKingSideCastle
		case 'Q':
			cr |= WhiteQueenSideCastle
		case 'k':
			cr |= BlackKingSideCastle
		case 'q':
			cr |= BlackQueenSideCastle
		default:
			return NoCastling, fmt.Errorf("%w: invalid castling character %q", ErrInvalidFEN, c)
		}
	}
	return cr, nil
}

// fenPiece restores the move flags FEN does not carry. Pawns are unmoved on
// their start rank, kings on their home square, and corner rooks only when
// the matching castling right is present.
func fenPiece(pt PieceType, c Color, sq Square, rights CastlingRights) Piece {
	p := Piece{Type: pt, Color: c, Square: sq, FirstMove: true}
	switch pt {
	case Pawn:
		p.FirstMove = c.IsPawnStartSquare(sq)
	case King:
		p.FirstMove = sq == c.KingHome()
		p.KingSideRight = rights.CanCastle(c, true)
		p.QueenSideRight = rights.CanCastle(c, false)
	case Rook:
		home := c.KingHome()
		switch sq {
		case home + 3:
			p.FirstMove = rights.CanCastle(c, true)
		case home - 4:
			p.FirstMove = rights.CanCastle(c, false)
		default:
			p.FirstMove = false
		}
	}
	return p
}

// parseEnPassant resolves the target square to the pawn that just double
// pushed past it.
func parseEnPassant(field string, mover Color, b *Builder) (Piece, error) {
	target, err := ParseSquare(field)
	if err != nil {
		return NoPiece, fmt.Errorf("%w: en passant square: %w", ErrInvalidFEN, err)
	}

	pawnColor := mover.Other()
	pawnSq := target.Offset(8 * pawnColor.Direction())
	if pawnSq == NoSquare || !pawnColor.IsPawnStartSquare(target.Offset(8*pawnColor.OppositeDirection())) {
		return NoPiece, fmt.Errorf("%w: en passant square %s on wrong rank", ErrInvalidFEN, target)
	}

	pawn := b.squares[pawnSq]
	if pawn.Type != Pawn || pawn.Color != pawnColor {
		return NoPiece, fmt.Errorf("%w: no pawn behind en passant square %s", ErrInvalidFEN, target)
	}
	if !b.squares[target].IsNone() {
		return NoPiece, fmt.Errorf("%w: en passant square %s is occupied", ErrInvalidFEN, target)
	}
	return pawn, nil
}

// FEN returns the FEN representation of the position. Move counters are
// not tracked and are always written as "0 1".
func (pos *Position) FEN() string {
	var sb strings.Builder

	for row := 0; row < 8; row++ {
		empty := 0
		for file := 0; file < 8; file++ {
			p := pos.squares[row*8+file]
			if p.IsNone() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if pos.mover == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(pos.castling.String())

	sb.WriteByte(' ')
	sb.WriteString(pos.EnPassantSquare().String())

	sb.WriteString(" 0 1")
	return sb.String()
}
