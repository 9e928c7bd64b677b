package board

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	if c == White {
		if kingSide {
			return cr&WhiteKingSideCastle != 0
		}
		return cr&WhiteQueenSideCastle != 0
	}
	if kingSide {
		return cr&BlackKingSideCastle != 0
	}
	return cr&BlackQueenSideCastle != 0
}

func (pos *Position) computeCastlingRights() CastlingRights {
	cr := NoCastling
	if pos.whitePlayer.KingSideCastleCapable() {
		cr |= WhiteKingSideCastle
	}
	if pos.whitePlayer.QueenSideCastleCapable() {
		cr |= WhiteQueenSideCastle
	}
	if pos.blackPlayer.KingSideCastleCapable() {
		cr |= BlackKingSideCastle
	}
	if pos.blackPlayer.QueenSideCastleCapable() {
		cr |= BlackQueenSideCastle
	}
	return cr
}

// KingSideCastleCapable reports whether the king keeps its king-side right
// and the king-side rook has not moved. It says nothing about whether the
// castle is playable right now.
func (p *Player) KingSideCastleCapable() bool {
	return p.king.KingSideRight && p.kingUnmoved() && p.unmovedRookAt(p.color.KingHome()+3)
}

// QueenSideCastleCapable is the queen-side counterpart of KingSideCastleCapable.
func (p *Player) QueenSideCastleCapable() bool {
	return p.king.QueenSideRight && p.kingUnmoved() && p.unmovedRookAt(p.color.KingHome()-4)
}

func (p *Player) kingUnmoved() bool {
	return p.king.FirstMove && !p.king.Castled && p.king.Square == p.color.KingHome()
}

func (p *Player) unmovedRookAt(sq Square) bool {
	r := p.pos.squares[sq]
	return r.Type == Rook && r.Color == p.color && r.FirstMove
}

// castleMoves returns the castles available now, king side first. attacked
// holds every square the opponent attacks, pawn coverage included.
func (p *Player) castleMoves(attacked Bitboard) []Move {
	if !p.kingUnmoved() || p.inCheck {
		return nil
	}

	var moves []Move
	home := p.king.Square
	empty := func(sq Square) bool { return p.pos.squares[sq].IsNone() }
	safe := func(sq Square) bool { return !attacked.IsSet(sq) }

	if p.king.KingSideRight && p.unmovedRookAt(home+3) &&
		empty(home+1) && empty(home+2) &&
		safe(home+1) && safe(home+2) &&
		!p.pawnTrapped(home+2) {
		rook := p.pos.squares[home+3]
		moves = append(moves, newCastle(KingSideCastle, p.pos, p.king, home+2, rook, home+1))
	}

	if p.king.QueenSideRight && p.unmovedRookAt(home-4) &&
		empty(home-1) && empty(home-2) && empty(home-3) &&
		safe(home-1) && safe(home-2) &&
		!p.pawnTrapped(home-2) {
		rook := p.pos.squares[home-4]
		moves = append(moves, newCastle(QueenSideCastle, p.pos, p.king, home-2, rook, home-1))
	}
	return moves
}

// pawnTrapped reports whether an enemy pawn stands directly in front of the
// king's square after castling.
func (p *Player) pawnTrapped(landing Square) bool {
	front := landing.Offset(8 * p.color.Direction())
	if front == NoSquare {
		return false
	}
	occupant := p.pos.squares[front]
	return occupant.Type == Pawn && occupant.Color != p.color
}
