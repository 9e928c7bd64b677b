package board

import "sync"

// Player is one side of a Position: its king, legal moves (pseudo-legal plus
// castles) and check state. Players are derived when a Position is built.
type Player struct {
	pos     *Position
	color   Color
	king    Piece
	moves   []Move
	attacks Bitboard
	inCheck bool

	escapeOnce sync.Once
	hasEscape  bool
}

func newPlayer(pos *Position, c Color, king Piece, moves []Move, own, opponent Bitboard) *Player {
	p := &Player{
		pos:     pos,
		color:   c,
		king:    king,
		attacks: own,
		inCheck: opponent.IsSet(king.Square),
	}
	p.moves = append(moves, p.castleMoves(opponent)...)
	return p
}

// attackSet returns the squares color c attacks: every destination of its
// pseudo-legal moves except pawn pushes, plus diagonal pawn coverage.
func (pos *Position) attackSet(c Color, moves []Move) Bitboard {
	var bb Bitboard
	for _, m := range moves {
		if m.piece.Type == Pawn && !m.IsAttack() {
			continue
		}
		bb = bb.Set(m.to)
	}
	pawns := pos.pieces[c][Pawn]
	for pawns != 0 {
		bb |= pawnCoverage[c][pawns.PopLSB()]
	}
	return bb
}

// Color returns the side this player plays.
func (p *Player) Color() Color {
	return p.color
}

// King returns the player's king.
func (p *Player) King() Piece {
	return p.king
}

// Position returns the Position this player belongs to.
func (p *Player) Position() *Position {
	return p.pos
}

// Opponent returns the other side of the same Position.
func (p *Player) Opponent() *Player {
	return p.pos.Player(p.color.Other())
}

// ActivePieces returns this player's pieces in square order.
func (p *Player) ActivePieces() []Piece {
	return p.pos.ActivePieces(p.color)
}

// LegalMoves returns the pseudo-legal moves followed by any legal castles,
// in generation order. The slice is shared; callers must not modify it.
func (p *Player) LegalMoves() []Move {
	return p.moves
}

// DoneMoves returns the legal moves whose transition completes, in
// generation order. Each call executes every candidate.
func (p *Player) DoneMoves() []Move {
	out := make([]Move, 0, len(p.moves))
	for _, m := range p.moves {
		if p.attempt(m).Status.IsDone() {
			out = append(out, m)
		}
	}
	return out
}

// Attacks returns the squares this player attacks.
func (p *Player) Attacks() Bitboard {
	return p.attacks
}

// InCheck reports whether an opponent move attacks this player's king.
func (p *Player) InCheck() bool {
	return p.inCheck
}

// IsInCheckmate reports whether the player is in check with no escape.
func (p *Player) IsInCheckmate() bool {
	return p.inCheck && !p.hasEscapeMoves()
}

// IsInStalemate reports whether the player is not in check but has no move
// that completes.
func (p *Player) IsInStalemate() bool {
	return !p.inCheck && !p.hasEscapeMoves()
}

// IsCastled reports whether the player's king has castled.
func (p *Player) IsCastled() bool {
	return p.king.Castled
}

func (p *Player) hasEscapeMoves() bool {
	p.escapeOnce.Do(func() {
		for _, m := range p.moves {
			if p.attempt(m).Status.IsDone() {
				p.hasEscape = true
				return
			}
		}
	})
	return p.hasEscape
}

// MakeMove attempts m for this player. The move must be one of the player's
// legal moves and the player must be the side to move; otherwise the status
// is IllegalMove. A move that exposes the player's own king yields
// LeavesPlayerInCheck. In both failure cases To is the origin Position.
func (p *Player) MakeMove(m Move) MoveTransition {
	if p.pos.mover != p.color {
		return MoveTransition{From: p.pos, To: p.pos, Move: m, Status: IllegalMove}
	}
	return p.attempt(m)
}

func (p *Player) attempt(m Move) MoveTransition {
	legal, ok := p.findLegal(m)
	if !ok {
		return MoveTransition{From: p.pos, To: p.pos, Move: m, Status: IllegalMove}
	}

	next := legal.Execute()
	if next.Player(p.color).InCheck() {
		return MoveTransition{From: p.pos, To: p.pos, Move: legal, Status: LeavesPlayerInCheck}
	}
	return MoveTransition{From: p.pos, To: next, Move: legal, Status: Done}
}

func (p *Player) findLegal(m Move) (Move, bool) {
	if m.IsNull() {
		return NullMove, false
	}
	for _, legal := range p.moves {
		if legal.Equal(m) {
			return legal, true
		}
	}
	return NullMove, false
}
