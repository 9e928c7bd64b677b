package board

// PseudoLegalMoves returns the moves p can make on pos, obeying piece movement
// rules but not yet checked against self-check. Castling is generated by the
// Player, not here.
func (p Piece) PseudoLegalMoves(pos *Position) []Move {
	return pos.appendPieceMoves(nil, p)
}

func (pos *Position) appendPieceMoves(moves []Move, p Piece) []Move {
	switch p.Type {
	case Pawn:
		return pos.appendPawnMoves(moves, p)
	case Knight:
		return pos.appendLeaperMoves(moves, p, knightTargets[p.Square])
	case Bishop:
		return pos.appendSliderMoves(moves, p, bishopRays[p.Square][:])
	case Rook:
		return pos.appendSliderMoves(moves, p, rookRays[p.Square][:])
	case Queen:
		return pos.appendSliderMoves(moves, p, queenRays[p.Square][:])
	case King:
		return pos.appendLeaperMoves(moves, p, kingTargets[p.Square])
	}
	return moves
}

// generateMoves returns the pseudo-legal moves of every piece in pieces.
func (pos *Position) generateMoves(pieces []Piece) []Move {
	moves := make([]Move, 0, 48)
	for _, p := range pieces {
		moves = pos.appendPieceMoves(moves, p)
	}
	return moves
}

func (pos *Position) appendLeaperMoves(moves []Move, p Piece, targets []Square) []Move {
	for _, to := range targets {
		occupant := pos.squares[to]
		if occupant.IsNone() {
			moves = append(moves, newMove(Quiet, pos, p, to))
		} else if occupant.Color != p.Color {
			moves = append(moves, newCapture(Capture, pos, p, to, occupant))
		}
	}
	return moves
}

func (pos *Position) appendSliderMoves(moves []Move, p Piece, rays [][]Square) []Move {
	for _, ray := range rays {
		for _, to := range ray {
			occupant := pos.squares[to]
			if occupant.IsNone() {
				moves = append(moves, newMove(Quiet, pos, p, to))
				continue
			}
			if occupant.Color != p.Color {
				moves = append(moves, newCapture(Capture, pos, p, to, occupant))
			}
			break
		}
	}
	return moves
}

func (pos *Position) appendPawnMoves(moves []Move, p Piece) []Move {
	dir := p.Color.Direction()

	// Single push, then double push through the same empty square.
	if to := p.Square.Offset(8 * dir); to != NoSquare && pos.squares[to].IsNone() {
		push := newMove(Quiet, pos, p, to)
		if p.Color.IsPromotionSquare(to) {
			moves = appendPromotions(moves, push)
		} else {
			moves = append(moves, push)
		}

		if p.FirstMove && p.Color.IsPawnStartSquare(p.Square) {
			if jump := p.Square.Offset(16 * dir); jump != NoSquare && pos.squares[jump].IsNone() {
				moves = append(moves, newMove(PawnDoublePush, pos, p, jump))
			}
		}
	}

	for _, off := range pawnCaptureOffsets(p.Color) {
		if pawnCaptureExcluded(p.Color, p.Square, off) {
			continue
		}
		to := p.Square.Offset(off)
		if to == NoSquare {
			continue
		}

		occupant := pos.squares[to]
		if !occupant.IsNone() {
			if occupant.Color != p.Color {
				capture := newCapture(Capture, pos, p, to, occupant)
				if p.Color.IsPromotionSquare(to) {
					moves = appendPromotions(moves, capture)
				} else {
					moves = append(moves, capture)
				}
			}
			continue
		}

		// En passant: the vulnerable pawn sits directly behind the empty target.
		if ep, ok := pos.EnPassantPawn(); ok && ep.Color != p.Color && ep.Square == to.Offset(-8*dir) {
			moves = append(moves, newCapture(EnPassantCapture, pos, p, to, ep))
		}
	}
	return moves
}

func appendPromotions(moves []Move, base Move) []Move {
	for _, pt := range PromotionTypes {
		moves = append(moves, newPromotion(base, pt))
	}
	return moves
}
