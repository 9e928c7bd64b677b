package engine

import (
	"math"

	"github.com/hailam/tigertooth/internal/board"
)

// kingTropism measures how close the opponent's reach comes to p's king:
// the Chebyshev distance from the king to the nearest enemy destination,
// scaled by a tenth of the value of the piece that gets there. It is zero
// when the opponent has no moves.
func kingTropism(p *board.Player) int {
	king := p.King().Square
	closest := math.MaxInt
	var closestPiece board.Piece
	for _, m := range p.Opponent().LegalMoves() {
		if d := board.Distance(king, m.To()); d < closest {
			closest = d
			closestPiece = m.Piece()
		}
	}
	if closest == math.MaxInt {
		return 0
	}
	return closestPiece.Value() / 10 * closest
}

// rookStructure rewards each rook that is the only piece on its file.
func rookStructure(p *board.Player) int {
	pos := p.Position()
	occupied := pos.Occupied(board.White) | pos.Occupied(board.Black)
	score := 0
	rooks := pos.Pieces(p.Color(), board.Rook)
	for rooks != 0 {
		sq := rooks.PopLSB()
		if (occupied & board.FileMask[sq.File()]).PopCount() == 1 {
			score += RookOpenFileBonus
		}
	}
	return score
}
