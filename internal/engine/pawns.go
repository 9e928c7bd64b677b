package engine

import "github.com/hailam/tigertooth/internal/board"

// pawnStructure scores doubled and isolated pawns for p, caching the result
// under the color's pawn key.
func (e *StandardEvaluator) pawnStructure(p *board.Player) int {
	if e.pawns == nil {
		return pawnStructureScore(p.Position().Pieces(p.Color(), board.Pawn))
	}
	key := p.Position().PawnKey(p.Color())
	if score, ok := e.pawns.Probe(key); ok {
		return score
	}
	score := pawnStructureScore(p.Position().Pieces(p.Color(), board.Pawn))
	e.pawns.Store(key, score)
	return score
}

func pawnStructureScore(pawns board.Bitboard) int {
	var files [8]int
	for pawns != 0 {
		files[pawns.PopLSB().File()]++
	}
	return doubledPawns(files)*DoubledPawnPenalty + isolatedPawns(files)*IsolatedPawnPenalty
}

// doubledPawns counts every pawn that shares its file with another.
func doubledPawns(files [8]int) int {
	n := 0
	for _, count := range files {
		if count > 1 {
			n += count
		}
	}
	return n
}

// isolatedPawns counts pawns with no friendly pawn on an adjacent file.
func isolatedPawns(files [8]int) int {
	n := 0
	for f, count := range files {
		if count == 0 {
			continue
		}
		left := f > 0 && files[f-1] > 0
		right := f < 7 && files[f+1] > 0
		if !left && !right {
			n += count
		}
	}
	return n
}
