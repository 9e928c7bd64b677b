package board

// Pre-computed movement tables. Built once in init() and read-only afterwards.
var (
	columns [8][NumSquares]bool // columns[c][sq]: sq lies on column c (0 = a-file)
	rows    [8][NumSquares]bool // rows[r][sq]: sq lies on row r (0 = 8th rank)

	knightTargets [NumSquares][]Square
	kingTargets   [NumSquares][]Square

	bishopRays [NumSquares][len(bishopOffsets)][]Square
	rookRays   [NumSquares][len(rookOffsets)][]Square
	queenRays  [NumSquares][len(queenOffsets)][]Square

	// pawnCoverage[c][sq]: squares a pawn of color c on sq attacks diagonally.
	pawnCoverage [2][NumSquares]Bitboard
)

var (
	knightOffsets = [...]int{-17, -15, -10, -6, 6, 10, 15, 17}
	kingOffsets   = [...]int{-9, -8, -7, -1, 1, 7, 8, 9}
	bishopOffsets = [...]int{-9, -7, 7, 9}
	rookOffsets   = [...]int{-8, -1, 1, 8}
	queenOffsets  = [...]int{-9, -8, -7, -1, 1, 7, 8, 9}
)

func init() {
	initColumnsAndRows()
	initLeaperTargets()
	initSliderRays()
	initPawnCoverage()
}

func initColumnsAndRows() {
	for sq := 0; sq < NumSquares; sq++ {
		columns[sq%8][sq] = true
		rows[sq/8][sq] = true
	}
}

// The exclusion predicates reject offsets that would wrap from one edge of
// the board to the other.

func knightExcluded(sq Square, offset int) bool {
	switch {
	case columns[0][sq] && (offset == -17 || offset == -10 || offset == 6 || offset == 15):
		return true
	case columns[1][sq] && (offset == -10 || offset == 6):
		return true
	case columns[6][sq] && (offset == -6 || offset == 10):
		return true
	case columns[7][sq] && (offset == -15 || offset == -6 || offset == 10 || offset == 17):
		return true
	}
	return false
}

func kingExcluded(sq Square, offset int) bool {
	if columns[0][sq] && (offset == -9 || offset == -1 || offset == 7) {
		return true
	}
	return columns[7][sq] && (offset == -7 || offset == 1 || offset == 9)
}

func bishopExcluded(sq Square, offset int) bool {
	if columns[0][sq] && (offset == -9 || offset == 7) {
		return true
	}
	return columns[7][sq] && (offset == -7 || offset == 9)
}

func rookExcluded(sq Square, offset int) bool {
	return (columns[0][sq] && offset == -1) || (columns[7][sq] && offset == 1)
}

func initLeaperTargets() {
	for sq := A8; sq <= H1; sq++ {
		for _, off := range knightOffsets {
			if knightExcluded(sq, off) {
				continue
			}
			if to := sq.Offset(off); to != NoSquare {
				knightTargets[sq] = append(knightTargets[sq], to)
			}
		}
		for _, off := range kingOffsets {
			if kingExcluded(sq, off) {
				continue
			}
			if to := sq.Offset(off); to != NoSquare {
				kingTargets[sq] = append(kingTargets[sq], to)
			}
		}
	}
}

// walkRay collects the squares reached from sq by repeating offset until the
// board edge. The exclusion check runs on every square along the way.
func walkRay(sq Square, offset int, excluded func(Square, int) bool) []Square {
	var ray []Square
	cur := sq
	for !excluded(cur, offset) {
		next := cur.Offset(offset)
		if next == NoSquare {
			break
		}
		ray = append(ray, next)
		cur = next
	}
	return ray
}

func initSliderRays() {
	for sq := A8; sq <= H1; sq++ {
		for i, off := range bishopOffsets {
			bishopRays[sq][i] = walkRay(sq, off, bishopExcluded)
		}
		for i, off := range rookOffsets {
			rookRays[sq][i] = walkRay(sq, off, rookExcluded)
		}
		for i, off := range queenOffsets {
			queenRays[sq][i] = walkRay(sq, off, kingExcluded)
		}
	}
}

func initPawnCoverage() {
	for sq := A8; sq <= H1; sq++ {
		for _, c := range [...]Color{White, Black} {
			var bb Bitboard
			for _, off := range pawnCaptureOffsets(c) {
				if pawnCaptureExcluded(c, sq, off) {
					continue
				}
				if to := sq.Offset(off); to != NoSquare {
					bb = bb.Set(to)
				}
			}
			pawnCoverage[c][sq] = bb
		}
	}
}

// pawnCaptureOffsets returns the two diagonal offsets of a pawn of color c,
// in generation order (the 7-step then the 9-step).
func pawnCaptureOffsets(c Color) [2]int {
	d := c.Direction()
	return [2]int{7 * d, 9 * d}
}

func pawnCaptureExcluded(c Color, sq Square, offset int) bool {
	switch offset * c.Direction() {
	case 7:
		// White -7 heads right, Black +7 heads left.
		if c == White {
			return columns[7][sq]
		}
		return columns[0][sq]
	case 9:
		if c == White {
			return columns[0][sq]
		}
		return columns[7][sq]
	}
	return false
}

// PawnCoverage returns the squares a pawn of color c on sq attacks.
func PawnCoverage(c Color, sq Square) Bitboard {
	return pawnCoverage[c][sq]
}

// KnightTargets returns the on-board knight destinations from sq.
func KnightTargets(sq Square) []Square {
	return knightTargets[sq]
}

// KingTargets returns the on-board king destinations from sq.
func KingTargets(sq Square) []Square {
	return kingTargets[sq]
}
