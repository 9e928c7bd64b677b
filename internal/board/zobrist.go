package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristPiece      [2][6][NumSquares]uint64 // [Color][PieceType][Square]
	zobristEnPassant  [8]uint64                // One per file
	zobristCastling   [16]uint64               // All 16 castling combinations
	zobristSideToMove uint64                   // XOR when black to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A8; sq <= H1; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for file := range zobristEnPassant {
		zobristEnPassant[file] = rng.next()
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// computeKeys derives the full position key and the per-color pawn keys.
// Positions are rebuilt on every ply, so keys are computed from scratch.
func (pos *Position) computeKeys() (uint64, [2]uint64) {
	var hash uint64
	var pawns [2]uint64

	for _, pieces := range [2][]Piece{pos.white, pos.black} {
		for _, p := range pieces {
			k := zobristPiece[p.Color][p.Type][p.Square]
			hash ^= k
			if p.Type == Pawn {
				pawns[p.Color] ^= k
			}
		}
	}

	hash ^= zobristCastling[pos.castling]
	if pos.enPassantCapturable() {
		hash ^= zobristEnPassant[pos.enPassantPawn.Square.File()]
	}
	if pos.mover == Black {
		hash ^= zobristSideToMove
	}
	return hash, pawns
}

// enPassantCapturable reports whether an enemy pawn attacks the square
// behind the pawn that just double stepped. Otherwise the en passant file
// does not change which moves are available and stays out of the key.
func (pos *Position) enPassantCapturable() bool {
	ep, ok := pos.EnPassantPawn()
	if !ok {
		return false
	}
	target := pos.EnPassantSquare()
	capturers := pos.Pieces(ep.Color.Other(), Pawn)
	for capturers != 0 {
		if PawnCoverage(ep.Color.Other(), capturers.PopLSB()).IsSet(target) {
			return true
		}
	}
	return false
}
