// Package engine implements the chess AI search engine.
package engine

import (
	"github.com/hailam/tigertooth/internal/board"
)

// Evaluation constants. The score is in centipawns from White's view.
const (
	CheckMateBonus      = 10000
	CheckBonus          = 50
	CastleBonus         = 60
	CastleCapableBonus  = 25
	MobilityMultiplier  = 2
	AttackMultiplier    = 2
	TwoBishopsBonus     = 50
	DoubledPawnPenalty  = -35
	IsolatedPawnPenalty = -15
	RookOpenFileBonus   = 25
)

// Evaluator scores a position from White's point of view. depth is the
// remaining search depth at the leaf; it rewards faster mates.
type Evaluator interface {
	Evaluate(pos *board.Position, depth int) int
}

// StandardEvaluator is the classical hand-written evaluator.
type StandardEvaluator struct {
	pawns *PawnTable
}

// NewStandardEvaluator creates an evaluator. A nil pawn table disables
// pawn structure caching.
func NewStandardEvaluator(pawns *PawnTable) *StandardEvaluator {
	return &StandardEvaluator{pawns: pawns}
}

// Evaluate returns score(White) - score(Black).
func (e *StandardEvaluator) Evaluate(pos *board.Position, depth int) int {
	return e.score(pos.WhitePlayer(), depth) - e.score(pos.BlackPlayer(), depth)
}

func (e *StandardEvaluator) score(p *board.Player, depth int) int {
	return mobility(p) +
		kingThreats(p, depth) +
		attacks(p) +
		castle(p) +
		pieceEvaluations(p) +
		e.pawnStructure(p)
}

// Terms holds one side's evaluation, term by term.
type Terms struct {
	Mobility      int
	KingThreats   int
	Attacks       int
	Castle        int
	Pieces        int
	PawnStructure int

	// Informational, not part of Total.
	KingTropism   int
	RookStructure int
}

// Total returns the sum of the scored terms.
func (t Terms) Total() int {
	return t.Mobility + t.KingThreats + t.Attacks + t.Castle + t.Pieces + t.PawnStructure
}

// Breakdown is a per-side view of an evaluation.
type Breakdown struct {
	White Terms
	Black Terms
	Depth int
}

// Score returns the evaluation the breakdown adds up to.
func (b Breakdown) Score() int {
	return b.White.Total() - b.Black.Total()
}

// Breakdown evaluates pos term by term.
func (e *StandardEvaluator) Breakdown(pos *board.Position, depth int) Breakdown {
	terms := func(p *board.Player) Terms {
		return Terms{
			Mobility:      mobility(p),
			KingThreats:   kingThreats(p, depth),
			Attacks:       attacks(p),
			Castle:        castle(p),
			Pieces:        pieceEvaluations(p),
			PawnStructure: e.pawnStructure(p),
			KingTropism:   kingTropism(p),
			RookStructure: rookStructure(p),
		}
	}
	return Breakdown{
		White: terms(pos.WhitePlayer()),
		Black: terms(pos.BlackPlayer()),
		Depth: depth,
	}
}

func pieceEvaluations(p *board.Player) int {
	score, bishops := 0, 0
	for _, piece := range p.ActivePieces() {
		score += piece.Value() + locationBonus(piece)
		if piece.Type == board.Bishop {
			bishops++
		}
	}
	if bishops == 2 {
		score += TwoBishopsBonus
	}
	return score
}

func mobility(p *board.Player) int {
	return MobilityMultiplier * mobilityRatio(p)
}

func mobilityRatio(p *board.Player) int {
	opponent := max(len(p.Opponent().LegalMoves()), 1)
	return len(p.LegalMoves()) * 100 / opponent
}

func kingThreats(p *board.Player, depth int) int {
	opponent := p.Opponent()
	if opponent.IsInCheckmate() {
		return CheckMateBonus * depthBonus(depth)
	}
	if opponent.InCheck() {
		return CheckBonus
	}
	return 0
}

func depthBonus(depth int) int {
	if depth == 0 {
		return 1
	}
	return 100 * depth
}

// attacks counts captures that do not trade down.
func attacks(p *board.Player) int {
	count := 0
	for _, m := range p.LegalMoves() {
		captured, ok := m.Captured()
		if !ok {
			continue
		}
		if m.Piece().Value() <= captured.Value() {
			count++
		}
	}
	return AttackMultiplier * count
}

func castle(p *board.Player) int {
	if p.IsCastled() {
		return CastleBonus
	}
	if p.KingSideCastleCapable() || p.QueenSideCastleCapable() {
		return CastleCapableBonus
	}
	return 0
}
