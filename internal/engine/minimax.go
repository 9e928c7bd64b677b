package engine

import (
	"context"

	"github.com/hailam/tigertooth/internal/board"
)

// MiniMax searches the full tree to a fixed depth without pruning. It is
// the baseline the pruning strategies are checked against.
type MiniMax struct {
	Depth     int
	Evaluator Evaluator
	OnInfo    func(SearchInfo)
}

// NewMiniMax creates a minimax strategy.
func NewMiniMax(eval Evaluator, depth int) *MiniMax {
	return &MiniMax{Depth: depth, Evaluator: eval}
}

// Name returns the strategy name.
func (mm *MiniMax) Name() string {
	return "MiniMax"
}

// Execute returns the best move for the side to move of pos. A terminal
// position yields the null move with a zero score.
func (mm *MiniMax) Execute(ctx context.Context, pos *board.Position) (Result, error) {
	depth := max(mm.Depth, 1)
	s := newSearcher(ctx, mm.Evaluator)
	best := newRootBest(pos.Mover())
	if pos.IsEndGame() {
		return s.finish(pos, depth, best)
	}

	player := pos.CurrentPlayer()
	legal := player.LegalMoves()
	for i, m := range legal {
		if s.ctx.Err() != nil {
			s.aborted = true
			break
		}
		c := candidate{move: m, index: i}
		t := player.MakeMove(m)
		if !t.Status.IsDone() {
			mm.info(s.report(mm.Name(), depth, i+1, len(legal), c, true, best))
			continue
		}

		score := s.minimax(t.To, depth-1)
		if s.aborted {
			break
		}
		if best.better(i, score) {
			best.update(c, score)
		}
		mm.info(s.report(mm.Name(), depth, i+1, len(legal), c, false, best))
	}
	return s.finish(pos, depth, best)
}

func (mm *MiniMax) info(si SearchInfo) {
	if mm.OnInfo != nil {
		mm.OnInfo(si)
	}
}

// minimax returns the exact value of pos searched to depth.
func (s *searcher) minimax(pos *board.Position, depth int) int {
	if s.visit() {
		return 0
	}
	if leaf(pos, depth) {
		return s.evaluate(pos, depth)
	}

	player := pos.CurrentPlayer()
	white := player.Color() == board.White
	best := Infinity
	if white {
		best = -Infinity
	}
	for _, m := range player.LegalMoves() {
		t := player.MakeMove(m)
		if !t.Status.IsDone() {
			continue
		}
		v := s.minimax(t.To, depth-1)
		if white {
			best = max(best, v)
		} else {
			best = min(best, v)
		}
	}
	return best
}
