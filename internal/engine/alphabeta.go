package engine

import (
	"context"

	"github.com/hailam/tigertooth/internal/board"
)

// AlphaBeta is minimax with fail-hard alpha-beta pruning and Smart move
// ordering. With the same evaluator and depth it selects the same move with
// the same score as MiniMax.
type AlphaBeta struct {
	Depth     int
	Evaluator Evaluator
	OnInfo    func(SearchInfo)
}

// NewAlphaBeta creates an alpha-beta strategy.
func NewAlphaBeta(eval Evaluator, depth int) *AlphaBeta {
	return &AlphaBeta{Depth: depth, Evaluator: eval}
}

// Name returns the strategy name.
func (ab *AlphaBeta) Name() string {
	return "AlphaBeta"
}

// Execute returns the best move for the side to move of pos.
func (ab *AlphaBeta) Execute(ctx context.Context, pos *board.Position) (Result, error) {
	p := pruning{
		name:      ab.Name(),
		depth:     max(ab.Depth, 1),
		rootOrder: Smart,
		order:     Smart,
		onInfo:    ab.OnInfo,
	}
	return p.run(newSearcher(ctx, ab.Evaluator), pos)
}

// StockAlphaBeta is alpha-beta with Expensive ordering at the root, Standard
// ordering below it and a quiescence extension at the horizon. It stops as
// soon as a root move mates.
type StockAlphaBeta struct {
	Depth         int
	MaxQuiescence int
	Evaluator     Evaluator
	OnInfo        func(SearchInfo)
}

// NewStockAlphaBeta creates the extended alpha-beta strategy.
func NewStockAlphaBeta(eval Evaluator, depth, maxQuiescence int) *StockAlphaBeta {
	return &StockAlphaBeta{Depth: depth, MaxQuiescence: maxQuiescence, Evaluator: eval}
}

// Name returns the strategy name.
func (sab *StockAlphaBeta) Name() string {
	return "StockAlphaBeta"
}

// Execute returns the best move for the side to move of pos.
func (sab *StockAlphaBeta) Execute(ctx context.Context, pos *board.Position) (Result, error) {
	p := pruning{
		name:          sab.Name(),
		depth:         max(sab.Depth, 1),
		rootOrder:     Expensive,
		order:         Standard,
		maxQuiescence: sab.MaxQuiescence,
		stopOnMate:    true,
		onInfo:        sab.OnInfo,
	}
	return p.run(newSearcher(ctx, sab.Evaluator), pos)
}

// pruning is the parameter set shared by the alpha-beta strategies.
type pruning struct {
	name          string
	depth         int
	rootOrder     Ordering
	order         Ordering
	maxQuiescence int // 0 disables the extension
	stopOnMate    bool
	onInfo        func(SearchInfo)

	quiescence int // extensions spent under the current root move
}

func (p *pruning) run(s *searcher, pos *board.Position) (Result, error) {
	best := newRootBest(pos.Mover())
	if pos.IsEndGame() {
		return s.finish(pos, p.depth, best)
	}

	player := pos.CurrentPlayer()
	cands := orderCandidates(pos, p.rootOrder)
	for n, c := range cands {
		if s.ctx.Err() != nil {
			s.aborted = true
			break
		}
		p.quiescence = 0
		t := player.MakeMove(c.move)
		if !t.Status.IsDone() {
			p.info(s.report(p.name, p.depth, n+1, len(cands), c, true, best))
			continue
		}

		highest, lowest := best.window(c.index)
		var score int
		if player.Color() == board.White {
			score = p.minNode(s, t.To, p.depth-1, highest, lowest)
		} else {
			score = p.maxNode(s, t.To, p.depth-1, highest, lowest)
		}
		if s.aborted {
			break
		}

		if best.better(c.index, score) {
			best.update(c, score)
			p.info(s.report(p.name, p.depth, n+1, len(cands), c, false, best))
			if p.stopOnMate && t.To.CurrentPlayer().IsInCheckmate() {
				break
			}
			continue
		}
		p.info(s.report(p.name, p.depth, n+1, len(cands), c, false, best))
	}
	return s.finish(pos, p.depth, best)
}

func (p *pruning) info(si SearchInfo) {
	if p.onInfo != nil {
		p.onInfo(si)
	}
}

// maxNode searches a White-to-move node. The result is clamped to
// [highest, lowest].
func (p *pruning) maxNode(s *searcher, pos *board.Position, depth, highest, lowest int) int {
	if s.visit() {
		return highest
	}
	if leaf(pos, depth) {
		return s.evaluate(pos, depth)
	}

	player := pos.CurrentPlayer()
	current := highest
	for _, c := range orderCandidates(pos, p.order) {
		t := player.MakeMove(c.move)
		if !t.Status.IsDone() {
			continue
		}
		current = max(current, p.minNode(s, t.To, p.childDepth(s, t.To, depth), current, lowest))
		if current >= lowest {
			s.stats.Cutoffs++
			return lowest
		}
	}
	return current
}

// minNode searches a Black-to-move node.
func (p *pruning) minNode(s *searcher, pos *board.Position, depth, highest, lowest int) int {
	if s.visit() {
		return lowest
	}
	if leaf(pos, depth) {
		return s.evaluate(pos, depth)
	}

	player := pos.CurrentPlayer()
	current := lowest
	for _, c := range orderCandidates(pos, p.order) {
		t := player.MakeMove(c.move)
		if !t.Status.IsDone() {
			continue
		}
		current = min(current, p.maxNode(s, t.To, p.childDepth(s, t.To, depth), highest, current))
		if current <= highest {
			s.stats.Cutoffs++
			return highest
		}
	}
	return current
}

// childDepth returns the remaining depth for a child of a node at depth.
// Next to the horizon a tactically active child is extended to depth 2.
func (p *pruning) childDepth(s *searcher, child *board.Position, depth int) int {
	if depth != 1 || p.quiescence >= p.maxQuiescence {
		return depth - 1
	}
	if activity(child) > 3 {
		p.quiescence++
		s.stats.QuiescenceExtensions++
		return 2
	}
	return depth - 1
}

// activity scores how loud a position is: two for a check, plus one per
// capture among the last four moves.
func activity(pos *board.Position) int {
	n := 0
	if pos.CurrentPlayer().InCheck() {
		n += 2
	}
	for _, m := range pos.LastMoves(4) {
		if m.IsAttack() {
			n++
		}
	}
	return n
}
