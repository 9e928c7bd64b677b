package engine

import (
	"context"
	"time"

	"github.com/hailam/tigertooth/internal/board"
)

// Search constants
const (
	Infinity = 1 << 30

	// DefaultMaxQuiescence bounds quiescence extensions per root move.
	DefaultMaxQuiescence = 5000

	// checkInterval is how many nodes pass between cancellation checks.
	checkInterval = 256
)

// Stats holds the counters a search collects.
type Stats struct {
	BoardsEvaluated      uint64
	Cutoffs              uint64
	QuiescenceExtensions uint64
	Nodes                uint64
	Elapsed              time.Duration
}

// Result is the outcome of a search.
type Result struct {
	Move  board.Move
	Score int
	Depth int
	Stats Stats

	// FromBook is set when the move came from the opening book.
	FromBook bool
}

// SearchInfo is reported after each root move.
type SearchInfo struct {
	Strategy             string
	Depth                int
	MoveNumber           int // 1-based index among root moves
	MoveCount            int
	Move                 board.Move
	Illegal              bool // the root move did not complete
	BestMove             board.Move
	BestScore            int
	BoardsEvaluated      uint64
	QuiescenceExtensions uint64
	Time                 time.Duration
}

// Strategy picks a move for the side to move.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, pos *board.Position) (Result, error)
}

// searcher holds the state of one running search.
type searcher struct {
	ctx     context.Context
	eval    Evaluator
	stats   Stats
	aborted bool
	start   time.Time
}

func newSearcher(ctx context.Context, eval Evaluator) *searcher {
	if ctx == nil {
		ctx = context.Background()
	}
	return &searcher{ctx: ctx, eval: eval, start: time.Now()}
}

// visit counts a node and polls the context every checkInterval nodes.
// It reports whether the search should stop.
func (s *searcher) visit() bool {
	if s.aborted {
		return true
	}
	s.stats.Nodes++
	if s.stats.Nodes%checkInterval == 0 && s.ctx.Err() != nil {
		s.aborted = true
	}
	return s.aborted
}

// leaf reports whether pos ends the recursion at depth.
func leaf(pos *board.Position, depth int) bool {
	return depth <= 0 || pos.IsEndGame()
}

func (s *searcher) evaluate(pos *board.Position, depth int) int {
	s.stats.BoardsEvaluated++
	return s.eval.Evaluate(pos, depth)
}

// rootBest tracks the best root move. Ties go to the move with the lowest
// index in the mover's legal-move list.
type rootBest struct {
	color board.Color
	move  board.Move
	index int
	score int
}

func newRootBest(c board.Color) rootBest {
	score := -Infinity
	if c == board.Black {
		score = Infinity
	}
	return rootBest{color: c, move: board.NullMove, index: -1, score: score}
}

// better reports whether a move with the given index and score replaces the
// current best.
func (b *rootBest) better(index, score int) bool {
	if b.index < 0 {
		return true
	}
	if b.color == board.White {
		return score > b.score || (score == b.score && index < b.index)
	}
	return score < b.score || (score == b.score && index < b.index)
}

func (b *rootBest) update(c candidate, score int) {
	b.move, b.index, b.score = c.move, c.index, score
}

// window returns the bounds a root child is searched with. A move that
// enumerates before the current best gets a window widened by one so an
// exact tie is still distinguishable from a fail.
func (b *rootBest) window(index int) (highest, lowest int) {
	if b.index < 0 {
		return -Infinity, Infinity
	}
	slack := 0
	if index < b.index {
		slack = 1
	}
	if b.color == board.White {
		return b.score - slack, Infinity
	}
	return -Infinity, b.score + slack
}

// fallback returns the first root move that completes, for a search that
// was cancelled before any root move finished.
func fallback(pos *board.Position) board.Move {
	player := pos.CurrentPlayer()
	for _, m := range player.LegalMoves() {
		if t := player.MakeMove(m); t.Status.IsDone() {
			return t.Move
		}
	}
	return board.NullMove
}

// report builds the SearchInfo for a root move.
func (s *searcher) report(name string, depth, n, total int, c candidate, illegal bool, best rootBest) SearchInfo {
	return SearchInfo{
		Strategy:             name,
		Depth:                depth,
		MoveNumber:           n,
		MoveCount:            total,
		Move:                 c.move,
		Illegal:              illegal,
		BestMove:             best.move,
		BestScore:            best.score,
		BoardsEvaluated:      s.stats.BoardsEvaluated,
		QuiescenceExtensions: s.stats.QuiescenceExtensions,
		Time:                 time.Since(s.start),
	}
}

// finish assembles the result of a root loop.
func (s *searcher) finish(pos *board.Position, depth int, best rootBest) (Result, error) {
	s.stats.Elapsed = time.Since(s.start)
	res := Result{Move: best.move, Score: best.score, Depth: depth, Stats: s.stats}
	if best.index < 0 {
		res.Score = 0
	}
	if s.aborted || s.ctx.Err() != nil {
		if res.Move.IsNull() {
			res.Move = fallback(pos)
		}
		return res, s.ctx.Err()
	}
	return res, nil
}
