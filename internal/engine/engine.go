package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/tigertooth/internal/board"
)

// Algorithm names a search strategy.
type Algorithm int

const (
	AlgorithmMiniMax Algorithm = iota
	AlgorithmAlphaBeta
	AlgorithmStock
)

// String returns the name accepted by ParseAlgorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmMiniMax:
		return "minimax"
	case AlgorithmAlphaBeta:
		return "alphabeta"
	case AlgorithmStock:
		return "stock"
	default:
		return "unknown"
	}
}

// ParseAlgorithm parses an algorithm name (minimax, alphabeta or stock).
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimax":
		return AlgorithmMiniMax, nil
	case "alphabeta", "alpha-beta":
		return AlgorithmAlphaBeta, nil
	case "stock", "stockalphabeta":
		return AlgorithmStock, nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q", s)
	}
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth         int // Plies to search (minimum 1)
	MaxQuiescence int // Quiescence extensions per root move (0 = off)
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply
	Medium                   // 3 ply
	Hard                     // 4 ply
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MaxQuiescence: DefaultMaxQuiescence},
	Medium: {Depth: 3, MaxQuiescence: DefaultMaxQuiescence},
	Hard:   {Depth: 4, MaxQuiescence: DefaultMaxQuiescence},
}

// BookProber supplies opening moves. history is the SAN move list that led
// to pos from the start position.
type BookProber interface {
	Probe(pos *board.Position, history []string) (board.Move, bool)
}

// Engine is the chess AI engine.
type Engine struct {
	mu        sync.Mutex
	eval      *StandardEvaluator
	pawns     *PawnTable
	algorithm Algorithm
	limits    SearchLimits
	book      BookProber
	ownBook   bool
	logger    zerolog.Logger
	cancel    context.CancelFunc

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine with the given pawn table size in MB.
func NewEngine(pawnTableMB int) *Engine {
	pawns := NewPawnTable(pawnTableMB)
	return &Engine{
		eval:      NewStandardEvaluator(pawns),
		pawns:     pawns,
		algorithm: AlgorithmStock,
		limits:    DifficultySettings[Medium],
		logger:    zerolog.Nop(),
	}
}

// SetLogger sets the logger used for search diagnostics.
func (e *Engine) SetLogger(l zerolog.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger = l
}

// SetDifficulty sets the search limits from a difficulty level.
func (e *Engine) SetDifficulty(d Difficulty) {
	if limits, ok := DifficultySettings[d]; ok {
		e.SetLimits(limits)
	}
}

// SetLimits sets the search limits.
func (e *Engine) SetLimits(l SearchLimits) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.limits = l
}

// Limits returns the current search limits.
func (e *Engine) Limits() SearchLimits {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.limits
}

// SetAlgorithm selects the search strategy.
func (e *Engine) SetAlgorithm(a Algorithm) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.algorithm = a
}

// Algorithm returns the selected search strategy.
func (e *Engine) Algorithm() Algorithm {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.algorithm
}

// SetBook installs an opening book. A nil book disables book moves.
func (e *Engine) SetBook(b BookProber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.book = b
	e.ownBook = b != nil
}

// SetOwnBook enables or disables probing the installed book.
func (e *Engine) SetOwnBook(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ownBook = on && e.book != nil
}

// OwnBook reports whether the engine probes its book before searching.
func (e *Engine) OwnBook() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ownBook
}

// Strategy builds the configured strategy with the given limits.
func (e *Engine) Strategy(limits SearchLimits) Strategy {
	e.mu.Lock()
	algorithm, onInfo := e.algorithm, e.OnInfo
	e.mu.Unlock()

	switch algorithm {
	case AlgorithmMiniMax:
		mm := NewMiniMax(e.eval, limits.Depth)
		mm.OnInfo = onInfo
		return mm
	case AlgorithmAlphaBeta:
		ab := NewAlphaBeta(e.eval, limits.Depth)
		ab.OnInfo = onInfo
		return ab
	default:
		sab := NewStockAlphaBeta(e.eval, limits.Depth, limits.MaxQuiescence)
		sab.OnInfo = onInfo
		return sab
	}
}

// Search finds the best move for the given position with the current limits.
func (e *Engine) Search(ctx context.Context, pos *board.Position, history []string) (Result, error) {
	return e.SearchWithLimits(ctx, pos, history, e.Limits())
}

// SearchWithLimits finds the best move with specific search limits. The book
// is consulted first when enabled. A cancelled search returns the best move
// found so far together with the context error.
func (e *Engine) SearchWithLimits(ctx context.Context, pos *board.Position, history []string, limits SearchLimits) (Result, error) {
	e.mu.Lock()
	book, ownBook, logger := e.book, e.ownBook, e.logger
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()
	defer cancel()

	if ownBook {
		if m, ok := book.Probe(pos, history); ok {
			logger.Debug().Str("move", pos.SAN(m)).Msg("book move")
			return Result{Move: m, FromBook: true}, nil
		}
	}

	strategy := e.Strategy(limits)
	logger.Debug().
		Str("strategy", strategy.Name()).
		Int("depth", limits.Depth).
		Str("fen", pos.FEN()).
		Msg("thinking")

	res, err := strategy.Execute(ctx, pos)

	ev := logger.Debug().
		Str("strategy", strategy.Name()).
		Str("move", res.Move.String()).
		Int("score", res.Score).
		Uint64("boards", res.Stats.BoardsEvaluated).
		Uint64("cutoffs", res.Stats.Cutoffs).
		Uint64("quiescence", res.Stats.QuiescenceExtensions).
		Dur("elapsed", res.Stats.Elapsed).
		Float64("boards_per_sec", rate(res.Stats.BoardsEvaluated, res.Stats.Elapsed)).
		Int("pawn_hits_permille", e.pawns.HitRate())
	if err != nil {
		ev = ev.AnErr("stopped", err)
	}
	ev.Msg("selects")
	return res, err
}

func rate(n uint64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Clear clears the pawn table.
func (e *Engine) Clear() {
	e.pawns.Clear()
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	return board.Perft(pos, depth)
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.eval.Evaluate(pos, 0)
}

// Breakdown returns the static evaluation of a position term by term.
func (e *Engine) Breakdown(pos *board.Position) Breakdown {
	return e.eval.Breakdown(pos, 0)
}

// ScoreToString converts a centipawn score to pawns, e.g. "-1.05".
func ScoreToString(score int) string {
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	cp := strconv.Itoa(centipawns)
	if centipawns < 10 {
		cp = "0" + cp
	}
	return sign + strconv.Itoa(pawns) + "." + cp
}
