// Package uci implements the Universal Chess Interface protocol on top of
// the search engine.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hailam/tigertooth/internal/board"
	"github.com/hailam/tigertooth/internal/engine"
	"github.com/hailam/tigertooth/internal/game"
)

// Engine identification.
const (
	Name   = "TigerTooth"
	Author = "TigerTooth developers"

	maxDepth = 8
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine *engine.Engine
	in     io.Reader
	out    io.Writer
	outMu  sync.Mutex
	logger zerolog.Logger

	game *game.Game

	// Search state
	searching  bool
	searchDone chan struct{}
	mover      board.Color
}

// New creates a protocol handler reading commands from in and writing
// replies to out.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *UCI {
	u := &UCI{
		engine: eng,
		in:     in,
		out:    out,
		logger: zerolog.Nop(),
		game:   game.New(nil),
	}
	eng.OnInfo = u.sendInfo
	return u
}

// SetLogger sets the logger for protocol diagnostics.
func (u *UCI) SetLogger(l zerolog.Logger) {
	u.logger = l
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// Run reads commands until quit, end of input or ctx is done. At end of
// input it waits for a running search to report its move.
func (u *UCI) Run(ctx context.Context) error {
	lines, scanErr, done := u.readLines()
	defer close(done)

	for {
		if err := ctx.Err(); err != nil {
			u.handleStop()
			return err
		}

		var line string
		select {
		case <-ctx.Done():
			u.handleStop()
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				u.waitSearch()
				return <-scanErr
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]
		u.logger.Debug().Str("command", line).Msg("received")

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.printf("readyok\n")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(ctx, args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.handleDisplay()
		case "eval":
			u.handleEval()
		case "perft":
			u.handlePerft(args)
		case "undo":
			u.handleUndo()
		default:
			u.printf("info string unknown command %s\n", cmd)
		}
	}
}

// readLines scans input on its own goroutine so Run can watch ctx while a
// read blocks. The scan error is sent once lines is closed. Closing done
// releases the goroutine when Run returns first.
func (u *UCI) readLines() (<-chan string, <-chan error, chan struct{}) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(u.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()
	return lines, scanErr, done
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	limits := u.engine.Limits()
	u.printf("id name %s\n", Name)
	u.printf("id author %s\n", Author)
	u.printf("\n")
	u.printf("option name Depth type spin default %d min 1 max %d\n", limits.Depth, maxDepth)
	u.printf("option name Quiescence type spin default %d min 0 max 100000\n", limits.MaxQuiescence)
	u.printf("option name Algorithm type combo default %s var minimax var alphabeta var stock\n", u.engine.Algorithm())
	u.printf("option name OwnBook type check default %t\n", u.engine.OwnBook())
	u.printf("uciok\n")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.game = game.New(nil)
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// An invalid command leaves the current game unchanged.
func (u *UCI) handlePosition(args []string) {
	g, err := parsePosition(args)
	if err != nil {
		u.printf("info string %v\n", err)
		return
	}
	u.handleStop()
	u.game = g
}

func parsePosition(args []string) (*game.Game, error) {
	if len(args) == 0 {
		return nil, errors.New("position: missing startpos or fen")
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var g *game.Game
	switch args[0] {
	case "startpos":
		g = game.New(nil)
	case "fen":
		pos, err := board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		g = game.New(pos)
	default:
		return nil, fmt.Errorf("position: unknown keyword %q", args[0])
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			if err := g.PlayMove(s); err != nil {
				return nil, fmt.Errorf("position: %w", err)
			}
		}
	}
	return g, nil
}

// parseLimits reads "go" arguments over the engine's configured limits.
// Time controls are accepted and ignored; the search is bounded by depth.
func parseLimits(args []string, limits engine.SearchLimits) engine.SearchLimits {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				if d, err := strconv.Atoi(args[i+1]); err == nil && d > 0 {
					limits.Depth = min(d, maxDepth)
				}
				i++
			}
		case "quiescence":
			if i+1 < len(args) {
				if q, err := strconv.Atoi(args[i+1]); err == nil && q >= 0 {
					limits.MaxQuiescence = q
				}
				i++
			}
		}
	}
	return limits
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(ctx context.Context, args []string) {
	u.handleStop()

	limits := parseLimits(args, u.engine.Limits())
	pos := u.game.Position()
	history := u.game.History()

	u.searching = true
	u.searchDone = make(chan struct{})
	u.mover = pos.Mover()

	go func() {
		defer close(u.searchDone)

		res, err := u.engine.SearchWithLimits(ctx, pos, history, limits)
		if err != nil && !errors.Is(err, context.Canceled) {
			u.logger.Warn().Err(err).Msg("search ended early")
		}
		if res.FromBook {
			u.printf("info string book move %s\n", pos.SAN(res.Move))
		}
		u.printf("bestmove %s\n", res.Move)
	}()
}

// sendInfo outputs a root move report in UCI format. Scores are given from
// the side to move's point of view.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		fmt.Sprintf("currmove %s", info.Move),
		fmt.Sprintf("currmovenumber %d", info.MoveNumber),
	}
	if !info.BestMove.IsNull() {
		score := info.BestScore
		if u.mover == board.Black {
			score = -score
		}
		parts = append(parts, fmt.Sprintf("score cp %d", score))
	}
	parts = append(parts,
		fmt.Sprintf("nodes %d", info.BoardsEvaluated),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	)
	if !info.BestMove.IsNull() {
		parts = append(parts, "pv "+info.BestMove.String())
	}
	if info.Illegal {
		parts = append(parts, "string illegal")
	}
	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.searching {
		u.engine.Stop()
		u.waitSearch()
	}
}

func (u *UCI) waitSearch() {
	if u.searching {
		<-u.searchDone
		u.searching = false
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value []string
	var target *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if target != nil {
				*target = append(*target, arg)
			}
		}
	}
	if err := u.setOption(strings.Join(name, " "), strings.Join(value, " ")); err != nil {
		u.printf("info string %v\n", err)
	}
}

func (u *UCI) setOption(name, value string) error {
	switch strings.ToLower(name) {
	case "depth":
		d, err := strconv.Atoi(value)
		if err != nil || d < 1 || d > maxDepth {
			return fmt.Errorf("setoption: invalid depth %q", value)
		}
		limits := u.engine.Limits()
		limits.Depth = d
		u.engine.SetLimits(limits)
	case "quiescence":
		q, err := strconv.Atoi(value)
		if err != nil || q < 0 {
			return fmt.Errorf("setoption: invalid quiescence %q", value)
		}
		limits := u.engine.Limits()
		limits.MaxQuiescence = q
		u.engine.SetLimits(limits)
	case "algorithm":
		a, err := engine.ParseAlgorithm(value)
		if err != nil {
			return fmt.Errorf("setoption: %w", err)
		}
		u.engine.SetAlgorithm(a)
	case "ownbook":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("setoption: invalid OwnBook %q", value)
		}
		u.engine.SetOwnBook(on)
	default:
		return fmt.Errorf("setoption: unknown option %q", name)
	}
	u.logger.Debug().Str("option", name).Str("value", value).Msg("option set")
	return nil
}

// handleDisplay prints the board and its FEN.
func (u *UCI) handleDisplay() {
	pos := u.game.Position()
	u.printf("%s", pos)
	u.printf("Fen: %s\n", pos.FEN())
	if moves := u.game.SANs(); len(moves) > 0 {
		u.printf("Moves: %s\n", strings.Join(moves, " "))
	}
}

// handleEval prints the static evaluation term by term.
func (u *UCI) handleEval() {
	b := u.engine.Breakdown(u.game.Position())
	row := func(name string, w, bl int) {
		u.printf("%-15s %8d %8d %8d\n", name, w, bl, w-bl)
	}
	u.printf("%-15s %8s %8s %8s\n", "Term", "White", "Black", "Total")
	row("Mobility", b.White.Mobility, b.Black.Mobility)
	row("King threats", b.White.KingThreats, b.Black.KingThreats)
	row("Attacks", b.White.Attacks, b.Black.Attacks)
	row("Castle", b.White.Castle, b.Black.Castle)
	row("Pieces", b.White.Pieces, b.Black.Pieces)
	row("Pawn structure", b.White.PawnStructure, b.Black.PawnStructure)
	row("King tropism", b.White.KingTropism, b.Black.KingTropism)
	row("Rook structure", b.White.RookStructure, b.Black.RookStructure)
	u.printf("Score: %s\n", engine.ScoreToString(b.Score()))
}

// handlePerft runs a perft test with per-move counts.
func (u *UCI) handlePerft(args []string) {
	depth := 1
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			u.printf("info string perft: invalid depth %q\n", args[0])
			return
		}
		depth = d
	}

	divide := board.PerftDivide(u.game.Position(), depth)
	moves := make([]string, 0, len(divide))
	for m := range divide {
		moves = append(moves, m)
	}
	sort.Strings(moves)

	var total uint64
	for _, m := range moves {
		u.printf("%s: %d\n", m, divide[m])
		total += divide[m]
	}
	u.printf("\nNodes searched: %d\n", total)
}

// handleUndo takes back the last move of the current game.
func (u *UCI) handleUndo() {
	u.handleStop()
	if !u.game.Undo() {
		u.printf("info string nothing to undo\n")
	}
}
