package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hailam/tigertooth/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

// mirrorFEN flips the board vertically and swaps the colors.
func mirrorFEN(fen string) string {
	fields := strings.Fields(fen)
	swap := func(s string) string {
		var sb strings.Builder
		for _, c := range s {
			switch {
			case c >= 'a' && c <= 'z':
				sb.WriteRune(c - 'a' + 'A')
			case c >= 'A' && c <= 'Z':
				sb.WriteRune(c - 'A' + 'a')
			default:
				sb.WriteRune(c)
			}
		}
		return sb.String()
	}

	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	side := "w"
	if fields[1] == "w" {
		side = "b"
	}
	castling := fields[2]
	if castling != "-" {
		castling = swap(castling)
	}
	return strings.Join([]string{swap(strings.Join(ranks, "/")), side, castling, "-", "0", "1"}, " ")
}

// Queenless positions: the queen tables are not mirror images.
var mirrorCorpus = []string{
	"r3k2r/p1p1pppp/1pn2n2/3p4/4P3/2N5/PPPP1PPP/R1B1K2R w KQkq - 0 1",
	"8/5k2/3p4/1p1Pp2p/pP2Pp1P/P4P1K/8/8 b - - 0 1",
	"r1b1k2r/pppp1ppp/2n2n2/2b1p3/4P3/2N2N2/PPPP1PPP/R1B1KB1R w KQkq - 0 1",
	"4k3/8/8/8/4P3/4P3/P7/4K3 w - - 0 1",
}

func TestEvaluateStartPosition(t *testing.T) {
	eval := NewStandardEvaluator(NewPawnTable(1))
	pos := board.NewPosition()

	if got := eval.Evaluate(pos, 0); got != 0 {
		t.Errorf("Evaluate(start) = %d, want 0", got)
	}

	want := Terms{
		Mobility:      200,
		Castle:        CastleCapableBonus,
		Pieces:        23995,
		KingTropism:   eval.Breakdown(pos, 0).White.KingTropism,
		RookStructure: 0,
	}
	if diff := cmp.Diff(want, eval.Breakdown(pos, 0).White); diff != "" {
		t.Errorf("white terms mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateMirrored(t *testing.T) {
	eval := NewStandardEvaluator(nil)
	for _, fen := range mirrorCorpus {
		t.Run(fen, func(t *testing.T) {
			pos := mustFEN(t, fen)
			mirrored := mustFEN(t, mirrorFEN(fen))
			a, b := eval.Evaluate(pos, 0), eval.Evaluate(mirrored, 0)
			if a != -b {
				t.Errorf("Evaluate = %d, mirrored = %d; want negation", a, b)
			}
		})
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eval := NewStandardEvaluator(NewPawnTable(1))
	pos := mustFEN(t, mirrorCorpus[0])
	first := eval.Evaluate(pos, 0)
	for i := 0; i < 3; i++ {
		if got := eval.Evaluate(pos, 0); got != first {
			t.Fatalf("Evaluate call %d = %d, want %d", i+2, got, first)
		}
	}
	if got := NewStandardEvaluator(nil).Evaluate(pos, 0); got != first {
		t.Errorf("uncached Evaluate = %d, cached = %d", got, first)
	}
}

func TestBreakdownMatchesEvaluate(t *testing.T) {
	eval := NewStandardEvaluator(nil)
	for _, fen := range mirrorCorpus {
		pos := mustFEN(t, fen)
		for _, depth := range []int{0, 2} {
			if b, e := eval.Breakdown(pos, depth).Score(), eval.Evaluate(pos, depth); b != e {
				t.Errorf("%s depth %d: Breakdown = %d, Evaluate = %d", fen, depth, b, e)
			}
		}
	}
}

func TestPawnStructure(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want int
	}{
		{"start", board.StartFEN, 0},
		{"doubled and isolated", "4k3/8/8/8/4P3/4P3/P7/4K3 w - - 0 1", 2*DoubledPawnPenalty + 3*IsolatedPawnPenalty},
		{"connected", "4k3/8/8/8/8/8/3PP3/4K3 w - - 0 1", 0},
		{"no pawns", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", 0},
	}
	eval := NewStandardEvaluator(NewPawnTable(1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eval.Breakdown(mustFEN(t, tt.fen), 0).White.PawnStructure
			if got != tt.want {
				t.Errorf("PawnStructure = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKingThreats(t *testing.T) {
	eval := NewStandardEvaluator(nil)

	mated := mustFEN(t, "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	if got := eval.Breakdown(mated, 0).White.KingThreats; got != CheckMateBonus {
		t.Errorf("mate at depth 0 = %d, want %d", got, CheckMateBonus)
	}
	if got := eval.Breakdown(mated, 2).White.KingThreats; got != CheckMateBonus*200 {
		t.Errorf("mate at depth 2 = %d, want %d", got, CheckMateBonus*200)
	}

	check := mustFEN(t, "4k3/8/8/8/8/8/8/4R1K1 b - - 0 1")
	if got := eval.Breakdown(check, 0).White.KingThreats; got != CheckBonus {
		t.Errorf("check = %d, want %d", got, CheckBonus)
	}
}

func TestInformationalTerms(t *testing.T) {
	eval := NewStandardEvaluator(nil)
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	b := eval.Breakdown(pos, 0)

	if b.White.RookStructure != RookOpenFileBonus {
		t.Errorf("white rook structure = %d, want %d", b.White.RookStructure, RookOpenFileBonus)
	}
	// Nearest black reach to e1 is the king on e7, six squares away.
	if b.White.KingTropism != 2000*6 {
		t.Errorf("white tropism = %d, want %d", b.White.KingTropism, 2000*6)
	}
	// Nearest white reach to e8 is the rook on the a-file, four files away.
	if b.Black.KingTropism != 50*4 {
		t.Errorf("black tropism = %d, want %d", b.Black.KingTropism, 50*4)
	}

	plain := b
	plain.White.KingTropism, plain.White.RookStructure = 0, 0
	plain.Black.KingTropism, plain.Black.RookStructure = 0, 0
	if plain.Score() != b.Score() {
		t.Error("informational terms changed the score")
	}
}

func TestPawnHashTable(t *testing.T) {
	pt := NewPawnTable(1) // 1MB

	pos := board.NewPosition()
	key := pos.PawnKey(board.White)

	// First probe should miss
	if _, found := pt.Probe(key); found {
		t.Error("Expected cache miss on first probe")
	}

	// Store and retrieve
	pt.Store(key, -15)

	score, found := pt.Probe(key)
	if !found {
		t.Error("Expected cache hit after store")
	}
	if score != -15 {
		t.Errorf("Wrong value: got %d, want -15", score)
	}
	if pt.HitRate() != 500 {
		t.Errorf("HitRate = %d, want 500", pt.HitRate())
	}

	// Verify PawnKey changes when pawns move
	m, err := board.ParseMove(pos, "e2e4")
	if err != nil {
		t.Fatal(err)
	}
	next := pos.CurrentPlayer().MakeMove(m).To
	if next.PawnKey(board.White) == key {
		t.Error("PawnKey should change after a pawn move")
	}
	if next.PawnKey(board.Black) != pos.PawnKey(board.Black) {
		t.Error("black PawnKey should not change after a white pawn move")
	}

	pt.Clear()
	if _, found := pt.Probe(key); found {
		t.Error("Expected miss after Clear")
	}
}

func TestMVVLVA(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3q4/4P3/8/8/4K1N1 w - - 0 1")
	capture, err := board.ParseMove(pos, "e4d5")
	if err != nil {
		t.Fatal(err)
	}
	quiet, err := board.ParseMove(pos, "g1f3")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := MVVLVA(capture), (900-100+20000)*100; got != want {
		t.Errorf("MVVLVA(exd5) = %d, want %d", got, want)
	}
	if got, want := MVVLVA(quiet), 20000-320; got != want {
		t.Errorf("MVVLVA(Nf3) = %d, want %d", got, want)
	}
}

func TestOrdering(t *testing.T) {
	t.Run("standard puts castles first", func(t *testing.T) {
		moves := OrderMoves(mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"), Standard)
		if !moves[0].IsCastling() || !moves[1].IsCastling() {
			t.Errorf("first moves = %v, %v; want castles", moves[0], moves[1])
		}
	})

	t.Run("standard sorts captures by victim", func(t *testing.T) {
		moves := OrderMoves(mustFEN(t, "4k3/8/8/2q1r3/3P4/8/8/7K w - - 0 1"), Standard)
		if got := moves[0].String(); got != "d4c5" {
			t.Errorf("first move = %s, want d4c5", got)
		}
		if got := moves[1].String(); got != "d4e5" {
			t.Errorf("second move = %s, want d4e5", got)
		}
	})

	t.Run("expensive puts checks first", func(t *testing.T) {
		pos := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
		moves := OrderMoves(pos, Expensive)
		next := pos.CurrentPlayer().MakeMove(moves[0]).To
		if !next.CurrentPlayer().InCheck() {
			t.Errorf("first move %s does not give check", moves[0])
		}
	})

	t.Run("smart moves threatened pieces first", func(t *testing.T) {
		moves := OrderMoves(mustFEN(t, "4k3/8/8/3p4/4N3/8/8/4K3 w - - 0 1"), Smart)
		if moves[0].Piece().Type != board.Knight {
			t.Errorf("first move %s, want a knight move", moves[0])
		}
	})

	t.Run("stable", func(t *testing.T) {
		pos := board.NewPosition()
		a, b := OrderMoves(pos, Standard), OrderMoves(pos, Standard)
		for i := range a {
			if !a[i].Equal(b[i]) {
				t.Fatalf("move %d differs: %s vs %s", i, a[i], b[i])
			}
		}
	})
}

func strategies(eval Evaluator, depth int) []Strategy {
	return []Strategy{
		NewMiniMax(eval, depth),
		NewAlphaBeta(eval, depth),
		NewStockAlphaBeta(eval, depth, DefaultMaxQuiescence),
	}
}

func TestMateInOne(t *testing.T) {
	pos := mustFEN(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	eval := NewStandardEvaluator(NewPawnTable(1))
	for _, depth := range []int{1, 2} {
		for _, s := range strategies(eval, depth) {
			res, err := s.Execute(context.Background(), pos)
			if err != nil {
				t.Fatalf("%s depth %d: %v", s.Name(), depth, err)
			}
			if got := res.Move.String(); got != "a1a8" {
				t.Errorf("%s depth %d: move = %s, want a1a8", s.Name(), depth, got)
			}
		}
	}
}

func TestTerminalRoot(t *testing.T) {
	eval := NewStandardEvaluator(nil)
	for _, fen := range []string{
		"k7/2Q5/1K6/8/8/8/8/8 b - - 0 1",    // stalemate
		"R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", // checkmate
	} {
		pos := mustFEN(t, fen)
		for _, s := range strategies(eval, 2) {
			res, err := s.Execute(context.Background(), pos)
			if err != nil {
				t.Fatalf("%s: %v", s.Name(), err)
			}
			if !res.Move.IsNull() || res.Score != 0 {
				t.Errorf("%s on %s: got %s score %d, want null move and 0", s.Name(), fen, res.Move, res.Score)
			}
		}
	}
}

func TestAlphaBetaMatchesMiniMax(t *testing.T) {
	tests := []struct {
		fen   string
		depth int
		slow  bool
	}{
		{board.StartFEN, 1, false},
		{board.StartFEN, 2, false},
		{board.StartFEN, 3, true},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 1, false},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, true},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3, false},
		{"4r1k1/8/8/3q4/4B3/4P3/8/3RK3 w - - 0 1", 2, false},
		{"4r1k1/8/8/3q4/4B3/4P3/8/3RK3 w - - 0 1", 3, true},
		{"8/5k2/3p4/1p1Pp2p/pP2Pp1P/P4P1K/8/8 b - - 0 1", 3, false},
	}
	eval := NewStandardEvaluator(NewPawnTable(1))
	for _, tt := range tests {
		if tt.slow && testing.Short() {
			continue
		}
		pos := mustFEN(t, tt.fen)
		mm, err := NewMiniMax(eval, tt.depth).Execute(context.Background(), pos)
		if err != nil {
			t.Fatal(err)
		}
		ab, err := NewAlphaBeta(eval, tt.depth).Execute(context.Background(), pos)
		if err != nil {
			t.Fatal(err)
		}
		if !ab.Move.Equal(mm.Move) || ab.Score != mm.Score {
			t.Errorf("%s depth %d: alphabeta %s (%d), minimax %s (%d)",
				tt.fen, tt.depth, ab.Move, ab.Score, mm.Move, mm.Score)
		}
		if tt.depth > 1 && ab.Stats.BoardsEvaluated > mm.Stats.BoardsEvaluated {
			t.Errorf("%s depth %d: alphabeta evaluated %d boards, minimax %d",
				tt.fen, tt.depth, ab.Stats.BoardsEvaluated, mm.Stats.BoardsEvaluated)
		}
		t.Logf("%s depth %d: %s %d (minimax %d boards, alphabeta %d boards, %d cutoffs)",
			tt.fen, tt.depth, mm.Move, mm.Score, mm.Stats.BoardsEvaluated, ab.Stats.BoardsEvaluated, ab.Stats.Cutoffs)
	}
}

func TestQuiescenceExtension(t *testing.T) {
	// The king sits on h8 so Bxd5 is not check and Rxe3+ stays playable.
	pos := mustFEN(t, "4r2k/8/8/3q4/4B3/4P3/8/3RK3 w - - 0 1")
	eval := NewStandardEvaluator(nil)

	res, err := NewStockAlphaBeta(eval, 2, DefaultMaxQuiescence).Execute(context.Background(), pos)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.QuiescenceExtensions == 0 {
		t.Error("expected quiescence extensions after Bxd5 Rxe3+")
	}
	if got := res.Move.String(); got != "e4d5" {
		t.Errorf("best move = %s, want e4d5", got)
	}

	res, err = NewStockAlphaBeta(eval, 2, 0).Execute(context.Background(), pos)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.QuiescenceExtensions != 0 {
		t.Errorf("extensions with zero budget = %d", res.Stats.QuiescenceExtensions)
	}
}

func TestSearchInfo(t *testing.T) {
	pos := board.NewPosition()
	eval := NewStandardEvaluator(nil)

	var infos []SearchInfo
	ab := NewAlphaBeta(eval, 1)
	ab.OnInfo = func(si SearchInfo) { infos = append(infos, si) }
	res, err := ab.Execute(context.Background(), pos)
	if err != nil {
		t.Fatal(err)
	}

	if len(infos) != 20 {
		t.Fatalf("got %d info callbacks, want 20", len(infos))
	}
	last := infos[len(infos)-1]
	if last.MoveNumber != 20 || last.MoveCount != 20 || last.Strategy != "AlphaBeta" {
		t.Errorf("last info = %+v", last)
	}
	if !last.BestMove.Equal(res.Move) || last.BestScore != res.Score {
		t.Errorf("last info best %s (%d), result %s (%d)", last.BestMove, last.BestScore, res.Move, res.Score)
	}
}

func TestSearchInfoReportsIllegalRootMoves(t *testing.T) {
	// The pinned knight's moves all leave the king in check.
	pos := mustFEN(t, "4k3/4r3/8/8/8/8/4N3/4K3 w - - 0 1")
	mm := NewMiniMax(NewStandardEvaluator(nil), 1)
	illegal := 0
	mm.OnInfo = func(si SearchInfo) {
		if si.Illegal {
			illegal++
		}
	}
	if _, err := mm.Execute(context.Background(), pos); err != nil {
		t.Fatal(err)
	}
	if illegal != 6 {
		t.Errorf("illegal root moves reported = %d, want 6", illegal)
	}
}

func TestCancelledSearch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pos := board.NewPosition()
	for _, s := range strategies(NewStandardEvaluator(nil), 3) {
		res, err := s.Execute(ctx, pos)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", s.Name(), err)
		}
		if res.Move.IsNull() {
			t.Errorf("%s: cancelled search returned the null move", s.Name())
			continue
		}
		if !pos.CurrentPlayer().MakeMove(res.Move).Status.IsDone() {
			t.Errorf("%s: cancelled search returned unplayable %s", s.Name(), res.Move)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, a := range []Algorithm{AlgorithmMiniMax, AlgorithmAlphaBeta, AlgorithmStock} {
		got, err := ParseAlgorithm(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAlgorithm(%q) = %v, %v", a.String(), got, err)
		}
	}
	if _, err := ParseAlgorithm("mcts"); err == nil {
		t.Error("ParseAlgorithm(mcts) should fail")
	}
}

type fixedBook struct {
	move string
}

func (b fixedBook) Probe(pos *board.Position, history []string) (board.Move, bool) {
	m, err := board.ParseMove(pos, b.move)
	return m, err == nil
}

func TestEngineSearch(t *testing.T) {
	eng := NewEngine(1)
	eng.SetDifficulty(Easy)

	res, err := eng.Search(context.Background(), board.NewPosition(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Move.IsNull() || res.FromBook {
		t.Errorf("Search = %+v", res)
	}
	t.Logf("Best move: %s", res.Move)

	eng.SetBook(fixedBook{move: "d2d4"})
	res, err = eng.Search(context.Background(), board.NewPosition(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.FromBook || res.Move.String() != "d2d4" {
		t.Errorf("book search = %s (book %v), want d2d4 from book", res.Move, res.FromBook)
	}

	eng.SetOwnBook(false)
	res, err = eng.Search(context.Background(), board.NewPosition(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.FromBook {
		t.Error("book used after SetOwnBook(false)")
	}
}

func TestScoreToString(t *testing.T) {
	tests := map[int]string{
		0:    "0.00",
		5:    "0.05",
		125:  "1.25",
		-105: "-1.05",
		900:  "9.00",
	}
	for score, want := range tests {
		if got := ScoreToString(score); got != want {
			t.Errorf("ScoreToString(%d) = %q, want %q", score, got, want)
		}
	}
}
