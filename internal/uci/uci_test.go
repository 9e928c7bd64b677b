package uci

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hailam/tigertooth/internal/board"
	"github.com/hailam/tigertooth/internal/book"
	"github.com/hailam/tigertooth/internal/engine"
	"github.com/hailam/tigertooth/internal/storage"
)

func run(t *testing.T, eng *engine.Engine, input string) string {
	t.Helper()
	var out bytes.Buffer
	u := New(eng, strings.NewReader(input), &out)
	if err := u.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := run(t, engine.NewEngine(1), "uci\nisready\nquit\n")
	for _, want := range []string{
		"id name TigerTooth",
		"option name Depth type spin default 3",
		"option name Algorithm type combo default stock",
		"uciok",
		"readyok",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGoFindsMate(t *testing.T) {
	input := "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1\ngo depth 2\n"
	out := run(t, engine.NewEngine(1), input)

	if !strings.HasSuffix(out, "bestmove a1a8\n") {
		t.Errorf("expected bestmove a1a8, got:\n%s", out)
	}
	if !strings.Contains(out, "info depth 2 currmove") {
		t.Errorf("no currmove info:\n%s", out)
	}
	if !strings.Contains(out, "score cp") {
		t.Errorf("no score in info:\n%s", out)
	}
}

func TestPositionMovesAndUndo(t *testing.T) {
	input := "position startpos moves e2e4\nd\nundo\nd\nundo\n"
	out := run(t, engine.NewEngine(1), input)

	afterE4 := "Fen: rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	start := "Fen: " + board.StartFEN
	if i, j := strings.Index(out, afterE4), strings.LastIndex(out, start); i < 0 || j < i {
		t.Errorf("expected e4 position then start position:\n%s", out)
	}
	if !strings.Contains(out, "Moves: e4") {
		t.Errorf("move list missing:\n%s", out)
	}
	if !strings.Contains(out, "info string nothing to undo") {
		t.Errorf("second undo should report nothing to undo:\n%s", out)
	}
}

func TestInvalidPositionKeepsGame(t *testing.T) {
	input := strings.Join([]string{
		"position startpos moves e2e4",
		"position startpos moves e2e5",
		"position fen not-a-fen",
		"position sideways",
		"d",
	}, "\n") + "\n"
	out := run(t, engine.NewEngine(1), input)

	if n := strings.Count(out, "info string position:"); n != 3 {
		t.Errorf("expected 3 position errors, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, "4P3") {
		t.Errorf("game should still hold 1. e4:\n%s", out)
	}
}

func TestPerft(t *testing.T) {
	out := run(t, engine.NewEngine(1), "position startpos\nperft 2\nperft x\n")
	if !strings.Contains(out, "Nodes searched: 400") {
		t.Errorf("perft 2 output:\n%s", out)
	}
	if !strings.Contains(out, "e2e4: 20") {
		t.Errorf("divide missing e2e4:\n%s", out)
	}
	if !strings.Contains(out, "info string perft: invalid depth") {
		t.Errorf("bad depth not reported:\n%s", out)
	}
}

func TestEval(t *testing.T) {
	out := run(t, engine.NewEngine(1), "eval\n")
	if !strings.Contains(out, "Score: 0.00") {
		t.Errorf("start position eval:\n%s", out)
	}
	if !strings.Contains(out, "Mobility") {
		t.Errorf("breakdown missing terms:\n%s", out)
	}
}

func TestSetOption(t *testing.T) {
	eng := engine.NewEngine(1)
	input := strings.Join([]string{
		"setoption name Depth value 2",
		"setoption name Quiescence value 0",
		"setoption name Algorithm value minimax",
		"setoption name Depth value 99",
		"setoption name Algorithm value random",
		"setoption name Hash value 64",
	}, "\n") + "\n"
	out := run(t, eng, input)

	want := engine.SearchLimits{Depth: 2, MaxQuiescence: 0}
	if diff := cmp.Diff(want, eng.Limits()); diff != "" {
		t.Errorf("limits (-want +got):\n%s", diff)
	}
	if eng.Algorithm() != engine.AlgorithmMiniMax {
		t.Errorf("algorithm = %v, want minimax", eng.Algorithm())
	}
	if n := strings.Count(out, "info string setoption:"); n != 3 {
		t.Errorf("expected 3 setoption errors, got %d:\n%s", n, out)
	}
}

type fixedBook struct{ san string }

func (b fixedBook) Probe(pos *board.Position, history []string) (board.Move, bool) {
	m, err := board.ParseSAN(pos, b.san)
	return m, err == nil
}

func TestGoUsesBook(t *testing.T) {
	eng := engine.NewEngine(1)
	eng.SetBook(fixedBook{san: "e4"})

	out := run(t, eng, "position startpos\ngo\nquit\n")
	if !strings.Contains(out, "info string book move e4\nbestmove e2e4\n") {
		t.Errorf("book move not played:\n%s", out)
	}

	out = run(t, eng, "setoption name OwnBook value false\nposition startpos\ngo depth 1\n")
	if strings.Contains(out, "book move") {
		t.Errorf("book used after OwnBook false:\n%s", out)
	}
	if !strings.Contains(out, "bestmove ") {
		t.Errorf("no bestmove:\n%s", out)
	}
}

func TestGoOnTerminalPosition(t *testing.T) {
	// Fool's mate: white is checkmated.
	fen := "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 0 1"
	out := run(t, engine.NewEngine(1), "position fen "+fen+"\ngo depth 2\n")
	if !strings.HasSuffix(out, "bestmove 0000\n") {
		t.Errorf("expected null bestmove:\n%s", out)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	u := New(engine.NewEngine(1), strings.NewReader("isready\n"), &out)
	if err := u.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run err = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestParseLimits(t *testing.T) {
	base := engine.SearchLimits{Depth: 3, MaxQuiescence: 5000}
	tests := []struct {
		args []string
		want engine.SearchLimits
	}{
		{nil, base},
		{[]string{"depth", "2"}, engine.SearchLimits{Depth: 2, MaxQuiescence: 5000}},
		{[]string{"depth", "50"}, engine.SearchLimits{Depth: maxDepth, MaxQuiescence: 5000}},
		{[]string{"quiescence", "0", "depth", "1"}, engine.SearchLimits{Depth: 1, MaxQuiescence: 0}},
		{[]string{"wtime", "1000", "depth", "x"}, base},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, "_"), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseLimits(tt.args, base)); diff != "" {
				t.Errorf("parseLimits (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBookSkippedForFENPosition(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "book"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, err := store.AddGame("1-0", []string{"e4", "e5", "Nf3", "Nc6"}); err != nil {
		t.Fatal(err)
	}

	eng := engine.NewEngine(1)
	eng.SetBook(book.New(store))

	out := run(t, eng, "position fen 4k3/8/8/8/3q4/8/4P3/4K3 w - - 0 1\ngo depth 2\n")
	if strings.Contains(out, "info string book move") {
		t.Errorf("book answered a position set up from FEN:\n%s", out)
	}
	if !strings.Contains(out, "bestmove ") {
		t.Errorf("no bestmove:\n%s", out)
	}

	out = run(t, eng, "position startpos\ngo depth 2\n")
	if !strings.Contains(out, "info string book move e4\nbestmove e2e4\n") {
		t.Errorf("book not used from the start position:\n%s", out)
	}
}

func TestRunStopsOnCancelWhileReading(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	u := New(engine.NewEngine(1), pr, &out)

	errc := make(chan error, 1)
	go func() { errc <- u.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel with no input pending")
	}
}
