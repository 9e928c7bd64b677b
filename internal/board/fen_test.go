package board

import (
	"errors"
	"testing"
)

var fenCorpus = []string{
	StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 1",
	"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
	"4k3/8/8/8/8/8/8/R3K3 w Q - 0 1",
	"r3k3/8/8/8/8/8/8/4K2R b Kq - 0 1",
}

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range fenCorpus {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.FEN(); got != fen {
			t.Errorf("FEN() = %q, want %q", got, fen)
		}

		again, err := ParseFEN(pos.FEN())
		if err != nil {
			t.Fatalf("re-parse %q: %v", pos.FEN(), err)
		}
		if again.Mover() != pos.Mover() || again.CastlingRights() != pos.CastlingRights() {
			t.Errorf("%q: mover or castling rights changed on round trip", fen)
		}
		for sq := A8; sq <= H1; sq++ {
			if !again.PieceAt(sq).Equal(pos.PieceAt(sq)) {
				t.Errorf("%q: square %s changed on round trip", fen, sq)
			}
		}
		if again.Hash() != pos.Hash() {
			t.Errorf("%q: hash changed on round trip", fen)
		}
	}
}

func TestFENCountersOptional(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -")
	if err != nil {
		t.Fatal(err)
	}
	if pos.FEN() != StartFEN {
		t.Errorf("FEN() = %q, want %q", pos.FEN(), StartFEN)
	}

	pos, err = ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 12 40")
	if err != nil {
		t.Fatal(err)
	}
	if pos.FEN() != StartFEN {
		t.Errorf("counters should be dropped, got %q", pos.FEN())
	}
}

func TestFENPieceFlags(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/4P3/8/3P4/R3K2R w Kq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		sq    Square
		first bool
	}{
		{D2, true},  // pawn on its start rank
		{E4, false}, // pawn that has advanced
		{H1, true},  // corner rook with the K right
		{A1, false}, // corner rook without the Q right
		{A8, true},
		{H8, false},
		{E1, true},
	}
	for _, tc := range tests {
		if got := pos.PieceAt(tc.sq).FirstMove; got != tc.first {
			t.Errorf("%s FirstMove = %v, want %v", tc.sq, got, tc.first)
		}
	}
	king := pos.PieceAt(E1)
	if !king.KingSideRight || king.QueenSideRight {
		t.Errorf("white king rights = (%v, %v), want (true, false)", king.KingSideRight, king.QueenSideRight)
	}
}

func TestFENErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"too few fields", "8/8/8/8/8/8/8/8 w"},
		{"seven ranks", "8/8/8/8/8/8/8 w - - 0 1"},
		{"long rank", "rnbqkbnrr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"short rank", "rnbqkbn/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"bad piece", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1"},
		{"missing king", "rnbq1bnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"two kings", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBKKBNR w KQkq - 0 1"},
		{"pawn on back rank", "rnbqkbnP/pppppppp/8/8/8/8/PPPPPPP1/RNBQKBNR w KQkq - 0 1"},
		{"bad side", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1"},
		{"bad castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkx - 0 1"},
		{"bad en passant", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq z9 0 1"},
		{"en passant wrong rank", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e4 0 1"},
		{"en passant without pawn", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq e3 0 1"},
		{"bad counter", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1"},
		{"side not to move in check", "4k3/8/8/8/8/8/4r3/4K3 b - - 0 1"},
		{"opponent in check", "4k3/4R3/8/8/8/8/8/4K3 w - - 0 1"},
		{"non-ascii piece", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQŋBNR w KQkq - 0 1"},
		{"too many fields", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 extra"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFEN(tc.fen)
			if !errors.Is(err, ErrInvalidFEN) {
				t.Errorf("ParseFEN(%q) error = %v, want ErrInvalidFEN", tc.fen, err)
			}
		})
	}
}
