package board

import "testing"

const castleFEN = "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"

func castles(p *Player) (kingSide, queenSide bool) {
	for _, m := range p.LegalMoves() {
		switch m.Kind() {
		case KingSideCastle:
			kingSide = true
		case QueenSideCastle:
			queenSide = true
		}
	}
	return kingSide, queenSide
}

// play parses fen and plays the coordinate moves in order.
func play(t *testing.T, fen string, moves ...string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	for _, s := range moves {
		m, err := ParseMove(pos, s)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", s, err)
		}
		tr := pos.CurrentPlayer().MakeMove(m)
		if !tr.Status.IsDone() {
			t.Fatalf("%s: status %v", s, tr.Status)
		}
		pos = tr.To
	}
	return pos
}

func TestCastlingConditions(t *testing.T) {
	tests := []struct {
		name      string
		pos       func(t *testing.T) *Position
		kingSide  bool
		queenSide bool
	}{
		{"both available", func(t *testing.T) *Position { return play(t, castleFEN) }, true, true},
		{"king has moved", func(t *testing.T) *Position {
			return play(t, castleFEN, "e1f1", "a8b8", "f1e1", "b8a8")
		}, false, false},
		{"rook has moved", func(t *testing.T) *Position {
			return play(t, castleFEN, "h1h2", "a8b8", "h2h1", "b8a8")
		}, false, true},
		{"intervening square occupied", func(t *testing.T) *Position {
			return play(t, "r3k2r/8/8/8/8/8/8/R3KB1R w KQkq - 0 1")
		}, false, true},
		{"queen side knight in the way", func(t *testing.T) *Position {
			return play(t, "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1")
		}, true, false},
		{"transit square attacked", func(t *testing.T) *Position {
			return play(t, "r3kr2/8/8/8/8/8/8/R3K2R w KQq - 0 1")
		}, false, true},
		{"landing square attacked", func(t *testing.T) *Position {
			return play(t, "r3k1r1/8/8/8/8/8/8/R3K2R w KQq - 0 1")
		}, false, true},
		{"landing square covered by a pawn", func(t *testing.T) *Position {
			return play(t, "r3k2r/8/8/8/8/8/7p/R3K2R w KQkq - 0 1")
		}, false, true},
		{"queen side rook square attacked only", func(t *testing.T) *Position {
			return play(t, "1r2k3/8/8/8/8/8/8/R3K2R w KQ - 0 1")
		}, true, true},
		{"in check", func(t *testing.T) *Position {
			return play(t, "4k3/4r3/8/8/8/8/8/R3K2R w KQ - 0 1")
		}, false, false},
		{"no rights", func(t *testing.T) *Position {
			return play(t, "r3k2r/8/8/8/8/8/8/R3K2R w kq - 0 1")
		}, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := tc.pos(t)
			ks, qs := castles(pos.WhitePlayer())
			if ks != tc.kingSide || qs != tc.queenSide {
				t.Errorf("castles = (O-O %v, O-O-O %v), want (%v, %v)", ks, qs, tc.kingSide, tc.queenSide)
			}
		})
	}
}

func TestPawnTrapVeto(t *testing.T) {
	pos := play(t, "r3k2r/8/8/8/8/8/6p1/R3K2R w KQkq - 0 1")
	white := pos.WhitePlayer()
	if !white.pawnTrapped(G1) {
		t.Error("pawn on g2 should trap the king-side landing square")
	}
	if white.pawnTrapped(C1) {
		t.Error("no pawn on c2, queen side should not be trapped")
	}
	if ks, _ := castles(white); ks {
		t.Error("king-side castle offered with an enemy pawn on g2")
	}

	black := play(t, "r3k2r/2P5/8/8/8/8/8/R3K2R b KQkq - 0 1").BlackPlayer()
	if !black.pawnTrapped(C8) {
		t.Error("pawn on c7 should trap the black queen-side landing square")
	}
	if _, qs := castles(black); qs {
		t.Error("queen-side castle offered with an enemy pawn on c7")
	}
}

func TestCastleExecution(t *testing.T) {
	pos := play(t, castleFEN, "e1g1")

	king := pos.PieceAt(G1)
	if king.Type != King || king.Color != White || !king.Castled || king.FirstMove {
		t.Errorf("g1 = %#v, want a castled white king", king)
	}
	if rook := pos.PieceAt(F1); rook.Type != Rook || rook.Color != White {
		t.Errorf("f1 = %#v, want the white rook", rook)
	}
	if pos.IsOccupied(H1) || pos.IsOccupied(E1) {
		t.Error("h1 and e1 should be empty after O-O")
	}
	white := pos.WhitePlayer()
	if !white.IsCastled() {
		t.Error("IsCastled = false after O-O")
	}
	if white.KingSideCastleCapable() || white.QueenSideCastleCapable() {
		t.Error("castle capability should be gone after castling")
	}
	if got := pos.CastlingRights(); got != BlackKingSideCastle|BlackQueenSideCastle {
		t.Errorf("CastlingRights = %s, want kq", got)
	}

	pos = play(t, castleFEN, "a1b1", "e8c8")
	if k := pos.PieceAt(C8); k.Type != King || !k.Castled {
		t.Errorf("c8 = %#v, want a castled black king", k)
	}
	if r := pos.PieceAt(D8); r.Type != Rook || r.Color != Black {
		t.Errorf("d8 = %#v, want the black rook", r)
	}
}

func TestCastleCapability(t *testing.T) {
	pos := play(t, castleFEN)
	if !pos.WhitePlayer().KingSideCastleCapable() || !pos.WhitePlayer().QueenSideCastleCapable() {
		t.Error("white should be castle capable on both sides")
	}

	// Capability ignores temporary obstacles such as attacks and blockers.
	pos = play(t, "r3kr2/8/8/8/8/8/8/RN2KB1R w KQq - 0 1")
	if !pos.WhitePlayer().KingSideCastleCapable() || !pos.WhitePlayer().QueenSideCastleCapable() {
		t.Error("blocked castles should still be capable")
	}

	// Capturing the corner rook removes the capability.
	pos = play(t, "r3k2r/8/8/8/8/8/6b1/R3K2R b KQkq - 0 1", "g2h1")
	if pos.WhitePlayer().KingSideCastleCapable() {
		t.Error("king side capable without a rook on h1")
	}
	if !pos.WhitePlayer().QueenSideCastleCapable() {
		t.Error("queen side should remain capable")
	}
}
