package board

// Perft counts the leaf nodes of the legal move tree to the given depth.
// It is the standard way to verify move generation correctness.
func Perft(pos *Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	player := pos.CurrentPlayer()
	var nodes uint64
	for _, m := range player.LegalMoves() {
		t := player.MakeMove(m)
		if !t.Status.IsDone() {
			continue
		}
		if depth == 1 {
			nodes++
			continue
		}
		nodes += Perft(t.To, depth-1)
	}
	return nodes
}

// PerftDivide returns the perft count below each completing root move,
// keyed by coordinate notation.
func PerftDivide(pos *Position, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth < 1 {
		return out
	}
	player := pos.CurrentPlayer()
	for _, m := range player.LegalMoves() {
		t := player.MakeMove(m)
		if t.Status.IsDone() {
			out[m.String()] = Perft(t.To, depth-1)
		}
	}
	return out
}
