package engine

import (
	"sort"

	"github.com/hailam/tigertooth/internal/board"
)

// Ordering selects the comparator used to sort moves before expansion.
type Ordering int

const (
	// NoOrdering keeps generation order.
	NoOrdering Ordering = iota
	// Smart puts moves of threatened pieces first, then captures, then
	// castles, then heavier movers.
	Smart
	// Standard puts castles first, then sorts by MVV-LVA.
	Standard
	// Expensive puts checking moves first, then applies Standard. It plays
	// every move to find the checks.
	Expensive
)

// String returns the ordering name.
func (o Ordering) String() string {
	switch o {
	case NoOrdering:
		return "none"
	case Smart:
		return "smart"
	case Standard:
		return "standard"
	case Expensive:
		return "expensive"
	default:
		return "unknown"
	}
}

// candidate is a move together with its index in the mover's legal-move
// list, so that a reordered search can still break ties by generation order.
type candidate struct {
	move  board.Move
	index int
}

// MVVLVA scores a move for most-valuable-victim, least-valuable-attacker
// ordering. Captures always outrank quiet moves.
func MVVLVA(m board.Move) int {
	mover := m.Piece().Value()
	if captured, ok := m.Captured(); ok {
		return (captured.Value() - mover + board.King.Value()) * 100
	}
	return board.King.Value() - mover
}

// OrderMoves returns the legal moves of the side to move sorted by o.
// The sort is stable.
func OrderMoves(pos *board.Position, o Ordering) []board.Move {
	cands := orderCandidates(pos, o)
	moves := make([]board.Move, len(cands))
	for i, c := range cands {
		moves[i] = c.move
	}
	return moves
}

func orderCandidates(pos *board.Position, o Ordering) []candidate {
	player := pos.CurrentPlayer()
	legal := player.LegalMoves()
	cands := make([]candidate, len(legal))
	for i, m := range legal {
		cands[i] = candidate{move: m, index: i}
	}

	switch o {
	case Smart:
		threatened := player.Opponent().Attacks()
		sortByKeys(cands, func(m board.Move) [4]int {
			return [4]int{
				boolKey(threatened.IsSet(m.From())),
				boolKey(m.IsAttack()),
				boolKey(m.IsCastling()),
				m.Piece().Value(),
			}
		})
	case Standard:
		sortByKeys(cands, func(m board.Move) [4]int {
			return [4]int{boolKey(m.IsCastling()), MVVLVA(m)}
		})
	case Expensive:
		sortByKeys(cands, func(m board.Move) [4]int {
			return [4]int{givesCheck(player, m), boolKey(m.IsCastling()), MVVLVA(m)}
		})
	}
	return cands
}

// sortByKeys stable-sorts candidates by their keys, larger first, comparing
// the keys lexicographically.
func sortByKeys(cands []candidate, keyOf func(board.Move) [4]int) {
	keys := make([][4]int, len(cands))
	for i, c := range cands {
		keys[i] = keyOf(c.move)
	}
	idx := make([]int, len(cands))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		for i := range ka {
			if ka[i] != kb[i] {
				return ka[i] > kb[i]
			}
		}
		return false
	})
	sorted := make([]candidate, len(cands))
	for i, j := range idx {
		sorted[i] = cands[j]
	}
	copy(cands, sorted)
}

func givesCheck(p *board.Player, m board.Move) int {
	t := p.MakeMove(m)
	if !t.Status.IsDone() {
		return 0
	}
	return boolKey(t.To.CurrentPlayer().InCheck())
}

func boolKey(b bool) int {
	if b {
		return 1
	}
	return 0
}
