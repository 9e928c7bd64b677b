// Package game tracks a game in progress: the position stack, the move and
// SAN history, and how the game has ended.
package game

import (
	"errors"
	"fmt"

	"github.com/hailam/tigertooth/internal/board"
)

// ErrIllegalMove is returned when a move does not complete from the current
// position.
var ErrIllegalMove = errors.New("illegal move")

// Outcome is the state of a game.
type Outcome int

const (
	Ongoing Outcome = iota
	WhiteWins
	BlackWins
	Draw
)

// String returns a human-readable outcome.
func (o Outcome) String() string {
	switch o {
	case Ongoing:
		return "ongoing"
	case WhiteWins:
		return "white wins"
	case BlackWins:
		return "black wins"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// Reason says why a game ended.
type Reason int

const (
	NoReason Reason = iota
	Checkmate
	Stalemate
	ThreefoldRepetition
)

// String returns a human-readable reason.
func (r Reason) String() string {
	switch r {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case ThreefoldRepetition:
		return "threefold repetition"
	default:
		return ""
	}
}

// Game is a sequence of completed moves from a start position.
type Game struct {
	start       *board.Position
	position    *board.Position
	moveHistory []board.Move
	sanHistory  []string
	hashes      []uint64 // History of position hashes for repetition detection
}

// New creates a game from start. A nil start uses the standard position.
func New(start *board.Position) *Game {
	if start == nil {
		start = board.NewPosition()
	}
	return &Game{
		start:    start,
		position: start,
		hashes:   []uint64{start.Hash()},
	}
}

// Start returns the position the game started from.
func (g *Game) Start() *board.Position {
	return g.start
}

// Position returns the current position.
func (g *Game) Position() *board.Position {
	return g.position
}

// Play attempts m from the current position. Only a Done transition is
// recorded; the transition is returned either way.
func (g *Game) Play(m board.Move) board.MoveTransition {
	t := g.position.CurrentPlayer().MakeMove(m)
	if !t.Status.IsDone() {
		return t
	}
	g.sanHistory = append(g.sanHistory, g.position.SAN(t.Move))
	g.moveHistory = append(g.moveHistory, t.Move)
	g.position = t.To
	g.hashes = append(g.hashes, t.To.Hash())
	return t
}

// PlaySAN plays a SAN token.
func (g *Game) PlaySAN(token string) error {
	m, err := board.ParseSAN(g.position, token)
	if err != nil {
		return err
	}
	return g.play(m, token)
}

// PlayMove plays a move in coordinate notation ("e2e4").
func (g *Game) PlayMove(s string) error {
	m, err := board.ParseMove(g.position, s)
	if err != nil {
		return err
	}
	return g.play(m, s)
}

func (g *Game) play(m board.Move, text string) error {
	if t := g.Play(m); !t.Status.IsDone() {
		return fmt.Errorf("%w: %s (%s)", ErrIllegalMove, text, t.Status)
	}
	return nil
}

// Undo takes back the last move. It reports false when there is nothing to
// take back.
func (g *Game) Undo() bool {
	n := len(g.moveHistory)
	if n == 0 {
		return false
	}
	g.position = g.moveHistory[n-1].Undo()
	g.moveHistory = g.moveHistory[:n-1]
	g.sanHistory = g.sanHistory[:n-1]
	g.hashes = g.hashes[:n]
	return true
}

// Moves returns the moves played so far.
func (g *Game) Moves() []board.Move {
	return append([]board.Move(nil), g.moveHistory...)
}

// SANs returns the SAN of every move played so far.
func (g *Game) SANs() []string {
	return append([]string(nil), g.sanHistory...)
}

// History returns the SAN history, the key under which the opening book
// stores continuations.
func (g *Game) History() []string {
	return g.SANs()
}

// Len returns the number of moves played.
func (g *Game) Len() int {
	return len(g.moveHistory)
}

// Outcome reports whether the game has ended and why.
func (g *Game) Outcome() (Outcome, Reason) {
	player := g.position.CurrentPlayer()
	switch {
	case player.IsInCheckmate():
		if player.Color() == board.White {
			return BlackWins, Checkmate
		}
		return WhiteWins, Checkmate
	case player.IsInStalemate():
		return Draw, Stalemate
	case g.isThreefoldRepetition():
		return Draw, ThreefoldRepetition
	}
	return Ongoing, NoReason
}

// isThreefoldRepetition checks if the current position has occurred 3 times.
func (g *Game) isThreefoldRepetition() bool {
	if len(g.hashes) < 5 {
		// Need at least 5 positions (4 half-moves) for threefold repetition
		return false
	}

	current := g.position.Hash()
	count := 0
	for _, h := range g.hashes {
		if h == current {
			count++
			if count >= 3 {
				return true
			}
		}
	}
	return false
}

// Result returns the PGN result token: "1-0", "0-1", "1/2-1/2" or "*".
func (g *Game) Result() string {
	outcome, _ := g.Outcome()
	return ResultToken(outcome)
}

// ResultToken maps an outcome to its PGN result token.
func ResultToken(o Outcome) string {
	switch o {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}
