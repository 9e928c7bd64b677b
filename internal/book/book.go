// Package book implements an opening book learned from finished games.
//
// The book counts, for every SAN move history, which moves followed it in
// games won by the side that played them. Probing picks the most frequent
// continuation for the side to move.
package book

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"

	"github.com/hailam/tigertooth/internal/board"
	"github.com/hailam/tigertooth/internal/game"
	"github.com/hailam/tigertooth/internal/pgn"
	"github.com/hailam/tigertooth/internal/storage"
)

// DefaultMinPly is the shortest game Import accepts.
const DefaultMinPly = 10

// Store persists book lines. *storage.Storage satisfies it.
type Store interface {
	NextMoves(winner game.Outcome, history []string) (map[string]int, error)
	AddGame(result string, moves []string) (uint64, error)
	RecordImport(parsed, stored, rejected int) error
}

// Candidate is a continuation with the number of won games it appeared in.
type Candidate struct {
	SAN   string
	Count int
}

// ImportStats summarizes an Import run.
type ImportStats struct {
	Parsed  int // games read from the input
	Valid   int // games stored
	Invalid int // games rejected (illegal, unfinished or too short)
}

// Book is an opening book over a Store.
type Book struct {
	store  Store
	logger zerolog.Logger

	// MinPly is the shortest game Import stores.
	MinPly int
}

// New creates a book over store.
func New(store Store) *Book {
	return &Book{store: store, logger: zerolog.Nop(), MinPly: DefaultMinPly}
}

// SetLogger sets the logger used for import diagnostics.
func (b *Book) SetLogger(l zerolog.Logger) {
	b.logger = l
}

func winnerFor(c board.Color) game.Outcome {
	if c == board.White {
		return game.WhiteWins
	}
	return game.BlackWins
}

// ProbeAll returns the continuations of history from the lines the side to
// move won, most frequent first. Equal counts sort by SAN.
func (b *Book) ProbeAll(pos *board.Position, history []string) ([]Candidate, error) {
	counts, err := b.store.NextMoves(winnerFor(pos.Mover()), history)
	if err != nil {
		return nil, err
	}
	cands := make([]Candidate, 0, len(counts))
	for san, n := range counts {
		cands = append(cands, Candidate{SAN: san, Count: n})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Count != cands[j].Count {
			return cands[i].Count > cands[j].Count
		}
		return cands[i].SAN < cands[j].SAN
	})
	return cands, nil
}

// Probe returns the book move for pos. The book only answers when history,
// played from the standard position, reaches pos; a game set up from any
// other position gets no book moves. A candidate is only returned when it
// resolves to a move the side to move can complete.
func (b *Book) Probe(pos *board.Position, history []string) (board.Move, bool) {
	if b == nil || b.store == nil {
		return board.NullMove, false
	}
	if len(history) >= storage.MaxBookPly || !reaches(history, pos) {
		return board.NullMove, false
	}
	cands, err := b.ProbeAll(pos, history)
	if err != nil {
		b.logger.Warn().Err(err).Msg("book probe failed")
		return board.NullMove, false
	}
	for _, c := range cands {
		m, err := board.ParseSAN(pos, c.SAN)
		if err != nil {
			continue
		}
		if t := pos.CurrentPlayer().MakeMove(m); t.Status.IsDone() {
			return t.Move, true
		}
	}
	return board.NullMove, false
}

// Import reads PGN games from r and stores every finished game that replays
// legally and is at least MinPly long. Parsing stops at the first malformed
// game; the games before it are kept.
func (b *Book) Import(r io.Reader) (ImportStats, error) {
	var stats ImportStats
	parser := pgn.NewParser(r)

	var parseErr error
	for {
		rec, err := parser.ParseGame()
		if err != nil {
			parseErr = err
			break
		}
		if rec == nil {
			break
		}
		stats.Parsed++

		if err := b.importRecord(*rec); err != nil {
			stats.Invalid++
			b.logger.Warn().Int("game", rec.Number).Err(err).Msg("skipping game")
			continue
		}
		stats.Valid++
	}

	if err := b.store.RecordImport(stats.Parsed, stats.Valid, stats.Invalid); err != nil {
		return stats, errors.Join(parseErr, err)
	}
	b.logger.Info().
		Int("parsed", stats.Parsed).
		Int("valid", stats.Valid).
		Int("invalid", stats.Invalid).
		Msg("import finished")
	return stats, parseErr
}

// reaches reports whether history played from the standard position ends
// in pos.
func reaches(history []string, pos *board.Position) bool {
	g := game.New(nil)
	for _, san := range history {
		if err := g.PlaySAN(san); err != nil {
			return false
		}
	}
	return g.Position().Hash() == pos.Hash() && g.Position().FEN() == pos.FEN()
}

func (b *Book) importRecord(rec pgn.Record) error {
	if rec.Winner() == game.Ongoing {
		return fmt.Errorf("unfinished result %q", rec.Result)
	}
	if rec.Tag("FEN") != "" {
		return errors.New("game does not start from the standard position")
	}
	if len(rec.Moves) < b.MinPly {
		return fmt.Errorf("only %d plies", len(rec.Moves))
	}
	g, err := pgn.Replay(rec)
	if err != nil {
		return err
	}
	_, err = b.store.AddGame(rec.Result, g.SANs())
	return err
}
