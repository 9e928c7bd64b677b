// Package pgn reads and writes games in Portable Game Notation.
package pgn

import (
	"fmt"
	"io"
	"strings"

	"github.com/hailam/tigertooth/internal/board"
	"github.com/hailam/tigertooth/internal/game"
)

// Record is one parsed game: its tag pairs, main-line SAN moves and result.
// Comments, NAGs and variations are dropped.
type Record struct {
	Number int // 1-based position in the input
	Tags   map[string]string
	Moves  []string
	Result string // "1-0", "0-1", "1/2-1/2" or "*"
}

// Tag returns the value of a tag, or "" if absent.
func (r Record) Tag(name string) string {
	return r.Tags[name]
}

// Winner maps the result to an outcome. Unfinished games are Ongoing.
func (r Record) Winner() game.Outcome {
	switch r.Result {
	case "1-0":
		return game.WhiteWins
	case "0-1":
		return game.BlackWins
	case "1/2-1/2":
		return game.Draw
	default:
		return game.Ongoing
	}
}

// Parser parses PGN input into Records.
type Parser struct {
	lexer   *Lexer
	tok     Token
	started bool
	games   int
}

// NewParser creates a new parser for the given reader.
func NewParser(r io.Reader) *Parser {
	return &Parser{lexer: NewLexer(r)}
}

func (p *Parser) next() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// ParseGame parses a single game from the input.
// Returns nil if no more games are available.
func (p *Parser) ParseGame() (*Record, error) {
	if !p.started {
		p.started = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	// Skip any prefix comments between games
	for p.tok.Type == CommentToken {
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if p.tok.Type == EOFToken {
		return nil, nil
	}

	p.games++
	rec := &Record{Number: p.games, Tags: map[string]string{}}
	if err := p.parseTags(rec); err != nil {
		return nil, err
	}
	if err := p.parseMoveText(rec); err != nil {
		return nil, err
	}

	if rec.Result == "" {
		rec.Result = rec.Tags["Result"]
	}
	if rec.Result == "" {
		rec.Result = "*"
	}
	return rec, nil
}

// parseTags parses zero or more [Name "value"] pairs.
func (p *Parser) parseTags(rec *Record) error {
	for p.tok.Type == TagStart || p.tok.Type == CommentToken {
		if p.tok.Type == CommentToken {
			if err := p.next(); err != nil {
				return err
			}
			continue
		}
		line := p.tok.Line
		if err := p.next(); err != nil {
			return err
		}
		if p.tok.Type != SymbolToken {
			return fmt.Errorf("%w: line %d: missing tag name", ErrParseFailure, line)
		}
		name := p.tok.Text
		if err := p.next(); err != nil {
			return err
		}
		if p.tok.Type != StringToken {
			return fmt.Errorf("%w: line %d: missing tag string for %s", ErrParseFailure, line, name)
		}
		rec.Tags[name] = p.tok.Text
		if err := p.next(); err != nil {
			return err
		}
		if p.tok.Type != TagEnd {
			return fmt.Errorf("%w: line %d: unterminated tag %s", ErrParseFailure, line, name)
		}
		if err := p.next(); err != nil {
			return err
		}
	}
	return nil
}

// parseMoveText collects main-line moves up to the result, the next game's
// tags or the end of input.
func (p *Parser) parseMoveText(rec *Record) error {
	for {
		switch p.tok.Type {
		case EOFToken, TagStart:
			return nil
		case ResultToken:
			rec.Result = p.tok.Text
			return p.next()
		case SymbolToken:
			rec.Moves = append(rec.Moves, strings.TrimRight(p.tok.Text, "!?"))
		case RAVStart:
			if err := p.skipVariation(); err != nil {
				return err
			}
		case RAVEnd:
			return fmt.Errorf("%w: line %d: unbalanced ')'", ErrParseFailure, p.tok.Line)
		case MoveNumber, Dot, NAGToken, CommentToken:
		default:
			return fmt.Errorf("%w: line %d: unexpected %s in move text", ErrParseFailure, p.tok.Line, p.tok.Type)
		}
		if err := p.next(); err != nil {
			return err
		}
	}
}

// skipVariation skips a (possibly nested) variation. The current token is
// its opening parenthesis; on return it is the matching close.
func (p *Parser) skipVariation() error {
	line := p.tok.Line
	depth := 0
	for {
		switch p.tok.Type {
		case RAVStart:
			depth++
		case RAVEnd:
			depth--
			if depth == 0 {
				return nil
			}
		case EOFToken, TagStart:
			return fmt.Errorf("%w: line %d: unterminated variation", ErrParseFailure, line)
		}
		if err := p.next(); err != nil {
			return err
		}
	}
}

// ParseAllGames parses all games from the input.
func (p *Parser) ParseAllGames() ([]Record, error) {
	var games []Record
	for {
		rec, err := p.ParseGame()
		if err != nil {
			return games, err
		}
		if rec == nil {
			return games, nil
		}
		games = append(games, *rec)
	}
}

// Parse parses every game in r.
func Parse(r io.Reader) ([]Record, error) {
	return NewParser(r).ParseAllGames()
}

// Replay plays the record's moves from its start position (the FEN tag, or
// the standard position). Failures are reported as a *GameError.
func Replay(rec Record) (*game.Game, error) {
	var start *board.Position
	if fen := rec.Tag("FEN"); fen != "" {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			return nil, &GameError{Err: fmt.Errorf("%w: %w", ErrParseFailure, err), GameNum: rec.Number}
		}
		start = pos
	}

	g := game.New(start)
	for i, tok := range rec.Moves {
		if err := g.PlaySAN(tok); err != nil {
			return g, &GameError{
				Err:      fmt.Errorf("%w: %w", ErrIllegalMove, err),
				GameNum:  rec.Number,
				PlyNum:   i + 1,
				MoveText: tok,
			}
		}
	}
	return g, nil
}
