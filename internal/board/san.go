package board

import (
	"fmt"
	"strings"
)

// SAN converts a legal move of pos to Standard Algebraic Notation, including
// disambiguation and a check (+) or mate (#) suffix.
func (pos *Position) SAN(m Move) string {
	if m.IsNull() {
		return "-"
	}

	var sb strings.Builder
	switch m.kind {
	case KingSideCastle:
		sb.WriteString("O-O")
	case QueenSideCastle:
		sb.WriteString("O-O-O")
	default:
		pt := m.piece.Type
		from := m.From()
		sb.WriteString(pt.Letter())
		if pt != Pawn {
			sb.WriteString(pos.disambiguation(m))
		}
		if m.IsAttack() {
			if pt == Pawn {
				sb.WriteByte('a' + byte(from.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(m.to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteString(m.promotion.Letter())
		}
	}

	t := pos.Player(m.piece.Color).MakeMove(m)
	if t.Status.IsDone() {
		next := t.To.CurrentPlayer()
		if next.IsInCheckmate() {
			sb.WriteByte('#')
		} else if next.InCheck() {
			sb.WriteByte('+')
		}
	}
	return sb.String()
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other completing moves of the same piece type to the same square.
func (pos *Position) disambiguation(m Move) string {
	from := m.From()
	sameFile, sameRank, others := false, false, false

	p := pos.Player(m.piece.Color)
	for _, o := range p.moves {
		if o.to != m.to || o.piece.Type != m.piece.Type || o.From() == from {
			continue
		}
		if !p.attempt(o).Status.IsDone() {
			continue
		}
		others = true
		if o.From().File() == from.File() {
			sameFile = true
		}
		if o.From().Rank() == from.Rank() {
			sameRank = true
		}
	}

	switch {
	case !others:
		return ""
	case !sameFile:
		return string('a' + byte(from.File()))
	case !sameRank:
		return string('1' + byte(from.Rank()))
	default:
		return from.String()
	}
}

// ParseSAN resolves a SAN token against the side to move of pos. Check,
// mate and annotation suffixes are ignored. On failure it returns NullMove
// and an error wrapping ErrUnresolvedMove or ErrAmbiguousMove.
func ParseSAN(pos *Position, token string) (Move, error) {
	s := strings.TrimRight(strings.TrimSpace(token), "+#!?")
	if s == "" {
		return NullMove, fmt.Errorf("%w: empty token", ErrUnresolvedMove)
	}

	player := pos.CurrentPlayer()

	switch s {
	case "O-O", "0-0":
		return findCastle(player, KingSideCastle, token)
	case "O-O-O", "0-0-0":
		return findCastle(player, QueenSideCastle, token)
	}

	promotion := NoPieceType
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		if idx+1 >= len(s) {
			return NullMove, fmt.Errorf("%w: %q", ErrUnresolvedMove, token)
		}
		promotion = promotionFromLetter(s[idx+1])
		if promotion == NoPieceType {
			return NullMove, fmt.Errorf("%w: bad promotion in %q", ErrUnresolvedMove, token)
		}
		s = s[:idx]
	} else if n := len(s); n > 2 && s[n-2] >= '1' && s[n-2] <= '8' {
		// Promotion without '=' (e.g. "e8Q").
		if pt := promotionFromLetter(s[n-1]); pt != NoPieceType {
			promotion = pt
			s = s[:n-1]
		}
	}

	capture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		switch s[0] {
		case 'N':
			pt = Knight
		case 'B':
			pt = Bishop
		case 'R':
			pt = Rook
		case 'Q':
			pt = Queen
		case 'K':
			pt = King
		default:
			return NullMove, fmt.Errorf("%w: unknown piece in %q", ErrUnresolvedMove, token)
		}
		s = s[1:]
	}

	if len(s) < 2 {
		return NullMove, fmt.Errorf("%w: %q", ErrUnresolvedMove, token)
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NullMove, fmt.Errorf("%w: %q: %w", ErrUnresolvedMove, token, err)
	}
	s = s[:len(s)-2]

	file, rank := -1, -1
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'h':
			file = int(c - 'a')
		case c >= '1' && c <= '8':
			rank = int(c - '1')
		default:
			return NullMove, fmt.Errorf("%w: %q", ErrUnresolvedMove, token)
		}
	}

	var matches []Move
	for _, m := range player.moves {
		if m.to != dest || m.piece.Type != pt || m.IsCastling() {
			continue
		}
		from := m.From()
		if file >= 0 && from.File() != file {
			continue
		}
		if rank >= 0 && from.Rank() != rank {
			continue
		}
		if capture && !m.IsAttack() {
			continue
		}
		if m.promotion != promotion {
			continue
		}
		matches = append(matches, m)
	}

	// A pinned piece does not make a token ambiguous.
	if len(matches) > 1 {
		playable := matches[:0:0]
		for _, m := range matches {
			if player.attempt(m).Status.IsDone() {
				playable = append(playable, m)
			}
		}
		if len(playable) > 0 {
			matches = playable
		}
	}

	switch len(matches) {
	case 0:
		return NullMove, fmt.Errorf("%w: %q", ErrUnresolvedMove, token)
	case 1:
		return matches[0], nil
	default:
		return NullMove, fmt.Errorf("%w: %q matches %d moves", ErrAmbiguousMove, token, len(matches))
	}
}

func findCastle(p *Player, kind MoveKind, token string) (Move, error) {
	for _, m := range p.moves {
		if m.kind == kind {
			return m, nil
		}
	}
	return NullMove, fmt.Errorf("%w: %q", ErrUnresolvedMove, token)
}

func promotionFromLetter(c byte) PieceType {
	switch c {
	case 'Q', 'q':
		return Queen
	case 'R', 'r':
		return Rook
	case 'B', 'b':
		return Bishop
	case 'N', 'n':
		return Knight
	default:
		return NoPieceType
	}
}

// ParseMove resolves coordinate notation ("e2e4", "e7e8q") against the side
// to move of pos. A promotion without a suffix resolves to a queen.
func ParseMove(pos *Position, s string) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NullMove, fmt.Errorf("%w: %q", ErrUnresolvedMove, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NullMove, fmt.Errorf("%w: %q: %w", ErrUnresolvedMove, s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NullMove, fmt.Errorf("%w: %q: %w", ErrUnresolvedMove, s, err)
	}
	promotion := NoPieceType
	if len(s) == 5 {
		if promotion = promotionFromLetter(s[4]); promotion == NoPieceType {
			return NullMove, fmt.Errorf("%w: bad promotion in %q", ErrUnresolvedMove, s)
		}
	}

	m := pos.FindMove(from, to, promotion)
	if m.IsNull() {
		return NullMove, fmt.Errorf("%w: %q", ErrUnresolvedMove, s)
	}
	return m, nil
}

// MovesToSAN converts a sequence of moves, each played from the position the
// previous one produced, to SAN. It stops at the first move that does not
// complete.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, 0, len(moves))
	for _, m := range moves {
		t := pos.CurrentPlayer().MakeMove(m)
		if !t.Status.IsDone() {
			break
		}
		result = append(result, pos.SAN(t.Move))
		pos = t.To
	}
	return result
}
