package pgn

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/hailam/tigertooth/internal/board"
	"github.com/hailam/tigertooth/internal/game"
)

const maxLineLength = 79

// Write emits g as PGN. The Event, Date, Result and PlyCount tags come
// first, followed by the remaining tags in name order. A game that did not
// start from the standard position also gets SetUp and FEN tags.
func Write(w io.Writer, g *game.Game, tags map[string]string) error {
	bw := bufio.NewWriter(w)

	result := g.Result()
	if r, ok := tags["Result"]; ok && result == "*" {
		result = r
	}

	writeTag := func(name, value string) {
		value = strings.ReplaceAll(value, `\`, `\\`)
		value = strings.ReplaceAll(value, `"`, `\"`)
		fmt.Fprintf(bw, "[%s \"%s\"]\n", name, value)
	}
	writeTag("Event", tagOr(tags, "Event", "?"))
	writeTag("Date", tagOr(tags, "Date", "????.??.??"))
	writeTag("Result", result)
	writeTag("PlyCount", strconv.Itoa(g.Len()))

	seen := map[string]bool{"Event": true, "Date": true, "Result": true, "PlyCount": true}
	start := g.Start()
	if start.FEN() != board.StartFEN {
		writeTag("SetUp", "1")
		writeTag("FEN", start.FEN())
		seen["SetUp"], seen["FEN"] = true, true
	}

	names := make([]string, 0, len(tags))
	for name := range tags {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		writeTag(name, tags[name])
	}
	bw.WriteByte('\n')

	writeMoveText(bw, start.Mover(), g.SANs(), result)
	return bw.Flush()
}

func tagOr(tags map[string]string, name, def string) string {
	if v, ok := tags[name]; ok && v != "" {
		return v
	}
	return def
}

// writeMoveText writes numbered moves wrapped to maxLineLength.
func writeMoveText(w *bufio.Writer, first board.Color, sans []string, result string) {
	var tokens []string
	moveNum := 1
	color := first
	for i, san := range sans {
		if color == board.White {
			tokens = append(tokens, strconv.Itoa(moveNum)+".")
		} else if i == 0 {
			tokens = append(tokens, strconv.Itoa(moveNum)+"...")
		}
		tokens = append(tokens, san)
		if color == board.Black {
			moveNum++
		}
		color = color.Other()
	}
	tokens = append(tokens, result)

	lineLen := 0
	for i, tok := range tokens {
		if i > 0 {
			if lineLen+1+len(tok) > maxLineLength {
				w.WriteByte('\n')
				lineLen = 0
			} else {
				w.WriteByte(' ')
				lineLen++
			}
		}
		w.WriteString(tok)
		lineLen += len(tok)
	}
	w.WriteString("\n\n")
}
