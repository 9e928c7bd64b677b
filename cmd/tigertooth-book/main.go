// Command tigertooth-book manages the opening book database.
//
// Usage:
//
//	tigertooth-book [flags] import <file.pgn>...
//	tigertooth-book [flags] probe [san moves...]
//	tigertooth-book [flags] stats
//	tigertooth-book [flags] export
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/hailam/tigertooth/internal/book"
	"github.com/hailam/tigertooth/internal/game"
	"github.com/hailam/tigertooth/internal/pgn"
	"github.com/hailam/tigertooth/internal/storage"
)

var (
	bookDir  = flag.String("book", "", "opening book database directory (env TIGERTOOTH_BOOK)")
	minPly   = flag.Int("min-ply", book.DefaultMinPly, "shortest game to import")
	logLevel = flag.String("log-level", "info", "log level")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] import <file.pgn>... | probe [moves...] | stats | export\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(*logLevel); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	}

	dir := *bookDir
	if dir == "" {
		dir = os.Getenv("TIGERTOOTH_BOOK")
	}
	var store *storage.Storage
	var err error
	if dir != "" {
		store, err = storage.Open(dir)
	} else {
		store, err = storage.OpenDefault()
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("could not open book database")
	}

	b := book.New(store)
	b.MinPly = *minPly
	b.SetLogger(logger)

	args := flag.Args()[1:]
	switch flag.Arg(0) {
	case "import":
		err = runImport(b, args, logger)
	case "probe":
		err = runProbe(b, args)
	case "stats":
		err = runStats(store)
	case "export":
		err = runExport(store)
	default:
		usage()
		store.Close()
		os.Exit(2)
	}
	if cerr := store.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		logger.Fatal().Err(err).Msg(flag.Arg(0) + " failed")
	}
}

func runImport(b *book.Book, files []string, logger zerolog.Logger) error {
	if len(files) == 0 {
		return fmt.Errorf("import: no PGN files given")
	}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		stats, err := b.Import(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("import %s: %w", name, err)
		}
		logger.Info().
			Str("file", name).
			Int("parsed", stats.Parsed).
			Int("valid", stats.Valid).
			Int("invalid", stats.Invalid).
			Msg("imported")
	}
	return nil
}

func runProbe(b *book.Book, moves []string) error {
	g := game.New(nil)
	for _, san := range moves {
		if err := g.PlaySAN(san); err != nil {
			return fmt.Errorf("probe: %w", err)
		}
	}
	cands, err := b.ProbeAll(g.Position(), g.History())
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		fmt.Println("no book moves")
		return nil
	}
	for _, c := range cands {
		fmt.Printf("%-8s %d\n", c.SAN, c.Count)
	}
	return nil
}

func runStats(store *storage.Storage) error {
	stats, err := store.LoadStats()
	if err != nil {
		return err
	}
	games := 0
	if err := store.Games(func(storage.GameRecord) error {
		games++
		return nil
	}); err != nil {
		return err
	}
	fmt.Printf("games stored:  %d\n", games)
	fmt.Printf("imports:       %d\n", stats.Imports)
	fmt.Printf("games parsed:  %d\n", stats.Parsed)
	fmt.Printf("games kept:    %d\n", stats.Stored)
	fmt.Printf("games skipped: %d\n", stats.Rejected)
	if !stats.LastImport.IsZero() {
		fmt.Printf("last import:   %s\n", stats.LastImport.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// runExport writes every stored game to stdout as PGN.
func runExport(store *storage.Storage) error {
	return store.Games(func(rec storage.GameRecord) error {
		g := game.New(nil)
		for _, san := range rec.Moves {
			if err := g.PlaySAN(san); err != nil {
				return fmt.Errorf("export game %d: %w", rec.ID, err)
			}
		}
		tags := map[string]string{
			"Event":  fmt.Sprintf("Book game %d", rec.ID),
			"Date":   rec.Added.Format("2006.01.02"),
			"Result": rec.Result,
		}
		if err := pgn.Write(os.Stdout, g, tags); err != nil {
			return err
		}
		_, err := fmt.Println()
		return err
	})
}
