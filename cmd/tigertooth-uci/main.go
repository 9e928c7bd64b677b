package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/hailam/tigertooth/internal/book"
	"github.com/hailam/tigertooth/internal/engine"
	"github.com/hailam/tigertooth/internal/storage"
	"github.com/hailam/tigertooth/internal/uci"
)

var (
	depth      = flag.Int("depth", 0, "search depth in plies (env TIGERTOOTH_DEPTH)")
	quiescence = flag.Int("quiescence", -1, "quiescence extensions per root move, 0 disables (env TIGERTOOTH_QUIESCENCE)")
	algorithm  = flag.String("algorithm", "", "search algorithm: minimax, alphabeta or stock (env TIGERTOOTH_ALGORITHM)")
	bookDir    = flag.String("book", "", "opening book database directory (env TIGERTOOTH_BOOK)")
	logLevel   = flag.String("log-level", "", "log level (env TIGERTOOTH_LOG_LEVEL)")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

// envString returns v, or the environment variable key when v is empty.
func envString(v, key string) string {
	if v == "" {
		return os.Getenv(key)
	}
	return v
}

// envInt returns v, or the environment variable key when v is unset.
func envInt(v, unset int, key string) int {
	if v != unset {
		return v
	}
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return unset
}

func main() {
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(envString(*logLevel, "TIGERTOOTH_LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	// Start CPU profiling if requested (via flag or environment variable)
	if profilePath := envString(*cpuprofile, "CPUPROFILE"); profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		logger.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	store, err := openStore(envString(*bookDir, "TIGERTOOTH_BOOK"), logger)
	if err != nil {
		logger.Warn().Err(err).Msg("book database unavailable, playing without book")
	} else {
		defer store.Close()
	}

	prefs := storage.DefaultPreferences()
	if store != nil {
		if p, err := store.LoadPreferences(); err != nil {
			logger.Warn().Err(err).Msg("could not load preferences")
		} else {
			prefs = p
		}
	}

	if d := envInt(*depth, 0, "TIGERTOOTH_DEPTH"); d > 0 {
		prefs.Depth = d
	}
	if q := envInt(*quiescence, -1, "TIGERTOOTH_QUIESCENCE"); q >= 0 {
		prefs.MaxQuiescence = q
	}
	if a := envString(*algorithm, "TIGERTOOTH_ALGORITHM"); a != "" {
		prefs.Algorithm = a
	}

	eng := engine.NewEngine(16)
	eng.SetLogger(logger.With().Str("component", "engine").Logger())
	eng.SetLimits(engine.SearchLimits{Depth: prefs.Depth, MaxQuiescence: prefs.MaxQuiescence})
	alg, err := engine.ParseAlgorithm(prefs.Algorithm)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid algorithm")
	}
	eng.SetAlgorithm(alg)

	if store != nil {
		b := book.New(store)
		b.SetLogger(logger.With().Str("component", "book").Logger())
		eng.SetBook(b)
		eng.SetOwnBook(prefs.OwnBook)
		if err := store.SavePreferences(prefs); err != nil {
			logger.Warn().Err(err).Msg("could not save preferences")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	protocol := uci.New(eng, os.Stdin, os.Stdout)
	protocol.SetLogger(logger.With().Str("component", "uci").Logger())
	if err := protocol.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("protocol loop failed")
	}
}

func openStore(dir string, logger zerolog.Logger) (*storage.Storage, error) {
	opt := storage.WithLogger(logger.With().Str("component", "storage").Logger().Level(zerolog.WarnLevel))
	if dir != "" {
		return storage.Open(dir, opt)
	}
	return storage.OpenDefault(opt)
}
