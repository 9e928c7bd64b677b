package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/hailam/tigertooth/internal/game"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyGameSeq     = "seq/game"
	prefixGame     = "game/"
	prefixLine     = "line/"
)

// MaxBookPly is the longest move-history prefix that gets a line entry.
const MaxBookPly = 40

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Preferences stores engine defaults
type Preferences struct {
	Depth         int       `json:"depth"`
	MaxQuiescence int       `json:"max_quiescence"`
	Algorithm     string    `json:"algorithm"`
	OwnBook       bool      `json:"own_book"`
	LastUsed      time.Time `json:"last_used"`
}

// DefaultPreferences returns default engine preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		Depth:         3,
		MaxQuiescence: 5000,
		Algorithm:     "stock",
		OwnBook:       true,
	}
}

// ImportStats stores book import statistics
type ImportStats struct {
	Imports    int       `json:"imports"`
	Parsed     int       `json:"parsed"`
	Stored     int       `json:"stored"`
	Rejected   int       `json:"rejected"`
	LastImport time.Time `json:"last_import"`
}

// GameRecord is a stored game.
type GameRecord struct {
	ID     uint64    `json:"id"`
	Result string    `json:"result"`
	Moves  []string  `json:"moves"`
	Added  time.Time `json:"added"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Option configures Open.
type Option func(*badger.Options)

// WithLogger routes badger's internal logging through l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *badger.Options) {
		o.Logger = NewBadgerLogger(l)
	}
}

// Open opens (creating if needed) the database in dir. Badger's own
// logging is disabled unless WithLogger is given.
func Open(dir string, opts ...Option) (*Storage, error) {
	bopts := badger.DefaultOptions(dir)
	bopts.Logger = nil // Disable logging
	for _, opt := range opts {
		opt(&bopts)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}

	seq, err := db.GetSequence([]byte(keyGameSeq), 64)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("game sequence: %w", err)
	}
	return &Storage{db: db, seq: seq}, nil
}

// OpenDefault opens the database in the platform data directory.
func OpenDefault(opts ...Option) (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir, opts...)
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	var errs []error
	if s.seq != nil {
		errs = append(errs, s.seq.Release())
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}

// sideKey maps a PGN result token to the line namespace it counts under.
func sideKey(result string) (string, bool) {
	switch result {
	case "1-0":
		return "W", true
	case "0-1":
		return "B", true
	case "1/2-1/2":
		return "D", true
	default:
		return "", false
	}
}

func outcomeKey(o game.Outcome) (string, bool) {
	return sideKey(game.ResultToken(o))
}

func lineKey(side string, history []string) []byte {
	return []byte(prefixLine + side + "/" + strings.Join(history, ","))
}

func gameKey(id uint64) []byte {
	key := make([]byte, len(prefixGame)+8)
	copy(key, prefixGame)
	binary.BigEndian.PutUint64(key[len(prefixGame):], id)
	return key
}

// AddGame stores a finished game and counts each of its first MaxBookPly
// moves as a continuation of the history before it, under the side that
// won (or under draws). It returns the new game's id.
func (s *Storage) AddGame(result string, moves []string) (uint64, error) {
	side, ok := sideKey(result)
	if !ok {
		return 0, fmt.Errorf("add game: unfinished result %q", result)
	}

	next, err := s.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("add game: %w", err)
	}
	id := next + 1

	rec := GameRecord{ID: id, Result: result, Moves: moves, Added: time.Now()}
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(gameKey(id), data); err != nil {
			return err
		}
		for i := 0; i < len(moves) && i < MaxBookPly; i++ {
			key := lineKey(side, moves[:i])
			counts, err := readCounts(txn, key)
			if err != nil {
				return err
			}
			counts[moves[i]]++
			data, err := json.Marshal(counts)
			if err != nil {
				return err
			}
			if err := txn.Set(key, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("add game %d: %w", id, err)
	}
	return id, nil
}

func readCounts(txn *badger.Txn, key []byte) (map[string]int, error) {
	counts := map[string]int{}
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return counts, nil
	}
	if err != nil {
		return nil, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &counts)
	})
	return counts, err
}

// NextMoves returns how often each move followed history in games with the
// given outcome. An unknown history yields an empty map.
func (s *Storage) NextMoves(winner game.Outcome, history []string) (map[string]int, error) {
	side, ok := outcomeKey(winner)
	if !ok {
		return nil, fmt.Errorf("next moves: no lines for outcome %v", winner)
	}

	var counts map[string]int
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		counts, err = readCounts(txn, lineKey(side, history))
		return err
	})
	return counts, err
}

// Game loads one stored game.
func (s *Storage) Game(id uint64) (GameRecord, error) {
	var rec GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("game %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// Games calls fn for every stored game in id order, stopping at the first
// error fn returns.
func (s *Storage) Games(fn func(GameRecord) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixGame)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// SavePreferences saves engine preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastUsed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads engine preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	err := s.get(keyPreferences, prefs)
	return prefs, err
}

// LoadStats loads import statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*ImportStats, error) {
	stats := &ImportStats{}
	err := s.get(keyStats, stats)
	return stats, err
}

// RecordImport adds one import run to the statistics.
func (s *Storage) RecordImport(parsed, stored, rejected int) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}
	stats.Imports++
	stats.Parsed += parsed
	stats.Stored += stored
	stats.Rejected += rejected
	stats.LastImport = time.Now()
	return s.put(keyStats, stats)
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes key into v, leaving v untouched when the key is absent.
func (s *Storage) get(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}
