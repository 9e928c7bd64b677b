package storage

import (
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

var _ badger.Logger = (*BadgerLogger)(nil)

// BadgerLogger adapts a zerolog.Logger to badger's Logger interface.
type BadgerLogger struct {
	log zerolog.Logger
}

// NewBadgerLogger tags every badger message with component=badger.
func NewBadgerLogger(l zerolog.Logger) *BadgerLogger {
	return &BadgerLogger{log: l.With().Str("component", "badger").Logger()}
}

func (b *BadgerLogger) Errorf(format string, args ...interface{}) {
	b.log.Error().Msgf(trim(format), args...)
}

func (b *BadgerLogger) Warningf(format string, args ...interface{}) {
	b.log.Warn().Msgf(trim(format), args...)
}

func (b *BadgerLogger) Infof(format string, args ...interface{}) {
	b.log.Info().Msgf(trim(format), args...)
}

func (b *BadgerLogger) Debugf(format string, args ...interface{}) {
	b.log.Debug().Msgf(trim(format), args...)
}

// badger terminates its format strings with a newline.
func trim(format string) string {
	return strings.TrimSuffix(format, "\n")
}
