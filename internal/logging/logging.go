// Package logging provides the structured, leveled logger used at every
// component boundary of the engine: suspension points (Storage, WebClient
// calls) log at debug, degradations log at warn, fatal errors log at error.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// New builds a zerolog.Logger from the LOG_LEVEL/LOG_FORMAT conventions
// described in the configuration contract. format "console" is meant for
// local development; anything else (including the default) is JSON.
func New(level, format string) zerolog.Logger {
	var w io.Writer = os.Stderr
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	l := zerolog.New(w).With().Timestamp().Logger()
	return l.Level(parseLevel(level))
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithContext attaches logger to ctx so downstream calls can retrieve it
// with FromContext without threading it as an explicit parameter.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext retrieves the logger attached by WithContext, or a disabled
// logger if none was attached.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return zerolog.Nop()
}
