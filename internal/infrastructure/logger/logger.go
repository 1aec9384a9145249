// Package logger builds the process logger and the request-scoped children
// handlers find through zerolog.Ctx.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const service = "backoffice"

type Config struct {
	// Level is a zerolog level name; unknown names mean info.
	Level string
	// Format is "json" or "console".
	Format string
}

func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

func NewWithWriter(cfg Config, out io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", service).
		Caller().
		Logger()
}

func parseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// WithRequest stores a child of base tagged with the request in ctx.
func WithRequest(ctx context.Context, base zerolog.Logger, requestID, method, path string) context.Context {
	return base.With().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Logger().
		WithContext(ctx)
}

// WithUser tags the request logger in ctx with the acting user. The logger is
// updated in place, so the access log written by outer middleware carries
// the field as well.
func WithUser(ctx context.Context, userID int64) context.Context {
	zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Int64("user_id", userID)
	})
	return ctx
}
