package repo

import (
	"database/sql"
	"log/slog"

	"github.com/roach88/entmap/internal/opid"
	"github.com/roach88/entmap/internal/translate"
)

// Option configures a Repository.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	translator *translate.Translator
	ids        opid.Generator
	decoder    any
}

// WithLogger sets the logger for statement and predicate logging.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTranslator replaces the default (non-strict) translator.
// Use it to share a strict translator across repositories.
func WithTranslator(tr *translate.Translator) Option {
	return func(c *config) {
		c.translator = tr
	}
}

// WithOpIDs sets the operation ID generator used in log records.
//
// Default: opid.UUIDv7Generator
func WithOpIDs(g opid.Generator) Option {
	return func(c *config) {
		if g != nil {
			c.ids = g
		}
	}
}

// WithDecoder replaces reflection-based row binding with an explicit
// decoder. T must match the repository's entity type.
func WithDecoder[T any](fn func(rows *sql.Rows) (T, error)) Option {
	return func(c *config) {
		c.decoder = fn
	}
}
