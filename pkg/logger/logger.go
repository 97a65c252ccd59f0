package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the service logger. The returned value is passed to the
// components that log; nothing in the codebase holds a package-global logger.
func New(service string) zerolog.Logger {
	return NewWithWriter(service, os.Stdout)
}

func NewWithWriter(service string, w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().
		Timestamp().
		Str("service", service).
		Logger()
}
