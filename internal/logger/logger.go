package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New reads LOG_LEVEL directly because config loading already logs through it.
func New() zerolog.Logger {
	return WithLevel(os.Getenv("LOG_LEVEL"))
}

func WithLevel(level string) zerolog.Logger {
	return build(os.Stdout, level)
}

func build(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return logger.Level(lvl)
}

var Module = fx.Provide(New)
