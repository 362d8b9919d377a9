package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the process logger. Development environments write colored
// console lines at debug; everything else writes JSON at info. A non-empty
// level (LOG_LEVEL) overrides the environment default.
func New(appEnv, level string) zerolog.Logger {
	return build(os.Stdout, appEnv, level)
}

func build(out io.Writer, appEnv, level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(strings.TrimSpace(appEnv)) {
	case "development", "dev", "local":
		lvl = zerolog.DebugLevel
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = out
			w.TimeFormat = "15:04:05.000"
		})
	}
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && level != "" {
		lvl = parsed
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "honorhub").Logger()
}

// Component tags a child logger with the part of the system emitting it.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func Nop() zerolog.Logger { return zerolog.Nop() }
