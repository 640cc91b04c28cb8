package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger and returns it.
// format is "console" for human-readable output or "json".
func Setup(level, format string) zerolog.Logger {
	logger := New(os.Stdout, level, format)
	log.Logger = logger
	return logger
}

// New builds a logger writing to out. Unknown levels fall back to info.
func New(out io.Writer, level, format string) zerolog.Logger {
	// Timestamp format
	zerolog.TimeFieldFormat = time.RFC3339

	w := out
	if !strings.EqualFold(format, "json") {
		w = zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = out
			cw.TimeFormat = time.RFC3339
			cw.NoColor = out != os.Stdout
		})
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
