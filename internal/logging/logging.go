// Package logging builds the zerolog logger shared by the commands.
package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nhle/mailscore/internal/model"
)

// New returns a logger writing to w at the configured level. Unknown
// levels fall back to info. Pretty selects the console writer.
func New(cfg model.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
