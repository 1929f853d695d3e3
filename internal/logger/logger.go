// Package logger configures the zerolog logger shared by ruyienv commands.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/gabssanto/ruyienv/internal/config"
)

// New creates a logger writing to w at the configured level. In auto
// format, terminals get human-readable console lines and everything else
// gets JSON.
func New(w io.Writer, cfg config.Config) zerolog.Logger {
	out := w
	if useConsole(w, cfg.LogFormat) {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    cfg.NoColor,
			TimeFormat: time.Kitchen,
		}
	}
	return zerolog.New(out).Level(cfg.Level()).With().Timestamp().Logger()
}

func useConsole(w io.Writer, format string) bool {
	switch format {
	case config.LogFormatConsole:
		return true
	case config.LogFormatJSON:
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
