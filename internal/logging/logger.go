package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log is the package-global logger configured by Init
var Log = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init configures the global logger. level can be "debug", "info", "warn",
// "error". When console is true, output is human-readable (CLI use);
// otherwise timestamped JSON (serve mode).
func Init(level string, console bool) {
	l := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		l = zerolog.DebugLevel
	case "info":
		l = zerolog.InfoLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(l)

	var w io.Writer = os.Stderr
	if console {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	Log = zerolog.New(w).With().Timestamp().Logger()
}

// Get returns a pointer to the package-global logger
func Get() *zerolog.Logger {
	return &Log
}
