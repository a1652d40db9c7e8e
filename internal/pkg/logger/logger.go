// Package logger wraps a process wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Init configures level and output format ("json" or "console").
func Init(level, format string) {
	var out io.Writer = os.Stderr
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	SetOutput(out)
	SetLevel(level)
}

func SetOutput(w io.Writer) {
	mu.Lock()
	log = zerolog.New(w).With().Timestamp().Logger()
	mu.Unlock()
}

// SetLevel applies a textual level; unknown values fall back to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func With() zerolog.Context {
	l := Logger()
	return l.With()
}

func Debug() *zerolog.Event {
	l := Logger()
	return l.Debug()
}

func Info() *zerolog.Event {
	l := Logger()
	return l.Info()
}

func Warn() *zerolog.Event {
	l := Logger()
	return l.Warn()
}

func Error() *zerolog.Event {
	l := Logger()
	return l.Error()
}

func Fatal() *zerolog.Event {
	l := Logger()
	return l.Fatal()
}
