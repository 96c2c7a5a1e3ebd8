// Package logging configures the diagnostic logger. User-facing output goes
// through the colour helpers in internal/app, not through here.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	logger *log.Logger
	once   sync.Once
)

// Get returns the process logger, writing to stderr at warn level until
// Configure is called.
func Get() *log.Logger {
	once.Do(func() {
		logger = New(os.Stderr, "warn")
	})
	return logger
}

// New builds a logger writing to w at the given level.
func New(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(level),
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "hubctl",
	})
}

// Configure sets the level of the process logger. HUBCTL_LOG_LEVEL wins over
// level when set.
func Configure(level string) *log.Logger {
	if env := os.Getenv("HUBCTL_LOG_LEVEL"); env != "" {
		level = env
	}
	l := Get()
	l.SetLevel(ParseLevel(level))
	log.SetDefault(l)
	return l
}

// ParseLevel maps a level name to a log.Level; unknown names mean warn.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}
