package logger

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "CREATE_STENCIL_LOG_LEVEL"
	EnvLogNoColor = "CREATE_STENCIL_LOG_NOCOLOR"
)

// Stderr writes structured log messages to stderr through zerolog.
type Stderr struct {
	log zerolog.Logger
}

// NewStderr creates a console logger on stderr. Colour is disabled when
// stderr is not a terminal or when CREATE_STENCIL_LOG_NOCOLOR is set.
func NewStderr() *Stderr {
	noColor := !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		noColor = v
	}
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    noColor,
		TimeFormat: time.Kitchen,
	}
	return New(out, parseLevel(os.Getenv(EnvLogLevel)))
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) *Stderr {
	return &Stderr{
		log: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// Debug logs a diagnostic message.
func (l *Stderr) Debug(msg string, args ...any) {
	l.log.Debug().Fields(args).Msg(msg)
}

// Info logs an informational message.
func (l *Stderr) Info(msg string, args ...any) {
	l.log.Info().Fields(args).Msg(msg)
}

// Warn logs a recoverable problem.
func (l *Stderr) Warn(msg string, args ...any) {
	l.log.Warn().Fields(args).Msg(msg)
}

// Error logs an error message.
func (l *Stderr) Error(msg string, args ...any) {
	l.log.Error().Fields(args).Msg(msg)
}

func parseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
