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
	mu   sync.RWMutex
	base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
)

// Init configures the process logger. Development gets a console writer,
// anything else gets JSON lines on stdout.
func Init(environment, level string) {
	var out io.Writer = os.Stdout
	if environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	l := zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "expressivart").Logger()

	mu.Lock()
	base = l
	mu.Unlock()
}

func current() *zerolog.Logger {
	mu.RLock()
	l := base
	mu.RUnlock()
	return &l
}

// With returns a child logger tagged with a component name.
func With(component string) zerolog.Logger {
	return current().With().Str("component", component).Logger()
}

func Info(format string, v ...interface{}) {
	current().Info().Msgf(format, v...)
}

func Error(format string, v ...interface{}) {
	current().Error().Msgf(format, v...)
}

func Debug(format string, v ...interface{}) {
	current().Debug().Msgf(format, v...)
}

func Warn(format string, v ...interface{}) {
	current().Warn().Msgf(format, v...)
}

// Fatal logs and exits the process.
func Fatal(format string, v ...interface{}) {
	current().Fatal().Msgf(format, v...)
}
