package logging

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the base logger exactly once. The level string is
// parsed leniently; anything unrecognised falls back to info.
func Configure(level, service string) {
	once.Do(func() {
		lvl := zerolog.InfoLevel
		if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
			lvl = parsed
		}
		zerolog.SetGlobalLevel(lvl)
		zerolog.TimeFieldFormat = time.RFC3339

		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}).
			With().
			Timestamp().
			Str("service", service).
			Logger()
	})
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	Configure("", "beatframe")
	return base.With().Str("component", component).Logger()
}

// EngineFileLogger returns a logger writing to a rotated file. The audio
// engine emits one line per position update, which would drown the console.
func EngineFileLogger(path string) zerolog.Logger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxBackups: 3,
		MaxAge:     7, // days
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
