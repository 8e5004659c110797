package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger tagged with the service name.
// APP_ENV=dev (or development) uses a human-friendly console writer.
func NewLogger(env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var l zerolog.Logger
	if env == "dev" || env == "development" {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		l = zerolog.New(os.Stdout)
	}
	return l.Level(lvl).With().Timestamp().Str("service", namespace).Logger()
}
