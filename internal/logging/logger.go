// Package logging configures the global zerolog logger once at start-up.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/jrsteele09/infonow-server/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config interface {
	GetLogLevel() string
	GetEnv() string
	GetAppName() string
}

// Setup sets the global level and output. DEV gets the console writer; every
// other environment gets JSON on stdout.
func Setup(cfg Config) {
	Configure(os.Stdout, cfg)
}

func Configure(w io.Writer, cfg Config) {
	zerolog.SetGlobalLevel(ParseLevel(cfg.GetLogLevel()))
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if cfg.GetEnv() == config.EnvDevelopment {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", serviceName(cfg.GetAppName())).Logger()
}

// ParseLevel falls back to info for unknown or empty values.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func serviceName(appName string) string {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(appName), " ", "-"))
	if name == "" {
		return "backend"
	}
	return name
}
