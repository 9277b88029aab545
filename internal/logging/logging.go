// internal/logging/logging.go
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/beacon-scanner/internal/config"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds the process logger writing to w.
func New(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logging: %w", err)
	}
	if cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	switch cfg.Format {
	case "", FormatConsole:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
