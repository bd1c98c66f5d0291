package tiktok

import (
	"os"

	"github.com/rs/zerolog"
)

// debugLogger emits crawl diagnostics to stderr when TIKTOK_DEBUG is set.
// Entities stay silent; only the crawler logs.
var debugLogger = newDebugLogger()

func newDebugLogger() zerolog.Logger {
	level := zerolog.Disabled
	if os.Getenv("TIKTOK_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func debugLog(format string, args ...any) {
	debugLogger.Debug().Msgf(format, args...)
}
