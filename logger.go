package tileforge

import (
	"log/slog"

	"github.com/milk9111/tileforge/internal/logging"
)

// SetLogger configures the logger for tileforge and all its sub-packages.
// By default nothing is logged. Pass nil to restore that.
//
// Log levels used:
//   - [slog.LevelDebug]: atlas growth and compaction, imports, class loads
//   - [slog.LevelWarn]: class files that fail to reload
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.Logger()
}
