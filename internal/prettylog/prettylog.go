package prettylog

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// SetupPrettyLogger installs a charmbracelet/log handler as the slog default
// and returns it so callers can adjust the level.
func SetupPrettyLogger(writerForLogger io.Writer, debug bool) *charmlog.Logger {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}

	logHandler := charmlog.NewWithOptions(
		writerForLogger,
		charmlog.Options{
			Level:           level,
			ReportTimestamp: true,
			ReportCaller:    debug,
		},
	)
	slog.SetDefault(slog.New(logHandler))

	return logHandler
}
