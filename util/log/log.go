/*
slog initialization shared by anything that wants the pool's debug lines
on disk as well as on the console.
*/
package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
)

// InitLogger configures the default slog logger to write to both stdout
// and the file at logPath, at the given level
func InitLogger(logPath string, logLevel string) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Wrap(err, "os.OpenFile failed")
	}

	level, err := parseLevel(logLevel)
	if err != nil {
		return errors.Wrap(err, "parseLevel failed")
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, logFile), &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}

// parseLevel converts the level name from configuration to a slog.Level
func parseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unknown log level %q", levelStr)
	}
}
