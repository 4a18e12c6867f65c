// Package logging provides the rotating-file structured log sink used by
// the client, plus a read-back helper for the current log contents.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/apibeacon/beacon/internal/constants"
)

// LogFileName is the name of the active log file inside the log directory.
const LogFileName = "beacon.log"

// Logger implements pbi.Logger on top of log/slog.
type Logger struct {
	slogger *slog.Logger
}

// DefaultDir returns the default log directory under the user's
// application-data directory.
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}

	return filepath.Join(configDir, "beacon", "log"), nil
}

// New creates a logger writing to a size-rotated file in dir. The file is
// capped at 5 MB with at most 5 rotated backups kept.
func New(dir string, debug bool) (*Logger, error) {
	err := os.MkdirAll(dir, constants.ConfigDirPerm)
	if err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	sink := &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
	}

	return NewWithWriter(sink, debug), nil
}

// NewWithWriter creates a logger writing to an arbitrary sink.
func NewWithWriter(w io.Writer, debug bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})

	return &Logger{slogger: slog.New(handler)}
}

// Debug implements pbi.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.slogger.Debug(msg, attrs(fields)...)
}

// Info implements pbi.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.slogger.Info(msg, attrs(fields)...)
}

// Warn implements pbi.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.slogger.Warn(msg, attrs(fields)...)
}

// Error implements pbi.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.slogger.Error(msg, attrs(fields)...)
}

func attrs(fields map[string]interface{}) []any {
	args := make([]any, 0, len(fields)*2)
	for key, value := range fields {
		args = append(args, key, value)
	}

	return args
}

// ReadLogFile returns the full current log text, or a human-readable
// explanation when the log cannot be read.
func ReadLogFile(dir string) string {
	logFile := filepath.Join(dir, LogFileName)

	data, err := os.ReadFile(logFile)

	switch {
	case err == nil:
		return string(data)
	case os.IsNotExist(err):
		return fmt.Sprintf("log file not found: %s", logFile)
	case os.IsPermission(err):
		return fmt.Sprintf("permission denied while reading log file: %s", logFile)
	default:
		return fmt.Sprintf("error reading log file: %v", err)
	}
}
