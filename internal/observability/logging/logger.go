// Package logging configures structured logging for the CLI using the
// standard library's log/slog package. Output goes to stderr so result
// paths and shell pipelines stay clean; an optional run log file is
// written next to the input document.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Level returns the log level configured via the LOG_LEVEL environment
// variable. Supported values: debug, info, warn, error. Default: info.
func Level() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a structured text logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// Setup initializes the process-wide default logger. When logfile is
// true, log output is additionally appended to "<input stem>.log" in
// the input document's directory.
//
// The returned closer must be called on shutdown to flush and close
// the log file; it is a no-op when no file was opened.
func Setup(logfile bool, inputPath string) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closer := func() {}

	if logfile {
		path := logFilePath(inputPath)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = func() { _ = f.Close() }
	}

	logger := New(w, Level())
	slog.SetDefault(logger)
	return logger, closer, nil
}

// logFilePath derives the run log path from the input document:
// "/books/alice.epub" logs to "/books/alice.log".
func logFilePath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, stem+".log")
}
