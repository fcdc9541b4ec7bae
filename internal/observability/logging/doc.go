// Package logging provides structured logging setup for the CLI.
//
// This package wraps the standard library's log/slog package: it
// builds the text handler used for console output and, when asked,
// tees the stream into a per-book log file next to the input.
//
// Example usage:
//
//	logger, closeLog, err := logging.Setup(true, "books/alice.epub")
//	if err != nil {
//	    return err
//	}
//	defer closeLog()
//	slog.SetDefault(logger)
package logging
