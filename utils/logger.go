package utils

import (
	"io"
	"os"

	"github.com/pterm/pterm"
)

// NewLogger builds the structured logger shared by all commands. level is one
// of trace, debug, info, warn, error; format is colorful or json.
func NewLogger(level string, format string, out io.Writer) *pterm.Logger {
	if out == nil {
		out = os.Stderr
	}

	var logLevel pterm.LogLevel
	switch level {
	case "trace":
		logLevel = pterm.LogLevelTrace
	case "debug":
		logLevel = pterm.LogLevelDebug
	case "warn":
		logLevel = pterm.LogLevelWarn
	case "error":
		logLevel = pterm.LogLevelError
	default:
		logLevel = pterm.LogLevelInfo
	}

	formatter := pterm.LogFormatterColorful
	if format == "json" {
		formatter = pterm.LogFormatterJSON
	}

	return pterm.DefaultLogger.
		WithLevel(logLevel).
		WithFormatter(formatter).
		WithWriter(out)
}

// DiscardLogger drops every message; tests use it
func DiscardLogger() *pterm.Logger {
	return pterm.DefaultLogger.WithWriter(io.Discard)
}
