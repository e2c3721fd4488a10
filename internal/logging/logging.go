// Package logging builds the structured logger shared by the server and tools.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w (stderr when nil). Unknown levels fall
// back to info.
func New(level string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
	})
}

// Discard is a logger for tests and tools that want silence.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
