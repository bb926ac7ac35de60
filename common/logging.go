// Package common provides centralized logging infrastructure for the
// authentication comparison service.
//
// The logging system is built on logrus with custom output handling that
// routes error-level messages to stderr while sending other log levels to
// stdout, enabling proper stream separation for containerized and scripted
// environments. Orchestration platforms and log aggregators can then treat
// the two streams differently, e.g. wiring stderr into alerting.
//
// The package provides a global Logger instance so all packages share one
// output configuration; services can further customize it after import
// (formatter, level, hooks).
package common

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the global logger instance used across the service.
var Logger = logrus.New()

// OutputSplitter routes formatted log output to stdout or stderr based on
// its severity level. It examines the final formatted bytes, so it works
// with both the text and the JSON formatter.
type OutputSplitter struct{}

// Write implements io.Writer. Messages containing an error-level marker go
// to stderr, everything else to stdout.
func (splitter *OutputSplitter) Write(p []byte) (n int, err error) {
	if bytes.Contains(p, []byte("level=error")) || bytes.Contains(p, []byte(`"level":"error"`)) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

func init() {
	// Configure the global logger with output routing
	Logger.SetOutput(&OutputSplitter{})
}
