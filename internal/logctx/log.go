// Package logctx sets up the program-wide logger. Every decoder and
// the processing thread log through this single sink.
package logctx

import (
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
})

// SetVerbose switches between the default (Info) and verbose (Debug)
// log levels, driven by the CLI's -v flag.
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportCaller(true)
		return
	}
	logger.SetLevel(log.InfoLevel)
	logger.SetReportCaller(false)
}

// L returns the shared logger.
func L() *log.Logger { return logger }
