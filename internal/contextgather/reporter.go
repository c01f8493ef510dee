package contextgather

import (
	"log"
)

// Reporter receives notifications about paths that could not be gathered.
type Reporter interface {
	// Error is called when a file exists but could not be read.
	Error(msg string)
	// Warning is called when a path is missing or not a regular file.
	Warning(msg string)
}

// NopReporter drops all notifications.
type NopReporter struct{}

func (NopReporter) Error(string)   {}
func (NopReporter) Warning(string) {}

// LogReporter writes notifications to the standard logger.
type LogReporter struct {
	Logger *log.Logger // nil uses the package-level logger
}

func (r LogReporter) Error(msg string) {
	r.printf("ERROR: %s", msg)
}

func (r LogReporter) Warning(msg string) {
	r.printf("WARNING: %s", msg)
}

func (r LogReporter) printf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// MultiReporter forwards every notification to each reporter in order.
type MultiReporter []Reporter

func (m MultiReporter) Error(msg string) {
	for _, r := range m {
		r.Error(msg)
	}
}

func (m MultiReporter) Warning(msg string) {
	for _, r := range m {
		r.Warning(msg)
	}
}
