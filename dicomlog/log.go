// Package dicomlog is the logging collaborator named in the core's external
// interfaces: a process-wide severity threshold plus a logrus-backed sink.
// Nothing in dicomcore's correctness depends on this package; it only
// affects what gets written where.
package dicomlog

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Severity is one of the five levels the core's logging interface names.
type Severity int

const (
	Debug Severity = iota
	Info
	Warning
	Error
	Critical
)

// level is the lowest severity that gets logged. The larger the value, the
// fewer messages pass; a value above Critical disables logging completely.
var level = int32(int(Info))

// SetLevel sets log verbosity. Thread safe.
func SetLevel(l Severity) {
	atomic.StoreInt32(&level, int32(l))
}

// Level returns the current log level. Thread safe.
func Level() Severity {
	return Severity(atomic.LoadInt32(&level))
}

// Vprintf is shorthand for "if sev >= threshold { log.Printf(...) }".
func Vprintf(sev Severity, format string, args ...interface{}) {
	if sev < Level() {
		return
	}
	switch sev {
	case Debug:
		logrus.Debugf(format, args...)
	case Info:
		logrus.Infof(format, args...)
	case Warning:
		logrus.Warnf(format, args...)
	case Error:
		logrus.Errorf(format, args...)
	case Critical:
		logrus.Errorf(format, args...)
	default:
		logrus.Printf(format, args...)
	}
}

// Debugf logs at Debug severity.
func Debugf(format string, args ...interface{}) { Vprintf(Debug, format, args...) }

// Infof logs at Info severity.
func Infof(format string, args ...interface{}) { Vprintf(Info, format, args...) }

// Warningf logs at Warning severity.
func Warningf(format string, args ...interface{}) { Vprintf(Warning, format, args...) }

// Errorf logs at Error severity.
func Errorf(format string, args ...interface{}) { Vprintf(Error, format, args...) }

// Criticalf logs at Critical severity.
func Criticalf(format string, args ...interface{}) { Vprintf(Critical, format, args...) }
