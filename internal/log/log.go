// Package log is the thin logging shim every other package in this module
// calls into, wrapping log4go behind a small package-level API.
package log

import (
	"os"

	l4g "github.com/limetext/log4go"
)

var logger l4g.Logger

func init() {
	logger = make(l4g.Logger)
	logger.AddFilter("stdout", l4g.DEBUG, l4g.NewConsoleLogWriter())
}

// SetLevel raises or lowers the console filter's minimum level, e.g. to
// silence Finest/Fine chatter in production embeddings.
func SetLevel(level l4g.Level) {
	if f, ok := logger["stdout"]; ok {
		f.Level = level
	}
}

// AddFileLogger additionally writes a rotating logfile alongside the
// console output; callers that embed this module as a library are free
// to never call it.
func AddFileLogger(path string) error {
	w := l4g.NewFileLogWriter(path, false)
	if w == nil {
		return os.ErrInvalid
	}
	logger.AddFilter("file", l4g.DEBUG, w)
	return nil
}

func Finest(format string, args ...interface{}) { logger.Finest(format, args...) }
func Fine(format string, args ...interface{})   { logger.Fine(format, args...) }
func Debug(format string, args ...interface{})  { logger.Debug(format, args...) }
func Info(format string, args ...interface{})   { logger.Info(format, args...) }
func Warn(format string, args ...interface{}) error {
	return logger.Warn(format, args...)
}
func Error(format string, args ...interface{}) error {
	return logger.Error(format, args...)
}
func Critical(format string, args ...interface{}) error {
	return logger.Critical(format, args...)
}
