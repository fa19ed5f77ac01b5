// Package log is the process-wide logrus logger used by the server, the CLI and
// the background export workers.
package log

import (
	"github.com/sirupsen/logrus"
)

type Level = logrus.Level

const (
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

// Fields is an alias so callers do not need to import logrus themselves.
type Fields = logrus.Fields

var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Formatter = &logrus.TextFormatter{
		DisableLevelTruncation: true,
		PadLevelText:           true,
		TimestampFormat:        "2006/01/02 15:04:05",
		FullTimestamp:          true,
	}
	return l
}

func SetLevel(level Level) {
	Logger.SetLevel(level)
}

func WithFields(fields Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

func WithError(err error) *logrus.Entry {
	return Logger.WithError(err)
}

func Debugf(format string, args ...any) {
	Logger.Debugf(format, args...)
}

func Infof(format string, args ...any) {
	Logger.Infof(format, args...)
}
func Info(args ...any) {
	Logger.Infoln(args...)
}

func Errorf(format string, args ...any) {
	Logger.Errorf(format, args...)
}
