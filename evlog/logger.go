// Package evlog is the logging facade used across evpoll. It is silent until
// SetLogger installs a real logger.
package evlog

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

type Fields = logrus.Fields

type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	WithFields(fields Fields) Logger
}

var global struct {
	sync.RWMutex
	logger Logger
}

func init() {
	global.logger = NewNoneLogger()
}

func SetLogger(l Logger) {
	if l == nil {
		l = NewNoneLogger()
	}
	global.Lock()
	global.logger = l
	global.Unlock()
}

func current() Logger {
	global.RLock()
	defer global.RUnlock()
	return global.logger
}

func Debugf(format string, args ...interface{}) {
	current().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	current().Infof(format, args...)
}

func Warningf(format string, args ...interface{}) {
	current().Warningf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	current().Errorf(format, args...)
}

func WithFields(fields Fields) Logger {
	return current().WithFields(fields)
}

func NewDebugLogger() Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	return NewLoggerFrom(l)
}

func NewLogger() Logger {
	return NewLoggerFrom(logrus.New())
}

// NewTextLogger writes text-formatted entries at level and above to out.
func NewTextLogger(out io.Writer, level logrus.Level) Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return NewLoggerFrom(l)
}

func NewLoggerFrom(l logrus.FieldLogger) Logger {
	return &stdLogger{l}
}

type stdLogger struct {
	logger logrus.FieldLogger
}

func (l *stdLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l *stdLogger) Infof(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

func (l *stdLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warningf(format, args...)
}

func (l *stdLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *stdLogger) WithFields(fields Fields) Logger {
	return &stdLogger{l.logger.WithFields(fields)}
}

func NewNoneLogger() Logger {
	return noneLogger{}
}

type noneLogger struct{}

func (noneLogger) Debugf(format string, args ...interface{}) {}

func (noneLogger) Infof(format string, args ...interface{}) {}

func (noneLogger) Warningf(format string, args ...interface{}) {}

func (noneLogger) Errorf(format string, args ...interface{}) {}

func (l noneLogger) WithFields(fields Fields) Logger { return l }
