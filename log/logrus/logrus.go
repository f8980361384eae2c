package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/cachecall"
)

var _ cachecall.Logger = LogrusLogger{}

// LogrusLogger adapts a logrus entry. Logrus has no notice level, so notice
// events arrive at info.
type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(msg string, f cachecall.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f cachecall.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f cachecall.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f cachecall.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
