package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// logrusAdapter routes watermill's logs through logrus. Watermill's info
// level is chatty, so it is logged at debug.
type logrusAdapter struct {
	log logrus.FieldLogger
}

// NewLoggerAdapter wraps log as a watermill.LoggerAdapter.
func NewLoggerAdapter(log logrus.FieldLogger) watermill.LoggerAdapter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &logrusAdapter{log: log}
}

func (a *logrusAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (a *logrusAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (a *logrusAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (a *logrusAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (a *logrusAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &logrusAdapter{log: a.log.WithFields(logrus.Fields(fields))}
}
