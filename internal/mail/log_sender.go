package mail

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// LogSender writes messages to the process log instead of delivering them.
type LogSender struct {
	logger log.FieldLogger
}

// NewLogSender returns a LogSender using the standard logrus logger.
func NewLogSender() *LogSender {
	return &LogSender{logger: log.StandardLogger()}
}

// Send logs msg.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if errValidate := msg.Validate(); errValidate != nil {
		return errValidate
	}
	s.logger.WithFields(log.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
		"tag":     msg.Tag,
	}).Info("mail: message\n" + msg.TextBody)
	return nil
}
