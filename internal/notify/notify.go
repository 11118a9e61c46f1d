// Package notify is the toast surface of the core. It is informational only:
// no state read or write depends on a notification being delivered.
package notify

import log "github.com/sirupsen/logrus"

// Notifier receives user-facing notifications.
type Notifier interface {
	Success(msg, detail string)
	Info(msg, detail string)
	Error(msg, detail string)
}

// NewLog returns a Notifier that writes notifications to the process log.
func NewLog() Notifier {
	return &logNotifier{log: log.WithField("component", "notify")}
}

type logNotifier struct {
	log *log.Entry
}

func (n *logNotifier) Success(msg, detail string) {
	n.log.WithField("detail", detail).Info(msg)
}

func (n *logNotifier) Info(msg, detail string) {
	n.log.WithField("detail", detail).Info(msg)
}

func (n *logNotifier) Error(msg, detail string) {
	n.log.WithField("detail", detail).Error(msg)
}
