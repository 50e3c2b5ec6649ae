// Package notify delivers operator notifications. Delivery is always best
// effort: a notifier failure is logged by the caller and never changes a run's
// outcome.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

type Kind string

const (
	KindReportReady        Kind = "report_ready"
	KindAwaitingCollection Kind = "awaiting_collection"
)

type Message struct {
	Kind    Kind   `json:"kind"`
	RunID   string `json:"run_id,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, msg Message) error
}

// Log writes notifications to the process log. It is always enabled.
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	return &Log{log: log.With("notifier", "log")}
}

func (l *Log) Name() string { return "log" }

func (l *Log) Notify(ctx context.Context, msg Message) error {
	l.log.Info(msg.Subject, "kind", string(msg.Kind), "run_id", msg.RunID, "body", msg.Body)
	return nil
}

// Multi fans a message out to every notifier, continuing past failures.
type Multi struct {
	notifiers []Notifier
	log       *logger.Logger
}

func NewMulti(log *logger.Logger, notifiers ...Notifier) *Multi {
	out := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return &Multi{notifiers: out, log: log.With("component", "Notifier")}
}

func (m *Multi) Name() string { return "multi" }

// Names lists the configured notifiers.
func (m *Multi) Names() []string {
	out := make([]string, 0, len(m.notifiers))
	for _, n := range m.notifiers {
		out = append(out, n.Name())
	}
	return out
}

func (m *Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			m.log.Warn("Notification failed (continuing)", "notifier", n.Name(), "kind", string(msg.Kind), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
