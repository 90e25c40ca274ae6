package client

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// EventKind identifies a diagnostic event.
type EventKind uint32

const (
	_ EventKind = iota

	// EventConnectionLost is reported when Flush finds the connection
	// unusable before sending.
	EventConnectionLost

	// EventSendFailed is reported when the send itself fails.
	EventSendFailed
)

func (k EventKind) String() string {
	switch k {
	case EventConnectionLost:
		return "CONNECTION_LOST"
	case EventSendFailed:
		return "SEND_FAILED"
	case 0:
		return "UNINITIALIZED"
	default:
		return "INVALID"
	}
}

// Event describes a failure observed by a Writer.
type Event struct {
	Kind EventKind
	// Addr is the endpoint, as "host:port".
	Addr string
	// Bytes is the number of bytes affected: still pending for
	// EventConnectionLost, dropped for EventSendFailed.
	Bytes int
	Err   error
}

// Reporter receives diagnostic events. Writers report every connection loss
// and send failure here in addition to returning the error, so failures stay
// visible when callers discard errors.
type Reporter interface {
	Report(ev Event)
}

// LogrusReporter logs events with a logrus logger.
type LogrusReporter struct {
	logger logrus.FieldLogger
}

// NewLogrusReporter returns a new instance of LogrusReporter
func NewLogrusReporter(logger logrus.FieldLogger) *LogrusReporter {
	return &LogrusReporter{logger: logger}
}

// Report implements Reporter
func (r *LogrusReporter) Report(ev Event) {
	entry := r.logger.WithFields(logrus.Fields{
		"event": ev.Kind.String(),
		"addr":  ev.Addr,
		"bytes": ev.Bytes,
	})
	if ev.Err != nil {
		entry = entry.WithError(ev.Err)
	}

	switch ev.Kind {
	case EventConnectionLost:
		entry.Warn("lost connection")
	case EventSendFailed:
		entry.Error("caught error while writing to socket")
	default:
		entry.Info("writer event")
	}
}

// NoopReporter discards events
type NoopReporter struct{}

// Report implements Reporter
func (r *NoopReporter) Report(ev Event) {}

// MockReporter saves reported events so they can be read in tests
type MockReporter struct {
	mu     sync.Mutex
	events []Event
}

// NewMockReporter returns a new instance of MockReporter
func NewMockReporter() *MockReporter {
	return &MockReporter{events: make([]Event, 0)}
}

// Report implements Reporter
func (m *MockReporter) Report(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// Events returns a copy of the reported events, oldest first.
func (m *MockReporter) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	evs := make([]Event, len(m.events))
	copy(evs, m.events)
	return evs
}
