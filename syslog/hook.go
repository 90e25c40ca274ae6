package syslog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Hook sends logrus entries to a Sink.
type Hook struct {
	mu     sync.Mutex
	sink   *Sink
	levels []logrus.Level
}

// NewHook returns a hook firing on levels, or on every level if none are
// given.
func NewHook(sink *Sink, levels ...logrus.Level) *Hook {
	if len(levels) == 0 {
		levels = logrus.AllLevels
	}
	return &Hook{sink: sink, levels: levels}
}

// Levels implements logrus.Hook
func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook
func (h *Hook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sink.Send(SeverityForLevel(entry.Level), line)
}
