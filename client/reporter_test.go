package client

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusReporter(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := NewLogrusReporter(logger)

	lost := newError("flush", "10.0.0.1:514", ErrConnectionLost, errors.New("connection closed"))
	r.Report(Event{Kind: EventConnectionLost, Addr: "10.0.0.1:514", Bytes: 12, Err: lost})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "lost connection", entry.Message)
	assert.Equal(t, "CONNECTION_LOST", entry.Data["event"])
	assert.Equal(t, "10.0.0.1:514", entry.Data["addr"])
	assert.Equal(t, 12, entry.Data["bytes"])
	assert.Equal(t, lost, entry.Data[logrus.ErrorKey])

	r.Report(Event{Kind: EventSendFailed, Addr: "10.0.0.1:514", Bytes: 3})
	entry = hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "caught error while writing to socket", entry.Message)
	assert.NotContains(t, entry.Data, logrus.ErrorKey)

	assert.Len(t, hook.AllEntries(), 2)
}

func TestLogrusReporterFromWriter(t *testing.T) {
	logger, hook := test.NewNullLogger()
	w, mc, _ := newPipeWriter(t, WithReporter(NewLogrusReporter(logger)))
	mc.Disconnect()

	_, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	require.Error(t, w.Flush())

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, 3, hook.LastEntry().Data["bytes"])
}

func TestMockReporter(t *testing.T) {
	r := NewMockReporter()
	assert.Empty(t, r.Events())

	r.Report(Event{Kind: EventSendFailed, Bytes: 1})
	r.Report(Event{Kind: EventConnectionLost, Bytes: 2})

	events := r.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventSendFailed, events[0].Kind)
	assert.Equal(t, EventConnectionLost, events[1].Kind)

	events[0].Bytes = 100
	assert.Equal(t, 1, r.Events()[0].Bytes, "Events returns a copy")
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "CONNECTION_LOST", EventConnectionLost.String())
	assert.Equal(t, "SEND_FAILED", EventSendFailed.String())
	assert.Equal(t, "UNINITIALIZED", EventKind(0).String())
	assert.Equal(t, "INVALID", EventKind(99).String())
}
