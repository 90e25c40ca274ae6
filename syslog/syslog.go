// Package syslog turns log messages into syslog records and sends each one
// through a buffered writer as a single flush.
package syslog

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RackSec/srslog"
	"github.com/jeffrom/logsock/config"
	"github.com/jeffrom/logsock/internal"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FlushWriter is implemented by *client.Writer.
type FlushWriter interface {
	io.Writer
	Flush() error
}

// ParseFacility returns the facility named name.
func ParseFacility(name string) (srslog.Priority, error) {
	code, ok := config.FacilityCode(name)
	if !ok {
		return 0, errors.Errorf("unknown syslog facility %q", name)
	}
	return srslog.Priority(code << 3), nil
}

// SeverityForLevel maps a logrus level to a syslog severity.
func SeverityForLevel(level logrus.Level) srslog.Priority {
	switch level {
	case logrus.PanicLevel:
		return srslog.LOG_EMERG
	case logrus.FatalLevel:
		return srslog.LOG_CRIT
	case logrus.ErrorLevel:
		return srslog.LOG_ERR
	case logrus.WarnLevel:
		return srslog.LOG_WARNING
	case logrus.InfoLevel:
		return srslog.LOG_INFO
	default:
		return srslog.LOG_DEBUG
	}
}

func rawFormatter(p srslog.Priority, hostname, tag, content string) string {
	return content
}

// Formatter returns the srslog formatter for a config format name.
func Formatter(format string) (srslog.Formatter, error) {
	switch format {
	case config.FormatRFC3164:
		return srslog.RFC3164Formatter, nil
	case config.FormatRFC5424:
		return srslog.RFC5424Formatter, nil
	case config.FormatRaw:
		return rawFormatter, nil
	}
	return nil, errors.Errorf("unknown syslog format %q", format)
}

// Framer returns the srslog framer for a config framing name.
func Framer(framing string) (srslog.Framer, error) {
	switch framing {
	case config.FramingNone, config.FramingNewline:
		return srslog.DefaultFramer, nil
	case config.FramingOctetCounting:
		return srslog.RFC5425MessageLengthFramer, nil
	}
	return nil, errors.Errorf("unknown syslog framing %q", framing)
}

// Sink formats messages as syslog records and writes each one to a
// FlushWriter followed by a flush, so every record leaves as one payload.
//
// A Sink is not safe for concurrent use. Hook adds the locking.
type Sink struct {
	w        FlushWriter
	conf     *config.Config
	format   srslog.Formatter
	frame    srslog.Framer
	facility srslog.Priority
	hostname string
	tag      string
}

// NewSink returns a Sink writing to w with the record settings in conf.
func NewSink(w FlushWriter, conf *config.Config) (*Sink, error) {
	format, err := Formatter(conf.Format)
	if err != nil {
		return nil, err
	}
	frame, err := Framer(conf.Framing)
	if err != nil {
		return nil, err
	}
	facility, err := ParseFacility(conf.Facility)
	if err != nil {
		return nil, err
	}

	hostname := conf.Hostname
	if hostname == "" {
		hostname, err = os.Hostname()
		if err != nil {
			return nil, errors.Wrap(err, "looking up hostname")
		}
	}
	tag := conf.Tag
	if tag == "" {
		tag = filepath.Base(os.Args[0])
	}

	return &Sink{
		w:        w,
		conf:     conf,
		format:   format,
		frame:    frame,
		facility: facility,
		hostname: hostname,
		tag:      tag,
	}, nil
}

// Record returns msg as a framed syslog record.
func (s *Sink) Record(severity srslog.Priority, msg string) string {
	switch s.conf.Framing {
	case config.FramingNewline:
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
	case config.FramingOctetCounting:
		msg = strings.TrimRight(msg, "\n")
	}
	p := s.facility | (severity & 0x07)
	return s.frame(s.format(p, s.hostname, s.tag, msg))
}

// Send writes msg as one record and flushes it.
func (s *Sink) Send(severity srslog.Priority, msg string) error {
	rec := s.Record(severity, msg)
	internal.DebugfDepth(s.conf, 1, "record: %q", rec)
	if _, err := io.WriteString(s.w, rec); err != nil {
		return errors.Wrap(err, "buffering syslog record")
	}
	return s.w.Flush()
}
