package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Message formats understood by the syslog package.
const (
	FormatRFC3164 = "rfc3164"
	FormatRFC5424 = "rfc5424"
	FormatRaw     = "raw"
)

// Message framings understood by the syslog package.
const (
	FramingNone          = "none"
	FramingNewline       = "newline"
	FramingOctetCounting = "octet-counting"
)

// Config holds configuration variables
type Config struct {
	// File is the path of a file from which configuration is read.
	File string `json:"config-file"`

	// Verbose prints debugging information.
	Verbose bool `json:"verbose"`

	// Host is the host name or address of the log collector.
	Host string `json:"host"`

	// Port is the log collector's TCP port.
	Port int `json:"port"`

	// Timeout bounds address resolution and the connect attempt.
	Timeout time.Duration `json:"timeout"`

	// WriteTimeout sets a write deadline for each flush. Values <= 0 leave
	// the connection without a deadline.
	WriteTimeout time.Duration `json:"write-timeout"`

	// InitialBufferSize is the starting capacity of the pending buffer.
	InitialBufferSize int `json:"initial-buffer-size"`

	// SendBufferSize, if > 0, is applied as the socket's SO_SNDBUF after
	// connecting.
	SendBufferSize int `json:"send-buffer-size"`

	// Format is the syslog message format: rfc3164, rfc5424, or raw.
	Format string `json:"format"`

	// Framing is applied to each formatted message before it is flushed:
	// none, newline, or octet-counting.
	Framing string `json:"framing"`

	// Facility is the syslog facility name, ie "user" or "local0".
	Facility string `json:"facility"`

	// Tag is the syslog app name / tag.
	Tag string `json:"tag"`

	// Hostname overrides the hostname reported in syslog headers.
	Hostname string `json:"hostname"`

	// Count prints counters to stderr when the command line client exits.
	Count bool `json:"count"`
}

// New returns a new configuration object
func New() *Config {
	return &Config{}
}

func (c *Config) String() string {
	return fmt.Sprintf("%+v", *c)
}

// Default is the default application config
var Default = &Config{
	Host:              "127.0.0.1",
	Port:              514,
	Timeout:           10 * time.Second,
	WriteTimeout:      -1,
	InitialBufferSize: 1024,
	Format:            FormatRFC3164,
	Framing:           FramingNewline,
	Facility:          "user",
	Tag:               "logsock",
}

// Copy returns a copy of the configuration.
func (c *Config) Copy() *Config {
	conf := &Config{}
	*conf = *c
	return conf
}

// Validate returns an error pointing to incorrect values for the
// configuration, if any.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535 (was %d)", c.Port)
	}
	if c.InitialBufferSize < 0 {
		return errors.Errorf("initial-buffer-size must be >= 0 (was %d)", c.InitialBufferSize)
	}
	if c.SendBufferSize < 0 {
		return errors.Errorf("send-buffer-size must be >= 0 (was %d)", c.SendBufferSize)
	}

	switch c.Format {
	case FormatRFC3164, FormatRFC5424, FormatRaw:
	default:
		return errors.Errorf("unknown format %q", c.Format)
	}

	switch c.Framing {
	case FramingNone, FramingNewline, FramingOctetCounting:
	default:
		return errors.Errorf("unknown framing %q", c.Framing)
	}

	if _, ok := FacilityCode(c.Facility); !ok {
		return errors.Errorf("unknown facility %q", c.Facility)
	}
	return nil
}

var facilities = map[string]int{
	"kern":     0,
	"user":     1,
	"mail":     2,
	"daemon":   3,
	"auth":     4,
	"syslog":   5,
	"lpr":      6,
	"news":     7,
	"uucp":     8,
	"cron":     9,
	"authpriv": 10,
	"ftp":      11,
	"local0":   16,
	"local1":   17,
	"local2":   18,
	"local3":   19,
	"local4":   20,
	"local5":   21,
	"local6":   22,
	"local7":   23,
}

// FacilityCode returns the syslog facility number for name, ignoring case.
func FacilityCode(name string) (int, bool) {
	code, ok := facilities[strings.ToLower(name)]
	return code, ok
}

// DefaultTestConfig returns a testing configuration
func DefaultTestConfig(verbose bool) *Config {
	c := Default.Copy()
	c.Verbose = verbose
	c.Timeout = 2 * time.Second
	c.WriteTimeout = time.Second
	c.Hostname = "testhost"
	return c
}
