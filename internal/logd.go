package internal

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/jeffrom/logsock/config"
	"github.com/sirupsen/logrus"
)

// Logger is the process-wide debug logger. Tests and the command line client
// may swap its output or level.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05.000",
	})
	Logger.SetLevel(logrus.DebugLevel)
}

func getFileLine(distance int) (string, int) {
	_, file, line, ok := runtime.Caller(1 + distance)
	if !ok {
		file = "???"
		line = 0
	}

	parts := strings.Split(file, "/")
	file = parts[len(parts)-1]

	return file, line
}

func stdlog(distance int, level logrus.Level, s string, args ...interface{}) {
	file, line := getFileLine(distance)
	Logger.WithField("caller", fmt.Sprintf("%s:%d", file, line)).Logf(level, s, args...)
}

// Debugf prints a debug log message if verbose output is enabled
func Debugf(conf *config.Config, s string, args ...interface{}) {
	if conf == nil || !conf.Verbose {
		return
	}

	stdlog(2, logrus.DebugLevel, s, args...)
}

// DebugfDepth prints a debug log message, attributing it to a caller further
// up the stack.
func DebugfDepth(conf *config.Config, depth int, s string, args ...interface{}) {
	if conf == nil || !conf.Verbose {
		return
	}

	stdlog(2+depth, logrus.DebugLevel, s, args...)
}

// Logf logs at info level
func Logf(s string, args ...interface{}) {
	stdlog(2, logrus.InfoLevel, s, args...)
}

// PanicOnError panics if an error is passed.
func PanicOnError(err error) {
	if err != nil {
		panic(err)
	}
}

// Prettybuf returns a human readable representation of a buffer that fits more
// or less on a log line
func Prettybuf(bufs ...[]byte) []byte {
	var flat []byte
	limit := 100
	for _, b := range bufs {
		flat = append(flat, b...)
	}
	if len(flat) > limit {
		var final []byte
		final = append(final, flat[:limit-5]...)
		final = append(final, []byte("...")...)
		final = append(final, flat[len(flat)-2:]...)
		return final
	}
	return flat
}

// CloseAll closes all supplied closers, returns the first error, and logs all
// errors.
func CloseAll(c []io.Closer) error {
	var firstErr error

	for _, cl := range c {
		if cl == nil {
			continue
		}
		if err := cl.Close(); err != nil {
			Logger.Errorf("error closing %v: %+v", cl, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// LogError logs the error if one occurred
func LogError(err error) {
	if err != nil {
		stdlog(2, logrus.ErrorLevel, "%+v", err)
	}
}

// IgnoreError logs the error at debug level if one occurred
func IgnoreError(verbose bool, err error) {
	if verbose && err != nil {
		stdlog(2, logrus.DebugLevel, "error ignored: %+v", err)
	}
}

// CopyBytes returns a copy of p
func CopyBytes(p []byte) []byte {
	b := make([]byte, len(p))
	copy(b, p)
	return b
}
