package client

import (
	"io"
	"net"
	"syscall"

	"github.com/pkg/errors"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrResolution is returned when the host could not be resolved.
	ErrResolution = errors.New("address resolution failed")

	// ErrConnection is returned when the connect attempt failed, or when a
	// socket option was queried without an open connection.
	ErrConnection = errors.New("connection failed")

	// ErrConnectionLost is returned by Flush when the connection was
	// already closed, shut down for output, or disconnected. The pending
	// buffer is left untouched.
	ErrConnectionLost = errors.New("lost connection")

	// ErrTransmission is returned by Flush when the send failed at the
	// connection level. The flushed bytes are gone.
	ErrTransmission = errors.New("transmission failed")

	// ErrIO is returned by Flush for any other send failure. The flushed
	// bytes are gone.
	ErrIO = errors.New("i/o failure")

	// ErrRange is returned by WriteRange when the range falls outside the
	// supplied slice.
	ErrRange = errors.New("range out of bounds")
)

// Error records a failed writer operation.
type Error struct {
	Op   string
	Addr string
	Kind error
	Err  error
}

func newError(op, addr string, kind, err error) *Error {
	return &Error{Op: op, Addr: addr, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	s := e.Op
	if e.Addr != "" {
		s += " " + e.Addr
	}
	s += ": " + e.Kind.Error()
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Cause returns the underlying cause, for github.com/pkg/errors.
func (e *Error) Cause() error { return e.Err }

// Is reports whether target is the error's kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

// isConnErr reports whether a send error came from the connection itself
// rather than from some other layer of the write path.
func isConnErr(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}
