package client

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/jeffrom/logsock/config"
	"github.com/jeffrom/logsock/internal"
	"github.com/jeffrom/logsock/stats"
	"github.com/pkg/errors"
)

var bufPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

func getBuffer(size int) *bytes.Buffer {
	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	if size > 0 {
		b.Grow(size)
	}
	return b
}

func putBuffer(b *bytes.Buffer) {
	b.Reset()
	bufPool.Put(b)
}

type closeWriter interface {
	CloseWrite() error
}

type flusher interface {
	Flush() error
}

// Writer buffers written bytes in memory and sends everything buffered as a
// single write on a TCP connection when Flush is called. It is the last hop
// of a log pipeline: callers write one formatted record, then flush it.
//
// A Writer is not safe for concurrent use. All Write, Flush, and Close calls
// for one instance must come from a single caller at a time; callers sharing
// a writer must hold their own lock across write and flush.
//
// A Writer never reconnects or retries. After Flush fails, the caller decides
// whether to dial a new one.
type Writer struct {
	conf     *config.Config
	addr     net.IP
	port     int
	target   string
	conn     net.Conn
	buf      *bytes.Buffer // pending bytes, never handed to callers
	state    writerState
	outShut  bool
	dialer   Dialer
	resolver Resolver
	reporter Reporter
	stats    *stats.Stats
}

// Dial resolves host and connects to it with the default configuration.
func Dial(host string, port int) (*Writer, error) {
	return DialConfig(host, port, config.Default)
}

// DialConfig resolves host, connects to (address, port), and returns a
// Writer owning the connection. On failure no Writer is returned and any
// partially opened connection is closed.
func DialConfig(host string, port int, conf *config.Config, opts ...Option) (*Writer, error) {
	w := newWriter(conf, opts...)
	w.port = port

	ip, err := w.resolve(host)
	if err != nil {
		return nil, err
	}
	w.addr = ip
	w.target = net.JoinHostPort(ip.String(), strconv.Itoa(port))

	if err := w.connect(); err != nil {
		return nil, err
	}
	return w, nil
}

// NewWriterConn returns a Writer that owns an already open connection. The
// endpoint is taken from the connection's remote address.
func NewWriterConn(conn net.Conn, conf *config.Config, opts ...Option) *Writer {
	w := newWriter(conf, opts...)
	if raddr := conn.RemoteAddr(); raddr != nil {
		w.target = raddr.String()
		if tcpAddr, ok := raddr.(*net.TCPAddr); ok {
			w.addr = tcpAddr.IP
			w.port = tcpAddr.Port
		}
	}
	w.conn = conn
	w.state = stateOpen
	return w
}

func newWriter(conf *config.Config, opts ...Option) *Writer {
	if conf == nil {
		conf = config.Default
	}
	w := &Writer{
		conf:     conf,
		buf:      getBuffer(conf.InitialBufferSize),
		dialer:   &netDialer{},
		resolver: net.DefaultResolver,
		reporter: NewLogrusReporter(internal.Logger),
		stats:    stats.New(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Writer) resolve(host string) (net.IP, error) {
	ctx := context.Background()
	if w.conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.conf.Timeout)
		defer cancel()
	}

	addrs, err := w.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, newError("resolve", host, ErrResolution, err)
	}
	if len(addrs) == 0 {
		return nil, newError("resolve", host, ErrResolution, errors.New("no addresses found"))
	}
	internal.Debugf(w.conf, "resolved %s to %s", host, addrs[0].IP)
	return addrs[0].IP, nil
}

func (w *Writer) connect() error {
	internal.Debugf(w.conf, "connecting to %s", w.target)
	conn, err := w.dialer.DialTimeout("tcp", w.target, w.conf.Timeout)
	if err != nil {
		if conn != nil {
			internal.IgnoreError(w.conf.Verbose, conn.Close())
		}
		return newError("dial", w.target, ErrConnection, err)
	}

	if w.conf.SendBufferSize > 0 {
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if err := tcpConn.SetWriteBuffer(w.conf.SendBufferSize); err != nil {
				internal.IgnoreError(w.conf.Verbose, conn.Close())
				return newError("dial", w.target, ErrConnection, err)
			}
		}
	}

	w.conn = conn
	w.state = stateOpen
	return nil
}

// Write appends p to the pending buffer. It does no network I/O and always
// returns len(p), nil.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.buf.Write(p)
	w.stats.Add(stats.BytesBuffered, int64(n))
	return n, err
}

// WriteRange appends n bytes of p starting at off to the pending buffer.
func (w *Writer) WriteRange(p []byte, off, n int) error {
	if off < 0 || n < 0 || off > len(p) || n > len(p)-off {
		return newError("write", w.target, ErrRange,
			errors.Errorf("[%d:%d] of %d bytes", off, off+n, len(p)))
	}
	_, err := w.Write(p[off : off+n])
	return err
}

// WriteByte appends a single byte to the pending buffer.
func (w *Writer) WriteByte(b byte) error {
	err := w.buf.WriteByte(b)
	w.stats.Incr(stats.BytesBuffered)
	return err
}

// Flush sends everything written since the last flush as one write on the
// connection. An empty buffer is not sent.
//
// If the connection is already closed, shut down for output, or
// disconnected, Flush returns ErrConnectionLost and the pending bytes stay
// buffered. Otherwise the pending bytes are taken out of the buffer before
// sending, and a failed send returns ErrTransmission or ErrIO without
// retrying: those bytes are lost.
//
// A nil return means the bytes were handed to the operating system, not that
// the remote end received them.
func (w *Writer) Flush() error {
	if w.buf.Len() == 0 {
		w.stats.Incr(stats.EmptyFlushes)
		return nil
	}

	if reason := w.checkConn(); reason != "" {
		err := newError("flush", w.target, ErrConnectionLost, errors.New(reason))
		w.stats.Incr(stats.ConnectionLost)
		w.reporter.Report(Event{
			Kind:  EventConnectionLost,
			Addr:  w.target,
			Bytes: w.buf.Len(),
			Err:   err,
		})
		return err
	}

	snapshot := w.buf
	w.buf = getBuffer(w.conf.InitialBufferSize)
	defer putBuffer(snapshot)

	p := snapshot.Bytes()
	internal.Debugf(w.conf, "flushing %d bytes to %s: %q", len(p), w.target, internal.Prettybuf(p))
	if err := w.send(p); err != nil {
		kind := ErrIO
		if isConnErr(err) {
			kind = ErrTransmission
		}
		ferr := newError("flush", w.target, kind, err)
		w.stats.Incr(stats.SendErrors)
		w.reporter.Report(Event{
			Kind:  EventSendFailed,
			Addr:  w.target,
			Bytes: len(p),
			Err:   ferr,
		})
		return ferr
	}

	w.stats.Incr(stats.Flushes)
	w.stats.Add(stats.BytesSent, int64(len(p)))
	return nil
}

// checkConn returns why the connection can't be written to, or "" if it can.
func (w *Writer) checkConn() string {
	switch {
	case w.conn == nil:
		return "no connection"
	case w.state == stateClosed:
		return "connection closed"
	case w.outShut:
		return "connection shut down for output"
	case w.conn.RemoteAddr() == nil:
		return "not connected"
	}
	return ""
}

func (w *Writer) send(p []byte) error {
	if w.conf.WriteTimeout > 0 {
		internal.LogError(w.conn.SetWriteDeadline(time.Now().Add(w.conf.WriteTimeout)))
		defer func() {
			internal.IgnoreError(w.conf.Verbose, w.conn.SetWriteDeadline(time.Time{}))
		}()
	}

	n, err := w.conn.Write(p)
	if err != nil {
		return err
	}
	if n < len(p) {
		return io.ErrShortWrite
	}

	if f, ok := w.conn.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// CloseWrite shuts down the sending side of the connection. Later flushes
// fail with ErrConnectionLost.
func (w *Writer) CloseWrite() error {
	if reason := w.checkConn(); reason != "" {
		return newError("closewrite", w.target, ErrConnectionLost, errors.New(reason))
	}
	cw, ok := w.conn.(closeWriter)
	if !ok {
		return newError("closewrite", w.target, ErrIO,
			errors.Errorf("%T does not support half-close", w.conn))
	}
	if err := cw.CloseWrite(); err != nil {
		return newError("closewrite", w.target, ErrIO, err)
	}
	w.outShut = true
	return nil
}

// Close forgets the endpoint address and closes the connection. Calling
// Close more than once is a no-op.
func (w *Writer) Close() error {
	w.addr = nil
	if w.conn == nil || w.state == stateClosed {
		return nil
	}

	internal.Debugf(w.conf, "closing connection to %s", w.target)
	w.state = stateClosed
	if err := w.conn.Close(); err != nil {
		return errors.Wrapf(err, "closing connection to %s", w.target)
	}
	return nil
}

// Port returns the port given at construction.
func (w *Writer) Port() int {
	return w.port
}

// RemoteAddr returns the endpoint as "ip:port", or "" once the writer is
// closed.
func (w *Writer) RemoteAddr() string {
	if w.addr == nil {
		return ""
	}
	return net.JoinHostPort(w.addr.String(), strconv.Itoa(w.port))
}

// SendBufferSize returns the connection's SO_SNDBUF. It is diagnostic only.
func (w *Writer) SendBufferSize() (int, error) {
	if w.conn == nil || w.state == stateClosed {
		return 0, newError("sndbuf", w.target, ErrConnection, errors.New("no open connection"))
	}
	n, err := sendBufferSize(w.conn)
	if err != nil {
		return 0, newError("sndbuf", w.target, ErrConnection, err)
	}
	return n, nil
}

// Buffered returns the number of pending bytes.
func (w *Writer) Buffered() int {
	return w.buf.Len()
}

// State returns "OPEN" or "CLOSED".
func (w *Writer) State() string {
	return w.state.String()
}

// Stats returns the writer's counters.
func (w *Writer) Stats() *stats.Stats {
	return w.stats
}
