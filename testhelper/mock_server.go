package testhelper

import (
	"bytes"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/jeffrom/logsock/internal"
)

// Listener is a loopback TCP server that records what each accepted
// connection sends. Each Read result is kept as a separate payload so tests
// can check message boundaries.
type Listener struct {
	ln    net.Listener
	conns chan *ServerConn
	done  chan struct{}
	wg    sync.WaitGroup

	mu  sync.Mutex
	all []*ServerConn
}

// ServerConn is the server side of one accepted connection.
type ServerConn struct {
	net.Conn
	mu       sync.Mutex
	payloads [][]byte
	readC    chan []byte
	closedC  chan struct{}
}

// Listen starts a Listener on an ephemeral loopback port. It is stopped when
// the test finishes.
func Listen(t testing.TB) *Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %+v", err)
	}

	l := &Listener{
		ln:    ln,
		conns: make(chan *ServerConn, 10),
		done:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.loop()
	t.Cleanup(func() { internal.LogError(l.Close()) })
	return l
}

func (l *Listener) loop() {
	defer l.wg.Done()
	defer close(l.conns)
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.done:
			default:
				internal.Logger.Debugf("accept: %+v", err)
			}
			return
		}

		sc := &ServerConn{
			Conn:    conn,
			readC:   make(chan []byte, 100),
			closedC: make(chan struct{}),
		}
		l.mu.Lock()
		l.all = append(l.all, sc)
		l.mu.Unlock()

		go sc.readLoop()
		select {
		case l.conns <- sc:
		case <-l.done:
			return
		}
	}
}

// Addr returns the listener's address.
func (l *Listener) Addr() *net.TCPAddr {
	return l.ln.Addr().(*net.TCPAddr)
}

// Port returns the listener's port.
func (l *Listener) Port() int {
	return l.Addr().Port
}

// Accept waits for the next accepted connection.
func (l *Listener) Accept(t testing.TB) *ServerConn {
	t.Helper()
	select {
	case sc, ok := <-l.conns:
		if !ok {
			t.Fatal("listener closed")
		}
		return sc
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a connection")
	}
	return nil
}

// Close stops accepting and closes all accepted connections.
func (l *Listener) Close() error {
	select {
	case <-l.done:
		return nil
	default:
	}
	close(l.done)
	err := l.ln.Close()
	l.wg.Wait()

	l.mu.Lock()
	closers := make([]io.Closer, len(l.all))
	for i, sc := range l.all {
		closers[i] = sc
	}
	l.mu.Unlock()
	internal.IgnoreError(false, internal.CloseAll(closers))
	return err
}

func (sc *ServerConn) readLoop() {
	defer close(sc.closedC)

	b := make([]byte, 1024*64)
	for {
		n, err := sc.Conn.Read(b)
		if n > 0 {
			p := internal.CopyBytes(b[:n])
			sc.mu.Lock()
			sc.payloads = append(sc.payloads, p)
			sc.mu.Unlock()
			select {
			case sc.readC <- p:
			default:
			}
		}
		if err != nil {
			if err != io.EOF {
				internal.Logger.Debugf("server read: %+v", err)
			}
			return
		}
	}
}

// Next waits up to timeout for the next payload. It returns nil if nothing
// arrived.
func (sc *ServerConn) Next(timeout time.Duration) []byte {
	select {
	case p := <-sc.readC:
		return p
	case <-time.After(timeout):
		return nil
	}
}

// ReadN waits until n bytes have arrived, returning them and the number of
// reads it took.
func (sc *ServerConn) ReadN(t testing.TB, n int) ([]byte, int) {
	t.Helper()
	var buf bytes.Buffer
	reads := 0
	for buf.Len() < n {
		p := sc.Next(2 * time.Second)
		if p == nil {
			t.Fatalf("timed out after reading %d of %d bytes: %q", buf.Len(), n, buf.Bytes())
		}
		buf.Write(p)
		reads++
	}
	return buf.Bytes(), reads
}

// WaitClosed waits for the client to close the connection, returning
// everything it sent.
func (sc *ServerConn) WaitClosed(t testing.TB) []byte {
	t.Helper()
	select {
	case <-sc.closedC:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the client to close")
	}
	return sc.Received()
}

// Received returns all bytes read so far.
func (sc *ServerConn) Received() []byte {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	var flat []byte
	for _, p := range sc.payloads {
		flat = append(flat, p...)
	}
	return flat
}

// Payloads returns each read result so far.
func (sc *ServerConn) Payloads() [][]byte {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	out := make([][]byte, len(sc.payloads))
	copy(out, sc.payloads)
	return out
}
