package testhelper

import (
	"net"
	"sync"
	"time"
)

// MockConn wraps a net.Conn and can be told to fail.
type MockConn struct {
	net.Conn
	mu         sync.Mutex
	returnErr  error
	writeErr   error
	closeErr   error
	shortWrite bool
	nilAddr    bool
	writes     [][]byte
}

// NewMockConn returns a new instance of MockConn
func NewMockConn(c net.Conn) *MockConn {
	return &MockConn{Conn: c}
}

// FailWith makes every call return err.
func (m *MockConn) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnErr = err
}

// FailWriteWith makes Write return err without writing.
func (m *MockConn) FailWriteWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// FailCloseWith makes Close return err after closing the wrapped conn.
func (m *MockConn) FailCloseWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
}

// ShortWrite makes Write report one byte less than requested.
func (m *MockConn) ShortWrite() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortWrite = true
}

// Disconnect makes RemoteAddr return nil, as an unconnected socket would.
func (m *MockConn) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nilAddr = true
}

// Writes returns every payload passed to Write, including failed ones.
func (m *MockConn) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

func (m *MockConn) Write(b []byte) (int, error) {
	m.mu.Lock()
	p := make([]byte, len(b))
	copy(p, b)
	m.writes = append(m.writes, p)
	returnErr, writeErr, short := m.returnErr, m.writeErr, m.shortWrite
	m.mu.Unlock()

	if returnErr != nil {
		return 0, returnErr
	}
	if writeErr != nil {
		return 0, writeErr
	}
	if short && len(b) > 0 {
		n, err := m.Conn.Write(b[:len(b)-1])
		return n, err
	}
	return m.Conn.Write(b)
}

func (m *MockConn) Close() error {
	m.mu.Lock()
	returnErr, closeErr := m.returnErr, m.closeErr
	m.mu.Unlock()

	if returnErr != nil {
		return returnErr
	}
	err := m.Conn.Close()
	if closeErr != nil {
		return closeErr
	}
	return err
}

func (m *MockConn) RemoteAddr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nilAddr {
		return nil
	}
	return m.Conn.RemoteAddr()
}

func (m *MockConn) SetWriteDeadline(t time.Time) error {
	m.mu.Lock()
	returnErr := m.returnErr
	m.mu.Unlock()

	if returnErr != nil {
		return returnErr
	}
	return m.Conn.SetWriteDeadline(t)
}
