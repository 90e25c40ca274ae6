package testhelper

import (
	"io"
	"net"
	"testing"
)

// Pipe returns both ends of an in-memory connection. Reads on the server end
// are drained in the background into the returned channel, one entry per
// write, so client writes never block.
func Pipe(t testing.TB) (<-chan []byte, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	out := make(chan []byte, 100)

	go func() {
		defer close(out)
		b := make([]byte, 1024*64)
		for {
			n, err := server.Read(b)
			if n > 0 {
				p := make([]byte, n)
				copy(p, b[:n])
				out <- p
			}
			if err != nil {
				if err != io.EOF {
					t.Logf("pipe read: %v", err)
				}
				return
			}
		}
	}()

	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return out, client
}

// UnusedAddr returns a loopback address nothing is listening on.
func UnusedAddr(t testing.TB) *net.TCPAddr {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %+v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	if err := ln.Close(); err != nil {
		t.Fatalf("close listener: %+v", err)
	}
	return addr
}
