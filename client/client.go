package client

import (
	"context"
	"net"
	"time"

	"github.com/jeffrom/logsock/stats"
)

// Dialer defines an interface for connecting to servers. It can be used for
// mocking in tests.
type Dialer interface {
	DialTimeout(network, addr string, timeout time.Duration) (net.Conn, error)
}

type netDialer struct{}

func (nd *netDialer) DialTimeout(network, addr string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout(network, addr, timeout)
}

// Resolver looks up the addresses of a host. *net.Resolver implements it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Option configures a Writer at construction.
type Option func(w *Writer)

// WithDialer sets the dialer used to open the connection.
func WithDialer(d Dialer) Option {
	return func(w *Writer) {
		w.dialer = d
	}
}

// WithResolver sets the resolver used to look up the host.
func WithResolver(r Resolver) Option {
	return func(w *Writer) {
		w.resolver = r
	}
}

// WithReporter sets the sink that receives connection loss and send failure
// events.
func WithReporter(r Reporter) Option {
	return func(w *Writer) {
		w.reporter = r
	}
}

// WithStats sets the counters the writer updates. Several writers may share
// one instance.
func WithStats(s *stats.Stats) Option {
	return func(w *Writer) {
		w.stats = s
	}
}
