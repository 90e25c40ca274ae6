//go:build !unix

package client

import (
	"net"
	"runtime"

	"github.com/pkg/errors"
)

func sendBufferSize(conn net.Conn) (int, error) {
	return 0, errors.Errorf("reading SO_SNDBUF is not supported on %s", runtime.GOOS)
}
