// File: transport/unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Peer links over unix domain sockets, for stub peers running as a
// separate process on the same host.

package transport

import (
	"fmt"
	"net"
	"os"
)

// DialUnix connects to a stub peer listening on a unix socket.
func DialUnix(path string) (*StreamLink, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("unix dial %s: %w", path, err)
	}
	return NewStreamLink(conn), nil
}

// ListenUnix binds a unix socket for a stub peer to connect to. A
// stale socket file from a previous run is removed first.
func ListenUnix(path string) (*Listener, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("unix unlink %s: %w", path, err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("unix listen %s: %w", path, err)
	}
	return NewListener(ln), nil
}
