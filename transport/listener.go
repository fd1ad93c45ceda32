// File: transport/listener.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Accept side of stream links. The dispatcher serves exactly one
// untrusted peer, so the listener hands out one link per accepted
// connection and the caller decides whether to accept another after a
// link dies.

package transport

import "net"

// Listener wraps a stream listener and produces peer links.
type Listener struct {
	ln net.Listener
}

// NewListener wraps an established net.Listener.
func NewListener(ln net.Listener) *Listener {
	return &Listener{ln: ln}
}

// AcceptLink blocks for the next peer connection and wraps it.
func (l *Listener) AcceptLink() (*StreamLink, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return NewStreamLink(conn), nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close stops accepting.
func (l *Listener) Close() error {
	return l.ln.Close()
}
