// File: api/netstack.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Network stack abstraction executed on behalf of the stub peer.
// The real implementation wraps host sockets; the fake one backs tests.

package api

import (
	"context"

	"github.com/momentics/netskel/protocol"
)

// NetStack executes the networking operations the boundary exposes.
// Integer results follow socket semantics (descriptor or byte count);
// failures are reported through the error, which carries the errno the
// peer will see.
type NetStack interface {
	Socket(domain, typ, proto int32) (int32, error)
	Close(fd int32) error
	Connect(fd int32, sa *protocol.Sockaddr) error
	Bind(fd int32, sa *protocol.Sockaddr) error
	Listen(fd, backlog int32) error

	Recv(fd int32, buf []byte, flags int32) (int32, error)
	Send(fd int32, buf []byte, flags int32) (int32, error)
	Read(fd int32, buf []byte) (int32, error)
	Write(fd int32, buf []byte) (int32, error)

	Select(nfds int32, r, w, e *protocol.FdSet, tv *protocol.Timeval) (int32, error)

	Resolve(ctx context.Context, node, service string, hints *protocol.AddrHints) ([]protocol.AddrInfo, error)
}
