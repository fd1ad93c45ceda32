//go:build !linux
// +build !linux

// File: netstack/netstack_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fallback stack for platforms without the raw socket path. Socket
// operations are refused; resolution still works through the Go
// resolver.

package netstack

import (
	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

// Stack implements api.NetStack. On this platform every socket
// operation reports EOPNOTSUPP.
type Stack struct {
	resolver
}

// New returns the stub network stack.
func New() *Stack {
	return &Stack{}
}

var _ api.NetStack = (*Stack)(nil)

func (s *Stack) Socket(domain, typ, proto int32) (int32, error) {
	return 0, api.ErrNotSupported
}

func (s *Stack) Close(fd int32) error { return api.ErrNotSupported }

func (s *Stack) Connect(fd int32, sa *protocol.Sockaddr) error { return api.ErrNotSupported }

func (s *Stack) Bind(fd int32, sa *protocol.Sockaddr) error { return api.ErrNotSupported }

func (s *Stack) Listen(fd, backlog int32) error { return api.ErrNotSupported }

func (s *Stack) Recv(fd int32, buf []byte, flags int32) (int32, error) {
	return 0, api.ErrNotSupported
}

func (s *Stack) Send(fd int32, buf []byte, flags int32) (int32, error) {
	return 0, api.ErrNotSupported
}

func (s *Stack) Read(fd int32, buf []byte) (int32, error) {
	return 0, api.ErrNotSupported
}

func (s *Stack) Write(fd int32, buf []byte) (int32, error) {
	return 0, api.ErrNotSupported
}

func (s *Stack) Select(nfds int32, r, w, e *protocol.FdSet, tv *protocol.Timeval) (int32, error) {
	return 0, api.ErrNotSupported
}
