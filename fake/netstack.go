// File: fake/netstack.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scripted network stack. Each method records its call in order and
// then defers to an optional override; the defaults succeed with
// uninteresting values so tests only script what they assert.

package fake

import (
	"context"
	"fmt"
	"net/netip"
	"sync"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

// NetStack implements api.NetStack with per-method overrides.
type NetStack struct {
	mu    sync.Mutex
	calls []string

	SocketFn  func(domain, typ, proto int32) (int32, error)
	CloseFn   func(fd int32) error
	ConnectFn func(fd int32, sa *protocol.Sockaddr) error
	BindFn    func(fd int32, sa *protocol.Sockaddr) error
	ListenFn  func(fd, backlog int32) error
	RecvFn    func(fd int32, buf []byte, flags int32) (int32, error)
	SendFn    func(fd int32, buf []byte, flags int32) (int32, error)
	ReadFn    func(fd int32, buf []byte) (int32, error)
	WriteFn   func(fd int32, buf []byte) (int32, error)
	SelectFn  func(nfds int32, r, w, e *protocol.FdSet, tv *protocol.Timeval) (int32, error)
	ResolveFn func(ctx context.Context, node, service string, hints *protocol.AddrHints) ([]protocol.AddrInfo, error)
}

var _ api.NetStack = (*NetStack)(nil)

// NewNetStack returns a stack whose every operation succeeds.
func NewNetStack() *NetStack { return &NetStack{} }

// Calls returns the ordered method log, entries like "connect fd=3".
func (s *NetStack) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *NetStack) record(format string, args ...any) {
	s.mu.Lock()
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
	s.mu.Unlock()
}

func (s *NetStack) Socket(domain, typ, proto int32) (int32, error) {
	s.record("socket domain=%d type=%d proto=%d", domain, typ, proto)
	if s.SocketFn != nil {
		return s.SocketFn(domain, typ, proto)
	}
	return 3, nil
}

func (s *NetStack) Close(fd int32) error {
	s.record("close fd=%d", fd)
	if s.CloseFn != nil {
		return s.CloseFn(fd)
	}
	return nil
}

func (s *NetStack) Connect(fd int32, sa *protocol.Sockaddr) error {
	s.record("connect fd=%d addr=%s", fd, sa.AddrPort())
	if s.ConnectFn != nil {
		return s.ConnectFn(fd, sa)
	}
	return nil
}

func (s *NetStack) Bind(fd int32, sa *protocol.Sockaddr) error {
	s.record("bind fd=%d addr=%s", fd, sa.AddrPort())
	if s.BindFn != nil {
		return s.BindFn(fd, sa)
	}
	return nil
}

func (s *NetStack) Listen(fd, backlog int32) error {
	s.record("listen fd=%d backlog=%d", fd, backlog)
	if s.ListenFn != nil {
		return s.ListenFn(fd, backlog)
	}
	return nil
}

func (s *NetStack) Recv(fd int32, buf []byte, flags int32) (int32, error) {
	s.record("recv fd=%d len=%d flags=%d", fd, len(buf), flags)
	if s.RecvFn != nil {
		return s.RecvFn(fd, buf, flags)
	}
	return int32(len(buf)), nil
}

func (s *NetStack) Send(fd int32, buf []byte, flags int32) (int32, error) {
	s.record("send fd=%d len=%d flags=%d", fd, len(buf), flags)
	if s.SendFn != nil {
		return s.SendFn(fd, buf, flags)
	}
	return int32(len(buf)), nil
}

func (s *NetStack) Read(fd int32, buf []byte) (int32, error) {
	s.record("read fd=%d len=%d", fd, len(buf))
	if s.ReadFn != nil {
		return s.ReadFn(fd, buf)
	}
	return int32(len(buf)), nil
}

func (s *NetStack) Write(fd int32, buf []byte) (int32, error) {
	s.record("write fd=%d len=%d", fd, len(buf))
	if s.WriteFn != nil {
		return s.WriteFn(fd, buf)
	}
	return int32(len(buf)), nil
}

func (s *NetStack) Select(nfds int32, r, w, e *protocol.FdSet, tv *protocol.Timeval) (int32, error) {
	s.record("select nfds=%d", nfds)
	if s.SelectFn != nil {
		return s.SelectFn(nfds, r, w, e, tv)
	}
	return 0, nil
}

func (s *NetStack) Resolve(ctx context.Context, node, service string, hints *protocol.AddrHints) ([]protocol.AddrInfo, error) {
	s.record("resolve node=%q service=%q", node, service)
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx, node, service, hints)
	}
	return []protocol.AddrInfo{{
		Family:   protocol.AFInet,
		SockType: 1,
		Protocol: 6,
		Addr:     protocol.SockaddrFromAddrPort(netip.MustParseAddrPort("127.0.0.1:80")),
	}}, nil
}
