//go:build linux
// +build linux

// File: netstack/netstack_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux network stack over raw socket syscalls. Only AF_INET sockets
// are admitted; everything else is refused with EAFNOSUPPORT before it
// reaches the kernel.

package netstack

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

// Stack implements api.NetStack against the host kernel.
type Stack struct {
	resolver
}

// New returns the host-backed network stack.
func New() *Stack {
	return &Stack{}
}

var _ api.NetStack = (*Stack)(nil)

func errnoErr(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(unix.Errno); ok {
		return Errno(e)
	}
	return err
}

func (s *Stack) Socket(domain, typ, proto int32) (int32, error) {
	if domain != protocol.AFInet {
		return 0, Errno(unix.EAFNOSUPPORT)
	}
	fd, err := unix.Socket(int(domain), int(typ), int(proto))
	if err != nil {
		return 0, errnoErr(err)
	}
	return int32(fd), nil
}

func (s *Stack) Close(fd int32) error {
	return errnoErr(unix.Close(int(fd)))
}

func sockaddrInet4(sa *protocol.Sockaddr) (*unix.SockaddrInet4, error) {
	if sa.Family != protocol.AFInet {
		return nil, Errno(unix.EAFNOSUPPORT)
	}
	out := &unix.SockaddrInet4{Port: int(sa.Port)}
	out.Addr = sa.Addr
	return out, nil
}

func (s *Stack) Connect(fd int32, sa *protocol.Sockaddr) error {
	usa, err := sockaddrInet4(sa)
	if err != nil {
		return err
	}
	return errnoErr(unix.Connect(int(fd), usa))
}

func (s *Stack) Bind(fd int32, sa *protocol.Sockaddr) error {
	usa, err := sockaddrInet4(sa)
	if err != nil {
		return err
	}
	return errnoErr(unix.Bind(int(fd), usa))
}

func (s *Stack) Listen(fd, backlog int32) error {
	return errnoErr(unix.Listen(int(fd), int(backlog)))
}

func (s *Stack) Recv(fd int32, buf []byte, flags int32) (int32, error) {
	n, _, err := unix.Recvfrom(int(fd), buf, int(flags))
	if err != nil {
		return 0, errnoErr(err)
	}
	return int32(n), nil
}

func (s *Stack) Send(fd int32, buf []byte, flags int32) (int32, error) {
	n, err := unix.SendmsgN(int(fd), buf, nil, nil, int(flags))
	if err != nil {
		return 0, errnoErr(err)
	}
	return int32(n), nil
}

func (s *Stack) Read(fd int32, buf []byte) (int32, error) {
	n, err := unix.Read(int(fd), buf)
	if err != nil {
		return 0, errnoErr(err)
	}
	return int32(n), nil
}

func (s *Stack) Write(fd int32, buf []byte) (int32, error) {
	n, err := unix.Write(int(fd), buf)
	if err != nil {
		return 0, errnoErr(err)
	}
	return int32(n), nil
}

func toUnixFdSet(in *protocol.FdSet) *unix.FdSet {
	if in == nil {
		return nil
	}
	var out unix.FdSet
	for fd := 0; fd < protocol.FdSetBits; fd++ {
		if in.IsSet(fd) {
			out.Set(fd)
		}
	}
	return &out
}

func fromUnixFdSet(out *protocol.FdSet, in *unix.FdSet) {
	if out == nil || in == nil {
		return
	}
	out.Zero()
	for fd := 0; fd < protocol.FdSetBits; fd++ {
		if in.IsSet(fd) {
			out.Set(fd)
		}
	}
}

// Select forwards to the kernel and writes the surviving descriptors
// back into the caller's sets, as select(2) does.
func (s *Stack) Select(nfds int32, r, w, e *protocol.FdSet, tv *protocol.Timeval) (int32, error) {
	ur, uw, ue := toUnixFdSet(r), toUnixFdSet(w), toUnixFdSet(e)
	var utv *unix.Timeval
	if tv != nil {
		utv = new(unix.Timeval)
		*utv = unix.NsecToTimeval(tv.Duration().Nanoseconds())
	}
	n, err := unix.Select(int(nfds), ur, uw, ue, utv)
	if err != nil {
		return 0, errnoErr(err)
	}
	fromUnixFdSet(r, ur)
	fromUnixFdSet(w, uw)
	fromUnixFdSet(e, ue)
	return int32(n), nil
}
