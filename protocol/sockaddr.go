// File: protocol/sockaddr.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket address record as it crosses the boundary. Only IPv4 is
// representable; the family field exists so the dispatcher can reject
// anything else with a proper errno instead of guessing.

package protocol

import (
	"encoding/binary"
	"errors"
	"net/netip"
)

// AFInet is the only address family the boundary accepts.
const AFInet = 2

// SockaddrSize is the fixed wire length of a socket address record.
const SockaddrSize = 16

// ErrShortSockaddr reports a sockaddr record shorter than SockaddrSize.
var ErrShortSockaddr = errors.New("protocol: short sockaddr record")

// Sockaddr is the boundary form of an IPv4 socket address. Port is in
// host order here; it crosses the wire big-endian like every other
// field.
type Sockaddr struct {
	Family uint16
	Port   uint16
	Addr   [4]byte
}

// Marshal writes the record into dst, which must hold SockaddrSize
// bytes. The trailing 8 bytes are zero padding.
func (sa Sockaddr) Marshal(dst []byte) error {
	if len(dst) < SockaddrSize {
		return ErrShortSockaddr
	}
	binary.BigEndian.PutUint16(dst[0:2], sa.Family)
	binary.BigEndian.PutUint16(dst[2:4], sa.Port)
	copy(dst[4:8], sa.Addr[:])
	for i := 8; i < SockaddrSize; i++ {
		dst[i] = 0
	}
	return nil
}

// Unmarshal reads the record from src.
func (sa *Sockaddr) Unmarshal(src []byte) error {
	if len(src) < SockaddrSize {
		return ErrShortSockaddr
	}
	sa.Family = binary.BigEndian.Uint16(src[0:2])
	sa.Port = binary.BigEndian.Uint16(src[2:4])
	copy(sa.Addr[:], src[4:8])
	return nil
}

// AddrPort converts the record to a netip.AddrPort for logging and
// tests.
func (sa Sockaddr) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), sa.Port)
}

// SockaddrFromAddrPort builds a boundary record from a netip address.
// Non-IPv4 addresses yield a record with a foreign family that the
// dispatcher will reject.
func SockaddrFromAddrPort(ap netip.AddrPort) Sockaddr {
	sa := Sockaddr{Port: ap.Port()}
	if ap.Addr().Is4() {
		sa.Family = AFInet
		sa.Addr = ap.Addr().As4()
	}
	return sa
}
