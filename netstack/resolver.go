// File: netstack/resolver.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Address resolution through the Go resolver, shaped into the fixed
// records the boundary carries. Only IPv4 answers survive; name
// lookups that yield nothing map to ENOENT.

package netstack

import (
	"context"
	"net"
	"strconv"

	"github.com/momentics/netskel/protocol"
)

const (
	sockStream = 1
	sockDgram  = 2

	protoTCP = 6
	protoUDP = 17
)

type resolver struct{}

func (resolver) Resolve(ctx context.Context, node, service string, hints *protocol.AddrHints) ([]protocol.AddrInfo, error) {
	var h protocol.AddrHints
	if hints != nil {
		h = *hints
	}
	if h.Family != 0 && h.Family != protocol.AFInet {
		return nil, ErrnoAfNoSupport
	}

	var kinds []protocol.AddrInfo
	switch h.SockType {
	case 0:
		kinds = []protocol.AddrInfo{
			{Family: protocol.AFInet, SockType: sockStream, Protocol: protoTCP},
			{Family: protocol.AFInet, SockType: sockDgram, Protocol: protoUDP},
		}
	case sockStream:
		kinds = []protocol.AddrInfo{{Family: protocol.AFInet, SockType: sockStream, Protocol: protoTCP}}
	case sockDgram:
		kinds = []protocol.AddrInfo{{Family: protocol.AFInet, SockType: sockDgram, Protocol: protoUDP}}
	default:
		return nil, ErrnoOpNotSupp
	}

	port, err := resolvePort(ctx, service, kinds[0].SockType)
	if err != nil {
		return nil, err
	}
	addrs, err := resolveNode(ctx, node)
	if err != nil {
		return nil, err
	}

	infos := make([]protocol.AddrInfo, 0, len(addrs)*len(kinds))
	for _, a := range addrs {
		for _, k := range kinds {
			k.Addr = protocol.Sockaddr{Family: protocol.AFInet, Port: port, Addr: a}
			infos = append(infos, k)
		}
	}
	return infos, nil
}

func resolvePort(ctx context.Context, service string, sockType uint16) (uint16, error) {
	if service == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(service); err == nil {
		if n < 0 || n > 65535 {
			return 0, ErrnoInval
		}
		return uint16(n), nil
	}
	network := "tcp"
	if sockType == sockDgram {
		network = "udp"
	}
	port, err := net.DefaultResolver.LookupPort(ctx, network, service)
	if err != nil {
		return 0, ErrnoInval
	}
	return uint16(port), nil
}

func resolveNode(ctx context.Context, node string) ([][4]byte, error) {
	if node == "" {
		return [][4]byte{{0, 0, 0, 0}}, nil
	}
	if ip := net.ParseIP(node); ip != nil {
		v4 := ip.To4()
		if v4 == nil {
			return nil, ErrnoAfNoSupport
		}
		return [][4]byte{{v4[0], v4[1], v4[2], v4[3]}}, nil
	}
	found, err := net.DefaultResolver.LookupIPAddr(ctx, node)
	if err != nil {
		return nil, ErrnoNoEnt
	}
	var addrs [][4]byte
	for _, ia := range found {
		if v4 := ia.IP.To4(); v4 != nil {
			addrs = append(addrs, [4]byte{v4[0], v4[1], v4[2], v4[3]})
		}
	}
	if len(addrs) == 0 {
		return nil, ErrnoNoEnt
	}
	return addrs, nil
}
