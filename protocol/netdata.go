// File: protocol/netdata.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-layout records that ride inside descriptor buffers: descriptor
// sets for select, timeouts, resolver hints and resolver results.

package protocol

import (
	"encoding/binary"
	"errors"
	"time"
)

const (
	// FdSetBits is the highest descriptor number representable in an
	// FdSet, matching the peer's select() universe.
	FdSetBits = 1024
	// FdSetSize is the wire length of an FdSet.
	FdSetSize = FdSetBits / 8

	// TimevalSize is the wire length of a Timeval.
	TimevalSize = 16

	// AddrHintsSize is the wire length of resolver hints.
	AddrHintsSize = 16

	// AddrInfoSize is the wire length of one resolved address record.
	AddrInfoSize = 24

	// resolveHeaderSize precedes the records of a resolve result.
	resolveHeaderSize = 16
)

// ErrShortRecord reports a fixed-layout record shorter than its wire
// size.
var ErrShortRecord = errors.New("protocol: short record")

// FdSet is the boundary form of a select() descriptor set.
type FdSet struct {
	Bits [FdSetBits / 64]uint64
}

// Set marks fd in the set. Out-of-range descriptors are ignored.
func (s *FdSet) Set(fd int) {
	if fd >= 0 && fd < FdSetBits {
		s.Bits[fd/64] |= 1 << (uint(fd) % 64)
	}
}

// Clear removes fd from the set.
func (s *FdSet) Clear(fd int) {
	if fd >= 0 && fd < FdSetBits {
		s.Bits[fd/64] &^= 1 << (uint(fd) % 64)
	}
}

// IsSet reports whether fd is in the set.
func (s *FdSet) IsSet(fd int) bool {
	if fd < 0 || fd >= FdSetBits {
		return false
	}
	return s.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}

// Zero clears the whole set.
func (s *FdSet) Zero() {
	s.Bits = [FdSetBits / 64]uint64{}
}

// Marshal writes the set into dst, which must hold FdSetSize bytes.
func (s *FdSet) Marshal(dst []byte) error {
	if len(dst) < FdSetSize {
		return ErrShortRecord
	}
	for i, w := range s.Bits {
		binary.BigEndian.PutUint64(dst[i*8:], w)
	}
	return nil
}

// Unmarshal reads the set from src.
func (s *FdSet) Unmarshal(src []byte) error {
	if len(src) < FdSetSize {
		return ErrShortRecord
	}
	for i := range s.Bits {
		s.Bits[i] = binary.BigEndian.Uint64(src[i*8:])
	}
	return nil
}

// Timeval is the boundary form of a select() timeout.
type Timeval struct {
	Sec  int64
	Usec int64
}

// Marshal writes the timeout into dst.
func (tv Timeval) Marshal(dst []byte) error {
	if len(dst) < TimevalSize {
		return ErrShortRecord
	}
	binary.BigEndian.PutUint64(dst[0:8], uint64(tv.Sec))
	binary.BigEndian.PutUint64(dst[8:16], uint64(tv.Usec))
	return nil
}

// Unmarshal reads the timeout from src.
func (tv *Timeval) Unmarshal(src []byte) error {
	if len(src) < TimevalSize {
		return ErrShortRecord
	}
	tv.Sec = int64(binary.BigEndian.Uint64(src[0:8]))
	tv.Usec = int64(binary.BigEndian.Uint64(src[8:16]))
	return nil
}

// Duration converts the timeout to a time.Duration.
func (tv Timeval) Duration() time.Duration {
	return time.Duration(tv.Sec)*time.Second + time.Duration(tv.Usec)*time.Microsecond
}

// AddrHints is the boundary form of resolver hints.
type AddrHints struct {
	Flags    int32
	Family   int32
	SockType int32
	Protocol int32
}

// Marshal writes the hints into dst.
func (h AddrHints) Marshal(dst []byte) error {
	if len(dst) < AddrHintsSize {
		return ErrShortRecord
	}
	binary.BigEndian.PutUint32(dst[0:4], uint32(h.Flags))
	binary.BigEndian.PutUint32(dst[4:8], uint32(h.Family))
	binary.BigEndian.PutUint32(dst[8:12], uint32(h.SockType))
	binary.BigEndian.PutUint32(dst[12:16], uint32(h.Protocol))
	return nil
}

// Unmarshal reads the hints from src.
func (h *AddrHints) Unmarshal(src []byte) error {
	if len(src) < AddrHintsSize {
		return ErrShortRecord
	}
	h.Flags = int32(binary.BigEndian.Uint32(src[0:4]))
	h.Family = int32(binary.BigEndian.Uint32(src[4:8]))
	h.SockType = int32(binary.BigEndian.Uint32(src[8:12]))
	h.Protocol = int32(binary.BigEndian.Uint32(src[12:16]))
	return nil
}

// AddrInfo is one resolved address record.
type AddrInfo struct {
	Family   uint16
	SockType uint16
	Protocol uint16
	Addr     Sockaddr
}

func (ai AddrInfo) marshal(dst []byte) {
	binary.BigEndian.PutUint16(dst[0:2], ai.Family)
	binary.BigEndian.PutUint16(dst[2:4], ai.SockType)
	binary.BigEndian.PutUint16(dst[4:6], ai.Protocol)
	dst[6], dst[7] = 0, 0
	_ = ai.Addr.Marshal(dst[8:])
}

func (ai *AddrInfo) unmarshal(src []byte) {
	ai.Family = binary.BigEndian.Uint16(src[0:2])
	ai.SockType = binary.BigEndian.Uint16(src[2:4])
	ai.Protocol = binary.BigEndian.Uint16(src[4:6])
	_ = ai.Addr.Unmarshal(src[8:])
}

// ResolveResult is the payload delivered by a resolve operation: the
// registry handle the peer must later release, plus the resolved
// records.
type ResolveResult struct {
	Handle uint64
	Infos  []AddrInfo
}

// Size returns the wire length of the result.
func (r ResolveResult) Size() int {
	return resolveHeaderSize + len(r.Infos)*AddrInfoSize
}

// Marshal writes the result into dst, which must hold Size() bytes.
func (r ResolveResult) Marshal(dst []byte) error {
	if len(dst) < r.Size() {
		return ErrShortRecord
	}
	binary.BigEndian.PutUint64(dst[0:8], r.Handle)
	binary.BigEndian.PutUint16(dst[8:10], uint16(len(r.Infos)))
	for i := 10; i < resolveHeaderSize; i++ {
		dst[i] = 0
	}
	off := resolveHeaderSize
	for i := range r.Infos {
		r.Infos[i].marshal(dst[off:])
		off += AddrInfoSize
	}
	return nil
}

// Unmarshal reads the result from src.
func (r *ResolveResult) Unmarshal(src []byte) error {
	if len(src) < resolveHeaderSize {
		return ErrShortRecord
	}
	r.Handle = binary.BigEndian.Uint64(src[0:8])
	n := int(binary.BigEndian.Uint16(src[8:10]))
	if len(src) < resolveHeaderSize+n*AddrInfoSize {
		return ErrShortRecord
	}
	r.Infos = make([]AddrInfo, n)
	off := resolveHeaderSize
	for i := range r.Infos {
		r.Infos[i].unmarshal(src[off:])
		off += AddrInfoSize
	}
	return nil
}
