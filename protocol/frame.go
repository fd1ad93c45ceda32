// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Frame codec for peer links. Every message on a link is one frame:
// a fixed 8-byte header followed by a kind-specific body.

package protocol

import (
	"encoding/binary"
	"errors"
	"io"
	"strconv"
)

const (
	frameMagic   uint16 = 0x4E53 // "NS"
	frameVersion uint8  = 1

	// FrameHeaderSize is the fixed length of every frame header.
	FrameHeaderSize = 8

	// MaxFrameBody bounds the body length accepted from a link.
	MaxFrameBody = 1 << 20
)

// FrameKind discriminates frame bodies.
type FrameKind uint8

const (
	// FrameCall carries a boundary invocation: handle plus descriptor.
	FrameCall FrameKind = 1 + iota
	// FrameReply answers a call: status plus optional descriptor.
	FrameReply
	// FrameDoorbell signals pending work. It has no body.
	FrameDoorbell
	// FrameDiscover asks the peer to locate a named service.
	FrameDiscover
	// FrameDiscoverReply returns the service handle.
	FrameDiscoverReply
)

var frameKindNames = [...]string{
	FrameCall:          "call",
	FrameReply:         "reply",
	FrameDoorbell:      "doorbell",
	FrameDiscover:      "discover",
	FrameDiscoverReply: "discover-reply",
}

func (k FrameKind) String() string {
	if k >= FrameCall && int(k) < len(frameKindNames) {
		return frameKindNames[k]
	}
	return "frame(" + strconv.FormatUint(uint64(k), 10) + ")"
}

var (
	// ErrBadMagic reports a frame that does not start with the
	// protocol magic.
	ErrBadMagic = errors.New("protocol: bad frame magic")
	// ErrBadVersion reports an unsupported protocol version.
	ErrBadVersion = errors.New("protocol: unsupported frame version")
	// ErrFrameTooLarge reports a body exceeding MaxFrameBody.
	ErrFrameTooLarge = errors.New("protocol: frame body too large")
	// ErrShortFrame reports a truncated frame or body.
	ErrShortFrame = errors.New("protocol: short frame")
)

func appendHeader(b []byte, kind FrameKind, bodyLen int) []byte {
	b = binary.BigEndian.AppendUint16(b, frameMagic)
	b = append(b, frameVersion, byte(kind))
	b = binary.BigEndian.AppendUint32(b, uint32(bodyLen))
	return b
}

// ParseHeader validates a frame header and returns its kind and body
// length.
func ParseHeader(h []byte) (FrameKind, int, error) {
	if len(h) < FrameHeaderSize {
		return 0, 0, ErrShortFrame
	}
	if binary.BigEndian.Uint16(h[0:2]) != frameMagic {
		return 0, 0, ErrBadMagic
	}
	if h[2] != frameVersion {
		return 0, 0, ErrBadVersion
	}
	n := int(binary.BigEndian.Uint32(h[4:8]))
	if n > MaxFrameBody {
		return 0, 0, ErrFrameTooLarge
	}
	return FrameKind(h[3]), n, nil
}

// DecodeFrame splits a complete frame into kind and body.
func DecodeFrame(b []byte) (FrameKind, []byte, error) {
	kind, n, err := ParseHeader(b)
	if err != nil {
		return 0, nil, err
	}
	if len(b) < FrameHeaderSize+n {
		return 0, nil, ErrShortFrame
	}
	return kind, b[FrameHeaderSize : FrameHeaderSize+n], nil
}

// ReadFrame reads one frame from a stream link.
func ReadFrame(r io.Reader) (FrameKind, []byte, error) {
	var h [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return 0, nil, err
	}
	kind, n, err := ParseHeader(h[:])
	if err != nil {
		return 0, nil, err
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return kind, body, nil
}

// EncodeCall builds a call frame. Buffer bytes ride along only in the
// result-delivery phase; in every other phase buffer slots cross as
// bare references.
func EncodeCall(handle uint64, d *Descriptor) []byte {
	carry := d.Phase == PhasePutResult
	body := 8 + d.imageSize(carry)
	b := make([]byte, 0, FrameHeaderSize+body)
	b = appendHeader(b, FrameCall, body)
	b = binary.BigEndian.AppendUint64(b, handle)
	return d.appendImage(b, carry)
}

// DecodeCall parses a call frame body.
func DecodeCall(body []byte) (uint64, *Descriptor, error) {
	if len(body) < 8 {
		return 0, nil, ErrShortFrame
	}
	handle := binary.BigEndian.Uint64(body[0:8])
	d, _, err := decodeImage(body[8:])
	if err != nil {
		return 0, nil, err
	}
	return handle, d, nil
}

// EncodeReply builds a reply frame. A nil descriptor produces a bare
// status reply. Buffer bytes ride along only when answering a copy-in.
func EncodeReply(st Status, d *Descriptor) []byte {
	if d == nil {
		b := make([]byte, 0, FrameHeaderSize+4)
		b = appendHeader(b, FrameReply, 4)
		return append(b, byte(st), 0, 0, 0)
	}
	carry := d.Phase == PhaseCopyIn
	body := 4 + d.imageSize(carry)
	b := make([]byte, 0, FrameHeaderSize+body)
	b = appendHeader(b, FrameReply, body)
	b = append(b, byte(st), 1, 0, 0)
	return d.appendImage(b, carry)
}

// DecodeReply parses a reply frame body. The descriptor is nil for
// bare status replies.
func DecodeReply(body []byte) (Status, *Descriptor, error) {
	if len(body) < 4 {
		return 0, nil, ErrShortFrame
	}
	st := Status(body[0])
	if body[1] == 0 {
		return st, nil, nil
	}
	d, _, err := decodeImage(body[4:])
	if err != nil {
		return 0, nil, err
	}
	return st, d, nil
}

// EncodeDoorbell builds the bodyless doorbell frame.
func EncodeDoorbell() []byte {
	return appendHeader(make([]byte, 0, FrameHeaderSize), FrameDoorbell, 0)
}

// EncodeDiscover builds a discovery request for a named service.
func EncodeDiscover(service string) []byte {
	b := make([]byte, 0, FrameHeaderSize+len(service))
	b = appendHeader(b, FrameDiscover, len(service))
	return append(b, service...)
}

// DecodeDiscover parses a discovery request body.
func DecodeDiscover(body []byte) (string, error) {
	if len(body) == 0 {
		return "", ErrShortFrame
	}
	return string(body), nil
}

// EncodeDiscoverReply builds a discovery answer carrying the service
// handle.
func EncodeDiscoverReply(st Status, handle uint64) []byte {
	b := make([]byte, 0, FrameHeaderSize+16)
	b = appendHeader(b, FrameDiscoverReply, 16)
	b = append(b, byte(st), 0, 0, 0, 0, 0, 0, 0)
	return binary.BigEndian.AppendUint64(b, handle)
}

// DecodeDiscoverReply parses a discovery answer body.
func DecodeDiscoverReply(body []byte) (Status, uint64, error) {
	if len(body) < 16 {
		return 0, 0, ErrShortFrame
	}
	return Status(body[0]), binary.BigEndian.Uint64(body[8:16]), nil
}
