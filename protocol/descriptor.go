// File: protocol/descriptor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Request descriptor with tagged parameter slots. A slot carries either
// a scalar value or a buffer; the two are never confused because the
// tag travels with the slot on the wire and in memory.

package protocol

import (
	"encoding/binary"
	"errors"
)

// NumSlots is the number of parameter slots in a descriptor.
const NumSlots = 5

// SlotKind tags the content of a parameter slot.
type SlotKind uint8

const (
	// SlotEmpty marks an unused slot.
	SlotEmpty SlotKind = iota
	// SlotScalar marks a slot holding an immediate value in Val.
	SlotScalar
	// SlotBuffer marks a slot referring to a byte buffer. Val holds
	// the peer-side buffer token; Buf holds the locally staged bytes
	// once they exist.
	SlotBuffer
)

// Slot is one parameter of a boundary operation.
type Slot struct {
	Kind SlotKind
	Val  uint64
	Buf  []byte
}

// Descriptor is the request record exchanged with the stub peer.
// One descriptor describes one operation across all its phases.
type Descriptor struct {
	Op     Op
	Phase  Phase
	Result int32
	Slots  [NumSlots]Slot
	Sizes  [NumSlots]uint32
}

// Reset clears the descriptor for reuse, dropping buffer references.
func (d *Descriptor) Reset() {
	*d = Descriptor{}
}

// SetScalar stores an immediate value in slot i.
func (d *Descriptor) SetScalar(i int, v uint64) {
	d.Slots[i] = Slot{Kind: SlotScalar, Val: v}
}

// SetBuffer attaches a staged buffer to slot i, keeping the peer token
// already recorded in Val. Sizes[i] is set to the buffer length; callers
// that track a shorter effective length overwrite it afterwards.
func (d *Descriptor) SetBuffer(i int, buf []byte) {
	d.Slots[i].Kind = SlotBuffer
	d.Slots[i].Buf = buf
	d.Sizes[i] = uint32(len(buf))
}

// CopyFrom overwrites d with the image of src. Buffer references are
// shared, not duplicated.
func (d *Descriptor) CopyFrom(src *Descriptor) {
	*d = *src
}

// Clone returns a deep copy of d, duplicating staged buffers.
func (d *Descriptor) Clone() *Descriptor {
	c := *d
	for i := range c.Slots {
		if d.Slots[i].Buf != nil {
			c.Slots[i].Buf = append([]byte(nil), d.Slots[i].Buf...)
		}
	}
	return &c
}

// FillBuffers copies payload bytes from src into the staged buffers of
// d, slot by slot. A copy never grows a destination buffer: bytes
// beyond the staged length are discarded. Slots that are not buffers on
// both sides are left untouched, as are all scalars and sizes. Returns
// the total number of bytes copied.
func (d *Descriptor) FillBuffers(src *Descriptor) int {
	total := 0
	for i := range d.Slots {
		if d.Slots[i].Kind != SlotBuffer || src.Slots[i].Kind != SlotBuffer {
			continue
		}
		if src.Slots[i].Buf == nil {
			continue
		}
		total += copy(d.Slots[i].Buf, src.Slots[i].Buf)
	}
	return total
}

// Wire slot tags. A buffer slot is sent as a bare reference (token
// only) or with its bytes attached, depending on the phase.
const (
	wireSlotEmpty  = 0
	wireSlotScalar = 1
	wireSlotRef    = 2
	wireSlotData   = 3
)

// Fixed image layout: op u32, phase u32, result u32, then per slot
// kind u8, val u64, size u32. Data sections for wireSlotData slots
// follow as len u32 plus bytes, in slot order.
const imageFixedSize = 12 + NumSlots*13

var (
	// ErrBadImage reports a descriptor image that cannot be decoded.
	ErrBadImage = errors.New("protocol: malformed descriptor image")
)

func (d *Descriptor) imageSize(carryData bool) int {
	n := imageFixedSize
	if !carryData {
		return n
	}
	for i := range d.Slots {
		if d.Slots[i].Kind == SlotBuffer && d.Slots[i].Buf != nil {
			n += 4 + d.dataLen(i)
		}
	}
	return n
}

// dataLen is the number of staged bytes actually carried for slot i:
// the effective size, clamped to the staged buffer.
func (d *Descriptor) dataLen(i int) int {
	n := int(d.Sizes[i])
	if b := len(d.Slots[i].Buf); n > b {
		n = b
	}
	return n
}

// appendImage serializes the descriptor, attaching buffer bytes when
// carryData is set.
func (d *Descriptor) appendImage(b []byte, carryData bool) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(d.Op))
	b = binary.BigEndian.AppendUint32(b, uint32(d.Phase))
	b = binary.BigEndian.AppendUint32(b, uint32(d.Result))
	for i := range d.Slots {
		s := &d.Slots[i]
		kind := byte(wireSlotEmpty)
		switch s.Kind {
		case SlotScalar:
			kind = wireSlotScalar
		case SlotBuffer:
			if carryData && s.Buf != nil {
				kind = wireSlotData
			} else {
				kind = wireSlotRef
			}
		}
		b = append(b, kind)
		b = binary.BigEndian.AppendUint64(b, s.Val)
		b = binary.BigEndian.AppendUint32(b, d.Sizes[i])
	}
	if carryData {
		for i := range d.Slots {
			s := &d.Slots[i]
			if s.Kind != SlotBuffer || s.Buf == nil {
				continue
			}
			n := d.dataLen(i)
			b = binary.BigEndian.AppendUint32(b, uint32(n))
			b = append(b, s.Buf[:n]...)
		}
	}
	return b
}

// decodeImage parses a descriptor image, allocating fresh buffers for
// any attached data sections. Returns the descriptor and the number of
// bytes consumed.
func decodeImage(b []byte) (*Descriptor, int, error) {
	if len(b) < imageFixedSize {
		return nil, 0, ErrBadImage
	}
	d := &Descriptor{
		Op:     Op(binary.BigEndian.Uint32(b[0:4])),
		Phase:  Phase(binary.BigEndian.Uint32(b[4:8])),
		Result: int32(binary.BigEndian.Uint32(b[8:12])),
	}
	var withData [NumSlots]bool
	off := 12
	for i := 0; i < NumSlots; i++ {
		kind := b[off]
		val := binary.BigEndian.Uint64(b[off+1 : off+9])
		size := binary.BigEndian.Uint32(b[off+9 : off+13])
		off += 13
		switch kind {
		case wireSlotEmpty:
		case wireSlotScalar:
			d.Slots[i] = Slot{Kind: SlotScalar, Val: val}
		case wireSlotRef:
			d.Slots[i] = Slot{Kind: SlotBuffer, Val: val}
		case wireSlotData:
			d.Slots[i] = Slot{Kind: SlotBuffer, Val: val}
			withData[i] = true
		default:
			return nil, 0, ErrBadImage
		}
		d.Sizes[i] = size
	}
	for i := 0; i < NumSlots; i++ {
		if !withData[i] {
			continue
		}
		if len(b[off:]) < 4 {
			return nil, 0, ErrBadImage
		}
		n := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if n > len(b[off:]) {
			return nil, 0, ErrBadImage
		}
		d.Slots[i].Buf = append([]byte(nil), b[off:off+n]...)
		off += n
	}
	return d, off, nil
}
