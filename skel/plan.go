// File: skel/plan.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Static marshal plans. The plan table is the trust-boundary contract:
// it states, per operation, which slots cross inward before the call
// and which cross outward after it, and where each buffer's length
// comes from. Handlers stage buffers strictly according to their plan;
// tests hold the two in agreement.

package skel

import "github.com/momentics/netskel/protocol"

// Dir states how one parameter slot participates in an operation.
type Dir uint8

const (
	// DirNone marks an unused slot.
	DirNone Dir = iota
	// DirScalar marks an immediate value, readable without copy-in.
	DirScalar
	// DirIn marks a buffer copied from the peer before the call.
	DirIn
	// DirOut marks a buffer copied to the peer after the call.
	DirOut
	// DirInOut marks a buffer crossing in both directions.
	DirInOut
)

func (d Dir) String() string {
	switch d {
	case DirScalar:
		return "scalar"
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirInOut:
		return "inout"
	}
	return "none"
}

// In reports whether the slot crosses into trusted memory.
func (d Dir) In() bool { return d == DirIn || d == DirInOut }

// Out reports whether the slot crosses back to the peer.
func (d Dir) Out() bool { return d == DirOut || d == DirInOut }

// lenOwnSize means a buffer's length is carried in the descriptor's
// sibling size field for the same slot index.
const lenOwnSize = -1

// SlotPlan describes one parameter slot of an operation.
type SlotPlan struct {
	Dir Dir

	// Fixed is the buffer's wire length when it is a fixed-layout
	// record. Zero means variable length.
	Fixed uint32

	// LenFrom names the scalar slot whose value carries the buffer
	// length, or lenOwnSize when the length rides in the sibling
	// size field. Meaningful only for variable-length buffers.
	LenFrom int
}

// Plan is the complete marshal contract for one operation.
type Plan struct {
	Op    protocol.Op
	Slots [protocol.NumSlots]SlotPlan
}

// HasIn reports whether any slot must cross inward before the call.
func (p Plan) HasIn() bool {
	for _, s := range p.Slots {
		if s.Dir.In() {
			return true
		}
	}
	return false
}

// BufferLen resolves the declared length of buffer slot i from the
// descriptor, honoring the plan's size source.
func (p Plan) BufferLen(d *protocol.Descriptor, i int) int {
	s := p.Slots[i]
	if s.Fixed > 0 {
		return int(s.Fixed)
	}
	if s.LenFrom >= 0 {
		return int(uint32(d.Slots[s.LenFrom].Val))
	}
	return int(d.Sizes[i])
}

func scalar() SlotPlan             { return SlotPlan{Dir: DirScalar} }
func inFixed(n uint32) SlotPlan    { return SlotPlan{Dir: DirIn, Fixed: n} }
func inVar(from int) SlotPlan      { return SlotPlan{Dir: DirIn, LenFrom: from} }
func outVar(from int) SlotPlan     { return SlotPlan{Dir: DirOut, LenFrom: from} }
func inoutFixed(n uint32) SlotPlan { return SlotPlan{Dir: DirInOut, Fixed: n} }

// plans holds one row per operation code. Slot layouts mirror the
// POSIX signatures the peer's stubs wrap.
var plans = [protocol.NumOps]Plan{
	protocol.OpSocket: {Op: protocol.OpSocket, Slots: [protocol.NumSlots]SlotPlan{
		scalar(), scalar(), scalar(), // domain, type, protocol
	}},
	protocol.OpClose: {Op: protocol.OpClose, Slots: [protocol.NumSlots]SlotPlan{
		scalar(), // fd
	}},
	protocol.OpConnect: {Op: protocol.OpConnect, Slots: [protocol.NumSlots]SlotPlan{
		scalar(), inFixed(protocol.SockaddrSize), scalar(), // fd, addr, addrlen
	}},
	protocol.OpRecv: {Op: protocol.OpRecv, Slots: [protocol.NumSlots]SlotPlan{
		scalar(), outVar(2), scalar(), scalar(), // fd, buf, len, flags
	}},
	protocol.OpSend: {Op: protocol.OpSend, Slots: [protocol.NumSlots]SlotPlan{
		scalar(), inVar(2), scalar(), scalar(), // fd, buf, len, flags
	}},
	protocol.OpSelect: {Op: protocol.OpSelect, Slots: [protocol.NumSlots]SlotPlan{
		scalar(), // nfds
		inoutFixed(protocol.FdSetSize),
		inoutFixed(protocol.FdSetSize),
		inoutFixed(protocol.FdSetSize),
		inFixed(protocol.TimevalSize),
	}},
	protocol.OpBind: {Op: protocol.OpBind, Slots: [protocol.NumSlots]SlotPlan{
		scalar(), inFixed(protocol.SockaddrSize), scalar(), // fd, addr, addrlen
	}},
	protocol.OpListen: {Op: protocol.OpListen, Slots: [protocol.NumSlots]SlotPlan{
		scalar(), scalar(), // fd, backlog
	}},
	protocol.OpWrite: {Op: protocol.OpWrite, Slots: [protocol.NumSlots]SlotPlan{
		scalar(), inVar(2), scalar(), // fd, buf, len
	}},
	protocol.OpRead: {Op: protocol.OpRead, Slots: [protocol.NumSlots]SlotPlan{
		scalar(), outVar(2), scalar(), // fd, buf, len
	}},
	protocol.OpResolve: {Op: protocol.OpResolve, Slots: [protocol.NumSlots]SlotPlan{
		inVar(lenOwnSize),                 // node
		inVar(lenOwnSize),                 // service
		inFixed(protocol.AddrHintsSize),   // hints
		{Dir: DirOut, LenFrom: lenOwnSize}, // result records, sized by the handler
	}},
	protocol.OpResolveRelease: {Op: protocol.OpResolveRelease, Slots: [protocol.NumSlots]SlotPlan{
		scalar(), // registry handle
	}},
}

// PlanFor returns the marshal plan of op. ok is false for codes
// outside the closed set.
func PlanFor(op protocol.Op) (Plan, bool) {
	if !op.Valid() {
		return Plan{}, false
	}
	return plans[op], true
}
