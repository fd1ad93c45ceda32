// File: protocol/ops.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Operation codes, request phases and boundary status values.
// Numbering is part of the wire contract shared with the stub peer
// and must never be reordered.

package protocol

import "strconv"

// Op identifies one networking operation requested by the stub peer.
// The set is closed: codes outside it are dropped by the dispatcher.
type Op uint32

const (
	OpSocket Op = iota
	OpClose
	OpConnect
	OpRecv
	OpSend
	OpSelect
	OpBind
	OpListen
	OpWrite
	OpRead
	OpResolve
	OpResolveRelease

	opSentinel
)

// NumOps is the number of valid operation codes.
const NumOps = int(opSentinel)

var opNames = [...]string{
	OpSocket:         "socket",
	OpClose:          "close",
	OpConnect:        "connect",
	OpRecv:           "recv",
	OpSend:           "send",
	OpSelect:         "select",
	OpBind:           "bind",
	OpListen:         "listen",
	OpWrite:          "write",
	OpRead:           "read",
	OpResolve:        "resolve",
	OpResolveRelease: "resolve-release",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "op(" + strconv.FormatUint(uint64(op), 10) + ")"
}

// Valid reports whether op is part of the closed operation set.
func (op Op) Valid() bool { return op < opSentinel }

// Phase is the control field of a descriptor. It selects what the
// receiving side must do with the descriptor image. The zero value is
// deliberately invalid so uninitialized descriptors are rejected.
type Phase uint32

const (
	// PhaseGetOp asks the peer for the next pending operation.
	PhaseGetOp Phase = iota + 1
	// PhaseCopyIn asks the peer to fill the staged input buffers.
	PhaseCopyIn
	// PhasePutResult delivers result and output buffers to the peer.
	PhasePutResult
	// PhaseReady announces dispatcher readiness at startup.
	PhaseReady
)

var phaseNames = [...]string{
	PhaseGetOp:     "get-op",
	PhaseCopyIn:    "copy-in",
	PhasePutResult: "put-result",
	PhaseReady:     "ready",
}

func (p Phase) String() string {
	if p >= PhaseGetOp && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "phase(" + strconv.FormatUint(uint64(p), 10) + ")"
}

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool { return p >= PhaseGetOp && p <= PhaseReady }

// Status is the peer's verdict on one boundary invocation.
type Status uint8

const (
	// StatusOK means the invocation was accepted and processed.
	StatusOK Status = iota
	// StatusBusy means another invocation was already in flight.
	// The dispatcher serializes all invocations, so observing this
	// value indicates a broken contract, not a transient condition.
	StatusBusy
	// StatusNoPending means no operation is queued on the peer side.
	StatusNoPending
	// StatusNotFound means a discovery request named a service the
	// peer has not published.
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBusy:
		return "busy"
	case StatusNoPending:
		return "no-pending"
	case StatusNotFound:
		return "not-found"
	}
	return "status(" + strconv.FormatUint(uint64(s), 10) + ")"
}

// Operation results follow the kernel convention: a non-negative value
// is the success result (descriptor, byte count), a negative value is
// the negated errno. The stub side translates these back into its own
// error namespace.
const (
	ResultOK int32 = 0

	ResultIO          int32 = -5  // EIO
	ResultBadf        int32 = -9  // EBADF
	ResultNoMem       int32 = -12 // ENOMEM
	ResultFault       int32 = -14 // EFAULT
	ResultInval       int32 = -22 // EINVAL
	ResultOpNotSupp   int32 = -95 // EOPNOTSUPP
	ResultAfNoSupport int32 = -97 // EAFNOSUPPORT
)
