// File: fake/peer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scripted untrusted peer. StubPeer speaks the stub side of the
// boundary protocol over an in-process pipe link: it queues pending
// operations, owns the "untrusted memory" the descriptors' buffer
// tokens point into, answers copy-in requests from that memory and
// absorbs put-result payloads back into it. Every exchange lands in a
// journal so tests can assert ordering across the boundary.

package fake

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/momentics/netskel/protocol"
	"github.com/momentics/netskel/transport"
)

// Completion records one result delivered by the dispatcher.
type Completion struct {
	Op     protocol.Op
	Result int32
	Sizes  [protocol.NumSlots]uint32
}

// StubPeer is the scripted untrusted side of the boundary.
type StubPeer struct {
	link *transport.PipeLink

	mu          sync.Mutex
	service     string
	handle      uint64
	ready       bool
	nextToken   uint64
	mem         map[uint64][]byte
	pending     *queue.Queue
	journal     []string
	completions []Completion

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	badHandles  atomic.Int32
}

// NewStubPeer creates a peer with no published service and an empty
// operation queue.
func NewStubPeer() *StubPeer {
	p := &StubPeer{
		mem:     make(map[uint64][]byte),
		pending: queue.New(),
	}
	p.link = transport.NewPipe(p.serve)
	return p
}

// Link returns the dispatcher-side end of the boundary.
func (p *StubPeer) Link() *transport.PipeLink { return p.link }

// Publish makes the named service discoverable under the given
// handle. Discovery before Publish answers not-found, which exercises
// the dispatcher's retry path.
func (p *StubPeer) Publish(service string, handle uint64) {
	p.mu.Lock()
	p.service = service
	p.handle = handle
	p.mu.Unlock()
}

// NewBuffer carves a region of untrusted memory and returns its token
// for use in descriptor buffer slots.
func (p *StubPeer) NewBuffer(data []byte) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextToken++
	p.mem[p.nextToken] = data
	return p.nextToken
}

// Buffer returns the current bytes of an untrusted region.
func (p *StubPeer) Buffer(token uint64) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mem[token]
}

// Enqueue queues one pending operation and rings the doorbell. The
// descriptor is the image a get-op poll will return: scalars filled
// in, buffer slots carrying tokens from NewBuffer plus declared sizes.
func (p *StubPeer) Enqueue(d *protocol.Descriptor) {
	p.mu.Lock()
	p.pending.Add(d.Clone())
	p.mu.Unlock()
	p.link.Ring()
}

// Ready reports whether the dispatcher completed its readiness
// handshake.
func (p *StubPeer) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Journal returns the ordered exchange log, entries like
// "get-op send" or "put-result send 5".
func (p *StubPeer) Journal() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.journal...)
}

// Completions returns the results delivered so far, in delivery order.
func (p *StubPeer) Completions() []Completion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Completion(nil), p.completions...)
}

// MaxInFlight reports the largest number of boundary calls ever seen
// concurrently. Anything above 1 is a serialization violation.
func (p *StubPeer) MaxInFlight() int32 { return p.maxInFlight.Load() }

// BadHandles reports calls carrying a handle other than the published
// one.
func (p *StubPeer) BadHandles() int32 { return p.badHandles.Load() }

// PendingLen reports how many operations are still queued.
func (p *StubPeer) PendingLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.Length()
}

func (p *StubPeer) serve(req []byte) ([]byte, error) {
	n := p.inFlight.Add(1)
	for {
		max := p.maxInFlight.Load()
		if n <= max || p.maxInFlight.CompareAndSwap(max, n) {
			break
		}
	}
	defer p.inFlight.Add(-1)

	kind, body, err := protocol.DecodeFrame(req)
	if err != nil {
		return nil, err
	}
	switch kind {
	case protocol.FrameDiscover:
		return p.serveDiscover(body)
	case protocol.FrameCall:
		return p.serveCall(body)
	default:
		return nil, fmt.Errorf("fake: unexpected frame %v", kind)
	}
}

func (p *StubPeer) serveDiscover(body []byte) ([]byte, error) {
	service, err := protocol.DecodeDiscover(body)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.service == "" || service != p.service {
		return protocol.EncodeDiscoverReply(protocol.StatusNotFound, 0), nil
	}
	p.journal = append(p.journal, "discover "+service)
	return protocol.EncodeDiscoverReply(protocol.StatusOK, p.handle), nil
}

func (p *StubPeer) serveCall(body []byte) ([]byte, error) {
	handle, d, err := protocol.DecodeCall(body)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if handle != p.handle {
		p.badHandles.Add(1)
	}
	switch d.Phase {
	case protocol.PhaseReady:
		p.ready = true
		p.journal = append(p.journal, "ready")
		return protocol.EncodeReply(protocol.StatusOK, nil), nil
	case protocol.PhaseGetOp:
		if p.pending.Length() == 0 {
			p.journal = append(p.journal, "get-op none")
			return protocol.EncodeReply(protocol.StatusNoPending, nil), nil
		}
		next := p.pending.Remove().(*protocol.Descriptor)
		next.Phase = protocol.PhaseGetOp
		p.journal = append(p.journal, "get-op "+next.Op.String())
		return protocol.EncodeReply(protocol.StatusOK, next), nil
	case protocol.PhaseCopyIn:
		reply := d.Clone()
		for i := range reply.Slots {
			s := &reply.Slots[i]
			if s.Kind != protocol.SlotBuffer {
				continue
			}
			s.Buf = append([]byte(nil), p.mem[s.Val]...)
		}
		p.journal = append(p.journal, "copy-in "+d.Op.String())
		return protocol.EncodeReply(protocol.StatusOK, reply), nil
	case protocol.PhasePutResult:
		var c Completion
		c.Op = d.Op
		c.Result = d.Result
		c.Sizes = d.Sizes
		for i := range d.Slots {
			s := &d.Slots[i]
			if s.Kind != protocol.SlotBuffer || s.Buf == nil {
				continue
			}
			if dst, ok := p.mem[s.Val]; ok {
				copy(dst, s.Buf)
			}
		}
		p.completions = append(p.completions, c)
		p.journal = append(p.journal, fmt.Sprintf("put-result %s %d", d.Op, d.Result))
		return protocol.EncodeReply(protocol.StatusOK, nil), nil
	default:
		return nil, fmt.Errorf("fake: unexpected phase %v", d.Phase)
	}
}
