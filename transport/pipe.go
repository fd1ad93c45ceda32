// File: transport/pipe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// In-process peer link. Calls are served synchronously by the peer's
// handler function, which mirrors the original boundary where an
// invocation suspends the caller until the other domain returns.

package transport

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

// ServeFunc handles one raw call frame and returns the encoded reply
// frame, header included.
type ServeFunc func(req []byte) ([]byte, error)

// PipeLink implements api.PeerLink over a direct function call.
type PipeLink struct {
	serve    ServeFunc
	doorbell chan struct{}
	closed   atomic.Bool
	callMu   sync.Mutex
}

// NewPipe creates a link served by the given function. Ring raises the
// link's doorbell.
func NewPipe(serve ServeFunc) *PipeLink {
	return &PipeLink{
		serve:    serve,
		doorbell: make(chan struct{}, 1),
	}
}

// Call hands the frame to the peer handler and returns the reply body,
// header stripped, matching what a stream link's read loop delivers.
func (p *PipeLink) Call(req []byte) ([]byte, error) {
	p.callMu.Lock()
	defer p.callMu.Unlock()
	if p.closed.Load() {
		return nil, api.ErrLinkClosed
	}
	reply, err := p.serve(req)
	if err != nil {
		return nil, err
	}
	_, body, err := protocol.DecodeFrame(reply)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Doorbell yields coalesced work notifications raised via Ring.
func (p *PipeLink) Doorbell() <-chan struct{} {
	return p.doorbell
}

// Ring raises the doorbell. Safe to call from any goroutine; rings
// arriving while one is already pending coalesce.
func (p *PipeLink) Ring() {
	if p.closed.Load() {
		return
	}
	select {
	case p.doorbell <- struct{}{}:
	default:
	}
}

// Close marks the link down. Subsequent calls fail with ErrLinkClosed.
func (p *PipeLink) Close() error {
	p.closed.Store(true)
	return nil
}
