// File: transport/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Peer link over a stream connection. A background read loop splits the
// inbound byte stream into frames and routes them: replies to the
// caller parked in Call, doorbells to the notification channel. The
// boundary serializes calls, so at most one reply is ever in flight.

package transport

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

// StreamLink implements api.PeerLink over a net.Conn.
type StreamLink struct {
	conn     net.Conn
	doorbell chan struct{}
	replyCh  chan []byte
	stopCh   chan struct{}
	stopOnce sync.Once
	closed   atomic.Bool
	callMu   sync.Mutex
}

// NewStreamLink wraps an established connection and starts its read
// loop.
func NewStreamLink(conn net.Conn) *StreamLink {
	l := &StreamLink{
		conn:     conn,
		doorbell: make(chan struct{}, 1),
		replyCh:  make(chan []byte, 1),
		stopCh:   make(chan struct{}),
	}
	go l.readLoop()
	return l
}

// Call writes one frame and blocks for the matching reply body.
func (l *StreamLink) Call(req []byte) ([]byte, error) {
	l.callMu.Lock()
	defer l.callMu.Unlock()
	if l.closed.Load() {
		return nil, api.ErrLinkClosed
	}
	if _, err := l.conn.Write(req); err != nil {
		// A write failing because Close tore the connection down is
		// the link going away, not a transport fault.
		if l.closed.Load() {
			return nil, api.ErrLinkClosed
		}
		l.teardown()
		return nil, fmt.Errorf("link write: %w", err)
	}
	select {
	case body := <-l.replyCh:
		return body, nil
	case <-l.stopCh:
		return nil, api.ErrLinkClosed
	}
}

// Doorbell yields coalesced work notifications from the peer.
func (l *StreamLink) Doorbell() <-chan struct{} {
	return l.doorbell
}

// Close tears the link down and unblocks any pending Call.
func (l *StreamLink) Close() error {
	l.teardown()
	return nil
}

func (l *StreamLink) teardown() {
	l.stopOnce.Do(func() {
		l.closed.Store(true)
		close(l.stopCh)
		l.conn.Close()
	})
}

func (l *StreamLink) readLoop() {
	defer l.teardown()
	for {
		kind, body, err := protocol.ReadFrame(l.conn)
		if err != nil {
			return
		}
		switch kind {
		case protocol.FrameReply, protocol.FrameDiscoverReply:
			select {
			case l.replyCh <- body:
			default:
				// Reply with no caller waiting. The peer broke the
				// one-call contract; the frame is dropped.
			}
		case protocol.FrameDoorbell:
			select {
			case l.doorbell <- struct{}{}:
			default:
			}
		default:
			// Call frames only travel toward the peer. Ignore.
		}
	}
}
