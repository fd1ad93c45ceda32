// File: api/link.go
// Author: momentics <momentics@gmail.com>
//
// Defines the peer link abstraction: the channel into the untrusted
// domain over which boundary frames travel. Implementations exist for
// in-process pipes, unix sockets and vsock.

package api

// PeerLink is a synchronous call channel to the stub peer plus its
// doorbell. A link carries at most one call at a time; the invoker
// above it enforces that.
type PeerLink interface {
	// Call sends one encoded frame and blocks for the matching reply
	// frame body.
	Call(req []byte) ([]byte, error)

	// Doorbell yields a signal whenever the peer announces pending
	// work. Signals are coalesced; one receive may stand for many
	// announcements.
	Doorbell() <-chan struct{}

	// Close tears the link down and unblocks any pending Call.
	Close() error
}
