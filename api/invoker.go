// File: api/invoker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Invoker contract for serialized boundary invocations.

package api

import (
	"context"

	"github.com/momentics/netskel/protocol"
)

// Invoker performs boundary invocations against the stub peer. All
// calls are funneled through a single owner, so at most one invocation
// is ever in flight regardless of how many goroutines call Invoke.
//
// Invoke sends the descriptor in its current phase and merges the
// peer's answer back into it before returning. A StatusBusy answer is
// not surfaced: the peer may only report it when serialization is
// broken, so the implementation treats it as a fatal fault.
type Invoker interface {
	Invoke(ctx context.Context, d *protocol.Descriptor) (protocol.Status, error)

	// Doorbell exposes the underlying link's work notification.
	Doorbell() <-chan struct{}

	Close() error
}
