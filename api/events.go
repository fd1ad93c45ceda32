// File: api/events.go
// Package api defines dispatcher lifecycle event types.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "github.com/momentics/netskel/protocol"

// OpEvent is emitted when one boundary operation completes, after its
// result has been delivered back to the peer.
type OpEvent struct {
	Op     protocol.Op
	Result int32
}

// DropEvent is emitted when an operation is discarded without
// execution, typically because its code is outside the known set.
type DropEvent struct {
	Op protocol.Op
}

// Observer receives dispatcher lifecycle events. Either callback may
// be nil. Callbacks run on dispatcher goroutines and must not block.
type Observer struct {
	OnOp   func(OpEvent)
	OnDrop func(DropEvent)
}
