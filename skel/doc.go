// Package skel
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The boundary dispatcher. skel drains pending operations from the stub
// peer, stages their parameters into trusted memory, executes them
// against the host network stack and delivers results back, all over a
// strictly serialized invocation channel.
//
// The flow for one operation: a doorbell wakes the drain loop, a free
// descriptor slot is acquired and filled by a get-op invocation, the
// per-op marshal plan stages parameter buffers, a copy-in invocation
// pulls input bytes across, the operation handler runs on an executor
// worker, and a put-result invocation pushes result and output bytes
// back. Every staged buffer is released on every path out of the
// worker, and the slot returns to the pool exactly once.
package skel
