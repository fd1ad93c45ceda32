// Package channel
// Author: momentics <momentics@gmail.com>
//
// Serialized access to the boundary. One owner goroutine performs every
// invocation against the peer link; callers rendezvous with the owner
// instead of sharing a lock. Also implements discovery of the stub
// service handle.
package channel
