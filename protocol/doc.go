// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Wire-level definitions for the netskel boundary: operation codes,
// request descriptors with tagged parameter slots, and the frame codec
// used on every peer link.
//
// The descriptor is the unit of exchange between the trusted dispatcher
// and the untrusted stub peer. A descriptor crosses the boundary several
// times during the life of one operation (fetch, parameter copy-in,
// result copy-out), and the codec carries buffer payloads only in the
// direction the current phase requires. All integers are big-endian.
package protocol
