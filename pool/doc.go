// Package pool
// Author: momentics <momentics@gmail.com>
//
// Resource pooling for the netskel dispatcher.
// Implements the fixed descriptor slot pool that paces the boundary and
// the budgeted payload allocator that bounds untrusted memory demand.
// See slotpool.go and allocator.go for implementation details.
package pool
