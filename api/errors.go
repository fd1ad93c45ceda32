// Package api
// Author: momentics <momentics@gmail.com>
//
// Common sentinel errors for the netskel library.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrLinkClosed      = fmt.Errorf("peer link is closed")
	ErrInvokerClosed   = fmt.Errorf("invoker is closed")
	ErrNoMemory        = fmt.Errorf("payload budget exhausted")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotSupported    = fmt.Errorf("operation not supported")
	ErrNotFound        = fmt.Errorf("resource not found")
	ErrNoService       = fmt.Errorf("stub service not published")
)
