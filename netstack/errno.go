// File: netstack/errno.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Errno carrier and the mapping from Go errors to boundary results.

package netstack

import (
	"errors"
	"strconv"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

// Errno is a kernel error number carried through the error return of
// NetStack methods. Positive by convention; the wire form is negated.
type Errno int32

func (e Errno) Error() string {
	return "errno " + strconv.Itoa(int(e))
}

// Errno values produced by portable code paths. Numbering follows the
// Linux convention the wire contract is written against.
const (
	ErrnoNoEnt       Errno = 2
	ErrnoIO          Errno = 5
	ErrnoBadf        Errno = 9
	ErrnoNoMem       Errno = 12
	ErrnoInval       Errno = 22
	ErrnoOpNotSupp   Errno = 95
	ErrnoAfNoSupport Errno = 97
)

// ResultOf folds a NetStack return into the signed result the peer
// receives: the value itself on success, the negated errno otherwise.
func ResultOf(n int32, err error) int32 {
	if err == nil {
		return n
	}
	var e Errno
	if errors.As(err, &e) {
		return -int32(e)
	}
	switch {
	case errors.Is(err, api.ErrNoMemory):
		return protocol.ResultNoMem
	case errors.Is(err, api.ErrNotSupported):
		return protocol.ResultOpNotSupp
	case errors.Is(err, api.ErrInvalidArgument):
		return protocol.ResultInval
	}
	return protocol.ResultIO
}
