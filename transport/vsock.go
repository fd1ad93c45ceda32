// File: transport/vsock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Peer links over virtio vsock, for stub peers running inside a guest
// VM while the dispatcher runs on the host (or the other way around).

package transport

import (
	"fmt"

	"github.com/mdlayher/vsock"
)

// DialVsock connects to a stub peer at the given context id and port.
func DialVsock(contextID, port uint32) (*StreamLink, error) {
	conn, err := vsock.Dial(contextID, port, nil)
	if err != nil {
		return nil, fmt.Errorf("vsock dial %d:%d: %w", contextID, port, err)
	}
	return NewStreamLink(conn), nil
}

// ListenVsock binds a vsock port for a stub peer to connect to.
func ListenVsock(port uint32) (*Listener, error) {
	ln, err := vsock.Listen(port, nil)
	if err != nil {
		return nil, fmt.Errorf("vsock listen %d: %w", port, err)
	}
	return NewListener(ln), nil
}
