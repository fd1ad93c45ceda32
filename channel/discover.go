// File: channel/discover.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Discovery of the stub service handle. The stub side may come up after
// the dispatcher, so lookups retry with exponential backoff until the
// service appears or the context ends.

package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

// ServiceName is the well-known identifier the stub peer publishes.
const ServiceName = "netskel-stubs"

// Discover resolves the handle of the named stub service, retrying
// while the peer answers not-found.
func Discover(ctx context.Context, link api.PeerLink, service string) (uint64, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 0
	bo.Reset()

	for {
		body, err := link.Call(protocol.EncodeDiscover(service))
		if err != nil {
			return 0, fmt.Errorf("discover %s: %w", service, err)
		}
		st, handle, err := protocol.DecodeDiscoverReply(body)
		if err != nil {
			return 0, fmt.Errorf("discover %s: %w", service, err)
		}
		switch st {
		case protocol.StatusOK:
			return handle, nil
		case protocol.StatusNotFound:
			// Keep polling until the peer publishes the service.
		default:
			return 0, fmt.Errorf("discover %s: unexpected status %v", service, st)
		}

		select {
		case <-time.After(bo.NextBackOff()):
		case <-ctx.Done():
			return 0, api.ErrNoService
		}
	}
}
