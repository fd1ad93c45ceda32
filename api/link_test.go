package api_test

import (
	"context"
	"testing"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

func TestPeerLinkInterfaceCompliance(t *testing.T) {
	var _ api.PeerLink = (*mockLink)(nil)
}

func TestInvokerInterfaceCompliance(t *testing.T) {
	var _ api.Invoker = (*mockInvoker)(nil)
}

// mockLink реализует api.PeerLink для проверки интерфейса
type mockLink struct{}

func (*mockLink) Call([]byte) ([]byte, error) { return nil, nil }
func (*mockLink) Doorbell() <-chan struct{}   { return nil }
func (*mockLink) Close() error                { return nil }

type mockInvoker struct{}

func (*mockInvoker) Invoke(context.Context, *protocol.Descriptor) (protocol.Status, error) {
	return protocol.StatusOK, nil
}
func (*mockInvoker) Doorbell() <-chan struct{} { return nil }
func (*mockInvoker) Close() error              { return nil }

func TestDrainStateNames(t *testing.T) {
	if api.DrainActive.String() != "draining" || api.DrainStopped.String() != "stopped" {
		t.Fatal("DrainState names not set correctly")
	}
}
