package transport_test

import (
	"errors"
	"testing"
	"time"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
	"github.com/momentics/netskel/transport"
)

func TestPipeLinkCallsHandler(t *testing.T) {
	var seen []byte
	link := transport.NewPipe(func(req []byte) ([]byte, error) {
		seen = append([]byte(nil), req...)
		return protocol.EncodeReply(protocol.StatusNoPending, nil), nil
	})
	defer link.Close()

	var d protocol.Descriptor
	d.Phase = protocol.PhaseGetOp
	frame := protocol.EncodeCall(3, &d)

	body, err := link.Call(frame)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	st, _, err := protocol.DecodeReply(body)
	if err != nil || st != protocol.StatusNoPending {
		t.Fatalf("reply: st=%v err=%v", st, err)
	}
	if len(seen) != len(frame) {
		t.Fatalf("handler saw %d bytes, want %d", len(seen), len(frame))
	}
}

// Replies crossing the pipe must decode exactly like replies read off
// a stream link: Call strips the frame header and hands back the body.
func TestPipeLinkStripsReplyHeader(t *testing.T) {
	link := transport.NewPipe(func([]byte) ([]byte, error) {
		return protocol.EncodeDiscoverReply(protocol.StatusOK, 42), nil
	})
	defer link.Close()

	body, err := link.Call(protocol.EncodeDiscover("netskel-stubs"))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	st, handle, err := protocol.DecodeDiscoverReply(body)
	if err != nil {
		t.Fatalf("DecodeDiscoverReply: %v", err)
	}
	if st != protocol.StatusOK || handle != 42 {
		t.Fatalf("discover reply = %v/%d, want ok/42", st, handle)
	}
}

func TestPipeLinkRingCoalesces(t *testing.T) {
	link := transport.NewPipe(nil)
	defer link.Close()

	link.Ring()
	link.Ring()
	link.Ring()

	select {
	case <-link.Doorbell():
	case <-time.After(time.Second):
		t.Fatal("doorbell never fired")
	}
	select {
	case <-link.Doorbell():
		t.Fatal("rings were not coalesced")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestPipeLinkClose(t *testing.T) {
	link := transport.NewPipe(func([]byte) ([]byte, error) {
		return nil, nil
	})
	link.Close()

	if _, err := link.Call(nil); !errors.Is(err, api.ErrLinkClosed) {
		t.Fatalf("Call after Close: %v", err)
	}

	// Ring after close must not signal.
	link.Ring()
	select {
	case <-link.Doorbell():
		t.Fatal("doorbell fired after Close")
	case <-time.After(20 * time.Millisecond):
	}
}
