// File: protocol/frame_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/momentics/netskel/protocol"
)

func TestCallRoundTripCarriesResultBuffers(t *testing.T) {
	var d protocol.Descriptor
	d.Op = protocol.OpRecv
	d.Phase = protocol.PhasePutResult
	d.Result = 5
	d.SetScalar(0, 3)
	d.Slots[1].Val = 0xBEEF
	d.SetBuffer(1, []byte("hello world"))
	d.Sizes[1] = 5 // only five bytes were produced

	frame := protocol.EncodeCall(42, &d)
	kind, body, err := protocol.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if kind != protocol.FrameCall {
		t.Fatalf("kind = %v, want call", kind)
	}

	handle, got, err := protocol.DecodeCall(body)
	if err != nil {
		t.Fatalf("DecodeCall: %v", err)
	}
	if handle != 42 {
		t.Fatalf("handle = %d, want 42", handle)
	}
	if got.Op != protocol.OpRecv || got.Phase != protocol.PhasePutResult || got.Result != 5 {
		t.Fatalf("head mismatch: %+v", got)
	}
	if got.Slots[1].Val != 0xBEEF {
		t.Fatalf("buffer token lost: %#x", got.Slots[1].Val)
	}
	if !bytes.Equal(got.Slots[1].Buf, []byte("hello")) {
		t.Fatalf("carried %q, want effective size only", got.Slots[1].Buf)
	}
}

func TestCallWithoutDataCarriesReferences(t *testing.T) {
	var d protocol.Descriptor
	d.Op = protocol.OpRecv
	d.Phase = protocol.PhaseGetOp
	d.Slots[1].Val = 77
	d.SetBuffer(1, make([]byte, 64))

	frame := protocol.EncodeCall(1, &d)
	_, body, err := protocol.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	_, got, err := protocol.DecodeCall(body)
	if err != nil {
		t.Fatalf("DecodeCall: %v", err)
	}
	if got.Slots[1].Kind != protocol.SlotBuffer {
		t.Fatalf("slot kind = %v", got.Slots[1].Kind)
	}
	if got.Slots[1].Buf != nil {
		t.Fatal("reference slot carried bytes")
	}
	if got.Slots[1].Val != 77 || got.Sizes[1] != 64 {
		t.Fatalf("token/size lost: val=%d size=%d", got.Slots[1].Val, got.Sizes[1])
	}
}

func TestReplyRoundTripCopyIn(t *testing.T) {
	var d protocol.Descriptor
	d.Op = protocol.OpSend
	d.Phase = protocol.PhaseCopyIn
	d.SetBuffer(1, []byte("request-bytes"))

	frame := protocol.EncodeReply(protocol.StatusOK, &d)
	kind, body, err := protocol.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if kind != protocol.FrameReply {
		t.Fatalf("kind = %v, want reply", kind)
	}

	st, got, err := protocol.DecodeReply(body)
	if err != nil {
		t.Fatalf("DecodeReply: %v", err)
	}
	if st != protocol.StatusOK {
		t.Fatalf("status = %v", st)
	}
	if diff := cmp.Diff(d.Slots[1].Buf, got.Slots[1].Buf); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestBareStatusReply(t *testing.T) {
	frame := protocol.EncodeReply(protocol.StatusNoPending, nil)
	_, body, err := protocol.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	st, d, err := protocol.DecodeReply(body)
	if err != nil {
		t.Fatalf("DecodeReply: %v", err)
	}
	if st != protocol.StatusNoPending || d != nil {
		t.Fatalf("got status=%v desc=%v", st, d)
	}
}

func TestDoorbellRoundTrip(t *testing.T) {
	frame := protocol.EncodeDoorbell()
	kind, body, err := protocol.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if kind != protocol.FrameDoorbell || len(body) != 0 {
		t.Fatalf("kind=%v body=%d bytes", kind, len(body))
	}
}

func TestDiscoverRoundTrip(t *testing.T) {
	frame := protocol.EncodeDiscover("netskel-stubs")
	kind, body, err := protocol.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if kind != protocol.FrameDiscover {
		t.Fatalf("kind = %v", kind)
	}
	name, err := protocol.DecodeDiscover(body)
	if err != nil || name != "netskel-stubs" {
		t.Fatalf("name=%q err=%v", name, err)
	}

	reply := protocol.EncodeDiscoverReply(protocol.StatusOK, 0xA0A0)
	_, rbody, err := protocol.DecodeFrame(reply)
	if err != nil {
		t.Fatalf("DecodeFrame reply: %v", err)
	}
	st, handle, err := protocol.DecodeDiscoverReply(rbody)
	if err != nil || st != protocol.StatusOK || handle != 0xA0A0 {
		t.Fatalf("st=%v handle=%#x err=%v", st, handle, err)
	}
}

func TestReadFrameFromStream(t *testing.T) {
	var d protocol.Descriptor
	d.Op = protocol.OpClose
	d.Phase = protocol.PhaseGetOp
	d.SetScalar(0, 9)

	var stream bytes.Buffer
	stream.Write(protocol.EncodeDoorbell())
	stream.Write(protocol.EncodeCall(7, &d))

	kind, _, err := protocol.ReadFrame(&stream)
	if err != nil || kind != protocol.FrameDoorbell {
		t.Fatalf("first frame: kind=%v err=%v", kind, err)
	}
	kind, body, err := protocol.ReadFrame(&stream)
	if err != nil || kind != protocol.FrameCall {
		t.Fatalf("second frame: kind=%v err=%v", kind, err)
	}
	handle, got, err := protocol.DecodeCall(body)
	if err != nil || handle != 7 || got.Op != protocol.OpClose {
		t.Fatalf("call decode: handle=%d op=%v err=%v", handle, got.Op, err)
	}
}

func TestParseHeaderRejectsGarbage(t *testing.T) {
	good := protocol.EncodeDoorbell()

	bad := append([]byte(nil), good...)
	bad[0] ^= 0xFF
	if _, _, err := protocol.ParseHeader(bad); err != protocol.ErrBadMagic {
		t.Fatalf("bad magic: %v", err)
	}

	bad = append([]byte(nil), good...)
	bad[2] = 99
	if _, _, err := protocol.ParseHeader(bad); err != protocol.ErrBadVersion {
		t.Fatalf("bad version: %v", err)
	}

	bad = append([]byte(nil), good...)
	bad[4], bad[5], bad[6], bad[7] = 0xFF, 0xFF, 0xFF, 0xFF
	if _, _, err := protocol.ParseHeader(bad); err != protocol.ErrFrameTooLarge {
		t.Fatalf("oversized body: %v", err)
	}

	if _, _, err := protocol.ParseHeader(good[:4]); err != protocol.ErrShortFrame {
		t.Fatalf("short header: %v", err)
	}
}

func TestDecodeCallRejectsTruncatedImage(t *testing.T) {
	var d protocol.Descriptor
	d.Op = protocol.OpSend
	d.Phase = protocol.PhasePutResult
	d.SetBuffer(1, []byte("abcdef"))

	frame := protocol.EncodeCall(1, &d)
	_, body, err := protocol.DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if _, _, err := protocol.DecodeCall(body[:len(body)-3]); err != protocol.ErrBadImage {
		t.Fatalf("truncated image: %v", err)
	}
}
