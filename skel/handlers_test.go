// File: skel/handlers_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package skel_test

import (
	"bytes"
	"testing"

	"github.com/momentics/netskel/netstack"
	"github.com/momentics/netskel/protocol"
)

var errnoBadf = netstack.Errno(9)

func TestSocketForwardsDescriptor(t *testing.T) {
	h := newHarness(t, 2, 1<<20)

	h.stack.SocketFn = func(domain, typ, proto int32) (int32, error) {
		if domain != protocol.AFInet || typ != 1 || proto != 6 {
			t.Errorf("socket(%d,%d,%d), want (2,1,6)", domain, typ, proto)
		}
		return 11, nil
	}
	var d protocol.Descriptor
	d.Op = protocol.OpSocket
	d.SetScalar(0, protocol.AFInet)
	d.SetScalar(1, 1)
	d.SetScalar(2, 6)
	h.peer.Enqueue(&d)

	cs := h.waitCompletions(t, 1)
	if cs[0].Result != 11 {
		t.Fatalf("result = %d, want 11", cs[0].Result)
	}
	h.waitIdle(t)
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	h := newHarness(t, 2, 1<<20)

	var stored []byte
	h.stack.WriteFn = func(fd int32, buf []byte) (int32, error) {
		stored = append([]byte(nil), buf...)
		return int32(len(buf)), nil
	}
	h.stack.ReadFn = func(fd int32, buf []byte) (int32, error) {
		return int32(copy(buf, stored)), nil
	}

	wtok := h.peer.NewBuffer([]byte("boundary bytes"))
	var w protocol.Descriptor
	w.Op = protocol.OpWrite
	w.SetScalar(0, 5)
	setRef(&w, 1, wtok, 14)
	w.SetScalar(2, 14)
	h.peer.Enqueue(&w)
	h.waitCompletions(t, 1)

	rtok := h.peer.NewBuffer(make([]byte, 64))
	var r protocol.Descriptor
	r.Op = protocol.OpRead
	r.SetScalar(0, 5)
	setRef(&r, 1, rtok, 64)
	r.SetScalar(2, 64)
	h.peer.Enqueue(&r)

	cs := h.waitCompletions(t, 2)
	if cs[1].Result != 14 || cs[1].Sizes[1] != 14 {
		t.Fatalf("read completion = %+v, want result/size 14", cs[1])
	}
	if got := h.peer.Buffer(rtok)[:14]; !bytes.Equal(got, []byte("boundary bytes")) {
		t.Fatalf("read back %q", got)
	}
	h.waitIdle(t)
}

func TestReadErrorExposesNoPayload(t *testing.T) {
	h := newHarness(t, 2, 1<<20)

	h.stack.ReadFn = func(fd int32, buf []byte) (int32, error) {
		copy(buf, []byte("leak"))
		return 0, errnoBadf
	}
	token := h.peer.NewBuffer(make([]byte, 16))
	var d protocol.Descriptor
	d.Op = protocol.OpRead
	d.SetScalar(0, 5)
	setRef(&d, 1, token, 16)
	d.SetScalar(2, 16)
	h.peer.Enqueue(&d)

	cs := h.waitCompletions(t, 1)
	if cs[0].Result != protocol.ResultBadf {
		t.Fatalf("result = %d, want %d", cs[0].Result, protocol.ResultBadf)
	}
	if cs[0].Sizes[1] != 0 {
		t.Fatalf("out size = %d on failure, want 0", cs[0].Sizes[1])
	}
	if got := h.peer.Buffer(token); !bytes.Equal(got, make([]byte, 16)) {
		t.Fatalf("untrusted buffer mutated on failed read: %q", got)
	}
	h.waitIdle(t)
}

func TestBindAndListen(t *testing.T) {
	// One worker keeps the two operations strictly ordered.
	h := newHarness(t, 1, 1<<20)

	sa := protocol.Sockaddr{Family: protocol.AFInet, Port: 9000}
	raw := make([]byte, protocol.SockaddrSize)
	_ = sa.Marshal(raw)
	token := h.peer.NewBuffer(raw)

	var b protocol.Descriptor
	b.Op = protocol.OpBind
	b.SetScalar(0, 6)
	setRef(&b, 1, token, protocol.SockaddrSize)
	b.SetScalar(2, protocol.SockaddrSize)
	h.peer.Enqueue(&b)

	var l protocol.Descriptor
	l.Op = protocol.OpListen
	l.SetScalar(0, 6)
	l.SetScalar(1, 128)
	h.peer.Enqueue(&l)

	cs := h.waitCompletions(t, 2)
	for _, c := range cs {
		if c.Result != 0 {
			t.Fatalf("completion %+v, want result 0", c)
		}
	}
	want := []string{"bind fd=6 addr=0.0.0.0:9000", "listen fd=6 backlog=128"}
	got := h.stack.Calls()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("stack calls = %v, want %v", got, want)
	}
	h.waitIdle(t)
}

func TestSelectMarshalsSetsBothWays(t *testing.T) {
	h := newHarness(t, 2, 1<<20)

	var rset protocol.FdSet
	rset.Set(4)
	rset.Set(9)
	rraw := make([]byte, protocol.FdSetSize)
	_ = rset.Marshal(rraw)
	rtok := h.peer.NewBuffer(rraw)
	wtok := h.peer.NewBuffer(make([]byte, protocol.FdSetSize))
	etok := h.peer.NewBuffer(make([]byte, protocol.FdSetSize))

	tv := protocol.Timeval{Sec: 1, Usec: 500000}
	traw := make([]byte, protocol.TimevalSize)
	_ = tv.Marshal(traw)
	ttok := h.peer.NewBuffer(traw)

	h.stack.SelectFn = func(nfds int32, r, w, e *protocol.FdSet, got *protocol.Timeval) (int32, error) {
		if nfds != 10 {
			t.Errorf("nfds = %d, want 10", nfds)
		}
		if !r.IsSet(4) || !r.IsSet(9) || r.IsSet(5) {
			t.Error("read set did not cross inward intact")
		}
		if got == nil || got.Sec != 1 || got.Usec != 500000 {
			t.Errorf("timeout = %+v, want 1.5s", got)
		}
		// Only fd 9 is ready.
		r.Zero()
		r.Set(9)
		return 1, nil
	}

	var d protocol.Descriptor
	d.Op = protocol.OpSelect
	d.SetScalar(0, 10)
	setRef(&d, 1, rtok, protocol.FdSetSize)
	setRef(&d, 2, wtok, protocol.FdSetSize)
	setRef(&d, 3, etok, protocol.FdSetSize)
	setRef(&d, 4, ttok, protocol.TimevalSize)
	h.peer.Enqueue(&d)

	cs := h.waitCompletions(t, 1)
	if cs[0].Result != 1 {
		t.Fatalf("select result = %d, want 1", cs[0].Result)
	}
	var back protocol.FdSet
	if err := back.Unmarshal(h.peer.Buffer(rtok)); err != nil {
		t.Fatal(err)
	}
	if !back.IsSet(9) || back.IsSet(4) {
		t.Fatalf("read set did not cross outward: %+v", back)
	}
	h.waitIdle(t)
}

func TestResolveParksAndReleaseEvicts(t *testing.T) {
	h := newHarness(t, 2, 1<<20)

	ntok := h.peer.NewBuffer([]byte("localhost"))
	stok := h.peer.NewBuffer([]byte("80"))
	htok := h.peer.NewBuffer(make([]byte, protocol.AddrHintsSize))
	otok := h.peer.NewBuffer(make([]byte, 256))

	var d protocol.Descriptor
	d.Op = protocol.OpResolve
	setRef(&d, 0, ntok, 9)
	setRef(&d, 1, stok, 2)
	setRef(&d, 2, htok, protocol.AddrHintsSize)
	setRef(&d, 3, otok, 256)
	h.peer.Enqueue(&d)

	cs := h.waitCompletions(t, 1)
	if cs[0].Result != protocol.ResultOK {
		t.Fatalf("resolve result = %d, want 0", cs[0].Result)
	}
	var res protocol.ResolveResult
	if err := res.Unmarshal(h.peer.Buffer(otok)); err != nil {
		t.Fatal(err)
	}
	if res.Handle == 0 || len(res.Infos) != 1 {
		t.Fatalf("resolve payload = %+v, want one parked record", res)
	}
	if res.Infos[0].Addr.Addr != [4]byte{127, 0, 0, 1} {
		t.Fatalf("resolved address = %v", res.Infos[0].Addr.Addr)
	}

	var rel protocol.Descriptor
	rel.Op = protocol.OpResolveRelease
	rel.SetScalar(0, res.Handle)
	h.peer.Enqueue(&rel)
	cs = h.waitCompletions(t, 2)
	if cs[1].Result != protocol.ResultOK {
		t.Fatalf("release result = %d, want 0", cs[1].Result)
	}

	// Releasing twice is a peer bug and is answered with EINVAL.
	var again protocol.Descriptor
	again.Op = protocol.OpResolveRelease
	again.SetScalar(0, res.Handle)
	h.peer.Enqueue(&again)
	cs = h.waitCompletions(t, 3)
	if cs[2].Result != protocol.ResultInval {
		t.Fatalf("double release result = %d, want %d", cs[2].Result, protocol.ResultInval)
	}
	h.waitIdle(t)
	if st := h.alloc.Stats(); st.InUse != 0 {
		t.Fatalf("parked resolve charge leaked: %d bytes", st.InUse)
	}
}

func TestResolveResultLargerThanPeerCapacity(t *testing.T) {
	h := newHarness(t, 2, 1<<20)

	ntok := h.peer.NewBuffer([]byte("localhost"))
	stok := h.peer.NewBuffer([]byte("80"))
	htok := h.peer.NewBuffer(make([]byte, protocol.AddrHintsSize))
	otok := h.peer.NewBuffer(make([]byte, 8))

	var d protocol.Descriptor
	d.Op = protocol.OpResolve
	setRef(&d, 0, ntok, 9)
	setRef(&d, 1, stok, 2)
	setRef(&d, 2, htok, protocol.AddrHintsSize)
	setRef(&d, 3, otok, 8)
	h.peer.Enqueue(&d)

	cs := h.waitCompletions(t, 1)
	if cs[0].Result != protocol.ResultNoMem {
		t.Fatalf("result = %d, want %d", cs[0].Result, protocol.ResultNoMem)
	}
	h.waitIdle(t)
	if st := h.alloc.Stats(); st.InUse != 0 {
		t.Fatalf("refused resolve left %d bytes parked", st.InUse)
	}
}
