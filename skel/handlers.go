// File: skel/handlers.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One handler per operation code. Every handler follows the same
// shape: read scalars, stage buffers per the plan, copy inputs in,
// call the network stack, record output sizes, finish with the
// primitive's result. The stack's errno travels back negated; the
// handler never interprets it.

package skel

import (
	"context"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/netstack"
	"github.com/momentics/netskel/protocol"
)

// HandlerFunc executes one boundary operation to completion. It must
// call r.Finish on every path unless a boundary call already killed
// the request.
type HandlerFunc func(ctx context.Context, r *Request)

func newHandlerTable(stack api.NetStack, reg *netstack.ResolveRegistry) [protocol.NumOps]HandlerFunc {
	var t [protocol.NumOps]HandlerFunc
	t[protocol.OpSocket] = func(ctx context.Context, r *Request) {
		fd, err := stack.Socket(int32(r.Scalar(0)), int32(r.Scalar(1)), int32(r.Scalar(2)))
		r.Finish(ctx, netstack.ResultOf(fd, err))
	}
	t[protocol.OpClose] = func(ctx context.Context, r *Request) {
		r.Finish(ctx, netstack.ResultOf(0, stack.Close(int32(r.Scalar(0)))))
	}
	t[protocol.OpConnect] = sockaddrHandler(stack.Connect)
	t[protocol.OpBind] = sockaddrHandler(stack.Bind)
	t[protocol.OpListen] = func(ctx context.Context, r *Request) {
		r.Finish(ctx, netstack.ResultOf(0, stack.Listen(int32(r.Scalar(0)), int32(r.Scalar(1)))))
	}
	t[protocol.OpRecv] = func(ctx context.Context, r *Request) {
		inboundHandler(ctx, r, func(buf []byte) (int32, error) {
			return stack.Recv(int32(r.Scalar(0)), buf, int32(r.Scalar(3)))
		})
	}
	t[protocol.OpRead] = func(ctx context.Context, r *Request) {
		inboundHandler(ctx, r, func(buf []byte) (int32, error) {
			return stack.Read(int32(r.Scalar(0)), buf)
		})
	}
	t[protocol.OpSend] = func(ctx context.Context, r *Request) {
		outboundHandler(ctx, r, func(buf []byte) (int32, error) {
			return stack.Send(int32(r.Scalar(0)), buf, int32(r.Scalar(3)))
		})
	}
	t[protocol.OpWrite] = func(ctx context.Context, r *Request) {
		outboundHandler(ctx, r, func(buf []byte) (int32, error) {
			return stack.Write(int32(r.Scalar(0)), buf)
		})
	}
	t[protocol.OpSelect] = selectHandler(stack)
	t[protocol.OpResolve] = resolveHandler(stack, reg)
	t[protocol.OpResolveRelease] = func(ctx context.Context, r *Request) {
		if err := reg.Release(r.Scalar(0)); err != nil {
			r.Finish(ctx, protocol.ResultInval)
			return
		}
		r.Finish(ctx, protocol.ResultOK)
	}
	return t
}

// sockaddrHandler covers connect and bind: fd scalar plus one fixed
// sockaddr record crossing inward.
func sockaddrHandler(call func(fd int32, sa *protocol.Sockaddr) error) HandlerFunc {
	return func(ctx context.Context, r *Request) {
		if !r.Stage(ctx, 1) {
			return
		}
		if !r.CopyIn(ctx) {
			return
		}
		var sa protocol.Sockaddr
		if err := sa.Unmarshal(r.D.Slots[1].Buf); err != nil {
			r.Finish(ctx, protocol.ResultFault)
			return
		}
		r.Finish(ctx, netstack.ResultOf(0, call(int32(r.Scalar(0)), &sa)))
	}
}

// inboundHandler covers recv and read: a peer-sized out buffer is
// staged, the primitive fills it, and the out size shrinks to the
// bytes actually produced. On failure no payload crosses back.
func inboundHandler(ctx context.Context, r *Request, call func(buf []byte) (int32, error)) {
	if !r.Stage(ctx, 1) {
		return
	}
	n, err := call(r.D.Slots[1].Buf)
	if err != nil {
		r.DropOutput(1)
		r.Finish(ctx, netstack.ResultOf(n, err))
		return
	}
	r.D.Sizes[1] = uint32(n)
	r.Finish(ctx, n)
}

// outboundHandler covers send and write: the peer's payload crosses
// inward into a staged buffer before the primitive consumes it.
func outboundHandler(ctx context.Context, r *Request, call func(buf []byte) (int32, error)) {
	if !r.Stage(ctx, 1) {
		return
	}
	if !r.CopyIn(ctx) {
		return
	}
	n, err := call(r.D.Slots[1].Buf)
	r.Finish(ctx, netstack.ResultOf(n, err))
}

// selectHandler marshals three descriptor sets in both directions and
// a timeout inward. A negative timeout second count means block until
// readiness.
func selectHandler(stack api.NetStack) HandlerFunc {
	return func(ctx context.Context, r *Request) {
		for i := 1; i <= 4; i++ {
			if !r.Stage(ctx, i) {
				return
			}
		}
		if !r.CopyIn(ctx) {
			return
		}
		var sets [3]protocol.FdSet
		for i := range sets {
			if err := sets[i].Unmarshal(r.D.Slots[i+1].Buf); err != nil {
				r.Finish(ctx, protocol.ResultFault)
				return
			}
		}
		var tv protocol.Timeval
		if err := tv.Unmarshal(r.D.Slots[4].Buf); err != nil {
			r.Finish(ctx, protocol.ResultFault)
			return
		}
		var tvp *protocol.Timeval
		if tv.Sec >= 0 {
			tvp = &tv
		}
		n, err := stack.Select(int32(r.Scalar(0)), &sets[0], &sets[1], &sets[2], tvp)
		if err != nil {
			for i := 1; i <= 3; i++ {
				r.DropOutput(i)
			}
			r.Finish(ctx, netstack.ResultOf(n, err))
			return
		}
		for i := range sets {
			_ = sets[i].Marshal(r.D.Slots[i+1].Buf)
		}
		r.Finish(ctx, n)
	}
}

// resolveHandler runs a name lookup and parks the records in the
// registry until the peer releases them. The peer declares the out
// capacity; results that do not fit are refused with ENOMEM rather
// than truncated.
func resolveHandler(stack api.NetStack, reg *netstack.ResolveRegistry) HandlerFunc {
	return func(ctx context.Context, r *Request) {
		for i := 0; i <= 2; i++ {
			if !r.Stage(ctx, i) {
				return
			}
		}
		if !r.CopyIn(ctx) {
			return
		}
		node := string(r.D.Slots[0].Buf)
		service := string(r.D.Slots[1].Buf)
		var hints protocol.AddrHints
		if err := hints.Unmarshal(r.D.Slots[2].Buf); err != nil {
			r.Finish(ctx, protocol.ResultFault)
			return
		}
		infos, err := stack.Resolve(ctx, node, service, &hints)
		if err != nil {
			r.Finish(ctx, netstack.ResultOf(0, err))
			return
		}
		handle, err := reg.Park(infos)
		if err != nil {
			r.Finish(ctx, protocol.ResultNoMem)
			return
		}
		res := protocol.ResolveResult{Handle: handle, Infos: infos}
		if cap := int(r.D.Sizes[3]); res.Size() > cap {
			reg.Release(handle)
			r.Finish(ctx, protocol.ResultNoMem)
			return
		}
		if !r.StageN(ctx, 3, res.Size()) {
			reg.Release(handle)
			return
		}
		_ = res.Marshal(r.D.Slots[3].Buf)
		r.Finish(ctx, protocol.ResultOK)
	}
}
