// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bassosimone/runtimex"
	"github.com/bassosimone/zsock/internal/native"
)

// noCopy makes go vet's copylocks check reject copying a [Socket] value.
type noCopy struct{}

// Lock is a no-op used by go vet.
func (*noCopy) Lock() {}

// Unlock is a no-op used by go vet.
func (*noCopy) Unlock() {}

// Socket owns an engine socket.
//
// A *Socket belongs to one goroutine at a time. To hand it over to another
// goroutine, pass the result of [*Socket.Move], which leaves the original
// value unusable. Calling methods of the same *Socket from two goroutines at
// the same time is a programmer error that causes a panic. The only
// exception is [*Socket.Close], which may be called from any goroutine to
// interrupt a blocking [*Socket.Send] or [*Socket.Receive].
//
// Use [*SyncSocket] to share a socket between goroutines.
type Socket struct {
	_    noCopy
	busy atomic.Bool
	h    atomic.Pointer[socketHandle]
}

// socketHandle is the state of an open socket, transferred by Move.
type socketHandle struct {
	closeErr  error
	closeOnce sync.Once
	ctx       *Context
	id        string
	kind      SocketKind
	sock      *native.Sock
}

// NewSocket creates a new [*Socket] of the given kind. The socket holds a
// reference to ctx, obtained with [*Context.Clone], until it is closed.
//
// Returns an [*Error] with [KindSocketCreateFailed] on failure.
func NewSocket(ctx *Context, kind SocketKind) (*Socket, error) {
	runtimex.Assert(ctx != nil)
	sc := ctx.shared
	t0 := sc.timeNow()
	id := NewSpanID()

	var (
		err  error
		sock *native.Sock
	)
	if ctx.released.Load() {
		err = &Error{Kind: KindSocketCreateFailed, Op: OpNewSocket}
	} else {
		var errno native.Errno
		sock, errno = sc.native.Socket(int(kind))
		err = mapErrno(OpNewSocket, errno)
	}

	sc.logger.Info(
		"socketCreate",
		slog.Any("err", err),
		slog.String("errClass", sc.errClassifier.Classify(err)),
		slog.String("socketID", id),
		slog.String("socketKind", kind.String()),
		slog.Time("t0", t0),
		slog.Time("t", sc.timeNow()),
	)
	if err != nil {
		return nil, err
	}

	h := &socketHandle{ctx: ctx.Clone(), id: id, kind: kind, sock: sock}
	sock.SetMonitor(h.logEvent)
	sc.socketOpened()
	s := &Socket{}
	s.h.Store(h)
	return s, nil
}

// Move transfers the ownership of the socket to the returned [*Socket].
//
// Afterwards, the operations of s fail with [ErrUseAfterClose] and closing s
// is a no-op. Moving a closed or moved socket returns a socket in the same
// state.
func (s *Socket) Move() *Socket {
	s.enter()
	defer s.leave()
	moved := &Socket{}
	moved.h.Store(s.h.Swap(nil))
	return moved
}

// enter marks the socket as in use and panics if it already was.
func (s *Socket) enter() *socketHandle {
	if !s.busy.CompareAndSwap(false, true) {
		panic("zsock: concurrent use of *Socket by multiple goroutines")
	}
	return s.h.Load()
}

func (s *Socket) leave() {
	s.busy.Store(false)
}

// Bind listens on the given endpoint.
//
// A socket may be bound to several endpoints. Each call is independent, so
// a failure leaves the previous binds in place.
//
// Returns an [*Error] with [KindBindFailed] on failure.
func (s *Socket) Bind(ep Endpoint) error {
	h := s.enter()
	defer s.leave()
	if h == nil {
		return &Error{Kind: KindUseAfterClose, Op: OpBind}
	}
	sc := h.ctx.shared
	t0 := sc.timeNow()
	h.logSpanStart("bindStart", ep, t0)
	err := mapErrno(OpBind, h.sock.Bind(ep.String()))
	h.logSpanDone("bindDone", ep, t0, err)
	return err
}

// Connect connects to the given endpoint.
//
// For tcp and ipc endpoints, the connection is established in the background
// and reestablished when lost, so success only means that the attempt was
// registered. For inproc endpoints, connecting before the peer binds is fine.
//
// Returns an [*Error] with [KindConnectFailed] on failure.
func (s *Socket) Connect(ep Endpoint) error {
	h := s.enter()
	defer s.leave()
	if h == nil {
		return &Error{Kind: KindUseAfterClose, Op: OpConnect}
	}
	sc := h.ctx.shared
	t0 := sc.timeNow()
	h.logSpanStart("connectStart", ep, t0)
	err := mapErrno(OpConnect, h.sock.Connect(ep.String()))
	h.logSpanDone("connectDone", ep, t0, err)
	return err
}

// Send sends a frame.
//
// With [SendMore], the frame is held until the last frame of the message
// is sent. With [SendDontWait], Send fails with [ErrWouldBlock] instead of
// blocking when the message cannot be queued.
//
// Returns an [*Error] with [KindSendFailed] on failure.
func (s *Socket) Send(payload []byte, flags SendFlags) error {
	h := s.enter()
	defer s.leave()
	if h == nil {
		return &Error{Kind: KindUseAfterClose, Op: OpSend}
	}
	return h.send([][]byte{payload}, flags)
}

// SendMultipart sends all the frames of a message at once.
//
// On failure, none of the frames is queued. Frames previously sent with
// [SendMore] are prepended to the message.
func (s *Socket) SendMultipart(frames [][]byte, flags SendFlags) error {
	h := s.enter()
	defer s.leave()
	if h == nil {
		return &Error{Kind: KindUseAfterClose, Op: OpSend}
	}
	return h.send(frames, flags)
}

func (h *socketHandle) send(frames [][]byte, flags SendFlags) error {
	sc := h.ctx.shared
	t0 := sc.timeNow()
	size := 0
	for _, frame := range frames {
		size += len(frame)
	}
	sc.logger.Debug(
		"sendStart",
		slog.Int("frames", len(frames)),
		slog.Bool("more", flags&SendMore != 0),
		slog.Int("size", size),
		slog.String("socketID", h.id),
		slog.String("socketKind", h.kind.String()),
		slog.Time("t", t0),
	)
	err := mapErrno(OpSend, h.sock.SendMsg(frames, int(flags)))
	h.logIODone("sendDone", t0, size, err)
	return err
}

// Receive receives the next frame. Use [*Socket.RecvMore] to learn whether
// more frames of the same message follow.
//
// With [RecvDontWait], Receive fails with [ErrWouldBlock] instead of blocking
// when no message is available.
//
// Returns an [*Error] with [KindReceiveFailed] on failure.
func (s *Socket) Receive(flags RecvFlags) ([]byte, error) {
	h := s.enter()
	defer s.leave()
	if h == nil {
		return nil, &Error{Kind: KindUseAfterClose, Op: OpReceive}
	}
	sc := h.ctx.shared
	t0 := sc.timeNow()
	h.logReceiveStart(t0)
	data, errno := h.sock.Recv(int(flags))
	err := mapErrno(OpReceive, errno)
	h.logIODone("receiveDone", t0, len(data), err)
	return data, err
}

// ReceiveMultipart receives all the frames of the next message, or the
// remaining frames of a message partially read with [*Socket.Receive].
func (s *Socket) ReceiveMultipart(flags RecvFlags) ([][]byte, error) {
	h := s.enter()
	defer s.leave()
	if h == nil {
		return nil, &Error{Kind: KindUseAfterClose, Op: OpReceive}
	}
	sc := h.ctx.shared
	t0 := sc.timeNow()
	h.logReceiveStart(t0)
	frames, errno := h.sock.RecvMsg(int(flags))
	err := mapErrno(OpReceive, errno)
	size := 0
	for _, frame := range frames {
		size += len(frame)
	}
	h.logIODone("receiveDone", t0, size, err)
	return frames, err
}

// Close closes the socket, applying its linger to the pending messages, and
// releases its reference to the [*Context].
//
// Close is idempotent and, unlike the other methods, may be called from any
// goroutine. A concurrent blocking call fails with [ErrUseAfterClose].
func (s *Socket) Close() error {
	h := s.h.Load()
	if h == nil {
		return nil
	}
	h.closeOnce.Do(func() {
		h.closeErr = h.close()
	})
	return h.closeErr
}

func (h *socketHandle) close() error {
	sc := h.ctx.shared
	t0 := sc.timeNow()
	sc.logger.Info(
		"closeStart",
		slog.String("socketID", h.id),
		slog.String("socketKind", h.kind.String()),
		slog.Time("t", t0),
	)
	errno := h.sock.Close()
	if errno == native.ENOTSOCK {
		errno = 0 // already invalidated by Terminate
	}
	err := mapErrno(OpClose, errno)
	sc.socketClosed()
	sc.logger.Info(
		"closeDone",
		slog.Any("err", err),
		slog.String("errClass", sc.errClassifier.Classify(err)),
		slog.String("socketID", h.id),
		slog.String("socketKind", h.kind.String()),
		slog.Time("t0", t0),
		slog.Time("t", sc.timeNow()),
	)
	if rerr := h.ctx.Release(); err == nil {
		err = rerr
	}
	return err
}

func (h *socketHandle) logSpanStart(msg string, ep Endpoint, t0 time.Time) {
	h.ctx.shared.logger.Info(
		msg,
		slog.String("endpoint", ep.String()),
		slog.String("protocol", ep.Scheme()),
		slog.String("socketID", h.id),
		slog.String("socketKind", h.kind.String()),
		slog.Time("t", t0),
	)
}

func (h *socketHandle) logSpanDone(msg string, ep Endpoint, t0 time.Time, err error) {
	sc := h.ctx.shared
	sc.logger.Info(
		msg,
		slog.String("endpoint", ep.String()),
		slog.Any("err", err),
		slog.String("errClass", sc.errClassifier.Classify(err)),
		slog.String("protocol", ep.Scheme()),
		slog.String("socketID", h.id),
		slog.String("socketKind", h.kind.String()),
		slog.Time("t0", t0),
		slog.Time("t", sc.timeNow()),
	)
}

func (h *socketHandle) logReceiveStart(t0 time.Time) {
	h.ctx.shared.logger.Debug(
		"receiveStart",
		slog.String("socketID", h.id),
		slog.String("socketKind", h.kind.String()),
		slog.Time("t", t0),
	)
}

// logIODone logs the end of a send or receive. Backpressure is reported
// with wouldBlock=true rather than as an error.
func (h *socketHandle) logIODone(msg string, t0 time.Time, size int, err error) {
	sc := h.ctx.shared
	wouldBlock := false
	if zerr, ok := err.(*Error); ok && zerr.Kind == KindWouldBlock {
		wouldBlock, err = true, nil
	}
	sc.logger.Debug(
		msg,
		slog.Any("err", err),
		slog.String("errClass", sc.errClassifier.Classify(err)),
		slog.Int("size", size),
		slog.String("socketID", h.id),
		slog.String("socketKind", h.kind.String()),
		slog.Time("t0", t0),
		slog.Time("t", sc.timeNow()),
		slog.Bool("wouldBlock", wouldBlock),
	)
}
