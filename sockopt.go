// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"time"

	"github.com/bassosimone/zsock/internal/native"
)

// Socket options fail with an [*Error] of kind [KindOptionFailed] when the
// value is not valid for the option or the socket kind.

func (s *Socket) setInt(opt, value int) error {
	h := s.enter()
	defer s.leave()
	if h == nil {
		return &Error{Kind: KindUseAfterClose, Op: OpSetOption}
	}
	return mapErrno(OpSetOption, h.sock.SetOptInt(opt, value))
}

func (s *Socket) getInt(opt int) (int, error) {
	h := s.enter()
	defer s.leave()
	if h == nil {
		return 0, &Error{Kind: KindUseAfterClose, Op: OpGetOption}
	}
	value, errno := h.sock.GetOptInt(opt)
	return value, mapErrno(OpGetOption, errno)
}

func (s *Socket) setBytes(opt int, value []byte) error {
	h := s.enter()
	defer s.leave()
	if h == nil {
		return &Error{Kind: KindUseAfterClose, Op: OpSetOption}
	}
	return mapErrno(OpSetOption, h.sock.SetOptBytes(opt, value))
}

func (s *Socket) getBytes(opt int) ([]byte, error) {
	h := s.enter()
	defer s.leave()
	if h == nil {
		return nil, &Error{Kind: KindUseAfterClose, Op: OpGetOption}
	}
	value, errno := h.sock.GetOptBytes(opt)
	return value, mapErrno(OpGetOption, errno)
}

// Kind returns the socket kind.
func (s *Socket) Kind() (SocketKind, error) {
	value, err := s.getInt(native.OptType)
	return SocketKind(value), err
}

// RecvMore returns whether the last frame received is followed by more
// frames of the same message.
func (s *Socket) RecvMore() (bool, error) {
	value, err := s.getInt(native.OptRcvMore)
	return value != 0, err
}

// Events returns the events the socket is ready for.
func (s *Socket) Events() (PollEvents, error) {
	value, err := s.getInt(native.OptEvents)
	return PollEvents(value), err
}

// LastEndpoint returns the endpoint of the last successful bind, with the
// actual port when binding to the tcp port 0. It returns the zero [Endpoint]
// when the socket was never bound.
func (s *Socket) LastEndpoint() (Endpoint, error) {
	value, err := s.getBytes(native.OptLastEndpoint)
	if err != nil || len(value) <= 0 {
		return Endpoint{}, err
	}
	return EndpointParser{AllowEphemeralPort: true}.Parse(string(value))
}

// SetSendBuffer sets the kernel send buffer size of tcp and ipc
// connections established afterwards. Zero keeps the operating system default.
func (s *Socket) SetSendBuffer(size int) error {
	return s.setInt(native.OptSndBuf, size)
}

// SendBuffer returns the kernel send buffer size.
func (s *Socket) SendBuffer() (int, error) {
	return s.getInt(native.OptSndBuf)
}

// SetReceiveBuffer is like [*Socket.SetSendBuffer] for the receive buffer.
func (s *Socket) SetReceiveBuffer(size int) error {
	return s.setInt(native.OptRcvBuf, size)
}

// ReceiveBuffer returns the kernel receive buffer size.
func (s *Socket) ReceiveBuffer() (int, error) {
	return s.getInt(native.OptRcvBuf)
}

// SetSendHWM sets the maximum number of outbound messages queued per peer.
// Zero means unlimited.
func (s *Socket) SetSendHWM(value int) error {
	return s.setInt(native.OptSndHWM, value)
}

// SendHWM returns the send high water mark.
func (s *Socket) SendHWM() (int, error) {
	return s.getInt(native.OptSndHWM)
}

// SetRecvHWM sets the maximum number of inbound messages queued per peer.
// Zero means unlimited.
func (s *Socket) SetRecvHWM(value int) error {
	return s.setInt(native.OptRcvHWM, value)
}

// RecvHWM returns the receive high water mark.
func (s *Socket) RecvHWM() (int, error) {
	return s.getInt(native.OptRcvHWM)
}

// SetLinger sets how long [*Socket.Close] lets pending outbound messages
// drain. Zero drops them immediately and a negative value waits forever.
// The resolution is one millisecond.
func (s *Socket) SetLinger(d time.Duration) error {
	return s.setInt(native.OptLinger, durationToMillis(d))
}

// Linger returns the socket linger.
func (s *Socket) Linger() (time.Duration, error) {
	value, err := s.getInt(native.OptLinger)
	return millisToDuration(value), err
}

// SetReconnectInterval sets the delay before reconnecting a tcp or ipc
// connection. It applies to the following calls of [*Socket.Connect].
func (s *Socket) SetReconnectInterval(d time.Duration) error {
	return s.setInt(native.OptReconnectIvl, durationToMillis(d))
}

// ReconnectInterval returns the reconnect interval.
func (s *Socket) ReconnectInterval() (time.Duration, error) {
	value, err := s.getInt(native.OptReconnectIvl)
	return millisToDuration(value), err
}

// SetReconnectIntervalMax sets the maximum reconnect delay. See
// [Config.ReconnectIntervalMax] for its meaning.
func (s *Socket) SetReconnectIntervalMax(d time.Duration) error {
	return s.setInt(native.OptReconnectIvlMax, durationToMillis(d))
}

// ReconnectIntervalMax returns the maximum reconnect delay.
func (s *Socket) ReconnectIntervalMax() (time.Duration, error) {
	value, err := s.getInt(native.OptReconnectIvlMax)
	return millisToDuration(value), err
}

// SetMaxMsgSize sets the largest inbound message size in bytes. Larger
// messages are dropped. A negative value means no limit.
func (s *Socket) SetMaxMsgSize(size int64) error {
	if size < 0 {
		size = -1
	}
	return s.setInt(native.OptMaxMsgSize, int(size))
}

// MaxMsgSize returns the largest inbound message size.
func (s *Socket) MaxMsgSize() (int64, error) {
	value, err := s.getInt(native.OptMaxMsgSize)
	return int64(value), err
}

// SetIdentity sets the identity announced to peers, which a [Router] peer
// uses to address this socket. The identity must contain between 1 and 255
// bytes and must not start with a zero byte. It applies to the following
// connections.
func (s *Socket) SetIdentity(identity []byte) error {
	return s.setBytes(native.OptIdentity, identity)
}

// Identity returns the identity, or nil if it was not set.
func (s *Socket) Identity() ([]byte, error) {
	return s.getBytes(native.OptIdentity)
}

// Subscribe makes a [Sub] socket receive the messages whose first frame
// starts with prefix. An empty prefix subscribes to everything.
func (s *Socket) Subscribe(prefix []byte) error {
	return s.setBytes(native.OptSubscribe, prefix)
}

// Unsubscribe removes a subscription added by [*Socket.Subscribe].
func (s *Socket) Unsubscribe(prefix []byte) error {
	return s.setBytes(native.OptUnsubscribe, prefix)
}

func durationToMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	return int(d / time.Millisecond)
}

func millisToDuration(v int) time.Duration {
	if v < 0 {
		return -1
	}
	return time.Duration(v) * time.Millisecond
}
