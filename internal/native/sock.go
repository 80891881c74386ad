// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"bytes"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Socket types.
const (
	TypePair   = 0
	TypePub    = 1
	TypeSub    = 2
	TypeReq    = 3
	TypeRep    = 4
	TypeDealer = 5
	TypeRouter = 6
	TypePull   = 7
	TypePush   = 8
	TypeXPub   = 9
	TypeXSub   = 10
)

// Flags for [*Sock.Send] and [*Sock.Recv].
const (
	FlagDontWait = 1
	FlagSendMore = 2
)

// Socket options.
const (
	OptIdentity          = 5
	OptSubscribe         = 6
	OptUnsubscribe       = 7
	OptSndBuf            = 11
	OptRcvBuf            = 12
	OptRcvMore           = 13
	OptEvents            = 15
	OptType              = 16
	OptLinger            = 17
	OptReconnectIvl      = 18
	OptReconnectIvlMax   = 21
	OptMaxMsgSize        = 22
	OptSndHWM            = 23
	OptRcvHWM            = 24
	OptLastEndpoint      = 32
	maxIdentityLength    = 255
	defaultIdentityFirst = 0
)

var compatiblePeers = map[int][]int{
	TypePair:   {TypePair},
	TypePub:    {TypeSub, TypeXSub},
	TypeSub:    {TypePub, TypeXPub},
	TypeReq:    {TypeRep, TypeRouter},
	TypeRep:    {TypeReq, TypeDealer},
	TypeDealer: {TypeRep, TypeDealer, TypeRouter},
	TypeRouter: {TypeReq, TypeDealer, TypeRouter},
	TypePull:   {TypePush},
	TypePush:   {TypePull},
	TypeXPub:   {TypeSub, TypeXSub},
	TypeXSub:   {TypePub, TypeXPub},
}

// Compatible returns whether sockets of the given types may be connected.
func Compatible(typ, peer int) bool {
	return slices.Contains(compatiblePeers[typ], peer)
}

// Sock is the opaque socket handle. All fields are protected by ctx.mu.
type Sock struct {
	ctx             *Ctx
	closed          bool
	dialers         []*dialer
	identity        []byte
	inbound         [][]byte
	inprocBound     []string
	inprocPending   []string
	lastEndpoint    string
	linger          time.Duration
	listeners       []*listener
	maxMsgSize      int64
	monitor         func(Event)
	outbound        [][]byte
	pipes           []*pipe
	rcvbuf          int
	rcvhwm          int
	rcvmore         bool
	reconnectIvl    time.Duration
	reconnectIvlMax time.Duration
	recvIdx         int
	reqReplyPipe    *pipe
	reqWaiting      bool
	repEnvelope     [][]byte
	repPipe         *pipe
	repReplying     bool
	sendIdx         int
	sndbuf          int
	sndhwm          int
	subs            [][]byte
	typ             int
}

// SetMonitor registers a function receiving transport events. The function
// runs on engine goroutines and must not call back into the socket.
func (s *Sock) SetMonitor(fn func(Event)) Errno {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.closed {
		return ENOTSOCK
	}
	s.monitor = fn
	return 0
}

// Close closes the socket. Unlike the other calls, Close may run while
// another call on the same socket is blocked; that call fails with [ENOTSOCK].
//
// Pending outbound messages on stream pipes are flushed for at most the
// configured linger. Returns [ENOTSOCK] if the socket is already closed.
func (s *Sock) Close() Errno {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	return s.closeLocked(s.linger)
}

func (s *Sock) closeLocked(linger time.Duration) Errno {
	c := s.ctx
	if s.closed {
		return ENOTSOCK
	}
	s.closed = true
	delete(c.sockets, s)
	for _, name := range s.inprocBound {
		delete(c.inproc, name)
	}
	for _, name := range s.inprocPending {
		c.pending[name] = slices.DeleteFunc(c.pending[name], func(x *Sock) bool { return x == s })
		if len(c.pending[name]) <= 0 {
			delete(c.pending, name)
		}
	}
	for _, ln := range s.listeners {
		ln.ln.Close()
	}
	for _, d := range s.dialers {
		d.cancel()
	}
	for _, p := range slices.Clone(s.pipes) {
		p.closeLocked(linger)
	}
	s.pipes = nil
	s.inbound = nil
	s.outbound = nil
	s.monitor = nil
	c.broadcastLocked()
	return 0
}

// SetOptInt sets an integer option.
func (s *Sock) SetOptInt(opt int, value int) Errno {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.closed {
		return ENOTSOCK
	}
	switch opt {
	case OptSndHWM:
		if value < 0 {
			return EINVAL
		}
		s.sndhwm = value
	case OptRcvHWM:
		if value < 0 {
			return EINVAL
		}
		s.rcvhwm = value
	case OptLinger:
		if value < -1 {
			return EINVAL
		}
		s.linger = millisToDuration(value)
	case OptReconnectIvl:
		if value < 0 {
			return EINVAL
		}
		s.reconnectIvl = millisToDuration(value)
	case OptReconnectIvlMax:
		if value < 0 {
			return EINVAL
		}
		s.reconnectIvlMax = millisToDuration(value)
	case OptMaxMsgSize:
		if value < -1 {
			return EINVAL
		}
		s.maxMsgSize = int64(value)
	case OptSndBuf:
		if value < 0 {
			return EINVAL
		}
		s.sndbuf = value
	case OptRcvBuf:
		if value < 0 {
			return EINVAL
		}
		s.rcvbuf = value
	default:
		return EINVAL
	}
	c.broadcastLocked()
	return 0
}

// GetOptInt returns an integer option.
func (s *Sock) GetOptInt(opt int) (int, Errno) {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.closed {
		return 0, ENOTSOCK
	}
	switch opt {
	case OptType:
		return s.typ, 0
	case OptRcvMore:
		return boolToInt(s.rcvmore), 0
	case OptSndHWM:
		return s.sndhwm, 0
	case OptRcvHWM:
		return s.rcvhwm, 0
	case OptLinger:
		return durationToMillis(s.linger), 0
	case OptReconnectIvl:
		return durationToMillis(s.reconnectIvl), 0
	case OptReconnectIvlMax:
		return durationToMillis(s.reconnectIvlMax), 0
	case OptMaxMsgSize:
		return int(s.maxMsgSize), 0
	case OptSndBuf:
		return s.sndbuf, 0
	case OptRcvBuf:
		return s.rcvbuf, 0
	case OptEvents:
		return int(s.eventsLocked()), 0
	default:
		return 0, EINVAL
	}
}

// SetOptBytes sets a binary option.
func (s *Sock) SetOptBytes(opt int, value []byte) Errno {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.closed {
		return ENOTSOCK
	}
	switch opt {
	case OptIdentity:
		if len(value) <= 0 || len(value) > maxIdentityLength || value[0] == defaultIdentityFirst {
			return EINVAL
		}
		s.identity = bytes.Clone(value)
	case OptSubscribe:
		if s.typ != TypeSub {
			return EINVAL
		}
		s.subs = append(s.subs, bytes.Clone(value))
	case OptUnsubscribe:
		if s.typ != TypeSub {
			return EINVAL
		}
		if idx := slices.IndexFunc(s.subs, func(x []byte) bool { return bytes.Equal(x, value) }); idx >= 0 {
			s.subs = slices.Delete(s.subs, idx, idx+1)
		}
	default:
		return EINVAL
	}
	return 0
}

// GetOptBytes returns a binary option.
func (s *Sock) GetOptBytes(opt int) ([]byte, Errno) {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.closed {
		return nil, ENOTSOCK
	}
	switch opt {
	case OptIdentity:
		return bytes.Clone(s.identity), 0
	case OptLastEndpoint:
		return []byte(s.lastEndpoint), 0
	default:
		return nil, EINVAL
	}
}

// subscribedLocked returns whether a SUB socket accepts a message whose
// first frame is topic. Other socket types accept everything.
func (s *Sock) subscribedLocked(topic []byte) bool {
	if s.typ != TypeSub {
		return true
	}
	for _, sub := range s.subs {
		if bytes.HasPrefix(topic, sub) {
			return true
		}
	}
	return false
}

// routingIDLocked returns the identity the socket announces to its peers,
// generating one when the user did not set it.
func (s *Sock) routingIDLocked() []byte {
	if len(s.identity) > 0 {
		return bytes.Clone(s.identity)
	}
	return newRoutingID()
}

// newRoutingID returns an identity that cannot collide with user identities
// because those may not start with a zero byte.
func newRoutingID() []byte {
	id := uuid.New()
	return append([]byte{defaultIdentityFirst}, id[:]...)
}

// emit delivers an event to the monitor, if any. The caller must not hold c.mu.
func (s *Sock) emit(ev Event) {
	s.ctx.mu.Lock()
	fn := s.monitor
	s.ctx.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func millisToDuration(v int) time.Duration {
	if v < 0 {
		return -1
	}
	return time.Duration(v) * time.Millisecond
}

func durationToMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	return int(d / time.Millisecond)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
