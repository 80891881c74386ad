// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"bytes"
	"slices"
)

// Poll events.
const (
	PollIn  = 1
	PollOut = 2
	PollErr = 4
)

// Send sends a frame. With [FlagSendMore] the frame is kept until the last
// frame of the message is sent. With [FlagDontWait] the call fails with
// [EAGAIN] instead of blocking when no peer can accept the message.
func (s *Sock) Send(data []byte, flags int) Errno {
	return s.SendMsg([][]byte{data}, flags)
}

// SendMsg is like [*Sock.Send] but sends several frames at once. When the
// call fails, none of its frames is retained by the socket.
func (s *Sock) SendMsg(frames [][]byte, flags int) Errno {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.closed {
		return ENOTSOCK
	}
	if len(frames) <= 0 {
		return EINVAL
	}
	if !s.canSendLocked() {
		return ENOTSUP
	}
	if s.typ == TypeReq && s.reqWaiting {
		return EFSM
	}
	if s.typ == TypeRep && !s.repReplying {
		return EFSM
	}
	cloned := make(message, 0, len(frames))
	for _, frame := range frames {
		frame = bytes.Clone(frame)
		if frame == nil {
			frame = []byte{}
		}
		cloned = append(cloned, frame)
	}
	if flags&FlagSendMore != 0 {
		s.outbound = append(s.outbound, cloned...)
		return 0
	}
	pending := s.outbound
	m := append(slices.Clone(pending), cloned...)
	s.outbound = nil
	for {
		if s.closed {
			return ENOTSOCK
		}
		if c.terminating {
			s.outbound = pending
			return ETERM
		}
		if s.trySendLocked(m) {
			c.broadcastLocked()
			return 0
		}
		if flags&FlagDontWait != 0 {
			s.outbound = pending
			return EAGAIN
		}
		c.waitLocked(nil)
	}
}

// Recv receives the next frame. Use [OptRcvMore] to learn whether more
// frames of the same message follow.
func (s *Sock) Recv(flags int) ([]byte, Errno) {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if errno := s.recvLocked(flags); errno != 0 {
		return nil, errno
	}
	return s.nextFrameLocked(), 0
}

// RecvMsg receives all the frames of the next message. If a previous
// [*Sock.Recv] left a message partially read, it returns the rest of it.
func (s *Sock) RecvMsg(flags int) ([][]byte, Errno) {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if errno := s.recvLocked(flags); errno != 0 {
		return nil, errno
	}
	frames := s.inbound
	s.inbound = nil
	s.rcvmore = false
	return frames, 0
}

// recvLocked makes sure that s.inbound contains frames to return.
func (s *Sock) recvLocked(flags int) Errno {
	c := s.ctx
	if s.closed {
		return ENOTSOCK
	}
	if !s.canRecvLocked() {
		return ENOTSUP
	}
	if len(s.inbound) > 0 {
		return 0
	}
	if s.typ == TypeReq && !s.reqWaiting {
		return EFSM
	}
	if s.typ == TypeRep && s.repReplying {
		return EFSM
	}
	for {
		if s.closed {
			return ENOTSOCK
		}
		if c.terminating {
			return ETERM
		}
		if m, ok := s.tryRecvLocked(); ok {
			s.inbound = m
			c.broadcastLocked()
			return 0
		}
		if flags&FlagDontWait != 0 {
			return EAGAIN
		}
		c.waitLocked(nil)
	}
}

func (s *Sock) nextFrameLocked() []byte {
	frame := s.inbound[0]
	s.inbound = s.inbound[1:]
	s.rcvmore = len(s.inbound) > 0
	if !s.rcvmore {
		s.inbound = nil
	}
	return frame
}

func (s *Sock) canSendLocked() bool {
	switch s.typ {
	case TypeSub, TypePull:
		return false
	default:
		return true
	}
}

func (s *Sock) canRecvLocked() bool {
	switch s.typ {
	case TypePub, TypePush, TypeXPub:
		return false
	default:
		return true
	}
}

// trySendLocked routes a complete message according to the socket type.
// Returns false when the message cannot be queued without blocking.
func (s *Sock) trySendLocked(m message) bool {
	switch s.typ {
	case TypePub, TypeXPub:
		for _, p := range s.pipes {
			if p.writableLocked() {
				p.writeLocked(m)
			}
		}
		return true

	case TypeRouter:
		if len(m) <= 1 {
			return true
		}
		for _, p := range s.pipes {
			if bytes.Equal(p.peerID, m[0]) && p.writableLocked() {
				p.writeLocked(m[1:])
				break
			}
		}
		return true

	case TypeRep:
		p := s.repPipe
		if p == nil || p.gone {
			s.resetRepLocked()
			return true
		}
		if !p.writableLocked() {
			return false
		}
		p.writeLocked(append(slices.Clone(s.repEnvelope), m...))
		s.resetRepLocked()
		return true

	case TypeReq:
		p := s.nextWritableLocked()
		if p == nil {
			return false
		}
		p.writeLocked(append(message{{}}, m...))
		s.reqWaiting = true
		s.reqReplyPipe = p
		return true

	default:
		p := s.nextWritableLocked()
		if p == nil {
			return false
		}
		p.writeLocked(m)
		return true
	}
}

// nextWritableLocked picks the next writable pipe in round-robin order.
func (s *Sock) nextWritableLocked() *pipe {
	n := len(s.pipes)
	for i := range n {
		idx := (s.sendIdx + i) % n
		if p := s.pipes[idx]; p.writableLocked() {
			s.sendIdx = (idx + 1) % n
			return p
		}
	}
	return nil
}

// nextReadableLocked picks the next readable pipe in fair-queue order.
func (s *Sock) nextReadableLocked() *pipe {
	n := len(s.pipes)
	for i := range n {
		idx := (s.recvIdx + i) % n
		if p := s.pipes[idx]; p.readableLocked() {
			s.recvIdx = (idx + 1) % n
			return p
		}
	}
	return nil
}

// tryRecvLocked dequeues a complete message according to the socket type.
func (s *Sock) tryRecvLocked() (message, bool) {
	switch s.typ {
	case TypeReq:
		p := s.reqReplyPipe
		if p == nil || !p.readableLocked() {
			return nil, false
		}
		m := p.popLocked()
		s.pruneLocked()
		s.reqWaiting = false
		s.reqReplyPipe = nil
		_, body := splitEnvelope(m)
		return body, true

	case TypeRep:
		p := s.nextReadableLocked()
		if p == nil {
			return nil, false
		}
		m := p.popLocked()
		s.pruneLocked()
		envelope, body := splitEnvelope(m)
		s.repEnvelope = envelope
		s.repPipe = p
		s.repReplying = true
		return body, true

	case TypeRouter:
		p := s.nextReadableLocked()
		if p == nil {
			return nil, false
		}
		m := p.popLocked()
		s.pruneLocked()
		return append(message{bytes.Clone(p.peerID)}, m...), true

	default:
		p := s.nextReadableLocked()
		if p == nil {
			return nil, false
		}
		m := p.popLocked()
		s.pruneLocked()
		return m, true
	}
}

func (s *Sock) resetRepLocked() {
	s.repEnvelope = nil
	s.repPipe = nil
	s.repReplying = false
}

// splitEnvelope splits a request into the routing envelope, which ends with
// an empty delimiter frame, and the body. A message without a delimiter has
// no envelope.
func splitEnvelope(m message) (envelope, body message) {
	idx := slices.IndexFunc(m, func(frame []byte) bool { return len(frame) <= 0 })
	if idx < 0 {
		return nil, m
	}
	if idx+1 >= len(m) {
		return m, message{{}}
	}
	return m[:idx+1], m[idx+1:]
}

// eventsLocked returns the PollIn and PollOut readiness of the socket.
func (s *Sock) eventsLocked() int16 {
	var events int16
	if s.closed {
		return PollErr
	}
	if s.canRecvLocked() && s.readyToRecvLocked() {
		events |= PollIn
	}
	if s.canSendLocked() && s.readyToSendLocked() {
		events |= PollOut
	}
	return events
}

func (s *Sock) readyToRecvLocked() bool {
	if len(s.inbound) > 0 {
		return true
	}
	switch s.typ {
	case TypeReq:
		return s.reqWaiting && s.reqReplyPipe != nil && s.reqReplyPipe.readableLocked()
	case TypeRep:
		if s.repReplying {
			return false
		}
	}
	return slices.ContainsFunc(s.pipes, (*pipe).readableLocked)
}

func (s *Sock) readyToSendLocked() bool {
	switch s.typ {
	case TypePub, TypeXPub, TypeRouter:
		return true
	case TypeReq:
		if s.reqWaiting {
			return false
		}
	case TypeRep:
		return s.repReplying && (s.repPipe == nil || s.repPipe.gone || s.repPipe.writableLocked())
	}
	return slices.ContainsFunc(s.pipes, (*pipe).writableLocked)
}
