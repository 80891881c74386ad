// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"net"
	"slices"
	"time"
)

// message is a multipart message.
type message [][]byte

// size returns the total payload size of the message.
func (m message) size() int64 {
	var total int64
	for _, frame := range m {
		total += int64(len(frame))
	}
	return total
}

// pipe is a bidirectional message channel between a socket and one peer.
//
// Inproc pipes come in pairs: writing to a pipe delivers into the inbound
// queue of its peer. Stream pipes wrap a [net.Conn] and are serviced by a
// reader and a writer goroutine. All fields are protected by ctx.mu.
type pipe struct {
	conn       net.Conn
	done       chan struct{}
	drainUntil time.Time
	draining   bool
	endpoint   string
	gone       bool
	in         []message
	out        []message
	peer       *pipe
	peerID     []byte
	peerType   int
	sock       *Sock
	stream     bool
	terminated bool
}

// combineHWM returns the capacity of an inproc pipe, where zero means unlimited.
func combineHWM(sndhwm, rcvhwm int) int {
	if sndhwm <= 0 || rcvhwm <= 0 {
		return 0
	}
	return sndhwm + rcvhwm
}

// writableLocked returns whether a message may be written without blocking.
func (p *pipe) writableLocked() bool {
	if p.gone {
		return false
	}
	if !p.stream {
		if p.peer == nil {
			return false
		}
		hwm := combineHWM(p.sock.sndhwm, p.peer.sock.rcvhwm)
		return hwm <= 0 || len(p.peer.in) < hwm
	}
	return p.sock.sndhwm <= 0 || len(p.out) < p.sock.sndhwm
}

// writeLocked queues the message towards the peer.
func (p *pipe) writeLocked(m message) {
	if !p.stream {
		p.peer.deliverLocked(m)
		return
	}
	p.out = append(p.out, m)
}

// deliverLocked appends an incoming message to the inbound queue, unless the
// owning socket filters it out.
func (p *pipe) deliverLocked(m message) {
	s := p.sock
	if s.closed || len(m) <= 0 {
		return
	}
	if !s.subscribedLocked(m[0]) {
		return
	}
	if s.maxMsgSize >= 0 && m.size() > s.maxMsgSize {
		return
	}
	p.in = append(p.in, m)
}

// readableLocked returns whether the pipe has inbound messages.
func (p *pipe) readableLocked() bool {
	return len(p.in) > 0
}

// popLocked removes and returns the oldest inbound message.
func (p *pipe) popLocked() message {
	m := p.in[0]
	p.in[0] = nil
	p.in = p.in[1:]
	return m
}

// closeLocked detaches the pipe because its socket is closing. Stream pipes
// keep flushing their outbound queue for at most linger.
func (p *pipe) closeLocked(linger time.Duration) {
	p.gone = true
	if !p.stream {
		if peer := p.peer; peer != nil {
			peer.peer = nil
			peer.gone = true
			peer.sock.pruneLocked()
		}
		p.peer = nil
		return
	}
	if linger == 0 || len(p.out) <= 0 {
		p.terminateLocked()
		return
	}
	p.draining = true
	if linger > 0 {
		p.drainUntil = time.Now().Add(linger)
		p.conn.SetWriteDeadline(p.drainUntil)
	}
}

// terminateLocked tears down a stream pipe. It is idempotent.
func (p *pipe) terminateLocked() {
	if p.terminated {
		return
	}
	p.terminated = true
	p.gone = true
	p.out = nil
	p.conn.Close()
	close(p.done)
	p.sock.pruneLocked()
	p.sock.ctx.broadcastLocked()
}

// pruneLocked removes the pipes that are gone and have nothing left to read.
func (s *Sock) pruneLocked() {
	s.pipes = slices.DeleteFunc(s.pipes, func(p *pipe) bool {
		return p.gone && len(p.in) <= 0
	})
}

// attachLocked adds a pipe to the socket. A PAIR socket accepts only one peer.
func (s *Sock) attachLocked(p *pipe) bool {
	if s.closed {
		return false
	}
	if s.typ == TypePair && slices.ContainsFunc(s.pipes, func(x *pipe) bool { return !x.gone }) {
		return false
	}
	s.pipes = append(s.pipes, p)
	s.ctx.broadcastLocked()
	return true
}
