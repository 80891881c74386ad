// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/bassosimone/safeconn"
	"github.com/cenkalti/backoff/v5"
)

const (
	// handshakeTimeout bounds the greeting exchange.
	handshakeTimeout = 10 * time.Second

	// maxFrameLength bounds a single frame regardless of OptMaxMsgSize.
	maxFrameLength = 1 << 28

	// frameFlagMore marks a frame followed by more frames of the same message.
	frameFlagMore = 1

	// greetingVersion is the version of the stream greeting.
	greetingVersion = 1

	// acceptRetryDelay is the pause after a failed accept.
	acceptRetryDelay = 10 * time.Millisecond
)

// greetingMagic starts every stream connection.
var greetingMagic = []byte("ZSK")

// errFrameTooLarge indicates a frame exceeding the message size limit.
var errFrameTooLarge = errors.New("native: frame too large")

// listener is a bound stream endpoint.
type listener struct {
	endpoint string
	ln       net.Listener
}

// dialer is a connected stream endpoint with its reconnect loop.
type dialer struct {
	address  string
	cancel   context.CancelFunc
	ctx      context.Context
	endpoint string
	network  string
}

func (s *Sock) bindStream(scheme, network, address string) Errno {
	c := s.ctx
	c.mu.Lock()
	if errno := s.checkUsableLocked(); errno != 0 {
		c.mu.Unlock()
		return errno
	}
	c.mu.Unlock()

	ln, err := (&net.ListenConfig{}).Listen(context.Background(), network, address)
	if err != nil {
		return errnoFromError(err)
	}

	c.mu.Lock()
	if errno := s.checkUsableLocked(); errno != 0 {
		c.mu.Unlock()
		ln.Close()
		return errno
	}
	l := &listener{endpoint: scheme + "://" + ln.Addr().String(), ln: ln}
	s.listeners = append(s.listeners, l)
	s.lastEndpoint = l.endpoint
	c.wg.Go(func() { s.acceptLoop(l) })
	c.mu.Unlock()

	s.emit(Event{Kind: EventListening, Endpoint: l.endpoint, LocalAddr: ln.Addr().String()})
	return 0
}

func (s *Sock) connectStream(scheme, network, address string) Errno {
	c := s.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if errno := s.checkUsableLocked(); errno != 0 {
		return errno
	}
	d := &dialer{address: address, endpoint: scheme + "://" + address, network: network}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	s.dialers = append(s.dialers, d)
	bo := newReconnectBackoff(s.reconnectIvl, s.reconnectIvlMax)
	c.wg.Go(func() { s.dialLoop(d, bo) })
	return 0
}

// checkUsable returns ENOTSOCK for a closed socket and ETERM once the
// context is terminating.
func (s *Sock) checkUsable() Errno {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.checkUsableLocked()
}

func (s *Sock) checkUsableLocked() Errno {
	switch {
	case s.closed:
		return ENOTSOCK
	case s.ctx.terminating:
		return ETERM
	default:
		return 0
	}
}

// newReconnectBackoff returns the reconnect schedule: constant at ivl, or
// doubling from ivl up to ivlMax when ivlMax is larger.
func newReconnectBackoff(ivl, ivlMax time.Duration) *backoff.ExponentialBackOff {
	if ivl <= 0 {
		ivl = time.Millisecond
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = ivl
	bo.RandomizationFactor = 0
	bo.Multiplier = 1
	bo.MaxInterval = ivl
	if ivlMax > ivl {
		bo.Multiplier = 2
		bo.MaxInterval = ivlMax
	}
	bo.Reset()
	return bo
}

func (s *Sock) acceptLoop(l *listener) {
	for {
		conn, err := l.ln.Accept()
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			s.emit(Event{Kind: EventAcceptFailed, Endpoint: l.endpoint, Errno: errnoFromError(err)})
			time.Sleep(acceptRetryDelay)
			continue
		}
		s.emit(Event{
			Kind:       EventAccepted,
			Endpoint:   l.endpoint,
			LocalAddr:  safeconn.LocalAddr(conn),
			RemoteAddr: safeconn.RemoteAddr(conn),
		})
		s.ctx.wg.Go(func() { s.startStream(conn, l.endpoint) })
	}
}

func (s *Sock) dialLoop(d *dialer, bo *backoff.ExponentialBackOff) {
	netDialer := s.ctx.opts.Dialer
	for {
		conn, err := netDialer.DialContext(d.ctx, d.network, d.address)
		if d.ctx.Err() != nil {
			if conn != nil {
				conn.Close()
			}
			return
		}
		if err == nil {
			if p, errno := s.startStream(conn, d.endpoint); errno == 0 {
				bo.Reset()
				s.emit(Event{
					Kind:       EventConnected,
					Endpoint:   d.endpoint,
					LocalAddr:  safeconn.LocalAddr(conn),
					RemoteAddr: safeconn.RemoteAddr(conn),
				})
				select {
				case <-p.done:
				case <-d.ctx.Done():
					return
				}
			}
		}

		delay := bo.NextBackOff()
		if err != nil {
			s.emit(Event{Kind: EventConnectRetried, Endpoint: d.endpoint, Errno: errnoFromError(err), Interval: delay})
		}
		timer := time.NewTimer(delay)
		select {
		case <-d.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// startStream performs the greeting exchange over conn and attaches the
// resulting pipe to the socket. On failure the connection is closed.
func (s *Sock) startStream(conn net.Conn, endpoint string) (*pipe, Errno) {
	c := s.ctx
	c.mu.Lock()
	if s.closed {
		c.mu.Unlock()
		conn.Close()
		return nil, ENOTSOCK
	}
	typ, identity := s.typ, bytes.Clone(s.identity)
	setBufferSizes(conn, s.sndbuf, s.rcvbuf)
	c.mu.Unlock()

	peerType, peerID, errno := handshake(conn, typ, identity)
	if errno == 0 && !Compatible(typ, peerType) {
		errno = ENOCOMPATPROTO
	}
	if errno != 0 {
		conn.Close()
		s.emit(Event{
			Kind:       EventHandshakeFailed,
			Endpoint:   endpoint,
			LocalAddr:  safeconn.LocalAddr(conn),
			RemoteAddr: safeconn.RemoteAddr(conn),
			Errno:      errno,
		})
		return nil, errno
	}
	if len(peerID) <= 0 {
		peerID = newRoutingID()
	}

	p := &pipe{
		conn:     conn,
		done:     make(chan struct{}),
		endpoint: endpoint,
		peerID:   peerID,
		peerType: peerType,
		sock:     s,
		stream:   true,
	}
	c.mu.Lock()
	if !s.attachLocked(p) {
		c.mu.Unlock()
		conn.Close()
		return nil, ENOTSOCK
	}
	c.wg.Go(p.readLoop)
	c.wg.Go(p.writeLoop)
	c.mu.Unlock()
	return p, 0
}

// bufferedConn is implemented by [*net.TCPConn] and [*net.UnixConn].
type bufferedConn interface {
	SetReadBuffer(size int) error
	SetWriteBuffer(size int) error
}

// setBufferSizes sets the kernel buffer sizes of conn. Zero keeps the
// operating system default.
func setBufferSizes(conn net.Conn, sndbuf, rcvbuf int) {
	bc, ok := conn.(bufferedConn)
	if !ok {
		return
	}
	if sndbuf > 0 {
		bc.SetWriteBuffer(sndbuf)
	}
	if rcvbuf > 0 {
		bc.SetReadBuffer(rcvbuf)
	}
}

// handshake exchanges greetings: magic, version, socket type, identity.
func handshake(conn net.Conn, typ int, identity []byte) (int, []byte, Errno) {
	conn.SetDeadline(time.Now().Add(handshakeTimeout))
	defer conn.SetDeadline(time.Time{})

	greeting := append(bytes.Clone(greetingMagic), greetingVersion, byte(typ), byte(len(identity)))
	greeting = append(greeting, identity...)
	if _, err := conn.Write(greeting); err != nil {
		return 0, nil, errnoFromError(err)
	}

	header := make([]byte, len(greetingMagic)+3)
	if _, err := io.ReadFull(conn, header); err != nil {
		return 0, nil, errnoFromError(err)
	}
	if !bytes.Equal(header[:len(greetingMagic)], greetingMagic) || header[len(greetingMagic)] != greetingVersion {
		return 0, nil, EPROTO
	}
	peerType := int(header[len(greetingMagic)+1])
	peerID := make([]byte, header[len(greetingMagic)+2])
	if _, err := io.ReadFull(conn, peerID); err != nil {
		return 0, nil, errnoFromError(err)
	}
	return peerType, peerID, 0
}

// readLoop moves inbound messages from the connection to the pipe.
func (p *pipe) readLoop() {
	c := p.sock.ctx
	r := bufio.NewReader(p.conn)
	for {
		c.mu.Lock()
		limit := p.sock.maxMsgSize
		c.mu.Unlock()

		m, err := readMessage(r, limit)

		c.mu.Lock()
		if err != nil {
			p.disconnectLocked()
			return
		}
		for !p.terminated && !p.sock.closed && p.sock.rcvhwm > 0 && len(p.in) >= p.sock.rcvhwm {
			c.waitLocked(nil)
		}
		if p.terminated {
			c.mu.Unlock()
			return
		}
		p.deliverLocked(m)
		c.broadcastLocked()
		c.mu.Unlock()
	}
}

// writeLoop moves outbound messages from the pipe to the connection, and
// completes the linger period of a closed socket.
func (p *pipe) writeLoop() {
	c := p.sock.ctx
	w := bufio.NewWriter(p.conn)
	c.mu.Lock()
	for {
		for !p.terminated && !p.draining && len(p.out) <= 0 {
			c.waitLocked(nil)
		}
		if p.terminated {
			c.mu.Unlock()
			return
		}
		if len(p.out) <= 0 || (!p.drainUntil.IsZero() && time.Now().After(p.drainUntil)) {
			p.terminateLocked()
			c.mu.Unlock()
			return
		}
		m := p.out[0]
		p.out[0] = nil
		p.out = p.out[1:]
		// closeLocked may move the deadline while the write is in flight.
		p.conn.SetWriteDeadline(p.drainUntil)
		c.broadcastLocked()
		c.mu.Unlock()

		err := writeMessage(w, m)

		c.mu.Lock()
		if err != nil {
			p.disconnectLocked()
			return
		}
	}
}

// disconnectLocked terminates the pipe after an I/O error, reports the event,
// and releases c.mu.
func (p *pipe) disconnectLocked() {
	c := p.sock.ctx
	already := p.terminated
	p.terminateLocked()
	c.mu.Unlock()
	if !already {
		p.sock.emit(Event{
			Kind:       EventDisconnected,
			Endpoint:   p.endpoint,
			LocalAddr:  safeconn.LocalAddr(p.conn),
			RemoteAddr: safeconn.RemoteAddr(p.conn),
		})
	}
}

// writeMessage writes each frame as a flags byte, a big endian length, and
// the payload.
func writeMessage(w *bufio.Writer, m message) error {
	for idx, frame := range m {
		var header [5]byte
		if idx < len(m)-1 {
			header[0] = frameFlagMore
		}
		binary.BigEndian.PutUint32(header[1:], uint32(len(frame)))
		if _, err := w.Write(header[:]); err != nil {
			return err
		}
		if _, err := w.Write(frame); err != nil {
			return err
		}
	}
	return w.Flush()
}

// readMessage reads the frames of a message. A negative limit means no
// limit on the total message size.
func readMessage(r *bufio.Reader, limit int64) (message, error) {
	var (
		m     message
		total int64
	)
	for {
		var header [5]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return nil, err
		}
		length := binary.BigEndian.Uint32(header[1:])
		total += int64(length)
		if length > maxFrameLength || (limit >= 0 && total > limit) {
			return nil, errFrameTooLarge
		}
		frame := make([]byte, length)
		if _, err := io.ReadFull(r, frame); err != nil {
			return nil, err
		}
		m = append(m, frame)
		if header[0]&frameFlagMore == 0 {
			return m, nil
		}
	}
}

// errnoFromError converts a Go network error into an [Errno].
func errnoFromError(err error) Errno {
	var errno syscall.Errno
	switch {
	case errors.As(err, &errno):
		return errnoFromSyscall(errno)
	case errors.Is(err, errFrameTooLarge):
		return EMSGSIZE
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return EPROTO
	case errors.Is(err, net.ErrClosed):
		return ENOTSOCK
	}
	var addrErr *net.AddrError
	var dnsErr *net.DNSError
	if errors.As(err, &addrErr) || errors.As(err, &dnsErr) {
		return EINVAL
	}
	return EPROTO
}
