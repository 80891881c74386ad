// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

// Version numbers of the engine.
const (
	VersionMajor = 1
	VersionMinor = 2
	VersionPatch = 0
)

// Dialer abstracts the [*net.Dialer] behavior.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// CtxOptions contains the defaults inherited by the sockets of a [*Ctx].
type CtxOptions struct {
	// Dialer establishes tcp and ipc connections.
	Dialer Dialer

	// SendHWM is the default send high water mark (0 means unlimited).
	SendHWM int

	// RecvHWM is the default receive high water mark (0 means unlimited).
	RecvHWM int

	// Linger is the default socket linger (negative means forever).
	Linger time.Duration

	// ReconnectInterval is the default delay before reconnecting.
	ReconnectInterval time.Duration

	// ReconnectIntervalMax bounds the exponential reconnect delay. When it
	// is not greater than ReconnectInterval, the delay is constant.
	ReconnectIntervalMax time.Duration
}

// Ctx is the opaque engine instance handle.
//
// A single mutex protects the whole engine state. Waiters block on the
// changed channel, which is closed and replaced at every state change.
type Ctx struct {
	changed     chan struct{}
	inproc      map[string]*Sock
	mu          sync.Mutex
	opts        CtxOptions
	pending     map[string][]*Sock
	sockets     map[*Sock]struct{}
	terminating bool
	termOnce    sync.Once
	wg          conc.WaitGroup
}

// NewCtx creates a new engine instance.
//
// Returns [EINVAL] when the options are not valid.
func NewCtx(opts CtxOptions) (*Ctx, Errno) {
	if opts.Dialer == nil || opts.SendHWM < 0 || opts.RecvHWM < 0 || opts.ReconnectInterval < 0 {
		return nil, EINVAL
	}
	c := &Ctx{
		changed: make(chan struct{}),
		inproc:  map[string]*Sock{},
		opts:    opts,
		pending: map[string][]*Sock{},
		sockets: map[*Sock]struct{}{},
	}
	return c, 0
}

// Version returns the engine version.
func Version() (major, minor, patch int) {
	return VersionMajor, VersionMinor, VersionPatch
}

// Shutdown makes every blocking call fail with [ETERM] and refuses the
// creation of new sockets. Open sockets remain valid until closed.
func (c *Ctx) Shutdown() Errno {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terminating = true
	c.broadcastLocked()
	return 0
}

// Term shuts down the instance, closes the sockets that are still open
// discarding their pending messages, and waits for the engine's goroutines,
// including the writers of sockets closed earlier that are still lingering.
//
// Calling Term more than once is harmless.
func (c *Ctx) Term() Errno {
	c.termOnce.Do(func() {
		c.Shutdown()
		c.mu.Lock()
		for s := range c.sockets {
			s.closeLocked(0)
		}
		c.mu.Unlock()
	})
	c.wg.Wait()
	return 0
}

// Socket creates a new socket of the given type.
func (c *Ctx) Socket(typ int) (*Sock, Errno) {
	if typ < TypePair || typ > TypeXSub {
		return nil, EINVAL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminating {
		return nil, ETERM
	}
	s := &Sock{
		ctx:             c,
		linger:          c.opts.Linger,
		maxMsgSize:      -1,
		reconnectIvl:    c.opts.ReconnectInterval,
		reconnectIvlMax: c.opts.ReconnectIntervalMax,
		rcvhwm:          c.opts.RecvHWM,
		sndhwm:          c.opts.SendHWM,
		typ:             typ,
	}
	c.sockets[s] = struct{}{}
	return s, 0
}

// broadcastLocked wakes up every waiter. The caller holds c.mu.
func (c *Ctx) broadcastLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// waitLocked releases c.mu until the state changes or timeout fires. The
// timeout channel may be nil to wait forever. Returns false on timeout.
func (c *Ctx) waitLocked(timeout <-chan time.Time) bool {
	ch := c.changed
	c.mu.Unlock()
	defer c.mu.Lock()
	select {
	case <-ch:
		return true
	case <-timeout:
		return false
	}
}
