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

// Context owns an engine instance. Sockets are created from a Context
// using [NewSocket] and keep it alive until they are closed.
//
// A *Context is a reference. Use [*Context.Clone] to obtain another
// reference to the same engine instance and [*Context.Release] to drop a
// reference: the last release terminates the instance. References are safe
// to use from multiple goroutines.
type Context struct {
	released atomic.Bool
	shared   *sharedContext
}

// sharedContext is the state shared by all the references to a context.
type sharedContext struct {
	errClassifier ErrClassifier
	linger        time.Duration
	logger        SLogger
	native        *native.Ctx
	refs          atomic.Int64
	timeNow       func() time.Time

	// live counts the open sockets and liveChanged is closed and replaced
	// whenever live changes. Both are protected by liveMu.
	liveMu      sync.Mutex
	live        int
	liveChanged chan struct{}

	// termMu serializes termination; termDone and termErr are protected by it.
	termMu   sync.Mutex
	termDone bool
	termErr  error
}

// NewContext creates a new [*Context] holding the first reference to a new
// engine instance.
//
// The cfg argument contains the configuration. It must not be nil.
//
// The logger argument is the [SLogger] used by the context and its sockets.
//
// Returns an [*Error] with [KindContextInitFailed] on failure.
func NewContext(cfg *Config, logger SLogger) (*Context, error) {
	runtimex.Assert(cfg != nil)
	t0 := cfg.TimeNow()
	nctx, errno := native.NewCtx(native.CtxOptions{
		Dialer:               cfg.Dialer,
		SendHWM:              cfg.SendHWM,
		RecvHWM:              cfg.RecvHWM,
		Linger:               cfg.Linger,
		ReconnectInterval:    cfg.ReconnectInterval,
		ReconnectIntervalMax: cfg.ReconnectIntervalMax,
	})
	err := mapErrno(OpNewContext, errno)
	logger.Info(
		"contextCreate",
		slog.Any("err", err),
		slog.String("errClass", cfg.ErrClassifier.Classify(err)),
		slog.Duration("linger", cfg.Linger),
		slog.Time("t0", t0),
		slog.Time("t", cfg.TimeNow()),
	)
	if err != nil {
		return nil, err
	}
	shared := &sharedContext{
		errClassifier: cfg.ErrClassifier,
		linger:        cfg.Linger,
		logger:        logger,
		native:        nctx,
		timeNow:       cfg.TimeNow,
		liveChanged:   make(chan struct{}),
	}
	shared.refs.Store(1)
	return &Context{shared: shared}, nil
}

// Clone returns a new reference to the same engine instance.
//
// Cloning a released reference is a programmer error and panics.
func (c *Context) Clone() *Context {
	runtimex.Assert(!c.released.Load())
	c.shared.refs.Add(1)
	return &Context{shared: c.shared}
}

// Release drops this reference. When no references remain, it calls
// [*Context.Terminate] and returns its result. Releasing the same
// reference again is a no-op.
func (c *Context) Release() error {
	if !c.released.CompareAndSwap(false, true) {
		return nil
	}
	if c.shared.refs.Add(-1) > 0 {
		return nil
	}
	return c.shared.terminate()
}

// Terminate shuts down the engine instance.
//
// Blocking operations in progress on the sockets of this context fail with
// [ErrOperationInterrupted] and new sockets cannot be created. Terminate then
// waits for the open sockets to be closed for at most [Config.Linger], which
// means forever when negative. The sockets still open afterwards are
// invalidated and their operations fail with [ErrUseAfterClose]. Finally,
// Terminate waits for the engine to flush the messages of closed sockets
// within their own linger and frees the engine instance.
//
// Terminate is idempotent and safe to call from multiple goroutines: the calls
// are serialized and all of them return the result of the first one.
func (c *Context) Terminate() error {
	return c.shared.terminate()
}

func (sc *sharedContext) terminate() error {
	sc.termMu.Lock()
	defer sc.termMu.Unlock()
	if sc.termDone {
		return sc.termErr
	}

	t0 := sc.timeNow()
	sc.logger.Info(
		"terminateStart",
		slog.Duration("linger", sc.linger),
		slog.Int("openSockets", sc.openSockets()),
		slog.Time("t", t0),
	)

	err := mapErrno(OpTerminate, sc.native.Shutdown())
	forced := 0
	if err == nil {
		forced = sc.waitSocketsClosed()
		err = mapErrno(OpTerminate, sc.native.Term())
	}

	sc.logger.Info(
		"terminateDone",
		slog.Any("err", err),
		slog.String("errClass", sc.errClassifier.Classify(err)),
		slog.Int("forcedSockets", forced),
		slog.Duration("linger", sc.linger),
		slog.Time("t0", t0),
		slog.Time("t", sc.timeNow()),
	)

	sc.termDone, sc.termErr = true, err
	return err
}

// waitSocketsClosed waits for the open sockets to be closed within the linger
// and returns how many are still open.
func (sc *sharedContext) waitSocketsClosed() int {
	var timeout <-chan time.Time
	if sc.linger >= 0 {
		timer := time.NewTimer(sc.linger)
		defer timer.Stop()
		timeout = timer.C
	}
	for {
		sc.liveMu.Lock()
		live, changed := sc.live, sc.liveChanged
		sc.liveMu.Unlock()
		if live <= 0 {
			return 0
		}
		select {
		case <-changed:
		case <-timeout:
			return live
		}
	}
}

func (sc *sharedContext) openSockets() int {
	sc.liveMu.Lock()
	defer sc.liveMu.Unlock()
	return sc.live
}

// socketOpened and socketClosed track the open sockets.
func (sc *sharedContext) socketOpened() {
	sc.addLive(1)
}

func (sc *sharedContext) socketClosed() {
	sc.addLive(-1)
}

func (sc *sharedContext) addLive(delta int) {
	sc.liveMu.Lock()
	sc.live += delta
	close(sc.liveChanged)
	sc.liveChanged = make(chan struct{})
	sc.liveMu.Unlock()
}
