// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"context"
	"net"
	"time"
)

// Dialer abstracts the [*net.Dialer] behavior.
//
// The engine uses it to establish tcp and ipc connections, which allows
// for unit testing and for using alternative dialers.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Config holds the configuration of a [*Context] and of its sockets.
//
// Pass this to [NewContext]. All fields have sensible defaults set by
// [NewConfig]. The context copies the fields it needs, so changing the
// config after [NewContext] has no effect on the created context.
type Config struct {
	// Dialer establishes tcp and ipc connections.
	//
	// Set by [NewConfig] to [*net.Dialer].
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time

	// Linger is how long [*Context.Terminate] waits for open sockets to
	// be closed before invalidating them, and the default linger of new
	// sockets (see [*Socket.SetLinger]). Zero means not waiting and a
	// negative value means waiting forever.
	//
	// Set by [NewConfig] to 30 seconds.
	Linger time.Duration

	// SendHWM is the default send high water mark in messages (0 means unlimited).
	//
	// Set by [NewConfig] to 1000.
	SendHWM int

	// RecvHWM is the default receive high water mark in messages (0 means unlimited).
	//
	// Set by [NewConfig] to 1000.
	RecvHWM int

	// ReconnectInterval is the default delay before reconnecting.
	//
	// Set by [NewConfig] to 100 milliseconds.
	ReconnectInterval time.Duration

	// ReconnectIntervalMax is the default maximum reconnect delay. When it
	// is greater than ReconnectInterval, the delay doubles at every failed
	// attempt up to this value. Otherwise, the delay is constant.
	//
	// Set by [NewConfig] to zero.
	ReconnectIntervalMax time.Duration
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Dialer:               &net.Dialer{},
		ErrClassifier:        DefaultErrClassifier,
		TimeNow:              time.Now,
		Linger:               30 * time.Second,
		SendHWM:              1000,
		RecvHWM:              1000,
		ReconnectInterval:    100 * time.Millisecond,
		ReconnectIntervalMax: 0,
	}
}
