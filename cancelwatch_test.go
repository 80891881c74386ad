// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The socket is closed when the context is cancelled.
func TestCancelWatchClosesOnCancel(t *testing.T) {
	zctx := newTestContext(t, DefaultSLogger())
	s := newTestSocket(t, zctx, Pull)

	ctx, cancel := context.WithCancel(context.Background())
	stop := CancelWatch(ctx, s)
	defer stop()

	done := make(chan error, 1)
	go func() {
		_, err := s.Receive(0)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrUseAfterClose))
	case <-time.After(5 * time.Second):
		t.Fatal("receive was not interrupted")
	}
}

// The socket is closed when the deadline expires.
func TestCancelWatchClosesOnDeadline(t *testing.T) {
	zctx := newTestContext(t, DefaultSLogger())
	s := newTestSocket(t, zctx, Rep)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	stop := CancelWatch(ctx, s)
	defer stop()

	_, err := s.Receive(0)
	assert.True(t, errors.Is(err, ErrUseAfterClose))
}

// Stopping the watcher keeps the socket open.
func TestCancelWatchStop(t *testing.T) {
	zctx := newTestContext(t, DefaultSLogger())
	s := newTestSocket(t, zctx, Pull)

	ctx, cancel := context.WithCancel(context.Background())
	stop := CancelWatch(ctx, s)
	require.True(t, stop())
	cancel()

	_, err := s.Receive(RecvDontWait)
	assert.True(t, errors.Is(err, ErrWouldBlock))
}
