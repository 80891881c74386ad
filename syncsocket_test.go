// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncSocketTakesOwnership(t *testing.T) {
	ctx := newTestContext(t, DefaultSLogger())
	s, err := NewSocket(ctx, Push)
	require.NoError(t, err)

	ss := NewSyncSocket(s)
	defer ss.Close()

	err = s.Bind(MustParseEndpoint("inproc://owned"))
	assert.True(t, errors.Is(err, ErrUseAfterClose))

	assert.NoError(t, ss.Do(func(s *Socket) error {
		return s.Bind(MustParseEndpoint("inproc://owned"))
	}))
}

func TestSyncSocketSerializesAccess(t *testing.T) {
	ctx := newTestContext(t, DefaultSLogger())
	pull, push := newInprocPair(t, ctx, Pull, Push, "serialized")
	ss := NewSyncSocket(push)
	defer ss.Close()

	const (
		workers  = 8
		messages = 50
	)
	var (
		inside  atomic.Int32
		overlap atomic.Bool
		wg      conc.WaitGroup
	)
	for range workers {
		wg.Go(func() {
			for range messages {
				err := ss.Do(func(s *Socket) error {
					if inside.Add(1) != 1 {
						overlap.Store(true)
					}
					defer inside.Add(-1)
					return s.Send([]byte("x"), 0)
				})
				assert.NoError(t, err)
			}
		})
	}

	received := 0
	for received < workers*messages {
		_, err := pull.Receive(0)
		require.NoError(t, err)
		received++
	}
	wg.Wait()
	assert.False(t, overlap.Load())
}

func TestWithLock(t *testing.T) {
	ctx := newTestContext(t, DefaultSLogger())
	s := newTestSocket(t, ctx, Router)
	ss := NewSyncSocket(s)
	defer ss.Close()

	kind, err := WithLock(ss, func(s *Socket) (SocketKind, error) {
		return s.Kind()
	})
	require.NoError(t, err)
	assert.Equal(t, Router, kind)
}

func TestWithLockReleasesOnPanic(t *testing.T) {
	ctx := newTestContext(t, DefaultSLogger())
	ss := NewSyncSocket(newTestSocket(t, ctx, Pair))
	defer ss.Close()

	assert.Panics(t, func() {
		WithLock(ss, func(s *Socket) (int, error) {
			panic("mocked panic")
		})
	})

	// The lock is available again.
	assert.NoError(t, ss.Do(func(s *Socket) error { return nil }))
}

func TestSyncSocketCloseInterruptsHolder(t *testing.T) {
	ctx := newTestContext(t, DefaultSLogger())
	ss := NewSyncSocket(newTestSocket(t, ctx, Pull))

	done := make(chan error, 1)
	go func() {
		_, err := WithLock(ss, func(s *Socket) ([]byte, error) {
			return s.Receive(0)
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, ss.Close())
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrUseAfterClose))
	case <-time.After(5 * time.Second):
		t.Fatal("holder was not interrupted")
	}
}
