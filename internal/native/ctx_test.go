// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCtxInvalidOptions(t *testing.T) {
	tests := []struct {
		// name describes what this test case verifies.
		name string

		// opts contains the options to use.
		opts CtxOptions
	}{
		{name: "missing dialer", opts: CtxOptions{}},
		{name: "negative send hwm", opts: CtxOptions{Dialer: &net.Dialer{}, SendHWM: -1}},
		{name: "negative recv hwm", opts: CtxOptions{Dialer: &net.Dialer{}, RecvHWM: -1}},
		{name: "negative reconnect interval", opts: CtxOptions{Dialer: &net.Dialer{}, ReconnectInterval: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, errno := NewCtx(tt.opts)
			assert.Nil(t, c)
			assert.Equal(t, EINVAL, errno)
		})
	}
}

func TestVersion(t *testing.T) {
	major, minor, patch := Version()
	assert.Equal(t, VersionMajor, major)
	assert.Equal(t, VersionMinor, minor)
	assert.Equal(t, VersionPatch, patch)
}

func TestSocketInvalidType(t *testing.T) {
	c := newTestCtx(t)
	s, errno := c.Socket(TypeXSub + 1)
	assert.Nil(t, s)
	assert.Equal(t, EINVAL, errno)
}

func TestShutdownInterruptsBlockingRecv(t *testing.T) {
	c := newTestCtx(t)
	pull := newTestSock(t, c, TypePull)

	result := make(chan Errno, 1)
	go func() {
		_, errno := pull.Recv(0)
		result <- errno
	}()

	time.Sleep(20 * time.Millisecond)
	c.Shutdown()

	select {
	case errno := <-result:
		assert.Equal(t, ETERM, errno)
	case <-time.After(5 * time.Second):
		t.Fatal("recv was not interrupted")
	}

	// New sockets are refused after shutdown.
	_, errno := c.Socket(TypePush)
	assert.Equal(t, ETERM, errno)
}

func TestTermClosesOpenSockets(t *testing.T) {
	c := newTestCtx(t)
	s := newTestSock(t, c, TypePair)

	require.Zero(t, c.Term())
	assert.Equal(t, ENOTSOCK, s.Close())

	// Term is idempotent.
	assert.Zero(t, c.Term())
}
