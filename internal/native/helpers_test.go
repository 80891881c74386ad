// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestCtx returns a context terminated at the end of the test.
func newTestCtx(t *testing.T) *Ctx {
	c, errno := NewCtx(CtxOptions{
		Dialer:            &net.Dialer{},
		SendHWM:           1000,
		RecvHWM:           1000,
		ReconnectInterval: 10 * time.Millisecond,
	})
	require.Zero(t, errno)
	t.Cleanup(func() { c.Term() })
	return c
}

// newTestSock returns a socket of the given type.
func newTestSock(t *testing.T, c *Ctx, typ int) *Sock {
	s, errno := c.Socket(typ)
	require.Zero(t, errno)
	return s
}

// recvString receives a frame and returns it as a string.
func recvString(t *testing.T, s *Sock, flags int) string {
	data, errno := s.Recv(flags)
	require.Zero(t, errno, "recv failed: %s", errno.Name())
	return string(data)
}
