//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestErrnoFromSyscall(t *testing.T) {
	for _, errno := range []unix.Errno{unix.EINVAL, unix.EACCES, unix.EMFILE, unix.EADDRINUSE} {
		err := &net.OpError{Op: "listen", Net: "tcp", Err: os.NewSyscallError("bind", errno)}
		got := errnoFromError(err)
		assert.Equal(t, Errno(errno), got)
		assert.True(t, got.Known(), errno.Error())
	}
}
