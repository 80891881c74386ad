//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"syscall"

	"golang.org/x/sys/unix"
)

const (
	EACCES          = Errno(unix.EACCES)
	EADDRINUSE      = Errno(unix.EADDRINUSE)
	EADDRNOTAVAIL   = Errno(unix.EADDRNOTAVAIL)
	EAGAIN          = Errno(unix.EAGAIN)
	EBUSY           = Errno(unix.EBUSY)
	ECONNREFUSED    = Errno(unix.ECONNREFUSED)
	EFAULT          = Errno(unix.EFAULT)
	EHOSTUNREACH    = Errno(unix.EHOSTUNREACH)
	EINPROGRESS     = Errno(unix.EINPROGRESS)
	EINTR           = Errno(unix.EINTR)
	EINVAL          = Errno(unix.EINVAL)
	EMFILE          = Errno(unix.EMFILE)
	EMSGSIZE        = Errno(unix.EMSGSIZE)
	ENAMETOOLONG    = Errno(unix.ENAMETOOLONG)
	ENETDOWN        = Errno(unix.ENETDOWN)
	ENOBUFS         = Errno(unix.ENOBUFS)
	ENODEV          = Errno(unix.ENODEV)
	ENOENT          = Errno(unix.ENOENT)
	ENOMEM          = Errno(unix.ENOMEM)
	ENOTCONN        = Errno(unix.ENOTCONN)
	ENOTSOCK        = Errno(unix.ENOTSOCK)
	ENOTSUP         = Errno(unix.ENOTSUP)
	EPROTO          = Errno(unix.EPROTO)
	EPROTONOSUPPORT = Errno(unix.EPROTONOSUPPORT)
)

// errnoFromSyscall converts an operating system error code into an [Errno].
func errnoFromSyscall(errno syscall.Errno) Errno {
	return Errno(errno)
}
