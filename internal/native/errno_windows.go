//go:build windows

// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// The C runtime values are used where Winsock has no equivalent, and
// hausnumero based values where neither defines the code.
const (
	EACCES          Errno = 13
	EADDRINUSE            = Errno(windows.WSAEADDRINUSE)
	EADDRNOTAVAIL         = Errno(windows.WSAEADDRNOTAVAIL)
	EAGAIN          Errno = 11
	EBUSY           Errno = 16
	ECONNREFUSED          = Errno(windows.WSAECONNREFUSED)
	EFAULT          Errno = 14
	EHOSTUNREACH          = Errno(windows.WSAEHOSTUNREACH)
	EINPROGRESS     Errno = hausnumero + 8
	EINTR           Errno = 4
	EINVAL          Errno = 22
	EMFILE          Errno = 24
	EMSGSIZE        Errno = hausnumero + 10
	ENAMETOOLONG    Errno = 38
	ENETDOWN              = Errno(windows.WSAENETDOWN)
	ENOBUFS               = Errno(windows.WSAENOBUFS)
	ENODEV          Errno = 19
	ENOENT          Errno = 2
	ENOMEM          Errno = 12
	ENOTCONN              = Errno(windows.WSAENOTCONN)
	ENOTSOCK        Errno = hausnumero + 9
	ENOTSUP         Errno = hausnumero + 1
	EPROTO          Errno = hausnumero + 20
	EPROTONOSUPPORT       = Errno(windows.WSAEPROTONOSUPPORT)
)

// winsockErrnos maps the Winsock codes without a direct counterpart in the
// table above onto the table's values.
var winsockErrnos = map[syscall.Errno]Errno{
	windows.WSAEACCES:               EACCES,
	windows.WSAEFAULT:               EFAULT,
	windows.WSAEINPROGRESS:          EINPROGRESS,
	windows.WSAEINTR:                EINTR,
	windows.WSAEINVAL:               EINVAL,
	windows.WSAEMFILE:               EMFILE,
	windows.WSAEMSGSIZE:             EMSGSIZE,
	windows.WSAENAMETOOLONG:         ENAMETOOLONG,
	windows.WSAENOTSOCK:             ENOTSOCK,
	windows.WSAEOPNOTSUPP:           ENOTSUP,
	windows.WSAEWOULDBLOCK:          EAGAIN,
	windows.ERROR_ACCESS_DENIED:     EACCES,
	windows.ERROR_FILE_NOT_FOUND:    ENOENT,
	windows.ERROR_NOT_ENOUGH_MEMORY: ENOMEM,
}

// errnoFromSyscall converts an operating system error code into an [Errno].
func errnoFromSyscall(errno syscall.Errno) Errno {
	if mapped, found := winsockErrnos[errno]; found {
		return mapped
	}
	return Errno(errno)
}
