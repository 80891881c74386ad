// SPDX-License-Identifier: GPL-3.0-or-later

package native

import "strconv"

// Errno is the engine's integer status code. Zero means success.
type Errno int

// hausnumero is the base for codes that have no operating system equivalent.
const hausnumero = 156384712

// Engine specific codes.
const (
	// EFSM means the operation is not valid in the socket's current state.
	EFSM Errno = hausnumero + 51

	// ENOCOMPATPROTO means the peer socket type is not compatible.
	ENOCOMPATPROTO Errno = hausnumero + 52

	// ETERM means the context was terminated.
	ETERM Errno = hausnumero + 53

	// EMTHREAD means no I/O thread is available.
	EMTHREAD Errno = hausnumero + 54
)

var errnoNames = map[Errno]string{
	EACCES:          "EACCES",
	EADDRINUSE:      "EADDRINUSE",
	EADDRNOTAVAIL:   "EADDRNOTAVAIL",
	EAGAIN:          "EAGAIN",
	EBUSY:           "EBUSY",
	ECONNREFUSED:    "ECONNREFUSED",
	EFAULT:          "EFAULT",
	EHOSTUNREACH:    "EHOSTUNREACH",
	EINPROGRESS:     "EINPROGRESS",
	EINTR:           "EINTR",
	EINVAL:          "EINVAL",
	EMFILE:          "EMFILE",
	EMSGSIZE:        "EMSGSIZE",
	ENAMETOOLONG:    "ENAMETOOLONG",
	ENETDOWN:        "ENETDOWN",
	ENOBUFS:         "ENOBUFS",
	ENODEV:          "ENODEV",
	ENOENT:          "ENOENT",
	ENOMEM:          "ENOMEM",
	ENOTCONN:        "ENOTCONN",
	ENOTSOCK:        "ENOTSOCK",
	ENOTSUP:         "ENOTSUP",
	EPROTO:          "EPROTO",
	EPROTONOSUPPORT: "EPROTONOSUPPORT",
	EFSM:            "EFSM",
	ENOCOMPATPROTO:  "ENOCOMPATPROTO",
	ETERM:           "ETERM",
	EMTHREAD:        "EMTHREAD",
}

var errnoMessages = map[Errno]string{
	EACCES:          "permission denied",
	EADDRINUSE:      "address already in use",
	EADDRNOTAVAIL:   "cannot assign requested address",
	EAGAIN:          "resource temporarily unavailable",
	EBUSY:           "device or resource busy",
	ECONNREFUSED:    "connection refused",
	EFAULT:          "bad address",
	EHOSTUNREACH:    "no route to host",
	EINPROGRESS:     "operation in progress",
	EINTR:           "interrupted system call",
	EINVAL:          "invalid argument",
	EMFILE:          "too many open files",
	EMSGSIZE:        "message too long",
	ENAMETOOLONG:    "file name too long",
	ENETDOWN:        "network is down",
	ENOBUFS:         "no buffer space available",
	ENODEV:          "no such device",
	ENOENT:          "no such file or directory",
	ENOMEM:          "cannot allocate memory",
	ENOTCONN:        "socket is not connected",
	ENOTSOCK:        "not a socket",
	ENOTSUP:         "operation not supported",
	EPROTO:          "protocol error",
	EPROTONOSUPPORT: "protocol not supported",
	EFSM:            "operation cannot be accomplished in current state",
	ENOCOMPATPROTO:  "the protocol is not compatible with the socket type",
	ETERM:           "context was terminated",
	EMTHREAD:        "no thread available",
}

// Known returns whether the code belongs to the documented code space.
func (e Errno) Known() bool {
	_, found := errnoNames[e]
	return found
}

// Name returns the symbolic name of the code (e.g., "EAGAIN"), or the
// decimal value for codes outside the documented code space.
func (e Errno) Name() string {
	if name, found := errnoNames[e]; found {
		return name
	}
	return strconv.Itoa(int(e))
}

// Error implements error.
func (e Errno) Error() string {
	if msg, found := errnoMessages[e]; found {
		return msg
	}
	return "unknown error " + strconv.Itoa(int(e))
}
