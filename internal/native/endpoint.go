// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"net"
	"strconv"
	"strings"
)

// maxIPCPathLength is the usable length of a unix socket path.
const maxIPCPathLength = 107

// Bind listens on the endpoint. Multiple binds are independent: a failed
// bind leaves the earlier ones in place.
func (s *Sock) Bind(endpoint string) Errno {
	if errno := s.checkUsable(); errno != 0 {
		return errno
	}
	scheme, address, found := strings.Cut(endpoint, "://")
	if !found {
		return EINVAL
	}
	switch scheme {
	case "inproc":
		return s.bindInproc(address)
	case "tcp":
		host, port, errno := splitTCPAddress(address, true)
		if errno != 0 {
			return errno
		}
		return s.bindStream(scheme, "tcp", net.JoinHostPort(host, port))
	case "ipc":
		if errno := checkIPCPath(address); errno != 0 {
			return errno
		}
		return s.bindStream(scheme, "unix", address)
	default:
		return EPROTONOSUPPORT
	}
}

// Connect connects to the endpoint. Stream connections are established in
// the background and retried until the socket is closed.
func (s *Sock) Connect(endpoint string) Errno {
	if errno := s.checkUsable(); errno != 0 {
		return errno
	}
	scheme, address, found := strings.Cut(endpoint, "://")
	if !found {
		return EINVAL
	}
	switch scheme {
	case "inproc":
		return s.connectInproc(address)
	case "tcp":
		host, port, errno := splitTCPAddress(address, false)
		if errno != 0 {
			return errno
		}
		return s.connectStream(scheme, "tcp", net.JoinHostPort(host, port))
	case "ipc":
		if errno := checkIPCPath(address); errno != 0 {
			return errno
		}
		return s.connectStream(scheme, "unix", address)
	default:
		return EPROTONOSUPPORT
	}
}

// splitTCPAddress validates a host:port address. The "*" host and the
// zero port are only valid when binding.
func splitTCPAddress(address string, binding bool) (string, string, Errno) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return "", "", EINVAL
	}
	number, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return "", "", EINVAL
	}
	switch {
	case host == "*" && binding:
		host = ""
	case host == "" || host == "*":
		return "", "", EINVAL
	}
	if number == 0 && !binding {
		return "", "", EINVAL
	}
	return host, port, 0
}

func checkIPCPath(path string) Errno {
	switch {
	case path == "":
		return EINVAL
	case len(path) > maxIPCPathLength:
		return ENAMETOOLONG
	default:
		return 0
	}
}
