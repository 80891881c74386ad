// SPDX-License-Identifier: GPL-3.0-or-later

package native

import "time"

// EventKind is the kind of a transport [Event].
type EventKind int

// Transport events reported through [*Sock.SetMonitor].
const (
	EventListening EventKind = iota + 1
	EventAccepted
	EventAcceptFailed
	EventConnected
	EventConnectRetried
	EventDisconnected
	EventHandshakeFailed
)

var eventNames = map[EventKind]string{
	EventListening:       "listening",
	EventAccepted:        "accepted",
	EventAcceptFailed:    "acceptFailed",
	EventConnected:       "connected",
	EventConnectRetried:  "connectRetried",
	EventDisconnected:    "disconnected",
	EventHandshakeFailed: "handshakeFailed",
}

// String implements [fmt.Stringer].
func (k EventKind) String() string {
	if name, found := eventNames[k]; found {
		return name
	}
	return "unknown"
}

// Event describes something that happened on a stream transport.
type Event struct {
	// Kind is the event kind.
	Kind EventKind

	// Endpoint is the endpoint the event refers to.
	Endpoint string

	// LocalAddr is the local address, when a connection exists.
	LocalAddr string

	// RemoteAddr is the remote address, when a connection exists.
	RemoteAddr string

	// Errno is the failure code for failure events.
	Errno Errno

	// Interval is the delay before the next attempt for [EventConnectRetried].
	Interval time.Duration
}
