// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"fmt"

	"github.com/bassosimone/zsock/internal/native"
)

// SocketKind is the messaging pattern of a [*Socket]. It is fixed at creation.
type SocketKind int

// Socket kinds.
const (
	// Pair connects to exactly one other Pair socket.
	Pair SocketKind = native.TypePair

	// Pub distributes messages to all the connected Sub sockets.
	Pub SocketKind = native.TypePub

	// Sub receives the messages of Pub sockets matching its subscriptions.
	Sub SocketKind = native.TypeSub

	// Req sends requests and receives replies, strictly alternating.
	Req SocketKind = native.TypeReq

	// Rep receives requests and sends replies, strictly alternating.
	Rep SocketKind = native.TypeRep

	// Dealer load-balances outgoing messages and fair-queues incoming ones.
	Dealer SocketKind = native.TypeDealer

	// Router prefixes incoming messages with the peer identity and routes
	// outgoing messages using their first frame.
	Router SocketKind = native.TypeRouter

	// Pull fair-queues the messages of Push sockets.
	Pull SocketKind = native.TypePull

	// Push load-balances messages to Pull sockets.
	Push SocketKind = native.TypePush

	// XPub is like Pub for building proxies.
	XPub SocketKind = native.TypeXPub

	// XSub is like Sub for building proxies and receives every message.
	XSub SocketKind = native.TypeXSub
)

var socketKindNames = map[SocketKind]string{
	Pair:   "PAIR",
	Pub:    "PUB",
	Sub:    "SUB",
	Req:    "REQ",
	Rep:    "REP",
	Dealer: "DEALER",
	Router: "ROUTER",
	Pull:   "PULL",
	Push:   "PUSH",
	XPub:   "XPUB",
	XSub:   "XSUB",
}

// String implements [fmt.Stringer].
func (k SocketKind) String() string {
	if name, found := socketKindNames[k]; found {
		return name
	}
	return fmt.Sprintf("SocketKind(%d)", int(k))
}

// SendFlags modifies the behavior of [*Socket.Send].
type SendFlags int

// Send flags.
const (
	// SendDontWait fails with [ErrWouldBlock] instead of blocking.
	SendDontWait SendFlags = native.FlagDontWait

	// SendMore marks the frame as followed by more frames of the same message.
	SendMore SendFlags = native.FlagSendMore
)

// RecvFlags modifies the behavior of [*Socket.Receive].
type RecvFlags int

// RecvDontWait fails with [ErrWouldBlock] instead of blocking.
const RecvDontWait RecvFlags = native.FlagDontWait
