// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"time"

	"github.com/bassosimone/zsock/internal/native"
)

// PollEvents is a set of socket readiness events.
type PollEvents int16

// Poll events.
const (
	// PollIn means that a message can be received without blocking.
	PollIn PollEvents = native.PollIn

	// PollOut means that a message can be sent without blocking.
	PollOut PollEvents = native.PollOut
)

// PollItem is a socket to watch with [Poll].
type PollItem struct {
	// Socket is the socket to watch.
	Socket *Socket

	// Events contains the events to wait for.
	Events PollEvents

	// REvents is set by [Poll] to the events that occurred.
	REvents PollEvents
}

// Poll waits until at least one of the items is ready for its events or the
// timeout expires, and returns the number of ready items. A zero timeout
// does not wait and a negative one waits forever.
//
// The sockets must be owned by the calling goroutine, as for any other
// socket operation. Returns an [*Error] with [KindPollFailed] on failure.
func Poll(items []PollItem, timeout time.Duration) (int, error) {
	nitems := make([]native.PollItem, 0, len(items))
	entered := make(map[*Socket]bool, len(items))
	defer func() {
		for s := range entered {
			s.leave()
		}
	}()
	for _, item := range items {
		if item.Socket == nil {
			return 0, &Error{Kind: KindPollFailed, Op: OpPoll}
		}
		if !entered[item.Socket] {
			item.Socket.enter()
			entered[item.Socket] = true
		}
		h := item.Socket.h.Load()
		if h == nil {
			return 0, &Error{Kind: KindUseAfterClose, Op: OpPoll}
		}
		nitems = append(nitems, native.PollItem{Sock: h.sock, Events: int16(item.Events)})
	}
	count, errno := native.Poll(nitems, timeout)
	for idx := range nitems {
		items[idx].REvents = PollEvents(nitems[idx].REvents)
	}
	return count, mapErrno(OpPoll, errno)
}
