// SPDX-License-Identifier: GPL-3.0-or-later

package native

import "time"

// multiCtxPollInterval is how often Poll re-checks sockets belonging to
// contexts other than the first one.
const multiCtxPollInterval = 10 * time.Millisecond

// PollItem is a socket and the events to wait for.
type PollItem struct {
	// Sock is the socket to poll.
	Sock *Sock

	// Events is a mask of [PollIn] and [PollOut].
	Events int16

	// REvents is set by [Poll] to the events that are ready.
	REvents int16
}

// Poll waits until at least one item is ready or the timeout expires, and
// returns the number of ready items. A negative timeout waits forever.
func Poll(items []PollItem, timeout time.Duration) (int, Errno) {
	if len(items) <= 0 {
		if timeout < 0 {
			return 0, EINVAL
		}
		time.Sleep(timeout)
		return 0, 0
	}
	primary := items[0].Sock
	if primary == nil {
		return 0, EINVAL
	}
	multi := false
	for _, item := range items {
		if item.Sock == nil {
			return 0, EINVAL
		}
		multi = multi || item.Sock.ctx != primary.ctx
	}

	var deadline <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	c := primary.ctx
	for {
		c.mu.Lock()
		changed, terminating := c.changed, c.terminating
		c.mu.Unlock()
		if terminating {
			return 0, ETERM
		}

		count, errno := pollOnce(items)
		if errno != 0 || count > 0 || timeout == 0 {
			return count, errno
		}

		var tick <-chan time.Time
		if multi {
			tick = time.After(multiCtxPollInterval)
		}
		select {
		case <-changed:
		case <-tick:
		case <-deadline:
			return pollOnce(items)
		}
	}
}

func pollOnce(items []PollItem) (int, Errno) {
	count := 0
	for idx := range items {
		s := items[idx].Sock
		c := s.ctx
		c.mu.Lock()
		if s.closed {
			c.mu.Unlock()
			return 0, ENOTSOCK
		}
		if c.terminating {
			c.mu.Unlock()
			return 0, ETERM
		}
		items[idx].REvents = s.eventsLocked() & items[idx].Events
		c.mu.Unlock()
		if items[idx].REvents != 0 {
			count++
		}
	}
	return count, 0
}
