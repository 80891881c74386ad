// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import "sync"

// SyncSocket shares a [*Socket] between goroutines by serializing access
// to it with a mutex.
//
// Access is mutually exclusive but not ordered: when several goroutines
// wait for the socket, no order is guaranteed among them.
type SyncSocket struct {
	mu   sync.Mutex
	sock *Socket
}

// NewSyncSocket takes ownership of s using [*Socket.Move] and returns a
// [*SyncSocket] wrapping it. Afterwards, s is no longer usable.
func NewSyncSocket(s *Socket) *SyncSocket {
	return &SyncSocket{sock: s.Move()}
}

// WithLock calls f with exclusive access to the socket and returns its
// results. The lock is released when f returns or panics. The socket must
// not be retained by f after it returns.
func WithLock[T any](ss *SyncSocket, f func(*Socket) (T, error)) (T, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return f(ss.sock)
}

// Do is like [WithLock] for functions returning only an error.
func (ss *SyncSocket) Do(f func(*Socket) error) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return f(ss.sock)
}

// Close closes the socket without waiting for the lock, so that a goroutine
// blocked in [*Socket.Receive] or [*Socket.Send] inside [WithLock] is
// interrupted. It is idempotent.
func (ss *SyncSocket) Close() error {
	return ss.sock.Close()
}
