// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import "context"

// CancelWatch arranges for the socket to be closed when the context is done
// (cancelled or deadline exceeded). This interrupts a blocking
// [*Socket.Send] or [*Socket.Receive] on external cancellation (e.g., SIGINT
// via [signal.NotifyContext]), which otherwise would wait for a message.
//
// The returned function unregisters the watcher and reports whether it
// stopped it before it ran. Call it once the socket is no longer
// bound to the context lifetime to avoid closing the socket later.
//
// The watcher is bound to s, so it has no effect on the socket returned by
// a later [*Socket.Move].
//
// Use this primitive when the context lifetime matches the socket lifetime.
// Do not use it when the socket outlives the context, e.g., when returning
// it to the caller.
func CancelWatch(ctx context.Context, s *Socket) (stop func() bool) {
	return context.AfterFunc(ctx, func() {
		s.Close()
	})
}
