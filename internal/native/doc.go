// SPDX-License-Identifier: GPL-3.0-or-later

// Package native implements the messaging engine wrapped by package zsock.
//
// The engine exposes a C-style call surface: contexts and sockets are opaque
// handles ([*Ctx], [*Sock]) and every call reports its outcome as an [Errno],
// where zero means success. Callers are expected to translate the codes into
// richer errors at their own boundary.
//
// A [*Sock] has no synchronization of its own from the caller's point of view:
// the engine tolerates its internal I/O goroutines running alongside the
// owner, but two callers must never use the same [*Sock] at the same time.
// Only [*Sock.Close] may be called while another call is blocked, which
// interrupts that call.
//
// Supported transports are inproc (sockets of the same [*Ctx]), tcp and ipc.
// The pgm and epgm schemes are recognized and rejected with [EPROTONOSUPPORT].
package native
