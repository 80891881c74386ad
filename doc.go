// SPDX-License-Identifier: GPL-3.0-or-later

// Package zsock provides messaging sockets with explicit goroutine ownership.
//
// # Core Abstraction
//
// A [*Context] owns an instance of the messaging engine, which lives in an
// internal package and exposes a C-style surface: opaque handles and integer
// error codes. Sockets are created from a context with [NewSocket] and use
// one of the messaging patterns listed by [SocketKind]:
//
//	ctx, err := zsock.NewContext(zsock.NewConfig(), slog.Default())
//	sock, err := zsock.NewSocket(ctx, zsock.Push)
//	err = sock.Connect(zsock.MustParseEndpoint("tcp://127.0.0.1:5555"))
//	err = sock.Send([]byte("hello"), 0)
//
// Addresses are parsed by [ParseEndpoint] into [Endpoint] values. The
// supported transports are tcp, ipc (unix domain sockets), and inproc (within
// the same context). The pgm and epgm schemes parse but fail to bind.
//
// # Ownership
//
// The engine socket has no synchronization of its own. Hence:
//
//   - A [*Socket] belongs to one goroutine at a time. Ownership is transferred
//     with [*Socket.Move], which leaves the original value unusable.
//   - Calling a *Socket from two goroutines at the same time panics, like
//     concurrent map writes do. The one exception is [*Socket.Close], which
//     interrupts blocking calls from any goroutine.
//   - [Socket] values must not be copied, which go vet enforces.
//   - [*SyncSocket] wraps a socket to share it among goroutines, which take
//     turns using it through [WithLock] or [*SyncSocket.Do].
//
// Every socket holds a reference to its context, so the engine instance is
// not freed while sockets are open. [*Context.Terminate] interrupts the
// blocking calls, waits up to [Config.Linger] for the sockets to be closed,
// and frees the instance.
//
// # Errors
//
// All the errors returned by this package are [*Error] values whose
// [ErrorKind] belongs to a closed set. Use [errors.Is] with the Err*
// sentinels to check the kind. [ErrWouldBlock] signals backpressure when
// using [SendDontWait] or [RecvDontWait] and is not a failure. Engine codes
// are converted by [MapError].
//
// # Observability
//
// The package supports structured logging via [SLogger] (compatible with
// [log/slog]). By default, logging is disabled.
//
// Operations emit span events (*Start/*Done pairs) carrying t (timestamp),
// and the *Done events additionally carry t0 (start time), err, and errClass,
// which is computed by [Config.ErrClassifier]. Each socket gets a UUIDv7
// from [NewSpanID], logged as socketID along with socketKind, so that all
// the records of a socket can be correlated. Send and receive events use
// [slog.LevelDebug]; lifecycle events and the transport events reported by
// the engine (socketEvent) use [slog.LevelInfo].
//
// # Cancellation
//
// Blocking sends and receives do not take a [context.Context]. Use
// [CancelWatch] to close a socket when a context is done, or use the
// non-blocking flags with [Poll].
package zsock
