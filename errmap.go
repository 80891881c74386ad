// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import "github.com/bassosimone/zsock/internal/native"

// opFailureKinds maps each operation to the kind used for its failures.
//
// Operations missing from this map have no dedicated failure kind.
var opFailureKinds = map[Op]ErrorKind{
	OpNewContext: KindContextInitFailed,
	OpNewSocket:  KindSocketCreateFailed,
	OpBind:       KindBindFailed,
	OpConnect:    KindConnectFailed,
	OpSend:       KindSendFailed,
	OpReceive:    KindReceiveFailed,
	OpSetOption:  KindOptionFailed,
	OpGetOption:  KindOptionFailed,
	OpPoll:       KindPollFailed,
}

// MapError converts an engine error code returned by op into an [*Error].
//
// The mapping is total. Zero maps to nil, codes the engine does not
// document map to [KindNativeErrorUnknown], and the others map as follows:
//
//   - EAGAIN: [KindWouldBlock]
//   - ENOTSOCK: [KindUseAfterClose]
//   - ETERM, EINTR: [KindOperationInterrupted], except for the operations
//     creating a context or a socket, which fail with their own kind
//   - any other code: the failure kind of op, or [KindNativeErrorUnknown]
//     when op has none (e.g., [OpClose])
func MapError(op Op, code int) *Error {
	if code == 0 {
		return nil
	}
	errno := native.Errno(code)
	opKind, hasOpKind := opFailureKinds[op]
	kind := KindNativeErrorUnknown
	switch {
	case !errno.Known():
		// nothing
	case errno == native.EAGAIN:
		kind = KindWouldBlock
	case errno == native.ENOTSOCK:
		kind = KindUseAfterClose
	case (errno == native.ETERM || errno == native.EINTR) && op != OpNewContext && op != OpNewSocket:
		kind = KindOperationInterrupted
	case hasOpKind:
		kind = opKind
	}
	return &Error{Kind: kind, Op: op, Code: code}
}

// mapErrno is like [MapError] but returns a nil error interface on success.
func mapErrno(op Op, errno native.Errno) error {
	if err := MapError(op, int(errno)); err != nil {
		return err
	}
	return nil
}
