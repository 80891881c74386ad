// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"fmt"

	"github.com/bassosimone/zsock/internal/native"
)

// ErrorKind is the kind of an [*Error].
type ErrorKind int

// Error kinds. The set is closed: every failure of this package is an
// [*Error] with one of these kinds.
const (
	// KindInvalidEndpoint means that an address string could not be parsed.
	KindInvalidEndpoint ErrorKind = iota + 1

	// KindContextInitFailed means that [NewContext] failed.
	KindContextInitFailed

	// KindSocketCreateFailed means that [NewSocket] failed.
	KindSocketCreateFailed

	// KindBindFailed means that [*Socket.Bind] failed.
	KindBindFailed

	// KindConnectFailed means that [*Socket.Connect] failed.
	KindConnectFailed

	// KindSendFailed means that [*Socket.Send] failed.
	KindSendFailed

	// KindReceiveFailed means that [*Socket.Receive] failed.
	KindReceiveFailed

	// KindWouldBlock means that a non-blocking operation could not
	// complete immediately. It signals backpressure, not a failure.
	KindWouldBlock

	// KindUseAfterClose means that the socket was closed or moved.
	KindUseAfterClose

	// KindOperationInterrupted means that the context was terminated
	// while the operation was in progress.
	KindOperationInterrupted

	// KindNativeErrorUnknown means that the engine returned a code with
	// no better classification. The code is in [Error.Code].
	KindNativeErrorUnknown

	// KindOptionFailed means that setting or getting an option failed.
	KindOptionFailed

	// KindPollFailed means that [Poll] failed.
	KindPollFailed
)

var kindNames = map[ErrorKind]string{
	KindInvalidEndpoint:      "InvalidEndpoint",
	KindContextInitFailed:    "ContextInitFailed",
	KindSocketCreateFailed:   "SocketCreateFailed",
	KindBindFailed:           "BindFailed",
	KindConnectFailed:        "ConnectFailed",
	KindSendFailed:           "SendFailed",
	KindReceiveFailed:        "ReceiveFailed",
	KindWouldBlock:           "WouldBlock",
	KindUseAfterClose:        "UseAfterClose",
	KindOperationInterrupted: "OperationInterrupted",
	KindNativeErrorUnknown:   "NativeErrorUnknown",
	KindOptionFailed:         "OptionFailed",
	KindPollFailed:           "PollFailed",
}

// String implements [fmt.Stringer].
func (k ErrorKind) String() string {
	if name, found := kindNames[k]; found {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Op names the operation that failed.
type Op string

// Operations.
const (
	OpParseEndpoint Op = "parseEndpoint"
	OpNewContext    Op = "newContext"
	OpTerminate     Op = "terminate"
	OpNewSocket     Op = "newSocket"
	OpBind          Op = "bind"
	OpConnect       Op = "connect"
	OpSend          Op = "send"
	OpReceive       Op = "receive"
	OpClose         Op = "close"
	OpSetOption     Op = "setOption"
	OpGetOption     Op = "getOption"
	OpPoll          Op = "poll"
)

// Error is the error returned by this package.
//
// Use [errors.Is] with the Err* sentinels to check the kind:
//
//	if errors.Is(err, zsock.ErrWouldBlock) {
//		// try again later
//	}
type Error struct {
	// Kind is the error kind.
	Kind ErrorKind

	// Op is the operation that failed.
	Op Op

	// Code is the engine error code, or zero when there is none.
	Code int

	// Reason is set for [KindInvalidEndpoint].
	Reason EndpointReason

	// Input is the string that failed to parse, for [KindInvalidEndpoint].
	Input string
}

// Sentinels for use with [errors.Is].
var (
	ErrInvalidEndpoint      = &Error{Kind: KindInvalidEndpoint}
	ErrContextInitFailed    = &Error{Kind: KindContextInitFailed}
	ErrSocketCreateFailed   = &Error{Kind: KindSocketCreateFailed}
	ErrBindFailed           = &Error{Kind: KindBindFailed}
	ErrConnectFailed        = &Error{Kind: KindConnectFailed}
	ErrSendFailed           = &Error{Kind: KindSendFailed}
	ErrReceiveFailed        = &Error{Kind: KindReceiveFailed}
	ErrWouldBlock           = &Error{Kind: KindWouldBlock}
	ErrUseAfterClose        = &Error{Kind: KindUseAfterClose}
	ErrOperationInterrupted = &Error{Kind: KindOperationInterrupted}
	ErrNativeErrorUnknown   = &Error{Kind: KindNativeErrorUnknown}
	ErrOptionFailed         = &Error{Kind: KindOptionFailed}
	ErrPollFailed           = &Error{Kind: KindPollFailed}
)

// Error implements error.
func (e *Error) Error() string {
	switch {
	case e.Kind == KindInvalidEndpoint:
		return fmt.Sprintf("zsock: invalid endpoint %q: %s", e.Input, e.Reason)
	case e.Code != 0:
		return fmt.Sprintf("zsock: %s: %s: %s", e.Op, e.Kind, native.Errno(e.Code))
	default:
		return fmt.Sprintf("zsock: %s: %s", e.Op, e.Kind)
	}
}

// Is reports whether target is an [*Error] matching e. The zero fields
// of target act as wildcards, so the Err* sentinels match by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind &&
		(t.Op == "" || t.Op == e.Op) &&
		(t.Code == 0 || t.Code == e.Code) &&
		(t.Reason == 0 || t.Reason == e.Reason)
}

// Unwrap returns the engine error code as an error, if any.
func (e *Error) Unwrap() error {
	if e.Code == 0 {
		return nil
	}
	return native.Errno(e.Code)
}
