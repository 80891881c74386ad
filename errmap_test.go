// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"errors"
	"testing"

	"github.com/bassosimone/zsock/internal/native"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		// name describes what this test case verifies.
		name string

		// op is the failed operation.
		op Op

		// code is the engine code.
		code native.Errno

		// kind is the expected kind.
		kind ErrorKind
	}{
		{name: "would block on send", op: OpSend, code: native.EAGAIN, kind: KindWouldBlock},
		{name: "would block on receive", op: OpReceive, code: native.EAGAIN, kind: KindWouldBlock},
		{name: "closed socket", op: OpBind, code: native.ENOTSOCK, kind: KindUseAfterClose},
		{name: "terminated while receiving", op: OpReceive, code: native.ETERM, kind: KindOperationInterrupted},
		{name: "interrupted send", op: OpSend, code: native.EINTR, kind: KindOperationInterrupted},
		{name: "terminated while polling", op: OpPoll, code: native.ETERM, kind: KindOperationInterrupted},
		{name: "terminated context on socket creation", op: OpNewSocket, code: native.ETERM, kind: KindSocketCreateFailed},
		{name: "invalid context options", op: OpNewContext, code: native.EINVAL, kind: KindContextInitFailed},
		{name: "invalid socket type", op: OpNewSocket, code: native.EINVAL, kind: KindSocketCreateFailed},
		{name: "address in use", op: OpBind, code: native.EADDRINUSE, kind: KindBindFailed},
		{name: "unsupported transport", op: OpConnect, code: native.EPROTONOSUPPORT, kind: KindConnectFailed},
		{name: "incompatible peer", op: OpConnect, code: native.ENOCOMPATPROTO, kind: KindConnectFailed},
		{name: "wrong state for send", op: OpSend, code: native.EFSM, kind: KindSendFailed},
		{name: "wrong state for receive", op: OpReceive, code: native.EFSM, kind: KindReceiveFailed},
		{name: "bad option", op: OpSetOption, code: native.EINVAL, kind: KindOptionFailed},
		{name: "bad option read", op: OpGetOption, code: native.EINVAL, kind: KindOptionFailed},
		{name: "bad poll", op: OpPoll, code: native.EINVAL, kind: KindPollFailed},
		{name: "close has no failure kind", op: OpClose, code: native.EINVAL, kind: KindNativeErrorUnknown},
		{name: "terminate has no failure kind", op: OpTerminate, code: native.EMTHREAD, kind: KindNativeErrorUnknown},
		{name: "undocumented code", op: OpSend, code: 987654321, kind: KindNativeErrorUnknown},
		{name: "negative code", op: OpBind, code: -7, kind: KindNativeErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapError(tt.op, int(tt.code))
			require.NotNil(t, err)
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.op, err.Op)
			assert.Equal(t, int(tt.code), err.Code)
		})
	}
}

func TestMapErrorSuccess(t *testing.T) {
	assert.Nil(t, MapError(OpSend, 0))
	assert.NoError(t, mapErrno(OpSend, 0))
}

func TestErrorIs(t *testing.T) {
	err := error(MapError(OpBind, int(native.EADDRINUSE)))

	assert.True(t, errors.Is(err, ErrBindFailed))
	assert.False(t, errors.Is(err, ErrConnectFailed))
	assert.True(t, errors.Is(err, &Error{Kind: KindBindFailed, Op: OpBind}))
	assert.False(t, errors.Is(err, &Error{Kind: KindBindFailed, Op: OpConnect}))
	assert.True(t, errors.Is(err, native.EADDRINUSE))
	assert.False(t, errors.Is(err, native.EACCES))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		// name describes what this test case verifies.
		name string

		// err is the error to format.
		err *Error

		// want is the expected message.
		want string
	}{
		{
			name: "with code",
			err:  MapError(OpSend, int(native.EFSM)),
			want: "zsock: send: SendFailed: operation cannot be accomplished in current state",
		},
		{
			name: "without code",
			err:  &Error{Kind: KindUseAfterClose, Op: OpReceive},
			want: "zsock: receive: UseAfterClose",
		},
		{
			name: "unknown code",
			err:  MapError(OpClose, 987654321),
			want: "zsock: close: NativeErrorUnknown: unknown error 987654321",
		},
		{
			name: "invalid endpoint",
			err:  newEndpointError("udp://x", ReasonUnknownScheme),
			want: `zsock: invalid endpoint "udp://x": unknown scheme`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "WouldBlock", KindWouldBlock.String())
	assert.Equal(t, "ErrorKind(0)", ErrorKind(0).String())
}
