// SPDX-License-Identifier: GPL-3.0-or-later

package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrnoName(t *testing.T) {
	assert.Equal(t, "EAGAIN", EAGAIN.Name())
	assert.Equal(t, "ETERM", ETERM.Name())
	assert.Equal(t, "12345", Errno(12345).Name())
}

func TestErrnoKnown(t *testing.T) {
	for code := range errnoNames {
		assert.True(t, code.Known(), code.Name())
	}
	assert.False(t, Errno(0).Known())
	assert.False(t, Errno(hausnumero+999).Known())
}

func TestErrnoError(t *testing.T) {
	assert.Equal(t, "context was terminated", ETERM.Error())
	assert.Equal(t, "unknown error 424242", Errno(424242).Error())
}

func TestEngineCodesAboveHausnumero(t *testing.T) {
	for _, code := range []Errno{EFSM, ENOCOMPATPROTO, ETERM, EMTHREAD} {
		assert.Greater(t, int(code), hausnumero)
	}
}
