// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpanID(t *testing.T) {
	parsed, err := uuid.Parse(NewSpanID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestSocketIDs(t *testing.T) {
	logger, records := newCapturingLogger()
	ctx := newTestContext(t, logger)

	const count = 16
	for range count {
		newTestSocket(t, ctx, Dealer)
	}

	created := records.Find("socketCreate")
	require.Len(t, created, count)

	// Each socket gets its own time ordered ID.
	seen := make(map[string]struct{}, count)
	var previous int64
	for _, record := range created {
		id := recordAttrs(record)["socketID"].String()
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())

		_, duplicate := seen[id]
		require.False(t, duplicate, "duplicate socket ID: %s", id)
		seen[id] = struct{}{}

		assert.GreaterOrEqual(t, int64(parsed.Time()), previous)
		previous = int64(parsed.Time())
	}
}
