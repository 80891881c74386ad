// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 identifying a span.
//
// Every [*Socket] gets a span ID at creation, logged as socketID in all
// its records, so that the life of a socket can be followed in the logs.
// Use this function to correlate other work with the same logs.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
