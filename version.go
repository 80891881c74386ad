// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import "github.com/bassosimone/zsock/internal/native"

// Version returns the version of the messaging engine.
func Version() (major, minor, patch int) {
	return native.Version()
}
