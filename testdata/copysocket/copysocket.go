// SPDX-License-Identifier: GPL-3.0-or-later

// Package copysocket copies socket values, which go vet must reject.
package copysocket

import "github.com/bassosimone/zsock"

// Dereference copies the socket into a local variable.
func Dereference(s *zsock.Socket) {
	copied := *s
	_ = copied.Close()
}

// ByValue receives the socket by value.
func ByValue(s zsock.Socket) {
	_ = s.Close()
}

// Moved hands the socket over the way the package intends.
func Moved(s *zsock.Socket) *zsock.Socket {
	return s.Move()
}
