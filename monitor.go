// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"log/slog"

	"github.com/bassosimone/zsock/internal/native"
)

// logEvent logs a transport event reported by the engine as a socketEvent
// record. It runs on engine goroutines.
func (h *socketHandle) logEvent(ev native.Event) {
	sc := h.ctx.shared
	var err error
	if ev.Errno != 0 {
		err = MapError(opForEvent(ev.Kind), int(ev.Errno))
	}
	sc.logger.Info(
		"socketEvent",
		slog.String("endpoint", ev.Endpoint),
		slog.Any("err", err),
		slog.String("errClass", sc.errClassifier.Classify(err)),
		slog.String("event", ev.Kind.String()),
		slog.Duration("interval", ev.Interval),
		slog.String("localAddr", ev.LocalAddr),
		slog.String("remoteAddr", ev.RemoteAddr),
		slog.String("socketID", h.id),
		slog.String("socketKind", h.kind.String()),
		slog.Time("t", sc.timeNow()),
	)
}

// opForEvent returns the operation a failure event belongs to.
func opForEvent(kind native.EventKind) Op {
	switch kind {
	case native.EventAcceptFailed:
		return OpBind
	default:
		return OpConnect
	}
}
