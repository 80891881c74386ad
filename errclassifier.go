// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"errors"

	"github.com/bassosimone/errclass"
	"github.com/bassosimone/zsock/internal/native"
)

// ErrClassifier classifies errors into categorical strings for analysis.
//
// Implementations map errors to short, descriptive labels (e.g., "EAGAIN",
// "EADDRINUSE") that end up in the errClass field of log records.
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
//
// This allows using simple functions as classifiers:
//
//	cfg.ErrClassifier = ErrClassifierFunc(errclass.New)
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// DefaultErrClassifier is the default [ErrClassifier].
//
// It returns "" for nil errors. For an [*Error] carrying a known engine code
// it returns the code name (e.g., "EADDRINUSE"), and for one without a code
// it returns the kind (e.g., "UseAfterClose"). Other errors, including
// unknown engine codes, are classified by [errclass.New].
var DefaultErrClassifier = ErrClassifierFunc(classifyError)

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	var zerr *Error
	if errors.As(err, &zerr) {
		if errno := native.Errno(zerr.Code); zerr.Code != 0 && errno.Known() {
			return errno.Name()
		}
		if zerr.Code == 0 {
			return zerr.Kind.String()
		}
	}
	return errclass.New(err)
}
