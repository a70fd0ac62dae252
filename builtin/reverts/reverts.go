// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the error type for business-rule violations.
// A revert aborts the whole call; the engines restore their pre-call
// checkpoint so no partial state mutation survives. Storage faults are
// ordinary wrapped errors, never reverts.
package reverts

import "errors"

// ErrRevert is a named business-rule violation.
type ErrRevert struct {
	message string
}

// New creates a revert error with the given message.
func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// IsRevert reports whether err is (or wraps) a revert error.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}
	var re *ErrRevert
	return errors.As(err, &re)
}
