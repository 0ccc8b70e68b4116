// Package errs holds the failure kinds shared by every package of the
// module. Callers match them with errors.Is; the packages wrap them with
// the offending operation and values.
package errs

import "errors"

var (
	// ErrInvalidConfiguration reports bad order bounds or bad grid
	// dimensions. Nothing is partially constructed when it is returned.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch reports an input array whose shape disagrees
	// with the number of inputs or the number of time stamps.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrIllegalState reports an operation called out of lifecycle order,
	// e.g. simulating a system that has not been built.
	ErrIllegalState = errors.New("illegal state")

	// ErrInvalidInput reports empty or non-increasing time stamps and
	// non-finite signal values.
	ErrInvalidInput = errors.New("invalid input")
)
