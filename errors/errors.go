// Package errors holds error values shared across scout-action packages.
package errors

import "errors"

// Library-wide error messages are here.
var (
	ErrScoutVersionEmpty = errors.New("a docker scout version is required")
)
