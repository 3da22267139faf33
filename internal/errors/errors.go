// Package errors provides typed errors for catalog operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when no product exists with the given ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateProductName is returned when a create or rename collides,
	// case-insensitively, with an existing product name.
	ErrDuplicateProductName = errors.New("duplicate product name")

	// ErrInvalidArgument is returned for malformed or out-of-range input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageFailure is returned when the persistence engine is unreachable
	// or returned an unexpected error. Fatal for the current request.
	ErrStorageFailure = errors.New("storage failure")
)
