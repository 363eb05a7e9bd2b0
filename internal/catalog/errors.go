package catalog

import "errors"

var (
	// ErrNotFound is returned when an operation references a product id
	// with no active product behind it.
	ErrNotFound = errors.New("product not found")

	// ErrDuplicateCode is returned when a caller bypasses the code
	// generator and supplies a code already in use.
	ErrDuplicateCode = errors.New("product code already in use")
)
