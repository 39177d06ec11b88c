package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuantity is returned for quantities outside the accepted range.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrMissingProduct is returned when a product or product id is absent.
	ErrMissingProduct = errors.New("missing product")
	// ErrInvalidFlavor is returned when a flavor is not offered by the product.
	ErrInvalidFlavor = errors.New("invalid flavor")
	// ErrAlreadyExists indicates a uniqueness violation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthenticated indicates the caller has no active session.
	ErrUnauthenticated = errors.New("unauthenticated")
)
