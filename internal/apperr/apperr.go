// Package apperr holds the error taxonomy shared by the services and the HTTP layer.
package apperr

import "errors"

var (
	// ErrValidation marks malformed input. Nothing is persisted.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an entity that is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrCalculation marks a failed data query underneath a calculator.
	ErrCalculation = errors.New("calculation failed")
	// ErrUnauthorized marks a request without a resolved user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks a resolved user acting outside their own data.
	ErrForbidden = errors.New("forbidden")
)
