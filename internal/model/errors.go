package model

import "errors"

var (
	// Role / session errors
	ErrUnknownRole = errors.New("unknown role")
	ErrNoSession   = errors.New("no session for role")

	// Facade errors
	ErrUnknownOperation = errors.New("unknown operation")
	ErrMissingParam     = errors.New("missing path parameter")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
