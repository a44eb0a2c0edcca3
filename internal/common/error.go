// Package common defines shared constants and sentinel errors used across
// the registration server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound            = errors.New("not found")
	ErrorDuplicateSubmission = errors.New("mobile or aadhaar already registered")
	ErrorDuplicateEmail      = errors.New("email already registered")
	ErrorNoFieldsToUpdate    = errors.New("no fields to update")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Pool lifecycle errors.
	ErrPoolClosed = errors.New("pool closed")
)
