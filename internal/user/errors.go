package user

import "errors"

var (
	// ErrUserNotFound is returned when no row exists for an identity.
	ErrUserNotFound = errors.New("user: not found")

	// ErrUserExists is returned by Create for a duplicate identity.
	ErrUserExists = errors.New("user: identity already exists")

	// ErrInvalidAccessCode is returned when a new access code is not exactly
	// AccessCodeLength characters.
	ErrInvalidAccessCode = errors.New("user: access code must be exactly 6 characters")
)
