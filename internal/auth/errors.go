package auth

import "errors"

var (
	// ErrTokenInvalid covers bad signatures, wrong algorithms, malformed
	// tokens and missing or unusable subjects.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrTokenExpired is returned for tokens past their exp claim.
	ErrTokenExpired = errors.New("auth: token has expired")
)
