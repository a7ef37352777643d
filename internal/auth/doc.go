// Package auth verifies the bearer tokens presented to the LockGuard API.
//
// Tokens are HS256 JWTs issued by the account service with the shared
// secret from security.jwt.secret. The subject claim is the caller's
// identity; it scopes every request, so a token can only ever operate the
// lock in its own topic namespace. Core never issues tokens in production;
// GenerateToken exists for tooling and tests.
package auth
